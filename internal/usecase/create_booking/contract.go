package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/assignment"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Service, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Customer, error)
	TouchBookingStats(ctx context.Context, tenantID, id string, bookedAt time.Time) error
}

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Staff, error)
}

// SettingsProvider настройки тенанта
type SettingsProvider interface {
	GetBusinessHours(ctx context.Context, tenantID string) (domain.BusinessHours, error)
	GetInvoiceSettings(ctx context.Context, tenantID string) (domain.InvoiceSettings, error)
	GetHomeVisitPolicy(ctx context.Context, tenantID string) (domain.HomeVisitPolicy, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ListActiveByService(ctx context.Context, tenantID, serviceID string, from, to time.Time) ([]*domain.Booking, error)
	CountActiveHomeVisits(ctx context.Context, tenantID string, from, to time.Time) (int, error)
	LockResource(ctx context.Context, key string) error
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
}

// HistoryRepository журнал изменений бронирований
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.BookingHistoryEntry) error
}

// OutboxRepository исходящие события
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}

// StaffResolver подбор сотрудников
type StaffResolver interface {
	StaffDays(ctx context.Context, q assignment.Query) ([]availability.StaffDay, error)
	Resolve(ctx context.Context, q assignment.Query, rules availability.StaffRules, start, end time.Time) (*domain.Staff, error)
}

// TravelCalculator сервис расчета поездки
type TravelCalculator interface {
	CalculateWithGracefulDegradation(ctx context.Context, tenantID, serviceID string, origin, destination domain.Location) (domain.TravelData, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics метрики use case
type Metrics interface {
	BookingCreated(mode string, homeVisit bool)
	BookingRejected(reason string)
	TravelFallback()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
