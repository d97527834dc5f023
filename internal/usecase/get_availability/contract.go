package get_availability

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

// SettingsProvider настройки тенанта
type SettingsProvider interface {
	GetBusinessHours(ctx context.Context, tenantID string) (domain.BusinessHours, error)
	GetHomeVisitPolicy(ctx context.Context, tenantID string) (domain.HomeVisitPolicy, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListActiveByService(ctx context.Context, tenantID, serviceID string, from, to time.Time) ([]*domain.Booking, error)
}

// StaffResolver подбор сотрудников на дату
type StaffResolver interface {
	StaffDays(ctx context.Context, q assignment.Query) ([]availability.StaffDay, error)
}

// Metrics метрики use case
type Metrics interface {
	AvailabilityRequest(mode string)
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
