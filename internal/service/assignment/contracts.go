package assignment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// StaffRepository интерфейс репозитория сотрудников
type StaffRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Staff, error)
	ListQualified(ctx context.Context, tenantID, serviceID string) ([]*domain.Staff, error)
	ListDaysOff(ctx context.Context, tenantID string, date time.Time) (map[string]bool, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListActiveByStaff(ctx context.Context, tenantID string, staffIDs []string, from, to time.Time) ([]*domain.Booking, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
