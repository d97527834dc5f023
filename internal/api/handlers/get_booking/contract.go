package get_booking

import (
	"context"

	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

type BookingService interface {
	GetByID(ctx context.Context, tenantID, id string) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
