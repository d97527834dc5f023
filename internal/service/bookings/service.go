package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
)

// Service сервис чтения бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование тенанта по ID.
// Бронирование другого тенанта неотличимо от отсутствующего.
func (s *Service) GetByID(ctx context.Context, tenantID, id string) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for tenant=%s", id, tenantID)

	if _, err := uuid.Parse(id); err != nil {
		s.logger.Warn("GetByID: invalid booking id=%q for tenant=%s", id, tenantID)
		return nil, fmt.Errorf("%w: booking id must be a UUID", ErrInvalidInput)
	}

	booking, err := s.bookingRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found for tenant=%s", id, tenantID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s tenant=%s: %v", id, tenantID, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetByID: successfully fetched booking id=%s number=%s", id, booking.BookingNumber)
	return models.FromDomainBooking(booking), nil
}
