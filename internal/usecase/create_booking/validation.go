package create_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if _, err := uuid.Parse(req.TenantID); err != nil {
		return fmt.Errorf("%w: tenantID must be a UUID", ErrInvalidInput)
	}

	if strings.TrimSpace(req.CustomerID) == "" {
		return fmt.Errorf("%w: customerID is required", ErrInvalidInput)
	}

	if strings.TrimSpace(req.ServiceID) == "" {
		return fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}

	if req.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", ErrInvalidInput)
	}

	if req.StaffID != nil && strings.TrimSpace(*req.StaffID) == "" {
		return fmt.Errorf("%w: staffID must not be empty", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.DPAmount.IsNegative() {
		return fmt.Errorf("%w: dpAmount must not be negative", ErrInvalidInput)
	}

	if req.TravelSurcharge != nil && req.TravelSurcharge.IsNegative() {
		return fmt.Errorf("%w: travelSurcharge must not be negative", ErrInvalidInput)
	}
	if req.TravelDistanceKm != nil && *req.TravelDistanceKm < 0 {
		return fmt.Errorf("%w: travelDistanceKm must not be negative", ErrInvalidInput)
	}
	if req.TravelDurationMinutes != nil && *req.TravelDurationMinutes < 0 {
		return fmt.Errorf("%w: travelDurationMinutes must not be negative", ErrInvalidInput)
	}

	if req.IsHomeVisit {
		if err := validateHomeVisitLocation(req); err != nil {
			return err
		}
	}

	return nil
}

// validateHomeVisitLocation проверяет, что у выезда есть адрес или пара координат
func validateHomeVisitLocation(req *Request) error {
	hasAddress := req.HomeVisitAddress != nil && strings.TrimSpace(*req.HomeVisitAddress) != ""
	hasLat := req.HomeVisitLatitude != nil
	hasLng := req.HomeVisitLongitude != nil

	if hasLat != hasLng {
		return fmt.Errorf("%w: homeVisitLatitude and homeVisitLongitude must be set together", ErrInvalidInput)
	}
	if !hasAddress && !hasLat {
		return fmt.Errorf("%w: home visit requires an address or coordinates", ErrInvalidInput)
	}
	if hasLat && (*req.HomeVisitLatitude < -90 || *req.HomeVisitLatitude > 90) {
		return fmt.Errorf("%w: homeVisitLatitude out of range", ErrInvalidInput)
	}
	if hasLng && (*req.HomeVisitLongitude < -180 || *req.HomeVisitLongitude > 180) {
		return fmt.Errorf("%w: homeVisitLongitude out of range", ErrInvalidInput)
	}
	return nil
}
