package get_availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func validateRequest(req *Request) error {
	if _, err := uuid.Parse(req.TenantID); err != nil {
		return fmt.Errorf("%w: tenantID must be a UUID", ErrInvalidInput)
	}
	if strings.TrimSpace(req.ServiceID) == "" {
		return fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}
	if req.StaffID != nil && strings.TrimSpace(*req.StaffID) == "" {
		return fmt.Errorf("%w: staffID must not be empty", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return nil
}

// validateDate проверяет дату относительно сегодняшнего дня тенанта
func validateDate(date, today time.Time, maxAdvanceDays int) error {
	if date.Before(today) {
		return ErrDateInPast
	}
	if maxAdvanceDays > 0 && date.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, maxAdvanceDays)
	}
	return nil
}
