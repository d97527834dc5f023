package create_booking

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// bookingEvent полезная нагрузка события booking.created.v1 и записи журнала
type bookingEvent struct {
	BookingID     string    `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	TenantID      string    `json:"tenant_id"`
	CustomerID    string    `json:"customer_id"`
	ServiceID     string    `json:"service_id"`
	StaffID       *string   `json:"staff_id,omitempty"`
	Status        string    `json:"status"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	EndsAt        time.Time `json:"ends_at"`
	IsHomeVisit   bool      `json:"is_home_visit"`
	TotalAmount   string    `json:"total_amount"`
	PaymentStatus string    `json:"payment_status"`
	DPAmount      string    `json:"dp_amount"`
}

func newBookingEvent(b *domain.Booking) bookingEvent {
	return bookingEvent{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		TenantID:      b.TenantID,
		CustomerID:    b.CustomerID,
		ServiceID:     b.ServiceID,
		StaffID:       b.StaffID,
		Status:        string(b.Status),
		ScheduledAt:   b.ScheduledAt,
		EndsAt:        b.EndsAt(),
		IsHomeVisit:   b.IsHomeVisit,
		TotalAmount:   b.TotalAmount.StringFixed(2),
		PaymentStatus: string(b.PaymentStatus),
		DPAmount:      b.DPAmount.StringFixed(2),
	}
}
