package domain

import "time"

// Customer клиент тенанта
type Customer struct {
	ID            string
	TenantID      string
	Name          string
	Phone         *string
	TotalBookings int
	LastBookingAt *time.Time
}
