package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusNoShow    BookingStatus = "no_show"
)

// PaymentStatus статус оплаты бронирования, всегда вычисляется из paid и total
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Booking represents a service booking in the system
type Booking struct {
	ID            string
	BookingNumber string
	TenantID      string
	CustomerID    string
	ServiceID     string
	StaffID       *string

	Status          BookingStatus
	ScheduledAt     time.Time
	DurationMinutes int

	// Выезд к клиенту
	IsHomeVisit           bool
	HomeVisitAddress      *string
	HomeVisitLatitude     *float64
	HomeVisitLongitude    *float64
	TravelSurcharge       decimal.Decimal
	TravelDistanceKm      float64
	TravelDurationMinutes int
	TravelBufferBefore    int // минуты
	TravelBufferAfter     int // минуты

	// Стоимость
	TotalAmount          decimal.Decimal
	TaxPercentage        decimal.Decimal
	ServiceChargeAmount  decimal.Decimal
	AdditionalFeesAmount decimal.Decimal

	// Оплата
	PaymentStatus    PaymentStatus
	DPAmount         decimal.Decimal
	PaidAmount       decimal.Decimal
	PaymentMethod    *string
	PaymentReference *string

	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndsAt момент окончания услуги (без буфера)
func (b *Booking) EndsAt() time.Time {
	return b.ScheduledAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// BlockedUntil момент, до которого сотрудник занят с учетом буфера после визита.
// Это правая граница диапазона в ограничении исключения на уровне БД.
func (b *Booking) BlockedUntil() time.Time {
	return b.EndsAt().Add(time.Duration(b.TravelBufferAfter) * time.Minute)
}

// IsActive returns true if the booking occupies its time window
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// HasStaff returns true if a staff member is bound to the booking
func (b *Booking) HasStaff() bool {
	return b.StaffID != nil && *b.StaffID != ""
}

// Payment запись о платеже по бронированию
type Payment struct {
	ID        string
	TenantID  string
	BookingID string
	Kind      string
	Amount    decimal.Decimal
	Method    string
	Reference *string
	CreatedAt time.Time
}

// BookingHistoryEntry запись журнала изменений бронирования
type BookingHistoryEntry struct {
	TenantID  string
	BookingID string
	Action    string
	Status    BookingStatus
	Payload   []byte
	CreatedAt time.Time
}

// OutboxEvent событие, записываемое в outbox в одной транзакции с бронированием
type OutboxEvent struct {
	ID            int64
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}
