package domain

// Default configuration values
const (
	DefaultSlotGranularityMinutes = 30
	DefaultHourlyQuota            = 1
	DefaultTimezone               = "UTC"
)

// Business validation constants
const (
	MaxNotesLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses статусы, которые занимают время сотрудника или услуги
var ActiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}

// Payment kinds
const (
	PaymentKindDownPayment = "down_payment"
)

// History actions и типы событий
const (
	HistoryActionCreated = "created"
	EventBookingCreated  = "booking.created.v1"
	AggregateTypeBooking = "booking"
)
