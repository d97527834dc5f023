package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	TenantID    string
	CustomerID  string
	ServiceID   string
	ScheduledAt time.Time // абсолютный момент начала

	IsHomeVisit        bool
	HomeVisitAddress   *string
	HomeVisitLatitude  *float64
	HomeVisitLongitude *float64

	// Поездка, посчитанная на клиенте (опционально)
	TravelSurcharge       *decimal.Decimal
	TravelDistanceKm      *float64
	TravelDurationMinutes *int

	Notes            *string
	PaymentMethod    *string
	PaymentReference *string
	DPAmount         decimal.Decimal

	StaffID         *string
	AutoAssignStaff *bool // nil - true
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking        *domain.Booking
	Pricing        domain.PricingBreakdown
	StaffName      *string
	TravelDegraded bool // поездка не посчитана, использованы нулевые значения
	PaymentSaved   bool // запись о предоплате сохранена
}

// Config параметры use case
type Config struct {
	MaxAdvanceDays         int           // 0 - без ограничения
	TravelTimeout          time.Duration // ограничение на вызов калькулятора поездки
	RecomputeClientTravel  bool          // пересчитывать поездку, даже если клиент прислал значения
	AutoAssignStaffDefault bool
}
