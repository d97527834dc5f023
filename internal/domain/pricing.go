package domain

import "github.com/shopspring/decimal"

// PricingBreakdown разбивка стоимости бронирования.
// Все сборы и налог считаются от Subtotal, без начисления друг на друга.
type PricingBreakdown struct {
	BasePrice            decimal.Decimal
	TravelSurcharge      decimal.Decimal
	Subtotal             decimal.Decimal
	TaxPercentage        decimal.Decimal
	TaxAmount            decimal.Decimal
	ServiceChargeAmount  decimal.Decimal
	AdditionalFeesAmount decimal.Decimal
	TotalAmount          decimal.Decimal
}

// TravelData данные о поездке к клиенту
type TravelData struct {
	Surcharge       decimal.Decimal
	DistanceKm      float64
	DurationMinutes int
}
