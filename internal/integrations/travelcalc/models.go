package travelcalc

import "github.com/shopspring/decimal"

// Point точка маршрута
type Point struct {
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// CalculateRequest запрос расчета поездки
type CalculateRequest struct {
	TenantID    string `json:"tenant_id"`
	ServiceID   string `json:"service_id"`
	Origin      Point  `json:"origin"`
	Destination Point  `json:"destination"`
}

// CalculateResponse ответ сервиса расчета поездки
type CalculateResponse struct {
	DistanceKm      float64         `json:"distance_km"`
	DurationMinutes int             `json:"duration_minutes"`
	Surcharge       decimal.Decimal `json:"surcharge"`
}

// ErrorResponse модель ошибки от сервиса
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
