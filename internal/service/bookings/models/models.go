package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            string  `json:"id"`
	BookingNumber string  `json:"bookingNumber"`
	TenantID      string  `json:"tenantId"`
	CustomerID    string  `json:"customerId"`
	ServiceID     string  `json:"serviceId"`
	StaffID       *string `json:"staffId,omitempty"`
	Status        string  `json:"status"`

	ScheduledAt     time.Time `json:"scheduledAt"`
	EndsAt          time.Time `json:"endsAt"`
	DurationMinutes int       `json:"durationMinutes"`

	IsHomeVisit           bool            `json:"isHomeVisit"`
	HomeVisitAddress      *string         `json:"homeVisitAddress,omitempty"`
	HomeVisitLatitude     *float64        `json:"homeVisitLatitude,omitempty"`
	HomeVisitLongitude    *float64        `json:"homeVisitLongitude,omitempty"`
	TravelSurcharge       decimal.Decimal `json:"travelSurcharge"`
	TravelDistanceKm      float64         `json:"travelDistanceKm"`
	TravelDurationMinutes int             `json:"travelDurationMinutes"`
	TravelBufferBefore    int             `json:"travelBufferBefore"`
	TravelBufferAfter     int             `json:"travelBufferAfter"`

	// Деньги сериализуются строками
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	TaxPercentage        decimal.Decimal `json:"taxPercentage"`
	ServiceChargeAmount  decimal.Decimal `json:"serviceChargeAmount"`
	AdditionalFeesAmount decimal.Decimal `json:"additionalFeesAmount"`
	PaymentStatus        string          `json:"paymentStatus"`
	DPAmount             decimal.Decimal `json:"dpAmount"`
	PaidAmount           decimal.Decimal `json:"paidAmount"`
	PaymentMethod        *string         `json:"paymentMethod,omitempty"`
	PaymentReference     *string         `json:"paymentReference,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
		ID:                    b.ID,
		BookingNumber:         b.BookingNumber,
		TenantID:              b.TenantID,
		CustomerID:            b.CustomerID,
		ServiceID:             b.ServiceID,
		StaffID:               b.StaffID,
		Status:                string(b.Status),
		ScheduledAt:           b.ScheduledAt,
		EndsAt:                b.EndsAt(),
		DurationMinutes:       b.DurationMinutes,
		IsHomeVisit:           b.IsHomeVisit,
		HomeVisitAddress:      b.HomeVisitAddress,
		HomeVisitLatitude:     b.HomeVisitLatitude,
		HomeVisitLongitude:    b.HomeVisitLongitude,
		TravelSurcharge:       b.TravelSurcharge,
		TravelDistanceKm:      b.TravelDistanceKm,
		TravelDurationMinutes: b.TravelDurationMinutes,
		TravelBufferBefore:    b.TravelBufferBefore,
		TravelBufferAfter:     b.TravelBufferAfter,
		TotalAmount:           b.TotalAmount,
		TaxPercentage:         b.TaxPercentage,
		ServiceChargeAmount:   b.ServiceChargeAmount,
		AdditionalFeesAmount:  b.AdditionalFeesAmount,
		PaymentStatus:         string(b.PaymentStatus),
		DPAmount:              b.DPAmount,
		PaidAmount:            b.PaidAmount,
		PaymentMethod:         b.PaymentMethod,
		PaymentReference:      b.PaymentReference,
		Notes:                 b.Notes,
		CreatedAt:             b.CreatedAt,
		UpdatedAt:             b.UpdatedAt,
	}
}
