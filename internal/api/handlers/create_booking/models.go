package create_booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/service/bookings/models"
	createBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model. Суммы принимаются числом или строкой.
type CreateBookingRequest struct {
	CustomerID  string `json:"customerId"`
	ServiceID   string `json:"serviceId"`
	ScheduledAt string `json:"scheduledAt"` // RFC 3339, "2026-10-20T10:00:00+07:00"

	IsHomeVisit        bool     `json:"isHomeVisit"`
	HomeVisitAddress   *string  `json:"homeVisitAddress,omitempty"`
	HomeVisitLatitude  *float64 `json:"homeVisitLatitude,omitempty"`
	HomeVisitLongitude *float64 `json:"homeVisitLongitude,omitempty"`

	TravelSurcharge       *decimal.Decimal `json:"travelSurcharge,omitempty"`
	TravelDistanceKm      *float64         `json:"travelDistanceKm,omitempty"`
	TravelDurationMinutes *int             `json:"travelDurationMinutes,omitempty"`

	Notes            *string          `json:"notes,omitempty"`
	PaymentMethod    *string          `json:"paymentMethod,omitempty"`
	PaymentReference *string          `json:"paymentReference,omitempty"`
	DPAmount         *decimal.Decimal `json:"dpAmount,omitempty"`

	StaffID         *string `json:"staffId,omitempty"`
	AutoAssignStaff *bool   `json:"autoAssignStaff,omitempty"`
}

// PricingResponse разбивка стоимости
type PricingResponse struct {
	BasePrice            decimal.Decimal `json:"basePrice"`
	TravelSurcharge      decimal.Decimal `json:"travelSurcharge"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxPercentage        decimal.Decimal `json:"taxPercentage"`
	TaxAmount            decimal.Decimal `json:"taxAmount"`
	ServiceChargeAmount  decimal.Decimal `json:"serviceChargeAmount"`
	AdditionalFeesAmount decimal.Decimal `json:"additionalFeesAmount"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Booking        *models.BookingResponse `json:"booking"`
	Pricing        PricingResponse         `json:"pricing"`
	StaffName      *string                 `json:"staffName,omitempty"`
	TravelDegraded bool                    `json:"travelDegraded"`
	PaymentSaved   bool                    `json:"paymentSaved"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(tenantID string) (*createBooking.Request, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	dp := decimal.Zero
	if r.DPAmount != nil {
		dp = *r.DPAmount
	}

	return &createBooking.Request{
		TenantID:              tenantID,
		CustomerID:            r.CustomerID,
		ServiceID:             r.ServiceID,
		ScheduledAt:           scheduledAt,
		IsHomeVisit:           r.IsHomeVisit,
		HomeVisitAddress:      r.HomeVisitAddress,
		HomeVisitLatitude:     r.HomeVisitLatitude,
		HomeVisitLongitude:    r.HomeVisitLongitude,
		TravelSurcharge:       r.TravelSurcharge,
		TravelDistanceKm:      r.TravelDistanceKm,
		TravelDurationMinutes: r.TravelDurationMinutes,
		Notes:                 r.Notes,
		PaymentMethod:         r.PaymentMethod,
		PaymentReference:      r.PaymentReference,
		DPAmount:              dp,
		StaffID:               r.StaffID,
		AutoAssignStaff:       r.AutoAssignStaff,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	p := resp.Pricing
	return &CreateBookingResponse{
		Booking: models.FromDomainBooking(resp.Booking),
		Pricing: PricingResponse{
			BasePrice:            p.BasePrice,
			TravelSurcharge:      p.TravelSurcharge,
			Subtotal:             p.Subtotal,
			TaxPercentage:        p.TaxPercentage,
			TaxAmount:            p.TaxAmount,
			ServiceChargeAmount:  p.ServiceChargeAmount,
			AdditionalFeesAmount: p.AdditionalFeesAmount,
			TotalAmount:          p.TotalAmount,
		},
		StaffName:      resp.StaffName,
		TravelDegraded: resp.TravelDegraded,
		PaymentSaved:   resp.PaymentSaved,
	}
}
