package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Calculate собирает стоимость бронирования.
// Налог, сервисный сбор и каждый дополнительный сбор считаются от одного и того же подытога
// (base + travel), итог округляется до целой единицы валюты.
func Calculate(basePrice, travelSurcharge decimal.Decimal, settings domain.InvoiceSettings) domain.PricingBreakdown {
	subtotal := basePrice.Add(travelSurcharge)

	taxAmount := subtotal.Mul(settings.TaxPercentage).Div(hundred)

	serviceCharge := decimal.Zero
	if settings.ServiceCharge.Required {
		serviceCharge = chargeAmount(settings.ServiceCharge.Charge, subtotal)
	}

	fees := decimal.Zero
	for _, fee := range settings.AdditionalFees {
		fees = fees.Add(chargeAmount(fee.Charge, subtotal))
	}

	total := subtotal.Add(taxAmount).Add(serviceCharge).Add(fees).Round(0)

	return domain.PricingBreakdown{
		BasePrice:            basePrice,
		TravelSurcharge:      travelSurcharge,
		Subtotal:             subtotal,
		TaxPercentage:        settings.TaxPercentage,
		TaxAmount:            taxAmount,
		ServiceChargeAmount:  serviceCharge,
		AdditionalFeesAmount: fees,
		TotalAmount:          total,
	}
}

// PaymentStatus статус оплаты по внесенной сумме. Единственное место, где он вычисляется.
func PaymentStatus(paid, total decimal.Decimal) domain.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return domain.PaymentPaid
	case paid.IsPositive():
		return domain.PaymentPartial
	default:
		return domain.PaymentPending
	}
}

func chargeAmount(c domain.Charge, subtotal decimal.Decimal) decimal.Decimal {
	switch c.Type {
	case domain.ChargePercentage:
		return subtotal.Mul(c.Value).Div(hundred)
	case domain.ChargeFixed:
		return c.Value
	default:
		return decimal.Zero
	}
}
