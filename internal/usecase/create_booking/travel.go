package create_booking

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
)

func hasClientTravel(req *Request) bool {
	return req.TravelSurcharge != nil || req.TravelDistanceKm != nil || req.TravelDurationMinutes != nil
}

func homeVisitLocation(req *Request) domain.Location {
	return domain.Location{
		Address:   ptr.Deref(req.HomeVisitAddress, ""),
		Latitude:  req.HomeVisitLatitude,
		Longitude: req.HomeVisitLongitude,
	}
}

// resolveTravel определяет данные поездки для выезда.
// Значения клиента принимаются как есть, если не включен принудительный пересчет.
// Любая ошибка калькулятора дает нулевые значения; второй результат true, если так и вышло.
func (uc *UseCase) resolveTravel(ctx context.Context, req *Request, policy domain.HomeVisitPolicy) (domain.TravelData, bool) {
	if hasClientTravel(req) && !uc.cfg.RecomputeClientTravel {
		return domain.TravelData{
			Surcharge:       ptr.Deref(req.TravelSurcharge, decimal.Zero),
			DistanceKm:      ptr.Deref(req.TravelDistanceKm, 0),
			DurationMinutes: ptr.Deref(req.TravelDurationMinutes, 0),
		}, false
	}

	if uc.travel == nil || policy.BaseLocation.IsZero() {
		uc.logger.Warn("CreateBooking: travel cannot be calculated for tenant=%s service=%s (calculator configured: %t, base location set: %t), using zero figures",
			req.TenantID, req.ServiceID, uc.travel != nil, !policy.BaseLocation.IsZero())
		uc.metrics.TravelFallback()
		return domain.TravelData{Surcharge: decimal.Zero}, true
	}

	callCtx := ctx
	if uc.cfg.TravelTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, uc.cfg.TravelTimeout)
		defer cancel()
	}

	data, err := uc.travel.CalculateWithGracefulDegradation(callCtx, req.TenantID, req.ServiceID, policy.BaseLocation, homeVisitLocation(req))
	if err != nil {
		uc.logger.Warn("CreateBooking: travel degraded to zero figures for tenant=%s service=%s: %v", req.TenantID, req.ServiceID, err)
		uc.metrics.TravelFallback()
		return domain.TravelData{Surcharge: decimal.Zero}, true
	}

	return data, false
}
