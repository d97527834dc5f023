package get_availability

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	getAvailability "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_availability"
)

// SlotResponse слот во времени тенанта
type SlotResponse struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	StartTime string    `json:"startTime"` // "10:00"
	EndTime   string    `json:"endTime"`
	Available bool      `json:"available"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date      string         `json:"date"`
	Timezone  string         `json:"timezone"`
	Mode      string         `json:"mode"`
	IsOpen    bool           `json:"isOpen"`
	IsBlocked bool           `json:"isBlocked"`
	Slots     []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			Start:     s.Start,
			End:       s.End,
			StartTime: s.Start.Format(domain.TimeFormat),
			EndTime:   s.End.Format(domain.TimeFormat),
			Available: s.Available,
		})
	}

	return &AvailabilityResponse{
		Date:      resp.Date.Format(domain.DateFormat),
		Timezone:  resp.Timezone,
		Mode:      resp.Mode,
		IsOpen:    resp.IsOpen,
		IsBlocked: resp.IsBlocked,
		Slots:     slots,
	}
}
