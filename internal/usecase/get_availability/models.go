package get_availability

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Request модель запроса доступности
type Request struct {
	TenantID  string
	ServiceID string
	Date      time.Time // календарная дата (полночь UTC)
	StaffID   *string   // опционально: доступность конкретного сотрудника
}

// Response доступность услуги на дату
type Response struct {
	Date      time.Time
	Timezone  string
	Mode      string
	IsOpen    bool
	IsBlocked bool
	Slots     []domain.TimeSlot
}

// Config параметры use case
type Config struct {
	MaxAdvanceDays int // 0 - без ограничения
}
