package create_booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newBookingNumber человекочитаемый номер: BK-YYMMDD-XXXXXX,
// дата создания в зоне тенанта и 6 случайных hex-символов
func newBookingNumber(now time.Time, loc *time.Location) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return "BK-" + now.In(loc).Format("060102") + "-" + suffix
}
