package availability

import (
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

// Режимы оценки доступности
const (
	ModeServiceQuota = "service_quota"
	ModeStaff        = "staff"
)

// ModeFor выбирает режим: привязка к сотруднику, если услуга этого требует или сотрудник указан явно.
// Выезд на дом сам по себе режим не меняет: без обязательного сотрудника действует квота услуги.
func ModeFor(service *domain.Service, staffRequested bool) string {
	if service.RequiresStaffAssignment || staffRequested {
		return ModeStaff
	}
	return ModeServiceQuota
}

// Overlaps проверяет пересечение полуоткрытых интервалов [aStart, aEnd) и [bStart, bEnd)
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// HourBucket начало часа, в котором начинается t, по настенному времени зоны loc.
// Truncate не подходит для зон со смещением не кратным часу.
func HourBucket(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
}

// ServiceQuota правила режима квоты услуги (без привязки к сотруднику)
type ServiceQuota struct {
	HourlyQuota int
	FullDay     bool
	Location    *time.Location
}

// SlotFits проверяет один интервал против существующих активных бронирований услуги:
// количество бронирований в часе начала меньше квоты и нет пересечения ни с одним бронированием.
func (q ServiceQuota) SlotFits(start, end time.Time, bookings []*domain.Booking) bool {
	active := activeOnly(bookings)

	if q.FullDay {
		return len(active) == 0
	}

	bucket := HourBucket(start, q.Location)
	inBucket := 0
	for _, b := range active {
		if HourBucket(b.ScheduledAt, q.Location).Equal(bucket) {
			inBucket++
		}
	}
	if inBucket >= q.HourlyQuota {
		return false
	}

	// Длительность может пересекать границу часа, поэтому проверяем все бронирования дня
	for _, b := range active {
		if Overlaps(start, end, b.ScheduledAt, b.EndsAt()) {
			return false
		}
	}
	return true
}

// Apply проставляет доступность слотам в режиме квоты услуги
func (q ServiceQuota) Apply(slots []domain.TimeSlot, bookings []*domain.Booking) []domain.TimeSlot {
	result := make([]domain.TimeSlot, len(slots))
	for i, s := range slots {
		s.Available = s.Available && q.SlotFits(s.Start, s.End, bookings)
		result[i] = s
	}
	return result
}

// StaffDay бронирования одного сотрудника на дату (StaffAvailabilityWindow до применения буфера)
type StaffDay struct {
	Staff    *domain.Staff
	Bookings []*domain.Booking
}

// StaffRules правила режима привязки к сотруднику
type StaffRules struct {
	BufferMinutes int
	FullDay       bool
}

// CanTake проверяет, что сотрудник может взять интервал [start, end):
// дневная квота не исчерпана и ни одно бронирование, расширенное с обеих сторон на больший
// из буферов (правила или сохраненный в бронировании), не пересекается с интервалом.
func (r StaffRules) CanTake(day StaffDay, start, end time.Time) bool {
	active := activeOnly(day.Bookings)

	if r.FullDay {
		return len(active) == 0
	}

	if !day.Staff.UnderDailyQuota(len(active)) {
		return false
	}

	for _, b := range active {
		before := minutes(max(r.BufferMinutes, b.TravelBufferBefore))
		after := minutes(max(r.BufferMinutes, b.TravelBufferAfter))
		if Overlaps(start, end, b.ScheduledAt.Add(-before), b.EndsAt().Add(after)) {
			return false
		}
	}
	return true
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// FirstAvailable возвращает первого по порядку сотрудника, который может взять интервал
func (r StaffRules) FirstAvailable(days []StaffDay, start, end time.Time) (*domain.Staff, bool) {
	for _, d := range days {
		if r.CanTake(d, start, end) {
			return d.Staff, true
		}
	}
	return nil, false
}

// Apply проставляет доступность слотам: слот доступен, если его может взять хотя бы один сотрудник
func (r StaffRules) Apply(slots []domain.TimeSlot, days []StaffDay) []domain.TimeSlot {
	result := make([]domain.TimeSlot, len(slots))
	for i, s := range slots {
		if s.Available {
			_, s.Available = r.FirstAvailable(days, s.Start, s.End)
		}
		result[i] = s
	}
	return result
}

// MarkPast делает недоступными слоты, которые начинаются раньше now
func MarkPast(slots []domain.TimeSlot, now time.Time) []domain.TimeSlot {
	for i := range slots {
		if slots[i].Start.Before(now) {
			slots[i].Available = false
		}
	}
	return slots
}

func activeOnly(bookings []*domain.Booking) []*domain.Booking {
	result := make([]*domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b != nil && b.IsActive() {
			result = append(result, b)
		}
	}
	return result
}
