package availability

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/internal/service/slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

func at(h, m int) time.Time {
	return time.Date(2026, 10, 20, h, m, 0, 0, time.UTC)
}

func booking(start time.Time, minutes int) *domain.Booking {
	return &domain.Booking{ScheduledAt: start, DurationMinutes: minutes, Status: domain.StatusConfirmed}
}

func window(t *testing.T, open, closeAt string) slots.Window {
	t.Helper()
	w, isOpen, err := slots.DayWindow(domain.DaySchedule{
		IsOpen: true,
		Open:   types.MustTimeString(open),
		Close:  types.MustTimeString(closeAt),
	}, at(0, 0), time.UTC)
	if err != nil || !isOpen {
		t.Fatalf("window: %v", err)
	}
	return w
}

func summary(ts []domain.TimeSlot) []string {
	out := make([]string, 0, len(ts))
	for _, s := range ts {
		out = append(out, fmt.Sprintf("%s:%t", s.Start.Format("15:04"), s.Available))
	}
	return out
}

func TestServiceQuota_ConcreteScenario(t *testing.T) {
	candidates := slots.Generate(window(t, "09:00", "12:00"), 60, 30, false)
	existing := []*domain.Booking{booking(at(9, 0), 60)}

	got := ServiceQuota{HourlyQuota: 1, Location: time.UTC}.Apply(candidates, existing)

	assert.Equal(t, []string{
		"09:00:false",
		"09:30:false",
		"10:00:true",
		"10:30:true",
		"11:00:true",
	}, summary(got))
}

func TestServiceQuota_HourBucketFullRegardlessOfMinuteOffsets(t *testing.T) {
	q := ServiceQuota{HourlyQuota: 2, Location: time.UTC}
	candidates := slots.Generate(window(t, "09:00", "12:00"), 15, 15, false)
	existing := []*domain.Booking{booking(at(10, 5), 10), booking(at(10, 40), 10)}

	got := q.Apply(candidates, existing)

	for _, s := range got {
		if s.Start.Hour() == 10 {
			assert.False(t, s.Available, "slot %s", s.Start.Format("15:04"))
		} else {
			assert.True(t, s.Available, "slot %s", s.Start.Format("15:04"))
		}
	}
}

func TestServiceQuota_OverlapAcrossHourBoundary(t *testing.T) {
	q := ServiceQuota{HourlyQuota: 3, Location: time.UTC}
	existing := []*domain.Booking{booking(at(9, 30), 60)}

	assert.False(t, q.SlotFits(at(10, 0), at(10, 30), existing))
	assert.True(t, q.SlotFits(at(10, 30), at(11, 0), existing))
}

func TestServiceQuota_IgnoresInactiveBookings(t *testing.T) {
	cancelled := booking(at(9, 0), 60)
	cancelled.Status = domain.StatusCancelled

	assert.True(t, ServiceQuota{HourlyQuota: 1, Location: time.UTC}.SlotFits(at(9, 0), at(10, 0), []*domain.Booking{cancelled}))
}

func TestServiceQuota_FullDay(t *testing.T) {
	q := ServiceQuota{HourlyQuota: 1, FullDay: true, Location: time.UTC}
	assert.True(t, q.SlotFits(at(8, 0), at(16, 0), nil))
	assert.False(t, q.SlotFits(at(8, 0), at(16, 0), []*domain.Booking{booking(at(15, 0), 30)}))
}

func TestHourBucket_HalfHourZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+30*60)
	// 04:10 UTC = 09:40 IST, 03:50 UTC = 09:20 IST
	assert.Equal(t, HourBucket(time.Date(2026, 10, 20, 4, 10, 0, 0, time.UTC), loc),
		HourBucket(time.Date(2026, 10, 20, 3, 50, 0, 0, time.UTC), loc))
}

func TestStaffRules_BufferBoundary(t *testing.T) {
	staff := &domain.Staff{ID: "s1"}
	day := StaffDay{Staff: staff, Bookings: []*domain.Booking{booking(at(14, 0), 60)}}
	rules := StaffRules{BufferMinutes: 30}

	assert.False(t, rules.CanTake(day, at(15, 0), at(16, 0)), "inside trailing buffer")
	assert.True(t, rules.CanTake(day, at(15, 30), at(16, 30)), "exactly buffer after end")
	assert.False(t, rules.CanTake(day, at(12, 45), at(13, 45)), "inside leading buffer")
	assert.True(t, rules.CanTake(day, at(12, 30), at(13, 30)), "exactly buffer before start")
}

func TestStaffRules_StoredBufferOfExistingBooking(t *testing.T) {
	homeVisit := booking(at(14, 0), 60)
	homeVisit.TravelBufferBefore = 30
	homeVisit.TravelBufferAfter = 30
	day := StaffDay{Staff: &domain.Staff{ID: "s1"}, Bookings: []*domain.Booking{homeVisit}}

	noBuffer := StaffRules{}
	assert.False(t, noBuffer.CanTake(day, at(15, 0), at(16, 0)), "inside stored trailing buffer")
	assert.True(t, noBuffer.CanTake(day, at(15, 30), at(16, 30)))
	assert.False(t, noBuffer.CanTake(day, at(12, 45), at(13, 45)), "inside stored leading buffer")
	assert.True(t, noBuffer.CanTake(day, at(12, 30), at(13, 30)))

	// правило шире сохраненного буфера
	wide := StaffRules{BufferMinutes: 45}
	assert.False(t, wide.CanTake(day, at(15, 30), at(16, 30)))
	assert.True(t, wide.CanTake(day, at(15, 45), at(16, 45)))
}

func TestStaffRules_DailyQuota(t *testing.T) {
	staff := &domain.Staff{ID: "s1", DailyQuota: 2}
	day := StaffDay{Staff: staff, Bookings: []*domain.Booking{booking(at(9, 0), 60), booking(at(11, 0), 60)}}

	assert.False(t, StaffRules{}.CanTake(day, at(15, 0), at(16, 0)))

	staff.DailyQuota = 3
	assert.True(t, StaffRules{}.CanTake(day, at(15, 0), at(16, 0)))
}

func TestStaffRules_FullDayBlocksAfterFirstBooking(t *testing.T) {
	rules := StaffRules{FullDay: true}
	w := window(t, "08:00", "17:00")
	candidates := slots.Generate(w, 480, 30, true)

	free := rules.Apply(candidates, []StaffDay{{Staff: &domain.Staff{ID: "s1"}}})
	assert.Equal(t, []string{"08:00:true"}, summary(free))

	taken := rules.Apply(candidates, []StaffDay{{Staff: &domain.Staff{ID: "s1"}, Bookings: []*domain.Booking{booking(at(8, 0), 480)}}})
	assert.Equal(t, []string{"08:00:false"}, summary(taken))
}

func TestStaffRules_AnyStaffMakesSlotAvailable(t *testing.T) {
	rules := StaffRules{BufferMinutes: 30}
	busy := StaffDay{Staff: &domain.Staff{ID: "busy"}, Bookings: []*domain.Booking{booking(at(14, 0), 60)}}
	free := StaffDay{Staff: &domain.Staff{ID: "free"}}

	staff, ok := rules.FirstAvailable([]StaffDay{busy, free}, at(15, 0), at(16, 0))
	assert.True(t, ok)
	assert.Equal(t, "free", staff.ID)

	staff, ok = rules.FirstAvailable([]StaffDay{free, busy}, at(16, 0), at(17, 0))
	assert.True(t, ok)
	assert.Equal(t, "free", staff.ID, "first in order wins")

	got := rules.Apply([]domain.TimeSlot{{Start: at(15, 0), End: at(16, 0), Available: true}}, []StaffDay{busy})
	assert.False(t, got[0].Available)

	assert.False(t, rules.Apply([]domain.TimeSlot{{Start: at(15, 0), End: at(16, 0), Available: true}}, nil)[0].Available)
}

func TestMarkPast(t *testing.T) {
	got := MarkPast([]domain.TimeSlot{
		{Start: at(9, 0), End: at(10, 0), Available: true},
		{Start: at(11, 0), End: at(12, 0), Available: true},
	}, at(10, 15))

	assert.False(t, got[0].Available)
	assert.True(t, got[1].Available)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeServiceQuota, ModeFor(&domain.Service{}, false))
	assert.Equal(t, ModeStaff, ModeFor(&domain.Service{}, true))
	assert.Equal(t, ModeStaff, ModeFor(&domain.Service{RequiresStaffAssignment: true}, false))
	assert.Equal(t, ModeServiceQuota, ModeFor(&domain.Service{HomeVisitEligible: true}, false),
		"home visit without required staff stays in service quota mode")
}
