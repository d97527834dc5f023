package get_availability

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	servicesRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/services"
	"github.com/m04kA/SMC-BookingEngine/internal/service/assignment"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/pkg/ptr"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

const tenantID = "8d4c7f2e-7a1b-4c55-9a3e-0c1f2a3b4c5d"

type fakeServiceRepo struct {
	service *domain.Service
}

func (f *fakeServiceRepo) GetByID(context.Context, string, string) (*domain.Service, error) {
	if f.service == nil {
		return nil, servicesRepo.ErrServiceNotFound
	}
	return f.service, nil
}

type fakeSettings struct {
	hours  domain.BusinessHours
	policy domain.HomeVisitPolicy
	err    error
}

func (f *fakeSettings) GetBusinessHours(context.Context, string) (domain.BusinessHours, error) {
	return f.hours, f.err
}

func (f *fakeSettings) GetHomeVisitPolicy(context.Context, string) (domain.HomeVisitPolicy, error) {
	return f.policy, f.err
}

type fakeBookingRepo struct {
	bookings []*domain.Booking
	calls    int
}

func (f *fakeBookingRepo) ListActiveByService(context.Context, string, string, time.Time, time.Time) ([]*domain.Booking, error) {
	f.calls++
	return f.bookings, nil
}

type fakeResolver struct {
	days  []availability.StaffDay
	err   error
	query assignment.Query
}

func (f *fakeResolver) StaffDays(_ context.Context, q assignment.Query) ([]availability.StaffDay, error) {
	f.query = q
	return f.days, f.err
}

type fakeMetrics struct{ modes []string }

func (m *fakeMetrics) AvailabilityRequest(mode string) { m.modes = append(m.modes, mode) }

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func weekHours() domain.BusinessHours {
	h := domain.BusinessHours{Timezone: "UTC"}
	for d := time.Monday; d <= time.Saturday; d++ {
		h.Days[d] = domain.DaySchedule{IsOpen: true, Open: types.MustTimeString("09:00"), Close: types.MustTimeString("12:00")}
	}
	return h
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
}

type fixture struct {
	services *fakeServiceRepo
	settings *fakeSettings
	bookings *fakeBookingRepo
	resolver *fakeResolver
	metrics  *fakeMetrics
	uc       *UseCase
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		services: &fakeServiceRepo{service: &domain.Service{
			ID:                     "svc",
			TenantID:               tenantID,
			DurationMinutes:        60,
			SlotGranularityMinutes: 30,
			HourlyQuota:            1,
			IsActive:               true,
		}},
		settings: &fakeSettings{hours: weekHours()},
		bookings: &fakeBookingRepo{},
		resolver: &fakeResolver{},
		metrics:  &fakeMetrics{},
	}
	f.uc = NewUseCase(f.services, f.settings, f.bookings, f.resolver, f.metrics, nopLogger{}, cfg)
	// понедельник 2026-10-19 08:00 UTC
	f.uc.timeProvider = fixedTime{now: at(19, 8, 0)}
	return f
}

func availableFlags(slots []domain.TimeSlot) []bool {
	result := make([]bool, len(slots))
	for i, s := range slots {
		result[i] = s.Available
	}
	return result
}

func TestExecute_ServiceQuotaMode(t *testing.T) {
	f := newFixture(Config{})
	f.bookings.bookings = []*domain.Booking{
		{ScheduledAt: at(20, 10, 0), DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)})
	require.NoError(t, err)

	assert.True(t, resp.IsOpen)
	assert.False(t, resp.IsBlocked)
	assert.Equal(t, availability.ModeServiceQuota, resp.Mode)
	require.Len(t, resp.Slots, 5)
	assert.Equal(t, at(20, 9, 0), resp.Slots[0].Start)
	assert.Equal(t, at(20, 12, 0), resp.Slots[4].End)
	// 09:00 свободен, 09:30-10:30 пересекаются или в заполненном часе, 11:00 свободен
	assert.Equal(t, []bool{true, false, false, false, true}, availableFlags(resp.Slots))
	assert.Equal(t, []string{availability.ModeServiceQuota}, f.metrics.modes)
}

func TestExecute_StaffMode(t *testing.T) {
	f := newFixture(Config{})
	f.services.service.RequiresStaffAssignment = true
	f.services.service.HomeVisitEligible = true
	f.settings.policy = domain.HomeVisitPolicy{Enabled: true, BufferMinutes: 30}
	f.resolver.days = []availability.StaffDay{{
		Staff:    &domain.Staff{ID: "anna", IsActive: true},
		Bookings: []*domain.Booking{{ScheduledAt: at(20, 10, 0), DurationMinutes: 60, Status: domain.StatusPending}},
	}}

	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)})
	require.NoError(t, err)

	assert.Equal(t, availability.ModeStaff, resp.Mode)
	// бронирование 10:00-11:00 с буфером 30 минут блокирует 09:30-11:30
	assert.Equal(t, []bool{false, false, false, false, false}, availableFlags(resp.Slots))
	assert.Equal(t, at(20, 0, 0), f.resolver.query.Date)
	assert.Zero(t, f.bookings.calls)
}

func TestExecute_StaffRequestedSwitchesMode(t *testing.T) {
	f := newFixture(Config{})
	f.resolver.days = []availability.StaffDay{{Staff: &domain.Staff{ID: "anna", IsActive: true}}}

	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0), StaffID: ptr.Ptr("anna")})
	require.NoError(t, err)

	assert.Equal(t, availability.ModeStaff, resp.Mode)
	assert.Equal(t, []bool{true, true, true, true, true}, availableFlags(resp.Slots))
	require.NotNil(t, f.resolver.query.StaffID)
	assert.Equal(t, "anna", *f.resolver.query.StaffID)
}

func TestExecute_NoWorkingStaff(t *testing.T) {
	f := newFixture(Config{})
	f.services.service.RequiresStaffAssignment = true

	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 5)
	assert.NotContains(t, availableFlags(resp.Slots), true)
}

func TestExecute_BlockedDate(t *testing.T) {
	f := newFixture(Config{})
	f.settings.hours.BlockedDates = []string{"2026-10-20"}

	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)})
	require.NoError(t, err)

	assert.True(t, resp.IsBlocked)
	assert.False(t, resp.IsOpen)
	assert.Empty(t, resp.Slots)
	assert.Zero(t, f.bookings.calls)
}

func TestExecute_ClosedDay(t *testing.T) {
	f := newFixture(Config{})

	// 2026-10-25 - воскресенье
	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(25, 0, 0)})
	require.NoError(t, err)

	assert.False(t, resp.IsOpen)
	assert.False(t, resp.IsBlocked)
	assert.Empty(t, resp.Slots)
}

func TestExecute_TodayMarksStartedSlots(t *testing.T) {
	f := newFixture(Config{})
	f.uc.timeProvider = fixedTime{now: at(19, 10, 15)}

	resp, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(19, 0, 0)})
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false, false, true, true}, availableFlags(resp.Slots))
}

func TestExecute_DateValidation(t *testing.T) {
	f := newFixture(Config{MaxAdvanceDays: 7})

	_, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(18, 0, 0)})
	assert.ErrorIs(t, err, ErrDateInPast)

	_, err = f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(27, 0, 0)})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)

	_, err = f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(26, 0, 0)})
	assert.NoError(t, err)
}

func TestExecute_PastDateUsesTenantZone(t *testing.T) {
	f := newFixture(Config{})
	f.settings.hours.Timezone = "Asia/Jakarta"
	// 2026-10-19 20:00 UTC - в Джакарте уже 20 октября
	f.uc.timeProvider = fixedTime{now: at(19, 20, 0)}

	_, err := f.uc.Execute(context.Background(), &Request{TenantID: tenantID, ServiceID: "svc", Date: at(19, 0, 0)})
	assert.ErrorIs(t, err, ErrDateInPast)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		req     Request
		wantErr error
	}{
		{
			name:    "invalid tenant",
			req:     Request{TenantID: "nope", ServiceID: "svc", Date: at(20, 0, 0)},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing date",
			req:     Request{TenantID: tenantID, ServiceID: "svc"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "service not found",
			prepare: func(f *fixture) { f.services.service = nil },
			req:     Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)},
			wantErr: ErrServiceNotFound,
		},
		{
			name:    "service inactive",
			prepare: func(f *fixture) { f.services.service.IsActive = false },
			req:     Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)},
			wantErr: ErrServiceInactive,
		},
		{
			name:    "staff not found",
			prepare: func(f *fixture) { f.resolver.err = assignment.ErrStaffNotFound },
			req:     Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0), StaffID: ptr.Ptr("ghost")},
			wantErr: ErrStaffNotFound,
		},
		{
			name:    "resolver failure",
			prepare: func(f *fixture) { f.resolver.err = errors.New("db down") },
			req:     Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0), StaffID: ptr.Ptr("anna")},
			wantErr: ErrInternal,
		},
		{
			name:    "settings unavailable",
			prepare: func(f *fixture) { f.settings.err = errors.New("connection refused") },
			req:     Request{TenantID: tenantID, ServiceID: "svc", Date: at(20, 0, 0)},
			wantErr: ErrDependencyUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Config{})
			if tt.prepare != nil {
				tt.prepare(f)
			}
			_, err := f.uc.Execute(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
