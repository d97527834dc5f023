package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/customer"
	servicesRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/services"
	staffRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/staff"
	"github.com/m04kA/SMC-BookingEngine/internal/service/assignment"
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

type fakeCustomerRepo struct {
	missing bool
	touched int
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, tenant, id string) (*domain.Customer, error) {
	if f.missing {
		return nil, customerRepo.ErrCustomerNotFound
	}
	return &domain.Customer{ID: id, TenantID: tenant}, nil
}

func (f *fakeCustomerRepo) TouchBookingStats(context.Context, string, string, time.Time) error {
	f.touched++
	return nil
}

type fakeStaffRepo struct {
	staff map[string]*domain.Staff
	order []string
}

func (f *fakeStaffRepo) GetByID(_ context.Context, _ string, id string) (*domain.Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, staffRepo.ErrStaffNotFound
	}
	return s, nil
}

func (f *fakeStaffRepo) ListQualified(context.Context, string, string) ([]*domain.Staff, error) {
	result := make([]*domain.Staff, 0, len(f.order))
	for _, id := range f.order {
		result = append(result, f.staff[id])
	}
	return result, nil
}

func (f *fakeStaffRepo) ListDaysOff(context.Context, string, time.Time) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type fakeSettings struct {
	hours   domain.BusinessHours
	invoice domain.InvoiceSettings
	policy  domain.HomeVisitPolicy

	hoursErr   error
	invoiceErr error
	policyErr  error
}

func (f *fakeSettings) GetBusinessHours(context.Context, string) (domain.BusinessHours, error) {
	return f.hours, f.hoursErr
}

func (f *fakeSettings) GetInvoiceSettings(context.Context, string) (domain.InvoiceSettings, error) {
	return f.invoice, f.invoiceErr
}

func (f *fakeSettings) GetHomeVisitPolicy(context.Context, string) (domain.HomeVisitPolicy, error) {
	return f.policy, f.policyErr
}

type fakeBookingRepo struct {
	bookings  []*domain.Booking
	created   []*domain.Booking
	createErr error
	locks     []string
}

func inRange(b *domain.Booking, from, to time.Time) bool {
	return !b.ScheduledAt.Before(from) && b.ScheduledAt.Before(to)
}

func (f *fakeBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	b.CreatedAt = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	f.created = append(f.created, b)
	f.bookings = append(f.bookings, b)
	return b, nil
}

func (f *fakeBookingRepo) ListActiveByService(_ context.Context, _ string, serviceID string, from, to time.Time) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if b.ServiceID == serviceID && !b.HasStaff() && inRange(b, from, to) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) ListActiveByStaff(_ context.Context, _ string, ids []string, from, to time.Time) ([]*domain.Booking, error) {
	var result []*domain.Booking
	for _, b := range f.bookings {
		if !b.HasStaff() || !inRange(b, from, to) {
			continue
		}
		for _, id := range ids {
			if *b.StaffID == id {
				result = append(result, b)
			}
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) CountActiveHomeVisits(_ context.Context, _ string, from, to time.Time) (int, error) {
	count := 0
	for _, b := range f.bookings {
		if b.IsHomeVisit && b.IsActive() && inRange(b, from, to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookingRepo) LockResource(_ context.Context, key string) error {
	f.locks = append(f.locks, key)
	return nil
}

type fakePaymentRepo struct {
	payments []*domain.Payment
	err      error
}

func (f *fakePaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	if f.err != nil {
		return f.err
	}
	f.payments = append(f.payments, p)
	return nil
}

type fakeHistoryRepo struct{ entries []*domain.BookingHistoryEntry }

func (f *fakeHistoryRepo) Append(_ context.Context, e *domain.BookingHistoryEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeOutboxRepo struct{ events []*domain.OutboxEvent }

func (f *fakeOutboxRepo) Insert(_ context.Context, e *domain.OutboxEvent) error {
	f.events = append(f.events, e)
	return nil
}

type fakeTravel struct {
	data  domain.TravelData
	err   error
	calls int
}

func (f *fakeTravel) CalculateWithGracefulDegradation(context.Context, string, string, domain.Location, domain.Location) (domain.TravelData, error) {
	f.calls++
	return f.data, f.err
}

// fakeTxManager выполняет fn без транзакции; err подменяет результат целиком
type fakeTxManager struct {
	err   error
	calls int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

type fakeMetrics struct {
	created   []string
	rejected  []string
	fallbacks int
}

func (m *fakeMetrics) BookingCreated(mode string, _ bool) { m.created = append(m.created, mode) }
func (m *fakeMetrics) BookingRejected(reason string)      { m.rejected = append(m.rejected, reason) }
func (m *fakeMetrics) TravelFallback()                    { m.fallbacks++ }

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC)
}

func weekHours() domain.BusinessHours {
	h := domain.BusinessHours{Timezone: "UTC"}
	for d := time.Monday; d <= time.Saturday; d++ {
		h.Days[d] = domain.DaySchedule{IsOpen: true, Open: types.MustTimeString("09:00"), Close: types.MustTimeString("12:00")}
	}
	return h
}

type fixture struct {
	services  *fakeServiceRepo
	customers *fakeCustomerRepo
	staff     *fakeStaffRepo
	settings  *fakeSettings
	bookings  *fakeBookingRepo
	payments  *fakePaymentRepo
	history   *fakeHistoryRepo
	outbox    *fakeOutboxRepo
	travel    *fakeTravel
	tx        *fakeTxManager
	metrics   *fakeMetrics
	uc        *UseCase
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		services: &fakeServiceRepo{service: &domain.Service{
			ID:                     "svc",
			TenantID:               tenantID,
			BasePrice:              decimal.NewFromInt(100000),
			DurationMinutes:        60,
			SlotGranularityMinutes: 30,
			HourlyQuota:            1,
			IsActive:               true,
		}},
		customers: &fakeCustomerRepo{},
		staff: &fakeStaffRepo{
			staff: map[string]*domain.Staff{
				"anna":  {ID: "anna", Name: "Anna", IsActive: true},
				"boris": {ID: "boris", Name: "Boris", IsActive: true},
				"petr":  {ID: "petr", Name: "Petr", IsActive: false},
			},
			order: []string{"anna", "boris"},
		},
		settings: &fakeSettings{
			hours:   weekHours(),
			invoice: domain.InvoiceSettings{TaxPercentage: decimal.NewFromInt(10)},
			policy: domain.HomeVisitPolicy{
				Enabled:       true,
				DailyQuota:    2,
				BufferMinutes: 30,
				BaseLocation:  domain.Location{Address: "Base street 1"},
			},
		},
		bookings: &fakeBookingRepo{},
		payments: &fakePaymentRepo{},
		history:  &fakeHistoryRepo{},
		outbox:   &fakeOutboxRepo{},
		travel:   &fakeTravel{data: domain.TravelData{Surcharge: decimal.NewFromInt(20000), DistanceKm: 7.5, DurationMinutes: 20}},
		tx:       &fakeTxManager{},
		metrics:  &fakeMetrics{},
	}

	resolver := assignment.NewResolver(f.staff, f.bookings, nopLogger{})
	f.uc = NewUseCase(Deps{
		Services:  f.services,
		Customers: f.customers,
		Staff:     f.staff,
		Settings:  f.settings,
		Bookings:  f.bookings,
		Payments:  f.payments,
		History:   f.history,
		Outbox:    f.outbox,
		Resolver:  resolver,
		Travel:    f.travel,
		TxManager: f.tx,
		Metrics:   f.metrics,
		Logger:    nopLogger{},
	}, cfg)
	// понедельник 2026-10-19 08:00 UTC
	f.uc.timeProvider = fixedTime{now: at(19, 8, 0)}
	return f
}

func baseRequest() *Request {
	return &Request{
		TenantID:    tenantID,
		CustomerID:  "cust",
		ServiceID:   "svc",
		ScheduledAt: at(20, 10, 0),
	}
}

func homeVisitService(f *fixture) {
	f.services.service.HomeVisitEligible = true
	f.services.service.RequiresStaffAssignment = true
}

func homeVisitRequest() *Request {
	req := baseRequest()
	req.ScheduledAt = at(20, 11, 0)
	req.IsHomeVisit = true
	req.HomeVisitAddress = ptr.Ptr("Client street 5")
	return req
}

func TestExecute_ServiceQuotaBooking(t *testing.T) {
	f := newFixture(Config{AutoAssignStaffDefault: true})
	req := baseRequest()
	req.DPAmount = decimal.NewFromInt(50000)
	req.PaymentMethod = ptr.Ptr("cash")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	b := resp.Booking
	assert.Equal(t, domain.StatusPending, b.Status)
	assert.True(t, strings.HasPrefix(b.BookingNumber, "BK-261019-"), b.BookingNumber)
	assert.Len(t, b.BookingNumber, len("BK-261019-")+6)
	assert.Nil(t, b.StaffID)
	assert.True(t, decimal.NewFromInt(110000).Equal(b.TotalAmount))
	assert.Equal(t, domain.PaymentPartial, b.PaymentStatus)
	assert.True(t, b.PaidAmount.Equal(req.DPAmount))
	assert.True(t, resp.PaymentSaved)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, domain.PaymentKindDownPayment, f.payments.payments[0].Kind)
	assert.Equal(t, 1, f.customers.touched)
	require.Len(t, f.history.entries, 1)
	assert.Equal(t, domain.HistoryActionCreated, f.history.entries[0].Action)
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, domain.EventBookingCreated, f.outbox.events[0].EventType)
	assert.Contains(t, string(f.outbox.events[0].Payload), b.BookingNumber)

	assert.Equal(t, []string{"service:" + tenantID + ":svc:2026-10-20"}, f.bookings.locks)
	assert.Equal(t, []string{"service_quota"}, f.metrics.created)
}

func TestExecute_ServiceQuotaRecheckRejectsOverlap(t *testing.T) {
	f := newFixture(Config{})
	f.bookings.bookings = []*domain.Booking{
		{ServiceID: "svc", ScheduledAt: at(20, 9, 30), DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	_, err := f.uc.Execute(context.Background(), baseRequest())
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, f.bookings.created)
	assert.Equal(t, []string{"slot_not_available"}, f.metrics.rejected)
}

func TestExecute_HomeVisitAutoAssignSkipsBufferedStaff(t *testing.T) {
	f := newFixture(Config{AutoAssignStaffDefault: true, TravelTimeout: time.Second})
	homeVisitService(f)
	f.bookings.bookings = []*domain.Booking{
		{ServiceID: "svc", StaffID: ptr.Ptr("anna"), ScheduledAt: at(20, 10, 0), DurationMinutes: 60, Status: domain.StatusConfirmed},
	}

	resp, err := f.uc.Execute(context.Background(), homeVisitRequest())
	require.NoError(t, err)

	b := resp.Booking
	require.NotNil(t, b.StaffID)
	assert.Equal(t, "boris", *b.StaffID)
	assert.Equal(t, "Boris", *resp.StaffName)
	assert.Equal(t, 30, b.TravelBufferBefore)
	assert.Equal(t, 30, b.TravelBufferAfter)

	assert.Equal(t, 1, f.travel.calls)
	assert.False(t, resp.TravelDegraded)
	assert.True(t, decimal.NewFromInt(20000).Equal(b.TravelSurcharge))
	// (100000 + 20000) * 1.1
	assert.True(t, decimal.NewFromInt(132000).Equal(b.TotalAmount))
	assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
	assert.False(t, resp.PaymentSaved)

	assert.Equal(t, []string{
		"staff:" + tenantID + ":boris:2026-10-20",
		"homevisit:" + tenantID + ":2026-10-20",
	}, f.bookings.locks)
	assert.Equal(t, []string{"staff"}, f.metrics.created)
}

func TestExecute_NoStaffAvailable(t *testing.T) {
	f := newFixture(Config{AutoAssignStaffDefault: true})
	homeVisitService(f)
	f.staff.staff["anna"].DailyQuota = 1
	f.staff.staff["boris"].DailyQuota = 1
	f.bookings.bookings = []*domain.Booking{
		{ServiceID: "svc", StaffID: ptr.Ptr("anna"), ScheduledAt: at(20, 9, 0), DurationMinutes: 30, Status: domain.StatusPending},
		{ServiceID: "svc", StaffID: ptr.Ptr("boris"), ScheduledAt: at(20, 9, 0), DurationMinutes: 30, Status: domain.StatusConfirmed},
	}

	_, err := f.uc.Execute(context.Background(), homeVisitRequest())
	assert.ErrorIs(t, err, ErrNoStaffAvailable)
	assert.Zero(t, f.tx.calls)
	assert.Equal(t, []string{"no_staff_available"}, f.metrics.rejected)
}

func TestExecute_StaffRequiredWhenAutoAssignOff(t *testing.T) {
	f := newFixture(Config{AutoAssignStaffDefault: true})
	f.services.service.RequiresStaffAssignment = true
	req := baseRequest()
	req.AutoAssignStaff = ptr.Ptr(false)

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrStaffRequired)
}

func TestExecute_RequiresStaffWithoutHomeVisitIsAutoAssigned(t *testing.T) {
	f := newFixture(Config{AutoAssignStaffDefault: true})
	f.services.service.RequiresStaffAssignment = true

	resp, err := f.uc.Execute(context.Background(), baseRequest())
	require.NoError(t, err)
	require.NotNil(t, resp.Booking.StaffID)
	assert.Equal(t, "anna", *resp.Booking.StaffID)
	assert.Zero(t, resp.Booking.TravelBufferAfter)
}

func TestExecute_RequestedStaff(t *testing.T) {
	f := newFixture(Config{})
	req := baseRequest()
	req.StaffID = ptr.Ptr("boris")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "boris", *resp.Booking.StaffID)

	req.StaffID = ptr.Ptr("petr")
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrStaffInactive)

	req.StaffID = ptr.Ptr("ghost")
	_, err = f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestExecute_RequestedStaffBusy(t *testing.T) {
	f := newFixture(Config{})
	f.bookings.bookings = []*domain.Booking{
		{ServiceID: "other", StaffID: ptr.Ptr("boris"), ScheduledAt: at(20, 10, 30), DurationMinutes: 30, Status: domain.StatusConfirmed},
	}
	req := baseRequest()
	req.StaffID = ptr.Ptr("boris")

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Empty(t, f.bookings.created)
}

func TestExecute_PaymentFailureKeepsBooking(t *testing.T) {
	f := newFixture(Config{})
	f.payments.err = errors.New("savepoint rolled back")
	req := baseRequest()
	req.DPAmount = decimal.NewFromInt(200000)
	req.PaymentMethod = ptr.Ptr("transfer")

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.PaymentSaved)
	assert.Equal(t, domain.PaymentPaid, resp.Booking.PaymentStatus)
	assert.Len(t, f.bookings.created, 1)
	assert.Len(t, f.outbox.events, 1)
}

func TestExecute_WriteConflicts(t *testing.T) {
	t.Run("exclusion constraint", func(t *testing.T) {
		f := newFixture(Config{})
		f.bookings.createErr = fmt.Errorf("%w: conflicting key value", bookingRepo.ErrSlotConflict)

		_, err := f.uc.Execute(context.Background(), baseRequest())
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("serialization failure after retries", func(t *testing.T) {
		f := newFixture(Config{})
		f.tx.err = fmt.Errorf("%w: insert: %w", ErrInternal, &pq.Error{Code: "40001"})

		_, err := f.uc.Execute(context.Background(), baseRequest())
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
	})

	t.Run("other failure", func(t *testing.T) {
		f := newFixture(Config{})
		f.tx.err = errors.New("connection reset")

		_, err := f.uc.Execute(context.Background(), baseRequest())
		assert.ErrorIs(t, err, ErrInternal)
		assert.Equal(t, []string{"internal"}, f.metrics.rejected)
	})
}

func TestExecute_SettingsUnavailable(t *testing.T) {
	down := errors.New("connection refused")
	tests := []struct {
		name    string
		prepare func(s *fakeSettings)
	}{
		{name: "business hours", prepare: func(s *fakeSettings) { s.hoursErr = down }},
		{name: "home visit policy", prepare: func(s *fakeSettings) { s.policyErr = down }},
		{name: "invoice settings", prepare: func(s *fakeSettings) { s.invoiceErr = down }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Config{})
			tt.prepare(f.settings)

			_, err := f.uc.Execute(context.Background(), baseRequest())
			assert.ErrorIs(t, err, ErrDependencyUnavailable)
			assert.NotErrorIs(t, err, ErrInternal)
			assert.Empty(t, f.bookings.created)
			assert.Equal(t, []string{"dependency"}, f.metrics.rejected)
		})
	}
}

func TestExecute_TravelResolution(t *testing.T) {
	t.Run("calculator failure degrades to zero", func(t *testing.T) {
		f := newFixture(Config{AutoAssignStaffDefault: true})
		homeVisitService(f)
		f.travel.err = errors.New("timeout")

		resp, err := f.uc.Execute(context.Background(), homeVisitRequest())
		require.NoError(t, err)
		assert.True(t, resp.TravelDegraded)
		assert.True(t, resp.Booking.TravelSurcharge.IsZero())
		assert.True(t, decimal.NewFromInt(110000).Equal(resp.Booking.TotalAmount))
		assert.Equal(t, 1, f.metrics.fallbacks)
	})

	t.Run("client figures are trusted", func(t *testing.T) {
		f := newFixture(Config{AutoAssignStaffDefault: true})
		homeVisitService(f)
		req := homeVisitRequest()
		req.TravelSurcharge = ptr.Ptr(decimal.NewFromInt(5000))
		req.TravelDistanceKm = ptr.Ptr(3.2)

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Zero(t, f.travel.calls)
		assert.True(t, decimal.NewFromInt(5000).Equal(resp.Booking.TravelSurcharge))
		assert.Equal(t, 3.2, resp.Booking.TravelDistanceKm)
		// (100000 + 5000) * 1.1
		assert.True(t, decimal.NewFromInt(115500).Equal(resp.Booking.TotalAmount))
	})

	t.Run("client figures recomputed when configured", func(t *testing.T) {
		f := newFixture(Config{AutoAssignStaffDefault: true, RecomputeClientTravel: true})
		homeVisitService(f)
		req := homeVisitRequest()
		req.TravelSurcharge = ptr.Ptr(decimal.NewFromInt(5000))

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 1, f.travel.calls)
		assert.True(t, decimal.NewFromInt(20000).Equal(resp.Booking.TravelSurcharge))
	})

	t.Run("no base location", func(t *testing.T) {
		f := newFixture(Config{AutoAssignStaffDefault: true})
		homeVisitService(f)
		f.settings.policy.BaseLocation = domain.Location{}

		resp, err := f.uc.Execute(context.Background(), homeVisitRequest())
		require.NoError(t, err)
		assert.Zero(t, f.travel.calls)
		assert.True(t, resp.TravelDegraded)
	})
}

func TestExecute_HomeVisitQuota(t *testing.T) {
	f := newFixture(Config{AutoAssignStaffDefault: true})
	homeVisitService(f)
	f.settings.policy.DailyQuota = 1
	f.bookings.bookings = []*domain.Booking{
		{ServiceID: "other", IsHomeVisit: true, ScheduledAt: at(20, 9, 0), DurationMinutes: 30, Status: domain.StatusPending},
	}

	_, err := f.uc.Execute(context.Background(), homeVisitRequest())
	assert.ErrorIs(t, err, ErrHomeVisitQuotaReached)

	// переопределение квоты на уровне услуги
	f.services.service.DailyHomeVisitQuota = ptr.Ptr(2)
	_, err = f.uc.Execute(context.Background(), homeVisitRequest())
	assert.NoError(t, err)
}

func TestExecute_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture, req *Request)
		wantErr error
	}{
		{
			name:    "invalid tenant",
			prepare: func(_ *fixture, req *Request) { req.TenantID = "tenant" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "service not found",
			prepare: func(f *fixture, _ *Request) { f.services.service = nil },
			wantErr: ErrServiceNotFound,
		},
		{
			name:    "service inactive",
			prepare: func(f *fixture, _ *Request) { f.services.service.IsActive = false },
			wantErr: ErrServiceInactive,
		},
		{
			name:    "customer not found",
			prepare: func(f *fixture, _ *Request) { f.customers.missing = true },
			wantErr: ErrCustomerNotFound,
		},
		{
			name:    "in the past",
			prepare: func(_ *fixture, req *Request) { req.ScheduledAt = at(19, 7, 0) },
			wantErr: ErrBookingInPast,
		},
		{
			name:    "too far ahead",
			prepare: func(_ *fixture, req *Request) { req.ScheduledAt = at(31, 10, 0) },
			wantErr: ErrDateTooFarInFuture,
		},
		{
			name:    "blocked date",
			prepare: func(f *fixture, _ *Request) { f.settings.hours.BlockedDates = []string{"2026-10-20"} },
			wantErr: ErrDateBlocked,
		},
		{
			name:    "closed day",
			prepare: func(_ *fixture, req *Request) { req.ScheduledAt = at(25, 10, 0) },
			wantErr: ErrBusinessClosed,
		},
		{
			name:    "ends after closing",
			prepare: func(_ *fixture, req *Request) { req.ScheduledAt = at(20, 11, 30) },
			wantErr: ErrOutsideBusinessHours,
		},
		{
			name: "full day not at opening",
			prepare: func(f *fixture, _ *Request) {
				f.services.service.FullDayBooking = true
				f.services.service.DurationMinutes = 120
			},
			wantErr: ErrOutsideBusinessHours,
		},
		{
			name: "home visit not supported",
			prepare: func(_ *fixture, req *Request) {
				req.IsHomeVisit = true
				req.HomeVisitAddress = ptr.Ptr("Client street 5")
			},
			wantErr: ErrHomeVisitNotSupported,
		},
		{
			name: "home visits disabled",
			prepare: func(f *fixture, req *Request) {
				homeVisitService(f)
				f.settings.policy.Enabled = false
				req.IsHomeVisit = true
				req.HomeVisitAddress = ptr.Ptr("Client street 5")
			},
			wantErr: ErrHomeVisitDisabled,
		},
		{
			name: "home visit without location",
			prepare: func(_ *fixture, req *Request) {
				req.IsHomeVisit = true
			},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(Config{MaxAdvanceDays: 7, AutoAssignStaffDefault: true})
			req := baseRequest()
			tt.prepare(f, req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.tx.calls)
			assert.Equal(t, []string{"validation"}, f.metrics.rejected)
		})
	}
}

func TestNewBookingNumber(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 2026-10-19 20:00 UTC уже 20 октября в зоне тенанта
	number := newBookingNumber(at(19, 20, 0), loc)
	assert.Regexp(t, `^BK-261020-[0-9A-F]{6}$`, number)
}
