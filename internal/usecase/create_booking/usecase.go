package create_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	bookingRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/booking"
	customerRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/customer"
	servicesRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/services"
	staffRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/staff"
	"github.com/m04kA/SMC-BookingEngine/internal/service/assignment"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/service/pricing"
	"github.com/m04kA/SMC-BookingEngine/internal/service/slots"
	"github.com/m04kA/SMC-BookingEngine/pkg/txmanager"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking")

// UseCase use case для создания бронирования
type UseCase struct {
	serviceRepo  ServiceRepository
	customerRepo CustomerRepository
	staffRepo    StaffRepository
	settings     SettingsProvider
	bookingRepo  BookingRepository
	paymentRepo  PaymentRepository
	historyRepo  HistoryRepository
	outboxRepo   OutboxRepository
	resolver     StaffResolver
	travel       TravelCalculator
	txManager    TransactionManager
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	cfg          Config
}

// Deps зависимости use case
type Deps struct {
	Services  ServiceRepository
	Customers CustomerRepository
	Staff     StaffRepository
	Settings  SettingsProvider
	Bookings  BookingRepository
	Payments  PaymentRepository
	History   HistoryRepository
	Outbox    OutboxRepository
	Resolver  StaffResolver
	Travel    TravelCalculator // может быть nil: поездка тогда всегда нулевая
	TxManager TransactionManager
	Metrics   Metrics
	Logger    Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(deps Deps, cfg Config) *UseCase {
	return &UseCase{
		serviceRepo:  deps.Services,
		customerRepo: deps.Customers,
		staffRepo:    deps.Staff,
		settings:     deps.Settings,
		bookingRepo:  deps.Bookings,
		paymentRepo:  deps.Payments,
		historyRepo:  deps.History,
		outboxRepo:   deps.Outbox,
		resolver:     deps.Resolver,
		travel:       deps.Travel,
		txManager:    deps.TxManager,
		metrics:      deps.Metrics,
		timeProvider: &RealTimeProvider{},
		logger:       deps.Logger,
		cfg:          cfg,
	}
}

// plan проверенные данные бронирования до записи
type plan struct {
	service   *domain.Service
	staff     *domain.Staff
	loc       *time.Location
	date      time.Time
	start     time.Time
	end       time.Time
	mode      string
	rules     availability.StaffRules
	homeQuota int
}

// Execute выполняет use case создания бронирования.
// Шаги до записи не имеют побочных эффектов; запись выполняется одной сериализуемой транзакцией,
// в которой доступность проверяется повторно на заблокированных строках.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "CreateBooking")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			uc.metrics.BookingRejected(rejectReason(err))
		}
		span.End()
	}()

	uc.logger.Info("CreateBooking: tenant=%s, customer=%s, service=%s, at=%s, homeVisit=%t, staff=%s",
		req.TenantID, req.CustomerID, req.ServiceID, req.ScheduledAt.Format(time.RFC3339), req.IsHomeVisit, staffLabel(req.StaffID))

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tenant.id", req.TenantID),
		attribute.String("service.id", req.ServiceID),
		attribute.Bool("booking.home_visit", req.IsHomeVisit),
	)

	now := uc.timeProvider.Now()

	// 1. Услуга
	service, err := uc.serviceRepo.GetByID(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service=%s not found for tenant=%s", req.ServiceID, req.TenantID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service=%s for tenant=%s: %v", req.ServiceID, req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service=%s is inactive (tenant=%s)", req.ServiceID, req.TenantID)
		return nil, ErrServiceInactive
	}

	// 2. Клиент
	if _, err := uc.customerRepo.GetByID(ctx, req.TenantID, req.CustomerID); err != nil {
		if errors.Is(err, customerRepo.ErrCustomerNotFound) {
			uc.logger.Warn("CreateBooking: customer=%s not found for tenant=%s", req.CustomerID, req.TenantID)
			return nil, ErrCustomerNotFound
		}
		uc.logger.Error("CreateBooking: failed to get customer=%s for tenant=%s: %v", req.CustomerID, req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get customer: %v", ErrInternal, err)
	}

	// 3. Момент бронирования и часы работы
	p, err := uc.checkSchedule(ctx, req, service, now)
	if err != nil {
		return nil, err
	}

	policy, err := uc.settings.GetHomeVisitPolicy(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get home visit policy for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get home visit policy: %v", ErrDependencyUnavailable, err)
	}
	p.mode = availability.ModeFor(service, req.StaffID != nil)
	p.rules = availability.StaffRules{
		BufferMinutes: service.BufferMinutes(policy),
		FullDay:       service.FullDayBooking,
	}

	// 4. Выезд: разрешен ли, квота, поездка
	travel := domain.TravelData{Surcharge: decimal.Zero}
	travelDegraded := false
	if req.IsHomeVisit {
		if err := uc.checkHomeVisit(ctx, req, p, policy); err != nil {
			return nil, err
		}
		travel, travelDegraded = uc.resolveTravel(ctx, req, policy)
	}

	// 4-5. Сотрудник: автоназначение или проверка указанного
	if err := uc.assignStaff(ctx, req, p); err != nil {
		return nil, err
	}

	invoice, err := uc.settings.GetInvoiceSettings(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get invoice settings for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get invoice settings: %v", ErrDependencyUnavailable, err)
	}

	// 6-7. Стоимость и статус оплаты
	breakdown := pricing.Calculate(service.BasePrice, travel.Surcharge, invoice)
	paymentStatus := pricing.PaymentStatus(req.DPAmount, breakdown.TotalAmount)

	booking := uc.buildBooking(req, p, travel, breakdown, paymentStatus, now)

	// 8-10. Запись
	paymentSaved, err := uc.persist(ctx, req, p, booking)
	if err != nil {
		return nil, err
	}

	uc.metrics.BookingCreated(p.mode, booking.IsHomeVisit)
	uc.logger.Info("CreateBooking: created booking id=%s number=%s tenant=%s service=%s staff=%s total=%s payment=%s",
		booking.ID, booking.BookingNumber, req.TenantID, req.ServiceID, staffLabel(booking.StaffID), booking.TotalAmount, booking.PaymentStatus)

	resp = &Response{
		Booking:        booking,
		Pricing:        breakdown,
		TravelDegraded: travelDegraded,
		PaymentSaved:   paymentSaved,
	}
	if p.staff != nil {
		resp.StaffName = &p.staff.Name
	}
	return resp, nil
}

// checkSchedule проверяет, что интервал в будущем и целиком внутри часов работы дня
func (uc *UseCase) checkSchedule(ctx context.Context, req *Request, service *domain.Service, now time.Time) (*plan, error) {
	hours, err := uc.settings.GetBusinessHours(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get business hours for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get business hours: %v", ErrDependencyUnavailable, err)
	}
	loc, fallback := slots.ResolveLocation(hours.Timezone)
	if fallback {
		uc.logger.Warn("CreateBooking: timezone %q of tenant=%s resolved by fallback to %s", hours.Timezone, req.TenantID, loc)
	}

	start := req.ScheduledAt
	end := start.Add(service.Duration())
	date := slots.LocalDate(start, loc)
	dateStr := date.Format(domain.DateFormat)

	if start.Before(now) {
		uc.logger.Warn("CreateBooking: scheduledAt %s is in the past (tenant=%s)", start.Format(time.RFC3339), req.TenantID)
		return nil, ErrBookingInPast
	}
	if uc.cfg.MaxAdvanceDays > 0 && date.After(slots.LocalDate(now, loc).AddDate(0, 0, uc.cfg.MaxAdvanceDays)) {
		uc.logger.Warn("CreateBooking: date %s is beyond %d days (tenant=%s)", dateStr, uc.cfg.MaxAdvanceDays, req.TenantID)
		return nil, fmt.Errorf("%w: can only book %d days in advance", ErrDateTooFarInFuture, uc.cfg.MaxAdvanceDays)
	}
	if hours.IsBlocked(date) {
		uc.logger.Warn("CreateBooking: date %s is blocked for tenant=%s", dateStr, req.TenantID)
		return nil, ErrDateBlocked
	}

	window, isOpen, err := slots.DayWindow(hours.ForDate(date), date, loc)
	if err != nil {
		uc.logger.Warn("CreateBooking: invalid schedule for tenant=%s on %s: %v", req.TenantID, dateStr, err)
		return nil, ErrBusinessClosed
	}
	if !isOpen {
		uc.logger.Warn("CreateBooking: tenant=%s is closed on %s", req.TenantID, dateStr)
		return nil, ErrBusinessClosed
	}
	if !window.Contains(start, end) || (service.FullDayBooking && !start.Equal(window.Open)) {
		uc.logger.Warn("CreateBooking: interval %s-%s is outside business hours %s-%s (tenant=%s)",
			start.In(loc).Format(domain.TimeFormat), end.In(loc).Format(domain.TimeFormat),
			window.Open.Format(domain.TimeFormat), window.Close.Format(domain.TimeFormat), req.TenantID)
		return nil, ErrOutsideBusinessHours
	}

	return &plan{
		service: service,
		loc:     loc,
		date:    date,
		start:   start,
		end:     end,
	}, nil
}

// checkHomeVisit проверяет, что выезд разрешен и квота тенанта на день не исчерпана
func (uc *UseCase) checkHomeVisit(ctx context.Context, req *Request, p *plan, policy domain.HomeVisitPolicy) error {
	if !p.service.HomeVisitEligible {
		uc.logger.Warn("CreateBooking: service=%s does not support home visits (tenant=%s)", req.ServiceID, req.TenantID)
		return ErrHomeVisitNotSupported
	}
	if !policy.Enabled {
		uc.logger.Warn("CreateBooking: home visits are disabled for tenant=%s", req.TenantID)
		return ErrHomeVisitDisabled
	}

	p.homeQuota = p.service.HomeVisitQuota(policy)
	return uc.checkHomeVisitQuota(ctx, req, p)
}

func (uc *UseCase) checkHomeVisitQuota(ctx context.Context, req *Request, p *plan) error {
	if p.homeQuota <= 0 {
		return nil
	}

	from, to := slots.DayBounds(p.date, p.loc)
	count, err := uc.bookingRepo.CountActiveHomeVisits(ctx, req.TenantID, from, to)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to count home visits for tenant=%s date=%s: %v", req.TenantID, p.date.Format(domain.DateFormat), err)
		return fmt.Errorf("%w: failed to count home visits: %w", ErrInternal, err)
	}
	if count >= p.homeQuota {
		uc.logger.Warn("CreateBooking: home visit quota reached for tenant=%s date=%s (%d/%d)",
			req.TenantID, p.date.Format(domain.DateFormat), count, p.homeQuota)
		return ErrHomeVisitQuotaReached
	}
	return nil
}

// assignStaff подбирает сотрудника, если услуга этого требует, или проверяет указанного
func (uc *UseCase) assignStaff(ctx context.Context, req *Request, p *plan) error {
	if req.StaffID == nil {
		if !p.service.RequiresStaffAssignment {
			return nil
		}
		autoAssign := uc.cfg.AutoAssignStaffDefault
		if req.AutoAssignStaff != nil {
			autoAssign = *req.AutoAssignStaff
		}
		if !autoAssign {
			uc.logger.Warn("CreateBooking: service=%s requires staff and auto assignment is off (tenant=%s)", req.ServiceID, req.TenantID)
			return ErrStaffRequired
		}

		staff, err := uc.resolver.Resolve(ctx, uc.staffQuery(req, p, nil), p.rules, p.start, p.end)
		if err != nil {
			if errors.Is(err, assignment.ErrNoStaffAvailable) {
				uc.logger.Warn("CreateBooking: no staff available for tenant=%s service=%s date=%s",
					req.TenantID, req.ServiceID, p.date.Format(domain.DateFormat))
				return ErrNoStaffAvailable
			}
			uc.logger.Error("CreateBooking: staff resolution failed for tenant=%s service=%s: %v", req.TenantID, req.ServiceID, err)
			return fmt.Errorf("%w: staff resolution: %v", ErrInternal, err)
		}
		p.staff = staff
		p.mode = availability.ModeStaff
		return nil
	}

	staff, err := uc.staffRepo.GetByID(ctx, req.TenantID, *req.StaffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			uc.logger.Warn("CreateBooking: staff=%s not found for tenant=%s", *req.StaffID, req.TenantID)
			return ErrStaffNotFound
		}
		uc.logger.Error("CreateBooking: failed to get staff=%s for tenant=%s: %v", *req.StaffID, req.TenantID, err)
		return fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}
	if !staff.IsActive {
		uc.logger.Warn("CreateBooking: staff=%s is inactive (tenant=%s)", staff.ID, req.TenantID)
		return ErrStaffInactive
	}
	p.staff = staff
	return nil
}

func (uc *UseCase) staffQuery(req *Request, p *plan, staffID *string) assignment.Query {
	return assignment.Query{
		TenantID:  req.TenantID,
		ServiceID: req.ServiceID,
		StaffID:   staffID,
		Date:      p.date,
		Location:  p.loc,
	}
}

func (uc *UseCase) buildBooking(req *Request, p *plan, travel domain.TravelData, breakdown domain.PricingBreakdown, status domain.PaymentStatus, now time.Time) *domain.Booking {
	b := &domain.Booking{
		ID:                    uuid.NewString(),
		BookingNumber:         newBookingNumber(now, p.loc),
		TenantID:              req.TenantID,
		CustomerID:            req.CustomerID,
		ServiceID:             req.ServiceID,
		Status:                domain.StatusPending,
		ScheduledAt:           p.start.UTC(),
		DurationMinutes:       p.service.DurationMinutes,
		IsHomeVisit:           req.IsHomeVisit,
		TravelSurcharge:       travel.Surcharge,
		TravelDistanceKm:      travel.DistanceKm,
		TravelDurationMinutes: travel.DurationMinutes,
		TotalAmount:           breakdown.TotalAmount,
		TaxPercentage:         breakdown.TaxPercentage,
		ServiceChargeAmount:   breakdown.ServiceChargeAmount,
		AdditionalFeesAmount:  breakdown.AdditionalFeesAmount,
		PaymentStatus:         status,
		DPAmount:              req.DPAmount,
		PaidAmount:            req.DPAmount,
		PaymentMethod:         req.PaymentMethod,
		PaymentReference:      req.PaymentReference,
		Notes:                 req.Notes,
	}
	if req.IsHomeVisit {
		b.HomeVisitAddress = req.HomeVisitAddress
		b.HomeVisitLatitude = req.HomeVisitLatitude
		b.HomeVisitLongitude = req.HomeVisitLongitude
	}
	if p.staff != nil {
		b.StaffID = &p.staff.ID
		b.TravelBufferBefore = p.rules.BufferMinutes
		b.TravelBufferAfter = p.rules.BufferMinutes
	}
	return b
}

// lockKeys ключи advisory-блокировок ресурса на день
func lockKeys(b *domain.Booking, date time.Time) []string {
	day := date.Format(domain.DateFormat)
	keys := make([]string, 0, 2)
	if b.HasStaff() {
		keys = append(keys, fmt.Sprintf("staff:%s:%s:%s", b.TenantID, *b.StaffID, day))
	} else {
		keys = append(keys, fmt.Sprintf("service:%s:%s:%s", b.TenantID, b.ServiceID, day))
	}
	if b.IsHomeVisit {
		keys = append(keys, fmt.Sprintf("homevisit:%s:%s", b.TenantID, day))
	}
	return keys
}

// persist записывает бронирование и сопутствующие записи в одной сериализуемой транзакции.
// Возвращает true, если запись о предоплате сохранена.
func (uc *UseCase) persist(ctx context.Context, req *Request, p *plan, booking *domain.Booking) (bool, error) {
	var paymentSaved bool

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		paymentSaved = false

		for _, key := range lockKeys(booking, p.date) {
			if err := uc.bookingRepo.LockResource(txCtx, key); err != nil {
				return fmt.Errorf("%w: lock %s: %w", ErrInternal, key, err)
			}
		}

		if err := uc.recheck(txCtx, req, p); err != nil {
			return err
		}

		if _, err := uc.bookingRepo.Create(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotConflict) {
				return ErrSlotNotAvailable
			}
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		paymentSaved = uc.savePayment(txCtx, booking)

		if err := uc.customerRepo.TouchBookingStats(txCtx, booking.TenantID, booking.CustomerID, booking.CreatedAt); err != nil {
			return fmt.Errorf("%w: failed to update customer stats: %w", ErrInternal, err)
		}

		payload, err := json.Marshal(newBookingEvent(booking))
		if err != nil {
			return fmt.Errorf("%w: failed to encode booking event: %v", ErrInternal, err)
		}

		if err := uc.historyRepo.Append(txCtx, &domain.BookingHistoryEntry{
			TenantID:  booking.TenantID,
			BookingID: booking.ID,
			Action:    domain.HistoryActionCreated,
			Status:    booking.Status,
			Payload:   payload,
		}); err != nil {
			return fmt.Errorf("%w: failed to append history: %w", ErrInternal, err)
		}

		if err := uc.outboxRepo.Insert(txCtx, &domain.OutboxEvent{
			AggregateType: domain.AggregateTypeBooking,
			AggregateID:   booking.ID,
			EventType:     domain.EventBookingCreated,
			Payload:       payload,
		}); err != nil {
			return fmt.Errorf("%w: failed to insert outbox event: %w", ErrInternal, err)
		}

		return nil
	})
	if err == nil {
		return paymentSaved, nil
	}

	switch {
	case errors.Is(err, ErrSlotNotAvailable), errors.Is(err, ErrHomeVisitQuotaReached):
		uc.logger.Warn("CreateBooking: write rejected for tenant=%s service=%s staff=%s at %s: %v",
			req.TenantID, req.ServiceID, staffLabel(booking.StaffID), p.start.Format(time.RFC3339), err)
		return false, err
	case txmanager.IsSerializationFailure(err):
		uc.logger.Warn("CreateBooking: serialization conflict persisted after retries for tenant=%s service=%s at %s",
			req.TenantID, req.ServiceID, p.start.Format(time.RFC3339))
		return false, ErrSlotNotAvailable
	}

	uc.logger.Error("CreateBooking: failed to persist booking for tenant=%s service=%s staff=%s date=%s: %v",
		req.TenantID, req.ServiceID, staffLabel(booking.StaffID), p.date.Format(domain.DateFormat), err)
	if errors.Is(err, ErrInternal) {
		return false, err
	}
	return false, fmt.Errorf("%w: %v", ErrInternal, err)
}

// recheck повторяет проверку доступности на строках, прочитанных внутри транзакции
func (uc *UseCase) recheck(ctx context.Context, req *Request, p *plan) error {
	if req.IsHomeVisit {
		if err := uc.checkHomeVisitQuota(ctx, req, p); err != nil {
			return err
		}
	}

	if p.staff != nil {
		days, err := uc.resolver.StaffDays(ctx, uc.staffQuery(req, p, &p.staff.ID))
		if err != nil {
			return fmt.Errorf("%w: recheck staff: %w", ErrInternal, err)
		}
		if len(days) == 0 || !p.rules.CanTake(days[0], p.start, p.end) {
			return ErrSlotNotAvailable
		}
		return nil
	}

	from, to := slots.DayBounds(p.date, p.loc)
	bookings, err := uc.bookingRepo.ListActiveByService(ctx, req.TenantID, req.ServiceID, from, to)
	if err != nil {
		return fmt.Errorf("%w: recheck service bookings: %w", ErrInternal, err)
	}
	quota := availability.ServiceQuota{
		HourlyQuota: p.service.Quota(),
		FullDay:     p.service.FullDayBooking,
		Location:    p.loc,
	}
	if !quota.SlotFits(p.start, p.end, bookings) {
		return ErrSlotNotAvailable
	}
	return nil
}

// savePayment сохраняет запись о предоплате. Ошибка логируется и не отменяет бронирование.
func (uc *UseCase) savePayment(ctx context.Context, booking *domain.Booking) bool {
	if !booking.DPAmount.IsPositive() || booking.PaymentMethod == nil {
		return false
	}

	err := uc.paymentRepo.Create(ctx, &domain.Payment{
		ID:        uuid.NewString(),
		TenantID:  booking.TenantID,
		BookingID: booking.ID,
		Kind:      domain.PaymentKindDownPayment,
		Amount:    booking.DPAmount,
		Method:    *booking.PaymentMethod,
		Reference: booking.PaymentReference,
		CreatedAt: booking.CreatedAt,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to record down payment for booking id=%s tenant=%s amount=%s, booking kept: %v",
			booking.ID, booking.TenantID, booking.DPAmount, err)
		return false
	}
	return true
}

func staffLabel(id *string) string {
	if id == nil {
		return "-"
	}
	return *id
}

// rejectReason метка причины отказа для метрик
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrSlotNotAvailable):
		return "slot_not_available"
	case errors.Is(err, ErrNoStaffAvailable):
		return "no_staff_available"
	case errors.Is(err, ErrHomeVisitQuotaReached):
		return "home_visit_quota"
	case errors.Is(err, ErrDependencyUnavailable):
		return "dependency"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "validation"
	}
}
