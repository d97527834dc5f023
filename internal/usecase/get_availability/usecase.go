package get_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	servicesRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/services"
	"github.com/m04kA/SMC-BookingEngine/internal/service/assignment"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/service/slots"
)

var tracer = otel.Tracer("github.com/m04kA/SMC-BookingEngine/internal/usecase/get_availability")

// UseCase use case расчета доступных слотов услуги на дату
type UseCase struct {
	serviceRepo  ServiceRepository
	settings     SettingsProvider
	bookingRepo  BookingRepository
	resolver     StaffResolver
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	cfg          Config
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	serviceRepo ServiceRepository,
	settings SettingsProvider,
	bookingRepo BookingRepository,
	resolver StaffResolver,
	metrics Metrics,
	logger Logger,
	cfg Config,
) *UseCase {
	return &UseCase{
		serviceRepo:  serviceRepo,
		settings:     settings,
		bookingRepo:  bookingRepo,
		resolver:     resolver,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		cfg:          cfg,
	}
}

// Execute выполняет use case получения доступности
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	ctx, span := tracer.Start(ctx, "GetAvailability")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, time.UTC)
	dateStr := date.Format(domain.DateFormat)

	span.SetAttributes(
		attribute.String("tenant.id", req.TenantID),
		attribute.String("service.id", req.ServiceID),
		attribute.String("date", dateStr),
	)

	uc.logger.Info("GetAvailability: tenant=%s, service=%s, date=%s, staff=%s",
		req.TenantID, req.ServiceID, dateStr, staffLabel(req.StaffID))

	// 2. Услуга
	service, err := uc.serviceRepo.GetByID(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, servicesRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service=%s not found for tenant=%s", req.ServiceID, req.TenantID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service=%s for tenant=%s: %v", req.ServiceID, req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailability: service=%s is inactive (tenant=%s)", req.ServiceID, req.TenantID)
		return nil, ErrServiceInactive
	}

	// 3. Расписание и часовой пояс
	hours, err := uc.settings.GetBusinessHours(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get business hours for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get business hours: %v", ErrDependencyUnavailable, err)
	}
	loc, fallback := slots.ResolveLocation(hours.Timezone)
	if fallback {
		uc.logger.Warn("GetAvailability: timezone %q of tenant=%s resolved by fallback to %s", hours.Timezone, req.TenantID, loc)
	}

	// 4. Дата относительно "сегодня" тенанта
	now := uc.timeProvider.Now()
	if err := validateDate(date, slots.LocalDate(now, loc), uc.cfg.MaxAdvanceDays); err != nil {
		uc.logger.Warn("GetAvailability: date validation failed for tenant=%s date=%s: %v", req.TenantID, dateStr, err)
		return nil, err
	}

	mode := availability.ModeFor(service, req.StaffID != nil)
	uc.metrics.AvailabilityRequest(mode)
	span.SetAttributes(attribute.String("availability.mode", mode))

	resp = &Response{
		Date:     date,
		Timezone: loc.String(),
		Mode:     mode,
		Slots:    []domain.TimeSlot{},
	}

	// 5. Закрытая дата
	if hours.IsBlocked(date) {
		uc.logger.Info("GetAvailability: date %s is blocked for tenant=%s", dateStr, req.TenantID)
		resp.IsBlocked = true
		return resp, nil
	}

	// 6. Рабочее окно дня
	window, isOpen, err := slots.DayWindow(hours.ForDate(date), date, loc)
	if err != nil {
		uc.logger.Warn("GetAvailability: invalid schedule for tenant=%s on %s, treating as closed: %v", req.TenantID, dateStr, err)
		return resp, nil
	}
	if !isOpen {
		uc.logger.Info("GetAvailability: tenant=%s is closed on %s", req.TenantID, dateStr)
		return resp, nil
	}
	resp.IsOpen = true

	// 7. Кандидаты
	candidates := slots.Generate(window, service.DurationMinutes, service.Granularity(), service.FullDayBooking)
	if len(candidates) == 0 {
		return resp, nil
	}

	// 8. Доступность
	switch mode {
	case availability.ModeStaff:
		candidates, err = uc.evaluateStaff(ctx, req, service, date, loc, candidates)
	default:
		candidates, err = uc.evaluateServiceQuota(ctx, req, service, date, loc, candidates)
	}
	if err != nil {
		return nil, err
	}

	resp.Slots = availability.MarkPast(candidates, now)

	available := 0
	for _, s := range resp.Slots {
		if s.Available {
			available++
		}
	}
	uc.logger.Info("GetAvailability: %d of %d slots available for tenant=%s, service=%s, date=%s, mode=%s",
		available, len(resp.Slots), req.TenantID, req.ServiceID, dateStr, mode)

	return resp, nil
}

func (uc *UseCase) evaluateServiceQuota(ctx context.Context, req *Request, service *domain.Service, date time.Time, loc *time.Location, candidates []domain.TimeSlot) ([]domain.TimeSlot, error) {
	from, to := slots.DayBounds(date, loc)
	bookings, err := uc.bookingRepo.ListActiveByService(ctx, req.TenantID, req.ServiceID, from, to)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get bookings for tenant=%s service=%s date=%s: %v",
			req.TenantID, req.ServiceID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	quota := availability.ServiceQuota{
		HourlyQuota: service.Quota(),
		FullDay:     service.FullDayBooking,
		Location:    loc,
	}
	return quota.Apply(candidates, bookings), nil
}

func (uc *UseCase) evaluateStaff(ctx context.Context, req *Request, service *domain.Service, date time.Time, loc *time.Location, candidates []domain.TimeSlot) ([]domain.TimeSlot, error) {
	policy, err := uc.settings.GetHomeVisitPolicy(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get home visit policy for tenant=%s: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to get home visit policy: %v", ErrDependencyUnavailable, err)
	}

	days, err := uc.resolver.StaffDays(ctx, assignment.Query{
		TenantID:  req.TenantID,
		ServiceID: req.ServiceID,
		StaffID:   req.StaffID,
		Date:      date,
		Location:  loc,
	})
	if err != nil {
		switch {
		case errors.Is(err, assignment.ErrStaffNotFound):
			return nil, ErrStaffNotFound
		case errors.Is(err, assignment.ErrStaffInactive):
			return nil, ErrStaffInactive
		}
		return nil, fmt.Errorf("%w: failed to load staff: %v", ErrInternal, err)
	}

	rules := availability.StaffRules{
		BufferMinutes: service.BufferMinutes(policy),
		FullDay:       service.FullDayBooking,
	}
	return rules.Apply(candidates, days), nil
}

func staffLabel(id *string) string {
	if id == nil {
		return "-"
	}
	return *id
}
