package assignment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	staffRepo "github.com/m04kA/SMC-BookingEngine/internal/infra/storage/staff"
	"github.com/m04kA/SMC-BookingEngine/internal/service/availability"
	"github.com/m04kA/SMC-BookingEngine/internal/service/slots"
)

// Query параметры подбора сотрудников на дату
type Query struct {
	TenantID  string
	ServiceID string
	StaffID   *string        // если задан, кандидат только он
	Date      time.Time      // календарная дата (полночь UTC)
	Location  *time.Location // зона тенанта
}

// Resolver подбирает сотрудников для режима привязки к сотруднику
type Resolver struct {
	staffRepo   StaffRepository
	bookingRepo BookingRepository
	logger      Logger
}

// NewResolver создает новый экземпляр
func NewResolver(staffRepo StaffRepository, bookingRepo BookingRepository, logger Logger) *Resolver {
	return &Resolver{
		staffRepo:   staffRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// StaffDays возвращает кандидатов, работающих в дату, вместе с их активными бронированиями дня.
// Порядок кандидатов совпадает с порядком репозитория.
// Внутри транзакции бронирования читаются с блокировкой, поэтому результат годится для повторной проверки перед записью.
func (r *Resolver) StaffDays(ctx context.Context, q Query) ([]availability.StaffDay, error) {
	candidates, err := r.candidates(ctx, q)
	if err != nil {
		return nil, err
	}

	daysOff, err := r.staffRepo.ListDaysOff(ctx, q.TenantID, q.Date)
	if err != nil {
		r.logger.Error("StaffDays: failed to load days off for tenant=%s date=%s: %v", q.TenantID, q.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: StaffDays - days off: %v", ErrInternal, err)
	}

	working := make([]*domain.Staff, 0, len(candidates))
	ids := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if !s.WorksOn(q.Date) || daysOff[s.ID] {
			continue
		}
		working = append(working, s)
		ids = append(ids, s.ID)
	}
	if len(working) == 0 {
		return []availability.StaffDay{}, nil
	}

	from, to := slots.DayBounds(q.Date, q.Location)
	bookings, err := r.bookingRepo.ListActiveByStaff(ctx, q.TenantID, ids, from, to)
	if err != nil {
		r.logger.Error("StaffDays: failed to load bookings for tenant=%s service=%s date=%s: %v",
			q.TenantID, q.ServiceID, q.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: StaffDays - bookings: %w", ErrInternal, err)
	}

	byStaff := make(map[string][]*domain.Booking, len(working))
	for _, b := range bookings {
		if b.StaffID != nil {
			byStaff[*b.StaffID] = append(byStaff[*b.StaffID], b)
		}
	}

	days := make([]availability.StaffDay, 0, len(working))
	for _, s := range working {
		days = append(days, availability.StaffDay{Staff: s, Bookings: byStaff[s.ID]})
	}
	return days, nil
}

// Resolve выбирает первого по порядку сотрудника, который может взять [start, end)
func (r *Resolver) Resolve(ctx context.Context, q Query, rules availability.StaffRules, start, end time.Time) (*domain.Staff, error) {
	days, err := r.StaffDays(ctx, q)
	if err != nil {
		return nil, err
	}

	staff, ok := rules.FirstAvailable(days, start, end)
	if !ok {
		r.logger.Warn("Resolve: no staff available for tenant=%s service=%s at %s (%d candidates)",
			q.TenantID, q.ServiceID, start.Format(time.RFC3339), len(days))
		return nil, ErrNoStaffAvailable
	}

	r.logger.Info("Resolve: assigned staff=%s for tenant=%s service=%s at %s",
		staff.ID, q.TenantID, q.ServiceID, start.Format(time.RFC3339))
	return staff, nil
}

func (r *Resolver) candidates(ctx context.Context, q Query) ([]*domain.Staff, error) {
	if q.StaffID == nil {
		list, err := r.staffRepo.ListQualified(ctx, q.TenantID, q.ServiceID)
		if err != nil {
			r.logger.Error("StaffDays: failed to list qualified staff for tenant=%s service=%s: %v", q.TenantID, q.ServiceID, err)
			return nil, fmt.Errorf("%w: StaffDays - qualified staff: %v", ErrInternal, err)
		}
		return list, nil
	}

	s, err := r.staffRepo.GetByID(ctx, q.TenantID, *q.StaffID)
	if err != nil {
		if errors.Is(err, staffRepo.ErrStaffNotFound) {
			r.logger.Warn("StaffDays: staff=%s not found for tenant=%s", *q.StaffID, q.TenantID)
			return nil, ErrStaffNotFound
		}
		r.logger.Error("StaffDays: failed to get staff=%s for tenant=%s: %v", *q.StaffID, q.TenantID, err)
		return nil, fmt.Errorf("%w: StaffDays - get staff: %v", ErrInternal, err)
	}
	if !s.IsActive {
		r.logger.Warn("StaffDays: staff=%s is inactive (tenant=%s)", s.ID, q.TenantID)
		return nil, ErrStaffInactive
	}
	return []*domain.Staff{s}, nil
}
