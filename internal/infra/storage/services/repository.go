package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий услуг (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает услугу тенанта. Услуга другого тенанта не находится.
func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"base_price",
		"duration_minutes",
		"slot_granularity_minutes",
		"hourly_quota",
		"home_visit_eligible",
		"requires_staff_assignment",
		"full_day_booking",
		"daily_home_visit_quota",
		"is_active",
	).
		From("services").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		s          domain.Service
		granular   sql.NullInt64
		quota      sql.NullInt64
		dailyQuota sql.NullInt64
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.BasePrice,
		&s.DurationMinutes,
		&granular,
		&quota,
		&s.HomeVisitEligible,
		&s.RequiresStaffAssignment,
		&s.FullDayBooking,
		&dailyQuota,
		&s.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %v", ErrScanRow, err)
	}

	s.SlotGranularityMinutes = int(granular.Int64)
	s.HourlyQuota = int(quota.Int64)
	if dailyQuota.Valid {
		v := int(dailyQuota.Int64)
		s.DailyHomeVisitQuota = &v
	}

	return &s, nil
}
