package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

var staffColumns = []string{
	"s.id",
	"s.tenant_id",
	"s.name",
	"s.is_active",
	"s.daily_quota",
	"s.working_days",
}

// Repository репозиторий сотрудников (только чтение)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория сотрудников
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает сотрудника тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns...).
		From("staff s").
		Where(squirrel.Eq{"s.tenant_id": tenantID, "s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanStaff(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan staff: %v", ErrScanRow, err)
	}

	return s, nil
}

// ListQualified получает активных сотрудников, которые умеют выполнять услугу.
// Порядок стабильный (имя, id): по нему выбирается сотрудник при автоназначении.
func (r *Repository) ListQualified(ctx context.Context, tenantID, serviceID string) ([]*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns...).
		From("staff s").
		Join("staff_services ss ON ss.staff_id = s.id").
		Where(squirrel.Eq{
			"s.tenant_id":   tenantID,
			"ss.service_id": serviceID,
			"s.is_active":   true,
		}).
		OrderBy("s.name ASC", "s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListQualified - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListQualified - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListQualified - scan row: %v", ErrScanRow, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListQualified - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// ListDaysOff возвращает множество id сотрудников тенанта, у которых дата - выходной
func (r *Repository) ListDaysOff(ctx context.Context, tenantID string, date time.Time) (map[string]bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("staff_id").
		From("staff_days_off").
		Where(squirrel.Eq{"tenant_id": tenantID, "day": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDaysOff - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDaysOff - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make(map[string]bool)
	for rows.Next() {
		var staffID string
		if err := rows.Scan(&staffID); err != nil {
			return nil, fmt.Errorf("%w: ListDaysOff - scan row: %v", ErrScanRow, err)
		}
		result[staffID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDaysOff - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (*domain.Staff, error) {
	var (
		s           domain.Staff
		dailyQuota  sql.NullInt64
		workingDays []int64
	)

	if err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.IsActive,
		&dailyQuota,
		pq.Array(&workingDays),
	); err != nil {
		return nil, err
	}

	s.DailyQuota = int(dailyQuota.Int64)
	s.WorkingDays = toWeekdays(workingDays)

	return &s, nil
}

// toWeekdays переводит дни недели из БД (0 - воскресенье ... 6 - суббота) в time.Weekday
func toWeekdays(days []int64) []time.Weekday {
	result := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			result = append(result, time.Weekday(d))
		}
	}
	return result
}
