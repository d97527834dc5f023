package settings

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

// Repository Settings Provider поверх таблицы tenant_settings.
// Колонки jsonb хранятся в том виде, в каком их записала админка; наружу отдаются
// только нормализованные доменные структуры.
// Отсутствующая строка означает настройки по умолчанию: все дни закрыты, налогов нет, выезды выключены.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

func (r *Repository) fetch(ctx context.Context, method, tenantID string, columns ...string) ([]sql.NullString, bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From("tenant_settings").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, method, err)
	}

	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return values, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s - scan settings: %v", ErrScanRow, method, err)
	}

	return values, true, nil
}

// GetBusinessHours возвращает расписание и часовой пояс тенанта
func (r *Repository) GetBusinessHours(ctx context.Context, tenantID string) (domain.BusinessHours, error) {
	values, found, err := r.fetch(ctx, "GetBusinessHours", tenantID, "timezone", "business_hours")
	if err != nil {
		return domain.BusinessHours{}, err
	}
	if !found {
		return domain.BusinessHours{Timezone: domain.DefaultTimezone}, nil
	}

	hours, err := normalizeBusinessHours([]byte(values[1].String), values[0].String)
	if err != nil {
		return domain.BusinessHours{}, fmt.Errorf("GetBusinessHours - tenant %s: %w", tenantID, err)
	}
	return hours, nil
}

// GetInvoiceSettings возвращает налоги и сборы тенанта
func (r *Repository) GetInvoiceSettings(ctx context.Context, tenantID string) (domain.InvoiceSettings, error) {
	values, found, err := r.fetch(ctx, "GetInvoiceSettings", tenantID, "invoice_settings")
	if err != nil {
		return domain.InvoiceSettings{}, err
	}
	if !found {
		return domain.InvoiceSettings{}, nil
	}

	settings, err := normalizeInvoiceSettings([]byte(values[0].String))
	if err != nil {
		return domain.InvoiceSettings{}, fmt.Errorf("GetInvoiceSettings - tenant %s: %w", tenantID, err)
	}
	return settings, nil
}

// GetHomeVisitPolicy возвращает политику выездов тенанта
func (r *Repository) GetHomeVisitPolicy(ctx context.Context, tenantID string) (domain.HomeVisitPolicy, error) {
	values, found, err := r.fetch(ctx, "GetHomeVisitPolicy", tenantID, "home_visit_policy")
	if err != nil {
		return domain.HomeVisitPolicy{}, err
	}
	if !found {
		return domain.HomeVisitPolicy{}, nil
	}

	policy, err := normalizeHomeVisitPolicy([]byte(values[0].String))
	if err != nil {
		return domain.HomeVisitPolicy{}, fmt.Errorf("GetHomeVisitPolicy - tenant %s: %w", tenantID, err)
	}
	return policy, nil
}
