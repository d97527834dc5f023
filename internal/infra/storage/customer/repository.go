package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

// Repository репозиторий клиентов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает клиента тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID, id string) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"phone",
		"total_bookings",
		"last_booking_at",
	).
		From("customers").
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var c domain.Customer
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&c.ID,
		&c.TenantID,
		&c.Name,
		&c.Phone,
		&c.TotalBookings,
		&c.LastBookingAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan customer: %v", ErrScanRow, err)
	}

	return &c, nil
}

// TouchBookingStats увеличивает счетчик бронирований клиента и обновляет время последнего бронирования
func (r *Repository) TouchBookingStats(ctx context.Context, tenantID, id string, bookedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("customers").
		Set("total_bookings", squirrel.Expr("total_bookings + 1")).
		Set("last_booking_at", bookedAt.UTC()).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: TouchBookingStats - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: TouchBookingStats - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: TouchBookingStats - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrCustomerNotFound
	}

	return nil
}
