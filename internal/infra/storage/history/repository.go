package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

var (
	ErrBuildQuery = errors.New("history.repository: failed to build query")
	ErrExecQuery  = errors.New("history.repository: failed to execute query")
)

// Repository журнал изменений бронирований (только добавление)
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись в журнал
func (r *Repository) Append(ctx context.Context, entry *domain.BookingHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_history").
		Columns("tenant_id", "booking_id", "action", "status", "payload").
		Values(entry.TenantID, entry.BookingID, entry.Action, string(entry.Status), entry.Payload).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.CreatedAt); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}
