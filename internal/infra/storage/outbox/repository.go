package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

var (
	ErrBuildQuery = errors.New("outbox.repository: failed to build query")
	ErrExecQuery  = errors.New("outbox.repository: failed to execute query")
	ErrScanRow    = errors.New("outbox.repository: failed to scan row")
)

// Repository таблица outbox_events: события пишутся в транзакции бронирования,
// публикуются в kafka отдельным процессом
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert добавляет событие
func (r *Repository) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("outbox_events").
		Columns("aggregate_type", "aggregate_id", "event_type", "payload").
		Values(event.AggregateType, event.AggregateID, event.EventType, event.Payload).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&event.ID); err != nil {
		return fmt.Errorf("%w: Insert - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}

// FetchUnpublished выбирает пачку неопубликованных событий.
// Внутри транзакции строки блокируются с SKIP LOCKED, чтобы несколько экземпляров не публиковали одно и то же.
func (r *Repository) FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id", "aggregate_type", "aggregate_id", "event_type", "payload").
		From("outbox_events").
		Where(squirrel.Eq{"published_at": nil}).
		OrderBy("id ASC").
		Limit(uint64(limit))

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE SKIP LOCKED")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	events := make([]*domain.OutboxEvent, 0, limit)
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("%w: FetchUnpublished - scan row: %v", ErrScanRow, err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: FetchUnpublished - rows error: %v", ErrScanRow, err)
	}

	return events, nil
}

// MarkPublished отмечает события опубликованными
func (r *Repository) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("outbox_events").
		Set("published_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkPublished - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkPublished - execute update: %v", ErrExecQuery, err)
	}

	return nil
}
