package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingEngine/pkg/psqlbuilder"
)

const savepointName = "payment_record"

// Repository репозиторий платежей
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория платежей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет платеж.
// Внутри транзакции вставка изолирована точкой сохранения: при ошибке транзакция
// откатывается только до неё и остается пригодной для остальных операций.
func (r *Repository) Create(ctx context.Context, p *domain.Payment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	inTx := dbmetrics.IsInTransaction(ctx)

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	query, args, err := psqlbuilder.Insert("payments").
		Columns("id", "tenant_id", "booking_id", "kind", "amount", "method", "reference", "created_at").
		Values(p.ID, p.TenantID, p.BookingID, p.Kind, p.Amount, p.Method, p.Reference, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if inTx {
		if _, err := executor.ExecContext(ctx, "SAVEPOINT "+savepointName); err != nil {
			return fmt.Errorf("%w: Create - savepoint: %v", ErrSavepoint, err)
		}
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		if inTx {
			if _, rbErr := executor.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepointName); rbErr != nil {
				return fmt.Errorf("%w: Create - rollback to savepoint: %v (insert error: %v)", ErrSavepoint, rbErr, err)
			}
		}
		return fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if inTx {
		if _, err := executor.ExecContext(ctx, "RELEASE SAVEPOINT "+savepointName); err != nil {
			return fmt.Errorf("%w: Create - release savepoint: %v", ErrSavepoint, err)
		}
	}

	return nil
}
