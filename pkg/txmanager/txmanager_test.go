package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingEngine/pkg/dbmetrics"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, nil }
func (f *fakeTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRowContext(context.Context, string, ...any) *sql.Row        { return nil }
func (f *fakeTx) Commit() error                                                   { f.committed = true; return nil }
func (f *fakeTx) Rollback() error                                                 { f.rolledBack = true; return nil }

type fakeBeginner struct {
	txs  []*fakeTx
	opts []*sql.TxOptions
}

func (b *fakeBeginner) BeginTx(_ context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	b.opts = append(b.opts, opts)
	return tx, nil
}

func TestDoSerializable_CommitsOnSuccess(t *testing.T) {
	b := &fakeBeginner{}
	m := NewTransactionManager(b)

	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	require.Len(t, b.txs, 1)
	assert.True(t, b.txs[0].committed)
	assert.Equal(t, sql.LevelSerializable, b.opts[0].Isolation)
}

func TestDoSerializable_RollsBackOnError(t *testing.T) {
	b := &fakeBeginner{}
	m := NewTransactionManager(b)
	boom := errors.New("boom")

	err := m.DoSerializable(context.Background(), func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	require.Len(t, b.txs, 1)
	assert.True(t, b.txs[0].rolledBack)
	assert.False(t, b.txs[0].committed)
}

func TestDoSerializable_RetriesSerializationFailures(t *testing.T) {
	b := &fakeBeginner{}
	m := NewTransactionManager(b)

	calls := 0
	err := m.DoSerializable(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, b.txs[2].committed)
}

func TestDo_ReusesOuterTransaction(t *testing.T) {
	b := &fakeBeginner{}
	m := NewTransactionManager(b)

	err := m.Do(context.Background(), func(ctx context.Context) error {
		return m.DoSerializable(ctx, func(context.Context) error { return nil })
	})

	require.NoError(t, err)
	assert.Len(t, b.txs, 1)
}
