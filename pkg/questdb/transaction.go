package questdb

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/muhammadchandra19/ohlcv-engine/pkg/errors"
)

type contextKey string

const txKey contextKey = "questdb_transaction"

// Begin starts a transaction and returns a context carrying it.
func Begin(ctx context.Context, client Client) (context.Context, error) {
	tx, err := client.Begin(ctx)
	if err != nil {
		return nil, errors.NewTracer("questdb_begin_error").Wrap(err)
	}

	return context.WithValue(ctx, txKey, tx), nil
}

// Commit commits the transaction carried by ctx.
func Commit(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return errors.NewTracer("no transaction found in context")
	}
	return tx.Commit(ctx)
}

// Rollback rolls back the transaction carried by ctx.
func Rollback(ctx context.Context) error {
	tx, ok := GetTx(ctx)
	if !ok {
		return errors.NewTracer("no transaction found in context")
	}
	return tx.Rollback(ctx)
}

// GetTx extracts the transaction from ctx.
func GetTx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// WithTx runs fn inside a transaction, committing when fn succeeds and rolling
// back otherwise.
func WithTx(ctx context.Context, client Client, fn func(ctx context.Context) error) error {
	txCtx, err := Begin(ctx, client)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = Rollback(txCtx)
		return err
	}

	if err := Commit(txCtx); err != nil {
		_ = Rollback(txCtx)
		return errors.NewTracer("questdb_commit_error").Wrap(err)
	}
	return nil
}
