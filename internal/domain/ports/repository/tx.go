package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repository methods accept `tx` and use it when it is a live transaction
// (row locks, tx-bound Exec/Query). They MUST accept NoTX (nil) and fall
// back to the pool.
//
// USAGE
// tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
// code, err := codes.FindByCode(ctx, tx, raw)
// ...
// return err
// })
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

// Locker serializes work on a key for the lifetime of the current transaction.
type Locker interface {
	LockKey(ctx context.Context, tx Tx, key string) error
}
