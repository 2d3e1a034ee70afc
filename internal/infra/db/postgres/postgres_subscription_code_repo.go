package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.SubscriptionCodeRepository = (*subscriptionCodeRepo)(nil)

type subscriptionCodeRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionCodeRepo(pool *pgxpool.Pool) *subscriptionCodeRepo {
	return &subscriptionCodeRepo{pool: pool}
}

// Create relies on the UNIQUE index on code; a collision surfaces as
// domain.ErrAlreadyExists.
func (r *subscriptionCodeRepo) Create(ctx context.Context, tx repository.Tx, c *model.SubscriptionCode) error {
	const q = `
INSERT INTO subscription_codes (id, code, user_subscription_id, expires_at, is_used, used_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Code, c.UserSubscriptionID, c.ExpiresAt, c.IsUsed, c.UsedAt, c.CreatedAt)
	return translateErr(err)
}

func (r *subscriptionCodeRepo) Exists(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT EXISTS (SELECT 1 FROM subscription_codes WHERE code=$1);`, code)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, scanErr(err)
	}
	return exists, nil
}

// FindByCode returns used and unused codes alike so callers can tell
// "already used" from "invalid".
func (r *subscriptionCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.SubscriptionCode, error) {
	q := forUpdate(`
SELECT id, code, user_subscription_id, expires_at, is_used, used_at, created_at
  FROM subscription_codes
 WHERE code = $1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var c model.SubscriptionCode
	if err := row.Scan(&c.ID, &c.Code, &c.UserSubscriptionID, &c.ExpiresAt, &c.IsUsed, &c.UsedAt, &c.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	return &c, nil
}

func (r *subscriptionCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, id string) (bool, error) {
	const q = `UPDATE subscription_codes SET is_used = TRUE, used_at = NOW() WHERE id = $1 AND is_used = FALSE;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return false, translateErr(err)
	}
	return cmd.RowsAffected() == 1, nil
}
