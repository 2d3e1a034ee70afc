package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subColumns = `id, user_id, subscription_id, place_id, status, start_date, end_date, remaining_visits,
       last_payment, next_payment, amount::text, is_active, created_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.UserSubscription) error {
	const q = `
INSERT INTO user_subscriptions (
  id, user_id, subscription_id, place_id, status, start_date, end_date, remaining_visits,
  last_payment, next_payment, amount, is_active, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11::numeric,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  status=$5, start_date=$6, end_date=$7, remaining_visits=$8,
  last_payment=$9, next_payment=$10, amount=$11::numeric, is_active=$12;`

	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.SubscriptionID, s.PlaceID, string(s.Status), s.StartDate, s.EndDate, s.RemainingVisits,
		s.LastPayment, s.NextPayment, s.Amount.StringFixed(2), s.IsActive, s.CreatedAt,
	)
	return translateErr(err)
}

// FindByID locks the row when called inside a transaction.
func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.UserSubscription, error) {
	q := forUpdate(`SELECT `+subColumns+` FROM user_subscriptions WHERE id=$1`, tx)
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindFirstByPlan(ctx context.Context, tx repository.Tx, planID string) (*model.UserSubscription, error) {
	const q = `SELECT ` + subColumns + ` FROM user_subscriptions WHERE subscription_id=$1 ORDER BY created_at ASC, id ASC LIMIT 1`
	return r.queryOne(ctx, tx, q, planID)
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.UserSubscription, error) {
	const q = `SELECT ` + subColumns + ` FROM user_subscriptions WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	var out []*model.UserSubscription
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) ConsumeVisit(ctx context.Context, tx repository.Tx, id string) (int, error) {
	const q = `
UPDATE user_subscriptions
   SET remaining_visits = GREATEST(remaining_visits - 1, 0)
 WHERE id=$1
RETURNING remaining_visits;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return 0, err
	}
	var remaining int
	if err := row.Scan(&remaining); err != nil {
		return 0, scanErr(err)
	}
	return remaining, nil
}

func (r *subscriptionRepo) TouchLastPayment(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE user_subscriptions SET last_payment=$2 WHERE id=$1;`, id, at)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.SubscriptionStatus, isActive bool) error {
	cmd, err := execSQL(ctx, r.pool, tx, `UPDATE user_subscriptions SET status=$2, is_active=$3 WHERE id=$1;`, id, string(status), isActive)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE user_subscriptions
   SET status='EXPIRED', is_active=FALSE
 WHERE status='ACTIVE' AND end_date < $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, translateErr(err)
	}
	return int(cmd.RowsAffected()), nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT status, COUNT(*) FROM user_subscriptions GROUP BY status;`)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	out := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var c int
		if err := rows.Scan(&status, &c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[model.SubscriptionStatus(status)] = c
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...interface{}) (*model.UserSubscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanSub(row)
}

func scanSub(row pgx.Row) (*model.UserSubscription, error) {
	s := &model.UserSubscription{}
	var status, amount string
	if err := row.Scan(
		&s.ID, &s.UserID, &s.SubscriptionID, &s.PlaceID, &status, &s.StartDate, &s.EndDate, &s.RemainingVisits,
		&s.LastPayment, &s.NextPayment, &amount, &s.IsActive, &s.CreatedAt,
	); err != nil {
		return nil, scanErr(err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	s.Amount = d
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}
