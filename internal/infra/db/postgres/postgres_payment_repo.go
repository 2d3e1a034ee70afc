package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, user_subscription_id, provider, amount::text, currency, status, transaction_id, event_id, created_at`

func (r *paymentRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `
INSERT INTO payments (id, user_subscription_id, provider, amount, currency, status, transaction_id, event_id, created_at)
VALUES ($1,$2,$3,$4::numeric,$5,$6,$7,$8,$9);`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.UserSubscriptionID, p.Provider, p.Amount.StringFixed(2), p.Currency, string(p.Status), p.TransactionID, p.EventID, p.CreatedAt,
	)
	return translateErr(err)
}

func (r *paymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, transactionID string) (*model.Payment, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+paymentColumns+` FROM payments WHERE transaction_id=$1;`, transactionID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) ListBySubscription(ctx context.Context, tx repository.Tx, userSubscriptionID string) ([]*model.Payment, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payments WHERE user_subscription_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userSubscriptionID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	var out []*model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func scanPayment(row pgx.Row) (*model.Payment, error) {
	p := &model.Payment{}
	var amount, status string
	if err := row.Scan(&p.ID, &p.UserSubscriptionID, &p.Provider, &amount, &p.Currency, &status, &p.TransactionID, &p.EventID, &p.CreatedAt); err != nil {
		return nil, scanErr(err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	p.Amount = d
	p.Status = model.PaymentStatus(status)
	return p, nil
}
