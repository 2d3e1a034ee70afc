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

var _ repository.SubscriptionPlanRepository = (*PlanRepo)(nil)

type PlanRepo struct {
	pool *pgxpool.Pool
}

func NewPlanRepo(pool *pgxpool.Pool) *PlanRepo {
	return &PlanRepo{pool: pool}
}

const planColumns = `id, place_id, name, benefits, price::text, visits, is_active, status, created_at, updated_at`

func (r *PlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.SubscriptionPlan) error {
	const q = `
INSERT INTO subscription_plans (id, place_id, name, benefits, price, visits, is_active, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5::numeric,$6,$7,$8,$9,NOW())
ON CONFLICT (id) DO UPDATE SET
  place_id=$2, name=$3, benefits=$4, price=$5::numeric, visits=$6, is_active=$7, status=$8, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.PlaceID, p.Name, p.Benefits, p.Price.StringFixed(2), p.Visits, p.IsActive, string(p.Status), p.CreatedAt,
	)
	return translateErr(err)
}

func (r *PlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+planColumns+` FROM subscription_plans WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *PlanRepo) ListByPlace(ctx context.Context, tx repository.Tx, placeID string, onlyActive bool) ([]*model.SubscriptionPlan, error) {
	q := `SELECT ` + planColumns + ` FROM subscription_plans WHERE place_id=$1`
	if onlyActive {
		q += ` AND is_active AND status='ACTIVE'`
	}
	q += ` ORDER BY price ASC, name ASC;`

	rows, err := queryRows(ctx, r.pool, tx, q, placeID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	var out []*model.SubscriptionPlan
	for rows.Next() {
		p, err := scanPlan(rows)
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

// Delete deactivates the plan; subscriber records keep referencing it.
func (r *PlanRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE subscription_plans SET is_active=FALSE, status='INACTIVE', updated_at=NOW() WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return translateErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPlan(row pgx.Row) (*model.SubscriptionPlan, error) {
	var p model.SubscriptionPlan
	var price, status string
	if err := row.Scan(&p.ID, &p.PlaceID, &p.Name, &p.Benefits, &price, &p.Visits, &p.IsActive, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, scanErr(err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	p.Price = d
	p.Status = model.PlanStatus(status)
	return &p, nil
}
