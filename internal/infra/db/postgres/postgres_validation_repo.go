package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
)

var _ repository.ValidationRepository = (*validationRepo)(nil)

type validationRepo struct{ pool *pgxpool.Pool }

func NewValidationRepo(pool *pgxpool.Pool) *validationRepo {
	return &validationRepo{pool: pool}
}

// Insert appends one audit record. Records are never updated.
func (r *validationRepo) Insert(ctx context.Context, tx repository.Tx, v *model.SubscriptionValidation) error {
	const q = `
INSERT INTO subscription_validations (
  id, user_id, user_subscription_id, subscription_id, subscription_name, remaining_visits,
  place_id, place_name, restaurant_id, validated_by, owner_id, status, start_date, end_date, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15);`
	_, err := execSQL(ctx, r.pool, tx, q,
		v.ID, v.UserID, v.UserSubscriptionID, v.SubscriptionID, v.SubscriptionName, v.RemainingVisits,
		v.PlaceID, v.PlaceName, v.RestaurantID, v.ValidatedBy, v.OwnerID, string(v.Status), v.StartDate, v.EndDate, v.CreatedAt,
	)
	return translateErr(err)
}

func (r *validationRepo) List(ctx context.Context, tx repository.Tx, f repository.ValidationFilter) ([]*model.SubscriptionValidation, error) {
	if f.OwnerID == "" {
		return nil, domain.ErrInvalidArgument
	}
	where := []string{"owner_id = $1"}
	args := []interface{}{f.OwnerID}
	if f.PlaceID != "" {
		args = append(args, f.PlaceID)
		where = append(where, fmt.Sprintf("place_id = $%d", len(args)))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	q := fmt.Sprintf(`
SELECT id, user_id, user_subscription_id, subscription_id, subscription_name, remaining_visits,
       place_id, place_name, restaurant_id, validated_by, owner_id, status, start_date, end_date, created_at
  FROM subscription_validations
 WHERE %s
 ORDER BY created_at DESC, id DESC
 LIMIT $%d OFFSET $%d;`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	var out []*model.SubscriptionValidation
	for rows.Next() {
		var v model.SubscriptionValidation
		var status string
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.UserSubscriptionID, &v.SubscriptionID, &v.SubscriptionName, &v.RemainingVisits,
			&v.PlaceID, &v.PlaceName, &v.RestaurantID, &v.ValidatedBy, &v.OwnerID, &status, &v.StartDate, &v.EndDate, &v.CreatedAt,
		); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		v.Status = model.SubscriptionStatus(status)
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
