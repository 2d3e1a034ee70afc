package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
)

var _ repository.PlaceRepository = (*placeRepo)(nil)

type placeRepo struct{ pool *pgxpool.Pool }

func NewPlaceRepo(pool *pgxpool.Pool) *placeRepo {
	return &placeRepo{pool: pool}
}

func (r *placeRepo) SaveRestaurant(ctx context.Context, tx repository.Tx, rest *model.Restaurant) error {
	const q = `
INSERT INTO restaurants (id, owner_id, name) VALUES ($1,$2,$3)
ON CONFLICT (id) DO UPDATE SET owner_id=$2, name=$3;`
	_, err := execSQL(ctx, r.pool, tx, q, rest.ID, rest.OwnerID, rest.Name)
	return translateErr(err)
}

func (r *placeRepo) Save(ctx context.Context, tx repository.Tx, p *model.Place) error {
	const q = `
INSERT INTO places (id, restaurant_id, name, address) VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO UPDATE SET restaurant_id=$2, name=$3, address=$4;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.RestaurantID, p.Name, p.Address)
	return translateErr(err)
}

// FindByID resolves the owning business account through the restaurant.
func (r *placeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Place, error) {
	const q = `
SELECT p.id, p.restaurant_id, r.owner_id, p.name, p.address
  FROM places p
  JOIN restaurants r ON r.id = p.restaurant_id
 WHERE p.id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var p model.Place
	if err := row.Scan(&p.ID, &p.RestaurantID, &p.OwnerID, &p.Name, &p.Address); err != nil {
		return nil, scanErr(err)
	}
	return &p, nil
}

func (r *placeRepo) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.Place, error) {
	const q = `
SELECT p.id, p.restaurant_id, r.owner_id, p.name, p.address
  FROM places p
  JOIN restaurants r ON r.id = p.restaurant_id
 WHERE r.owner_id=$1
 ORDER BY p.name;`
	rows, err := queryRows(ctx, r.pool, tx, q, ownerID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	var out []*model.Place
	for rows.Next() {
		var p model.Place
		if err := rows.Scan(&p.ID, &p.RestaurantID, &p.OwnerID, &p.Name, &p.Address); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
