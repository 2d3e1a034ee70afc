package repository

import (
	"context"

	"fideliza/internal/domain/model"
)

// PlaceRepository resolves places together with their restaurant owner.
type PlaceRepository interface {
	SaveRestaurant(ctx context.Context, tx Tx, r *model.Restaurant) error
	Save(ctx context.Context, tx Tx, p *model.Place) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Place, error)
	ListByOwner(ctx context.Context, tx Tx, ownerID string) ([]*model.Place, error)
}
