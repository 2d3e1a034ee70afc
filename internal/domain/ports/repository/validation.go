package repository

import (
	"context"
	"time"

	"fideliza/internal/domain/model"
)

// ValidationFilter narrows the audit trail listing.
type ValidationFilter struct {
	OwnerID string
	PlaceID string
	Since   *time.Time
	Limit   int
	Offset  int
}

// ValidationRepository stores the append-only redemption audit trail.
type ValidationRepository interface {
	Insert(ctx context.Context, tx Tx, v *model.SubscriptionValidation) error
	List(ctx context.Context, tx Tx, f ValidationFilter) ([]*model.SubscriptionValidation, error)
}
