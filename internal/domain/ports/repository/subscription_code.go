package repository

import (
	"context"

	"fideliza/internal/domain/model"
)

// SubscriptionCodeRepository is the port for redemption codes.
type SubscriptionCodeRepository interface {
	// Create inserts a new code. A code collision returns domain.ErrAlreadyExists.
	Create(ctx context.Context, tx Tx, code *model.SubscriptionCode) error
	Exists(ctx context.Context, tx Tx, code string) (bool, error)
	// FindByCode returns the code whether or not it was used. Inside a
	// transaction the row is locked.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.SubscriptionCode, error)
	// MarkUsed flips is_used only if it is still false; it reports whether
	// this call won the row.
	MarkUsed(ctx context.Context, tx Tx, id string) (bool, error)
}
