package repository

import (
	"context"

	"fideliza/internal/domain/model"
)

// -----------------------------
// Payments
// -----------------------------

type PaymentRepository interface {
	// Insert stores a payment. A duplicate transaction id returns domain.ErrAlreadyExists.
	Insert(ctx context.Context, tx Tx, p *model.Payment) error
	FindByTransactionID(ctx context.Context, tx Tx, transactionID string) (*model.Payment, error)
	ListBySubscription(ctx context.Context, tx Tx, userSubscriptionID string) ([]*model.Payment, error)
}
