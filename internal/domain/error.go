package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Redemption codes
	ErrInvalidCode        = errors.New("invalid code")
	ErrCodeAlreadyUsed    = errors.New("code already used")
	ErrCodeExpired        = errors.New("code expired")
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique redemption code")
	ErrNoVisitsRemaining  = errors.New("no visits remaining")
	ErrRateLimited        = errors.New("too many attempts")

	// Subscriptions
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrSubscriptionNotActive = errors.New("subscription not active")
	ErrInvalidRestaurant     = errors.New("invalid restaurant")
	ErrQRExpired             = errors.New("QR code expired")
)
