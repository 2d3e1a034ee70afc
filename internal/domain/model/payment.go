package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment records money captured by the payment processor for a subscription.
type Payment struct {
	ID                 string
	UserSubscriptionID string
	Provider           string // e.g. "stripe"
	Amount             decimal.Decimal
	Currency           string
	Status             PaymentStatus
	TransactionID      string // processor transaction id, unique
	EventID            string // processor event id that delivered it
	CreatedAt          time.Time
}

// AmountFromMinor converts an amount in minor units (cents) to a decimal
// with two fractional digits.
func AmountFromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
