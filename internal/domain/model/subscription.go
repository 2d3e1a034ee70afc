package model

import (
	"time"

	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
	SubscriptionStatusExpired  SubscriptionStatus = "EXPIRED"
)

// UserSubscription is a customer's instance of a purchased plan at a place.
type UserSubscription struct {
	ID              string
	UserID          string
	SubscriptionID  string // plan id
	PlaceID         string
	Status          SubscriptionStatus
	StartDate       time.Time
	EndDate         time.Time
	RemainingVisits int
	LastPayment     *time.Time
	NextPayment     *time.Time
	Amount          decimal.Decimal
	IsActive        bool
	CreatedAt       time.Time
}

// NewUserSubscription starts a one-month billing period at now.
// The end date uses calendar-month arithmetic.
func NewUserSubscription(id, userID, placeID string, plan *SubscriptionPlan, now time.Time) (*UserSubscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if placeID == "" {
		placeID = plan.PlaceID
	}
	start := now
	end := start.AddDate(0, 1, 0)
	return &UserSubscription{
		ID:              id,
		UserID:          userID,
		SubscriptionID:  plan.ID,
		PlaceID:         placeID,
		Status:          SubscriptionStatusActive,
		StartDate:       start,
		EndDate:         end,
		RemainingVisits: plan.Visits,
		LastPayment:     &start,
		NextPayment:     &end,
		Amount:          plan.Price,
		IsActive:        true,
		CreatedAt:       now,
	}, nil
}

// Redeemable reports whether the subscription currently authorizes visits.
func (us *UserSubscription) Redeemable() bool {
	return us != nil && us.IsActive && us.Status == SubscriptionStatusActive
}

// Due reports whether the billing period has ended at t.
func (us *UserSubscription) Due(t time.Time) bool {
	return us.Status == SubscriptionStatusActive && us.EndDate.Before(t)
}
