package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
)

type PlanStatus string

const (
	PlanStatusActive   PlanStatus = "ACTIVE"
	PlanStatusInactive PlanStatus = "INACTIVE"
)

// SubscriptionPlan is a purchasable loyalty offering tied to one place.
type SubscriptionPlan struct {
	ID        string
	PlaceID   string
	Name      string
	Benefits  string
	Price     decimal.Decimal
	Visits    int // visit allowance granted per billing period
	IsActive  bool
	Status    PlanStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *SubscriptionPlan) IsZero() bool { return p == nil || p.ID == "" }

// Purchasable reports whether new customers may buy the plan.
func (p *SubscriptionPlan) Purchasable() bool {
	return p != nil && p.IsActive && p.Status == PlanStatusActive
}

// NewSubscriptionPlan validates and constructs a plan.
func NewSubscriptionPlan(id, placeID, name, benefits string, price decimal.Decimal, visits int) (*SubscriptionPlan, error) {
	name = strings.TrimSpace(name)
	if id == "" || placeID == "" || name == "" || visits < 0 || !price.IsPositive() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &SubscriptionPlan{
		ID:        id,
		PlaceID:   placeID,
		Name:      name,
		Benefits:  benefits,
		Price:     price.Round(2),
		Visits:    visits,
		IsActive:  true,
		Status:    PlanStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
