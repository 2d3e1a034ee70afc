package apiv1

import (
	"time"

	"fideliza/internal/domain/model"
)

type Code struct {
	Code               string    `json:"code"`
	UserSubscriptionID string    `json:"userSubscriptionId"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

type Subscription struct {
	ID              string     `json:"id"`
	SubscriptionID  string     `json:"subscriptionId"`
	PlaceID         string     `json:"placeId"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	RemainingVisits int        `json:"remainingVisits"`
	LastPayment     *time.Time `json:"lastPayment,omitempty"`
	NextPayment     *time.Time `json:"nextPayment,omitempty"`
	Amount          string     `json:"amount"`
	IsActive        bool       `json:"isActive"`
}

type Plan struct {
	ID       string `json:"id"`
	PlaceID  string `json:"placeId"`
	Name     string `json:"name"`
	Benefits string `json:"benefits,omitempty"`
	Price    string `json:"price"`
	Visits   int    `json:"visits"`
	IsActive bool   `json:"isActive"`
}

type Validation struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	UserSubscriptionID string    `json:"userSubscriptionId"`
	SubscriptionID     string    `json:"subscriptionId"`
	SubscriptionName   string    `json:"subscriptionName"`
	RemainingVisits    int       `json:"remainingVisits"`
	PlaceID            string    `json:"placeId"`
	PlaceName          string    `json:"placeName"`
	RestaurantID       string    `json:"restaurantId,omitempty"`
	ValidatedBy        string    `json:"validatedBy"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
}

// QRPayload timestamps are epoch milliseconds, as rendered by the app.
type QRPayload struct {
	SubscriptionID     string `json:"subscriptionId"`
	UserSubscriptionID string `json:"userSubscriptionId,omitempty"`
	Timestamp          int64  `json:"timestamp"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func toCode(c *model.SubscriptionCode) Code {
	return Code{Code: c.Code, UserSubscriptionID: c.UserSubscriptionID, ExpiresAt: c.ExpiresAt}
}

func toSubscription(s *model.UserSubscription) Subscription {
	return Subscription{
		ID:              s.ID,
		SubscriptionID:  s.SubscriptionID,
		PlaceID:         s.PlaceID,
		Status:          string(s.Status),
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		RemainingVisits: s.RemainingVisits,
		LastPayment:     s.LastPayment,
		NextPayment:     s.NextPayment,
		Amount:          s.Amount.StringFixed(2),
		IsActive:        s.IsActive,
	}
}

func toPlan(p *model.SubscriptionPlan) Plan {
	return Plan{
		ID:       p.ID,
		PlaceID:  p.PlaceID,
		Name:     p.Name,
		Benefits: p.Benefits,
		Price:    p.Price.StringFixed(2),
		Visits:   p.Visits,
		IsActive: p.Purchasable(),
	}
}

func toValidation(v *model.SubscriptionValidation) Validation {
	return Validation{
		ID:                 v.ID,
		UserID:             v.UserID,
		UserSubscriptionID: v.UserSubscriptionID,
		SubscriptionID:     v.SubscriptionID,
		SubscriptionName:   v.SubscriptionName,
		RemainingVisits:    v.RemainingVisits,
		PlaceID:            v.PlaceID,
		PlaceName:          v.PlaceName,
		RestaurantID:       v.RestaurantID,
		ValidatedBy:        v.ValidatedBy,
		Status:             string(v.Status),
		CreatedAt:          v.CreatedAt,
	}
}
