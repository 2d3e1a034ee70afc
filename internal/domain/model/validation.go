package model

import "time"

// SubscriptionValidation is the append-only audit record of one redeemed visit.
type SubscriptionValidation struct {
	ID                 string // ULID, sortable by creation time
	UserID             string // subscriber
	UserSubscriptionID string
	SubscriptionID     string
	SubscriptionName   string
	RemainingVisits    int
	PlaceID            string
	PlaceName          string
	RestaurantID       string
	ValidatedBy        string // staff member or owner who performed it
	OwnerID            string // business account the record is attributed to
	Status             SubscriptionStatus
	StartDate          time.Time
	EndDate            time.Time
	CreatedAt          time.Time
}

// RedemptionDetails is the denormalized view of a redeemed subscription
// shown to staff right after a code is accepted.
type RedemptionDetails struct {
	UserSubscriptionID string             `json:"userSubscriptionId"`
	SubscriptionID     string             `json:"subscriptionId"`
	UserID             string             `json:"userId"`
	UserName           string             `json:"userName"`
	SubscriptionName   string             `json:"subscriptionName"`
	RemainingVisits    int                `json:"remainingVisits"`
	PlaceID            string             `json:"placeId"`
	PlaceName          string             `json:"placeName"`
	StartDate          time.Time          `json:"startDate"`
	EndDate            time.Time          `json:"endDate"`
	Status             SubscriptionStatus `json:"status"`
}
