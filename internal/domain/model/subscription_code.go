package model

import "time"

// CodeTTL is how long a redemption code stays valid after creation.
const CodeTTL = 15 * time.Minute

// SubscriptionCode is a short numeric token a customer shows to staff to
// redeem a visit. Codes are single-use and never reissued.
type SubscriptionCode struct {
	ID                 string
	Code               string
	UserSubscriptionID string
	ExpiresAt          time.Time
	IsUsed             bool
	UsedAt             *time.Time
	CreatedAt          time.Time
}

func NewSubscriptionCode(id, code, userSubscriptionID string, now time.Time) *SubscriptionCode {
	return &SubscriptionCode{
		ID:                 id,
		Code:               code,
		UserSubscriptionID: userSubscriptionID,
		ExpiresAt:          now.Add(CodeTTL),
		CreatedAt:          now,
	}
}

// Expired reports whether the code is past its expiry at t.
func (c *SubscriptionCode) Expired(t time.Time) bool { return c.ExpiresAt.Before(t) }
