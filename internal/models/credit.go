package models

import (
	"time"
)

// UserCredits is the running credit balance of one user, keyed by UserID.
type UserCredits struct {
	ID           string    `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	TotalCredits float64   `json:"total_credits"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Accrue adds amount to the balance and stamps LastUpdated.
func (c *UserCredits) Accrue(amount float64, at time.Time) {
	c.TotalCredits += amount
	c.LastUpdated = at
}

// Redemption status enums.
const (
	RedemptionPending   = "Pending"
	RedemptionApproved  = "Approved"
	RedemptionRejected  = "Rejected"
	RedemptionCompleted = "Completed"
)

// ValidRedemptionStatus reports whether s is one of the redemption status enums.
func ValidRedemptionStatus(s string) bool {
	switch s {
	case RedemptionPending, RedemptionApproved, RedemptionRejected, RedemptionCompleted:
		return true
	}
	return false
}

// RedemptionHistory records credits spent on a benefit. No command creates one yet.
type RedemptionHistory struct {
	ID           string    `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	Benefit      string    `json:"benefit"`
	CreditsSpent float64   `json:"credits_spent"`
	DateRedeemed time.Time `json:"date_redeemed"`
	Status       string    `json:"status"`
}
