package models

import "time"

// MinutesPerCredit is the number of tool-assisted minutes worth one credit at multiplier 1.0.
const MinutesPerCredit = 30

// TimeEntry is one logged time saving. Never mutated after creation.
type TimeEntry struct {
	ID            string    `json:"id,omitempty"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name"`
	ToolUsed      string    `json:"tool_used"`
	TimeSaved     int       `json:"time_saved"` // minutes
	Description   string    `json:"description"`
	DateLogged    time.Time `json:"date_logged"`
	CreditsEarned float64   `json:"credits_earned"`
	Multiplier    float64   `json:"multiplier"`
}

// CreditsFor returns the credits earned for minutes saved with a tool of the given multiplier.
func CreditsFor(minutes int, multiplier float64) float64 {
	return float64(minutes) * multiplier / MinutesPerCredit
}

// NewTimeEntry builds an entry for tool, copying its multiplier and deriving the credits.
func NewTimeEntry(userID, userName string, tool Tool, minutes int, description string, at time.Time) *TimeEntry {
	return &TimeEntry{
		UserID:        userID,
		UserName:      userName,
		ToolUsed:      tool.Name,
		TimeSaved:     minutes,
		Description:   description,
		DateLogged:    at,
		CreditsEarned: CreditsFor(minutes, tool.Multiplier),
		Multiplier:    tool.Multiplier,
	}
}
