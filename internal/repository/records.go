package repository

import (
	"math"
	"time"

	"github.com/timebank/backend/internal/models"
)

// Field records as stored in the remote list store. Column names are the list's
// internal names and must not change without migrating the lists.

// SharePoint list names.
const (
	ListTimeEntries       = "TimeEntries"
	ListUserCredits       = "UserCredits"
	ListRedemptionHistory = "RedemptionHistory"
	ListBenefits          = "Benefits"
)

type timeEntryFields struct {
	UserID        string    `json:"UserId"`
	UserName      string    `json:"UserName"`
	ToolUsed      string    `json:"ToolUsed"`
	TimeSaved     float64   `json:"TimeSaved"`
	Description   string    `json:"Description"`
	DateLogged    time.Time `json:"DateLogged"`
	CreditsEarned float64   `json:"CreditsEarned"`
	Multiplier    float64   `json:"Multiplier"`
}

var timeEntryColumns = []string{"UserId", "UserName", "ToolUsed", "TimeSaved", "Description", "DateLogged", "CreditsEarned", "Multiplier"}

func timeEntryToFields(e *models.TimeEntry) timeEntryFields {
	return timeEntryFields{
		UserID:        e.UserID,
		UserName:      e.UserName,
		ToolUsed:      e.ToolUsed,
		TimeSaved:     float64(e.TimeSaved),
		Description:   e.Description,
		DateLogged:    e.DateLogged.UTC(),
		CreditsEarned: e.CreditsEarned,
		Multiplier:    e.Multiplier,
	}
}

func timeEntryFromFields(id string, f timeEntryFields) *models.TimeEntry {
	return &models.TimeEntry{
		ID:            id,
		UserID:        f.UserID,
		UserName:      f.UserName,
		ToolUsed:      f.ToolUsed,
		TimeSaved:     int(math.Round(f.TimeSaved)),
		Description:   f.Description,
		DateLogged:    f.DateLogged,
		CreditsEarned: f.CreditsEarned,
		Multiplier:    f.Multiplier,
	}
}

type userCreditsFields struct {
	UserID       string    `json:"UserId"`
	UserName     string    `json:"UserName"`
	TotalCredits float64   `json:"TotalCredits"`
	LastUpdated  time.Time `json:"LastUpdated"`
}

// userCreditsUpdate is the patch sent for an existing record; identity columns are immutable.
type userCreditsUpdate struct {
	TotalCredits float64   `json:"TotalCredits"`
	LastUpdated  time.Time `json:"LastUpdated"`
}

var userCreditsColumns = []string{"UserId", "UserName", "TotalCredits", "LastUpdated"}

func userCreditsToFields(c *models.UserCredits) userCreditsFields {
	return userCreditsFields{
		UserID:       c.UserID,
		UserName:     c.UserName,
		TotalCredits: c.TotalCredits,
		LastUpdated:  c.LastUpdated.UTC(),
	}
}

func userCreditsToUpdate(c *models.UserCredits) userCreditsUpdate {
	return userCreditsUpdate{TotalCredits: c.TotalCredits, LastUpdated: c.LastUpdated.UTC()}
}

func userCreditsFromFields(id string, f userCreditsFields) *models.UserCredits {
	return &models.UserCredits{
		ID:           id,
		UserID:       f.UserID,
		UserName:     f.UserName,
		TotalCredits: f.TotalCredits,
		LastUpdated:  f.LastUpdated,
	}
}

type redemptionFields struct {
	UserID       string    `json:"UserId"`
	UserName     string    `json:"UserName"`
	Benefit      string    `json:"Benefit"`
	CreditsSpent float64   `json:"CreditsSpent"`
	DateRedeemed time.Time `json:"DateRedeemed"`
	Status       string    `json:"Status"`
}

var redemptionColumns = []string{"UserId", "UserName", "Benefit", "CreditsSpent", "DateRedeemed", "Status"}

func redemptionToFields(r *models.RedemptionHistory) redemptionFields {
	return redemptionFields{
		UserID:       r.UserID,
		UserName:     r.UserName,
		Benefit:      r.Benefit,
		CreditsSpent: r.CreditsSpent,
		DateRedeemed: r.DateRedeemed.UTC(),
		Status:       r.Status,
	}
}

func redemptionFromFields(id string, f redemptionFields) *models.RedemptionHistory {
	return &models.RedemptionHistory{
		ID:           id,
		UserID:       f.UserID,
		UserName:     f.UserName,
		Benefit:      f.Benefit,
		CreditsSpent: f.CreditsSpent,
		DateRedeemed: f.DateRedeemed,
		Status:       f.Status,
	}
}

// benefitFields maps Benefit.Name to the list's built-in Title column.
type benefitFields struct {
	Title           string  `json:"Title"`
	Description     string  `json:"Description"`
	CreditsRequired float64 `json:"CreditsRequired"`
	Category        string  `json:"Category"`
	IsActive        bool    `json:"IsActive"`
}

var benefitColumns = []string{"Title", "Description", "CreditsRequired", "Category", "IsActive"}

func benefitToFields(b *models.Benefit) benefitFields {
	return benefitFields{
		Title:           b.Name,
		Description:     b.Description,
		CreditsRequired: b.CreditsRequired,
		Category:        b.Category,
		IsActive:        b.IsActive,
	}
}

func benefitFromFields(id string, f benefitFields) *models.Benefit {
	return &models.Benefit{
		ID:              id,
		Name:            f.Title,
		Description:     f.Description,
		CreditsRequired: f.CreditsRequired,
		Category:        f.Category,
		IsActive:        f.IsActive,
	}
}
