package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timebank/backend/internal/models"
	"github.com/timebank/backend/internal/repository"
)

// ErrInvalidMinutes is returned when a time saving is not a positive number of minutes.
var ErrInvalidMinutes = errors.New("minutes must be positive")

// AccrualService turns a logged time saving into credits: it appends the TimeEntry and then
// adds its credits to the user's running balance.
//
// The balance update is a read-modify-write against UserCreditsRepository with no
// concurrency token, so two concurrent saves for the same user can lose one increment.
// Callers process one message per user at a time. If the entry append succeeds and the
// credit write fails, the entry stays and the error is returned; nothing is compensated.
type AccrualService struct {
	Entries repository.TimeEntryRepository
	Credits repository.UserCreditsRepository
	Now     func() time.Time
}

// NewAccrualService returns an AccrualService stamping records with the current UTC time.
func NewAccrualService(entries repository.TimeEntryRepository, credits repository.UserCreditsRepository) *AccrualService {
	return &AccrualService{
		Entries: entries,
		Credits: credits,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// Accrual is the outcome of one recorded saving.
type Accrual struct {
	Entry   *models.TimeEntry
	Balance *models.UserCredits
}

// Record logs minutes saved with tool for the user and credits the balance.
func (s *AccrualService) Record(ctx context.Context, userID, userName string, tool models.Tool, minutes int, description string) (*Accrual, error) {
	if minutes <= 0 {
		return nil, ErrInvalidMinutes
	}
	now := s.Now()

	entry := models.NewTimeEntry(userID, userName, tool, minutes, description, now)
	if err := s.Entries.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append time entry: %w", err)
	}

	balance, err := s.Credits.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read credits: %w", err)
	}
	if balance == nil {
		balance = &models.UserCredits{UserID: userID, UserName: userName}
	}
	balance.Accrue(entry.CreditsEarned, now)
	if err := s.Credits.Upsert(ctx, balance); err != nil {
		return nil, fmt.Errorf("write credits: %w", err)
	}
	return &Accrual{Entry: entry, Balance: balance}, nil
}
