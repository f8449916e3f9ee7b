// Package repository is the persistence gateway: four record collections (time entries,
// user credits, redemption history, benefits) behind one Gateway, backed by an in-process
// store, a SharePoint list store reached through Microsoft Graph, or PostgreSQL.
//
// Reads return (nil, nil) when a keyed record does not exist and a non-nil error only when
// the read itself failed.
//
// UserCredits.Upsert is a plain write with no concurrency token. Callers doing
// read-modify-write (see services.Accrual) can lose an increment when two saves for the
// same user interleave. Closing that gap needs a conditional update or a single writer
// per user key.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/timebank/backend/internal/models"
)

var (
	// ErrNotFound is returned when an update targets an identifier the store does not hold.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownMode is returned by ParseMode for an unsupported backend name.
	ErrUnknownMode = errors.New("unknown store mode")
)

// Mode selects the storage backend for the whole process.
type Mode string

const (
	ModeMemory     Mode = "memory"
	ModeSharePoint Mode = "sharepoint"
	ModePostgres   Mode = "postgres"
)

// ParseMode parses a backend name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeMemory, ModeSharePoint, ModePostgres:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// TimeEntryRepository stores logged time savings.
type TimeEntryRepository interface {
	Append(ctx context.Context, e *models.TimeEntry) error
	// ListByUser returns the user's entries newest-first by DateLogged.
	ListByUser(ctx context.Context, userID string) ([]*models.TimeEntry, error)
	Get(ctx context.Context, id string) (*models.TimeEntry, error)
}

// UserCreditsRepository stores one balance record per user.
type UserCreditsRepository interface {
	GetByUser(ctx context.Context, userID string) (*models.UserCredits, error)
	// Upsert updates the record in place when c.ID is set, otherwise creates it and sets c.ID.
	Upsert(ctx context.Context, c *models.UserCredits) error
}

// RedemptionRepository stores benefit redemptions.
type RedemptionRepository interface {
	Append(ctx context.Context, r *models.RedemptionHistory) error
	// ListByUser returns the user's redemptions newest-first by DateRedeemed.
	ListByUser(ctx context.Context, userID string) ([]*models.RedemptionHistory, error)
	Get(ctx context.Context, id string) (*models.RedemptionHistory, error)
	Upsert(ctx context.Context, r *models.RedemptionHistory) error
}

// BenefitRepository stores the redeemable benefit catalog.
type BenefitRepository interface {
	Append(ctx context.Context, b *models.Benefit) error
	ListActive(ctx context.Context) ([]*models.Benefit, error)
}

// Gateway groups the four collections of one backend.
type Gateway struct {
	Mode        Mode
	TimeEntries TimeEntryRepository
	Credits     UserCreditsRepository
	Redemptions RedemptionRepository
	Benefits    BenefitRepository

	closeFn func()
}

// Close releases backend resources. Safe to call on every mode.
func (g *Gateway) Close() {
	if g.closeFn != nil {
		g.closeFn()
	}
}

// SeedBenefits appends benefits when the active benefit list is empty.
func SeedBenefits(ctx context.Context, repo BenefitRepository, benefits []models.Benefit) (int, error) {
	existing, err := repo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list benefits: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i := range benefits {
		b := benefits[i]
		if err := b.Validate(); err != nil {
			return i, fmt.Errorf("benefit %q: %w", b.Name, err)
		}
		if err := repo.Append(ctx, &b); err != nil {
			return i, fmt.Errorf("append benefit %q: %w", b.Name, err)
		}
	}
	return len(benefits), nil
}
