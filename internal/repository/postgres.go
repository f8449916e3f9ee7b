package repository

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var schemaSQL string

// Querier is the subset of *pgxpool.Pool (and pgx.Tx) the postgres repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresGateway returns a Gateway over the time_entries, user_credits,
// redemption_history and benefits tables. closeFn (may be nil) runs on Gateway.Close.
func NewPostgresGateway(db Querier, closeFn func()) *Gateway {
	return &Gateway{
		Mode:        ModePostgres,
		TimeEntries: NewTimeEntryRepo(db),
		Credits:     NewUserCreditsRepo(db),
		Redemptions: NewRedemptionRepo(db),
		Benefits:    NewBenefitRepo(db),
		closeFn:     closeFn,
	}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db Querier) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
