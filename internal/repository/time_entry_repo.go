package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/timebank/backend/internal/models"
)

type TimeEntryRepo struct {
	db Querier
}

func NewTimeEntryRepo(db Querier) *TimeEntryRepo {
	return &TimeEntryRepo{db: db}
}

func (r *TimeEntryRepo) Append(ctx context.Context, e *models.TimeEntry) error {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `
		INSERT INTO time_entries (id, user_id, user_name, tool_used, time_saved, description, date_logged, credits_earned, multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, e.UserID, e.UserName, e.ToolUsed, e.TimeSaved, e.Description, e.DateLogged, e.CreditsEarned, e.Multiplier)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *TimeEntryRepo) Get(ctx context.Context, id string) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, user_name, tool_used, time_saved, description, date_logged, credits_earned, multiplier
		FROM time_entries WHERE id = $1
	`, id).Scan(&e.ID, &e.UserID, &e.UserName, &e.ToolUsed, &e.TimeSaved, &e.Description, &e.DateLogged, &e.CreditsEarned, &e.Multiplier)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *TimeEntryRepo) ListByUser(ctx context.Context, userID string) ([]*models.TimeEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, user_name, tool_used, time_saved, description, date_logged, credits_earned, multiplier
		FROM time_entries WHERE user_id = $1 ORDER BY date_logged DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.TimeEntry
	for rows.Next() {
		var e models.TimeEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.ToolUsed, &e.TimeSaved, &e.Description, &e.DateLogged, &e.CreditsEarned, &e.Multiplier); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
