package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/timebank/backend/internal/models"
)

type UserCreditsRepo struct {
	db Querier
}

func NewUserCreditsRepo(db Querier) *UserCreditsRepo {
	return &UserCreditsRepo{db: db}
}

func (r *UserCreditsRepo) GetByUser(ctx context.Context, userID string) (*models.UserCredits, error) {
	var c models.UserCredits
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, user_name, total_credits, last_updated
		FROM user_credits WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.UserName, &c.TotalCredits, &c.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert writes c as given. It does not compare against the stored total, so a
// concurrent writer's increment can be overwritten.
func (r *UserCreditsRepo) Upsert(ctx context.Context, c *models.UserCredits) error {
	if c.ID != "" {
		tag, err := r.db.Exec(ctx, `
			UPDATE user_credits SET total_credits = $2, last_updated = $3
			WHERE id = $1
		`, c.ID, c.TotalCredits, c.LastUpdated)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_credits (id, user_id, user_name, total_credits, last_updated)
		VALUES ($1, $2, $3, $4, $5)
	`, id, c.UserID, c.UserName, c.TotalCredits, c.LastUpdated)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}
