package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/timebank/backend/internal/models"
)

type RedemptionRepo struct {
	db Querier
}

func NewRedemptionRepo(db Querier) *RedemptionRepo {
	return &RedemptionRepo{db: db}
}

func (r *RedemptionRepo) Append(ctx context.Context, h *models.RedemptionHistory) error {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `
		INSERT INTO redemption_history (id, user_id, user_name, benefit, credits_spent, date_redeemed, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, h.UserID, h.UserName, h.Benefit, h.CreditsSpent, h.DateRedeemed, h.Status)
	if err != nil {
		return err
	}
	h.ID = id
	return nil
}

func (r *RedemptionRepo) Get(ctx context.Context, id string) (*models.RedemptionHistory, error) {
	var h models.RedemptionHistory
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, user_name, benefit, credits_spent, date_redeemed, status
		FROM redemption_history WHERE id = $1
	`, id).Scan(&h.ID, &h.UserID, &h.UserName, &h.Benefit, &h.CreditsSpent, &h.DateRedeemed, &h.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *RedemptionRepo) ListByUser(ctx context.Context, userID string) ([]*models.RedemptionHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, user_name, benefit, credits_spent, date_redeemed, status
		FROM redemption_history WHERE user_id = $1 ORDER BY date_redeemed DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.RedemptionHistory
	for rows.Next() {
		var h models.RedemptionHistory
		if err := rows.Scan(&h.ID, &h.UserID, &h.UserName, &h.Benefit, &h.CreditsSpent, &h.DateRedeemed, &h.Status); err != nil {
			return nil, err
		}
		list = append(list, &h)
	}
	return list, rows.Err()
}

func (r *RedemptionRepo) Upsert(ctx context.Context, h *models.RedemptionHistory) error {
	if h.ID == "" {
		return r.Append(ctx, h)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE redemption_history SET benefit = $2, credits_spent = $3, date_redeemed = $4, status = $5
		WHERE id = $1
	`, h.ID, h.Benefit, h.CreditsSpent, h.DateRedeemed, h.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
