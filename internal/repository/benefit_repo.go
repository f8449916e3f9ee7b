package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/timebank/backend/internal/models"
)

type BenefitRepo struct {
	db Querier
}

func NewBenefitRepo(db Querier) *BenefitRepo {
	return &BenefitRepo{db: db}
}

func (r *BenefitRepo) Append(ctx context.Context, b *models.Benefit) error {
	id := uuid.NewString()
	_, err := r.db.Exec(ctx, `
		INSERT INTO benefits (id, name, description, credits_required, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, b.Name, b.Description, b.CreditsRequired, b.Category, b.IsActive)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *BenefitRepo) ListActive(ctx context.Context) ([]*models.Benefit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, credits_required, category, is_active
		FROM benefits WHERE is_active ORDER BY created_at, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Benefit
	for rows.Next() {
		var b models.Benefit
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.CreditsRequired, &b.Category, &b.IsActive); err != nil {
			return nil, err
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
