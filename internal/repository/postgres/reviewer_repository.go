package postgres

import (
	"context"
	"database/sql"
	"errors"

	"ceoacademy/internal/common"
	"ceoacademy/internal/domain/application"
)

type ReviewerRepository struct {
	db *sql.DB
}

func NewReviewerRepository(db *sql.DB) *ReviewerRepository {
	return &ReviewerRepository{db: db}
}

func (r *ReviewerRepository) GetByID(ctx context.Context, id common.UUID) (*application.Reviewer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, email FROM reviewers WHERE id = $1`, id)
	var reviewer application.Reviewer
	if err := row.Scan(&reviewer.ID, &reviewer.Name, &reviewer.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "reviewer not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load reviewer", err)
	}
	return &reviewer, nil
}
