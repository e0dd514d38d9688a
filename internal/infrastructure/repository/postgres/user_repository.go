package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squadhub/internal/domain/user"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.Repository = (*UserRepository)(nil)

type userTableModel struct {
	ID              string    `db:"id"`
	DisplayName     string    `db:"display_name"`
	ReputationScore int       `db:"reputation_score"`
	ReputationTier  string    `db:"reputation_tier"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.User, bool, error) {
	const query = `
SELECT id, display_name, reputation_score, reputation_tier, created_at
FROM users
WHERE id = $1`

	var row userTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}

	tier, err := user.ParseTier(row.ReputationTier)
	if err != nil {
		// An unknown tier in storage downgrades to TierUnknown rather than
		// failing reads; eligibility then rejects on min-tier checks.
		tier = user.TierUnknown
	}

	return user.User{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Reputation: user.Reputation{
			Score: row.ReputationScore,
			Tier:  tier,
		},
		CreatedAt: row.CreatedAt,
	}, true, nil
}

func (r *UserRepository) UpdateReputation(ctx context.Context, userID string, rep user.Reputation) error {
	const query = `
UPDATE users
SET reputation_score = $1,
    reputation_tier = $2,
    updated_at = NOW()
WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, rep.Score, rep.Tier.String(), userID)
	if err != nil {
		return fmt.Errorf("update user reputation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user reputation rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update user reputation: user %s not found", userID)
	}

	return nil
}
