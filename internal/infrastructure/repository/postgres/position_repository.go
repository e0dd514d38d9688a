package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/user"
	"github.com/riskibarqy/squadhub/internal/platform/querybuilder"
)

type PositionRepository struct {
	db *sqlx.DB
}

func NewPositionRepository(db *sqlx.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

var _ position.Repository = (*PositionRepository)(nil)

type positionTableModel struct {
	ID          string         `db:"id"`
	SquadID     string         `db:"squad_id"`
	Role        string         `db:"role"`
	Benefits    pq.StringArray `db:"benefits"`
	MinTier     string         `db:"min_tier"`
	IsOpen      bool           `db:"is_open"`
	Capacity    int            `db:"capacity"`
	FilledCount int            `db:"filled_count"`
	ExpiresAt   time.Time      `db:"expires_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

const positionColumns = "id, squad_id, role, benefits, min_tier, is_open, capacity, filled_count, expires_at, created_at"

func (m positionTableModel) toDomain() position.Position {
	tier, err := user.ParseTier(m.MinTier)
	if err != nil {
		tier = user.TierUnknown
	}

	return position.Position{
		ID:          m.ID,
		SquadID:     m.SquadID,
		Role:        m.Role,
		Benefits:    []string(m.Benefits),
		MinTier:     tier,
		IsOpen:      m.IsOpen,
		Capacity:    m.Capacity,
		FilledCount: m.FilledCount,
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *PositionRepository) Create(ctx context.Context, p position.Position) error {
	query, args, err := querybuilder.InsertInto("positions").
		Columns("id", "squad_id", "role", "benefits", "min_tier", "is_open", "capacity", "filled_count", "expires_at", "created_at").
		Values(p.ID, p.SquadID, p.Role, pq.StringArray(p.Benefits), p.MinTier.String(), p.IsOpen, p.Capacity, p.FilledCount, p.ExpiresAt, p.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert position query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert position: %w", err)
	}

	return nil
}

func (r *PositionRepository) GetByID(ctx context.Context, positionID string) (position.Position, bool, error) {
	const query = `
SELECT ` + positionColumns + `
FROM positions
WHERE id = $1`

	var row positionTableModel
	if err := r.db.GetContext(ctx, &row, query, positionID); err != nil {
		if isNotFound(err) {
			return position.Position{}, false, nil
		}
		return position.Position{}, false, fmt.Errorf("get position: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *PositionRepository) ListOpen(ctx context.Context, now time.Time) ([]position.Position, error) {
	query, args, err := querybuilder.Select(positionColumns).
		From("positions").
		Where(
			querybuilder.Eq("is_open", true),
			querybuilder.Gt("expires_at", now),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list open positions query: %w", err)
	}

	return r.selectPositions(ctx, query, args)
}

func (r *PositionRepository) ListBySquad(ctx context.Context, squadID string) ([]position.Position, error) {
	query, args, err := querybuilder.Select(positionColumns).
		From("positions").
		Where(querybuilder.Eq("squad_id", squadID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squad positions query: %w", err)
	}

	return r.selectPositions(ctx, query, args)
}

func (r *PositionRepository) Close(ctx context.Context, positionID string) error {
	query, args, err := querybuilder.Update("positions").
		Set("is_open", false).
		SetRaw("updated_at", "NOW()").
		Where(
			querybuilder.Eq("id", positionID),
			querybuilder.Eq("is_open", true),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build close position query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("close position: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("close position rows affected: %w", err)
	}
	if affected == 0 {
		return position.ErrClosed
	}

	return nil
}

func (r *PositionRepository) ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]position.Position, error) {
	query, args, err := querybuilder.Select(positionColumns).
		From("positions").
		Where(
			querybuilder.Eq("is_open", true),
			querybuilder.Lte("expires_at", now),
		).
		OrderBy("expires_at", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired positions query: %w", err)
	}

	return r.selectPositions(ctx, query, args)
}

func (r *PositionRepository) selectPositions(ctx context.Context, query string, args []any) ([]position.Position, error) {
	var rows []positionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select positions: %w", err)
	}

	positions := make([]position.Position, 0, len(rows))
	for _, row := range rows {
		positions = append(positions, row.toDomain())
	}

	return positions, nil
}
