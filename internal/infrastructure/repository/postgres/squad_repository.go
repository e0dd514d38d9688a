package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/platform/querybuilder"
)

// memberUniqueConstraint backs the one-squad-per-user invariant: squad_members
// has a unique index on user_id alone.
const memberUniqueConstraint = "squad_members_user_id_key"

type SquadRepository struct {
	db *sqlx.DB
}

func NewSquadRepository(db *sqlx.DB) *SquadRepository {
	return &SquadRepository{db: db}
}

var _ squad.Repository = (*SquadRepository)(nil)

type squadTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CaptainID string    `db:"captain_id"`
	MaxSize   int       `db:"max_size"`
	CreatedAt time.Time `db:"created_at"`
}

type memberTableModel struct {
	SquadID  string    `db:"squad_id"`
	UserID   string    `db:"user_id"`
	Role     string    `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}

func (m squadTableModel) toDomain() squad.Squad {
	return squad.Squad{
		ID:        m.ID,
		Name:      m.Name,
		CaptainID: m.CaptainID,
		MaxSize:   m.MaxSize,
		CreatedAt: m.CreatedAt,
	}
}

func (m memberTableModel) toDomain() squad.Member {
	return squad.Member{
		SquadID:  m.SquadID,
		UserID:   m.UserID,
		Role:     squad.Role(m.Role),
		JoinedAt: m.JoinedAt,
	}
}

func (r *SquadRepository) Create(ctx context.Context, s squad.Squad, captain squad.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for squad create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertSquadQuery = `
INSERT INTO squads (id, name, captain_id, max_size, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, insertSquadQuery, s.ID, s.Name, s.CaptainID, s.MaxSize, s.CreatedAt); err != nil {
		return fmt.Errorf("insert squad: %w", err)
	}

	insertMemberSQL, insertMemberArgs, err := querybuilder.InsertInto("squad_members").
		Columns("squad_id", "user_id", "role", "joined_at").
		Values(captain.SquadID, captain.UserID, string(captain.Role), captain.JoinedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert captain member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertMemberSQL, insertMemberArgs...); err != nil {
		if isUniqueViolation(err, memberUniqueConstraint) {
			return squad.ErrAlreadyMember
		}
		return fmt.Errorf("insert captain member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit squad create tx: %w", err)
	}

	return nil
}

func (r *SquadRepository) GetByID(ctx context.Context, squadID string) (squad.Squad, bool, error) {
	const query = `
SELECT id, name, captain_id, max_size, created_at
FROM squads
WHERE id = $1`

	var row squadTableModel
	if err := r.db.GetContext(ctx, &row, query, squadID); err != nil {
		if isNotFound(err) {
			return squad.Squad{}, false, nil
		}
		return squad.Squad{}, false, fmt.Errorf("get squad: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SquadRepository) GetMember(ctx context.Context, squadID, userID string) (squad.Member, bool, error) {
	query, args, err := querybuilder.Select("squad_id", "user_id", "role", "joined_at").
		From("squad_members").
		Where(querybuilder.Eq("squad_id", squadID), querybuilder.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return squad.Member{}, false, fmt.Errorf("build get member query: %w", err)
	}

	var row memberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return squad.Member{}, false, nil
		}
		return squad.Member{}, false, fmt.Errorf("get squad member: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *SquadRepository) MemberSquadID(ctx context.Context, userID string) (string, bool, error) {
	query, args, err := querybuilder.Select("squad_id").
		From("squad_members").
		Where(querybuilder.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build member squad query: %w", err)
	}

	var squadID string
	if err := r.db.GetContext(ctx, &squadID, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get member squad: %w", err)
	}

	return squadID, true, nil
}

func (r *SquadRepository) ListMembers(ctx context.Context, squadID string) ([]squad.Member, error) {
	query, args, err := querybuilder.Select("squad_id", "user_id", "role", "joined_at").
		From("squad_members").
		Where(querybuilder.Eq("squad_id", squadID)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list members query: %w", err)
	}

	var rows []memberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list squad members: %w", err)
	}

	members := make([]squad.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toDomain())
	}

	return members, nil
}

func (r *SquadRepository) CountMembers(ctx context.Context, squadID string) (int, error) {
	const query = `SELECT COUNT(*) FROM squad_members WHERE squad_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, squadID); err != nil {
		return 0, fmt.Errorf("count squad members: %w", err)
	}

	return count, nil
}

func (r *SquadRepository) AddMember(ctx context.Context, m squad.Member, maxSize int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for add member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := addMemberTx(ctx, tx, m, maxSize); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add member tx: %w", err)
	}

	return nil
}

// addMemberTx re-validates capacity under a squad row lock so concurrent
// joins cannot overfill a squad. Shared with the approval and acceptance
// transactions.
func addMemberTx(ctx context.Context, tx *sqlx.Tx, m squad.Member, maxSize int) error {
	lockSQL, lockArgs, err := querybuilder.Select("id").
		From("squads").
		Where(querybuilder.Eq("id", m.SquadID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build squad lock query: %w", err)
	}
	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, lockSQL, lockArgs...); err != nil {
		return fmt.Errorf("lock squad row: %w", err)
	}

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM squad_members WHERE squad_id = $1`, m.SquadID); err != nil {
		return fmt.Errorf("count members under lock: %w", err)
	}
	if count >= maxSize {
		return squad.ErrFull
	}

	insertSQL, insertArgs, err := querybuilder.InsertInto("squad_members").
		Columns("squad_id", "user_id", "role", "joined_at").
		Values(m.SquadID, m.UserID, string(m.Role), m.JoinedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert member query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		if isUniqueViolation(err, memberUniqueConstraint) {
			return squad.ErrAlreadyMember
		}
		return fmt.Errorf("insert member: %w", err)
	}

	return nil
}

func (r *SquadRepository) RemoveMember(ctx context.Context, squadID, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for remove member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	memberSQL, memberArgs, err := querybuilder.Select("squad_id", "user_id", "role", "joined_at").
		From("squad_members").
		Where(querybuilder.Eq("squad_id", squadID), querybuilder.Eq("user_id", userID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build member lock query: %w", err)
	}

	var row memberTableModel
	if err := tx.GetContext(ctx, &row, memberSQL, memberArgs...); err != nil {
		if isNotFound(err) {
			return squad.ErrNotMember
		}
		return fmt.Errorf("lock member row: %w", err)
	}
	if squad.Role(row.Role) == squad.RoleCaptain {
		return squad.ErrCaptainCannotLeave
	}

	const deleteQuery = `DELETE FROM squad_members WHERE squad_id = $1 AND user_id = $2`
	if _, err := tx.ExecContext(ctx, deleteQuery, squadID, userID); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove member tx: %w", err)
	}

	return nil
}

func (r *SquadRepository) TransferCaptaincy(ctx context.Context, squadID, fromUserID, toUserID string, _ time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for captaincy transfer: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockSQL, lockArgs, err := querybuilder.Select("id").
		From("squads").
		Where(querybuilder.Eq("id", squadID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build squad lock query: %w", err)
	}
	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, lockSQL, lockArgs...); err != nil {
		return fmt.Errorf("lock squad row: %w", err)
	}

	demoteSQL, demoteArgs, err := querybuilder.Update("squad_members").
		Set("role", string(squad.RoleMember)).
		Where(
			querybuilder.Eq("squad_id", squadID),
			querybuilder.Eq("user_id", fromUserID),
			querybuilder.Eq("role", string(squad.RoleCaptain)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build demote captain query: %w", err)
	}
	demoted, err := tx.ExecContext(ctx, demoteSQL, demoteArgs...)
	if err != nil {
		return fmt.Errorf("demote captain: %w", err)
	}
	if affected, err := demoted.RowsAffected(); err != nil {
		return fmt.Errorf("demote captain rows affected: %w", err)
	} else if affected == 0 {
		return squad.ErrNotMember
	}

	promoteSQL, promoteArgs, err := querybuilder.Update("squad_members").
		Set("role", string(squad.RoleCaptain)).
		Where(querybuilder.Eq("squad_id", squadID), querybuilder.Eq("user_id", toUserID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build promote member query: %w", err)
	}
	promoted, err := tx.ExecContext(ctx, promoteSQL, promoteArgs...)
	if err != nil {
		return fmt.Errorf("promote member: %w", err)
	}
	if affected, err := promoted.RowsAffected(); err != nil {
		return fmt.Errorf("promote member rows affected: %w", err)
	} else if affected == 0 {
		return squad.ErrNotMember
	}

	const updateSquadQuery = `UPDATE squads SET captain_id = $1, updated_at = NOW() WHERE id = $2`
	if _, err := tx.ExecContext(ctx, updateSquadQuery, toUserID, squadID); err != nil {
		return fmt.Errorf("update squad captain reference: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit captaincy transfer tx: %w", err)
	}

	return nil
}
