package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/invite"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/platform/querybuilder"
)

// invitePendingConstraint backs the single-pending-invite rule: a partial
// unique index on (squad_id, invitee_id) WHERE status = 'pending'.
const invitePendingConstraint = "invites_pending_squad_invitee_key"

type InviteRepository struct {
	db *sqlx.DB
}

func NewInviteRepository(db *sqlx.DB) *InviteRepository {
	return &InviteRepository{db: db}
}

var _ invite.Repository = (*InviteRepository)(nil)

type inviteTableModel struct {
	ID        string     `db:"id"`
	SquadID   string     `db:"squad_id"`
	InviterID string     `db:"inviter_id"`
	InviteeID string     `db:"invitee_id"`
	Status    string     `db:"status"`
	ExpiresAt time.Time  `db:"expires_at"`
	CreatedAt time.Time  `db:"created_at"`
	DecidedAt *time.Time `db:"decided_at"`
}

const inviteColumns = "id, squad_id, inviter_id, invitee_id, status, expires_at, created_at, decided_at"

func (m inviteTableModel) toDomain() invite.Invite {
	return invite.Invite{
		ID:        m.ID,
		SquadID:   m.SquadID,
		InviterID: m.InviterID,
		InviteeID: m.InviteeID,
		Status:    invite.Status(m.Status),
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
		DecidedAt: m.DecidedAt,
	}
}

func (r *InviteRepository) Create(ctx context.Context, i invite.Invite) error {
	query, args, err := querybuilder.InsertInto("invites").
		Columns("id", "squad_id", "inviter_id", "invitee_id", "status", "expires_at", "created_at").
		Values(i.ID, i.SquadID, i.InviterID, i.InviteeID, string(i.Status), i.ExpiresAt, i.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert invite query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, invitePendingConstraint) {
			return invite.ErrDuplicatePending
		}
		return fmt.Errorf("insert invite: %w", err)
	}

	return nil
}

func (r *InviteRepository) GetByID(ctx context.Context, inviteID string) (invite.Invite, bool, error) {
	const query = `
SELECT ` + inviteColumns + `
FROM invites
WHERE id = $1`

	var row inviteTableModel
	if err := r.db.GetContext(ctx, &row, query, inviteID); err != nil {
		if isNotFound(err) {
			return invite.Invite{}, false, nil
		}
		return invite.Invite{}, false, fmt.Errorf("get invite: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *InviteRepository) ListByInvitee(ctx context.Context, inviteeID string) ([]invite.Invite, error) {
	query, args, err := querybuilder.Select(inviteColumns).
		From("invites").
		Where(querybuilder.Eq("invitee_id", inviteeID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list invitee invites query: %w", err)
	}

	return r.selectInvites(ctx, query, args)
}

func (r *InviteRepository) ListBySquad(ctx context.Context, squadID string) ([]invite.Invite, error) {
	query, args, err := querybuilder.Select(inviteColumns).
		From("invites").
		Where(querybuilder.Eq("squad_id", squadID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list squad invites query: %w", err)
	}

	return r.selectInvites(ctx, query, args)
}

func (r *InviteRepository) UpdateStatusFromPending(ctx context.Context, inviteID string, to invite.Status, decidedAt time.Time) error {
	query, args, err := querybuilder.Update("invites").
		Set("status", string(to)).
		Set("decided_at", decidedAt).
		Where(
			querybuilder.Eq("id", inviteID),
			querybuilder.Eq("status", string(invite.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build invite transition query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition invite to %s: %w", to, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("invite transition rows affected: %w", err)
	}
	if affected == 0 {
		return invite.ErrNotPending
	}

	return nil
}

// Expire flips a pending row to expired only when its deadline has passed at
// commit time. The guards live in the WHERE clause, so concurrent sweeps and
// user actions cannot double-transition the row.
func (r *InviteRepository) Expire(ctx context.Context, inviteID string, now time.Time) error {
	query, args, err := querybuilder.Update("invites").
		Set("status", string(invite.StatusExpired)).
		Set("decided_at", now).
		Where(
			querybuilder.Eq("id", inviteID),
			querybuilder.Eq("status", string(invite.StatusPending)),
			querybuilder.Lte("expires_at", now),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build expire invite query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("expire invite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("expire invite rows affected: %w", err)
	}
	if affected == 0 {
		return r.expireMiss(ctx, inviteID)
	}

	return nil
}

// expireMiss tells apart the reasons an expire update matched nothing.
func (r *InviteRepository) expireMiss(ctx context.Context, inviteID string) error {
	const query = `SELECT status FROM invites WHERE id = $1`

	var status string
	if err := r.db.GetContext(ctx, &status, query, inviteID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("invite %s not found", inviteID)
		}
		return fmt.Errorf("get invite status: %w", err)
	}
	if invite.Status(status).Terminal() {
		return invite.ErrNotPending
	}

	return invite.ErrNotExpired
}

// Accept commits the acceptance as one transaction: re-check the pending row
// and its expiry under a lock, reserve the squad seat, then void every other
// open candidacy the invitee holds. Guard failures roll everything back.
func (r *InviteRepository) Accept(ctx context.Context, cmd invite.AcceptCommand) (invite.AcceptOutcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("begin tx for invite accept: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockSQL, lockArgs, err := querybuilder.Select(inviteColumns).
		From("invites").
		Where(querybuilder.Eq("id", cmd.InviteID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("build invite lock query: %w", err)
	}
	var inviteRow inviteTableModel
	if err := tx.GetContext(ctx, &inviteRow, lockSQL, lockArgs...); err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("lock invite row: %w", err)
	}
	if invite.Status(inviteRow.Status) != invite.StatusPending {
		return invite.AcceptOutcome{}, invite.ErrNotPending
	}
	if !cmd.DecidedAt.Before(inviteRow.ExpiresAt) {
		return invite.AcceptOutcome{}, invite.ErrExpired
	}

	member := squad.Member{
		SquadID:  cmd.SquadID,
		UserID:   cmd.InviteeID,
		Role:     squad.RoleMember,
		JoinedAt: cmd.DecidedAt,
	}
	if err := addMemberTx(ctx, tx, member, cmd.SquadMaxSize); err != nil {
		return invite.AcceptOutcome{}, err
	}

	const acceptQuery = `
UPDATE invites
SET status = 'accepted', decided_at = $1
WHERE id = $2`
	if _, err := tx.ExecContext(ctx, acceptQuery, cmd.DecidedAt, cmd.InviteID); err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("mark invite accepted: %w", err)
	}

	const cancelInvitesQuery = `
UPDATE invites
SET status = 'cancelled', decided_at = $1
WHERE invitee_id = $2
  AND id <> $3
  AND status = 'pending'
RETURNING id`
	var cancelledIDs []string
	if err := tx.SelectContext(ctx, &cancelledIDs, cancelInvitesQuery, cmd.DecidedAt, cmd.InviteeID, cmd.InviteID); err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("cancel other pending invites: %w", err)
	}

	const withdrawApplicationsQuery = `
UPDATE applications
SET status = $1, decided_at = $2
WHERE applicant_id = $3
  AND status = 'pending'
RETURNING id`
	var withdrawnIDs []string
	if err := tx.SelectContext(ctx, &withdrawnIDs, withdrawApplicationsQuery,
		string(application.StatusWithdrawn), cmd.DecidedAt, cmd.InviteeID); err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("withdraw pending applications: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return invite.AcceptOutcome{}, fmt.Errorf("commit invite accept tx: %w", err)
	}

	sort.Strings(cancelledIDs)
	sort.Strings(withdrawnIDs)

	return invite.AcceptOutcome{
		CancelledInviteIDs:      cancelledIDs,
		WithdrawnApplicationIDs: withdrawnIDs,
	}, nil
}

func (r *InviteRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]invite.Invite, error) {
	query, args, err := querybuilder.Select(inviteColumns).
		From("invites").
		Where(
			querybuilder.Eq("status", string(invite.StatusPending)),
			querybuilder.Lte("expires_at", now),
		).
		OrderBy("expires_at", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired invites query: %w", err)
	}

	return r.selectInvites(ctx, query, args)
}

func (r *InviteRepository) selectInvites(ctx context.Context, query string, args []any) ([]invite.Invite, error) {
	var rows []inviteTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select invites: %w", err)
	}

	invites := make([]invite.Invite, 0, len(rows))
	for _, row := range rows {
		invites = append(invites, row.toDomain())
	}

	return invites, nil
}
