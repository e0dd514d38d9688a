package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/squadhub/internal/domain/application"
	"github.com/riskibarqy/squadhub/internal/domain/position"
	"github.com/riskibarqy/squadhub/internal/domain/squad"
	"github.com/riskibarqy/squadhub/internal/platform/querybuilder"
)

// applicationPendingConstraint backs the single-pending-application rule: a
// partial unique index on (position_id, applicant_id) WHERE status = 'pending'.
const applicationPendingConstraint = "applications_pending_position_applicant_key"

type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

var _ application.Repository = (*ApplicationRepository)(nil)

type applicationTableModel struct {
	ID          string     `db:"id"`
	PositionID  string     `db:"position_id"`
	ApplicantID string     `db:"applicant_id"`
	Status      string     `db:"status"`
	ExpiresAt   time.Time  `db:"expires_at"`
	CreatedAt   time.Time  `db:"created_at"`
	DecidedAt   *time.Time `db:"decided_at"`
}

const applicationColumns = "id, position_id, applicant_id, status, expires_at, created_at, decided_at"

func (m applicationTableModel) toDomain() application.Application {
	return application.Application{
		ID:          m.ID,
		PositionID:  m.PositionID,
		ApplicantID: m.ApplicantID,
		Status:      application.Status(m.Status),
		ExpiresAt:   m.ExpiresAt,
		CreatedAt:   m.CreatedAt,
		DecidedAt:   m.DecidedAt,
	}
}

func (r *ApplicationRepository) Create(ctx context.Context, a application.Application) error {
	query, args, err := querybuilder.InsertInto("applications").
		Columns("id", "position_id", "applicant_id", "status", "expires_at", "created_at").
		Values(a.ID, a.PositionID, a.ApplicantID, string(a.Status), a.ExpiresAt, a.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert application query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, applicationPendingConstraint) {
			return application.ErrDuplicatePending
		}
		return fmt.Errorf("insert application: %w", err)
	}

	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, applicationID string) (application.Application, bool, error) {
	const query = `
SELECT ` + applicationColumns + `
FROM applications
WHERE id = $1`

	var row applicationTableModel
	if err := r.db.GetContext(ctx, &row, query, applicationID); err != nil {
		if isNotFound(err) {
			return application.Application{}, false, nil
		}
		return application.Application{}, false, fmt.Errorf("get application: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ApplicationRepository) ListByPosition(ctx context.Context, positionID string) ([]application.Application, error) {
	query, args, err := querybuilder.Select(applicationColumns).
		From("applications").
		Where(querybuilder.Eq("position_id", positionID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list position applications query: %w", err)
	}

	return r.selectApplications(ctx, query, args)
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]application.Application, error) {
	query, args, err := querybuilder.Select(applicationColumns).
		From("applications").
		Where(querybuilder.Eq("applicant_id", applicantID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list applicant applications query: %w", err)
	}

	return r.selectApplications(ctx, query, args)
}

func (r *ApplicationRepository) HasPending(ctx context.Context, positionID, applicantID string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1
    FROM applications
    WHERE position_id = $1
      AND applicant_id = $2
      AND status = 'pending'
)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, positionID, applicantID); err != nil {
		return false, fmt.Errorf("check pending application: %w", err)
	}

	return exists, nil
}

func (r *ApplicationRepository) UpdateStatusFromPending(ctx context.Context, applicationID string, to application.Status, decidedAt time.Time) error {
	query, args, err := querybuilder.Update("applications").
		Set("status", string(to)).
		Set("decided_at", decidedAt).
		Where(
			querybuilder.Eq("id", applicationID),
			querybuilder.Eq("status", string(application.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build application transition query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition application to %s: %w", to, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("application transition rows affected: %w", err)
	}
	if affected == 0 {
		return application.ErrNotPending
	}

	return nil
}

// Expire flips a pending row to expired only when its deadline has passed at
// commit time. The guards live in the WHERE clause, so concurrent sweeps and
// user actions cannot double-transition the row.
func (r *ApplicationRepository) Expire(ctx context.Context, applicationID string, now time.Time) error {
	query, args, err := querybuilder.Update("applications").
		Set("status", string(application.StatusExpired)).
		Set("decided_at", now).
		Where(
			querybuilder.Eq("id", applicationID),
			querybuilder.Eq("status", string(application.StatusPending)),
			querybuilder.Lte("expires_at", now),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build expire application query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("expire application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("expire application rows affected: %w", err)
	}
	if affected == 0 {
		return r.expireMiss(ctx, applicationID)
	}

	return nil
}

// expireMiss tells apart the reasons an expire update matched nothing.
func (r *ApplicationRepository) expireMiss(ctx context.Context, applicationID string) error {
	const query = `SELECT status FROM applications WHERE id = $1`

	var status string
	if err := r.db.GetContext(ctx, &status, query, applicationID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("application %s not found", applicationID)
		}
		return fmt.Errorf("get application status: %w", err)
	}
	if application.Status(status).Terminal() {
		return application.ErrNotPending
	}

	return application.ErrNotExpired
}

// Approve commits the approval as one transaction: flip the pending row,
// re-check the position guards under a row lock, reserve the squad seat and
// take the position slot. Any guard failure rolls the whole thing back and
// the application stays pending.
func (r *ApplicationRepository) Approve(ctx context.Context, cmd application.ApproveCommand) (application.ApproveOutcome, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("begin tx for application approve: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	flipSQL, flipArgs, err := querybuilder.Update("applications").
		Set("status", string(application.StatusApproved)).
		Set("decided_at", cmd.DecidedAt).
		Where(
			querybuilder.Eq("id", cmd.ApplicationID),
			querybuilder.Eq("status", string(application.StatusPending)),
		).
		ToSQL()
	if err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("build approve flip query: %w", err)
	}
	flipped, err := tx.ExecContext(ctx, flipSQL, flipArgs...)
	if err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("flip application to approved: %w", err)
	}
	if affected, err := flipped.RowsAffected(); err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("approve flip rows affected: %w", err)
	} else if affected == 0 {
		return application.ApproveOutcome{}, application.ErrNotPending
	}

	lockSQL, lockArgs, err := querybuilder.Select(positionColumns).
		From("positions").
		Where(querybuilder.Eq("id", cmd.PositionID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("build position lock query: %w", err)
	}
	var positionRow positionTableModel
	if err := tx.GetContext(ctx, &positionRow, lockSQL, lockArgs...); err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("lock position row: %w", err)
	}
	if !positionRow.IsOpen || !cmd.DecidedAt.Before(positionRow.ExpiresAt) {
		return application.ApproveOutcome{}, position.ErrClosed
	}
	if positionRow.FilledCount >= positionRow.Capacity {
		return application.ApproveOutcome{}, position.ErrFilled
	}

	member := squad.Member{
		SquadID:  cmd.SquadID,
		UserID:   cmd.ApplicantID,
		Role:     squad.RoleMember,
		JoinedAt: cmd.DecidedAt,
	}
	if err := addMemberTx(ctx, tx, member, cmd.SquadMaxSize); err != nil {
		return application.ApproveOutcome{}, err
	}

	filled := positionRow.FilledCount + 1
	closed := filled >= positionRow.Capacity

	slotSQL, slotArgs, err := querybuilder.Update("positions").
		SetRaw("filled_count", "filled_count + 1").
		SetRaw("is_open", "filled_count + 1 < capacity").
		SetRaw("updated_at", "NOW()").
		Where(querybuilder.Eq("id", cmd.PositionID)).
		ToSQL()
	if err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("build position slot query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, slotSQL, slotArgs...); err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("take position slot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return application.ApproveOutcome{}, fmt.Errorf("commit application approve tx: %w", err)
	}

	return application.ApproveOutcome{
		FilledCount:    filled,
		PositionClosed: closed,
	}, nil
}

func (r *ApplicationRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]application.Application, error) {
	query, args, err := querybuilder.Select(applicationColumns).
		From("applications").
		Where(
			querybuilder.Eq("status", string(application.StatusPending)),
			querybuilder.Lte("expires_at", now),
		).
		OrderBy("expires_at", "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list expired applications query: %w", err)
	}

	return r.selectApplications(ctx, query, args)
}

func (r *ApplicationRepository) selectApplications(ctx context.Context, query string, args []any) ([]application.Application, error) {
	var rows []applicationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select applications: %w", err)
	}

	applications := make([]application.Application, 0, len(rows))
	for _, row := range rows {
		applications = append(applications, row.toDomain())
	}

	return applications, nil
}
