package squad

import (
	"context"
	"time"
)

// Repository describes squad and membership persistence needs from use cases.
//
// AddMember, RemoveMember and TransferCaptaincy are single atomic units: they
// re-validate membership and capacity at commit time and return the package
// sentinel errors when a concurrent writer got there first.
type Repository interface {
	Create(ctx context.Context, s Squad, captain Member) error
	GetByID(ctx context.Context, squadID string) (Squad, bool, error)
	GetMember(ctx context.Context, squadID, userID string) (Member, bool, error)
	// MemberSquadID resolves the at-most-one squad a user belongs to.
	MemberSquadID(ctx context.Context, userID string) (string, bool, error)
	ListMembers(ctx context.Context, squadID string) ([]Member, error)
	CountMembers(ctx context.Context, squadID string) (int, error)
	// AddMember inserts a membership row guarded by the squad's max size and
	// the one-squad-per-user invariant. Returns ErrFull or ErrAlreadyMember
	// when a guard fails at commit time.
	AddMember(ctx context.Context, m Member, maxSize int) error
	// RemoveMember deletes a membership row. Returns ErrNotMember when absent
	// and ErrCaptainCannotLeave when the row still holds the captain role.
	RemoveMember(ctx context.Context, squadID, userID string) error
	// TransferCaptaincy atomically swaps the captain role between two current
	// members and updates the squad's captain reference.
	TransferCaptaincy(ctx context.Context, squadID, fromUserID, toUserID string, at time.Time) error
}
