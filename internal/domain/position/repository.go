package position

import (
	"context"
	"time"
)

// Repository describes position persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p Position) error
	GetByID(ctx context.Context, positionID string) (Position, bool, error)
	ListOpen(ctx context.Context, now time.Time) ([]Position, error)
	ListBySquad(ctx context.Context, squadID string) ([]Position, error)
	// Close flips is_open to false if it still is true. Returns ErrClosed when
	// the position was already closed by a concurrent writer.
	Close(ctx context.Context, positionID string) error
	// ListExpiredOpen returns open positions whose expiry has passed, for the
	// sweeper. Scan results are advisory; Close re-checks state on commit.
	ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]Position, error)
}
