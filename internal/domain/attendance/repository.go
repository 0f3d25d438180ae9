package attendance

import (
	"context"
	"time"
)

// AttendanceRepository stores attendance events. Events are append-only.
type AttendanceRepository interface {
	Create(ctx context.Context, event Event) (Event, error)

	// ListBetween returns the user's events for the organization with from <= timestamp < to,
	// oldest first.
	ListBetween(ctx context.Context, userID, organizationID string, from, to time.Time) ([]Event, error)

	// ListByUser returns the user's events newest first, with the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Event, int64, error)

	// LockUserDay serializes writers for (user, organization, day) until the surrounding
	// transaction ends. It must be called inside a transaction.
	LockUserDay(ctx context.Context, userID, organizationID, workDate string) error

	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
