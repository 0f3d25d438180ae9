package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
)

type attendanceRepositoryImpl struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{store: store}
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, event attendance.Event) (attendance.Event, error) {
	if event.ID == "" {
		id, err := newID()
		if err != nil {
			return attendance.Event{}, err
		}
		event.ID = id
	}
	event.CreatedAt = r.store.now()
	event.Verification.SpoofingReasons = append([]string(nil), event.Verification.SpoofingReasons...)

	err := r.store.write(ctx, func(t *tables) error {
		t.events[event.ID] = event
		return nil
	})
	return event, err
}

func (r *attendanceRepositoryImpl) ListBetween(ctx context.Context, userID, organizationID string, from, to time.Time) ([]attendance.Event, error) {
	var events []attendance.Event
	r.store.read(func(t *tables) {
		for _, e := range t.events {
			if e.UserID != userID || e.OrganizationID != organizationID {
				continue
			}
			if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
				continue
			}
			events = append(events, e)
		}
	})
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

func (r *attendanceRepositoryImpl) ListByUser(ctx context.Context, userID string, limit, offset int) ([]attendance.Event, int64, error) {
	var events []attendance.Event
	r.store.read(func(t *tables) {
		for _, e := range t.events {
			if e.UserID == userID {
				events = append(events, e)
			}
		}
	})
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})

	total := int64(len(events))
	if offset >= len(events) {
		return []attendance.Event{}, total, nil
	}
	end := offset + limit
	if end > len(events) {
		end = len(events)
	}
	return events[offset:end], total, nil
}

// LockUserDay is a no-op: memory transactions are already exclusive.
func (r *attendanceRepositoryImpl) LockUserDay(ctx context.Context, userID, organizationID, workDate string) error {
	return nil
}

func (r *attendanceRepositoryImpl) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(t *tables) error {
		for id, e := range t.events {
			if e.Timestamp.Before(cutoff) {
				delete(t.events, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
