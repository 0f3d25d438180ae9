package attendance

import (
	"context"
)

// AttendanceService verifies scans and exposes a user's attendance history.
type AttendanceService interface {
	// Scan runs the fail-fast verification pipeline and records the event on success.
	// Rejections are returned as *ScanError.
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)

	// History lists the caller's past events, newest first.
	History(ctx context.Context, userID string, filter HistoryFilter) (HistoryResponse, error)

	// Status returns today's session state and summary for the caller.
	Status(ctx context.Context, userID, organizationID string) (StatusResponse, error)
}
