// Package memory implements the repositories on process memory. It backs
// STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/google/uuid"
)

type refreshToken struct {
	userID    string
	expiresAt time.Time
	revokedAt *time.Time
}

type tables struct {
	organizations map[string]organization.Organization
	users         map[string]user.User
	qrcodes       map[string]qrcode.QRCode
	events        map[string]attendance.Event
	timesheets    map[string]timesheet.DailyTimesheet
	refreshTokens map[string]refreshToken
}

func newTables() tables {
	return tables{
		organizations: make(map[string]organization.Organization),
		users:         make(map[string]user.User),
		qrcodes:       make(map[string]qrcode.QRCode),
		events:        make(map[string]attendance.Event),
		timesheets:    make(map[string]timesheet.DailyTimesheet),
		refreshTokens: make(map[string]refreshToken),
	}
}

// clone copies every table. Values are copied by assignment; slices inside them are never
// mutated in place by the repositories, so sharing them is safe.
func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.organizations {
		c.organizations[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.qrcodes {
		c.qrcodes[k] = v
	}
	for k, v := range t.events {
		c.events[k] = v
	}
	for k, v := range t.timesheets {
		c.timesheets[k] = v
	}
	for k, v := range t.refreshTokens {
		c.refreshTokens[k] = v
	}
	return c
}

// Store holds all tables behind one lock. txMu serializes transactions.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data tables
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func timesheetKey(userID, organizationID, workDate string) string {
	return userID + "|" + organizationID + "|" + workDate
}

// write applies fn under the data lock. Outside a transaction it also takes txMu so a
// rollback never discards a concurrent committed write.
func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if ctx.Value(txKey{}) == nil {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.data)
}

func (s *Store) read(fn func(t *tables)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.data)
}
