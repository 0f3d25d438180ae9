package memory

import (
	"context"

	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
)

type txKey struct{}

type transactor struct {
	store *Store
}

func NewTransactor(store *Store) database.Transactor {
	return &transactor{store: store}
}

// WithinTransaction runs fn exclusively against the store and restores the prior
// state when fn fails or panics.
func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	t.store.mu.RLock()
	snapshot := t.store.data.clone()
	t.store.mu.RUnlock()

	rollback := func() {
		t.store.mu.Lock()
		t.store.data = snapshot
		t.store.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		rollback()
		return err
	}
	return nil
}
