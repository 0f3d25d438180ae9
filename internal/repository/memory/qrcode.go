package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
)

type qrcodeRepositoryImpl struct {
	store *Store
}

func NewQRCodeRepository(store *Store) qrcode.QRCodeRepository {
	return &qrcodeRepositoryImpl{store: store}
}

func (r *qrcodeRepositoryImpl) Create(ctx context.Context, qr qrcode.QRCode) (qrcode.QRCode, error) {
	if qr.ID == "" {
		id, err := newID()
		if err != nil {
			return qrcode.QRCode{}, err
		}
		qr.ID = id
	}
	now := r.store.now()
	qr.CreatedAt, qr.UpdatedAt = now, now

	err := r.store.write(ctx, func(t *tables) error {
		t.qrcodes[qr.ID] = qr
		return nil
	})
	return qr, err
}

func (r *qrcodeRepositoryImpl) DeactivateActive(ctx context.Context, organizationID string, qrType qrcode.Type) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(t *tables) error {
		for id, qr := range t.qrcodes {
			if qr.OrganizationID == organizationID && qr.Type == qrType && qr.Active {
				qr.Active = false
				qr.UpdatedAt = r.store.now()
				t.qrcodes[id] = qr
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *qrcodeRepositoryImpl) find(match func(qr qrcode.QRCode) bool) (qrcode.QRCode, error) {
	var (
		found qrcode.QRCode
		ok    bool
	)
	r.store.read(func(t *tables) {
		for _, qr := range t.qrcodes {
			if match(qr) {
				found, ok = qr, true
				return
			}
		}
	})
	if !ok {
		return qrcode.QRCode{}, qrcode.ErrQRCodeNotFound
	}
	return found, nil
}

func (r *qrcodeRepositoryImpl) GetActive(ctx context.Context, organizationID string, qrType qrcode.Type) (qrcode.QRCode, error) {
	return r.find(func(qr qrcode.QRCode) bool {
		return qr.Active && qr.OrganizationID == organizationID && qr.Type == qrType
	})
}

func (r *qrcodeRepositoryImpl) GetActiveByCode(ctx context.Context, organizationID string, qrType qrcode.Type, code string) (qrcode.QRCode, error) {
	return r.find(func(qr qrcode.QRCode) bool {
		return qr.Active && qr.OrganizationID == organizationID && qr.Type == qrType && qr.Code == code
	})
}

func (r *qrcodeRepositoryImpl) FindActiveByCode(ctx context.Context, code string) (qrcode.QRCode, error) {
	return r.find(func(qr qrcode.QRCode) bool {
		return qr.Active && qr.Code == code
	})
}

func (r *qrcodeRepositoryImpl) IncrementUsage(ctx context.Context, id string) error {
	return r.store.write(ctx, func(t *tables) error {
		qr, ok := t.qrcodes[id]
		if !ok {
			return qrcode.ErrQRCodeNotFound
		}
		qr.UsageCount++
		t.qrcodes[id] = qr
		return nil
	})
}

func (r *qrcodeRepositoryImpl) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.store.write(ctx, func(t *tables) error {
		referenced := make(map[string]struct{})
		for _, e := range t.events {
			referenced[e.QRCodeID] = struct{}{}
		}
		for id, qr := range t.qrcodes {
			if qr.Active || !qr.IssuedAt.Before(cutoff) {
				continue
			}
			if _, used := referenced[id]; used {
				continue
			}
			delete(t.qrcodes, id)
			n++
		}
		return nil
	})
	return n, err
}
