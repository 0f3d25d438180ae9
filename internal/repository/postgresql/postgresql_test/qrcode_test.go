package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCodeRepository_OneActivePerType(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewQRCodeRepository(testSetup.DB)
	org := createTestOrganization(t, ctx)

	newQR := func(code string) qrcode.QRCode {
		return qrcode.QRCode{OrganizationID: org.ID, Type: qrcode.TypeCheckIn, Code: code, Latitude: 1, Longitude: 2, Radius: 100, IssuedAt: time.Now(), ValidityMinutes: 30, Active: true}
	}

	first, err := repo.Create(ctx, newQR("code-1"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newQR("code-2"))
	assert.Error(t, err, "a second active token of the same type violates the partial unique index")

	n, err := repo.DeactivateActive(ctx, org.ID, qrcode.TypeCheckIn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	second, err := repo.Create(ctx, newQR("code-2"))
	require.NoError(t, err)

	_, err = repo.FindActiveByCode(ctx, first.Code)
	assert.ErrorIs(t, err, qrcode.ErrQRCodeNotFound)

	got, err := repo.GetActiveByCode(ctx, org.ID, qrcode.TypeCheckIn, "code-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	require.NoError(t, repo.IncrementUsage(ctx, second.ID))
	got, err = repo.GetActive(ctx, org.ID, qrcode.TypeCheckIn)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.UsageCount)
}
