package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSetup *TestDatabaseSetup

func TestMain(m *testing.M) {
	ctx := context.Background()
	setup, err := NewTestDatabase(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	testSetup = setup

	code := m.Run()
	if testSetup != nil {
		testSetup.DB.Close()
	}
	os.Exit(code)
}

// setupTestData skips without a database and empties every table otherwise
func setupTestData(t *testing.T) {
	t.Helper()
	if testSetup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, testSetup.TruncateAllTables(context.Background()))
}

// Helper to create an organization for testing
func createTestOrganization(t *testing.T, ctx context.Context) organization.Organization {
	t.Helper()
	org, err := postgresql.NewOrganizationRepository(testSetup.DB).Create(ctx, organization.Organization{
		Name:     "Test Organization",
		Location: organization.Location{Latitude: 12.9716, Longitude: 77.5946, Radius: 100},
		Settings: organization.DefaultSettings(),
	})
	require.NoError(t, err)
	return org
}

func createTestUser(t *testing.T, ctx context.Context, orgID, email string) user.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashedStr := string(hashed)

	u, err := postgresql.NewUserRepository(testSetup.DB).Create(ctx, user.User{
		OrganizationID: &orgID,
		Email:          email,
		Name:           "Test User",
		PasswordHash:   &hashedStr,
		Role:           user.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testSetup.DB)
	org := createTestOrganization(t, ctx)

	created := createTestUser(t, ctx, org.ID, "Member@Example.com")

	byEmail, err := repo.GetByEmail(ctx, "member@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, user.RoleUser, byEmail.Role)
	assert.False(t, byEmail.Device.IsRegistered)
	assert.Nil(t, byEmail.Device.LastKnownLocation)

	_, err = repo.Create(ctx, user.User{OrganizationID: &org.ID, Email: "MEMBER@example.com", Role: user.RoleUser})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	_, err = repo.GetByID(ctx, "0199a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_DeviceLifecycle(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testSetup.DB)
	org := createTestOrganization(t, ctx)
	u := createTestUser(t, ctx, org.ID, "device@example.com")

	deviceID, deviceType := "phone-1", "android"
	registeredAt := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.UpdateDevice(ctx, u.ID, user.Device{DeviceID: &deviceID, DeviceType: &deviceType, IsRegistered: true, RegisteredAt: &registeredAt}))
	require.NoError(t, repo.UpdateLastKnownLocation(ctx, u.ID, user.KnownLocation{Latitude: 12.97, Longitude: 77.59, Accuracy: 8, Timestamp: registeredAt}))

	newID := "phone-2"
	requestedAt := registeredAt.Add(time.Hour)
	require.NoError(t, repo.UpdateDeviceChangeRequest(ctx, u.ID, user.DeviceChangeRequest{NewDeviceID: &newID, RequestedAt: &requestedAt, Status: user.ChangeRequestPending}))

	pending, err := repo.ListPendingChangeRequests(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	stored := pending[0]
	assert.Equal(t, "phone-1", *stored.Device.DeviceID)
	require.NotNil(t, stored.Device.LastKnownLocation)
	assert.Equal(t, 8.0, stored.Device.LastKnownLocation.Accuracy)
	assert.Equal(t, "phone-2", *stored.DeviceChangeRequest.NewDeviceID)
	assert.Nil(t, stored.DeviceChangeRequest.AdminResponse)

	members, err := repo.ListByOrganization(ctx, org.ID, user.RoleUser)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestUserRepository_GetByIDForUpdateBlocksConcurrentWriters(t *testing.T) {
	setupTestData(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testSetup.DB)
	tx := postgresql.NewTransactor(testSetup.DB)
	org := createTestOrganization(t, ctx)
	u := createTestUser(t, ctx, org.ID, "locked@example.com")

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := repo.GetByIDForUpdate(ctx, u.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	written := make(chan error, 1)
	go func() {
		deviceID := "phone-2"
		written <- tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := repo.GetByIDForUpdate(ctx, u.ID); err != nil {
				return err
			}
			return repo.UpdateDevice(ctx, u.ID, user.Device{DeviceID: &deviceID, IsRegistered: true})
		})
	}()

	select {
	case err := <-written:
		t.Fatalf("second transaction should wait for the row lock, got %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-written)

	_, err := repo.GetByIDForUpdate(ctx, "0199a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
