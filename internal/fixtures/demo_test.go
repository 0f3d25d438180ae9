package fixtures

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tx := memory.NewTransactor(store)
	orgs := memory.NewOrganizationRepository(store)
	users := memory.NewUserRepository(store)

	seeded, err := SeedDemo(ctx, tx, orgs, users)
	require.NoError(t, err)
	require.NotNil(t, seeded)
	assert.Len(t, seeded.MemberIDs, len(GetDemoMembers()))

	org, err := orgs.GetByID(ctx, seeded.OrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", org.Settings.Timezone)

	admin, err := users.GetByEmail(ctx, "admin@demo.test")
	require.NoError(t, err)
	assert.Equal(t, user.RoleOrganization, admin.Role)
	require.NotNil(t, admin.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*admin.PasswordHash), []byte(DemoPassword)))

	members, err := users.ListByOrganization(ctx, seeded.OrganizationID, user.RoleUser)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	// Second run is a no-op
	again, err := SeedDemo(ctx, tx, orgs, users)
	require.NoError(t, err)
	assert.Nil(t, again)
}
