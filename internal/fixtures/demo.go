// Package fixtures seeds a demo organization so a fresh deployment can be exercised end to end.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/organization"
	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/qr-attendance-go/internal/pkg/geo"
	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "demo-password"

// ==========================================
// SEEDED DATA RESULT
// ==========================================

// SeededDemo holds IDs of the seeded demo data
type SeededDemo struct {
	OrganizationID string
	AdminID        string
	MemberIDs      map[string]string // email -> user ID
}

// ==========================================
// DEFAULT ORGANIZATION
// ==========================================

// GetDemoOrganization returns the demo organization located in central Bengaluru
func GetDemoOrganization() organization.Organization {
	return organization.Organization{
		Name: "Demo Organization",
		Location: organization.Location{
			Latitude:  12.9716,
			Longitude: 77.5946,
			Radius:    geo.DefaultRadiusMeters,
			Address:   "MG Road, Bengaluru",
		},
		Settings: organization.DefaultSettings(),
	}
}

// ==========================================
// DEFAULT USERS
// ==========================================

const demoAdminEmail = "admin@demo.test"

// GetDemoMembers returns the members created alongside the admin
func GetDemoMembers() []user.User {
	return []user.User{
		{Email: "asha@demo.test", Name: "Asha Rao", Role: user.RoleUser},
		{Email: "vikram@demo.test", Name: "Vikram Shah", Role: user.RoleUser},
	}
}

// SeedDemo creates the demo organization, its admin and members in one transaction.
// It does nothing when the admin account already exists.
func SeedDemo(ctx context.Context, tx database.Transactor, orgRepo organization.OrganizationRepository, userRepo user.UserRepository) (*SeededDemo, error) {
	if existing, err := userRepo.GetByEmail(ctx, demoAdminEmail); err == nil {
		slog.Info("Demo data already present, skipping seed", "admin_id", existing.ID)
		return nil, nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check demo admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	passwordHash := string(hashed)

	seeded := &SeededDemo{MemberIDs: make(map[string]string)}
	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		org, err := orgRepo.Create(ctx, GetDemoOrganization())
		if err != nil {
			return fmt.Errorf("failed to create demo organization: %w", err)
		}
		seeded.OrganizationID = org.ID

		admin, err := userRepo.Create(ctx, user.User{
			OrganizationID: &org.ID,
			Email:          demoAdminEmail,
			Name:           "Demo Admin",
			PasswordHash:   &passwordHash,
			Role:           user.RoleOrganization,
		})
		if err != nil {
			return fmt.Errorf("failed to create demo admin: %w", err)
		}
		seeded.AdminID = admin.ID

		for _, m := range GetDemoMembers() {
			m.OrganizationID = &org.ID
			m.PasswordHash = &passwordHash
			created, err := userRepo.Create(ctx, m)
			if err != nil {
				return fmt.Errorf("failed to create demo member %s: %w", m.Email, err)
			}
			seeded.MemberIDs[created.Email] = created.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Demo data seeded", "organization_id", seeded.OrganizationID, "members", len(seeded.MemberIDs))
	return seeded, nil
}
