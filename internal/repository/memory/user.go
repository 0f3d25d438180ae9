package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/cmlabs-hris/qr-attendance-go/internal/domain/user"
)

type userRepositoryImpl struct {
	store *Store
}

func NewUserRepository(store *Store) user.UserRepository {
	return &userRepositoryImpl{store: store}
}

func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	if newUser.ID == "" {
		id, err := newID()
		if err != nil {
			return user.User{}, err
		}
		newUser.ID = id
	}
	now := r.store.now()
	newUser.CreatedAt, newUser.UpdatedAt = now, now

	err := r.store.write(ctx, func(t *tables) error {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, newUser.Email) {
				return user.ErrUserEmailExists
			}
		}
		t.users[newUser.ID] = newUser
		return nil
	})
	return newUser, err
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var (
		found user.User
		ok    bool
	)
	r.store.read(func(t *tables) {
		for _, u := range t.users {
			if strings.EqualFold(u.Email, email) {
				found, ok = u, true
				return
			}
		}
	})
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return found, nil
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	var (
		found user.User
		ok    bool
	)
	r.store.read(func(t *tables) {
		found, ok = t.users[id]
	})
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return found, nil
}

// GetByIDForUpdate relies on the transactor, which already runs one transaction at a time.
func (r *userRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (user.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepositoryImpl) list(match func(u user.User) bool) []user.User {
	var users []user.User
	r.store.read(func(t *tables) {
		for _, u := range t.users {
			if match(u) {
				users = append(users, u)
			}
		}
	})
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users
}

func (r *userRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string, role user.Role) ([]user.User, error) {
	return r.list(func(u user.User) bool {
		return u.BelongsTo(organizationID) && u.Role == role
	}), nil
}

func (r *userRepositoryImpl) ListPendingChangeRequests(ctx context.Context, organizationID string) ([]user.User, error) {
	return r.list(func(u user.User) bool {
		return u.BelongsTo(organizationID) && u.HasPendingChangeRequest()
	}), nil
}

func (r *userRepositoryImpl) update(ctx context.Context, userID string, fn func(u *user.User)) error {
	return r.store.write(ctx, func(t *tables) error {
		u, ok := t.users[userID]
		if !ok {
			return user.ErrUserNotFound
		}
		fn(&u)
		u.UpdatedAt = r.store.now()
		t.users[userID] = u
		return nil
	})
}

func (r *userRepositoryImpl) UpdateDevice(ctx context.Context, userID string, device user.Device) error {
	return r.update(ctx, userID, func(u *user.User) {
		device.LastKnownLocation = u.Device.LastKnownLocation
		u.Device = device
	})
}

func (r *userRepositoryImpl) UpdateDeviceChangeRequest(ctx context.Context, userID string, req user.DeviceChangeRequest) error {
	return r.update(ctx, userID, func(u *user.User) {
		u.DeviceChangeRequest = req
	})
}

func (r *userRepositoryImpl) UpdateLastKnownLocation(ctx context.Context, userID string, loc user.KnownLocation) error {
	return r.update(ctx, userID, func(u *user.User) {
		u.Device.LastKnownLocation = &loc
	})
}
