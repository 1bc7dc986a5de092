package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/internal/models"
)

func newUserFixture(t *testing.T) (*memDB, UserService, *fakeEmails) {
	t.Helper()
	db := newMemDB()
	emails := &fakeEmails{}
	return db, NewUserService(db.Store(), plainAuth{}, emails), emails
}

func TestUserRegister(t *testing.T) {
	db, svc, emails := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, models.RegisterRequest{Username: " alice ", Email: "Alice@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "hashed:secret1", db.users[user.ID].PasswordHash)
	assert.Equal(t, []string{"alice@example.com"}, emails.welcome)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "other", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "user already exists", err.Error())

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, "username already taken", err.Error())
}

func TestUserRegister_Validation(t *testing.T) {
	_, svc, _ := newUserFixture(t)
	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"no username", models.RegisterRequest{Email: "a@example.com", Password: "secret1"}},
		{"bad email", models.RegisterRequest{Username: "a", Email: "not-an-email", Password: "secret1"}},
		{"display name in email", models.RegisterRequest{Username: "a", Email: "A <a@example.com>", Password: "secret1"}},
		{"short password", models.RegisterRequest{Username: "a", Email: "a@example.com", Password: "123"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("password over bcrypt limit", func(t *testing.T) {
		db := newMemDB()
		svc := NewUserService(db.Store(), NewAuthService("secret", 0, "taskhub"), nil)
		ctx := context.Background()

		_, err := svc.Register(ctx, models.RegisterRequest{Username: "a", Email: "a@example.com", Password: strings.Repeat("p", 80)})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "password must be at most 72 bytes", err.Error())
		assert.Empty(t, db.users)

		_, err = svc.Register(ctx, models.RegisterRequest{Username: "a", Email: "a@example.com", Password: strings.Repeat("p", 72)})
		assert.NoError(t, err)
	})
}

func TestUserRegister_WelcomeEmailFailureIgnored(t *testing.T) {
	db := newMemDB()
	svc := NewUserService(db.Store(), plainAuth{}, &fakeEmails{err: errors.New("smtp down")})

	user, err := svc.Register(context.Background(), models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestUserAuthenticate(t *testing.T) {
	_, svc, _ := newUserFixture(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "ALICE@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	for _, tc := range []struct{ email, password string }{
		{"alice@example.com", "wrong"},
		{"nobody@example.com", "secret1"},
		{"", ""},
	} {
		_, err := svc.Authenticate(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrInvalidCredentials, "%s/%s", tc.email, tc.password)
	}
}

func TestUserUpdate(t *testing.T) {
	db, svc, _ := newUserFixture(t)
	ctx := context.Background()
	alice := db.addUser("alice")
	bob := db.addUser("bob")
	admin := db.addUser("root")

	t.Run("self update without password keeps hash", func(t *testing.T) {
		db.mu.Lock()
		u := db.users[alice.ID]
		u.PasswordHash = "hashed:original"
		db.users[alice.ID] = u
		db.mu.Unlock()

		updated, err := svc.Update(ctx, alice.ID, models.RoleUser, alice.ID, models.UserChanges{Username: ptr("alice2")})
		require.NoError(t, err)
		assert.Equal(t, "alice2", updated.Username)
		assert.Equal(t, "hashed:original", db.users[alice.ID].PasswordHash)
	})

	t.Run("password is hashed", func(t *testing.T) {
		_, err := svc.Update(ctx, alice.ID, models.RoleUser, alice.ID, models.UserChanges{Password: ptr("newsecret")})
		require.NoError(t, err)
		assert.Equal(t, "hashed:newsecret", db.users[alice.ID].PasswordHash)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := svc.Update(ctx, bob.ID, models.RoleUser, alice.ID, models.UserChanges{Username: ptr("x")})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin may edit anyone", func(t *testing.T) {
		chat := int64(4242)
		updated, err := svc.Update(ctx, admin.ID, models.RoleAdmin, bob.ID, models.UserChanges{TelegramChatID: &chat})
		require.NoError(t, err)
		require.NotNil(t, updated.TelegramChatID)
		assert.Equal(t, chat, *updated.TelegramChatID)
	})

	t.Run("admin on missing user", func(t *testing.T) {
		_, err := svc.Update(ctx, admin.ID, models.RoleAdmin, 9999, models.UserChanges{Username: ptr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("taken username", func(t *testing.T) {
		_, err := svc.Update(ctx, bob.ID, models.RoleUser, bob.ID, models.UserChanges{Username: ptr("alice2")})
		assert.ErrorIs(t, err, ErrConflict)
		assert.Equal(t, "username already taken", err.Error())
	})

	t.Run("blank fields", func(t *testing.T) {
		_, err := svc.Update(ctx, bob.ID, models.RoleUser, bob.ID, models.UserChanges{Username: ptr("  ")})
		assert.ErrorIs(t, err, ErrValidation)
		_, err = svc.Update(ctx, bob.ID, models.RoleUser, bob.ID, models.UserChanges{Password: ptr("")})
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestUserRefreshRotation(t *testing.T) {
	db, svc, _ := newUserFixture(t)
	ctx := context.Background()
	alice := db.addUser("alice")

	require.NoError(t, svc.StoreRefresh(ctx, alice.ID, "r1", time.Now().Add(time.Hour)))

	user, err := svc.RotateRefresh(ctx, "r1", "r2", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = svc.RotateRefresh(ctx, "r1", "r3", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.StoreRefresh(ctx, alice.ID, "stale", time.Now().Add(-time.Minute)))
	_, err = svc.RotateRefresh(ctx, "stale", "r4", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
