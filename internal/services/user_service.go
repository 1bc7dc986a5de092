package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"taskhub/internal/authz"
	"taskhub/internal/models"
	"taskhub/internal/repositories"
)

const (
	minPasswordLen = 6
	// x/crypto bcrypt rejects longer input
	maxPasswordBytes = 72
)

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validationError(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(password) > maxPasswordBytes {
		return validationError(fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, actorID int64, actorRole models.Role, targetID int64, changes models.UserChanges) (*models.User, error)
	SetPassword(ctx context.Context, store repositories.Store, userID int64, plain string) error

	// refresh helpers
	StoreRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

type userService struct {
	store  repositories.Store
	auth   AuthService
	emails EmailService
}

func NewUserService(store repositories.Store, auth AuthService, emails EmailService) UserService {
	return &userService{store: store, auth: auth, emails: emails}
}

// prepareCredentials is the only place a plain password becomes a hash.
// It runs on every write path and does nothing when the change-set has no password.
func (s *userService) prepareCredentials(password *string) (*string, error) {
	if password == nil {
		return nil, nil
	}
	if err := validatePassword(*password); err != nil {
		return nil, err
	}
	hash, err := s.auth.HashPassword(*password)
	if err != nil {
		return nil, err
	}
	return &hash, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", validationError("invalid email")
	}
	return email, nil
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", validationError("username is required")
	}
	return username, nil
}

// duplicateUserError maps a unique violation on users to the field that collided.
func duplicateUserError(err error) error {
	if !errors.Is(err, repositories.ErrDuplicate) {
		return err
	}
	switch repositories.ConstraintOf(err) {
	case "users_username_key":
		return conflictError("username already taken")
	case "users_email_key":
		return conflictError("user already exists")
	}
	return conflictError("user already exists")
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	username, err := normalizeUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Users.GetByEmail(ctx, email); err == nil {
		return nil, conflictError("user already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.Users.GetByUsername(ctx, username); err == nil {
		return nil, conflictError("username already taken")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := s.prepareCredentials(&req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: *hash,
		Role:         models.RoleUser,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		// гонка между проверкой и вставкой
		return nil, duplicateUserError(err)
	}
	log.Printf("[user][register][ok] id=%d", user.ID)

	if s.emails != nil {
		if err := s.emails.SendWelcomeEmail(user.Email, user.Username); err != nil {
			log.Printf("[user][register][warn] welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.store.Users.List(ctx)
}

func (s *userService) Update(ctx context.Context, actorID int64, actorRole models.Role, targetID int64, changes models.UserChanges) (*models.User, error) {
	if !authz.CanManageUser(actorID, actorRole, targetID) {
		return nil, forbiddenError("Not authorized to update this user")
	}
	if _, err := s.store.Users.GetByID(ctx, targetID); err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	var patch repositories.UserPatch
	if changes.Username != nil {
		username, err := normalizeUsername(*changes.Username)
		if err != nil {
			return nil, err
		}
		patch.Username = &username
	}
	if changes.Email != nil {
		email, err := normalizeEmail(*changes.Email)
		if err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	hash, err := s.prepareCredentials(changes.Password)
	if err != nil {
		return nil, err
	}
	patch.PasswordHash = hash
	patch.TelegramChatID = changes.TelegramChatID

	user, err := s.store.Users.Update(ctx, targetID, patch)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, duplicateUserError(err)
	}
	log.Printf("[user][update][ok] id=%d by=%d", targetID, actorID)
	return user, nil
}

// SetPassword writes a new password through store, which may be bound to a transaction.
func (s *userService) SetPassword(ctx context.Context, store repositories.Store, userID int64, plain string) error {
	hash, err := s.prepareCredentials(&plain)
	if err != nil {
		return err
	}
	_, err = store.Users.Update(ctx, userID, repositories.UserPatch{PasswordHash: hash})
	return notFoundOr(err, "User not found")
}

func (s *userService) StoreRefresh(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	return s.store.Users.UpdateRefresh(ctx, userID, token, expiresAt)
}

func (s *userService) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	user, err := s.store.Users.RotateRefresh(ctx, oldToken, newToken, expiresAt)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}
