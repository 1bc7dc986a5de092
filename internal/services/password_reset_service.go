package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskhub/internal/repositories"
	"taskhub/internal/utils"
)

const resetTokenTTL = time.Hour

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordResetService struct {
	store  repositories.Store
	tx     repositories.Transactor
	users  UserService
	emails EmailService
	now    func() time.Time
}

func NewPasswordResetService(store repositories.Store, tx repositories.Transactor, users UserService, emails EmailService) PasswordResetService {
	return &passwordResetService{
		store:  store,
		tx:     tx,
		users:  users,
		emails: emails,
		now:    time.Now,
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return validationError("email is required")
	}
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		// don't leak existence
		log.Printf("[password-reset][request] user lookup: %v", err)
		return nil
	}

	token, err := utils.NewResetToken()
	if err != nil {
		return err
	}
	if _, err := s.store.PasswordResets.Create(ctx, user.ID, token, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}
	log.Printf("[password-reset][request][ok] user=%d", user.ID)

	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
			log.Printf("[password-reset][request][warn] email to %s: %v", user.Email, err)
		}
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return validationError("token and password are required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	pr, err := s.store.PasswordResets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return validationError("invalid or expired token")
		}
		return err
	}
	if pr.UsedAt != nil {
		return validationError("token already used")
	}
	if s.now().After(pr.ExpiresAt) {
		return validationError("token expired")
	}

	err = s.tx.InTx(ctx, func(tx repositories.Store) error {
		// MarkUsed first: a concurrent reset with the same token loses here
		if err := tx.PasswordResets.MarkUsed(ctx, pr.ID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return validationError("token already used")
			}
			return err
		}
		return s.users.SetPassword(ctx, tx, pr.UserID, newPassword)
	})
	if err != nil {
		return err
	}
	log.Printf("[password-reset][reset][ok] user=%d", pr.UserID)
	return nil
}
