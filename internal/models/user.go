package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID             int64  `json:"id" db:"id"`
	Username       string `json:"username" db:"username"`
	Email          string `json:"email" db:"email"`
	PasswordHash   string `json:"-" db:"password_hash"` // не отдаём наружу
	Role           Role   `json:"role" db:"role"`
	TelegramChatID *int64 `json:"telegramChatId,omitempty" db:"telegram_chat_id"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-" db:"refresh_token"`
	RefreshExpiresAt *time.Time `json:"-" db:"refresh_expires_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public part of a user embedded into task, share and comment payloads.
type UserSummary struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email,omitempty" db:"email"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserChanges is a partial profile update. Password is plain text and is
// hashed by the write path before anything reaches the store.
type UserChanges struct {
	Username       *string
	Email          *string
	Password       *string
	TelegramChatID *int64
}

func (c UserChanges) Empty() bool {
	return c.Username == nil && c.Email == nil && c.Password == nil && c.TelegramChatID == nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
