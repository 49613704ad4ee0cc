// internal/domain/user.go
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// unusablePasswordPrefix помечает хэш, с которым вход по паролю невозможен
const unusablePasswordPrefix = "!"

// User представляет учетную запись пользователя.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	IsStaff      bool       `json:"is_staff" db:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser" db:"is_superuser"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"-"`
	CreatedAt    time.Time  `json:"created_at" db:"-"`
}

func (u User) String() string {
	return u.Email
}

// UserFields — дополнительные поля при создании пользователя
type UserFields struct {
	Name        string
	IsActive    *bool
	IsStaff     bool
	IsSuperuser bool
}

// NormalizeEmail приводит к нижнему регистру только доменную часть адреса.
// Локальная часть сохраняется как есть.
func NormalizeEmail(email string) string {
	trimmed := strings.TrimSpace(email)
	at := strings.LastIndex(trimmed, "@")
	if at < 0 {
		return trimmed
	}
	return trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:])
}

// SetPassword хэширует пароль и сохраняет хэш в пользователе.
// Пустой пароль дает непригодный для входа хэш.
func SetPassword(u *User, raw string) error {
	if raw == "" {
		u.PasswordHash = unusablePasswordPrefix
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return FieldError("password", "must not exceed 72 bytes")
		}
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword сверяет пароль с сохраненным хэшем
func CheckPassword(u *User, raw string) bool {
	if u == nil || raw == "" || u.PasswordHash == "" || strings.HasPrefix(u.PasswordHash, unusablePasswordPrefix) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(raw)) == nil
}

// CanAuthenticate — может ли пользователь получать и использовать токены
func CanAuthenticate(u *User) bool {
	return u != nil && u.IsActive
}

// CanAccessAdmin — доступ к административному интерфейсу
func CanAccessAdmin(u *User) bool {
	return CanAuthenticate(u) && (u.IsStaff || u.IsSuperuser)
}

// AuthToken — непрозрачный токен доступа, один на пользователя
type AuthToken struct {
	Key     string    `json:"token" db:"token"`
	UserID  int64     `json:"-" db:"user_id"`
	Created time.Time `json:"-" db:"-"`
}
