package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, name, password_hash, is_active, is_staff, is_superuser`

// UserStorage реализует ports.UserStorage поверх sqlx
type UserStorage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewUserStorage создает новый экземпляр UserStorage
func NewUserStorage(db *sqlx.DB, logger *slog.Logger) *UserStorage {
	return &UserStorage{db: db, logger: logger}
}

// CreateUser сохраняет нового пользователя и проставляет ему ID
func (s *UserStorage) CreateUser(ctx context.Context, user *domain.User) error {
	start := time.Now()

	err := s.db.GetContext(ctx, &user.ID, s.db.Rebind(`
		INSERT INTO users (email, name, password_hash, is_active, is_staff, is_superuser)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`),
		user.Email, user.Name, user.PasswordHash, user.IsActive, user.IsStaff, user.IsSuperuser,
	)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("user email already taken", "email", user.Email)
			return domain.FieldError("email", "user with this email already exists")
		}
		s.logger.Error("failed to insert user", "email", user.Email, "error", err)
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// GetUserByID получает пользователя по ID
func (s *UserStorage) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByEmail получает пользователя по точному email
func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *UserStorage) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		s.logger.Error("failed to select user", "error", err)
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}
	return &user, nil
}

// UpdateUser сохраняет email, имя и хэш пароля
func (s *UserStorage) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE users SET email = ?, name = ?, password_hash = ? WHERE id = ?`),
		user.Email, user.Name, user.PasswordHash, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.FieldError("email", "user with this email already exists")
		}
		s.logger.Error("failed to update user", "user_id", user.ID, "error", err)
		return fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TouchLastLogin фиксирует время последнего входа
func (s *UserStorage) TouchLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`), at.UTC(), userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении last_login: %w", err)
	}
	return nil
}

// GetOrCreateToken возвращает токен пользователя, создавая его при отсутствии
func (s *UserStorage) GetOrCreateToken(ctx context.Context, userID int64, newKey string) (*domain.AuthToken, error) {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO auth_tokens (token, user_id) VALUES (?, ?)
		ON CONFLICT (user_id) DO NOTHING`),
		newKey, userID,
	)
	if err != nil {
		s.logger.Error("failed to insert token", "user_id", userID, "error", err)
		return nil, fmt.Errorf("ошибка при создании токена: %w", err)
	}

	var token domain.AuthToken
	err = s.db.GetContext(ctx, &token, s.db.Rebind(`SELECT token, user_id FROM auth_tokens WHERE user_id = ?`), userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении токена: %w", err)
	}
	return &token, nil
}

// GetUserByToken находит владельца токена
func (s *UserStorage) GetUserByToken(ctx context.Context, key string) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(`
		SELECT u.id, u.email, u.name, u.password_hash, u.is_active, u.is_staff, u.is_superuser
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = ?`), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка при поиске пользователя по токену: %w", err)
	}
	return &user, nil
}
