package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	tokenAlphabet = "0123456789abcdef"
	tokenLength   = 40
)

// userUseCase implements UserUseCase
type userUseCase struct {
	userStorage ports.UserStorage
	logger      *slog.Logger
	now         func() time.Time
}

// NewUserUseCase создает новый экземпляр UserUseCase
func NewUserUseCase(userStorage ports.UserStorage, logger *slog.Logger) UserUseCase {
	return &userUseCase{
		userStorage: userStorage,
		logger:      logger,
		now:         time.Now,
	}
}

// NewTokenKey генерирует случайный ключ токена из 40 hex-символов
func NewTokenKey() (string, error) {
	return gonanoid.Generate(tokenAlphabet, tokenLength)
}

func (uc *userUseCase) CreateUser(ctx context.Context, email, password string, extra domain.UserFields) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.FieldError("email", "is required")
	}

	user := &domain.User{
		Email:       domain.NormalizeEmail(email),
		Name:        extra.Name,
		IsActive:    true,
		IsStaff:     extra.IsStaff,
		IsSuperuser: extra.IsSuperuser,
	}
	if extra.IsActive != nil {
		user.IsActive = *extra.IsActive
	}
	if err := domain.SetPassword(user, password); err != nil {
		return nil, err
	}

	if err := uc.userStorage.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (uc *userUseCase) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	return uc.CreateUser(ctx, email, password, domain.UserFields{IsStaff: true, IsSuperuser: true})
}

func (uc *userUseCase) ObtainToken(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	invalid := domain.Unauthorized("unable to authenticate with provided credentials")

	user, err := uc.userStorage.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("usecase: ошибка при поиске пользователя: %w", err)
	}
	if !domain.CanAuthenticate(user) || !domain.CheckPassword(user, password) {
		uc.logger.Warn("token request rejected", "user_id", user.ID)
		return nil, invalid
	}

	key, err := NewTokenKey()
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка генерации токена: %w", err)
	}
	token, err := uc.userStorage.GetOrCreateToken(ctx, user.ID, key)
	if err != nil {
		return nil, err
	}

	if err := uc.userStorage.TouchLastLogin(ctx, user.ID, uc.now()); err != nil {
		uc.logger.Warn("failed to update last_login", "user_id", user.ID, "error", err)
	}
	return token, nil
}

func (uc *userUseCase) Authenticate(ctx context.Context, key string) (*domain.User, error) {
	if key == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := uc.userStorage.GetUserByToken(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("invalid token")
		}
		return nil, err
	}
	if !domain.CanAuthenticate(user) {
		return nil, domain.Unauthorized("user inactive or deleted")
	}
	return user, nil
}

func (uc *userUseCase) UpdateProfile(ctx context.Context, user *domain.User, patch ProfilePatch) (*domain.User, error) {
	updated := *user
	if patch.Email != nil {
		if strings.TrimSpace(*patch.Email) == "" {
			return nil, domain.FieldError("email", "is required")
		}
		updated.Email = domain.NormalizeEmail(*patch.Email)
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Password != nil {
		if err := domain.SetPassword(&updated, *patch.Password); err != nil {
			return nil, err
		}
	}

	if err := uc.userStorage.UpdateUser(ctx, &updated); err != nil {
		return nil, err
	}
	uc.logger.Info("profile updated", "user_id", updated.ID)
	return &updated, nil
}
