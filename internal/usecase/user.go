package usecase

import (
	"context"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// ProfilePatch — изменения собственного профиля; nil означает "не передано"
type ProfilePatch struct {
	Email    *string
	Name     *string
	Password *string
}

// UserUseCase определяет бизнес-логику учетных записей и токенов
type UserUseCase interface {
	// CreateUser нормализует email, хэширует пароль и сохраняет пользователя
	CreateUser(ctx context.Context, email, password string, extra domain.UserFields) (*domain.User, error)
	// CreateSuperuser создает пользователя с правами staff и superuser
	CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error)

	// ObtainToken проверяет учетные данные и возвращает токен пользователя,
	// создавая его при отсутствии
	ObtainToken(ctx context.Context, email, password string) (*domain.AuthToken, error)
	// Authenticate находит активного владельца токена
	Authenticate(ctx context.Context, key string) (*domain.User, error)

	// UpdateProfile меняет имя, email и пароль; флаги здесь не меняются
	UpdateProfile(ctx context.Context, user *domain.User, patch ProfilePatch) (*domain.User, error)
}
