package ports

import (
	"context"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// UserStorage определяет методы для работы с пользователями и их токенами
type UserStorage interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error

	// GetOrCreateToken возвращает токен пользователя; newKey используется,
	// только если токена еще нет.
	GetOrCreateToken(ctx context.Context, userID int64, newKey string) (*domain.AuthToken, error)
	GetUserByToken(ctx context.Context, key string) (*domain.User, error)
}

// AttributeStorage определяет методы для тегов и ингредиентов.
// Все запросы ограничены владельцем userID.
type AttributeStorage interface {
	GetOrCreateAttribute(ctx context.Context, kind domain.AttributeKind, userID int64, name string) (*domain.Attribute, bool, error)
	ListAttributes(ctx context.Context, kind domain.AttributeKind, userID int64, filter domain.AttributeFilter) ([]domain.Attribute, error)
	GetAttribute(ctx context.Context, kind domain.AttributeKind, userID, id int64) (*domain.Attribute, error)
	RenameAttribute(ctx context.Context, kind domain.AttributeKind, userID, id int64, name string) (*domain.Attribute, error)
	DeleteAttribute(ctx context.Context, kind domain.AttributeKind, userID, id int64) error
}

// RecipeStorage определяет методы для рецептов.
// Все запросы ограничены владельцем userID.
type RecipeStorage interface {
	// CreateRecipe сохраняет рецепт и его связи в одной транзакции
	CreateRecipe(ctx context.Context, recipe *domain.Recipe, tags, ingredients domain.AttributeUpdate) error
	// UpdateRecipe сохраняет поля рецепта и применяет изменения связей
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe, tags, ingredients domain.AttributeUpdate) error
	GetRecipe(ctx context.Context, userID, id int64) (*domain.Recipe, error)
	ListRecipes(ctx context.Context, userID int64, filter domain.RecipeFilter) ([]domain.Recipe, error)
	// DeleteRecipe удаляет рецепт и возвращает ключ его изображения
	DeleteRecipe(ctx context.Context, userID, id int64) (string, error)
	// SetRecipeImage сохраняет новое изображение и возвращает ключ предыдущего
	SetRecipeImage(ctx context.Context, userID, id int64, key, blurHash string) (string, error)
}

// AdminStorage — неограниченный доступ ко всем записям для админки
type AdminStorage interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// SaveUser создает пользователя при ID == 0, иначе обновляет все поля
	SaveUser(ctx context.Context, user *domain.User) error

	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error
	DeleteRecipe(ctx context.Context, id int64) (string, error)

	ListAttributes(ctx context.Context, kind domain.AttributeKind) ([]domain.Attribute, error)
	GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error)
	RenameAttribute(ctx context.Context, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error)
	DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error
}
