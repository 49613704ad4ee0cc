package usecase

import (
	"context"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// AdminUserInput — форма создания пользователя в админке
type AdminUserInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Name        string `json:"name" validate:"max=255"`
	Password1   string `json:"password1" validate:"required"`
	Password2   string `json:"password2" validate:"required,eqfield=Password1"`
	IsActive    *bool  `json:"is_active"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// AdminUserPatch — изменение пользователя в админке; nil означает "не передано"
type AdminUserPatch struct {
	Email       *string `json:"email" validate:"omitnil,email,max=255"`
	Name        *string `json:"name" validate:"omitnil,max=255"`
	Password    *string `json:"password" validate:"omitnil,min=1"`
	IsActive    *bool   `json:"is_active"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// AdminUseCase определяет операции административного интерфейса.
// Доступ не ограничен владельцем записей.
type AdminUseCase interface {
	// Login проверяет учетные данные и права доступа к админке
	Login(ctx context.Context, email, password string) (*domain.User, error)
	// CurrentAdmin перепроверяет права пользователя из сессии
	CurrentAdmin(ctx context.Context, userID int64) (*domain.User, error)

	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	CreateUser(ctx context.Context, in AdminUserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, patch AdminUserPatch) (*domain.User, error)

	ListRecipes(ctx context.Context) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, in domain.RecipeInput) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error

	ListAttributes(ctx context.Context, kind domain.AttributeKind) ([]domain.Attribute, error)
	GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error)
	RenameAttribute(ctx context.Context, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error)
	DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error
}
