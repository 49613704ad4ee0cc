package usecase

import (
	"context"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// AttributeUseCase определяет бизнес-логику тегов и ингредиентов
type AttributeUseCase interface {
	ListAttributes(ctx context.Context, user *domain.User, kind domain.AttributeKind, filter domain.AttributeFilter) ([]domain.Attribute, error)
	// CreateAttribute возвращает существующую запись с таким именем или создает новую;
	// второй результат true, если запись создана
	CreateAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, name string) (*domain.Attribute, bool, error)
	GetAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, id int64) (*domain.Attribute, error)
	RenameAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error)
	DeleteAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, id int64) error
}
