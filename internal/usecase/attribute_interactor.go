package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/validation"
)

type attributeRules struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

// attributeUseCase implements AttributeUseCase
type attributeUseCase struct {
	storage   ports.AttributeStorage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAttributeUseCase создает новый экземпляр AttributeUseCase
func NewAttributeUseCase(storage ports.AttributeStorage, validator *validation.Validator, logger *slog.Logger) AttributeUseCase {
	return &attributeUseCase{storage: storage, validator: validator, logger: logger}
}

func (uc *attributeUseCase) validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := uc.validator.Validate(attributeRules{Name: name}); err != nil {
		return "", err
	}
	return name, nil
}

func (uc *attributeUseCase) ListAttributes(ctx context.Context, user *domain.User, kind domain.AttributeKind, filter domain.AttributeFilter) ([]domain.Attribute, error) {
	return uc.storage.ListAttributes(ctx, kind, user.ID, filter)
}

func (uc *attributeUseCase) CreateAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, name string) (*domain.Attribute, bool, error) {
	name, err := uc.validName(name)
	if err != nil {
		return nil, false, err
	}
	return uc.storage.GetOrCreateAttribute(ctx, kind, user.ID, name)
}

func (uc *attributeUseCase) GetAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, id int64) (*domain.Attribute, error) {
	return uc.storage.GetAttribute(ctx, kind, user.ID, id)
}

func (uc *attributeUseCase) RenameAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error) {
	// чужая запись дает 404 раньше ошибки валидации
	if _, err := uc.storage.GetAttribute(ctx, kind, user.ID, id); err != nil {
		return nil, err
	}
	name, err := uc.validName(name)
	if err != nil {
		return nil, err
	}
	return uc.storage.RenameAttribute(ctx, kind, user.ID, id, name)
}

func (uc *attributeUseCase) DeleteAttribute(ctx context.Context, user *domain.User, kind domain.AttributeKind, id int64) error {
	if err := uc.storage.DeleteAttribute(ctx, kind, user.ID, id); err != nil {
		return err
	}
	uc.logger.Info("attribute deleted", "kind", kind, "id", id, "user_id", user.ID)
	return nil
}
