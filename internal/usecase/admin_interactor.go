package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/validation"
)

// adminUseCase implements AdminUseCase
type adminUseCase struct {
	storage     ports.AdminStorage
	fileStorage ports.FileStorage
	validator   *validation.Validator
	logger      *slog.Logger
}

// NewAdminUseCase создает новый экземпляр AdminUseCase
func NewAdminUseCase(storage ports.AdminStorage, fileStorage ports.FileStorage, validator *validation.Validator, logger *slog.Logger) AdminUseCase {
	return &adminUseCase{
		storage:     storage,
		fileStorage: fileStorage,
		validator:   validator,
		logger:      logger,
	}
}

func (uc *adminUseCase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.storage.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Unauthorized("please enter the correct email and password for a staff account")
		}
		return nil, err
	}
	if !domain.CanAuthenticate(user) || !domain.CheckPassword(user, password) {
		return nil, domain.Unauthorized("please enter the correct email and password for a staff account")
	}
	if !domain.CanAccessAdmin(user) {
		uc.logger.Warn("admin login denied", "user_id", user.ID)
		return nil, domain.ErrForbidden
	}
	uc.logger.Info("admin logged in", "user_id", user.ID)
	return user, nil
}

func (uc *adminUseCase) CurrentAdmin(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := uc.storage.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !domain.CanAccessAdmin(user) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (uc *adminUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	return uc.storage.ListUsers(ctx)
}

func (uc *adminUseCase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return uc.storage.GetUser(ctx, id)
}

func (uc *adminUseCase) CreateUser(ctx context.Context, in AdminUserInput) (*domain.User, error) {
	if err := uc.validator.Validate(in); err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:       domain.NormalizeEmail(in.Email),
		Name:        in.Name,
		IsActive:    true,
		IsStaff:     in.IsStaff,
		IsSuperuser: in.IsSuperuser,
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := domain.SetPassword(user, in.Password1); err != nil {
		return nil, err
	}
	if err := uc.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *adminUseCase) UpdateUser(ctx context.Context, id int64, patch AdminUserPatch) (*domain.User, error) {
	user, err := uc.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.validator.Validate(patch); err != nil {
		return nil, err
	}

	if patch.Email != nil {
		user.Email = domain.NormalizeEmail(*patch.Email)
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Password != nil {
		if err := domain.SetPassword(user, *patch.Password); err != nil {
			return nil, err
		}
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsStaff != nil {
		user.IsStaff = *patch.IsStaff
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	if err := uc.storage.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *adminUseCase) ListRecipes(ctx context.Context) ([]domain.Recipe, error) {
	return uc.storage.ListRecipes(ctx)
}

func (uc *adminUseCase) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	return uc.storage.GetRecipe(ctx, id)
}

// UpdateRecipe меняет скалярные поля; связи с тегами в админке не редактируются
func (uc *adminUseCase) UpdateRecipe(ctx context.Context, id int64, in domain.RecipeInput) (*domain.Recipe, error) {
	recipe, err := uc.storage.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Tags, in.Ingredients = domain.AttributeUpdate{}, domain.AttributeUpdate{}
	if err := validateRecipeInput(uc.validator, in, false); err != nil {
		return nil, err
	}

	in.Apply(recipe)
	recipe.Title = strings.TrimSpace(recipe.Title)
	if err := uc.storage.UpdateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (uc *adminUseCase) DeleteRecipe(ctx context.Context, id int64) error {
	image, err := uc.storage.DeleteRecipe(ctx, id)
	if err != nil {
		return err
	}
	if image != "" {
		if err := uc.fileStorage.DeleteFile(ctx, image); err != nil {
			uc.logger.Warn("failed to delete stored file", "key", image, "error", err)
		}
	}
	return nil
}

func (uc *adminUseCase) ListAttributes(ctx context.Context, kind domain.AttributeKind) ([]domain.Attribute, error) {
	return uc.storage.ListAttributes(ctx, kind)
}

func (uc *adminUseCase) GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error) {
	return uc.storage.GetAttribute(ctx, kind, id)
}

func (uc *adminUseCase) RenameAttribute(ctx context.Context, kind domain.AttributeKind, id int64, name string) (*domain.Attribute, error) {
	name = strings.TrimSpace(name)
	if err := uc.validator.Validate(attributeRules{Name: name}); err != nil {
		return nil, err
	}
	return uc.storage.RenameAttribute(ctx, kind, id, name)
}

func (uc *adminUseCase) DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error {
	return uc.storage.DeleteAttribute(ctx, kind, id)
}
