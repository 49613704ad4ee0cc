package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
	"github.com/GoArmGo/RecipeApp/internal/validation"
)

// recipeRules — ограничения формата полей рецепта
type recipeRules struct {
	Title       *string  `json:"title" validate:"omitnil,notblank,max=255"`
	TimeMinutes *int     `json:"time_minutes" validate:"omitnil,gte=0,lte=2147483647"`
	Link        *string  `json:"link" validate:"omitnil,max=255"`
	Tags        []string `json:"tags" validate:"dive,notblank,max=255"`
	Ingredients []string `json:"ingredients" validate:"dive,notblank,max=255"`
}

// recipeUseCase implements RecipeUseCase
type recipeUseCase struct {
	recipeStorage ports.RecipeStorage
	fileStorage   ports.FileStorage
	publisher     ports.RecipeEventPublisher
	validator     *validation.Validator
	logger        *slog.Logger
}

// NewRecipeUseCase создает новый экземпляр RecipeUseCase
func NewRecipeUseCase(
	recipeStorage ports.RecipeStorage,
	fileStorage ports.FileStorage,
	publisher ports.RecipeEventPublisher,
	validator *validation.Validator,
	logger *slog.Logger,
) RecipeUseCase {
	return &recipeUseCase{
		recipeStorage: recipeStorage,
		fileStorage:   fileStorage,
		publisher:     publisher,
		validator:     validator,
		logger:        logger,
	}
}

// validateRecipeInput проверяет формат переданных полей;
// full=true дополнительно требует title, time_minutes и price.
func validateRecipeInput(v *validation.Validator, in domain.RecipeInput, full bool) error {
	var required error
	if full {
		missing := map[string]string{}
		if in.Title == nil {
			missing["title"] = "this field is required"
		}
		if in.TimeMinutes == nil {
			missing["time_minutes"] = "this field is required"
		}
		if in.Price == nil {
			missing["price"] = "this field is required"
		}
		if len(missing) > 0 {
			required = domain.Validation("validation failed", missing)
		}
	}

	var negative error
	if in.Price != nil && *in.Price < 0 {
		negative = domain.FieldError("price", "ensure this value is greater than or equal to 0")
	}

	return validation.Merge(required, negative, v.Validate(recipeRules{
		Title:       in.Title,
		TimeMinutes: in.TimeMinutes,
		Link:        in.Link,
		Tags:        in.Tags.Names,
		Ingredients: in.Ingredients.Names,
	}))
}

// trimNames убирает пробелы по краям имен тегов и ингредиентов
func trimNames(u domain.AttributeUpdate) domain.AttributeUpdate {
	if !u.Set {
		return u
	}
	names := make([]string, len(u.Names))
	for i, n := range u.Names {
		names[i] = strings.TrimSpace(n)
	}
	return domain.AttributeUpdate{Set: true, Names: names}
}

func (uc *recipeUseCase) publish(ctx context.Context, event string, recipe *domain.Recipe) {
	err := uc.publisher.PublishRecipeEvent(ctx, payloads.RecipeEventPayload{
		Event:      event,
		RecipeID:   recipe.ID,
		UserID:     recipe.UserID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		uc.logger.Warn("failed to publish recipe event", "event", event, "recipe_id", recipe.ID, "error", err)
	}
}

func (uc *recipeUseCase) ListRecipes(ctx context.Context, user *domain.User, filter domain.RecipeFilter) ([]domain.Recipe, error) {
	return uc.recipeStorage.ListRecipes(ctx, user.ID, filter)
}

func (uc *recipeUseCase) GetRecipe(ctx context.Context, user *domain.User, id int64) (*domain.Recipe, error) {
	return uc.recipeStorage.GetRecipe(ctx, user.ID, id)
}

func (uc *recipeUseCase) CreateRecipe(ctx context.Context, user *domain.User, in domain.RecipeInput) (*domain.Recipe, error) {
	in.Tags, in.Ingredients = trimNames(in.Tags), trimNames(in.Ingredients)
	if err := validateRecipeInput(uc.validator, in, true); err != nil {
		return nil, err
	}

	// владелец всегда текущий пользователь
	recipe := &domain.Recipe{UserID: user.ID}
	in.Apply(recipe)
	recipe.Title = strings.TrimSpace(recipe.Title)

	if err := uc.recipeStorage.CreateRecipe(ctx, recipe, in.Tags, in.Ingredients); err != nil {
		return nil, err
	}

	uc.logger.Info("recipe created", "recipe_id", recipe.ID, "title", recipe.String(), "user_id", user.ID)
	uc.publish(ctx, payloads.RecipeCreated, recipe)
	return recipe, nil
}

func (uc *recipeUseCase) UpdateRecipe(ctx context.Context, user *domain.User, id int64, in domain.RecipeInput, partial bool) (*domain.Recipe, error) {
	recipe, err := uc.recipeStorage.GetRecipe(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	in.Tags, in.Ingredients = trimNames(in.Tags), trimNames(in.Ingredients)
	if err := validateRecipeInput(uc.validator, in, !partial); err != nil {
		return nil, err
	}

	in.Apply(recipe)
	recipe.Title = strings.TrimSpace(recipe.Title)
	if err := uc.recipeStorage.UpdateRecipe(ctx, recipe, in.Tags, in.Ingredients); err != nil {
		return nil, err
	}

	uc.publish(ctx, payloads.RecipeUpdated, recipe)
	return recipe, nil
}

func (uc *recipeUseCase) DeleteRecipe(ctx context.Context, user *domain.User, id int64) error {
	image, err := uc.recipeStorage.DeleteRecipe(ctx, user.ID, id)
	if err != nil {
		return err
	}

	uc.removeFile(ctx, image)
	uc.publish(ctx, payloads.RecipeDeleted, &domain.Recipe{ID: id, UserID: user.ID})
	return nil
}

// removeFile удаляет файл после фиксации изменений в БД; ошибка только логируется
func (uc *recipeUseCase) removeFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := uc.fileStorage.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("failed to delete stored file", "key", key, "error", err)
	}
}

func (uc *recipeUseCase) UploadImage(ctx context.Context, user *domain.User, id int64, filename string, content io.Reader) (*domain.Recipe, error) {
	start := time.Now()

	// сначала проверяем владельца, чтобы чужой рецепт давал 404, а не 400
	if _, err := uc.recipeStorage.GetRecipe(ctx, user.ID, id); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка чтения изображения: %w", err)
	}
	img, err := decodeImage(data)
	if err != nil {
		return nil, err
	}

	key := RecipeImageKey(filename, img.format)
	if _, err := uc.fileStorage.UploadFile(ctx, key, bytes.NewReader(img.data), img.contentType()); err != nil {
		return nil, fmt.Errorf("usecase: ошибка загрузки изображения: %w", err)
	}

	previous, err := uc.recipeStorage.SetRecipeImage(ctx, user.ID, id, key, img.blurHash)
	if err != nil {
		uc.removeFile(ctx, key)
		return nil, err
	}
	if previous != key {
		uc.removeFile(ctx, previous)
	}

	recipe, err := uc.recipeStorage.GetRecipe(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("recipe image uploaded",
		"recipe_id", id,
		"key", key,
		"format", img.format,
		"bytes", len(img.data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	uc.publish(ctx, payloads.RecipeImageUploaded, recipe)
	return recipe, nil
}

func (uc *recipeUseCase) ImageURL(recipe *domain.Recipe) string {
	if recipe == nil || recipe.Image == "" {
		return ""
	}
	return uc.fileStorage.FileURL(recipe.Image)
}
