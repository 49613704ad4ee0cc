package usecase

import (
	"context"
	"io"

	"github.com/GoArmGo/RecipeApp/internal/domain"
)

// RecipeUseCase определяет бизнес-логику рецептов.
// Пользователь передается явно и ограничивает все операции своими записями.
type RecipeUseCase interface {
	ListRecipes(ctx context.Context, user *domain.User, filter domain.RecipeFilter) ([]domain.Recipe, error)
	GetRecipe(ctx context.Context, user *domain.User, id int64) (*domain.Recipe, error)
	CreateRecipe(ctx context.Context, user *domain.User, in domain.RecipeInput) (*domain.Recipe, error)
	// UpdateRecipe: partial=false требует title, time_minutes и price
	UpdateRecipe(ctx context.Context, user *domain.User, id int64, in domain.RecipeInput, partial bool) (*domain.Recipe, error)
	// DeleteRecipe удаляет рецепт и файл его изображения
	DeleteRecipe(ctx context.Context, user *domain.User, id int64) error

	// UploadImage проверяет, что содержимое является изображением,
	// сохраняет файл и заменяет предыдущее изображение рецепта
	UploadImage(ctx context.Context, user *domain.User, id int64, filename string, content io.Reader) (*domain.Recipe, error)
	// ImageURL возвращает публичный URL изображения или пустую строку
	ImageURL(recipe *domain.Recipe) string
}
