package ports

import (
	"context"

	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
)

// RecipeEventPublisher публикует события об изменении рецептов.
// Ошибка публикации не должна отменять уже выполненную операцию.
type RecipeEventPublisher interface {
	PublishRecipeEvent(ctx context.Context, payload payloads.RecipeEventPayload) error
}
