package payloads

import "time"

// Типы событий рецептов
const (
	RecipeCreated       = "recipe.created"
	RecipeUpdated       = "recipe.updated"
	RecipeDeleted       = "recipe.deleted"
	RecipeImageUploaded = "recipe.image_uploaded"
)

// RecipeEventPayload — тело сообщения о событии рецепта
type RecipeEventPayload struct {
	Event      string    `json:"event"`
	RecipeID   int64     `json:"recipe_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
