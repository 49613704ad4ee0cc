package handler

import (
	"html"
	"strconv"
	"strings"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	ugcPolicy    = bluemonday.UGCPolicy()
)

// sanitize удаляет разметку из однострочных полей. Текст без угловых скобок
// остается как есть.
func sanitize(s *string) *string {
	return sanitizeWith(strictPolicy, s)
}

// sanitizeRich оставляет безопасную разметку в описании рецепта
func sanitizeRich(s *string) *string {
	return sanitizeWith(ugcPolicy, s)
}

// sanitizeWith снимает с результата bluemonday экранирование сущностей, чтобы
// "&" и "<3" сохранялись как введены. Раскодированные сущности могут снова
// дать разметку, поэтому очистка повторяется до неподвижной точки.
func sanitizeWith(policy *bluemonday.Policy, s *string) *string {
	if s == nil || !strings.ContainsAny(*s, "<>") {
		return s
	}
	current := *s
	for range 4 {
		escaped := policy.Sanitize(current)
		next := html.UnescapeString(escaped)
		if next == current {
			return &next
		}
		current = next
	}
	// не сошлось: отдаем экранированный вариант
	escaped := policy.Sanitize(current)
	return &escaped
}

// --- пользователи ---

type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required,notblank,max=255"`
}

type tokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileRequest struct {
	Email    *string `json:"email" validate:"omitnil,email,max=255"`
	Name     *string `json:"name" validate:"omitnil,notblank,max=255"`
	Password *string `json:"password" validate:"omitnil,min=5"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{Email: u.Email, Name: u.Name}
}

// --- рецепты ---

type nameInput struct {
	Name string `json:"name"`
}

// recipeRequest: nil-поле означает "не передано"; null трактуется так же
type recipeRequest struct {
	Title       *string       `json:"title"`
	TimeMinutes *int          `json:"time_minutes"`
	Price       *domain.Price `json:"price"`
	Description *string       `json:"description"`
	Link        *string       `json:"link"`
	Tags        *[]nameInput  `json:"tags"`
	Ingredients *[]nameInput  `json:"ingredients"`
}

func attributeUpdate(in *[]nameInput) domain.AttributeUpdate {
	if in == nil {
		return domain.AttributeUpdate{}
	}
	names := make([]string, 0, len(*in))
	for _, n := range *in {
		names = append(names, *sanitize(&n.Name))
	}
	return domain.Replace(names...)
}

func (req recipeRequest) toInput() domain.RecipeInput {
	return domain.RecipeInput{
		Title:       sanitize(req.Title),
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Description: sanitizeRich(req.Description),
		Link:        sanitize(req.Link),
		Tags:        attributeUpdate(req.Tags),
		Ingredients: attributeUpdate(req.Ingredients),
	}
}

// recipeListItem — представление рецепта в списке: без description и image
type recipeListItem struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	TimeMinutes int                `json:"time_minutes"`
	Price       domain.Price       `json:"price"`
	Link        string             `json:"link"`
	Tags        []domain.Attribute `json:"tags"`
	Ingredients []domain.Attribute `json:"ingredients"`
}

// recipeDetail — полное представление рецепта
type recipeDetail struct {
	recipeListItem
	Description   string  `json:"description"`
	Image         *string `json:"image"`
	ImageBlurHash *string `json:"image_blurhash"`
}

type imageResponse struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

func nonNil(attrs []domain.Attribute) []domain.Attribute {
	if attrs == nil {
		return []domain.Attribute{}
	}
	return attrs
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func newRecipeListItem(r *domain.Recipe) recipeListItem {
	return recipeListItem{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        nonNil(r.Tags),
		Ingredients: nonNil(r.Ingredients),
	}
}

func newRecipeDetail(r *domain.Recipe, imageURL string) recipeDetail {
	return recipeDetail{
		recipeListItem: newRecipeListItem(r),
		Description:    r.Description,
		Image:          optional(imageURL),
		ImageBlurHash:  optional(r.ImageBlurHash),
	}
}

// parseIDs разбирает "1,2,3" в список id
func parseIDs(field, raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, domain.FieldError(field, "must be a comma separated list of ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- теги и ингредиенты ---

type attributeRequest struct {
	Name *string `json:"name"`
}

// --- админка ---

type adminLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type adminRecipeResponse struct {
	recipeDetail
	UserID int64 `json:"user_id"`
}

type adminAttributeResponse struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

func newAdminAttribute(a domain.Attribute) adminAttributeResponse {
	return adminAttributeResponse{ID: a.ID, UserID: a.UserID, Name: a.Name}
}
