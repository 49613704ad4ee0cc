package domain

// Recipe представляет рецепт пользователя,
// соответствует таблице recipes в бд
type Recipe struct {
	ID            int64       `json:"id" db:"id"`
	UserID        int64       `json:"-" db:"user_id"`
	Title         string      `json:"title" db:"title"`
	TimeMinutes   int         `json:"time_minutes" db:"time_minutes"`
	Price         Price       `json:"price" db:"price"`
	Description   string      `json:"description" db:"description"`
	Link          string      `json:"link" db:"link"`
	Image         string      `json:"-" db:"image"` // ключ файла в хранилище, пустая строка, если изображения нет
	ImageBlurHash string      `json:"-" db:"image_blurhash"`
	Tags          []Attribute `json:"tags" db:"-"`
	Ingredients   []Attribute `json:"ingredients" db:"-"`
}

func (r Recipe) String() string {
	return r.Title
}

// AttributeKind различает теги и ингредиенты: у них одинаковая форма
// и одинаковые правила владения.
type AttributeKind string

const (
	KindTag        AttributeKind = "tag"
	KindIngredient AttributeKind = "ingredient"
)

// Attribute — тег или ингредиент, принадлежащий пользователю
type Attribute struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"-" db:"user_id"`
	Name   string `json:"name" db:"name"`
}

func (a Attribute) String() string {
	return a.Name
}

// AttributeUpdate — изменение набора тегов/ингредиентов рецепта.
// Set=false: поле не передано, связи не трогаем.
// Set=true и пустой Names: очистить связи.
// Set=true и непустой Names: полная замена.
type AttributeUpdate struct {
	Set   bool
	Names []string
}

// Replace создает AttributeUpdate с полной заменой набора
func Replace(names ...string) AttributeUpdate {
	if names == nil {
		names = []string{}
	}
	return AttributeUpdate{Set: true, Names: names}
}

// UniqueNames возвращает имена без повторов, сохраняя порядок
func (u AttributeUpdate) UniqueNames() []string {
	seen := make(map[string]struct{}, len(u.Names))
	out := make([]string, 0, len(u.Names))
	for _, n := range u.Names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// RecipeInput — значения полей рецепта при создании или изменении.
// nil означает "поле не передано".
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *Price
	Description *string
	Link        *string
	Tags        AttributeUpdate
	Ingredients AttributeUpdate
}

// Apply переносит переданные поля в рецепт
func (in RecipeInput) Apply(r *Recipe) {
	if in.Title != nil {
		r.Title = *in.Title
	}
	if in.TimeMinutes != nil {
		r.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		r.Price = *in.Price
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Link != nil {
		r.Link = *in.Link
	}
}

// RecipeFilter — фильтры списка рецептов.
// Внутри одного списка id действует ИЛИ, между списками И.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// AttributeFilter — фильтры списка тегов/ингредиентов
type AttributeFilter struct {
	AssignedOnly bool
}
