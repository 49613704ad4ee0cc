package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/database/dbtest"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db         *sqlx.DB
	users      *UserStorage
	recipes    *RecipeStorage
	attributes *AttributeStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	log := logger.Discard()
	return &fixture{
		db:         db,
		users:      NewUserStorage(db, log),
		recipes:    NewRecipeStorage(db, log),
		attributes: NewAttributeStorage(db, log),
	}
}

func (f *fixture) user(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "!", IsActive: true}
	require.NoError(t, f.users.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) recipe(t *testing.T, userID int64, title string, tags, ingredients domain.AttributeUpdate) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{UserID: userID, Title: title, TimeMinutes: 5, Price: 550}
	require.NoError(t, f.recipes.CreateRecipe(context.Background(), r, tags, ingredients))
	return r
}

func names(attrs []domain.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}

func titles(recipes []domain.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Title)
	}
	return out
}

func TestUserStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	u := f.user(t, "test@example.com")
	assert.NotZero(t, u.ID)

	dup := &domain.User{Email: "test@example.com", PasswordHash: "!"}
	err := f.users.CreateUser(ctx, dup)
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.users.GetUserByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsActive)
	assert.False(t, got.IsStaff)

	_, err = f.users.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got.Name = "New Name"
	require.NoError(t, f.users.UpdateUser(ctx, got))
	got, err = f.users.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)

	require.NoError(t, f.users.TouchLastLogin(ctx, u.ID, time.Now()))
}

func TestGetOrCreateTokenIsStable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "token@example.com")

	first, err := f.users.GetOrCreateToken(ctx, u.ID, "key-one")
	require.NoError(t, err)
	assert.Equal(t, "key-one", first.Key)

	second, err := f.users.GetOrCreateToken(ctx, u.ID, "key-two")
	require.NoError(t, err)
	assert.Equal(t, "key-one", second.Key)

	owner, err := f.users.GetUserByToken(ctx, "key-one")
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner.ID)

	_, err = f.users.GetUserByToken(ctx, "key-two")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateRecipeResolvesAttributes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "cook@example.com")

	existing, created, err := f.attributes.GetOrCreateAttribute(ctx, domain.KindTag, u.ID, "Indian")
	require.NoError(t, err)
	assert.True(t, created)

	r := f.recipe(t, u.ID, "Curry",
		domain.Replace("Indian", "Breakfast", "Indian"),
		domain.Replace("Salt"))

	assert.Equal(t, []string{"Indian", "Breakfast"}, names(r.Tags))
	assert.Equal(t, existing.ID, r.Tags[0].ID)
	assert.Equal(t, []string{"Salt"}, names(r.Ingredients))

	tags, err := f.attributes.ListAttributes(ctx, domain.KindTag, u.ID, domain.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	got, err := f.recipes.GetRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Price(550), got.Price)
	assert.Equal(t, []string{"Indian", "Breakfast"}, names(got.Tags))
}

func TestCreateRecipeWithoutAttributes(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "plain@example.com")

	r := f.recipe(t, u.ID, "Toast", domain.AttributeUpdate{}, domain.Replace())
	assert.NotNil(t, r.Tags)
	assert.Empty(t, r.Tags)
	assert.Empty(t, r.Ingredients)
}

func TestUpdateRecipeTriState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "tri@example.com")
	r := f.recipe(t, u.ID, "Soup", domain.Replace("Dinner"), domain.Replace("Water"))

	// поле не передано: связи не меняются
	r.Title = "Hot Soup"
	require.NoError(t, f.recipes.UpdateRecipe(ctx, r, domain.AttributeUpdate{}, domain.AttributeUpdate{}))
	assert.Equal(t, []string{"Dinner"}, names(r.Tags))
	assert.Equal(t, []string{"Water"}, names(r.Ingredients))

	// полная замена
	require.NoError(t, f.recipes.UpdateRecipe(ctx, r, domain.Replace("Lunch"), domain.AttributeUpdate{}))
	assert.Equal(t, []string{"Lunch"}, names(r.Tags))

	// пустой список очищает связи
	require.NoError(t, f.recipes.UpdateRecipe(ctx, r, domain.Replace(), domain.Replace()))
	got, err := f.recipes.GetRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hot Soup", got.Title)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.Ingredients)

	// старые теги остаются у пользователя
	tags, err := f.attributes.ListAttributes(ctx, domain.KindTag, u.ID, domain.AttributeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Lunch", "Dinner"}, names(tags))
}

func TestRecipesAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")

	r := f.recipe(t, owner.ID, "Private", domain.Replace("Secret"), domain.AttributeUpdate{})
	f.recipe(t, other.ID, "Theirs", domain.Replace("Secret"), domain.AttributeUpdate{})

	_, err := f.recipes.GetRecipe(ctx, other.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stolen := *r
	stolen.UserID = other.ID
	err = f.recipes.UpdateRecipe(ctx, &stolen, domain.AttributeUpdate{}, domain.AttributeUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.recipes.DeleteRecipe(ctx, other.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.recipes.ListRecipes(ctx, owner.ID, domain.RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Private"}, titles(list))

	// у каждого пользователя свой тег с одинаковым именем
	mine, err := f.attributes.ListAttributes(ctx, domain.KindTag, owner.ID, domain.AttributeFilter{})
	require.NoError(t, err)
	theirs, err := f.attributes.ListAttributes(ctx, domain.KindTag, other.ID, domain.AttributeFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, theirs, 1)
	assert.NotEqual(t, mine[0].ID, theirs[0].ID)
}

func TestListRecipesFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "filter@example.com")

	r1 := f.recipe(t, u.ID, "Thai Curry", domain.Replace("Vegan", "Spicy"), domain.Replace("Tofu"))
	r2 := f.recipe(t, u.ID, "Tahini", domain.Replace("Vegetarian"), domain.Replace("Sesame"))
	f.recipe(t, u.ID, "Fish and chips", domain.AttributeUpdate{}, domain.Replace("Fish"))

	vegan := r1.Tags[0].ID
	spicy := r1.Tags[1].ID
	vegetarian := r2.Tags[0].ID
	tofu := r1.Ingredients[0].ID

	all, err := f.recipes.ListRecipes(ctx, u.ID, domain.RecipeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fish and chips", "Tahini", "Thai Curry"}, titles(all))

	// ИЛИ внутри фильтра, без дублей при совпадении нескольких тегов
	byTags, err := f.recipes.ListRecipes(ctx, u.ID, domain.RecipeFilter{TagIDs: []int64{vegan, spicy, vegetarian}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tahini", "Thai Curry"}, titles(byTags))

	// И между фильтрами
	both, err := f.recipes.ListRecipes(ctx, u.ID, domain.RecipeFilter{
		TagIDs:        []int64{vegan, vegetarian},
		IngredientIDs: []int64{tofu},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Thai Curry"}, titles(both))

	none, err := f.recipes.ListRecipes(ctx, u.ID, domain.RecipeFilter{TagIDs: []int64{9999}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListAttributesAssignedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "assigned@example.com")

	f.recipe(t, u.ID, "Eggs", domain.AttributeUpdate{}, domain.Replace("Eggs", "Butter"))
	f.recipe(t, u.ID, "Omelette", domain.AttributeUpdate{}, domain.Replace("Eggs"))
	_, _, err := f.attributes.GetOrCreateAttribute(ctx, domain.KindIngredient, u.ID, "Kale")
	require.NoError(t, err)

	all, err := f.attributes.ListAttributes(ctx, domain.KindIngredient, u.ID, domain.AttributeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kale", "Eggs", "Butter"}, names(all))

	assigned, err := f.attributes.ListAttributes(ctx, domain.KindIngredient, u.ID, domain.AttributeFilter{AssignedOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Eggs", "Butter"}, names(assigned))
}

func TestAttributeCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "attr@example.com")
	other := f.user(t, "attr-other@example.com")

	a, created, err := f.attributes.GetOrCreateAttribute(ctx, domain.KindTag, u.ID, "Dessert")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := f.attributes.GetOrCreateAttribute(ctx, domain.KindTag, u.ID, "Dessert")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)

	_, err = f.attributes.GetAttribute(ctx, domain.KindTag, other.ID, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	renamed, err := f.attributes.RenameAttribute(ctx, domain.KindTag, u.ID, a.ID, "Sweets")
	require.NoError(t, err)
	assert.Equal(t, "Sweets", renamed.Name)

	_, _, err = f.attributes.GetOrCreateAttribute(ctx, domain.KindTag, u.ID, "Cake")
	require.NoError(t, err)
	_, err = f.attributes.RenameAttribute(ctx, domain.KindTag, u.ID, a.ID, "Cake")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.attributes.RenameAttribute(ctx, domain.KindTag, other.ID, a.ID, "Stolen")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	r := f.recipe(t, u.ID, "Pie", domain.Replace("Sweets"), domain.AttributeUpdate{})
	require.NoError(t, f.attributes.DeleteAttribute(ctx, domain.KindTag, u.ID, a.ID))
	got, err := f.recipes.GetRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	assert.ErrorIs(t, f.attributes.DeleteAttribute(ctx, domain.KindTag, u.ID, a.ID), domain.ErrNotFound)
}

func TestGetOrCreateAttributeConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "race@example.com")
	f.db.SetMaxOpenConns(8)

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = make(map[int64]struct{})
		created int
		errs    []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, isNew, err := f.attributes.GetOrCreateAttribute(ctx, domain.KindTag, u.ID, "Vegan")
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			ids[a.ID] = struct{}{}
			if isNew {
				created++
			}
		}()
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Len(t, ids, 1)
	assert.Equal(t, 1, created)

	var rows int
	require.NoError(t, f.db.Get(&rows, `SELECT COUNT(*) FROM tags WHERE user_id = ? AND name = ?`, u.ID, "Vegan"))
	assert.Equal(t, 1, rows)
}

func TestRecipeImageAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "image@example.com")
	r := f.recipe(t, u.ID, "Photo", domain.Replace("Snap"), domain.AttributeUpdate{})

	prev, err := f.recipes.SetRecipeImage(ctx, u.ID, r.ID, "uploads/recipe/a.jpg", "LEHV6nWB2yk8")
	require.NoError(t, err)
	assert.Empty(t, prev)

	prev, err = f.recipes.SetRecipeImage(ctx, u.ID, r.ID, "uploads/recipe/b.jpg", "LEHV6nWB2yk8")
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/a.jpg", prev)

	got, err := f.recipes.GetRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/b.jpg", got.Image)
	assert.Equal(t, "LEHV6nWB2yk8", got.ImageBlurHash)

	key, err := f.recipes.DeleteRecipe(ctx, u.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/b.jpg", key)

	_, err = f.recipes.GetRecipe(ctx, u.ID, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// тег переживает удаление рецепта
	tags, err := f.attributes.ListAttributes(ctx, domain.KindTag, u.ID, domain.AttributeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Snap"}, names(tags))
}

func TestPriceRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "price@example.com")

	for _, p := range []domain.Price{0, 5, 550, 99999} {
		r := &domain.Recipe{UserID: u.ID, Title: "p", TimeMinutes: 1, Price: p}
		require.NoError(t, f.recipes.CreateRecipe(ctx, r, domain.AttributeUpdate{}, domain.AttributeUpdate{}))
		got, err := f.recipes.GetRecipe(ctx, u.ID, r.ID)
		require.NoError(t, err)
		assert.Equal(t, p, got.Price)
	}
}
