package usecase

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/messaging/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attributeNames(attrs []domain.Attribute) []string {
	out := make([]string, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a.Name)
	}
	return out
}

func TestCreateRecipeRequiresFields(t *testing.T) {
	e := newEnv(t)
	user := e.user(t, "cook@example.com")

	_, err := e.recipes.CreateRecipe(context.Background(), user, domain.RecipeInput{Title: ptr("Only title")})
	require.ErrorIs(t, err, domain.ErrValidation)

	details := err.(*domain.Error).Details
	assert.Contains(t, details, "time_minutes")
	assert.Contains(t, details, "price")
	assert.NotContains(t, details, "title")
}

func TestCreateRecipeValidatesFormat(t *testing.T) {
	e := newEnv(t)
	user := e.user(t, "format@example.com")

	in := sampleInput("  ")
	in.TimeMinutes = ptr(-1)
	in.Link = ptr(strings.Repeat("x", 256))
	in.Tags = domain.Replace("ok", "")

	_, err := e.recipes.CreateRecipe(context.Background(), user, in)
	require.ErrorIs(t, err, domain.ErrValidation)

	details := err.(*domain.Error).Details
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "time_minutes")
	assert.Contains(t, details, "link")
	assert.Contains(t, details, "tags[1]")
}

func TestCreateRecipeTimeMinutesFitsColumn(t *testing.T) {
	e := newEnv(t)
	user := e.user(t, "long-cook@example.com")

	in := sampleInput("Slow roast")
	in.TimeMinutes = ptr(3000000000)
	_, err := e.recipes.CreateRecipe(context.Background(), user, in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.(*domain.Error).Details, "time_minutes")

	in.TimeMinutes = ptr(2147483647)
	_, err = e.recipes.CreateRecipe(context.Background(), user, in)
	require.NoError(t, err)
}

func TestCreateRecipeWithNewAndExistingTags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "tags@example.com")

	indian, created, err := e.attributes.CreateAttribute(ctx, user, domain.KindTag, "Indian")
	require.NoError(t, err)
	require.True(t, created)

	in := sampleInput("Pongal")
	in.Tags = domain.Replace("Indian", "Breakfast")
	in.Ingredients = domain.Replace("Cauliflower", "Salt")

	recipe, err := e.recipes.CreateRecipe(ctx, user, in)
	require.NoError(t, err)

	assert.Equal(t, user.ID, recipe.UserID)
	assert.Equal(t, []string{"Indian", "Breakfast"}, attributeNames(recipe.Tags))
	assert.Equal(t, indian.ID, recipe.Tags[0].ID)
	assert.Equal(t, []string{"Cauliflower", "Salt"}, attributeNames(recipe.Ingredients))

	tags, err := e.attributes.ListAttributes(ctx, user, domain.KindTag, domain.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	assert.Equal(t, []string{payloads.RecipeCreated}, e.events.Events())
}

func TestUpdateRecipePartialAndFull(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "update@example.com")

	in := sampleInput("Sample recipe title")
	in.Link = ptr("https://example.com/recipe.pdf")
	in.Tags = domain.Replace("Breakfast")
	recipe, err := e.recipes.CreateRecipe(ctx, user, in)
	require.NoError(t, err)

	// PATCH: только title, остальное и теги не меняются
	patched, err := e.recipes.UpdateRecipe(ctx, user, recipe.ID, domain.RecipeInput{Title: ptr("New recipe title")}, true)
	require.NoError(t, err)
	assert.Equal(t, "New recipe title", patched.Title)
	assert.Equal(t, "https://example.com/recipe.pdf", patched.Link)
	assert.Equal(t, []string{"Breakfast"}, attributeNames(patched.Tags))

	// PUT без обязательных полей
	_, err = e.recipes.UpdateRecipe(ctx, user, recipe.ID, domain.RecipeInput{Title: ptr("x")}, false)
	assert.ErrorIs(t, err, domain.ErrValidation)

	full := sampleInput("Full update")
	full.Description = ptr("New description")
	full.Tags = domain.Replace("Lunch")
	updated, err := e.recipes.UpdateRecipe(ctx, user, recipe.ID, full, false)
	require.NoError(t, err)
	assert.Equal(t, "Full update", updated.Title)
	assert.Equal(t, "New description", updated.Description)
	assert.Equal(t, []string{"Lunch"}, attributeNames(updated.Tags))

	cleared, err := e.recipes.UpdateRecipe(ctx, user, recipe.ID, domain.RecipeInput{Tags: domain.Replace()}, true)
	require.NoError(t, err)
	assert.Empty(t, cleared.Tags)
}

func TestRecipeOtherUserNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.user(t, "owner@example.com")
	other := e.user(t, "other@example.com")

	recipe, err := e.recipes.CreateRecipe(ctx, owner, sampleInput("Mine"))
	require.NoError(t, err)

	_, err = e.recipes.GetRecipe(ctx, other, recipe.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.recipes.UpdateRecipe(ctx, other, recipe.ID, domain.RecipeInput{Title: ptr("Stolen")}, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, e.recipes.DeleteRecipe(ctx, other, recipe.ID), domain.ErrNotFound)

	_, err = e.recipes.UploadImage(ctx, other, recipe.ID, "a.png", bytes.NewReader(pngBytes(t, 4, 4)))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := e.recipes.GetRecipe(ctx, owner, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)
}

func TestUploadImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "image@example.com")
	recipe, err := e.recipes.CreateRecipe(ctx, user, sampleInput("Photo"))
	require.NoError(t, err)

	updated, err := e.recipes.UploadImage(ctx, user, recipe.ID, "photo.PNG", bytes.NewReader(pngBytes(t, 100, 80)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(updated.Image, "uploads/recipe/"))
	assert.True(t, strings.HasSuffix(updated.Image, ".png"))
	assert.NotEmpty(t, updated.ImageBlurHash)
	assert.Equal(t, "/media/"+updated.Image, e.recipes.ImageURL(updated))

	first, err := e.files.Path(updated.Image)
	require.NoError(t, err)
	assert.FileExists(t, first)

	// новое изображение заменяет и удаляет старое
	replaced, err := e.recipes.UploadImage(ctx, user, recipe.ID, "", bytes.NewReader(pngBytes(t, 8, 8)))
	require.NoError(t, err)
	assert.NotEqual(t, updated.Image, replaced.Image)
	assert.True(t, strings.HasSuffix(replaced.Image, ".png"))
	assert.NoFileExists(t, first)

	second, err := e.files.Path(replaced.Image)
	require.NoError(t, err)
	require.NoError(t, e.recipes.DeleteRecipe(ctx, user, recipe.ID))
	_, err = os.Stat(second)
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, []string{
		payloads.RecipeCreated,
		payloads.RecipeImageUploaded,
		payloads.RecipeImageUploaded,
		payloads.RecipeDeleted,
	}, e.events.Events())
}

func TestUploadInvalidImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "bad-image@example.com")
	recipe, err := e.recipes.CreateRecipe(ctx, user, sampleInput("Photo"))
	require.NoError(t, err)

	_, err = e.recipes.UploadImage(ctx, user, recipe.ID, "file.jpg", strings.NewReader("notimage"))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.(*domain.Error).Details, "image")

	_, err = e.recipes.UploadImage(ctx, user, recipe.ID, "file.jpg", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := e.recipes.GetRecipe(ctx, user, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Image)
	assert.Empty(t, e.recipes.ImageURL(got))
}

func TestUploadImageRejectsHugeDimensions(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "huge-image@example.com")
	recipe, err := e.recipes.CreateRecipe(ctx, user, sampleInput("Photo"))
	require.NoError(t, err)

	// заголовок GIF 65535x65535 без глобальной палитры и без данных кадра
	header := []byte("GIF89a\xff\xff\xff\xff\x00\x00\x00")
	_, err = e.recipes.UploadImage(ctx, user, recipe.ID, "huge.gif", bytes.NewReader(header))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.(*domain.Error).Details, "image")

	got, err := e.recipes.GetRecipe(ctx, user, recipe.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Image)
}

func TestRecipeImageKey(t *testing.T) {
	key := RecipeImageKey("example.jpg", "jpeg")
	assert.True(t, strings.HasPrefix(key, "uploads/recipe/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Len(t, strings.TrimSuffix(strings.TrimPrefix(key, "uploads/recipe/"), ".jpg"), 36)

	assert.True(t, strings.HasSuffix(RecipeImageKey("noext", "gif"), ".gif"))
	assert.NotEqual(t, RecipeImageKey("a.png", "png"), RecipeImageKey("a.png", "png"))
}
