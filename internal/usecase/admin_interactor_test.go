package usecase

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/adapter/storage/local"
	"github.com/GoArmGo/RecipeApp/internal/core/ports/portstest"
	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/GoArmGo/RecipeApp/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdmin(t *testing.T) (AdminUseCase, *portstest.AdminStorage, *local.Storage) {
	t.Helper()
	log := logger.Discard()
	files, err := local.NewStorage(filepath.Join(t.TempDir(), "media"), "/media/", log)
	require.NoError(t, err)
	store := portstest.NewAdminStorage()
	return NewAdminUseCase(store, files, validation.New(), log), store, files
}

func TestAdminCreateUser(t *testing.T) {
	admin, _, _ := newAdmin(t)
	ctx := context.Background()

	user, err := admin.CreateUser(ctx, AdminUserInput{
		Email:     "Staff@EXAMPLE.com",
		Name:      "Staff",
		Password1: "secret123",
		Password2: "secret123",
		IsStaff:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Staff@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.True(t, user.IsStaff)
	assert.True(t, domain.CheckPassword(user, "secret123"))

	_, err = admin.CreateUser(ctx, AdminUserInput{Email: "x@example.com", Password1: "a", Password2: "b"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.(*domain.Error).Details, "password2")

	users, err := admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestAdminLogin(t *testing.T) {
	admin, _, _ := newAdmin(t)
	ctx := context.Background()

	staff, err := admin.CreateUser(ctx, AdminUserInput{Email: "admin@example.com", Password1: "pw12345", Password2: "pw12345", IsSuperuser: true})
	require.NoError(t, err)
	_, err = admin.CreateUser(ctx, AdminUserInput{Email: "user@example.com", Password1: "pw12345", Password2: "pw12345"})
	require.NoError(t, err)

	got, err := admin.Login(ctx, "admin@example.com", "pw12345")
	require.NoError(t, err)
	assert.Equal(t, staff.ID, got.ID)

	_, err = admin.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = admin.Login(ctx, "user@example.com", "pw12345")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// снятие прав закрывает доступ для уже открытой сессии
	_, err = admin.UpdateUser(ctx, staff.ID, AdminUserPatch{IsSuperuser: ptr(false)})
	require.NoError(t, err)
	_, err = admin.CurrentAdmin(ctx, staff.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = admin.CurrentAdmin(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAdminUpdateUser(t *testing.T) {
	admin, _, _ := newAdmin(t)
	ctx := context.Background()

	user, err := admin.CreateUser(ctx, AdminUserInput{Email: "u@example.com", Password1: "pw12345", Password2: "pw12345"})
	require.NoError(t, err)

	updated, err := admin.UpdateUser(ctx, user.ID, AdminUserPatch{
		Name:     ptr("Renamed"),
		IsActive: ptr(false),
		IsStaff:  ptr(true),
		Password: ptr("changed1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.IsStaff)
	assert.True(t, domain.CheckPassword(updated, "changed1"))

	_, err = admin.UpdateUser(ctx, user.ID, AdminUserPatch{Email: ptr("not-an-email")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = admin.UpdateUser(ctx, 999, AdminUserPatch{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminRecipesAndAttributes(t *testing.T) {
	admin, store, files := newAdmin(t)
	ctx := context.Background()

	_, err := files.UploadFile(ctx, "uploads/recipe/x.png", strings.NewReader("img"), "image/png")
	require.NoError(t, err)
	recipe := store.AddRecipe(domain.Recipe{UserID: 1, Title: "Soup", TimeMinutes: 5, Price: 100, Image: "uploads/recipe/x.png"})

	updated, err := admin.UpdateRecipe(ctx, recipe.ID, domain.RecipeInput{Title: ptr("Better soup")})
	require.NoError(t, err)
	assert.Equal(t, "Better soup", updated.Title)
	assert.Equal(t, int64(1), updated.UserID)

	_, err = admin.UpdateRecipe(ctx, recipe.ID, domain.RecipeInput{Title: ptr("")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, admin.DeleteRecipe(ctx, recipe.ID))
	p, err := files.Path("uploads/recipe/x.png")
	require.NoError(t, err)
	assert.NoFileExists(t, p)
	assert.ErrorIs(t, admin.DeleteRecipe(ctx, recipe.ID), domain.ErrNotFound)

	tag := store.AddAttribute(domain.KindTag, domain.Attribute{UserID: 1, Name: "Vegan"})
	store.AddAttribute(domain.KindTag, domain.Attribute{UserID: 1, Name: "Keto"})

	_, err = admin.RenameAttribute(ctx, domain.KindTag, tag.ID, "Keto")
	assert.ErrorIs(t, err, domain.ErrValidation)

	renamed, err := admin.RenameAttribute(ctx, domain.KindTag, tag.ID, "Plant based")
	require.NoError(t, err)
	assert.Equal(t, "Plant based", renamed.Name)

	require.NoError(t, admin.DeleteAttribute(ctx, domain.KindTag, tag.ID))
	tags, err := admin.ListAttributes(ctx, domain.KindTag)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}
