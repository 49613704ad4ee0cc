package usecase

import (
	"context"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAttributeIsGetOrCreate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "attr@example.com")

	first, created, err := e.attributes.CreateAttribute(ctx, user, domain.KindIngredient, "  Kale ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Kale", first.Name)

	second, created, err := e.attributes.CreateAttribute(ctx, user, domain.KindIngredient, "Kale")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	_, _, err = e.attributes.CreateAttribute(ctx, user, domain.KindIngredient, " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRenameAttribute(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "rename@example.com")
	other := e.user(t, "rename-other@example.com")

	tag, _, err := e.attributes.CreateAttribute(ctx, user, domain.KindTag, "After Dinner")
	require.NoError(t, err)

	renamed, err := e.attributes.RenameAttribute(ctx, user, domain.KindTag, tag.ID, "Dessert")
	require.NoError(t, err)
	assert.Equal(t, "Dessert", renamed.Name)

	_, err = e.attributes.RenameAttribute(ctx, other, domain.KindTag, tag.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = e.attributes.RenameAttribute(ctx, user, domain.KindTag, tag.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := e.attributes.GetAttribute(ctx, user, domain.KindTag, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dessert", got.Name)
}

func TestDeleteAttribute(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	user := e.user(t, "delete@example.com")
	other := e.user(t, "delete-other@example.com")

	tag, _, err := e.attributes.CreateAttribute(ctx, user, domain.KindTag, "Breakfast")
	require.NoError(t, err)

	assert.ErrorIs(t, e.attributes.DeleteAttribute(ctx, other, domain.KindTag, tag.ID), domain.ErrNotFound)
	require.NoError(t, e.attributes.DeleteAttribute(ctx, user, domain.KindTag, tag.ID))

	tags, err := e.attributes.ListAttributes(ctx, user, domain.KindTag, domain.AttributeFilter{})
	require.NoError(t, err)
	assert.Empty(t, tags)
}
