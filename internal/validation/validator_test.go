package validation

import (
	"errors"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerRequest struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=5"`
	Name     string   `json:"name" validate:"max=10"`
	Title    *string  `json:"title" validate:"omitnil,notblank"`
	Tags     []string `json:"tags" validate:"dive,notblank,max=3"`
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeValidation, de.Code)
	return de.Details
}

func TestValidateOK(t *testing.T) {
	v := New()
	title := "Soup"
	err := v.Validate(registerRequest{Email: "a@b.io", Password: "secret", Title: &title, Tags: []string{"abc"}})
	assert.NoError(t, err)
}

func TestValidateUsesJSONNames(t *testing.T) {
	v := New()
	blank := "   "
	err := v.Validate(registerRequest{Email: "nope", Password: "pw", Name: "much too long name", Title: &blank, Tags: []string{"ok", "toolong"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	details := detailsOf(t, err)
	assert.Equal(t, "enter a valid email address", details["email"])
	assert.Equal(t, "ensure this field has at least 5 characters", details["password"])
	assert.Equal(t, "ensure this field has no more than 10 characters", details["name"])
	assert.Equal(t, "this field may not be blank", details["title"])
	assert.Contains(t, details, "tags[1]")
}

func TestValidateRequired(t *testing.T) {
	details := detailsOf(t, New().Validate(registerRequest{}))
	assert.Equal(t, "this field is required", details["email"])
	assert.Equal(t, "this field is required", details["password"])
}

func TestMerge(t *testing.T) {
	assert.NoError(t, Merge(nil, nil))

	merged := Merge(domain.FieldError("title", "a"), nil, domain.FieldError("price", "b"), domain.FieldError("title", "c"))
	details := detailsOf(t, merged)
	assert.Equal(t, map[string]string{"title": "a", "price": "b"}, details)

	other := errors.New("boom")
	assert.Equal(t, other, Merge(domain.FieldError("x", "y"), other))
}
