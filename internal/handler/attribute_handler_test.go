package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeCreateIsGetOrCreate(t *testing.T) {
	for _, prefix := range []string{"/tags", "/ingredients"} {
		t.Run(prefix, func(t *testing.T) {
			srv := newTestServer(t)
			token := srv.login(t, "cook@example.com")

			rec := srv.do(t, request{method: http.MethodPost, path: prefix, token: token, body: map[string]string{"name": "Salt & pepper"}})
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			first := decode[domain.Attribute](t, rec)
			assert.Equal(t, "Salt & pepper", first.Name)

			rec = srv.do(t, request{method: http.MethodPost, path: prefix, token: token, body: map[string]string{"name": "Salt & pepper"}})
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, first.ID, decode[domain.Attribute](t, rec).ID)

			rec = srv.do(t, request{method: http.MethodPost, path: prefix, token: token, body: map[string]string{}})
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[errorResponse](t, rec).Details, "name")

			rec = srv.do(t, request{method: http.MethodPost, path: prefix, token: token, body: map[string]string{"name": "   "}})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAttributeCRUD(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "cook@example.com")

	create := func(name string) domain.Attribute {
		rec := srv.do(t, request{method: http.MethodPost, path: "/tags", token: token, body: map[string]string{"name": name}})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decode[domain.Attribute](t, rec)
	}
	breakfast := create("Breakfast")
	create("Dessert")
	path := fmt.Sprintf("/tags/%d", breakfast.ID)

	rec := srv.do(t, request{method: http.MethodGet, path: "/tags", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Attribute](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "Dessert", list[0].Name)

	rec = srv.do(t, request{method: http.MethodGet, path: path, token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Breakfast", decode[domain.Attribute](t, rec).Name)

	rec = srv.do(t, request{method: http.MethodPatch, path: path, token: token, body: map[string]string{"name": "Brunch"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Brunch", decode[domain.Attribute](t, rec).Name)

	rec = srv.do(t, request{method: http.MethodPatch, path: path, token: token, body: map[string]string{}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Brunch", decode[domain.Attribute](t, rec).Name)

	rec = srv.do(t, request{method: http.MethodPut, path: path, token: token, body: map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, request{method: http.MethodPut, path: path, token: token, body: map[string]string{"name": "Dessert"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Details, "name")

	other := srv.login(t, "other@example.com")
	rec = srv.do(t, request{method: http.MethodGet, path: path, token: other})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = srv.do(t, request{method: http.MethodGet, path: "/tags", token: other})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Attribute](t, rec))

	rec = srv.do(t, request{method: http.MethodDelete, path: path, token: token})
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = srv.do(t, request{method: http.MethodGet, path: path, token: token})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAttributeAssignedOnly(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "cook@example.com")

	srv.createRecipe(t, token, "Omelette", "Breakfast")
	srv.createRecipe(t, token, "Porridge", "Breakfast")
	rec := srv.do(t, request{method: http.MethodPost, path: "/tags", token: token, body: map[string]string{"name": "Unused"}})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, request{method: http.MethodGet, path: "/tags?assigned_only=1", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]domain.Attribute](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Breakfast", list[0].Name)

	rec = srv.do(t, request{method: http.MethodGet, path: "/tags?assigned_only=0", token: token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Attribute](t, rec), 2)

	rec = srv.do(t, request{method: http.MethodGet, path: "/tags?assigned_only=yes", token: token})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Details, "assigned_only")
}
