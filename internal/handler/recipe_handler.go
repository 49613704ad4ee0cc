package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
)

// multipartMemory — сколько multipart-данных держать в памяти до сброса на диск
const multipartMemory = 8 << 20

// RecipeHandler — CRUD рецептов текущего пользователя
type RecipeHandler struct {
	recipes        usecase.RecipeUseCase
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewRecipeHandler создаёт новый экземпляр RecipeHandler.
func NewRecipeHandler(recipes usecase.RecipeUseCase, maxUploadBytes int64, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, maxUploadBytes: maxUploadBytes, logger: logger}
}

func (h *RecipeHandler) detail(recipe *domain.Recipe) recipeDetail {
	return newRecipeDetail(recipe, h.recipes.ImageURL(recipe))
}

// List — GET /recipes?tags=1,2&ingredients=3
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	tagIDs, err := parseIDs("tags", r.URL.Query().Get("tags"))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	ingredientIDs, err := parseIDs("ingredients", r.URL.Query().Get("ingredients"))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	recipes, err := h.recipes.ListRecipes(r.Context(), UserFromContext(r.Context()), domain.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	items := make([]recipeListItem, 0, len(recipes))
	for i := range recipes {
		items = append(items, newRecipeListItem(&recipes[i]))
	}
	respondWithJSON(w, http.StatusOK, items, h.logger)
}

// Create — POST /recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	recipe, err := h.recipes.CreateRecipe(r.Context(), UserFromContext(r.Context()), req.toInput())
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, h.detail(recipe), h.logger)
}

// Get — GET /recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	recipe, err := h.recipes.GetRecipe(r.Context(), UserFromContext(r.Context()), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, h.detail(recipe), h.logger)
}

// Update — PUT (полное) и PATCH (частичное) /recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	var req recipeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	partial := r.Method == http.MethodPatch
	recipe, err := h.recipes.UpdateRecipe(r.Context(), UserFromContext(r.Context()), id, req.toInput(), partial)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, h.detail(recipe), h.logger)
}

// Delete — DELETE /recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.recipes.DeleteRecipe(r.Context(), UserFromContext(r.Context()), id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage — POST /recipes/{id}/upload-image, multipart-поле image
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "uploaded file is too large", h.logger)
			return
		}
		respondWithDomainError(w, r, domain.FieldError("image", "no file was submitted"), h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithDomainError(w, r, domain.FieldError("image", "no file was submitted"), h.logger)
		return
	}
	defer file.Close()

	recipe, err := h.recipes.UploadImage(r.Context(), UserFromContext(r.Context()), id, header.Filename, file)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, imageResponse{ID: recipe.ID, Image: h.recipes.ImageURL(recipe)}, h.logger)
}
