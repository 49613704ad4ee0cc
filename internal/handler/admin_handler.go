package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/GoArmGo/RecipeApp/internal/validation"
	"github.com/gorilla/sessions"
)

const (
	// AdminSessionName — имя cookie административной сессии
	AdminSessionName = "recipeapp_admin"
	sessionUserIDKey = "user_id"
)

// NewSessionStore создает хранилище cookie-сессий админки
func NewSessionStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/admin",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// AdminHandler — административный интерфейс: все записи всех пользователей
type AdminHandler struct {
	admin     usecase.AdminUseCase
	imageURL  func(*domain.Recipe) string
	sessions  sessions.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAdminHandler создаёт новый экземпляр AdminHandler.
// imageURL строит публичный адрес изображения рецепта.
func NewAdminHandler(admin usecase.AdminUseCase, imageURL func(*domain.Recipe) string, store sessions.Store, validator *validation.Validator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		imageURL:  imageURL,
		sessions:  store,
		validator: validator,
		logger:    logger,
	}
}

// Login — POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	user, err := h.admin.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	// Ошибку декодирования старой cookie игнорируем: сессия все равно перезаписывается
	session, _ := h.sessions.Get(r, AdminSessionName)
	session.Values[sessionUserIDKey] = user.ID
	if err := session.Save(r, w); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// Logout — POST /admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, AdminSessionName)
	delete(session.Values, sessionUserIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequireAdmin пропускает только запросы с сессией действующего сотрудника.
// Права перепроверяются на каждом запросе.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.sessions.Get(r, AdminSessionName)
		if err != nil {
			h.logger.Debug("invalid admin session cookie", "error", err)
		}
		userID, ok := session.Values[sessionUserIDKey].(int64)
		if !ok {
			respondWithDomainError(w, r, domain.Unauthorized("authentication credentials were not provided"), h.logger)
			return
		}

		user, err := h.admin.CurrentAdmin(r.Context(), userID)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// --- пользователи ---

// ListUsers — GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	respondWithJSON(w, http.StatusOK, users, h.logger)
}

// CreateUser — POST /admin/users
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in usecase.AdminUserInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	in.Name = *sanitize(&in.Name)

	user, err := h.admin.CreateUser(r.Context(), in)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, user, h.logger)
}

// GetUser — GET /admin/users/{id}
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	user, err := h.admin.GetUser(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// UpdateUser — PATCH /admin/users/{id}
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	var patch usecase.AdminUserPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	patch.Name = sanitize(patch.Name)

	user, err := h.admin.UpdateUser(r.Context(), id, patch)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, user, h.logger)
}

// --- рецепты ---

func (h *AdminHandler) recipeResponse(recipe *domain.Recipe) adminRecipeResponse {
	return adminRecipeResponse{
		recipeDetail: newRecipeDetail(recipe, h.imageURL(recipe)),
		UserID:       recipe.UserID,
	}
}

// ListRecipes — GET /admin/recipes
func (h *AdminHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.admin.ListRecipes(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	items := make([]adminRecipeResponse, 0, len(recipes))
	for i := range recipes {
		items = append(items, h.recipeResponse(&recipes[i]))
	}
	respondWithJSON(w, http.StatusOK, items, h.logger)
}

// GetRecipe — GET /admin/recipes/{id}
func (h *AdminHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	recipe, err := h.admin.GetRecipe(r.Context(), id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, h.recipeResponse(recipe), h.logger)
}

// UpdateRecipe — PATCH /admin/recipes/{id}; tags и ingredients игнорируются
func (h *AdminHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
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

	recipe, err := h.admin.UpdateRecipe(r.Context(), id, req.toInput())
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, h.recipeResponse(recipe), h.logger)
}

// DeleteRecipe — DELETE /admin/recipes/{id}
func (h *AdminHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.admin.DeleteRecipe(r.Context(), id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- теги и ингредиенты ---

// AttributeRoutes возвращает обработчики раздела для тегов или ингредиентов
func (h *AdminHandler) AttributeRoutes(kind domain.AttributeKind) (list, get, update, remove http.HandlerFunc) {
	list = func(w http.ResponseWriter, r *http.Request) {
		items, err := h.admin.ListAttributes(r.Context(), kind)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		out := make([]adminAttributeResponse, 0, len(items))
		for _, a := range items {
			out = append(out, newAdminAttribute(a))
		}
		respondWithJSON(w, http.StatusOK, out, h.logger)
	}

	get = func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		item, err := h.admin.GetAttribute(r.Context(), kind, id)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		respondWithJSON(w, http.StatusOK, newAdminAttribute(*item), h.logger)
	}

	update = func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		var req attributeRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		var item *domain.Attribute
		if req.Name == nil {
			item, err = h.admin.GetAttribute(r.Context(), kind, id)
		} else {
			item, err = h.admin.RenameAttribute(r.Context(), kind, id, *sanitize(req.Name))
		}
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		respondWithJSON(w, http.StatusOK, newAdminAttribute(*item), h.logger)
	}

	remove = func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		if err := h.admin.DeleteAttribute(r.Context(), kind, id); err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
	return list, get, update, remove
}
