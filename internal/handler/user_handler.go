package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/GoArmGo/RecipeApp/internal/validation"
)

// UserHandler — регистрация, выдача токенов и собственный профиль
type UserHandler struct {
	users     usecase.UserUseCase
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserHandler создаёт новый экземпляр UserHandler.
func NewUserHandler(users usecase.UserUseCase, validator *validation.Validator, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, validator: validator, logger: logger}
}

// Register — POST /users/create
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Email, req.Password, domain.UserFields{Name: *sanitize(&req.Name)})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, newUserResponse(user), h.logger)
}

// ObtainToken — POST /users/token
func (h *UserHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	token, err := h.users.ObtainToken(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, tokenResponse{Token: token.Key}, h.logger)
}

// Me — GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newUserResponse(UserFromContext(r.Context())), h.logger)
}

// UpdateMe — PUT/PATCH /users/me; PUT требует все поля
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	var required error
	if r.Method == http.MethodPut {
		missing := map[string]string{}
		if req.Email == nil {
			missing["email"] = "this field is required"
		}
		if req.Name == nil {
			missing["name"] = "this field is required"
		}
		if req.Password == nil {
			missing["password"] = "this field is required"
		}
		if len(missing) > 0 {
			required = domain.Validation("validation failed", missing)
		}
	}
	if err := validation.Merge(required, h.validator.Validate(req)); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), UserFromContext(r.Context()), usecase.ProfilePatch{
		Email:    req.Email,
		Name:     sanitize(req.Name),
		Password: req.Password,
	})
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, newUserResponse(user), h.logger)
}
