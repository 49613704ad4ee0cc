package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
)

// AttributeHandler обслуживает /tags и /ingredients: у них одинаковые правила
type AttributeHandler struct {
	attributes usecase.AttributeUseCase
	kind       domain.AttributeKind
	logger     *slog.Logger
}

// NewAttributeHandler создаёт обработчик для тегов или ингредиентов
func NewAttributeHandler(attributes usecase.AttributeUseCase, kind domain.AttributeKind, logger *slog.Logger) *AttributeHandler {
	return &AttributeHandler{attributes: attributes, kind: kind, logger: logger}
}

// List — GET ?assigned_only=0|1
func (h *AttributeHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.AttributeFilter
	switch r.URL.Query().Get("assigned_only") {
	case "", "0":
	case "1":
		filter.AssignedOnly = true
	default:
		respondWithDomainError(w, r, domain.FieldError("assigned_only", "must be 0 or 1"), h.logger)
		return
	}

	items, err := h.attributes.ListAttributes(r.Context(), UserFromContext(r.Context()), h.kind, filter)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.Attribute{}
	}
	respondWithJSON(w, http.StatusOK, items, h.logger)
}

// Create — POST: 201 для новой записи, 200 если запись с таким именем уже была
func (h *AttributeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req attributeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if req.Name == nil {
		respondWithDomainError(w, r, domain.FieldError("name", "this field is required"), h.logger)
		return
	}

	item, created, err := h.attributes.CreateAttribute(r.Context(), UserFromContext(r.Context()), h.kind, *sanitize(req.Name))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondWithJSON(w, status, item, h.logger)
}

// Get — GET /{id}
func (h *AttributeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	item, err := h.attributes.GetAttribute(r.Context(), UserFromContext(r.Context()), h.kind, id)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, item, h.logger)
}

// Update — PUT/PATCH /{id}: единственное изменяемое поле name
func (h *AttributeHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	user := UserFromContext(r.Context())
	if req.Name == nil {
		if r.Method == http.MethodPut {
			respondWithDomainError(w, r, domain.FieldError("name", "this field is required"), h.logger)
			return
		}
		// PATCH без полей ничего не меняет
		item, err := h.attributes.GetAttribute(r.Context(), user, h.kind, id)
		if err != nil {
			respondWithDomainError(w, r, err, h.logger)
			return
		}
		respondWithJSON(w, http.StatusOK, item, h.logger)
		return
	}

	item, err := h.attributes.RenameAttribute(r.Context(), user, h.kind, id, *sanitize(req.Name))
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, item, h.logger)
}

// Delete — DELETE /{id}
func (h *AttributeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	if err := h.attributes.DeleteAttribute(r.Context(), UserFromContext(r.Context()), h.kind, id); err != nil {
		respondWithDomainError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
