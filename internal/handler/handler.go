package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/go-chi/chi/v5"
)

// errorResponse — тело ответа с ошибкой
type errorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// respondWithJSON — отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, errorResponse{Error: message}, logger)
}

// respondWithDomainError переводит ошибку use case в HTTP-ответ.
// Неизвестные ошибки логируются и отдаются как 500 без подробностей.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var de *domain.Error
	if errors.As(err, &de) {
		status := de.Code.HTTPStatus()
		if status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Token")
		}
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		respondWithJSON(w, status, errorResponse{Error: de.Message, Details: de.Details}, logger)
		return
	}

	logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	respondWithError(w, http.StatusInternalServerError, "internal server error", logger)
}

// decodeJSON читает тело запроса в dst. Пустое тело равносильно пустому объекту,
// неизвестные поля (например, user) игнорируются.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.FieldError(typeErr.Field, fmt.Sprintf("incorrect type, expected %s", typeErr.Type))
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return domain.Validation("request body too large", nil)
	}
	return domain.Validation("malformed JSON request body", nil).WithCause(err)
}

// pathID разбирает числовой {id} из пути; некорректный id дает 404
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
