package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/bookkeeper/internal/adapter/http/dto"
	"github.com/iho/bookkeeper/internal/domain"
	"github.com/iho/bookkeeper/internal/scope"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var mainAccountErr *domain.InvalidMainAccountError
	var lineItemAccountErr *domain.InvalidLineItemAccountError
	var taxAccountErr *domain.InvalidTaxAccountError

	switch {
	case errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrTaxNotFound),
		errors.Is(err, domain.ErrLineItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyPosted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingEntity),
		errors.Is(err, domain.ErrNotPersisted),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidTaxRate),
		errors.Is(err, scope.ErrNoEntity),
		errors.As(err, &mainAccountErr),
		errors.As(err, &lineItemAccountErr),
		errors.As(err, &taxAccountErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// entityIDQuery reads the entity_id query parameter.
func entityIDQuery(r *http.Request) string {
	return r.URL.Query().Get("entity_id")
}
