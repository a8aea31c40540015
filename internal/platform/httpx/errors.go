package httpx

import (
	"errors"
	"net/http"

	"github.com/JungWooHyub/le-feu-sub000/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807. Unknown
// errors collapse into a 500 with the detail suppressed.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
	case errors.Is(err, shared.ErrProfileNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "No profile exists for this account")
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
