package httpx

import (
	"errors"
	"net/http"

	"github.com/kontorapp/kontor/internal/shared"
)

// RespondError maps domain errors to JSON problem responses. Used by the
// report endpoints; HTML handlers render forms or flash notices instead.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
