package server

import (
	"errors"
	"net/http"

	"github.com/formscout/formscout/internal/scan"
)

// HTTPStatus returns the appropriate HTTP status code for an error.
// References into a superseded or absent scan are conflicts with the
// session's current state; a bad index is the caller's mistake.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, scan.ErrStaleGeneration), errors.Is(err, scan.ErrNoScan):
		return http.StatusConflict
	case errors.Is(err, scan.ErrFieldOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
