package filestore

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"JSONShop/pkg/kit"
)

// HTTPStatus maps an error returned by a collection operation to a response
// status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError answers with the status for err. Server errors are logged under
// op, and their message is replaced unless it is a storage error.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, op string, err error) {
	status := HTTPStatus(err)
	msg := err.Error()

	if status == http.StatusInternalServerError {
		if log != nil {
			log.Error(op+" failed", zap.Error(err))
		}
		if !errors.Is(err, ErrStorage) {
			msg = "server error"
		}
	}
	kit.WriteError(w, r, status, msg, nil)
}
