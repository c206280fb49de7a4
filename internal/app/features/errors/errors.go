// Package errors maps store errors onto HTTP responses. Handlers hand every
// failure to the ErrorLogger; the taxonomy lives here in one place so the
// same store error always produces the same status code and body.
package errors

import (
	"errors"
	"net/http"

	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	applicationstore "github.com/sainikhub/sainikhub/internal/app/store/applications"
	departmentstore "github.com/sainikhub/sainikhub/internal/app/store/departments"
	schemestore "github.com/sainikhub/sainikhub/internal/app/store/schemes"
	"github.com/sainikhub/sainikhub/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// ErrorLogger turns store errors into JSON error responses and logs the ones
// that indicate a fault rather than a client mistake.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Respond writes the HTTP response for err.
//
// Client mistakes keep their store message so callers can correct the input;
// unexpected errors are logged with the request path and collapse to a
// generic 500 body.
func (e *ErrorLogger) Respond(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, accountstore.ErrValidation),
		errors.Is(err, departmentstore.ErrValidation),
		errors.Is(err, schemestore.ErrValidation),
		errors.Is(err, applicationstore.ErrValidation),
		errors.Is(err, accountstore.ErrDuplicateUsername),
		errors.Is(err, accountstore.ErrDuplicateServiceNumber),
		errors.Is(err, departmentstore.ErrDuplicateName),
		errors.Is(err, applicationstore.ErrFieldMismatch),
		errors.Is(err, accountstore.ErrLinkageNotFound):
		httpjson.Error(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, accountstore.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, accountstore.ErrNotFound),
		errors.Is(err, departmentstore.ErrNotFound),
		errors.Is(err, schemestore.ErrNotFound),
		errors.Is(err, applicationstore.ErrNotFound),
		errors.Is(err, applicationstore.ErrNoApplicationOnFile):
		httpjson.Error(w, http.StatusNotFound, err.Error())

	case errors.Is(err, applicationstore.ErrAlreadyDecided),
		errors.Is(err, departmentstore.ErrHasSchemes):
		httpjson.Error(w, http.StatusConflict, err.Error())

	default:
		e.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("method", r.Method),
			zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
