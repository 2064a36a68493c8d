package handlers

import (
	"net/http"

	"github.com/upb/auth-gateway/services"
	"github.com/upb/auth-gateway/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. The client only
// ever sees the domain message; wrapped causes are logged.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	status := statusForError(err)
	message := services.GetErrorMessage(err)

	switch {
	case message == "":
		// Unknown error type - log and return internal error
		logger.Error("unhandled error type", zap.Error(err))
		message = services.ErrInternal.Message
	case status >= http.StatusInternalServerError:
		logger.Error("internal server error",
			zap.String("message", message),
			zap.Error(err))
	default:
		logger.Debug("handled service error",
			zap.String("type", string(services.GetErrorType(err))),
			zap.String("message", message),
			zap.Any("details", services.GetErrorDetails(err)))
	}

	if err := utils.WriteError(w, status, message); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

func statusForError(err error) int {
	switch {
	case services.IsNotFoundError(err):
		return http.StatusNotFound
	case services.IsValidationError(err):
		return http.StatusBadRequest
	case services.IsUnauthorizedError(err):
		return http.StatusUnauthorized
	case services.IsForbiddenError(err):
		return http.StatusForbidden
	case services.IsConflictError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
