package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"djajbladi-console/internal/client"
	"djajbladi-console/internal/model"
	"djajbladi-console/internal/service"
	"djajbladi-console/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError renders errors in the backend's contract so the web console
// handles gateway-originated and backend-originated failures the same way:
// field validation under "errors", everything else under "error".
func writeError(w http.ResponseWriter, err error) {
	var capErr *service.CapacityError
	if errors.As(err, &capErr) {
		writeJSON(w, http.StatusConflict, model.ErrorResponse{Error: capErr.Error()})
		return
	}

	var backendErr *client.APIError
	if errors.As(err, &backendErr) {
		if backendErr.IsValidation() {
			writeJSON(w, backendErr.Status, model.ErrorResponse{Errors: backendErr.Fields})
			return
		}
		writeJSON(w, backendErr.Status, model.ErrorResponse{Error: backendErr.Message})
		return
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Fields) > 0 {
			writeJSON(w, apiErr.HTTPStatus, model.ErrorResponse{Errors: apiErr.Fields})
			return
		}
		writeJSON(w, apiErr.HTTPStatus, model.ErrorResponse{Error: apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, model.ErrNoSession), errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Error: "Authentication required"})
	case errors.Is(err, model.ErrForbidden):
		writeJSON(w, http.StatusForbidden, model.ErrorResponse{Error: "Access denied"})
	case errors.Is(err, model.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "Invalid input"})
	default:
		// Most commonly the backend being unreachable; surface it as a
		// gateway failure and keep the detail in the logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: "Something went wrong, please try again"})
	}
}
