package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/cardio-risk/backend/internal/logging"
	"github.com/cardio-risk/backend/internal/models"
)

// Log writes err with any goerr values and stack attached.
func Log(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
		return
	}
	logger.Error(msg, "error", err.Error())
}

// HandleHTTP logs the error and writes a JSON ErrorResponse carrying userMsg.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int, userMsg string) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		Log(ctx, err, "HTTP error")
	} else {
		logging.From(ctx).Warn("HTTP client error", "status", statusCode, "error", err.Error())
	}

	WriteJSON(w, statusCode, models.ErrorResponse{Error: userMsg})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
