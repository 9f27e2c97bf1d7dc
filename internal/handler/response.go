package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// APIResponse is the body of every JSON endpoint except /call-status and /health
type APIResponse struct {
	Success    bool   `json:"success"`
	MessageSID string `json:"messageSid,omitempty"`
	CallSID    string `json:"callSid,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps err onto 400 or 500 and writes {success:false,error}
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if domain.KindOf(err) == domain.KindInvalidInput {
		status = http.StatusBadRequest
	}
	logger.Warn(ctx, "request failed", zap.Int("status", status), zap.Error(err))
	writeJSON(w, status, APIResponse{Success: false, Error: err.Error()})
}

func writeStatusOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
