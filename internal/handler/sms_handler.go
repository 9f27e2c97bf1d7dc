package handler

import (
	"context"
	"net/http"

	"github.com/ClareAI/astra-outbound-caller/internal/core/tool"
)

// LocalToolExecutor runs tools served by this process
type LocalToolExecutor interface {
	ExecuteLocal(ctx context.Context, name string, args map[string]string) (string, error)
}

// MessageSender sends one SMS
type MessageSender interface {
	Send(ctx context.Context, rawPhone, body string) (string, error)
}

// SMSHandler serves the in-call SMS tool and the plain send endpoint
type SMSHandler struct {
	tools     LocalToolExecutor
	messenger MessageSender
}

// NewSMSHandler creates an SMS handler
func NewSMSHandler(tools LocalToolExecutor, messenger MessageSender) *SMSHandler {
	return &SMSHandler{tools: tools, messenger: messenger}
}

// HandleSMSWebhook is the target of the sendSMS tool. The recipient may be
// given as phoneNumber or recipient.
func (h *SMSHandler) HandleSMSWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := readParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	sid, err := h.tools.ExecuteLocal(ctx, tool.ToolNameSendSMS, params)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, MessageSID: sid})
}

// HandleSendSMS sends message to phoneNumber
func (h *SMSHandler) HandleSendSMS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := readParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	sid, err := h.messenger.Send(ctx, params["phoneNumber"], params["message"])
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, MessageSID: sid})
}
