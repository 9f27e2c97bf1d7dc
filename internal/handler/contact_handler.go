package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
)

// ContactTagger tags a CRM contact by phone
type ContactTagger interface {
	Tag(ctx context.Context, rawPhone, displayName, tag string) error
}

// ContactHandler serves the addContact tool webhook
type ContactHandler struct {
	tagger ContactTagger
}

// NewContactHandler creates a contact handler
func NewContactHandler(tagger ContactTagger) *ContactHandler {
	return &ContactHandler{tagger: tagger}
}

// HandleAddContact tags the contact identified by phoneNumber with tag,
// creating it under clientName when it does not exist yet
func (h *ContactHandler) HandleAddContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := readParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	tag := strings.TrimSpace(params["tag"])
	if strings.TrimSpace(params["phoneNumber"]) == "" {
		writeError(ctx, w, domain.MissingField("phoneNumber"))
		return
	}
	if tag == "" {
		writeError(ctx, w, domain.MissingField("tag"))
		return
	}

	if err := h.tagger.Tag(ctx, params["phoneNumber"], params["clientName"], tag); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "contact tagged with " + tag})
}
