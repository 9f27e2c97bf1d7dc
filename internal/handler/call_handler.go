package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/services/crm"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// CallInitiator starts an outbound call for a lead
type CallInitiator interface {
	InitiateCall(ctx context.Context, lead domain.Lead) (string, error)
}

// StatusProcessor consumes call status callbacks
type StatusProcessor interface {
	Handle(ctx context.Context, event domain.CallStatusEvent) crm.TagOutcome
}

// CallHandler serves call initiation and the telephony status callback
type CallHandler struct {
	calls    CallInitiator
	statuses StatusProcessor
}

// NewCallHandler creates a call handler
func NewCallHandler(calls CallInitiator, statuses StatusProcessor) *CallHandler {
	return &CallHandler{calls: calls, statuses: statuses}
}

// HandleInitiateCall accepts clientName, phoneNumber and userType from the
// query string, a form or a JSON body
func (h *CallHandler) HandleInitiateCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := readParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	lead, err := leadFromParams(params)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	callSID, err := h.calls.InitiateCall(ctx, lead)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, CallSID: callSID})
}

func leadFromParams(params map[string]string) (domain.Lead, error) {
	rawPhone := strings.TrimSpace(params["phoneNumber"])
	if rawPhone == "" {
		return domain.Lead{}, domain.MissingField("phoneNumber")
	}
	name := strings.TrimSpace(params["clientName"])
	if name == "" {
		return domain.Lead{}, domain.MissingField("clientName")
	}

	userType := params["userType"]
	if strings.TrimSpace(userType) == "" {
		userType = domain.DefaultUserType
	}

	return domain.Lead{
		DisplayName: name,
		RawPhone:    rawPhone,
		Segment:     domain.ParseUserSegment(userType),
	}, nil
}

// HandleCallStatus processes a telephony status callback. It always answers
// 200 so the provider does not retry; tagging failures are only logged.
func (h *CallHandler) HandleCallStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params, err := readParams(r)
	if err != nil {
		logger.Warn(ctx, "unreadable call status callback", zap.Error(err))
		writeStatusOK(w)
		return
	}

	event := domain.CallStatusEvent{
		CallID:             params["CallSid"],
		Status:             domain.ParseCallStatus(params["CallStatus"]),
		RawStatus:          params["CallStatus"],
		DestinationNumber:  params["To"],
		CorrelatedLeadName: params["clientName"],
		CorrelatedPhone:    params["phoneNumber"],
		AnsweredBy:         params["AnsweredBy"],
	}

	outcome := h.statuses.Handle(ctx, event)
	if outcome.Attempted {
		logger.Info(ctx, "call status tagging finished",
			zap.String("call_sid", event.CallID),
			zap.String("tag", outcome.Action.Tag),
			zap.Bool("ok", outcome.OK()))
	}

	writeStatusOK(w)
}
