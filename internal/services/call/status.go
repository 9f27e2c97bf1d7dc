package call

import (
	"context"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/services/crm"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// Tagger applies CRM tags without failing the caller
type Tagger interface {
	TagBestEffort(ctx context.Context, action domain.TagAction) crm.TagOutcome
}

// AttemptLookup resolves a call SID to the lead that was dialed
type AttemptLookup interface {
	LookupAttempt(ctx context.Context, callSID string) (domain.CallAttempt, bool, error)
}

// StatusHandler turns call status callbacks into CRM tags. Every event is
// handled on its own, so duplicates and reordering are harmless.
type StatusHandler struct {
	tagger           Tagger
	attempts         AttemptLookup
	machineDetection bool
}

// NewStatusHandler creates a status handler. attempts may be nil.
func NewStatusHandler(tagger Tagger, attempts AttemptLookup, machineDetection bool) *StatusHandler {
	return &StatusHandler{
		tagger:           tagger,
		attempts:         attempts,
		machineDetection: machineDetection,
	}
}

// Handle processes one status event. Attempted is false on the returned
// outcome when the status does not call for a tag.
func (h *StatusHandler) Handle(ctx context.Context, event domain.CallStatusEvent) crm.TagOutcome {
	logger.Info(ctx, "Call status update",
		zap.String("call_sid", event.CallID),
		zap.String("status", event.RawStatus),
		zap.String("to", event.DestinationNumber),
		zap.String("answered_by", event.AnsweredBy))

	tag := h.tagFor(event)
	if tag == "" {
		if event.Status == domain.CallStatusUnknown {
			logger.Warn(ctx, "Ignoring unknown call status", zap.String("status", event.RawStatus))
		}
		return crm.TagOutcome{}
	}

	event = h.correlate(ctx, event)
	rawPhone := event.TaggingPhone()
	action := crm.NewTagAction(rawPhone, event.CorrelatedLeadName, tag)
	if action.ContactKey == "" {
		logger.Warn(ctx, "No phone number to tag", zap.String("call_sid", event.CallID), zap.String("tag", tag))
		return crm.TagOutcome{Action: action, Err: domain.MissingField("phoneNumber")}
	}

	return h.tagger.TagBestEffort(ctx, action)
}

func (h *StatusHandler) tagFor(event domain.CallStatusEvent) string {
	switch event.Status {
	case domain.CallStatusBusy:
		return domain.TagCallBusy
	case domain.CallStatusNoAnswer:
		return domain.TagCallNoAnswer
	case domain.CallStatusAnswered, domain.CallStatusCompleted:
		if h.machineDetection && event.AnsweredByMachine() {
			return domain.TagCallVoicemail
		}
	}
	return ""
}

// correlate fills lead details from the attempt store when the callback URL
// did not carry them
func (h *StatusHandler) correlate(ctx context.Context, event domain.CallStatusEvent) domain.CallStatusEvent {
	if h.attempts == nil || event.CorrelatedPhone != "" {
		return event
	}

	attempt, found, err := h.attempts.LookupAttempt(ctx, event.CallID)
	if err != nil {
		logger.Warn(ctx, "Call attempt lookup failed", zap.String("call_sid", event.CallID), zap.Error(err))
		return event
	}
	if !found {
		return event
	}

	event.CorrelatedPhone = attempt.Lead.RawPhone
	if event.CorrelatedLeadName == "" {
		event.CorrelatedLeadName = attempt.Lead.DisplayName
	}
	return event
}
