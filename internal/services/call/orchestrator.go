package call

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/phone"
	"github.com/ClareAI/astra-outbound-caller/internal/services/session"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"github.com/ClareAI/astra-outbound-caller/pkg/twilio"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SessionFactory provisions the voice-AI side of a call
type SessionFactory interface {
	CreateSession(ctx context.Context, lead domain.Lead) (*session.CallSession, error)
}

// CallPlacer dials the lead through the telephony provider
type CallPlacer interface {
	CreateCall(ctx context.Context, req twilio.CallRequest) (string, error)
}

// AttemptStore keeps call SID to lead correlation for status callbacks
// that arrive without it
type AttemptStore interface {
	SaveAttempt(ctx context.Context, attempt domain.CallAttempt) error
	LookupAttempt(ctx context.Context, callSID string) (domain.CallAttempt, bool, error)
}

// Options configure the orchestrator
type Options struct {
	StatusCallbackURL string // absolute URL of the /call-status endpoint
	MachineDetection  bool
	DialTimeout       time.Duration
	Limiter           *rate.Limiter // nil disables pacing
}

// Orchestrator runs one outbound call attempt: session, then dial
type Orchestrator struct {
	sessions SessionFactory
	placer   CallPlacer
	store    AttemptStore
	opts     Options
	now      func() time.Time
}

// NewOrchestrator creates a call orchestrator. store may be nil.
func NewOrchestrator(sessions SessionFactory, placer CallPlacer, store AttemptStore, opts Options) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		placer:   placer,
		store:    store,
		opts:     opts,
		now:      time.Now,
	}
}

// InitiateCall provisions a voice-AI session for lead and dials it.
// Input problems are reported before any upstream call. A session failure
// is returned unchanged and nothing is dialed.
func (o *Orchestrator) InitiateCall(ctx context.Context, lead domain.Lead) (string, error) {
	number := phone.Normalize(lead.RawPhone)
	if number.Empty() {
		return "", domain.MissingField("phoneNumber")
	}
	if !number.Valid {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, lead.RawPhone)
	}
	if strings.TrimSpace(lead.DisplayName) == "" {
		return "", domain.MissingField("clientName")
	}

	logger.Info(ctx, "Initiating outbound call",
		zap.String("to", number.Dialable),
		zap.String("segment", string(lead.Segment)))

	callSession, err := o.sessions.CreateSession(ctx, lead)
	if err != nil {
		logger.Error(ctx, "Failed to create voice-AI session", zap.String("to", number.Dialable), zap.Error(err))
		return "", err
	}

	if o.opts.Limiter != nil {
		if err := o.opts.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("dial rate limiter: %w", err)
		}
	}

	dialCtx := ctx
	if o.opts.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, o.opts.DialTimeout)
		defer cancel()
	}

	callSID, err := o.placer.CreateCall(dialCtx, twilio.CallRequest{
		To:               number.Dialable,
		StreamURL:        callSession.JoinHandle,
		StatusCallback:   StatusCallbackURL(o.opts.StatusCallbackURL, lead),
		MachineDetection: o.opts.MachineDetection,
	})
	if err != nil {
		status, detail := twilio.ErrorDetail(err)
		logger.Error(ctx, "Failed to place call",
			zap.String("to", number.Dialable),
			zap.String("provider_call_id", callSession.ProviderCallID),
			zap.Int("status_code", status),
			zap.String("detail", detail),
			zap.Error(err))
		return "", domain.NewDialError(status, detail, err)
	}

	logger.Info(ctx, "Call placed",
		zap.String("call_sid", callSID),
		zap.String("to", number.Dialable),
		zap.String("provider_call_id", callSession.ProviderCallID))

	o.recordAttempt(ctx, callSID, lead)
	return callSID, nil
}

func (o *Orchestrator) recordAttempt(ctx context.Context, callSID string, lead domain.Lead) {
	if o.store == nil {
		return
	}
	attempt := domain.CallAttempt{
		AttemptID: uuid.NewString(),
		CallSID:   callSID,
		Lead:      lead,
		CreatedAt: o.now().UTC(),
	}
	if err := o.store.SaveAttempt(ctx, attempt); err != nil {
		logger.Warn(ctx, "Failed to record call attempt", zap.String("call_sid", callSID), zap.Error(err))
	}
}

// StatusCallbackURL appends the lead correlation parameters to base
func StatusCallbackURL(base string, lead domain.Lead) string {
	q := url.Values{}
	q.Set("clientName", lead.DisplayName)
	q.Set("phoneNumber", lead.RawPhone)

	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
