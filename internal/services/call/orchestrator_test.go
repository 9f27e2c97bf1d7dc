package call

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twilio/twilio-go/client"
	"golang.org/x/time/rate"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/services/session"
	"github.com/ClareAI/astra-outbound-caller/pkg/twilio"
)

type fakeSessions struct {
	leads []domain.Lead
	err   error
}

func (f *fakeSessions) CreateSession(ctx context.Context, lead domain.Lead) (*session.CallSession, error) {
	f.leads = append(f.leads, lead)
	if f.err != nil {
		return nil, f.err
	}
	return &session.CallSession{JoinHandle: "wss://join/abc", ProviderCallID: "va-1"}, nil
}

type fakePlacer struct {
	requests    []twilio.CallRequest
	hadDeadline bool
	sid         string
	err         error
}

func (f *fakePlacer) CreateCall(ctx context.Context, req twilio.CallRequest) (string, error) {
	f.requests = append(f.requests, req)
	_, f.hadDeadline = ctx.Deadline()
	return f.sid, f.err
}

type fakeAttempts struct {
	saved []domain.CallAttempt
	err   error
}

func (f *fakeAttempts) SaveAttempt(ctx context.Context, attempt domain.CallAttempt) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, attempt)
	return nil
}

func (f *fakeAttempts) LookupAttempt(ctx context.Context, callSID string) (domain.CallAttempt, bool, error) {
	for _, a := range f.saved {
		if a.CallSID == callSID {
			return a, true, nil
		}
	}
	return domain.CallAttempt{}, false, f.err
}

func testOptions() Options {
	return Options{
		StatusCallbackURL: "https://calls.example.com/call-status",
		DialTimeout:       30 * time.Second,
	}
}

func TestInitiateCall(t *testing.T) {
	sessions := &fakeSessions{}
	placer := &fakePlacer{sid: "CA123"}
	attempts := &fakeAttempts{}
	o := NewOrchestrator(sessions, placer, attempts, testOptions())

	lead := domain.Lead{DisplayName: "Jane Doe", RawPhone: "(555) 123-4567", Segment: domain.SegmentVIP}
	sid, err := o.InitiateCall(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, "CA123", sid)

	require.Len(t, placer.requests, 1)
	req := placer.requests[0]
	assert.Equal(t, "+15551234567", req.To)
	assert.Equal(t, "wss://join/abc", req.StreamURL)
	assert.True(t, placer.hadDeadline)

	cb, err := url.Parse(req.StatusCallback)
	require.NoError(t, err)
	assert.Equal(t, "/call-status", cb.Path)
	assert.Equal(t, "Jane Doe", cb.Query().Get("clientName"))
	assert.Equal(t, "(555) 123-4567", cb.Query().Get("phoneNumber"))

	require.Len(t, attempts.saved, 1)
	assert.Equal(t, "CA123", attempts.saved[0].CallSID)
	assert.Equal(t, lead, attempts.saved[0].Lead)
	assert.NotEmpty(t, attempts.saved[0].AttemptID)
}

func TestInitiateCallRejectsBadInputBeforeUpstream(t *testing.T) {
	tests := []struct {
		name string
		lead domain.Lead
		want error
	}{
		{name: "missing phone", lead: domain.Lead{DisplayName: "Jane"}},
		{name: "undialable phone", lead: domain.Lead{DisplayName: "Jane", RawPhone: "12345"}, want: domain.ErrInvalidRecipient},
		{name: "missing name", lead: domain.Lead{RawPhone: "5551234567"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{}
			placer := &fakePlacer{sid: "CA1"}
			_, err := NewOrchestrator(sessions, placer, nil, testOptions()).InitiateCall(context.Background(), tt.lead)

			require.Error(t, err)
			assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Empty(t, sessions.leads)
			assert.Empty(t, placer.requests)
		})
	}
}

func TestInitiateCallSessionFailureSkipsDial(t *testing.T) {
	upstream := domain.NewSessionCreateError(http.StatusInternalServerError, "internal error", nil)
	placer := &fakePlacer{sid: "CA1"}
	o := NewOrchestrator(&fakeSessions{err: upstream}, placer, nil, testOptions())

	_, err := o.InitiateCall(context.Background(), domain.Lead{DisplayName: "Jane", RawPhone: "5551234567"})
	require.Error(t, err)
	assert.Same(t, upstream, err)
	assert.Contains(t, err.Error(), "internal error")
	assert.Empty(t, placer.requests)
}

func TestInitiateCallDialFailure(t *testing.T) {
	restErr := &client.TwilioRestError{Code: 21215, Message: "Geo permission", Status: http.StatusBadRequest}
	attempts := &fakeAttempts{}
	o := NewOrchestrator(&fakeSessions{}, &fakePlacer{err: restErr}, attempts, testOptions())

	_, err := o.InitiateCall(context.Background(), domain.Lead{DisplayName: "Juan", RawPhone: "639171234567"})
	require.Error(t, err)
	assert.True(t, domain.IsUpstreamOp(err, domain.OpDial))
	assert.Contains(t, err.Error(), "Geo permission")
	assert.Empty(t, attempts.saved)
}

func TestInitiateCallStoreFailureIsIgnored(t *testing.T) {
	o := NewOrchestrator(&fakeSessions{}, &fakePlacer{sid: "CA9"}, &fakeAttempts{err: errors.New("redis down")}, testOptions())

	sid, err := o.InitiateCall(context.Background(), domain.Lead{DisplayName: "Jane", RawPhone: "5551234567"})
	require.NoError(t, err)
	assert.Equal(t, "CA9", sid)
}

func TestInitiateCallRespectsLimiter(t *testing.T) {
	opts := testOptions()
	opts.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	placer := &fakePlacer{sid: "CA1"}
	o := NewOrchestrator(&fakeSessions{}, placer, nil, opts)

	lead := domain.Lead{DisplayName: "Jane", RawPhone: "5551234567"}
	_, err := o.InitiateCall(context.Background(), lead)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = o.InitiateCall(ctx, lead)
	require.Error(t, err)
	assert.Len(t, placer.requests, 1)
}

func TestStatusCallbackURL(t *testing.T) {
	lead := domain.Lead{DisplayName: "Jane & Co", RawPhone: "+1 555 123 4567"}
	got := StatusCallbackURL("https://x.example.com/call-status", lead)
	assert.Equal(t, "https://x.example.com/call-status?clientName=Jane+%26+Co&phoneNumber=%2B1+555+123+4567", got)

	got = StatusCallbackURL("https://x.example.com/call-status?k=v", lead)
	assert.Contains(t, got, "?k=v&clientName=")
}
