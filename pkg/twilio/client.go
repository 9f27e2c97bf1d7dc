package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	api "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
	"go.uber.org/zap"
)

// StatusCallbackEvents is every event Twilio lets a call subscribe to.
// busy, no-answer, failed and canceled are delivered as the CallStatus of
// the "completed" event.
var StatusCallbackEvents = []string{"initiated", "ringing", "answered", "completed"}

// CallRequest describes one outbound call bridged to a media stream
type CallRequest struct {
	To               string
	StreamURL        string // websocket join handle the audio is bridged to
	StatusCallback   string
	MachineDetection bool
}

// Client wraps the Twilio REST client with a fixed sender number
type Client struct {
	rest      *twilio.RestClient
	from      string
	maxPrice  float32
	validator client.RequestValidator
}

// NewClient creates a Twilio client. Every request is bounded by timeout.
func NewClient(accountSID, authToken, from string, timeout time.Duration, maxPrice float64) *Client {
	base := &client.Client{
		Credentials: client.NewCredentials(accountSID, authToken),
		HTTPClient:  &http.Client{Timeout: timeout},
	}
	base.SetAccountSid(accountSID)

	logger.Base().Info("Twilio client configured",
		zap.String("from", from),
		zap.Duration("timeout", timeout),
		zap.Float64("max_price", maxPrice))

	return &Client{
		rest:      twilio.NewRestClientWithParams(twilio.ClientParams{Client: base}),
		from:      from,
		maxPrice:  float32(maxPrice),
		validator: client.NewRequestValidator(authToken),
	}
}

// SendMessage sends one SMS and returns the message SID
func (c *Client) SendMessage(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := c.messageParams(to, body)
	resp, err := c.rest.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned a message without sid")
	}
	return *resp.Sid, nil
}

// CreateCall dials req.To and bridges the call audio to req.StreamURL
func (c *Client) CreateCall(ctx context.Context, req CallRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params, err := c.callParams(req)
	if err != nil {
		return "", err
	}

	resp, err := c.rest.Api.CreateCall(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned a call without sid")
	}
	return *resp.Sid, nil
}

// ValidateSignature checks the X-Twilio-Signature of a webhook request
func (c *Client) ValidateSignature(url string, params map[string]string, signature string) bool {
	return c.validator.Validate(url, params, signature)
}

func (c *Client) messageParams(to, body string) *api.CreateMessageParams {
	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)
	if c.maxPrice > 0 {
		params.SetMaxPrice(c.maxPrice)
	}
	return params
}

func (c *Client) callParams(req CallRequest) (*api.CreateCallParams, error) {
	streamTwiML, err := StreamTwiML(req.StreamURL)
	if err != nil {
		return nil, err
	}

	params := &api.CreateCallParams{}
	params.SetTo(req.To)
	params.SetFrom(c.from)
	params.SetTwiml(streamTwiML)
	params.SetStatusCallback(req.StatusCallback)
	params.SetStatusCallbackMethod(http.MethodPost)
	params.SetStatusCallbackEvent(StatusCallbackEvents)
	if req.MachineDetection {
		params.SetMachineDetection("Enable")
	}
	return params, nil
}

// StreamTwiML renders <Response><Connect><Stream url=.../></Connect></Response>
func StreamTwiML(streamURL string) (string, error) {
	if streamURL == "" {
		return "", fmt.Errorf("stream url is required")
	}
	connect := twiml.VoiceConnect{
		InnerElements: []twiml.Element{
			twiml.VoiceStream{Url: streamURL},
		},
	}
	doc, err := twiml.Voice([]twiml.Element{connect})
	if err != nil {
		return "", fmt.Errorf("failed to render twiml: %w", err)
	}
	return doc, nil
}

// ErrorDetail extracts the HTTP status and a readable body from a Twilio error
func ErrorDetail(err error) (int, string) {
	var restErr *client.TwilioRestError
	if errors.As(err, &restErr) {
		return restErr.Status, fmt.Sprintf("code %d: %s", restErr.Code, restErr.Message)
	}
	return 0, ""
}
