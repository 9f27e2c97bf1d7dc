package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies errors for the HTTP boundary
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindUpstream
	KindConfiguration
)

// ErrInvalidRecipient means the phone could not be mapped to a dialable number
var ErrInvalidRecipient = errors.New("invalid recipient: phone number is not in a supported format")

// InvalidInputError is a user-correctable request problem
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MissingField builds an InvalidInputError for a required but empty field
func MissingField(field string) error {
	return &InvalidInputError{Field: field, Message: "is required"}
}

// UpstreamOp names the external step that failed
type UpstreamOp string

const (
	OpSessionCreate UpstreamOp = "session_create"
	OpDial          UpstreamOp = "dial"
	OpDelivery      UpstreamOp = "sms_delivery"
	OpCRMLookup     UpstreamOp = "crm_lookup"
	OpCRMCreate     UpstreamOp = "crm_create"
	OpCRMTag        UpstreamOp = "crm_tag"
)

// UpstreamError wraps a failure from the voice-AI provider, the telephony
// provider or the CRM. StatusCode and Body are zero when the request never
// got an HTTP response.
type UpstreamError struct {
	Op         UpstreamOp
	Service    string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Service, e.Op)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Body != "" {
		fmt.Fprintf(&b, ": %s", e.Body)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewSessionCreateError reports a non-success voice-AI session creation
func NewSessionCreateError(status int, body string, err error) error {
	return &UpstreamError{Op: OpSessionCreate, Service: "voice-ai", StatusCode: status, Body: body, Err: err}
}

// NewDialError reports a telephony call-creation failure
func NewDialError(status int, body string, err error) error {
	return &UpstreamError{Op: OpDial, Service: "telephony", StatusCode: status, Body: body, Err: err}
}

// NewDeliveryError reports a telephony message-creation failure
func NewDeliveryError(status int, body string, err error) error {
	return &UpstreamError{Op: OpDelivery, Service: "telephony", StatusCode: status, Body: body, Err: err}
}

// NewCRMError reports a failed CRM lookup, create or tag call
func NewCRMError(op UpstreamOp, status int, body string, err error) error {
	return &UpstreamError{Op: op, Service: "crm", StatusCode: status, Body: body, Err: err}
}

// IsUpstreamOp reports whether err is an UpstreamError for op
func IsUpstreamOp(err error, op UpstreamOp) bool {
	var up *UpstreamError
	return errors.As(err, &up) && up.Op == op
}

// ConfigurationError lists required settings that are missing or invalid
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required configuration: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid configuration: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// KindOf classifies err for status-code mapping
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}
	var invalid *InvalidInputError
	var upstream *UpstreamError
	var cfg *ConfigurationError
	switch {
	case errors.Is(err, ErrInvalidRecipient), errors.As(err, &invalid):
		return KindInvalidInput
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &cfg):
		return KindConfiguration
	default:
		return KindInternal
	}
}
