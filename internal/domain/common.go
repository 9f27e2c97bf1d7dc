package domain

import "strings"

// CallStatus is the lifecycle status reported by the telephony provider
type CallStatus string

const (
	CallStatusInitiated CallStatus = "initiated"
	CallStatusRinging   CallStatus = "ringing"
	CallStatusAnswered  CallStatus = "answered"
	CallStatusBusy      CallStatus = "busy"
	CallStatusNoAnswer  CallStatus = "no-answer"
	CallStatusFailed    CallStatus = "failed"
	CallStatusCanceled  CallStatus = "canceled"
	CallStatusCompleted CallStatus = "completed"
	CallStatusUnknown   CallStatus = ""
)

// ParseCallStatus maps a provider status string onto a CallStatus.
// Twilio reports "queued" before "initiated" and "in-progress" once answered.
func ParseCallStatus(s string) CallStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "initiated", "queued":
		return CallStatusInitiated
	case "ringing":
		return CallStatusRinging
	case "answered", "in-progress":
		return CallStatusAnswered
	case "busy":
		return CallStatusBusy
	case "no-answer":
		return CallStatusNoAnswer
	case "failed":
		return CallStatusFailed
	case "canceled", "cancelled":
		return CallStatusCanceled
	case "completed":
		return CallStatusCompleted
	default:
		return CallStatusUnknown
	}
}

// Tags applied to CRM contacts based on call outcome
const (
	TagCallBusy      = "call-busy"
	TagCallNoAnswer  = "call-no-answer"
	TagCallVoicemail = "call-voicemail"
)

// CallStatusEvent is one asynchronous lifecycle notification for a call.
// Correlated* fields come from the status-callback URL, not from the provider.
type CallStatusEvent struct {
	CallID             string
	Status             CallStatus
	RawStatus          string
	DestinationNumber  string
	CorrelatedLeadName string
	CorrelatedPhone    string
	AnsweredBy         string // only set when machine detection is enabled
}

// TaggingPhone returns the correlated phone, falling back to the dialed number
func (e CallStatusEvent) TaggingPhone() string {
	if e.CorrelatedPhone != "" {
		return e.CorrelatedPhone
	}
	return e.DestinationNumber
}

// AnsweredByMachine reports whether answering-machine detection flagged a machine or fax
func (e CallStatusEvent) AnsweredByMachine() bool {
	a := strings.ToLower(e.AnsweredBy)
	return strings.HasPrefix(a, "machine") || a == "fax"
}

// TagAction asks the CRM to attach Tag to the contact keyed by ContactKey
type TagAction struct {
	ContactKey  string `json:"contactKey"`
	DisplayName string `json:"displayName,omitempty"`
	Tag         string `json:"tag"`
}
