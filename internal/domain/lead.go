package domain

import (
	"strings"
	"time"
)

// UserSegment selects which branch of the conversation script a lead gets
type UserSegment string

const (
	SegmentVIP UserSegment = "VIP"
	SegmentGA  UserSegment = "GA"
)

// DefaultUserType is assumed when an initiate-call request omits userType
const DefaultUserType = "non-VIP"

// ParseUserSegment maps the inbound userType onto a segment.
// Only "VIP" (any case) is VIP; everything else is general admission.
func ParseUserSegment(userType string) UserSegment {
	if strings.EqualFold(strings.TrimSpace(userType), string(SegmentVIP)) {
		return SegmentVIP
	}
	return SegmentGA
}

// Lead is a person to be called. It lives for a single call attempt.
type Lead struct {
	DisplayName string      `json:"clientName"`
	RawPhone    string      `json:"phoneNumber"`
	Segment     UserSegment `json:"userSegment"`
}

// IsVIP reports whether the lead follows the VIP script branch
func (l Lead) IsVIP() bool {
	return l.Segment == SegmentVIP
}

// CallAttempt is what the optional attempt store keeps per provider call id
type CallAttempt struct {
	AttemptID string    `json:"attemptId"`
	CallSID   string    `json:"callSid"`
	Lead      Lead      `json:"lead"`
	CreatedAt time.Time `json:"createdAt"`
}
