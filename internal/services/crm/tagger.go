package crm

import (
	"context"
	"strings"

	httpadapter "github.com/ClareAI/astra-outbound-caller/internal/adapters/http"
	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/internal/phone"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// ContactStore is the CRM contacts API the tagger needs
type ContactStore interface {
	SearchContacts(ctx context.Context, query string) ([]httpadapter.CRMContact, error)
	CreateContact(ctx context.Context, name, phone string) (*httpadapter.CRMContact, error)
	AddTags(ctx context.Context, contactID string, tags []string) error
}

// Tagger finds or creates a CRM contact by phone and attaches tags to it
type Tagger struct {
	store ContactStore
}

// TagOutcome is the result of a best-effort tagging attempt. Callers log it
// and carry on; it is never turned into an HTTP failure.
type TagOutcome struct {
	Action    domain.TagAction
	Attempted bool
	Err       error
}

// OK reports whether the tag was attached
func (o TagOutcome) OK() bool {
	return o.Attempted && o.Err == nil
}

// NewTagger creates a tagger on top of a CRM contact store
func NewTagger(store ContactStore) *Tagger {
	return &Tagger{store: store}
}

// NewTagAction derives the CRM lookup key for rawPhone
func NewTagAction(rawPhone, displayName, tag string) domain.TagAction {
	return domain.TagAction{
		ContactKey:  phone.Normalize(rawPhone).TaggingKey,
		DisplayName: strings.TrimSpace(displayName),
		Tag:         strings.TrimSpace(tag),
	}
}

// Tag resolves the contact for rawPhone, creating it when the search comes
// back empty, then attaches tag. Each stage fails with its own UpstreamError
// op. Nothing is retried.
func (t *Tagger) Tag(ctx context.Context, rawPhone, displayName, tag string) error {
	number := phone.Normalize(rawPhone)
	if number.Empty() {
		return domain.MissingField("phoneNumber")
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return domain.MissingField("tag")
	}

	contactID, err := t.resolveContact(ctx, number, displayName)
	if err != nil {
		return err
	}

	if err := t.store.AddTags(ctx, contactID, []string{tag}); err != nil {
		return err
	}

	logger.Info(ctx, "CRM contact tagged",
		zap.String("contact_id", contactID),
		zap.String("contact_key", number.TaggingKey),
		zap.String("tag", tag))
	return nil
}

// TagBestEffort runs Tag for action and reports the outcome instead of
// returning an error.
func (t *Tagger) TagBestEffort(ctx context.Context, action domain.TagAction) TagOutcome {
	outcome := TagOutcome{Action: action, Attempted: true}
	outcome.Err = t.Tag(ctx, action.ContactKey, action.DisplayName, action.Tag)
	if outcome.Err != nil {
		logger.Warn(ctx, "Best-effort CRM tagging failed",
			zap.String("contact_key", action.ContactKey),
			zap.String("tag", action.Tag),
			zap.Error(outcome.Err))
	}
	return outcome
}

func (t *Tagger) resolveContact(ctx context.Context, number phone.Normalized, displayName string) (string, error) {
	contacts, err := t.store.SearchContacts(ctx, number.TaggingKey)
	if err != nil {
		return "", err
	}
	for _, c := range contacts {
		if c.ID != "" {
			return c.ID, nil
		}
	}

	// Store the dialable form when we have one so the CRM can text/call it
	phoneValue := number.TaggingKey
	if number.Valid {
		phoneValue = number.Dialable
	}

	logger.Info(ctx, "No CRM contact found, creating one", zap.String("contact_key", number.TaggingKey))
	contact, err := t.store.CreateContact(ctx, strings.TrimSpace(displayName), phoneValue)
	if err != nil {
		return "", err
	}
	return contact.ID, nil
}
