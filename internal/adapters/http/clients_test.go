package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
)

func TestCRMClientSearchContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/contacts/", r.URL.Path)
		assert.Equal(t, "loc-1", r.URL.Query().Get("locationId"))
		assert.Equal(t, "5551234567", r.URL.Query().Get("query"))
		assert.Equal(t, "Bearer crm-key", r.Header.Get("Authorization"))
		assert.Equal(t, "2021-07-28", r.Header.Get("Version"))
		w.Write([]byte(`{"contacts":[{"id":"c1","phone":"+15551234567"}]}`))
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, "crm-key", "loc-1", "2021-07-28", time.Second)
	contacts, err := c.SearchContacts(context.Background(), "5551234567")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "c1", contacts[0].ID)
}

func TestCRMClientErrorsCarryStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, "bad", "loc-1", "2021-07-28", time.Second)

	_, err := c.SearchContacts(context.Background(), "1")
	var up *domain.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, domain.OpCRMLookup, up.Op)
	assert.Equal(t, http.StatusUnauthorized, up.StatusCode)
	assert.Equal(t, `{"message":"invalid token"}`, up.Body)

	_, err = c.CreateContact(context.Background(), "Jane", "+15551234567")
	assert.True(t, domain.IsUpstreamOp(err, domain.OpCRMCreate))

	err = c.AddTags(context.Background(), "c1", []string{"call-busy"})
	assert.True(t, domain.IsUpstreamOp(err, domain.OpCRMTag))
}

func TestCRMClientCreateAndTag(t *testing.T) {
	var created CRMCreateContactRequest
	var tagged CRMTagsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/contacts/":
			assert.NoError(t, json.Unmarshal(body, &created))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"contact":{"id":"new-1"}}`))
		case "/contacts/new-1/tags":
			assert.NoError(t, json.Unmarshal(body, &tagged))
			w.Write([]byte(`{"tags":["call-busy"]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewCRMClient(srv.URL, "crm-key", "loc-1", "2021-07-28", time.Second)
	contact, err := c.CreateContact(context.Background(), "Jane", "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "new-1", contact.ID)
	assert.Equal(t, "loc-1", created.LocationID)
	assert.Equal(t, "+15551234567", created.Phone)
	assert.Equal(t, "Jane", created.Name)

	require.NoError(t, c.AddTags(context.Background(), "new-1", []string{"call-busy"}))
	assert.Equal(t, []string{"call-busy"}, tagged.Tags)
}

func TestVoiceAIClientCreateCall(t *testing.T) {
	var got VoiceAICallRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, VoiceAICallsPath, r.URL.Path)
		assert.Equal(t, "va-key", r.Header.Get("X-API-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"callId":"va-1","joinUrl":"wss://voice.example.com/join/va-1"}`))
	}))
	defer srv.Close()

	c := NewVoiceAIClient(srv.URL, "va-key", time.Second)
	resp, err := c.CreateCall(context.Background(), VoiceAICallRequest{
		SystemPrompt: "hello",
		Medium:       map[string]interface{}{"twilio": map[string]interface{}{}},
	})
	require.NoError(t, err)
	assert.Equal(t, "wss://voice.example.com/join/va-1", resp.JoinURL)
	assert.Equal(t, "hello", got.SystemPrompt)
	assert.Contains(t, got.Medium, "twilio")
}

func TestVoiceAIClientNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"model overloaded"}`))
	}))
	defer srv.Close()

	_, err := NewVoiceAIClient(srv.URL, "va-key", time.Second).CreateCall(context.Background(), VoiceAICallRequest{SystemPrompt: "x"})
	var up *domain.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, domain.OpSessionCreate, up.Op)
	assert.Equal(t, http.StatusInternalServerError, up.StatusCode)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestVoiceAIClientMissingJoinURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"callId":"va-1"}`))
	}))
	defer srv.Close()

	_, err := NewVoiceAIClient(srv.URL, "va-key", time.Second).CreateCall(context.Background(), VoiceAICallRequest{})
	assert.True(t, domain.IsUpstreamOp(err, domain.OpSessionCreate))
}
