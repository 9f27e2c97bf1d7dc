package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	out, err := run(t, "normalize", "(555) 123-4567", "12345")
	require.NoError(t, err)
	assert.Contains(t, out, "(555) 123-4567\t+15551234567\t5551234567\n")
	assert.Contains(t, out, "12345\t(not dialable)\t12345\n")
}

func TestCallCommand(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/initiate-call", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true,"callSid":"CA123"}`))
	}))
	defer srv.Close()

	out, err := run(t, "--server", srv.URL, "call", "--name", "Jane", "--phone", "5551234567", "--user-type", "VIP")
	require.NoError(t, err)
	assert.Contains(t, out, "CA123")
	assert.Equal(t, map[string]string{"clientName": "Jane", "phoneNumber": "5551234567", "userType": "VIP"}, got)
}

func TestCallCommandValidatesLocally(t *testing.T) {
	_, err := run(t, "--server", "http://127.0.0.1:1", "call", "--name", "Jane", "--phone", "123")
	assert.Error(t, err)

	_, err = run(t, "--server", "http://127.0.0.1:1", "call", "--phone", "5551234567")
	assert.Error(t, err)
}

func TestSMSCommandServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"invalid recipient"}`))
	}))
	defer srv.Close()

	out, err := run(t, "--server", srv.URL, "sms", "--phone", "123", "--message", "hi")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid recipient")
}

func TestHealthCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	out, err := run(t, "--server", srv.URL, "health")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}
