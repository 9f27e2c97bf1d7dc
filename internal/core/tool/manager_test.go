package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterPreservesOrder(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterTool(NewSendSMSTool("https://x/api/sms-webhook", noopSend)))
	require.NoError(t, m.RegisterTool(NewAddContactTool("https://x/api/add-contact")))

	specs := m.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, ToolNameSendSMS, specs[0].ToolName())
	assert.Equal(t, ToolNameAddContact, specs[1].ToolName())

	_, isLocal := specs[0].(LocalTool)
	_, isRemote := specs[1].(RemoteTool)
	assert.True(t, isLocal)
	assert.True(t, isRemote)
}

func TestRegisterRejectsDuplicatesAndMissingHandler(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterTool(NewAddContactTool("u")))
	assert.Error(t, m.RegisterTool(NewAddContactTool("u")))
	assert.Error(t, m.RegisterTool(LocalTool{Name: "noop"}))
	assert.Error(t, m.RegisterTool(RemoteTool{}))
}

func TestExecuteLocal(t *testing.T) {
	var gotPhone, gotBody string
	send := func(ctx context.Context, rawPhone, body string) (string, error) {
		gotPhone, gotBody = rawPhone, body
		return "SM123", nil
	}

	m := NewManager()
	require.NoError(t, m.RegisterTool(NewSendSMSTool("u", send)))
	require.NoError(t, m.RegisterTool(NewAddContactTool("u")))

	sid, err := m.ExecuteLocal(context.Background(), ToolNameSendSMS, map[string]string{"recipient": " 5551234567 ", "message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "SM123", sid)
	assert.Equal(t, "5551234567", gotPhone)
	assert.Equal(t, "hi", gotBody)

	_, err = m.ExecuteLocal(context.Background(), ToolNameSendSMS, map[string]string{"phoneNumber": "+639171234567", "recipient": "ignored", "message": "x"})
	require.NoError(t, err)
	assert.Equal(t, "+639171234567", gotPhone)

	_, err = m.ExecuteLocal(context.Background(), ToolNameAddContact, nil)
	assert.True(t, errors.Is(err, ErrNotLocal))

	_, err = m.ExecuteLocal(context.Background(), "missing", nil)
	assert.True(t, errors.Is(err, ErrUnknownTool))
}

func TestParameterSchema(t *testing.T) {
	p := Parameter{Name: "tag", Description: "Outcome tag"}
	assert.Equal(t, map[string]interface{}{"type": "string", "description": "Outcome tag"}, p.Schema())
	assert.Equal(t, map[string]interface{}{"type": "number"}, Parameter{Name: "n", Type: "number"}.Schema())
}

func noopSend(ctx context.Context, rawPhone, body string) (string, error) {
	return "", nil
}
