package tool

import (
	"context"
	"net/http"
	"strings"
)

// SendFunc delivers a text message and returns the provider message id
type SendFunc func(ctx context.Context, rawPhone, body string) (string, error)

// NewSendSMSTool builds the in-call SMS tool served at url
func NewSendSMSTool(url string, send SendFunc) LocalTool {
	return LocalTool{
		Name:        ToolNameSendSMS,
		Description: "Send a text message to the person on the call. Use it when they ask for the event details, the address, or a link in writing.",
		Parameters: []Parameter{
			{Name: "phoneNumber", Description: "Recipient phone number, any format", Required: true},
			{Name: "message", Description: "Text of the message", Required: true},
		},
		URL: url,
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			to := strings.TrimSpace(args["phoneNumber"])
			if to == "" {
				to = strings.TrimSpace(args["recipient"])
			}
			return send(ctx, to, args["message"])
		},
	}
}

// NewAddContactTool builds the CRM tagging webhook tool. The provider calls
// url directly with the arguments as query parameters.
func NewAddContactTool(url string) RemoteTool {
	return RemoteTool{
		Name:        ToolNameAddContact,
		Description: "Record the outcome of the call in the CRM by tagging the contact. Use tag \"confirmed-attendance\" when they confirm, \"declined\" when they decline, \"call-voicemail\" when you reach voicemail.",
		Parameters: []Parameter{
			{Name: "clientName", Description: "Full name of the person", Required: true},
			{Name: "phoneNumber", Description: "Phone number of the person", Required: true},
			{Name: "tag", Description: "Outcome tag to attach", Required: true},
		},
		URL:    url,
		Method: http.MethodPost,
	}
}
