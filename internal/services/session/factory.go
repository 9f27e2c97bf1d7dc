package session

import (
	"context"
	"fmt"
	"net/http"

	httpadapter "github.com/ClareAI/astra-outbound-caller/internal/adapters/http"
	"github.com/ClareAI/astra-outbound-caller/internal/core/tool"
	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// SessionCreator is the voice-AI session API
type SessionCreator interface {
	CreateCall(ctx context.Context, request httpadapter.VoiceAICallRequest) (*httpadapter.VoiceAICallResponse, error)
}

// ScriptRenderer turns a lead into the system prompt
type ScriptRenderer interface {
	Render(lead domain.Lead) (string, error)
}

// ToolSource lists the tools attached to every session
type ToolSource interface {
	Specs() []tool.Spec
}

// Settings are the model parameters sent with each session
type Settings struct {
	Model       string
	Voice       string
	Temperature float64
}

// CallSession is one provisioned voice-AI conversation. It is not modified
// after the call is dialed.
type CallSession struct {
	JoinHandle     string
	Script         string
	Tools          []tool.Spec
	ProviderCallID string
}

// Factory provisions a CallSession per lead
type Factory struct {
	creator  SessionCreator
	script   ScriptRenderer
	tools    ToolSource
	settings Settings
}

// NewFactory creates a session factory
func NewFactory(creator SessionCreator, script ScriptRenderer, tools ToolSource, settings Settings) *Factory {
	return &Factory{
		creator:  creator,
		script:   script,
		tools:    tools,
		settings: settings,
	}
}

// CreateSession renders the script for lead and registers a session with
// the provider. Provider failures come back as the SessionCreateError from
// the client, unchanged.
func (f *Factory) CreateSession(ctx context.Context, lead domain.Lead) (*CallSession, error) {
	script, err := f.script.Render(lead)
	if err != nil {
		return nil, fmt.Errorf("failed to render conversation script: %w", err)
	}

	specs := f.tools.Specs()
	request := httpadapter.VoiceAICallRequest{
		SystemPrompt:  script,
		Model:         f.settings.Model,
		Voice:         f.settings.Voice,
		Temperature:   f.settings.Temperature,
		FirstSpeaker:  httpadapter.FirstSpeakerAgent,
		Medium:        map[string]interface{}{"twilio": map[string]interface{}{}},
		SelectedTools: SelectedTools(specs),
	}

	response, err := f.creator.CreateCall(ctx, request)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Voice-AI session created",
		zap.String("provider_call_id", response.CallID),
		zap.String("segment", string(lead.Segment)))

	return &CallSession{
		JoinHandle:     response.JoinURL,
		Script:         script,
		Tools:          specs,
		ProviderCallID: response.CallID,
	}, nil
}

// SelectedTools converts tool specs into provider tool definitions. Local
// tools take their arguments in the body, remote tools in the query string.
func SelectedTools(specs []tool.Spec) []httpadapter.VoiceAISelectedTool {
	selected := make([]httpadapter.VoiceAISelectedTool, 0, len(specs))
	for _, spec := range specs {
		var location, url, method string
		switch t := spec.(type) {
		case tool.LocalTool:
			location, url, method = httpadapter.ParameterLocationBody, t.URL, http.MethodPost
		case tool.RemoteTool:
			location, url, method = httpadapter.ParameterLocationQuery, t.URL, t.Method
			if method == "" {
				method = http.MethodPost
			}
		default:
			continue
		}

		params := make([]httpadapter.VoiceAIDynamicParameter, 0, len(spec.ToolParameters()))
		for _, p := range spec.ToolParameters() {
			params = append(params, httpadapter.VoiceAIDynamicParameter{
				Name:     p.Name,
				Location: location,
				Schema:   p.Schema(),
				Required: p.Required,
			})
		}

		selected = append(selected, httpadapter.VoiceAISelectedTool{
			TemporaryTool: &httpadapter.VoiceAITemporaryTool{
				ModelToolName:     spec.ToolName(),
				Description:       spec.ToolDescription(),
				DynamicParameters: params,
				HTTP: &httpadapter.VoiceAIHTTPTool{
					BaseURLPattern: url,
					HTTPMethod:     method,
				},
			},
		})
	}
	return selected
}
