package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ClareAI/astra-outbound-caller/pkg/logger"
	"go.uber.org/zap"
)

// Tool name constants
const (
	ToolNameSendSMS    = "sendSMS"
	ToolNameAddContact = "addContact"
)

// ErrUnknownTool is returned when a name is not in the registry
var ErrUnknownTool = errors.New("tool not registered")

// ErrNotLocal is returned when ExecuteLocal targets a remote tool
var ErrNotLocal = errors.New("tool is not executed by this service")

// Parameter is one argument the model fills in when it invokes a tool
type Parameter struct {
	Name        string
	Description string
	Type        string // JSON schema type, "string" when empty
	Required    bool
}

// Schema returns the JSON schema for the parameter
func (p Parameter) Schema() map[string]interface{} {
	t := p.Type
	if t == "" {
		t = "string"
	}
	schema := map[string]interface{}{"type": t}
	if p.Description != "" {
		schema["description"] = p.Description
	}
	return schema
}

// Handler executes a local tool. Arguments arrive as strings since every
// tool input is collected over HTTP.
type Handler func(ctx context.Context, args map[string]string) (string, error)

// Spec is either a LocalTool or a RemoteTool
type Spec interface {
	ToolName() string
	ToolDescription() string
	ToolParameters() []Parameter
	isSpec()
}

// LocalTool is served by this process. The voice-AI provider reaches it at
// URL, and the HTTP handler dispatches the request to Handler.
type LocalTool struct {
	Name        string
	Description string
	Parameters  []Parameter
	URL         string
	Handler     Handler
}

func (t LocalTool) ToolName() string            { return t.Name }
func (t LocalTool) ToolDescription() string     { return t.Description }
func (t LocalTool) ToolParameters() []Parameter { return t.Parameters }
func (LocalTool) isSpec()                       {}

// RemoteTool is a webhook the provider calls directly
type RemoteTool struct {
	Name        string
	Description string
	Parameters  []Parameter
	URL         string
	Method      string
}

func (t RemoteTool) ToolName() string            { return t.Name }
func (t RemoteTool) ToolDescription() string     { return t.Description }
func (t RemoteTool) ToolParameters() []Parameter { return t.Parameters }
func (RemoteTool) isSpec()                       {}

// Manager is the tool registry. Registration order is preserved and is the
// order tools are attached to a session.
type Manager struct {
	mu       sync.RWMutex
	registry map[string]Spec
	order    []string
}

// NewManager creates an empty tool manager
func NewManager() *Manager {
	return &Manager{registry: make(map[string]Spec)}
}

// RegisterTool adds spec to the registry. Names must be unique.
func (m *Manager) RegisterTool(spec Spec) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := spec.ToolName()
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := m.registry[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	if local, ok := spec.(LocalTool); ok && local.Handler == nil {
		return fmt.Errorf("local tool %q has no handler", name)
	}

	m.registry[name] = spec
	m.order = append(m.order, name)
	logger.Base().Info("Registered tool", zap.String("name", name))
	return nil
}

// Get looks up a tool by name
func (m *Manager) Get(name string) (Spec, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, ok := m.registry[name]
	return spec, ok
}

// Specs returns the registered tools in registration order
func (m *Manager) Specs() []Spec {
	m.mu.RLock()
	defer m.mu.RUnlock()
	specs := make([]Spec, 0, len(m.order))
	for _, name := range m.order {
		specs = append(specs, m.registry[name])
	}
	return specs
}

// ExecuteLocal runs the handler of a registered LocalTool
func (m *Manager) ExecuteLocal(ctx context.Context, name string, args map[string]string) (string, error) {
	spec, ok := m.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	local, ok := spec.(LocalTool)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotLocal, name)
	}

	logger.Debug(ctx, "Executing local tool", zap.String("tool_name", name))
	return local.Handler(ctx, args)
}
