package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/ClareAI/astra-outbound-caller/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed script.yaml
var defaultScript []byte

// ScriptConfig is the YAML layout of a conversation script
type ScriptConfig struct {
	VIP    string `yaml:"vip"`
	GA     string `yaml:"ga"`
	Shared string `yaml:"shared"`
}

// ScriptData is what the templates can reference
type ScriptData struct {
	DisplayName string
	Segment     string
	RawPhone    string
	Now         string
}

// ScriptGenerator renders the per-lead system prompt
type ScriptGenerator struct {
	tmpl *template.Template
	Now  func() time.Time
}

// LoadScript reads the script from path, or the embedded default when path
// is empty.
func LoadScript(path string) (*ScriptGenerator, error) {
	if path == "" {
		return ParseScript(defaultScript)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	return ParseScript(raw)
}

// ParseScript parses a YAML script. Both the vip and ga blocks are required.
func ParseScript(raw []byte) (*ScriptGenerator, error) {
	var cfg ScriptConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if strings.TrimSpace(cfg.VIP) == "" || strings.TrimSpace(cfg.GA) == "" {
		return nil, fmt.Errorf("script must define both %q and %q blocks", templateVIP, templateGA)
	}

	root := template.New("script").Option("missingkey=error")
	blocks := []struct{ name, body string }{
		{templateShared, cfg.Shared},
		{templateVIP, cfg.VIP},
		{templateGA, cfg.GA},
		{templateTools, PromptToolUseInstructions},
	}
	for _, b := range blocks {
		if _, err := root.New(b.name).Parse(b.body); err != nil {
			return nil, fmt.Errorf("failed to parse %s block: %w", b.name, err)
		}
	}

	return &ScriptGenerator{tmpl: root, Now: time.Now}, nil
}

// Render builds the system prompt for lead. VIP leads get the vip block,
// everyone else the ga block.
func (g *ScriptGenerator) Render(lead domain.Lead) (string, error) {
	data := ScriptData{
		DisplayName: strings.TrimSpace(lead.DisplayName),
		Segment:     string(lead.Segment),
		RawPhone:    lead.RawPhone,
		Now:         g.Now().Format(NowLayout),
	}

	branch := templateGA
	if lead.IsVIP() {
		branch = templateVIP
	}

	var parts []string
	for _, name := range []string{branch, templateShared, templateTools} {
		var b strings.Builder
		if err := g.tmpl.ExecuteTemplate(&b, name, data); err != nil {
			return "", fmt.Errorf("failed to render %s block: %w", name, err)
		}
		parts = append(parts, b.String())
	}
	parts = append(parts, PromptPhoneConversationRules)

	return joinBlocks(parts...), nil
}

func joinBlocks(blocks ...string) string {
	var validBlocks []string
	for _, b := range blocks {
		trimmed := strings.TrimSpace(b)
		if trimmed != "" {
			validBlocks = append(validBlocks, trimmed)
		}
	}
	return strings.Join(validBlocks, "\n\n")
}
