package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"interview-screener/internal/domain/entities"

	"gopkg.in/yaml.v3"
)

//go:embed calltemplate.yaml
var defaultCallTemplate []byte

// CurrentTimePlaceholder is replaced with the call start time in the prompt.
const CurrentTimePlaceholder = "{{currentTime}}"

// CallTemplate is the static demo configuration every screening call is
// built from.
type CallTemplate struct {
	Title      string              `json:"title"`
	Overview   string              `json:"overview"`
	CallConfig entities.CallConfig `json:"callConfig"`
}

// LoadCallTemplate reads the template at path, or the embedded default
// when path is empty.
func LoadCallTemplate(path string) (*CallTemplate, error) {
	if path == "" {
		return ParseCallTemplate(defaultCallTemplate)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading call template: %w", err)
	}
	return ParseCallTemplate(data)
}

// ParseCallTemplate decodes a YAML template. The document is converted to
// JSON first so the Ultravox field names and enum decoding live in one
// place, the entities' JSON tags.
func ParseCallTemplate(data []byte) (*CallTemplate, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing call template: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("converting call template: %w", err)
	}

	var tpl CallTemplate
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, fmt.Errorf("decoding call template: %w", err)
	}

	if strings.TrimSpace(tpl.CallConfig.SystemPrompt) == "" {
		return nil, fmt.Errorf("call template has no systemPrompt")
	}

	return &tpl, nil
}
