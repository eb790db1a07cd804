package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// ParameterLocation is the Ultravox integer code for where a tool
// parameter is placed on the tool request.
type ParameterLocation int

const (
	ParameterLocationUnspecified ParameterLocation = 0
	ParameterLocationQuery       ParameterLocation = 1
	ParameterLocationPath        ParameterLocation = 2
	ParameterLocationHeader      ParameterLocation = 3
	ParameterLocationBody        ParameterLocation = 4
)

var parameterLocationNames = map[ParameterLocation]string{
	ParameterLocationUnspecified: "PARAMETER_LOCATION_UNSPECIFIED",
	ParameterLocationQuery:       "PARAMETER_LOCATION_QUERY",
	ParameterLocationPath:        "PARAMETER_LOCATION_PATH",
	ParameterLocationHeader:      "PARAMETER_LOCATION_HEADER",
	ParameterLocationBody:        "PARAMETER_LOCATION_BODY",
}

func (l ParameterLocation) String() string {
	if name, ok := parameterLocationNames[l]; ok {
		return name
	}
	return fmt.Sprintf("PARAMETER_LOCATION(%d)", int(l))
}

// MarshalJSON always emits the integer code.
func (l ParameterLocation) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(l))
}

// UnmarshalJSON accepts the integer code, the enum name
// ("PARAMETER_LOCATION_QUERY") or its short form ("query").
func (l *ParameterLocation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if !strings.HasPrefix(name, "PARAMETER_LOCATION_") {
			name = "PARAMETER_LOCATION_" + name
		}
		for code, known := range parameterLocationNames {
			if known == name {
				*l = code
				return nil
			}
		}
		return fmt.Errorf("unknown parameter location %q", name)
	}

	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("invalid parameter location: %w", err)
	}
	*l = ParameterLocation(code)
	return nil
}

// ModelPrefix namespaces the short model names accepted from the UI.
const ModelPrefix = "fixie-ai/"

type DynamicParameter struct {
	Name     string            `json:"name"`
	Location ParameterLocation `json:"location"`
	Schema   json.RawMessage   `json:"schema,omitempty"`
	Required bool              `json:"required,omitempty"`

	// Extra holds keys this service does not model so they reach Ultravox
	// unchanged.
	Extra map[string]json.RawMessage `json:"-"`
}

type TemporaryTool struct {
	ModelToolName     string             `json:"modelToolName"`
	Description       string             `json:"description"`
	DynamicParameters []DynamicParameter `json:"dynamicParameters,omitempty"`
	StaticParameters  json.RawMessage    `json:"staticParameters,omitempty"`
	HTTP              json.RawMessage    `json:"http,omitempty"`
	Client            json.RawMessage    `json:"client,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// SelectedTool is either a reference to a stored tool (ToolID/ToolName) or
// an inline TemporaryTool.
type SelectedTool struct {
	ToolID             string         `json:"toolId,omitempty"`
	ToolName           string         `json:"toolName,omitempty"`
	NameOverride       string         `json:"nameOverride,omitempty"`
	TemporaryTool      *TemporaryTool `json:"temporaryTool,omitempty"`
	ParameterOverrides map[string]any `json:"parameterOverrides,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Name is the name the model calls the tool by.
func (t SelectedTool) Name() string {
	switch {
	case t.NameOverride != "":
		return t.NameOverride
	case t.TemporaryTool != nil && t.TemporaryTool.ModelToolName != "":
		return t.TemporaryTool.ModelToolName
	default:
		return t.ToolName
	}
}

// CallConfig is the parameter set sent to start a voice call.
type CallConfig struct {
	SystemPrompt         string                     `json:"systemPrompt"`
	Model                string                     `json:"model,omitempty"`
	Voice                string                     `json:"voice,omitempty"`
	LanguageHint         string                     `json:"languageHint,omitempty"`
	Temperature          *float64                   `json:"temperature,omitempty"`
	MaxDuration          string                     `json:"maxDuration,omitempty"`
	JoinTimeout          string                     `json:"joinTimeout,omitempty"`
	TimeExceededMessage  string                     `json:"timeExceededMessage,omitempty"`
	FirstSpeaker         string                     `json:"firstSpeaker,omitempty"`
	FirstSpeakerSettings json.RawMessage            `json:"firstSpeakerSettings,omitempty"`
	InitialMessages      []json.RawMessage          `json:"initialMessages,omitempty"`
	SelectedTools        []SelectedTool             `json:"selectedTools,omitempty"`
	RecordingEnabled     *bool                      `json:"recordingEnabled,omitempty"`
	Metadata             map[string]json.RawMessage `json:"metadata,omitempty"`
}

// FindTool returns the index of the tool the model knows as name, or -1.
func (c CallConfig) FindTool(name string) int {
	for i, tool := range c.SelectedTools {
		if tool.Name() == name {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so that a template is never mutated by a
// per-session override.
func (c CallConfig) Clone() CallConfig {
	out := c
	if c.Temperature != nil {
		temperature := *c.Temperature
		out.Temperature = &temperature
	}
	if c.RecordingEnabled != nil {
		recording := *c.RecordingEnabled
		out.RecordingEnabled = &recording
	}
	out.FirstSpeakerSettings = cloneRaw(c.FirstSpeakerSettings)
	if c.InitialMessages != nil {
		out.InitialMessages = make([]json.RawMessage, len(c.InitialMessages))
		for i, message := range c.InitialMessages {
			out.InitialMessages[i] = cloneRaw(message)
		}
	}
	out.Metadata = cloneRawMap(c.Metadata)
	if c.SelectedTools != nil {
		out.SelectedTools = make([]SelectedTool, len(c.SelectedTools))
		for i, tool := range c.SelectedTools {
			out.SelectedTools[i] = tool.clone()
		}
	}
	return out
}

func (t SelectedTool) clone() SelectedTool {
	out := t
	out.Extra = cloneRawMap(t.Extra)
	if t.ParameterOverrides != nil {
		out.ParameterOverrides = maps.Clone(t.ParameterOverrides)
	}
	if t.TemporaryTool != nil {
		tmp := *t.TemporaryTool
		tmp.StaticParameters = cloneRaw(tmp.StaticParameters)
		tmp.HTTP = cloneRaw(tmp.HTTP)
		tmp.Client = cloneRaw(tmp.Client)
		tmp.Extra = cloneRawMap(tmp.Extra)
		if tmp.DynamicParameters != nil {
			params := make([]DynamicParameter, len(tmp.DynamicParameters))
			for i, param := range tmp.DynamicParameters {
				param.Schema = cloneRaw(param.Schema)
				param.Extra = cloneRawMap(param.Extra)
				params[i] = param
			}
			tmp.DynamicParameters = params
		}
		out.TemporaryTool = &tmp
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneRawMap(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for key, value := range m {
		out[key] = cloneRaw(value)
	}
	return out
}
