package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterLocation_UnmarshalJSON(t *testing.T) {
	cases := map[string]ParameterLocation{
		`4`:                          ParameterLocationBody,
		`1`:                          ParameterLocationQuery,
		`"PARAMETER_LOCATION_QUERY"`: ParameterLocationQuery,
		`"PARAMETER_LOCATION_BODY"`:  ParameterLocationBody,
		`"header"`:                   ParameterLocationHeader,
	}
	for input, want := range cases {
		var got ParameterLocation
		require.NoError(t, json.Unmarshal([]byte(input), &got), input)
		assert.Equal(t, want, got, input)
	}

	var bad ParameterLocation
	assert.Error(t, json.Unmarshal([]byte(`"PARAMETER_LOCATION_COOKIE"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestParameterLocation_MarshalsCode(t *testing.T) {
	data, err := json.Marshal(DynamicParameter{Name: "callId", Location: ParameterLocationBody})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"callId","location":4}`, string(data))
	assert.Equal(t, "PARAMETER_LOCATION_QUERY", ParameterLocationQuery.String())
}

func TestCallConfig_CloneIsDeep(t *testing.T) {
	temperature := 0.4
	original := CallConfig{
		SystemPrompt: "prompt",
		Temperature:  &temperature,
		Metadata:     map[string]json.RawMessage{"attempt": json.RawMessage(`1`)},
		SelectedTools: []SelectedTool{{
			TemporaryTool: &TemporaryTool{
				ModelToolName: "updateCandidateProfile",
				Extra:         map[string]json.RawMessage{"timeout": json.RawMessage(`"20s"`)},
				DynamicParameters: []DynamicParameter{
					{Name: "callId", Location: ParameterLocationQuery, Schema: json.RawMessage(`{"type":"string"}`)},
				},
			},
		}},
	}

	clone := original.Clone()
	*clone.Temperature = 0.9
	clone.Metadata["attempt"][0] = '2'
	clone.SelectedTools[0].TemporaryTool.Extra["timeout"][1] = '9'
	clone.SelectedTools[0].ParameterOverrides = map[string]any{"callId": "call-1"}
	clone.SelectedTools[0].TemporaryTool.DynamicParameters[0].Location = ParameterLocationBody
	clone.SelectedTools[0].TemporaryTool.DynamicParameters[0].Schema[2] = 'X'

	assert.Equal(t, 0.4, *original.Temperature)
	assert.JSONEq(t, `1`, string(original.Metadata["attempt"]))
	assert.JSONEq(t, `"20s"`, string(original.SelectedTools[0].TemporaryTool.Extra["timeout"]))
	assert.Nil(t, original.SelectedTools[0].ParameterOverrides)
	assert.Equal(t, ParameterLocationQuery, original.SelectedTools[0].TemporaryTool.DynamicParameters[0].Location)
	assert.JSONEq(t, `{"type":"string"}`, string(original.SelectedTools[0].TemporaryTool.DynamicParameters[0].Schema))
}

func TestSelectedTool_KeepsUnmodeledFields(t *testing.T) {
	input := `{
		"nameOverride": "updateCandidateProfile",
		"authTokens": {"apiKey": "secret"},
		"temporaryTool": {
			"modelToolName": "updateCandidateProfile",
			"description": "Save the profile",
			"timeout": "20s",
			"automaticParameters": [{"name": "callId", "location": 4, "knownValue": "KNOWN_PARAM_CALL_ID"}],
			"dynamicParameters": [{"name": "profile", "location": 4, "schema": {"type": "object"}, "default": {}}],
			"http": {"baseUrlPattern": "https://example.test/profile", "httpMethod": "POST"}
		}
	}`

	var tool SelectedTool
	require.NoError(t, json.Unmarshal([]byte(input), &tool))
	require.NotNil(t, tool.TemporaryTool)
	assert.Equal(t, "updateCandidateProfile", tool.Name())
	assert.Contains(t, tool.Extra, "authTokens")
	assert.Contains(t, tool.TemporaryTool.Extra, "timeout")
	assert.Contains(t, tool.TemporaryTool.Extra, "automaticParameters")
	assert.NotContains(t, tool.TemporaryTool.Extra, "http")
	assert.Contains(t, tool.TemporaryTool.DynamicParameters[0].Extra, "default")

	data, err := json.Marshal(tool)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(data))
}

func TestSelectedTool_ModeledFieldWinsOverExtra(t *testing.T) {
	tool := SelectedTool{
		ToolName: "hangUp",
		Extra:    map[string]json.RawMessage{"toolName": json.RawMessage(`"other"`)},
	}

	data, err := json.Marshal(tool)
	require.NoError(t, err)
	assert.JSONEq(t, `{"toolName":"hangUp"}`, string(data))
}

func TestCallConfig_FindTool(t *testing.T) {
	cfg := CallConfig{SelectedTools: []SelectedTool{
		{ToolName: "hangUp"},
		{TemporaryTool: &TemporaryTool{ModelToolName: "updateCandidateProfile"}},
	}}

	assert.Equal(t, 1, cfg.FindTool("updateCandidateProfile"))
	assert.Equal(t, 0, cfg.FindTool("hangUp"))
	assert.Equal(t, -1, cfg.FindTool("createProfile"))
}

func TestFilterTranscript(t *testing.T) {
	entries := []TranscriptEntry{
		{Speaker: SpeakerAgent, Text: "Hello"},
		{Speaker: SpeakerUser, Text: "Hi"},
		{Speaker: SpeakerAgent, Text: "Tell me about yourself"},
	}

	agentOnly := FilterTranscript(entries, false)
	require.Len(t, agentOnly, 2)
	assert.Equal(t, "Tell me about yourself", agentOnly[1].Text)

	assert.Len(t, FilterTranscript(entries, true), 3)
}
