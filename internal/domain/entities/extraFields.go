package entities

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Tool definitions carry many Ultravox fields this service never reads
// (timeouts, automatic parameters, auth tokens). The types below keep
// those keys in Extra so a reshaped config forwards them untouched.

type dynamicParameterFields DynamicParameter
type temporaryToolFields TemporaryTool
type selectedToolFields SelectedTool

func (p *DynamicParameter) UnmarshalJSON(data []byte) error {
	var fields dynamicParameterFields
	extra, err := unmarshalWithExtra(data, &fields)
	if err != nil {
		return err
	}
	*p = DynamicParameter(fields)
	p.Extra = extra
	return nil
}

func (p DynamicParameter) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(dynamicParameterFields(p), p.Extra)
}

func (t *TemporaryTool) UnmarshalJSON(data []byte) error {
	var fields temporaryToolFields
	extra, err := unmarshalWithExtra(data, &fields)
	if err != nil {
		return err
	}
	*t = TemporaryTool(fields)
	t.Extra = extra
	return nil
}

func (t TemporaryTool) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(temporaryToolFields(t), t.Extra)
}

func (t *SelectedTool) UnmarshalJSON(data []byte) error {
	var fields selectedToolFields
	extra, err := unmarshalWithExtra(data, &fields)
	if err != nil {
		return err
	}
	*t = SelectedTool(fields)
	t.Extra = extra
	return nil
}

func (t SelectedTool) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(selectedToolFields(t), t.Extra)
}

// unmarshalWithExtra decodes data into the struct behind target and returns
// every key that does not map onto one of its json tags.
func unmarshalWithExtra(data []byte, target any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, target); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key := range jsonKeys(reflect.TypeOf(target).Elem()) {
		delete(raw, key)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// marshalWithExtra encodes fields and merges in the extra keys. Modeled
// fields win over an extra key of the same name.
func marshalWithExtra(fields any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(fields)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	known := jsonKeys(reflect.TypeOf(fields))
	for key, value := range extra {
		if _, ok := known[key]; ok {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}

func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		keys[name] = struct{}{}
	}
	return keys
}
