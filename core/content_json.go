package core

import (
	"encoding/json"
	"fmt"
)

// Wire discriminators for Part values.
const (
	partTypeText             = "text"
	partTypeData             = "data"
	partTypeFunctionCall     = "function_call"
	partTypeFunctionResponse = "function_response"
)

// MarshalJSON encodes Content with every part wrapped in a $type envelope so
// sessions can be persisted by durable stores.
func (c Content) MarshalJSON() ([]byte, error) {
	parts := make([]json.RawMessage, 0, len(c.Parts))
	for _, p := range c.Parts {
		raw, err := MarshalPartJSON(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, raw)
	}
	return json.Marshal(struct {
		Role  string            `json:"role,omitempty"`
		Parts []json.RawMessage `json:"parts"`
	}{c.Role, parts})
}

// UnmarshalJSON decodes Content written by MarshalJSON.
func (c *Content) UnmarshalJSON(data []byte) error {
	var wire struct {
		Role  string            `json:"role"`
		Parts []json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("unmarshal content: %w", err)
	}
	c.Role = wire.Role
	c.Parts = make([]Part, 0, len(wire.Parts))
	for _, raw := range wire.Parts {
		p, err := UnmarshalPartJSON(raw)
		if err != nil {
			return err
		}
		c.Parts = append(c.Parts, p)
	}
	return nil
}

// MarshalPartJSON marshals a single Part into its JSON envelope.
func MarshalPartJSON(p Part) ([]byte, error) {
	switch v := p.(type) {
	case TextPart:
		return json.Marshal(struct {
			Type     string         `json:"$type"`
			Text     string         `json:"text"`
			Metadata map[string]any `json:"metadata,omitempty"`
		}{partTypeText, v.Text, v.Metadata})

	case DataPart:
		return json.Marshal(struct {
			Type     string         `json:"$type"`
			Data     map[string]any `json:"data"`
			Metadata map[string]any `json:"metadata,omitempty"`
		}{partTypeData, v.Data, v.Metadata})

	case FunctionCallPart:
		return json.Marshal(struct {
			Type         string         `json:"$type"`
			FunctionCall FunctionCall   `json:"function_call"`
			Metadata     map[string]any `json:"metadata,omitempty"`
		}{partTypeFunctionCall, v.FunctionCall, v.Metadata})

	case FunctionResponsePart:
		return json.Marshal(struct {
			Type             string           `json:"$type"`
			FunctionResponse FunctionResponse `json:"function_response"`
			Metadata         map[string]any   `json:"metadata,omitempty"`
		}{partTypeFunctionResponse, v.FunctionResponse, v.Metadata})

	default:
		return nil, fmt.Errorf("unknown part type: %T", p)
	}
}

// UnmarshalPartJSON unmarshals a single Part from its JSON envelope.
func UnmarshalPartJSON(data []byte) (Part, error) {
	var env struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal part envelope: %w", err)
	}

	switch env.Type {
	case partTypeText:
		var v struct {
			Text     string         `json:"text"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return TextPart{Text: v.Text, Metadata: v.Metadata}, nil

	case partTypeData:
		var v struct {
			Data     map[string]any `json:"data"`
			Metadata map[string]any `json:"metadata"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return DataPart{Data: v.Data, Metadata: v.Metadata}, nil

	case partTypeFunctionCall:
		var v struct {
			FunctionCall FunctionCall   `json:"function_call"`
			Metadata     map[string]any `json:"metadata"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return FunctionCallPart{FunctionCall: v.FunctionCall, Metadata: v.Metadata}, nil

	case partTypeFunctionResponse:
		var v struct {
			FunctionResponse FunctionResponse `json:"function_response"`
			Metadata         map[string]any   `json:"metadata"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return FunctionResponsePart{FunctionResponse: v.FunctionResponse, Metadata: v.Metadata}, nil

	default:
		return nil, fmt.Errorf("unknown part type %q", env.Type)
	}
}
