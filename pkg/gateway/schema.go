package gateway

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FrameSchema describes the frames a client may send
const FrameSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["method"],
  "properties": {
    "id": {"type": "string"},
    "method": {"type": "string"},
    "params": {"type": "object"}
  },
  "oneOf": [
    {
      "properties": {
        "method": {"const": "chat.send"},
        "params": {
          "type": "object",
          "required": ["content"],
          "properties": {"content": {"type": "string"}}
        }
      },
      "required": ["params"]
    },
    {
      "properties": {
        "method": {"enum": ["chat.clear", "chat.history"]}
      }
    }
  ]
}`

// FrameValidator checks raw frames against FrameSchema
type FrameValidator struct {
	schema *gojsonschema.Schema
}

// NewFrameValidator compiles the frame schema
func NewFrameValidator() (*FrameValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(FrameSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile frame schema: %w", err)
	}
	return &FrameValidator{schema: schema}, nil
}

// Validate returns an error listing every schema violation in data
func (v *FrameValidator) Validate(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid frame: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid frame: %s", strings.Join(msgs, "; "))
	}

	return nil
}
