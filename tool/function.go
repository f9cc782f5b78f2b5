package tool

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/internal/util"
)

// FunctionTool exposes a plain Go function as a Tool.
//
// Call validates arguments against the schema before invoking fn and
// normalizes failures into *ToolError:
//
//	VALIDATION_ERROR -> schema / argument mismatch
//	EXECUTION_ERROR  -> fn returned a plain error
//	(custom codes preserved when fn returns *ToolError)
//
// A FunctionTool holds no mutable state and is safe for concurrent use.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and function.
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from structType.
func NewFunctionToolFromStruct(
	name, description string,
	structType any,
	fn func(toolCtx *core.ToolContext, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// NewTypedTool derives the schema from A and decodes validated arguments
// into an A before calling fn.
//
//	type cityArgs struct {
//	  City string `json:"city" description:"City name"`
//	}
//	t := NewTypedTool("get_weather", "Retrieves the weather report",
//	  func(tc *core.ToolContext, a cityArgs) (any, error) { ... })
func NewTypedTool[A any](
	name, description string,
	fn func(toolCtx *core.ToolContext, args A) (any, error),
) *FunctionTool {
	var zero A
	return NewFunctionToolFromStruct(name, description, zero, func(tc *core.ToolContext, raw map[string]any) (any, error) {
		var args A
		if err := decodeArgs(raw, &args); err != nil {
			return nil, &ToolError{Tool: name, Message: err.Error(), Code: CodeValidation}
		}
		return fn(tc, args)
	})
}

func decodeArgs(raw map[string]any, out any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args then invokes the underlying function.
//
// Logging fields: tool, fc_id, duration_ms.
func (t *FunctionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	logger.Debug("tool.call.start", "tool", t.name, "fc_id", toolCtx.FunctionCallID())

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		logger.Warn("tool.call.validation_failed", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	result, err := t.fn(toolCtx, args)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			logger.Error("tool.call.error", "tool", t.name, "code", toolErr.Code, "error", toolErr.Message)
			return nil, toolErr
		}

		logger.Error("tool.call.error", "tool", t.name, "error", err.Error())

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	logger.Info("tool.call.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
