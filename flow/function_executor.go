package flow

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/telemetry"
	"github.com/Ygeth/adkProject/tool"
)

// FunctionExecutor runs the function calls of one model response.
// Implementations must:
//   - produce exactly one response event per call, in call order
//   - fold each ToolContext's actions into its response event
//   - never panic; a panicking tool yields an error response
//
// Responses are handed to emit, which blocks until they are persisted.
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agentName string, tools []tool.Tool, calls []core.FunctionCall, emit func(core.Event) error) ([]core.Event, error)
}

// FunctionExecutorConfig configures the default executor.
type FunctionExecutorConfig struct {
	// MaxParallel bounds concurrent tool calls; values below 1 mean one
	// goroutine per call.
	MaxParallel int
}

type functionExecutor struct {
	cfg FunctionExecutorConfig
}

// NewFunctionExecutor returns the default executor. Calls may run in
// parallel but responses are always emitted in call order.
func NewFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &functionExecutor{cfg: cfg}
}

func (e *functionExecutor) Execute(
	runCtx *core.RunContext,
	agentName string,
	tools []tool.Tool,
	calls []core.FunctionCall,
	emit func(core.Event) error,
) ([]core.Event, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	registry := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		registry[t.Name()] = t
	}

	workers := e.cfg.MaxParallel
	if workers < 1 || workers > len(calls) {
		workers = len(calls)
	}

	results := make([]core.Event, len(calls))
	start := time.Now()

	if workers == 1 {
		for i, fc := range calls {
			if err := runCtx.Err(); err != nil {
				return nil, err
			}
			results[i] = e.call(runCtx, agentName, registry, fc)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, workers)
		for i, fc := range calls {
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = e.call(runCtx, agentName, registry, fc)
			}()
		}
		wg.Wait()
		if err := runCtx.Err(); err != nil {
			return nil, err
		}
	}

	for _, ev := range results {
		if err := emit(ev); err != nil {
			return nil, err
		}
	}

	runCtx.LogDebug("flow.functions.complete", "agent", agentName, "count", len(calls), "parallelism", workers,
		"duration_ms", time.Since(start).Milliseconds())

	return results, nil
}

func (e *functionExecutor) call(runCtx *core.RunContext, agentName string, registry map[string]tool.Tool, fc core.FunctionCall) core.Event {
	toolCtx := core.NewToolContext(runCtx, fc.ID)

	_, span := telemetry.StartSpan(runCtx.Context, "tool.execute",
		attribute.String("tool.name", fc.Name),
		attribute.String("tool.call_id", fc.ID),
		attribute.String("agent", agentName),
	)

	start := time.Now()
	result, err := invoke(registry, toolCtx, fc)
	telemetry.End(span, err)

	runCtx.LogInfo("flow.function.executed",
		"agent", agentName,
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	ev := core.NewFunctionResponseEvent(runCtx.RunID, agentName, fc.ID, fc.Name, result, err)
	toolCtx.InternalApplyActions(&ev)
	return ev
}

func invoke(registry map[string]tool.Tool, toolCtx *core.ToolContext, fc core.FunctionCall) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			toolCtx.LogError("flow.function.panic", "function", fc.Name, "recover", fmt.Sprint(r))
			err = tool.NewToolError(fc.Name, fmt.Sprintf("panic: %v", r), tool.CodeExecution)
		}
	}()

	impl, ok := registry[fc.Name]
	if !ok {
		return nil, tool.NewToolError(fc.Name, "tool not found", tool.CodeNotFound)
	}

	args := map[string]any{}
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return nil, tool.NewToolError(fc.Name, "arguments are not a JSON object: "+err.Error(), tool.CodeValidation)
		}
	}

	return impl.Call(toolCtx, args)
}
