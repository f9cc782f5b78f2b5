// Package openai implements model.Model on the OpenAI Chat Completions API,
// including streaming and tool calling.
package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
)

// Options configure the adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	RequestOptions      []option.RequestOption
}

// WithModel selects the model identifier, e.g. "gpt-4o".
func WithModel(name string) func(o *Options) {
	return func(o *Options) { o.Model = name }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) func(o *Options) {
	return func(o *Options) { o.Temperature = t }
}

// WithRequestOptions passes SDK request options (API key, base URL...) to
// the client built by NewModel.
func WithRequestOptions(ro ...option.RequestOption) func(o *Options) {
	return func(o *Options) { o.RequestOptions = append(o.RequestOptions, ro...) }
}

// Model adapts the Chat Completions API to model.Model.
type Model struct {
	client *openai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel builds a client from the environment (OPENAI_API_KEY) plus any
// request options.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions(optFns...)
	client := openai.NewClient(opts.RequestOptions...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient wraps an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns...)}
}

func defaultOptions(optFns ...func(o *Options)) Options {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.2,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai", SupportsTools: true}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		params := m.params(req)
		var err error
		if req.Stream {
			err = m.stream(ctx, params, out)
		} else {
			err = m.complete(ctx, params, out)
		}
		if err != nil {
			errCh <- err
		}
	}()

	return out, errCh
}

func (m *Model) params(req model.Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages:            toMessages(req),
		Model:               m.opts.Model,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Tools) > 0 {
		params.Tools = toTools(req.Tools)
	}
	return params
}

// toMessages converts contents in order. The flow always places function
// responses directly after the assistant message that requested them, which
// is the ordering the API requires.
func toMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}

	for _, c := range req.Contents {
		text := textOf(c)
		switch c.Role {
		case core.RoleSystem:
			messages = append(messages, openai.SystemMessage(text))
		case core.RoleTool:
			for _, p := range c.Parts {
				if fr, ok := p.(core.FunctionResponsePart); ok {
					messages = append(messages, openai.ToolMessage(model.ResponseText(fr.FunctionResponse), fr.FunctionResponse.ID))
				}
			}
		case core.RoleAssistant:
			calls := toolCalls(c)
			if len(calls) == 0 {
				messages = append(messages, openai.AssistantMessage(text))
				continue
			}
			msg := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if text != "" {
				msg.Content.OfString = openai.String(text)
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &msg})
		default:
			if text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}
	return messages
}

func textOf(c core.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

func toolCalls(c core.Content) []openai.ChatCompletionMessageToolCallParam {
	var calls []openai.ChatCompletionMessageToolCallParam
	for _, p := range c.Parts {
		fc, ok := p.(core.FunctionCallPart)
		if !ok {
			continue
		}
		calls = append(calls, openai.ChatCompletionMessageToolCallParam{
			ID: fc.FunctionCall.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.FunctionCall.Name,
				Arguments: fc.FunctionCall.Arguments,
			},
		})
	}
	return calls
}

func toTools(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, d := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        d.Function.Name,
				Description: openai.String(d.Function.Description),
				Parameters:  d.Function.Parameters,
			},
		}
	}
	return tools
}

func (m *Model) complete(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response) error {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("openai: no choices returned")
	}

	choice := resp.Choices[0]
	parts := make([]core.Part, 0, len(choice.Message.ToolCalls)+1)
	if choice.Message.Content != "" {
		parts = append(parts, core.TextPart{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}})
	}

	final := model.Response{
		ID:           resp.ID,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: choice.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
	return send(ctx, out, final)
}

// pendingCall accumulates streamed tool call fragments by index.
type pendingCall struct{ id, name, args string }

func (m *Model) stream(ctx context.Context, params openai.ChatCompletionNewParams, out chan<- model.Response) error {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var (
		id     string
		text   strings.Builder
		calls  = map[int64]*pendingCall{}
		finish string
	)

	for stream.Next() {
		chunk := stream.Current()
		if id == "" {
			id = chunk.ID
		}
		for _, ch := range chunk.Choices {
			if ch.Delta.Content != "" {
				text.WriteString(ch.Delta.Content)
				partial := model.Response{ID: id, Partial: true, Content: core.NewTextContent(core.RoleAssistant, ch.Delta.Content)}
				if err := send(ctx, out, partial); err != nil {
					return err
				}
			}
			for _, tc := range ch.Delta.ToolCalls {
				pc, ok := calls[tc.Index]
				if !ok {
					pc = &pendingCall{}
					calls[tc.Index] = pc
				}
				if tc.ID != "" {
					pc.id = tc.ID
				}
				if tc.Function.Name != "" {
					pc.name = tc.Function.Name
				}
				pc.args += tc.Function.Arguments
			}
			if ch.FinishReason != "" {
				finish = ch.FinishReason
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("openai stream: %w", err)
	}

	indexes := make([]int64, 0, len(calls))
	for i := range calls {
		indexes = append(indexes, i)
	}
	sort.Slice(indexes, func(a, b int) bool { return indexes[a] < indexes[b] })

	parts := make([]core.Part, 0, len(calls)+1)
	if text.Len() > 0 {
		parts = append(parts, core.TextPart{Text: text.String()})
	}
	for _, i := range indexes {
		pc := calls[i]
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{ID: pc.id, Name: pc.name, Arguments: pc.args}})
	}

	return send(ctx, out, model.Response{
		ID:           id,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: finish,
	})
}

func send(ctx context.Context, out chan<- model.Response, r model.Response) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case out <- r:
		return nil
	}
}
