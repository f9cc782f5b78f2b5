// Package gemini implements model.Model on the Google Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
)

// ErrNoAPIKey is returned by NewModel when no API key is configured.
var ErrNoAPIKey = errors.New("gemini: GOOGLE_API_KEY or GEMINI_API_KEY must be set")

const (
	roleUser  = "user"
	roleModel = "model"
)

// Options configures the adapter.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
	APIKey      string
}

// WithModel selects the model identifier.
func WithModel(name string) func(o *Options) {
	return func(o *Options) { o.Model = name }
}

// WithAPIKey overrides GOOGLE_API_KEY.
func WithAPIKey(key string) func(o *Options) {
	return func(o *Options) { o.APIKey = key }
}

// Model adapts the generative-ai-go client to model.Model.
type Model struct {
	client *genai.Client
	opts   Options
}

var _ model.Model = (*Model)(nil)

// NewModel builds a client from Options.APIKey, GOOGLE_API_KEY or
// GEMINI_API_KEY, in that order.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions(optFns...)
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient wraps an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	return &Model{client: client, opts: defaultOptions(optFns...)}
}

func defaultOptions(optFns ...func(o *Options)) Options {
	opts := Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		MaxTokens:   1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Close releases the underlying client.
func (m *Model) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini", SupportsTools: true}
}

// Generate implements model.Model. The request history becomes the chat
// history and its last turn is sent as the new message.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents := toContents(req.Contents)
		if len(contents) == 0 || contents[len(contents)-1].Role != roleUser {
			errCh <- errors.New("gemini: request must end with a user or tool turn")
			return
		}

		gm := m.client.GenerativeModel(m.opts.Model)
		gm.SetTemperature(m.opts.Temperature)
		gm.SetMaxOutputTokens(m.opts.MaxTokens)
		if system := systemInstruction(req); system != nil {
			gm.SystemInstruction = system
		}
		if len(req.Tools) > 0 {
			gm.Tools = toTools(req.Tools)
		}

		chat := gm.StartChat()
		chat.History = contents[:len(contents)-1]
		last := contents[len(contents)-1].Parts

		var (
			resp *genai.GenerateContentResponse
			err  error
		)
		if req.Stream {
			resp, err = stream(ctx, chat.SendMessageStream(ctx, last...), out)
		} else {
			resp, err = chat.SendMessage(ctx, last...)
		}
		if err != nil {
			errCh <- fmt.Errorf("gemini: %w", err)
			return
		}

		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case out <- fromResponse(resp):
		}
	}()

	return out, errCh
}

// stream forwards text chunks as partial responses and folds every chunk
// into one final response.
func stream(ctx context.Context, it *genai.GenerateContentResponseIterator, out chan<- model.Response) (*genai.GenerateContentResponse, error) {
	final := &genai.GenerateContentResponse{}
	cand := &genai.Candidate{Content: &genai.Content{Role: roleModel}}
	final.Candidates = []*genai.Candidate{cand}

	for {
		chunk, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		if chunk.UsageMetadata != nil {
			final.UsageMetadata = chunk.UsageMetadata
		}
		if len(chunk.Candidates) == 0 || chunk.Candidates[0].Content == nil {
			continue
		}

		c := chunk.Candidates[0]
		if c.FinishReason != genai.FinishReasonUnspecified {
			cand.FinishReason = c.FinishReason
		}
		for _, p := range c.Content.Parts {
			cand.Content.Parts = appendPart(cand.Content.Parts, p)
			text, ok := p.(genai.Text)
			if !ok || text == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case out <- model.Response{Partial: true, Content: core.NewTextContent(core.RoleAssistant, string(text))}:
			}
		}
	}
	return final, nil
}

// appendPart concatenates adjacent text chunks.
func appendPart(parts []genai.Part, p genai.Part) []genai.Part {
	if text, ok := p.(genai.Text); ok && len(parts) > 0 {
		if prev, ok := parts[len(parts)-1].(genai.Text); ok {
			parts[len(parts)-1] = prev + text
			return parts
		}
	}
	return append(parts, p)
}

func fromResponse(resp *genai.GenerateContentResponse) model.Response {
	out := model.Response{
		ID:           uuid.NewString(),
		Content:      core.Content{Role: core.RoleAssistant},
		FinishReason: "stop",
	}

	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		cand := resp.Candidates[0]
		for _, p := range cand.Content.Parts {
			switch part := p.(type) {
			case genai.Text:
				if part != "" {
					out.Content.Parts = append(out.Content.Parts, core.TextPart{Text: string(part)})
				}
			case genai.FunctionCall:
				out.Content.Parts = append(out.Content.Parts, core.FunctionCallPart{FunctionCall: fromFunctionCall(part)})
			case *genai.FunctionCall:
				out.Content.Parts = append(out.Content.Parts, core.FunctionCallPart{FunctionCall: fromFunctionCall(*part)})
			}
		}
		out.FinishReason = finishReason(cand.FinishReason)
	}

	if resp != nil && resp.UsageMetadata != nil {
		u := resp.UsageMetadata
		out.Usage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out
}

// fromFunctionCall assigns an id, since Gemini matches responses to calls
// by name only.
func fromFunctionCall(fc genai.FunctionCall) core.FunctionCall {
	args := "{}"
	if len(fc.Args) > 0 {
		if b, err := json.Marshal(fc.Args); err == nil {
			args = string(b)
		}
	}
	return core.FunctionCall{ID: "call_" + uuid.NewString(), Name: fc.Name, Arguments: args}
}

func finishReason(r genai.FinishReason) string {
	switch r {
	case genai.FinishReasonMaxTokens:
		return "length"
	case genai.FinishReasonSafety:
		return "safety"
	case genai.FinishReasonRecitation:
		return "recitation"
	case genai.FinishReasonOther:
		return "other"
	}
	return "stop"
}

// systemInstruction combines the request instructions with any system-role
// contents.
func systemInstruction(req model.Request) *genai.Content {
	var parts []genai.Part
	if req.Instructions != "" {
		parts = append(parts, genai.Text(req.Instructions))
	}
	for _, c := range req.Contents {
		if c.Role != core.RoleSystem {
			continue
		}
		for _, p := range c.Parts {
			if tp, ok := p.(core.TextPart); ok && tp.Text != "" {
				parts = append(parts, genai.Text(tp.Text))
			}
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &genai.Content{Role: roleUser, Parts: parts}
}

// toContents converts contents to Gemini turns. Gemini knows only the user
// and model roles: function responses travel as user turns, and adjacent
// turns of the same role are merged.
func toContents(contents []core.Content) []*genai.Content {
	var out []*genai.Content

	add := func(role string, parts []genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Parts = append(out[n-1].Parts, parts...)
			return
		}
		out = append(out, &genai.Content{Role: role, Parts: parts})
	}

	for _, c := range contents {
		switch c.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			add(roleModel, modelParts(c.Parts))
		default:
			add(roleUser, userParts(c.Parts))
		}
	}
	return out
}

func userParts(parts []core.Part) []genai.Part {
	var out []genai.Part
	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				out = append(out, genai.Text(part.Text))
			}
		case core.FunctionResponsePart:
			out = append(out, genai.FunctionResponse{
				Name:     part.FunctionResponse.Name,
				Response: responseMap(part.FunctionResponse),
			})
		}
	}
	return out
}

func modelParts(parts []core.Part) []genai.Part {
	var out []genai.Part
	for _, p := range parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				out = append(out, genai.Text(part.Text))
			}
		case core.FunctionCallPart:
			args := map[string]any{}
			if part.FunctionCall.Arguments != "" {
				_ = json.Unmarshal([]byte(part.FunctionCall.Arguments), &args)
			}
			out = append(out, genai.FunctionCall{Name: part.FunctionCall.Name, Args: args})
		}
	}
	return out
}

// responseMap returns the function result as the JSON object Gemini
// expects. Non-object results are wrapped under "result".
func responseMap(fr core.FunctionResponse) map[string]any {
	text := model.ResponseText(fr)
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"result": text}
}

func toTools(defs []model.ToolDefinition) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, len(defs))
	for i, d := range defs {
		decls[i] = &genai.FunctionDeclaration{
			Name:        d.Function.Name,
			Description: d.Function.Description,
			Parameters:  toSchema(d.Function.Parameters),
		}
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toSchema converts a JSON schema object into the OpenAPI subset Gemini
// accepts. Unknown keywords are dropped.
func toSchema(m map[string]any) *genai.Schema {
	if len(m) == 0 {
		return nil
	}

	s := &genai.Schema{Type: schemaType(m["type"])}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	s.Enum = stringList(m["enum"])
	s.Required = stringList(m["required"])

	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				s.Properties[name] = toSchema(sub)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toSchema(items)
	}
	return s
}

func schemaType(v any) genai.Type {
	t, _ := v.(string)
	switch strings.ToLower(t) {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}

func stringList(v any) []string {
	switch r := v.(type) {
	case []string:
		return r
	case []any:
		out := make([]string, 0, len(r))
		for _, x := range r {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
