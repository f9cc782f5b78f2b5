package agent

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/model"
	"github.com/Ygeth/adkProject/tool"
)

// Descriptor is the plain configuration record of an agent.
type Descriptor struct {
	Name        string
	Model       string // model identifier, resolved through a ModelResolver
	Instruction string
	Description string
	Tools       []tool.Tool
	SubAgents   []Descriptor
	OutputKey   string // optional; final response text is saved here
}

// ModelResolver maps model identifiers to models. *model.Registry
// satisfies it.
type ModelResolver interface {
	Resolve(name string) (model.Model, error)
}

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the descriptor tree: identifier-like names unique across
// the tree, a model for every agent and unique tool names per agent.
func (d Descriptor) Validate() error {
	return d.validate(map[string]bool{})
}

func (d Descriptor) validate(seen map[string]bool) error {
	var errs []error
	if !nameRE.MatchString(d.Name) {
		errs = append(errs, fmt.Errorf("agent name %q must be an identifier", d.Name))
	}
	if seen[d.Name] {
		errs = append(errs, fmt.Errorf("agent name %q used twice", d.Name))
	}
	seen[d.Name] = true
	if d.Model == "" {
		errs = append(errs, fmt.Errorf("agent %q: model is required", d.Name))
	}

	toolNames := map[string]bool{}
	for _, t := range d.Tools {
		if toolNames[t.Name()] {
			errs = append(errs, fmt.Errorf("agent %q: tool %q registered twice", d.Name, t.Name()))
		}
		toolNames[t.Name()] = true
	}

	for _, sub := range d.SubAgents {
		if err := sub.validate(seen); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// New validates d and builds the agent tree, resolving each Model
// identifier through resolver. Options apply to every agent in the tree.
func New(d Descriptor, resolver ModelResolver, optFns ...func(o *ModelAgentOptions)) (*ModelAgent, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return build(d, resolver, optFns)
}

func build(d Descriptor, resolver ModelResolver, optFns []func(o *ModelAgentOptions)) (*ModelAgent, error) {
	llm, err := resolver.Resolve(d.Model)
	if err != nil {
		return nil, fmt.Errorf("agent %q: %w", d.Name, err)
	}

	fns := append([]func(o *ModelAgentOptions){func(o *ModelAgentOptions) {
		o.Description = d.Description
		if d.Instruction != "" {
			o.Instruction = NewInstructionFromText(d.Instruction)
		}
		o.Tools = d.Tools
		o.OutputKey = d.OutputKey
	}}, optFns...)

	a := NewModelAgent(d.Name, llm, fns...)

	if len(d.SubAgents) == 0 {
		return a, nil
	}

	children := make([]*ModelAgent, 0, len(d.SubAgents))
	for _, sd := range d.SubAgents {
		child, err := build(sd, resolver, optFns)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	subs := make([]core.Agent, len(children))
	for i, c := range children {
		subs[i] = c
	}
	if err := a.SetSubAgents(subs...); err != nil {
		return nil, err
	}
	return a, nil
}
