package agent

import (
	"fmt"
	"sync"

	"github.com/Ygeth/adkProject/core"
)

// BaseAgent bundles identity and hierarchy management. Embed it in concrete
// agents, supply Run, and call Bind with the outer value. All exported
// methods are safe for concurrent use.
type BaseAgent struct {
	name        string
	description string

	mu        sync.RWMutex
	self      core.Agent
	parent    core.Agent
	subAgents []core.Agent
}

// NewBaseAgent returns a BaseAgent with the given identity.
func NewBaseAgent(name, description string) BaseAgent {
	return BaseAgent{name: name, description: description}
}

// Bind records the concrete agent embedding b. Hierarchy links and
// FindAgent hand out this value.
func (b *BaseAgent) Bind(self core.Agent) { b.self = self }

// Name returns the agent name.
func (b *BaseAgent) Name() string { return b.name }

// Description returns the agent description, used by parents to decide on
// delegation.
func (b *BaseAgent) Description() string { return b.description }

// SetSubAgents replaces the children and makes b their parent. A child
// that already belongs to another agent, or two children sharing a name,
// are rejected and leave the hierarchy unchanged.
func (b *BaseAgent) SetSubAgents(children ...core.Agent) error {
	seen := make(map[string]bool, len(children))
	for _, c := range children {
		if seen[c.Name()] {
			return fmt.Errorf("agent %s: duplicate sub-agent %q", b.name, c.Name())
		}
		seen[c.Name()] = true
		if p := c.Parent(); p != nil && p.Name() != b.name {
			return fmt.Errorf("agent %s: sub-agent %q already belongs to %s", b.name, c.Name(), p.Name())
		}
	}

	b.mu.Lock()
	old := b.subAgents
	b.subAgents = append([]core.Agent(nil), children...)
	self := b.self
	b.mu.Unlock()

	for _, c := range old {
		if s, ok := c.(interface{ setParent(core.Agent) }); ok {
			s.setParent(nil)
		}
	}
	for _, c := range children {
		if s, ok := c.(interface{ setParent(core.Agent) }); ok {
			s.setParent(self)
		}
	}
	return nil
}

func (b *BaseAgent) setParent(p core.Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parent = p
}

// Parent returns the parent agent or nil for a root.
func (b *BaseAgent) Parent() core.Agent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.parent
}

// SubAgents returns a copy of the children.
func (b *BaseAgent) SubAgents() []core.Agent {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]core.Agent, len(b.subAgents))
	copy(out, b.subAgents)
	return out
}

// FindAgent searches this agent and its descendants depth first.
func (b *BaseAgent) FindAgent(name string) core.Agent {
	if b.name == name {
		return b.self
	}
	for _, c := range b.SubAgents() {
		if found := c.FindAgent(name); found != nil {
			return found
		}
	}
	return nil
}

// Root walks up the parent links of a and returns the topmost agent.
func Root(a core.Agent) core.Agent {
	for p := a.Parent(); p != nil; p = p.Parent() {
		a = p
	}
	return a
}
