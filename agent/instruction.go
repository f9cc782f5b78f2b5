package agent

import "github.com/Ygeth/adkProject/core"

// Provider supplies instruction text at run time.
type Provider interface {
	Instruction(*core.RunContext) (string, error)
}

// Func adapts a function to Provider.
type Func func(*core.RunContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(rc *core.RunContext) (string, error) { return f(rc) }

// Instruction is either static text or a Provider. The resolved text may
// reference session state with {{.key}} markers; the flow renders them.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates a static Instruction.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromFunc creates a dynamic Instruction.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic reports whether the instruction is plain text.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text.
func (i Instruction) Resolve(rc *core.RunContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(rc)
	}
	return i.text, nil
}
