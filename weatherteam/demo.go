package weatherteam

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Ygeth/adkProject/conversation"
	"github.com/Ygeth/adkProject/toolbox"
)

// Step is one scripted turn of a demo conversation. Before, when set, runs
// ahead of the query and may adjust session state through the driver.
type Step struct {
	Title  string
	Query  string
	Before func(ctx context.Context, d *conversation.Driver) error
}

// SetUnit returns a Before hook that stores unit as the temperature
// preference.
func SetUnit(unit string) func(ctx context.Context, d *conversation.Driver) error {
	return func(ctx context.Context, d *conversation.Driver) error {
		return d.SetState(ctx, toolbox.KeyTemperatureUnit, unit)
	}
}

// StatefulDemo is the walkthrough for the v4 team: a Celsius lookup, a
// preference switch to Fahrenheit, a second lookup, a delegated greeting and
// a repeat lookup.
func StatefulDemo() []Step {
	return []Step{
		{Title: "Turn 1: weather in London (initial state: Celsius)", Query: "What's the weather in London?"},
		{
			Title:  "Turn 2: weather in New York after switching to Fahrenheit",
			Query:  "Tell me the weather in New York.",
			Before: SetUnit(toolbox.UnitFahrenheit),
		},
		{Title: "Turn 3: basic greeting", Query: "Hi!"},
		{Title: "Turn 4: weather in New York again", Query: "Tell me the weather in New York."},
	}
}

// Play runs steps in order on d and writes a transcript to out. Terminal
// turn errors are printed and the demo moves on; timeouts and hook failures
// stop it.
func Play(ctx context.Context, d *conversation.Driver, steps []Step, out io.Writer) error {
	for _, s := range steps {
		fmt.Fprintf(out, "\n--- %s ---\n", s.Title)

		if s.Before != nil {
			if err := s.Before(ctx, d); err != nil {
				return fmt.Errorf("%s: %w", s.Title, err)
			}
		}

		fmt.Fprintf(out, ">>> User Query: %s\n", s.Query)

		answer, err := d.Ask(ctx, s.Query)
		var esc *conversation.EscalationError
		switch {
		case errors.As(err, &esc):
			fmt.Fprintf(out, "<<< Agent escalated: %s\n", esc.Error())
		case errors.Is(err, conversation.ErrNoFinalResponse):
			fmt.Fprintln(out, "<<< Agent did not produce a final response.")
		case err != nil:
			return fmt.Errorf("%s: %w", s.Title, err)
		default:
			fmt.Fprintf(out, "<<< Agent Response: %s\n", answer)
		}
	}
	return nil
}
