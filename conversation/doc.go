// Package conversation sends user queries to a runner one turn at a time
// and reduces each turn's event stream to the final response text.
//
//	d := conversation.NewDriver(r, key, conversation.WithTimeout(30*time.Second))
//	answer, err := d.Ask(ctx, "What is the weather like in London?")
//
// A turn that escalates, ends with an error event, exceeds its timeout or
// finishes without a final response yields a distinct error instead of
// text.
package conversation
