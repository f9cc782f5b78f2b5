// Package flow runs the request, model, tool loop of a single model-backed
// agent.
//
// One iteration resolves the agent's instructions against session state,
// assembles the conversation history, calls the model and emits its answer.
// When the answer requests function calls they are executed, their
// responses emitted, and the loop asks the model again. Every non-partial
// event is followed by a wait for the runner to persist it, so tools in the
// next iteration observe state written by tools in the previous one.
//
// Agents owning sub-agents are offered a transfer_to_agent tool; choosing it
// hands the rest of the turn to the named agent.
package flow
