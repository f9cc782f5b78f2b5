// Package toolbox implements the weather assistant's tools: weather lookup
// (plain and preference-aware), time lookup and greeting/farewell text. The
// functions are usable directly; tools.go exposes them as tool.Tool values
// for agents.
package toolbox
