// Package testutil contains builders and fixtures shared by package tests:
// sessions seeded with state, events with chosen parts, and run contexts
// wired to an in-memory session store. Not intended for production usage.
package testutil
