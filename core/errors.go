package core

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for a SessionKey.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned by SessionStore.Create when the key is
	// already taken and the store is not configured to overwrite.
	ErrSessionExists = errors.New("session already exists")
)
