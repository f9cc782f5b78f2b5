package core

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"
)

// KeySeparator may not appear in any SessionKey component. Stores join the
// components with it to build flat keys.
const KeySeparator = ":"

// SessionKey is the composite identity of a session. It never changes once a
// session has been created.
type SessionKey struct {
	AppName   string `json:"app_name"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// String renders the key as app/user/session for logs and error messages.
func (k SessionKey) String() string {
	return k.AppName + "/" + k.UserID + "/" + k.SessionID
}

// Validate reports whether all three components are present and free of
// KeySeparator.
func (k SessionKey) Validate() error {
	switch {
	case k.AppName == "":
		return fmt.Errorf("session key: app name is required")
	case k.UserID == "":
		return fmt.Errorf("session key: user id is required")
	case k.SessionID == "":
		return fmt.Errorf("session key: session id is required")
	}
	return ValidateKeyParts(k.AppName, k.UserID, k.SessionID)
}

// ValidateKeyParts rejects components containing KeySeparator.
func ValidateKeyParts(parts ...string) error {
	for _, p := range parts {
		if strings.Contains(p, KeySeparator) {
			return fmt.Errorf("session key: %q must not contain %q", p, KeySeparator)
		}
	}
	return nil
}

// Session represents a conversational container tracking mutable key/value
// state plus an ordered event history. It is safe for concurrent access; the
// session mutex serializes every state read and write for its key.
//
// Contract:
//   - State mutations update the Updated timestamp
//   - GetEvents returns a defensive copy to avoid external mutation
//   - GetConversationHistory filters events to user/assistant/tool roles and
//     excludes partial streaming fragments
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	AppName string         `json:"app_name"`
	UserID  string         `json:"user_id"`
	ID      string         `json:"id"`
	State   map[string]any `json:"state"`
	Events  []Event        `json:"events"`
	Created time.Time      `json:"created"`
	Updated time.Time      `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a session for key seeded with a copy of initial.
func NewSession(key SessionKey, initial map[string]any) *Session {
	now := time.Now()
	state := make(map[string]any, len(initial))
	maps.Copy(state, initial)
	return &Session{
		AppName: key.AppName,
		UserID:  key.UserID,
		ID:      key.SessionID,
		State:   state,
		Events:  []Event{},
		Created: now,
		Updated: now,
	}
}

// Key returns the composite identity of the session.
func (s *Session) Key() SessionKey {
	return SessionKey{AppName: s.AppName, UserID: s.UserID, SessionID: s.ID}
}

// GetState returns the value and existence flag for a state key.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// SetState sets a key/value pair in session state updating the Updated timestamp.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// ApplyStateDelta merges the provided key/value pairs into State.
func (s *Session) ApplyStateDelta(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.State, delta)
	s.Updated = time.Now()
}

// StateSnapshot returns a shallow copy of the current state.
func (s *Session) StateSnapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.State)
}

// LastUpdate returns the time of the most recent mutation.
func (s *Session) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Updated
}

// AddEvent appends an event to the history updating Updated timestamp.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// GetEvents returns a defensive copy of the full event slice.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return events
}

// GetConversationHistory returns filtered events suitable for providing
// conversational context to models (excludes partials and non-conversational roles).
func (s *Session) GetConversationHistory() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Event, 0, len(s.Events))
	for _, ev := range s.Events {
		if ev.Content == nil {
			continue
		}
		switch ev.Content.Role {
		case RoleUser, RoleAssistant, RoleTool:
		default:
			continue
		}
		if ev.IsPartial() {
			continue
		}
		res = append(res, ev)
	}
	return res
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		AppName: s.AppName,
		UserID:  s.UserID,
		ID:      s.ID,
		State:   maps.Clone(s.State),
		Events:  make([]Event, len(s.Events)),
		Created: s.Created,
		Updated: s.Updated,
	}
	if clone.State == nil {
		clone.State = map[string]any{}
	}
	copy(clone.Events, s.Events)
	return clone
}

// SessionStore persists sessions and their evolving state / event history.
//
// Stores must serialize mutations per session key so concurrent
// conversations sharing a key never lose updates; operations on different
// keys are independent. Get on a missing key returns an error wrapping
// ErrSessionNotFound.
type SessionStore interface {
	Create(ctx context.Context, key SessionKey, state map[string]any) (*Session, error)
	Get(ctx context.Context, key SessionKey) (*Session, error)
	List(ctx context.Context, appName, userID string) ([]SessionKey, error)
	SetState(ctx context.Context, key SessionKey, k string, v any) error
	ApplyDelta(ctx context.Context, key SessionKey, delta map[string]any) error
	AppendEvent(ctx context.Context, key SessionKey, ev Event) error
}
