package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Ygeth/adkProject/core"
)

// InMemoryStore is a volatile SessionStore storing sessions in a process
// local map. Get returns the live session, so mutations made through the
// session (or the update methods) are visible to every holder. The map lock
// only guards membership; state access is serialized by each session's own
// mutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[core.SessionKey]*core.Session
	opts     Options
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[core.SessionKey]*core.Session),
		opts:     Apply(optFns...),
	}
}

// Create registers a new session for key seeded with a copy of state. An
// empty SessionID is replaced with a generated one. Creating an existing key
// fails with core.ErrSessionExists unless the store was built WithOverwrite.
func (s *InMemoryStore) Create(_ context.Context, key core.SessionKey, state map[string]any) (*core.Session, error) {
	if key.SessionID == "" {
		key.SessionID = s.opts.NewID()
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[key]; exists && !s.opts.Overwrite {
		return nil, fmt.Errorf("create %s: %w", key, core.ErrSessionExists)
	}

	sess := core.NewSession(key, state)
	s.sessions[key] = sess

	s.opts.Logger.Debug("session.create", "session", key.String(), "state_keys", len(state))

	return sess, nil
}

// Get returns the live session for key.
func (s *InMemoryStore) Get(_ context.Context, key core.SessionKey) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", key, core.ErrSessionNotFound)
	}
	return sess, nil
}

// List returns the keys of all sessions owned by appName/userID, sorted by
// session id.
func (s *InMemoryStore) List(_ context.Context, appName, userID string) ([]core.SessionKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]core.SessionKey, 0)
	for k := range s.sessions {
		if k.AppName == appName && k.UserID == userID {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].SessionID < keys[j].SessionID })
	return keys, nil
}

// SetState writes a single state entry.
func (s *InMemoryStore) SetState(ctx context.Context, key core.SessionKey, k string, v any) error {
	sess, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	sess.SetState(k, v)
	s.opts.Logger.Debug("session.state.set", "session", key.String(), "key", k)
	return nil
}

// ApplyDelta merges delta into the session state.
func (s *InMemoryStore) ApplyDelta(ctx context.Context, key core.SessionKey, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}
	sess, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	sess.ApplyStateDelta(delta)
	s.opts.Logger.Debug("session.state.delta", "session", key.String(), "keys", len(delta))
	return nil
}

// AppendEvent adds ev to the session history.
func (s *InMemoryStore) AppendEvent(ctx context.Context, key core.SessionKey, ev core.Event) error {
	sess, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	sess.AddEvent(ev)
	return nil
}
