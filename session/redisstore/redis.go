// Package redisstore persists sessions in Redis so conversations survive
// process restarts. Each session is a JSON document; updates run as
// optimistic WATCH transactions so concurrent writers on one key never lose
// each other's changes.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/session"
)

const maxTxRetries = 16

// Config holds Redis connection settings for the session store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration // zero means no expiry
}

// Store implements core.SessionStore on top of Redis.
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
	opts   session.Options
}

var _ core.SessionStore = (*Store)(nil)

// New connects a Store using cfg.
func New(cfg Config, optFns ...func(o *session.Options)) *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewFromClient(client, cfg.Prefix, cfg.TTL, optFns...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client goredis.UniversalClient, prefix string, ttl time.Duration, optFns ...func(o *session.Options)) *Store {
	if prefix == "" {
		prefix = "adk:session:"
	}
	return &Store{client: client, prefix: prefix, ttl: ttl, opts: session.Apply(optFns...)}
}

// Create stores a new session document. Without overwrite it uses SETNX so
// a concurrent duplicate create fails with core.ErrSessionExists.
func (s *Store) Create(ctx context.Context, key core.SessionKey, state map[string]any) (*core.Session, error) {
	if key.SessionID == "" {
		key.SessionID = s.opts.NewID()
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	sess := core.NewSession(key, state)
	raw, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	k := s.sessionKey(key)
	if s.opts.Overwrite {
		if err := s.client.Set(ctx, k, raw, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	} else {
		ok, err := s.client.SetNX(ctx, k, raw, s.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("create %s: %w", key, core.ErrSessionExists)
		}
	}

	if err := s.client.SAdd(ctx, s.indexKey(key.AppName, key.UserID), key.SessionID).Err(); err != nil {
		return nil, fmt.Errorf("failed to add session to index: %w", err)
	}

	s.opts.Logger.Debug("session.create", "session", key.String(), "backend", "redis")

	return sess, nil
}

// Get loads a snapshot of the session. Changes to the returned value are not
// persisted; use SetState / ApplyDelta / AppendEvent.
func (s *Store) Get(ctx context.Context, key core.SessionKey) (*core.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("get %s: %w", key, core.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return decode(raw)
}

// List returns the keys of all sessions owned by appName/userID, sorted by
// session id. Index entries whose document expired are skipped.
func (s *Store) List(ctx context.Context, appName, userID string) ([]core.SessionKey, error) {
	if err := core.ValidateKeyParts(appName, userID); err != nil {
		return nil, err
	}
	ids, err := s.client.SMembers(ctx, s.indexKey(appName, userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	sort.Strings(ids)

	keys := make([]core.SessionKey, 0, len(ids))
	for _, id := range ids {
		key := core.SessionKey{AppName: appName, UserID: userID, SessionID: id}
		n, err := s.client.Exists(ctx, s.sessionKey(key)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check session existence: %w", err)
		}
		if n > 0 {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// SetState writes a single state entry.
func (s *Store) SetState(ctx context.Context, key core.SessionKey, k string, v any) error {
	return s.update(ctx, key, func(sess *core.Session) { sess.SetState(k, v) })
}

// ApplyDelta merges delta into the session state.
func (s *Store) ApplyDelta(ctx context.Context, key core.SessionKey, delta map[string]any) error {
	if len(delta) == 0 {
		return nil
	}
	return s.update(ctx, key, func(sess *core.Session) { sess.ApplyStateDelta(delta) })
}

// AppendEvent adds ev to the session history.
func (s *Store) AppendEvent(ctx context.Context, key core.SessionKey, ev core.Event) error {
	return s.update(ctx, key, func(sess *core.Session) { sess.AddEvent(ev) })
}

// Ping checks if the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// update applies fn to the stored document inside a WATCH transaction,
// retrying when another writer modified the key in between.
func (s *Store) update(ctx context.Context, key core.SessionKey, fn func(sess *core.Session)) error {
	k := s.sessionKey(key)

	txf := func(tx *goredis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return fmt.Errorf("update %s: %w", key, core.ErrSessionNotFound)
			}
			return err
		}
		sess, err := decode(raw)
		if err != nil {
			return err
		}

		fn(sess)

		out, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, k, out, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if err == nil {
			return nil
		}
		if errors.Is(err, goredis.TxFailedErr) {
			s.opts.Logger.Debug("session.update.retry", "session", key.String(), "attempt", i+1)
			continue
		}
		return err
	}
	return fmt.Errorf("update %s: too many concurrent modifications", key)
}

func decode(raw []byte) (*core.Session, error) {
	sess := &core.Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.State == nil {
		sess.State = map[string]any{}
	}
	if sess.Events == nil {
		sess.Events = []core.Event{}
	}
	return sess, nil
}

// Session documents live at prefix+app:user:session and index sets at
// prefix+app:user. Validated components never contain the separator, so the
// two layouts cannot collide.
func (s *Store) sessionKey(key core.SessionKey) string {
	return s.prefix + strings.Join([]string{key.AppName, key.UserID, key.SessionID}, core.KeySeparator)
}

func (s *Store) indexKey(appName, userID string) string {
	return s.prefix + appName + core.KeySeparator + userID
}
