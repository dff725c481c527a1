// Package session persists wizard sessions in Redis. A session is ephemeral
// by design: it lives for the configured TTL past the last touch and is
// never written to durable storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lead_funnel_backend/internal/wizard/domain"
	"lead_funnel_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned for missing or expired sessions.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "wizard:session:"

// Session is one wizard run: current step, the form aggregate, the
// tri-state flags and the controller's one-shot guards.
type Session struct {
	ID     string          `json:"id"`
	FlowID string          `json:"flowId"`
	Step   int             `json:"step"`
	Form   domain.FormData `json:"form"`

	// Errors holds inline field validation messages keyed by field name.
	Errors map[string]string `json:"errors"`

	DataStatus    domain.DataStatus    `json:"dataStatus"`
	AddressStatus domain.AddressStatus `json:"addressStatus"`

	// AddressRequestKey identifies the inputs of the last scheduled
	// debounced lookup; stale results carrying a different key are dropped.
	AddressRequestKey string `json:"addressRequestKey"`

	// AutoFetched guards the deep-link auto-advance so it fires at most
	// once per session, independent of the step index.
	AutoFetched bool `json:"autoFetched"`

	// Submitting is true while a lead submission attempt is pending.
	Submitting bool `json:"submitting"`
	// Completed marks the absorbing terminal step.
	Completed bool `json:"completed"`

	// InstallerIDs are the ids of the last-fetched installer list; the
	// selected installer must reference one of them.
	InstallerIDs []string `json:"installerIds"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates a session at step 1 with an all-default form.
func New(flowID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:            uuid.NewString(),
		FlowID:        flowID,
		Step:          1,
		Form:          domain.NewFormData(),
		Errors:        map[string]string{},
		DataStatus:    domain.DataUnknown,
		AddressStatus: domain.AddressIdle,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Reset discards all collected progress: the form returns to defaults and
// the enrichment/validation flags to their initial states. The auto-fetch
// guard survives; it is once per session, not once per visit to step 1.
func (s *Session) Reset() {
	s.Form = domain.NewFormData()
	s.Errors = map[string]string{}
	s.DataStatus = domain.DataUnknown
	s.AddressStatus = domain.AddressIdle
	s.AddressRequestKey = ""
	s.InstallerIDs = nil
}

// Store reads and writes sessions in Redis and hands out the per-session
// locks that serialize all form merges (single-writer discipline).
type Store struct {
	rdb   *redis.Client
	ttl   time.Duration
	locks sync.Map
	log   *logger.Logger
}

// NewStore creates a session store with the given TTL.
func NewStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{rdb: rdb, ttl: ttl, log: log}
}

// Lock acquires the session's in-process mutex and returns the unlock
// function. Every read-modify-write of a session must run under this lock;
// it is what keeps the debounced validation callback, the enrichment result
// and user updates from interleaving partial writes.
func (s *Store) Lock(id string) func() {
	actual, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Get loads a session. Returns ErrNotFound for missing or expired ids.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.log.Error("corrupt session payload", "session_id", id, "error", err)
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session and drops its lock entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.locks.Delete(id)
	if err := s.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
