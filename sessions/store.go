package sessions

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/go-storefront-client/internal/errors"
	"github.com/jrsteele09/go-storefront-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for the current identity.
//
// It has two states, Anonymous and Authenticated. SetCredentials and
// UpdateUser move to Authenticated, Logout moves to Anonymous. Every
// mutation persists a snapshot to Storage; a persistence failure is logged
// and does not undo the in-memory transition.
type Store struct {
	// persistMu orders each transition together with its storage write, so
	// the persisted snapshot always matches the last transition.
	persistMu sync.Mutex

	mu      sync.RWMutex
	state   State
	storage Storage
	key     string
	logger  zerolog.Logger
}

type Option func(*Store)

// WithLogger overrides the zerolog global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithKey overrides StateKey, so several identities can share one Storage.
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// NewStore builds a Store and primes it from the persisted snapshot. A
// missing, unreadable or inconsistent snapshot starts the store Anonymous.
func NewStore(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     StateKey,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := s.load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("Ignoring persisted session state")
		state = Anonymous()
	}
	s.state = state
	return s
}

func (s *Store) load(ctx context.Context) (State, error) {
	if s.storage == nil {
		return Anonymous(), nil
	}
	data, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return State{}, errors.Wrapf(errors.ErrStorage, "load %s: %v", s.key, err)
	}
	if !found || len(data) == 0 {
		return Anonymous(), nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, errors.Wrapf(errors.ErrCorruptedState, "decode %s: %v", s.key, err)
	}
	if !state.Consistent() {
		return State{}, errors.Wrapf(errors.ErrCorruptedState, "%s: authenticated flag disagrees with identity", s.key)
	}
	return state, nil
}

// SetCredentials replaces the identity after an explicit login.
func (s *Store) SetCredentials(ctx context.Context, u *users.User) {
	s.authenticate(ctx, u, "SetCredentials")
}

// UpdateUser replaces the identity after a silent refresh or a profile
// update. The transition is identical to SetCredentials.
func (s *Store) UpdateUser(ctx context.Context, u *users.User) {
	s.authenticate(ctx, u, "UpdateUser")
}

func (s *Store) authenticate(ctx context.Context, u *users.User, op string) {
	if u == nil {
		// A nil identity cannot be authenticated.
		s.Logout(ctx)
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.state = Authenticated(u)
	snapshot := s.state.clone()
	s.mu.Unlock()

	s.persist(ctx, op, snapshot)
}

// Logout clears the identity and removes the persisted snapshot. Calling it
// while already Anonymous leaves the same observable state.
func (s *Store) Logout(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	s.state = Anonymous()
	s.mu.Unlock()

	if s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logger.Err(err).Str("key", s.key).Msg("Logout: failed to remove persisted session")
	}
}

func (s *Store) persist(ctx context.Context, op string, state State) {
	if s.storage == nil {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Err(err).Str("op", op).Msg("Failed to encode session state")
		return
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Err(err).Str("op", op).Str("key", s.key).Msg("Failed to persist session state")
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// User returns a copy of the current identity, or nil when Anonymous.
func (s *Store) User() *users.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User.Clone()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// Role returns the current role, or users.RoleNone when Anonymous.
func (s *Store) Role() users.RoleType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Role()
}

func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAdmin()
}
