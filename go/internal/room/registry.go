package room

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/truthbid/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Registry maps room codes to live sessions. All creation and removal of
// sessions goes through it.
type Registry struct {
	store Store
	clock clockwork.Clock
	codes CodeSource
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore replaces the default in-memory store.
func WithStore(store Store) Option {
	return func(r *Registry) { r.store = store }
}

// WithClock replaces the real clock used for session timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Registry) { r.clock = clock }
}

// WithCodeSource replaces the random room code generator.
func WithCodeSource(codes CodeSource) Option {
	return func(r *Registry) { r.codes = codes }
}

// NewRegistry creates a registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		store: NewMemoryStore(),
		clock: clockwork.NewRealClock(),
		codes: RandomCode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clock returns the registry's clock.
func (r *Registry) Clock() clockwork.Clock {
	return r.clock
}

// Create opens a session hosted by host under a fresh unique code.
func (r *Registry) Create(host models.Participant, game *models.GameState) (*Session, error) {
	if strings.TrimSpace(host.DisplayName) == "" {
		return nil, ErrInvalidName
	}

	now := r.clock.Now()
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := r.codes()
		sess := newSession(code, host, game, now)
		if r.store.Insert(code, sess) {
			return sess, nil
		}
		log.Debug().
			Str("room_code", code).
			Int("attempt", attempt).
			Msg("room code collision")
	}
	return nil, ErrCodeGenerationExhausted
}

// Lookup returns the live session for code.
func (r *Registry) Lookup(code string) (*Session, bool) {
	return r.store.Get(code)
}

// Delete removes the session for code and cancels its scheduled work. It is
// a no-op if the code is unknown.
func (r *Registry) Delete(code string) (*Session, bool) {
	sess, ok := r.store.Delete(code)
	if !ok {
		return nil, false
	}
	sess.close()
	return sess, true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.store.Len()
}

// ExpiryReason tells why a session was swept. Clients are not told.
type ExpiryReason string

const (
	ReasonExpired  ExpiryReason = "expired"
	ReasonInactive ExpiryReason = "inactive"
)

// ExpiryPolicy bounds session lifetime.
type ExpiryPolicy struct {
	MaxAge  time.Duration
	MaxIdle time.Duration
}

// DefaultExpiryPolicy returns a two hour age limit and thirty minute idle limit.
func DefaultExpiryPolicy() ExpiryPolicy {
	return ExpiryPolicy{
		MaxAge:  2 * time.Hour,
		MaxIdle: 30 * time.Minute,
	}
}

// Expiry describes a swept session.
type Expiry struct {
	Code          string
	Reason        ExpiryReason
	ConnectionIDs []string
}

// Sweep removes every session older than policy.MaxAge or idle longer than
// policy.MaxIdle at now. notify, if set, is called for each session before it
// is deleted. The session stays locked from the expiry decision through the
// delete, so nobody can join a room that is being swept.
func (r *Registry) Sweep(now time.Time, policy ExpiryPolicy, notify func(Expiry)) []Expiry {
	var swept []Expiry
	for _, sess := range r.store.List() {
		if exp, ok := r.sweepOne(sess, now, policy, notify); ok {
			log.Info().
				Str("room_code", exp.Code).
				Str("reason", string(exp.Reason)).
				Msg("room removed by sweep")
			swept = append(swept, exp)
		}
	}
	return swept
}

func (r *Registry) sweepOne(sess *Session, now time.Time, policy ExpiryPolicy, notify func(Expiry)) (Expiry, bool) {
	sess.Lock()
	defer sess.Unlock()

	if sess.Closed() {
		return Expiry{}, false
	}
	var reason ExpiryReason
	switch {
	case now.Sub(sess.CreatedAt) > policy.MaxAge:
		reason = ReasonExpired
	case now.Sub(sess.LastActivity()) > policy.MaxIdle:
		reason = ReasonInactive
	default:
		return Expiry{}, false
	}

	exp := Expiry{
		Code:          sess.Code,
		Reason:        reason,
		ConnectionIDs: sess.ConnectionIDs(),
	}
	if notify != nil {
		notify(exp)
	}
	if !r.store.CompareAndDelete(sess.Code, sess) {
		return Expiry{}, false
	}
	sess.close()
	return exp, true
}
