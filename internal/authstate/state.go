// Package authstate tracks the current session's user and profile as an
// explicit object with subscribe/notify semantics.
//
// It replaces the implicit, globally-reactive auth state of the original
// client: one State is constructed at application start, injected where
// needed, and torn down with the process. Components observe transitions via
// Subscribe instead of reading a global.
//
// States and transitions:
//
//	Unauthenticated ── SignedIn ──▶ ProfileLoading ──▶ Authenticated
//	       ▲                                │
//	       └──────────── SignedOut ◀────────┘
//
// Each transition bumps a generation counter. A profile load that finishes
// after a newer transition has started is discarded, so a slow fetch can
// never overwrite fresher state.
package authstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/pulse/internal/model"
)

// Phase is the auth state machine's current position.
type Phase int

const (
	Unauthenticated Phase = iota
	ProfileLoading
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case ProfileLoading:
		return "profile-loading"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Snapshot is an immutable view of the state at one point in time.
// Profile is nil until the load for the current generation resolves.
type Snapshot struct {
	Phase   Phase
	UserID  string
	Profile *model.Profile
}

// ProfileLoader resolves a user ID to its profile row. The session service's
// bootstrap-then-load satisfies this.
type ProfileLoader func(ctx context.Context, userID string) (*model.Profile, error)

// State is the session-lifetime auth state. Safe for concurrent use.
type State struct {
	mu     sync.Mutex
	gen    uint64
	phase  Phase
	userID string
	prof   *model.Profile

	subs    map[int]func(Snapshot)
	nextSub int

	load   ProfileLoader
	logger *slog.Logger
}

// New creates a State in the unauthenticated phase.
func New(load ProfileLoader, logger *slog.Logger) *State {
	return &State{
		subs:   make(map[int]func(Snapshot)),
		load:   load,
		logger: logger,
	}
}

// Current returns a snapshot of the present state.
func (s *State) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Phase: s.phase, UserID: s.userID, Profile: s.prof}
}

// Subscribe registers fn to be called on every transition and returns an
// unsubscribe function. fn is invoked outside the state lock.
func (s *State) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// SignedIn transitions to ProfileLoading for userID and resolves the profile
// via the loader. If another transition happens while the load is in flight
// (sign-out, or a different user signing in), the loaded profile is
// discarded instead of clobbering the newer state.
func (s *State) SignedIn(ctx context.Context, userID string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.phase = ProfileLoading
	s.userID = userID
	s.prof = nil
	s.mu.Unlock()
	s.notify()

	prof, err := s.load(ctx, userID)

	s.mu.Lock()
	if s.gen != gen {
		// A newer transition won the race; this result is stale.
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.logger.Error("loading profile for auth state",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		// Stay in ProfileLoading with no profile; the user is still
		// authenticated, the profile just isn't cached.
		s.mu.Unlock()
		return
	}
	s.prof = prof
	s.phase = Authenticated
	s.mu.Unlock()
	s.notify()
}

// SignedOut transitions to Unauthenticated, discarding the cached profile
// and invalidating any in-flight profile load.
func (s *State) SignedOut() {
	s.mu.Lock()
	s.gen++
	s.phase = Unauthenticated
	s.userID = ""
	s.prof = nil
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	s.mu.Lock()
	snap := Snapshot{Phase: s.phase, UserID: s.userID, Profile: s.prof}
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
