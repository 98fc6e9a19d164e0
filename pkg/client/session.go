package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taskdeck/pkg/guard"
)

// ErrNoSession is returned by operations that require a logged-in user.
var ErrNoSession = errors.New("no active session")

// Session is the client-side auth state store. It owns the current user
// object and the persisted token, and serializes access behind a mutex.
// Each mutating operation carries a generation number taken when it
// starts; a response that arrives after a newer operation has begun is
// discarded instead of clobbering fresher state.
type Session struct {
	client *Client
	tokens TokenStore

	mu      sync.Mutex
	user    *User
	gen     uint64
	lastErr error
}

// NewSession creates a session store around an API client and the token
// store the client reads from.
func NewSession(c *Client, tokens TokenStore) *Session {
	return &Session{client: c, tokens: tokens}
}

// User returns the current user, or nil when logged out.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Err returns the error from the most recent failed operation, cleared
// by the next successful one.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// GuardUser converts the current user into the guard layer's view.
// Returns nil when there is no session or the stored token is invalid,
// so the guard treats a malformed or expired token as logged-out.
func (s *Session) GuardUser() *guard.User {
	s.mu.Lock()
	u := s.user
	s.mu.Unlock()

	if u == nil || !HasValidToken(s.tokens) {
		return nil
	}
	return &guard.User{Role: u.Role, RoleName: u.RoleName, IsAdmin: u.IsAdmin}
}

// begin records the start of a mutating operation and returns its
// generation number.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// commit applies fn only if no newer operation has started since gen was
// taken. Returns false when the result was discarded as stale.
func (s *Session) commit(gen uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	fn()
	return true
}

// fail records err for Err unless a newer operation has started.
func (s *Session) fail(gen uint64, err error) {
	s.commit(gen, func() { s.lastErr = err })
}

// Login exchanges credentials for a session. On success the token is
// persisted and the user held in memory; on failure the previous session
// state is left untouched and the error is surfaced.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	gen := s.begin()

	res, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.fail(gen, err)
		return nil, err
	}

	// The token write shares the generation check with the in-memory
	// commit, so a response that lost the race cannot persist a
	// credential into a session that no longer exists.
	var persistErr error
	s.commit(gen, func() {
		if err := s.tokens.Set(res.Token); err != nil {
			persistErr = fmt.Errorf("persist token: %w", err)
			s.lastErr = persistErr
			return
		}
		s.user = res.User
		s.lastErr = nil
	})
	if persistErr != nil {
		return nil, persistErr
	}
	return res.User, nil
}

// Register creates an account and establishes its first session, same
// contract as Login.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	gen := s.begin()

	res, err := s.client.Register(ctx, req)
	if err != nil {
		s.fail(gen, err)
		return nil, err
	}

	var persistErr error
	s.commit(gen, func() {
		if err := s.tokens.Set(res.Token); err != nil {
			persistErr = fmt.Errorf("persist token: %w", err)
			s.lastErr = persistErr
			return
		}
		s.user = res.User
		s.lastErr = nil
	})
	if persistErr != nil {
		return nil, persistErr
	}
	return res.User, nil
}

// Logout tears the session down locally first, then tells the server
// best-effort. The local state is cleared even when the server call
// fails; a revocation the server never heard about only means the token
// record expires on its own.
func (s *Session) Logout(ctx context.Context) {
	gen := s.begin()

	// Capture the credential before the clear, then tear down local
	// state without waiting on the network. A slow revocation endpoint
	// must not keep the user logged in.
	tok, _ := s.tokens.Get()
	_ = s.tokens.Clear()
	s.commit(gen, func() {
		s.user = nil
		s.lastErr = nil
	})

	// Best-effort revocation with the captured token. Failures are
	// swallowed; an unrevoked session record expires on its own.
	if tok != "" {
		_ = s.client.LogoutToken(ctx, tok)
	}
}

// CheckAuth re-hydrates the session from the stored token, called once
// at startup. No token, a malformed token, or any server failure all
// degrade to logged-out; the caller cannot distinguish them and does not
// need to.
func (s *Session) CheckAuth(ctx context.Context) (*User, error) {
	gen := s.begin()

	if !HasValidToken(s.tokens) {
		s.commit(gen, func() {
			_ = s.tokens.Clear()
			s.user = nil
		})
		return nil, nil
	}

	user, err := s.client.Me(ctx)
	if err != nil {
		s.commit(gen, func() {
			_ = s.tokens.Clear()
			s.user = nil
			s.lastErr = err
		})
		return nil, err
	}

	s.commit(gen, func() {
		s.user = user
		s.lastErr = nil
	})
	return user, nil
}

// UpdateProfile PUTs the given fields and replaces the stored user with
// the server's representation. Requires an active session; on failure
// the existing session is untouched.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	s.mu.Lock()
	current := s.user
	s.mu.Unlock()
	if current == nil {
		return nil, ErrNoSession
	}

	gen := s.begin()

	updated, err := s.client.UpdateUser(ctx, current.ID, update)
	if err != nil {
		s.fail(gen, err)
		return nil, err
	}

	s.commit(gen, func() {
		s.user = updated
		s.lastErr = nil
	})
	return updated, nil
}
