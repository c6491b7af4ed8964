// Package session holds the client-side authentication state: who is logged
// in, with which role, and whether the persisted copy has been restored yet.
//
// A Session is built once at startup with its collaborators injected. All
// mutations update the in-memory state synchronously under a mutex and enqueue
// the matching snapshot write while still holding it, so the persister sees
// writes in the same order the state changed.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
)

// State is a point-in-time copy of the session.
type State struct {
	Authenticated bool
	Ready         bool
	Role          domain.Role
	User          domain.User
}

// Session is the single source of truth for the current user.
type Session struct {
	profiles ports.ProfileClient
	persist  ports.SnapshotPersister
	log      zerolog.Logger

	mu            sync.RWMutex
	authenticated bool
	ready         bool
	role          domain.Role
	user          domain.User

	restoreOnce sync.Once
	readyCh     chan struct{}
	background  sync.WaitGroup
}

// New returns an unauthenticated session holding the default user.
func New(profiles ports.ProfileClient, persist ports.SnapshotPersister, log zerolog.Logger) *Session {
	return &Session{
		profiles: profiles,
		persist:  persist,
		log:      log.With().Str("component", "session").Logger(),
		role:     domain.DefaultRole,
		user:     domain.DefaultUser(),
		readyCh:  make(chan struct{}),
	}
}

// State returns a copy of the live state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Authenticated: s.authenticated,
		Ready:         s.ready,
		Role:          s.role,
		User:          s.user,
	}
}

// Ready is closed once Restore has finished, whatever its outcome.
func (s *Session) Ready() <-chan struct{} {
	return s.readyCh
}

// Wait blocks until background refreshes started by Restore have returned.
func (s *Session) Wait() {
	s.background.Wait()
}

// Restore hydrates the session from the persisted snapshot. Only the first
// call has any effect. Read and decode failures are logged and the defaults
// kept. When the restored user has an id, its record is refreshed from the
// backend in the background.
func (s *Session) Restore(ctx context.Context) {
	s.restoreOnce.Do(func() {
		defer s.markReady()
		s.restore(ctx)
	})
}

func (s *Session) restore(ctx context.Context) {
	raw, err := s.persist.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			s.log.Warn().Err(err).Msg("failed to read auth state, continuing with defaults")
		}
		return
	}

	snap, err := domain.DecodeSnapshot(raw)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to restore auth state, continuing with defaults")
		return
	}
	if !snap.IsAuthenticated || snap.CurrentUser == nil {
		s.log.Debug().Msg("no authenticated user in saved state")
		return
	}

	user := *snap.CurrentUser
	role := domain.ResolveRole(snap.CurrentRole, user.Role)
	user.Role = domain.ResolveRole(user.Role)

	s.mu.Lock()
	s.authenticated = true
	s.user = user
	s.role = role
	s.mu.Unlock()

	s.log.Info().Str("user_id", user.ID).Str("role", role.String()).Msg("restored authenticated user")

	if user.ID != "" {
		bg := context.WithoutCancel(ctx)
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.RefreshUserData(bg, user.ID)
		}()
	}
}

func (s *Session) markReady() {
	s.mu.Lock()
	s.ready = true
	s.mu.Unlock()
	close(s.readyCh)
}

// Login merges in over the default user and marks the session authenticated
// before any network call. When the merged record has an id, the backend
// profile is fetched and merged over it; a failed fetch only means the
// supplied data is persisted as-is.
func (s *Session) Login(ctx context.Context, in domain.UserPatch) {
	user := domain.DefaultUser().Apply(in)
	role := domain.DefaultRole
	if in.Role != nil {
		role = domain.ResolveRole(*in.Role)
	}
	user.Role = role

	s.mu.Lock()
	s.authenticated = true
	s.role = role
	s.user = user
	s.mu.Unlock()

	log := s.log.With().Str("user_id", user.ID).Str("role", role.String()).Logger()
	log.Info().Msg("logged in")

	if user.ID != "" {
		fresh, err := s.profiles.Fetch(ctx, user.ID)
		if err != nil {
			log.Warn().Err(err).Msg("profile fetch failed, using supplied data")
		} else {
			user = user.Apply(fresh)
			s.mu.Lock()
			s.user = user
			s.mu.Unlock()
			log.Debug().Msg("profile enriched from backend")
		}
	}

	s.mu.Lock()
	s.persist.Save(domain.Snapshot{IsAuthenticated: true, CurrentUser: &user, CurrentRole: role})
	s.mu.Unlock()
}

// Logout resets to the anonymous default and deletes the stored snapshot.
func (s *Session) Logout() {
	s.mu.Lock()
	s.authenticated = false
	s.role = domain.DefaultRole
	s.user = domain.DefaultUser()
	s.persist.Delete()
	s.mu.Unlock()

	s.log.Info().Msg("logged out")
}

// SetRole switches the live role and rewrites only the role field of the
// stored snapshot, if one exists. The user record's own role is not touched.
func (s *Session) SetRole(role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("set role: %w: %q", domain.ErrInvalidRole, role)
	}

	s.mu.Lock()
	s.role = role
	s.persist.PatchRole(role)
	s.mu.Unlock()
	return nil
}

// UpdateUser applies patch to the current user. When authenticated with an
// id, the backend must accept the update first; its rejection is returned and
// local state is left unchanged. Otherwise the change is local only.
func (s *Session) UpdateUser(ctx context.Context, patch domain.UserPatch) error {
	patch = patch.WithoutID()

	s.mu.RLock()
	authenticated, id := s.authenticated, s.user.ID
	s.mu.RUnlock()

	if authenticated && id != "" {
		if err := s.profiles.Update(ctx, id, patch); err != nil {
			s.log.Error().Err(err).Str("user_id", id).Msg("backend rejected user update")
			return fmt.Errorf("update user: %w", err)
		}
	} else {
		s.log.Debug().Msg("no user id or not authenticated, updating local state only")
	}

	s.mu.Lock()
	updated := s.user.Apply(patch)
	s.user = updated
	s.persist.Save(domain.Snapshot{
		IsAuthenticated: s.authenticated,
		CurrentUser:     &updated,
		CurrentRole:     domain.ResolveRole(updated.Role, s.role),
	})
	s.mu.Unlock()
	return nil
}

// RefreshUserData fetches the profile for id and merges it over the live user.
// Failures leave the state untouched and are only logged.
func (s *Session) RefreshUserData(ctx context.Context, id string) {
	fresh, err := s.profiles.Fetch(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", id).Msg("failed to refresh user data")
		return
	}

	s.mu.Lock()
	updated := s.user.Apply(fresh)
	s.user = updated
	s.persist.Save(domain.Snapshot{
		IsAuthenticated: s.authenticated,
		CurrentUser:     &updated,
		CurrentRole:     s.role,
	})
	s.mu.Unlock()

	s.log.Debug().Str("user_id", id).Msg("user data refreshed")
}
