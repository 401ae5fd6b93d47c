package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/minichat/backend/internal/clock"
	"github.com/zhouzirui/minichat/backend/internal/model/chat"
	"github.com/zhouzirui/minichat/backend/internal/model/profile"
	"github.com/zhouzirui/minichat/backend/internal/service/responder"
	"github.com/zhouzirui/minichat/backend/internal/service/widget"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many mounted widgets")
)

// Options configures the registry.
type Options struct {
	Widget      widget.Options
	MaxSessions int
}

type entry struct {
	session    chat.Session
	profile    profile.Profile
	controller *widget.Controller
}

// Service tracks mounted widget instances. Each session owns exactly one
// controller; unmounting discards its history.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	profiles profile.Store
	clock    clock.Clock
	opts     Options
}

// NewService bootstraps an empty in-memory registry.
func NewService(profiles profile.Store, clk clock.Clock, opts Options) *Service {
	return &Service{
		sessions: make(map[string]*entry),
		profiles: profiles,
		clock:    clk,
		opts:     opts,
	}
}

// Mount creates a widget session for profileID, or the default profile when empty.
func (s *Service) Mount(_ context.Context, profileID string) (chat.Session, error) {
	var p profile.Profile
	if profileID == "" {
		p = s.profiles.Default()
	} else {
		found, ok := s.profiles.FindByID(profileID)
		if !ok {
			return chat.Session{}, ErrProfileNotFound
		}
		p = found
	}

	gen, err := responder.NewCanned(p.Replies)
	if err != nil {
		return chat.Session{}, err
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		ProfileID: p.ID,
		CreatedAt: s.clock.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.MaxSessions > 0 && len(s.sessions) >= s.opts.MaxSessions {
		return chat.Session{}, ErrTooManySessions
	}
	s.sessions[session.ID] = &entry{
		session:    session,
		profile:    p,
		controller: widget.New(s.clock, gen, s.opts.Widget, session.ID),
	}

	log.Info().Str("session_id", session.ID).Str("profile", p.ID).Msg("widget mounted")
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return e.session, nil
}

// Controller returns the controller of a mounted widget.
func (s *Service) Controller(_ context.Context, sessionID string) (*widget.Controller, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	return e.controller, nil
}

// Profile returns the profile a session was mounted with.
func (s *Service) Profile(_ context.Context, sessionID string) (profile.Profile, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return profile.Profile{}, err
	}
	return e.profile, nil
}

// Unmount tears down the session's controller and forgets it.
func (s *Service) Unmount(_ context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	e.controller.Teardown()
	log.Info().Str("session_id", sessionID).Msg("widget unmounted")
	return nil
}

// Shutdown unmounts every session.
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range sessions {
		e.controller.Teardown()
	}
	log.Info().Int("sessions", len(sessions)).Msg("widget registry shut down")
}

// Count returns the number of mounted widgets.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
