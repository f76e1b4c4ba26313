package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/storefront/database"
	"github.com/ray-remotestate/storefront/models"
)

type SessionState struct {
	Token           string
	ProfileID       string
	IsAuthenticated bool
	IsLoading       bool
}

// Authenticator is the part of the API client the session needs to log in.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	GetMySeller(ctx context.Context) (*models.Seller, error)
}

// Session holds the merchant's credentials. It starts loading and resolves to
// authenticated or unauthenticated once the persisted keys have been read.
type Session struct {
	store database.KeyStore
	log   *logrus.Entry
	ready chan struct{}
	subs  observers[SessionState]

	mu sync.Mutex
	st SessionState
	// set once the token or the profile id changed in memory, so the
	// bootstrap read must not overwrite it
	tokenChanged   bool
	profileChanged bool
}

type change int

const (
	changeNone change = iota
	changeProfile
	changeToken
)

// NewSession starts reading the persisted session in the background.
func NewSession(ctx context.Context, store database.KeyStore, log *logrus.Logger) *Session {
	s := &Session{
		store: store,
		log:   orStandard(log).WithField("store", "session"),
		ready: make(chan struct{}),
		st:    SessionState{IsLoading: true},
	}
	go s.bootstrap(ctx)
	return s
}

func (s *Session) bootstrap(ctx context.Context) {
	defer close(s.ready)

	token, hasToken, err := s.store.Get(ctx, database.KeySessionToken)
	var profileID string
	if err == nil {
		profileID, _, err = s.store.Get(ctx, database.KeyProfileID)
	}
	if err != nil {
		s.log.WithError(err).Error("failed to load persisted session")
	}

	s.apply(changeNone, func(st *SessionState) {
		st.IsLoading = false
		// a login or logout that finished first wins over what was on disk
		if err != nil || s.tokenChanged || !hasToken || token == "" {
			return
		}
		st.Token = token
		st.IsAuthenticated = true
		if !s.profileChanged {
			st.ProfileID = profileID
		}
	})
}

// Ready is closed once the persisted session has been read.
func (s *Session) Ready() <-chan struct{} { return s.ready }

func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *Session) Subscribe(fn func(SessionState)) (unsubscribe func()) {
	return s.subs.subscribe(fn)
}

// Login exchanges credentials for a token and resolves the seller profile.
func (s *Session) Login(ctx context.Context, auth Authenticator, username, password string) error {
	creds := models.Credentials{Username: username, Password: password}
	if err := creds.Validate(); err != nil {
		return err
	}
	res, err := auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.store.Set(ctx, database.KeySessionToken, res.Token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}

	profileID := res.SellerProfileID
	if profileID == "" {
		seller, err := auth.GetMySeller(ctx)
		if err != nil {
			s.log.WithError(err).Warn("logged in without a seller profile")
		} else {
			profileID = seller.ID
		}
	}
	if profileID != "" {
		if err := s.store.Set(ctx, database.KeyProfileID, profileID); err != nil {
			s.log.WithError(err).Error("failed to persist seller profile id")
		}
	}

	s.update(func(st *SessionState) {
		st.Token = res.Token
		st.ProfileID = profileID
		st.IsAuthenticated = true
	})
	s.log.WithField("username", username).Info("logged in")
	return nil
}

// SetSession adopts a session obtained elsewhere, e.g. right after registration.
func (s *Session) SetSession(ctx context.Context, token, profileID string) error {
	if token == "" {
		return &models.ValidationError{Field: "token", Message: "is required"}
	}
	if err := s.store.Set(ctx, database.KeySessionToken, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	if err := s.persistProfileID(ctx, profileID); err != nil {
		return err
	}
	s.update(func(st *SessionState) {
		st.Token = token
		st.ProfileID = profileID
		st.IsAuthenticated = true
	})
	return nil
}

// UpdateProfileID persists id, or forgets the stored one when id is empty.
func (s *Session) UpdateProfileID(ctx context.Context, id string) error {
	if err := s.persistProfileID(ctx, id); err != nil {
		return err
	}
	s.apply(changeProfile, func(st *SessionState) { st.ProfileID = id })
	return nil
}

func (s *Session) persistProfileID(ctx context.Context, id string) error {
	if id == "" {
		if err := s.store.Remove(ctx, database.KeyProfileID); err != nil {
			return fmt.Errorf("remove seller profile id: %w", err)
		}
		return nil
	}
	if err := s.store.Set(ctx, database.KeyProfileID, id); err != nil {
		return fmt.Errorf("persist seller profile id: %w", err)
	}
	return nil
}

// Logout forgets the persisted keys and resets the in-memory session. The
// in-memory state is reset even when the store fails.
func (s *Session) Logout(ctx context.Context) error {
	err := database.Clear(ctx, s.store, database.KeySessionToken, database.KeyProfileID)
	if err != nil {
		s.log.WithError(err).Error("failed to clear persisted session")
	}
	s.update(func(st *SessionState) {
		st.Token = ""
		st.ProfileID = ""
		st.IsAuthenticated = false
	})
	s.log.Info("logged out")
	return err
}

func (s *Session) update(fn func(st *SessionState)) {
	s.apply(changeToken, fn)
}

func (s *Session) apply(c change, fn func(st *SessionState)) {
	s.mu.Lock()
	fn(&s.st)
	switch c {
	case changeToken:
		s.tokenChanged, s.profileChanged = true, true
	case changeProfile:
		s.profileChanged = true
	}
	snap := s.st
	s.mu.Unlock()
	s.subs.publish(snap)
}
