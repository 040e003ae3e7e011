// Package session holds the current user in memory for the lifetime of
// the process, backed by the credentials store for instant paint on
// startup.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"suju/storefront/internal/api"
	"suju/storefront/internal/credentials"
	"suju/storefront/internal/models"
)

type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

var ErrValidation = errors.New("validation failed")

type Manager struct {
	api   *api.Client
	creds *credentials.Store
	log   zerolog.Logger

	mu    sync.Mutex
	state State
	user  *models.User
}

func NewManager(client *api.Client, creds *credentials.Store, log zerolog.Logger) *Manager {
	return &Manager{
		api:   client,
		creds: creds,
		log:   log,
		state: StateLoading,
	}
}

// Init resolves the loading state. With a stored token the cached
// profile is painted first, then confirmed against the server; a failed
// refresh at this point means the token is no good, so the session is
// cleared to anonymous. Without a token we go straight to anonymous.
func (m *Manager) Init(ctx context.Context) {
	if _, ok := m.creds.Token(); !ok {
		m.setState(StateAnonymous, nil)
		return
	}

	if cached, err := m.creds.StoredUser(); err == nil && cached != nil {
		m.setState(StateAuthenticated, cached)
	}

	var fresh models.User
	if err := m.api.Get(ctx, "/users/me", nil, &fresh); err != nil {
		m.log.Warn().Err(err).Msg("token validation failed, clearing session")
		if clearErr := m.creds.Clear(); clearErr != nil {
			m.log.Error().Err(clearErr).Msg("clear credentials failed")
		}
		m.setState(StateAnonymous, nil)
		return
	}

	if err := m.creds.SetStoredUser(fresh); err != nil {
		m.log.Error().Err(err).Msg("cache user failed")
	}
	m.setState(StateAuthenticated, &fresh)
}

type LoginInput struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

func (m *Manager) Login(ctx context.Context, input LoginInput) (models.AuthResult, error) {
	var result models.AuthResult
	if err := m.api.Post(ctx, "/auth/login", input, &result); err != nil {
		// State is left untouched on failure.
		return models.AuthResult{}, err
	}

	m.storeAndActivate(result)
	return result, nil
}

type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
	Phone           string `json:"phone,omitempty"`
	AcceptTerms     bool   `json:"-"`
}

// Validate applies the advisory client-side guards. The server
// re-validates everything; these only save a round trip.
func (input RegisterInput) Validate() map[string][]string {
	fields := map[string][]string{}
	if strings.TrimSpace(input.Username) == "" {
		fields["username"] = append(fields["username"], "username is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		fields["email"] = append(fields["email"], "email is required")
	}
	if input.Password == "" {
		fields["password"] = append(fields["password"], "password is required")
	} else if len(input.Password) < 6 {
		fields["password"] = append(fields["password"], "password must be at least 6 characters")
	}
	if input.Password != input.ConfirmPassword {
		fields["confirm_password"] = append(fields["confirm_password"], "passwords do not match")
	}
	if !input.AcceptTerms {
		fields["terms"] = append(fields["terms"], "terms must be accepted")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (m *Manager) Register(ctx context.Context, input RegisterInput) (models.AuthResult, error) {
	if fields := input.Validate(); fields != nil {
		return models.AuthResult{}, &api.Error{
			Kind:    api.KindValidation,
			Message: "please correct the highlighted fields",
			Fields:  fields,
		}
	}

	var result models.AuthResult
	if err := m.api.Post(ctx, "/auth/register", input, &result); err != nil {
		// A duplicate account comes back as one well-defined rejection.
		return models.AuthResult{}, err
	}

	m.storeAndActivate(result)
	return result, nil
}

// Logout takes local effect synchronously; no server round trip is
// needed for the session to end.
func (m *Manager) Logout() {
	if err := m.creds.Clear(); err != nil {
		m.log.Error().Err(err).Msg("clear credentials on logout failed")
	}
	m.setState(StateAnonymous, nil)
}

// RefreshUser re-fetches the profile. A failure here is logged, not a
// forced logout: transient network trouble must not end the session.
// Actual token invalidity surfaces as a 401, which the api client
// handles globally.
func (m *Manager) RefreshUser(ctx context.Context) error {
	var fresh models.User
	if err := m.api.Get(ctx, "/users/me", nil, &fresh); err != nil {
		m.log.Warn().Err(err).Msg("refresh user failed")
		if api.IsUnauthorized(err) {
			m.setState(StateAnonymous, nil)
		}
		return err
	}

	if err := m.creds.SetStoredUser(fresh); err != nil {
		m.log.Error().Err(err).Msg("cache user failed")
	}
	m.setState(StateAuthenticated, &fresh)
	return nil
}

func (m *Manager) storeAndActivate(result models.AuthResult) {
	if err := m.creds.SetToken(result.Token); err != nil {
		m.log.Error().Err(err).Msg("store token failed")
	}
	if err := m.creds.SetStoredUser(result.User); err != nil {
		m.log.Error().Err(err).Msg("cache user failed")
	}
	user := result.User
	m.setState(StateAuthenticated, &user)
}

func (m *Manager) setState(state State, user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) User() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// Expire flips the session to anonymous. Wired as the api client's
// session-expired hook so a 401 anywhere ends the session everywhere.
func (m *Manager) Expire() {
	m.setState(StateAnonymous, nil)
}
