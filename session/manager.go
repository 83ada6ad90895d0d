package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/vinnote-client/api"
	"github.com/jrsteele09/vinnote-client/credentials"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gateway is the subset of the remote API the session needs.
type Gateway interface {
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetMe(ctx context.Context) (*users.Profile, error)
}

var _ Gateway = (*api.Client)(nil)

// State is the in-memory authentication state.
type State struct {
	User      *users.Profile
	IsLoading bool
	Error     string
	// TokenExpiry is when the stored access token expires, zero when unknown.
	TokenExpiry time.Time
}

// Result is returned by Login and Register. Message is set only on failure.
type Result struct {
	Success bool
	User    *users.Profile
	Message string
}

// Manager owns the authentication lifecycle. Tokens live only in the credential store,
// never in the Manager.
type Manager struct {
	gateway Gateway
	creds   *credentials.Credentials
	logger  zerolog.Logger
	nowTime func() time.Time

	lock  sync.RWMutex
	state State
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// New creates a Manager with an empty session. Call RestoreSession at start up.
func New(gateway Gateway, creds *credentials.Credentials, options ...ManagerOption) (*Manager, error) {
	if gateway == nil {
		return nil, errors.New("[session.New] gateway is required")
	}
	if creds == nil {
		return nil, errors.New("[session.New] credentials are required")
	}

	m := &Manager{
		gateway: gateway,
		creds:   creds,
		logger:  log.Logger,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	m.logger = m.logger.With().Str("component", "session").Logger()
	return m, nil
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Login exchanges credentials for tokens, then loads the profile. If the profile fetch fails
// the new tokens stay stored and the error is reported; nothing is rolled back.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	return m.authenticate(ctx, "login", func() (*api.AuthResponse, error) {
		return m.gateway.Login(ctx, api.LoginRequest{Email: email, Password: password})
	})
}

// Register creates an account and signs in, with the same contract as Login.
func (m *Manager) Register(ctx context.Context, email, password, name string, userType users.UserType) Result {
	return m.authenticate(ctx, "register", func() (*api.AuthResponse, error) {
		return m.gateway.Register(ctx, api.RegisterRequest{
			Email:    email,
			Password: password,
			Name:     name,
			UserType: userType,
		})
	})
}

// SubmitRegistration validates the sign-up form locally and registers with the normalized
// values. Invalid forms never reach the network and leave the session state alone.
func (m *Manager) SubmitRegistration(ctx context.Context, form users.RegistrationForm) Result {
	if err := form.Validate(); err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	n := form.Normalized()
	return m.Register(ctx, n.Email, n.Password, n.Name, n.UserType)
}

func (m *Manager) authenticate(ctx context.Context, op string, exchange func() (*api.AuthResponse, error)) Result {
	m.update(func(s *State) {
		s.IsLoading = true
		s.Error = ""
	})

	user, expiry, err := m.exchangeAndLoad(ctx, exchange)
	if err != nil {
		message := errors.Message(err)
		m.logger.Error().Err(err).Str("op", op).Msg("authentication failed")
		m.update(func(s *State) {
			s.IsLoading = false
			s.Error = message
		})
		return Result{Success: false, Message: message}
	}

	m.set(State{User: user, TokenExpiry: expiry})
	m.logger.Info().Str("op", op).Str("user_id", user.ID).Time("expires_at", expiry).Msg("signed in")
	return Result{Success: true, User: user}
}

// exchangeAndLoad stores the token pair from exchange and loads the profile. The returned
// expiry comes from expiresIn, or from the access token itself when the server omits it.
func (m *Manager) exchangeAndLoad(ctx context.Context, exchange func() (*api.AuthResponse, error)) (*users.Profile, time.Time, error) {
	res, err := exchange()
	if err != nil {
		return nil, time.Time{}, err
	}

	tok := res.Token(m.nowTime())
	if err := m.creds.SetTokens(ctx, tok.AccessToken, tok.RefreshToken); err != nil {
		return nil, time.Time{}, err
	}
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry, _ = api.AccessTokenExpiry(tok.AccessToken)
	}

	user, err := m.loadProfile(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return user, expiry, nil
}

func (m *Manager) loadProfile(ctx context.Context) (*users.Profile, error) {
	user, err := m.gateway.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	if err := m.creds.SetUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout tries to revoke the refresh token remotely and always clears local credentials.
// Remote failures are ignored.
func (m *Manager) Logout(ctx context.Context) {
	defer func() {
		if err := m.creds.Clear(ctx); err != nil {
			m.logger.Error().Err(err).Msg("clearing credentials")
		}
		m.set(State{})
	}()

	refreshToken, err := m.creds.RefreshToken(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("reading refresh token for logout")
		return
	}
	if refreshToken == "" {
		return
	}
	if err := m.gateway.Logout(ctx, refreshToken); err != nil {
		m.logger.Debug().Err(err).Msg("remote logout failed, ignoring")
	}
}

// RestoreSession rebuilds the session from stored credentials. An expired access token is
// refreshed once; when that fails the stored credentials are cleared.
func (m *Manager) RestoreSession(ctx context.Context) bool {
	m.update(func(s *State) { s.IsLoading = true })

	user, expiry, err := m.restoreWithStoredToken(ctx)
	if errors.Is(err, errors.ErrNoSession) {
		m.set(State{})
		return false
	}
	if err == nil {
		m.set(State{User: user, TokenExpiry: expiry})
		return true
	}

	m.logger.Debug().Err(err).Msg("stored access token rejected, refreshing")
	user, expiry, err = m.refreshAndRetry(ctx)
	if err != nil {
		m.logger.Info().Err(err).Msg("session could not be restored")
		if clearErr := m.creds.Clear(ctx); clearErr != nil {
			m.logger.Error().Err(clearErr).Msg("clearing credentials")
		}
		m.set(State{})
		return false
	}

	m.set(State{User: user, TokenExpiry: expiry})
	return true
}

func (m *Manager) restoreWithStoredToken(ctx context.Context) (*users.Profile, time.Time, error) {
	token, err := m.creds.AccessToken(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	if token == "" {
		return nil, time.Time{}, errors.ErrNoSession
	}
	expiry, ok := api.AccessTokenExpiry(token)
	if ok {
		m.logger.Debug().Time("expires_at", expiry).Msg("restoring session")
	}

	user, err := m.loadProfile(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return user, expiry, nil
}

func (m *Manager) refreshAndRetry(ctx context.Context) (*users.Profile, time.Time, error) {
	refreshToken, err := m.creds.RefreshToken(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	if refreshToken == "" {
		return nil, time.Time{}, errors.ErrNoRefreshToken
	}

	return m.exchangeAndLoad(ctx, func() (*api.AuthResponse, error) {
		res, err := m.gateway.Refresh(ctx, refreshToken)
		if err != nil {
			return nil, errors.Wrapf(err, "[RestoreSession] refresh")
		}
		return res, nil
	})
}

// ClearError clears the error without touching the user or loading flag.
func (m *Manager) ClearError() {
	m.update(func(s *State) { s.Error = "" })
}

// CachedUser returns the profile snapshot kept in the credential store.
func (m *Manager) CachedUser(ctx context.Context) (*users.Profile, error) {
	return m.creds.User(ctx)
}

// CompleteOnboarding records that the onboarding screens were shown. It survives logout.
func (m *Manager) CompleteOnboarding(ctx context.Context) error {
	return m.creds.SetOnboardingDone(ctx)
}

func (m *Manager) OnboardingDone(ctx context.Context) (bool, error) {
	return m.creds.OnboardingDone(ctx)
}

func (m *Manager) update(fn func(*State)) {
	m.lock.Lock()
	defer m.lock.Unlock()
	fn(&m.state)
}

func (m *Manager) set(s State) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.state = s
}
