// Package fakeapi is an in-process stand-in for the VinNote REST API used by tests.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jrsteele09/vinnote-client/internal/utils"
	"github.com/jrsteele09/vinnote-client/users"
)

// Route names used by Calls and FailNext.
const (
	RouteLogin    = "POST /auth/login"
	RouteRegister = "POST /auth/register"
	RouteRefresh  = "POST /auth/refresh"
	RouteLogout   = "POST /auth/logout"
	RouteMe       = "GET /users/me"
	RouteFeed     = "GET /feed"
)

const accessTokenTTL = 15 * time.Minute

type account struct {
	password string
	profile  users.Profile
}

type failure struct {
	status int
	body   string
}

// Server is a running fake API. Close it when done.
type Server struct {
	*httptest.Server

	lock          sync.Mutex
	secret        []byte
	accounts      map[string]*account // by email
	accessTokens  map[string]string   // token -> email
	refreshTokens map[string]string   // token -> email
	calls         map[string]int
	failures      map[string][]failure
	feedBody      string
	feedQueries   []url.Values
	envelope      bool
	nowTime       func() time.Time
}

// New starts a fake API. With envelope set, successful bodies are wrapped in {"data": ...}.
func New(envelope bool) *Server {
	s := &Server{
		secret:        []byte(uuid.NewString()),
		accounts:      make(map[string]*account),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
		calls:         make(map[string]int),
		failures:      make(map[string][]failure),
		feedBody:      `{"tastings":[],"hasMore":false}`,
		envelope:      envelope,
		nowTime:       time.Now,
	}

	r := mux.NewRouter()
	r.HandleFunc("/auth/login", s.track(RouteLogin, s.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/auth/register", s.track(RouteRegister, s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.track(RouteRefresh, s.handleRefresh)).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.track(RouteLogout, s.handleLogout)).Methods(http.MethodPost)
	r.HandleFunc("/users/me", s.track(RouteMe, s.handleMe)).Methods(http.MethodGet)
	r.HandleFunc("/feed", s.track(RouteFeed, s.handleFeed)).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

// AddUser registers an account that can log in.
func (s *Server) AddUser(email, password string, profile users.Profile) {
	s.lock.Lock()
	defer s.lock.Unlock()
	profile.Email = email
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	s.accounts[email] = &account{password: password, profile: profile}
}

// IssueTokens mints a token pair for an existing account, as if it had logged in earlier.
func (s *Server) IssueTokens(email string) (string, string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.issue(email)
}

// RevokeAccessTokens makes every issued access token fail with 401, like expiry would.
func (s *Server) RevokeAccessTokens() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.accessTokens = make(map[string]string)
}

// RefreshTokenValid reports whether token can still be exchanged.
func (s *Server) RefreshTokenValid(token string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, ok := s.refreshTokens[token]
	return ok
}

// SetFeed sets the JSON returned by GET /feed.
func (s *Server) SetFeed(body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.feedBody = body
}

// FailNext queues an error response for the next call to route. An empty body sends no content.
func (s *Server) FailNext(route string, status int, body string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, body: body})
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[route]
}

// FeedQueries returns the query strings GET /feed was called with.
func (s *Server) FeedQueries() []url.Values {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]url.Values(nil), s.feedQueries...)
}

func (s *Server) track(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.calls[route]++
		var f *failure
		if queued := s.failures[route]; len(queued) > 0 {
			f = &queued[0]
			s.failures[route] = queued[1:]
		}
		s.lock.Unlock()

		if f != nil {
			if f.body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	acc, ok := s.accounts[body.Email]
	if !ok || acc.password != body.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.writeTokens(w, http.StatusOK, body.Email)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Name     string         `json:"name"`
		UserType users.UserType `json:"userType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid body")
		return
	}

	var problems []string
	if !strings.Contains(body.Email, "@") {
		problems = append(problems, "email must be an email")
	}
	if len(body.Password) < 6 {
		problems = append(problems, "password must be longer than or equal to 6 characters")
	}
	if len(problems) > 0 {
		s.writeJSONStatus(w, http.StatusBadRequest, map[string]any{"message": problems, "statusCode": http.StatusBadRequest}, false)
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, exists := s.accounts[body.Email]; exists {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	now := s.nowTime().UTC().Format(time.RFC3339)
	profile := users.Profile{
		ID:        uuid.NewString(),
		Email:     body.Email,
		Name:      body.Name,
		UserType:  body.UserType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Sommeliers wait for certificate review.
	if body.UserType == users.Sommelier {
		profile.VerificationStatus = utils.Ptr(users.VerificationPending)
	}
	s.accounts[body.Email] = &account{password: body.Password, profile: profile}
	s.writeTokens(w, http.StatusCreated, body.Email)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.lock.Lock()
	defer s.lock.Unlock()
	email, ok := s.refreshTokens[body.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refreshTokens, body.RefreshToken)
	s.writeTokens(w, http.StatusOK, email)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.lock.Lock()
	delete(s.refreshTokens, body.RefreshToken)
	s.lock.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.lock.Lock()
	defer s.lock.Unlock()
	email, ok := s.accessTokens[token]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	s.writeJSONStatus(w, http.StatusOK, s.accounts[email].profile, s.envelope)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	s.feedQueries = append(s.feedQueries, r.URL.Query())
	body := s.feedBody
	s.lock.Unlock()

	if s.envelope {
		body = fmt.Sprintf(`{"data":%s}`, body)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// writeTokens must be called with the lock held.
func (s *Server) writeTokens(w http.ResponseWriter, status int, email string) {
	access, refresh := s.issue(email)
	s.writeJSONStatus(w, status, map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
		"tokenType":    "Bearer",
		"expiresIn":    int(accessTokenTTL.Seconds()),
	}, s.envelope)
}

func (s *Server) issue(email string) (string, string) {
	now := s.nowTime()
	claims := jwt.RegisteredClaims{
		Subject:   s.accounts[email].profile.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(fmt.Sprintf("fakeapi: signing token: %v", err))
	}
	refresh := uuid.NewString()
	s.accessTokens[access] = email
	s.refreshTokens[refresh] = email
	return access, refresh
}

// writeJSONStatus writes v, optionally enveloped.
func (s *Server) writeJSONStatus(w http.ResponseWriter, status int, v any, envelope bool) {
	if envelope {
		v = map[string]any{"data": v}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"message": message, "statusCode": status})
}
