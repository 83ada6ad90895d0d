package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/users"
	"golang.org/x/oauth2"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Name     string         `json:"name"`
	UserType users.UserType `json:"userType"`
}

// RefreshRequest is the body of POST /auth/refresh and POST /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by every token exchange (login, register, refresh).
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"` // seconds
}

// Token converts the exchange result, deriving Expiry from ExpiresIn relative to now.
func (r *AuthResponse) Token(now time.Time) *oauth2.Token {
	t := &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
	}
	if r.ExpiresIn > 0 {
		t.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return t
}

// FeedQuery pages through GET /feed
type FeedQuery struct {
	Cursor string
	Limit  int
}

// FeedResponse is the normalized GET /feed payload. Items stay raw so each one can be
// validated on its own.
type FeedResponse struct {
	Tastings   []json.RawMessage `json:"tastings"`
	NextCursor string            `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

// UnmarshalJSON accepts a bare list, or an object with the list under "tastings" or "items".
func (f *FeedResponse) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = FeedResponse{}
		return nil
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return errors.Wrapf(errors.ErrInvalidPayload, "feed list: %v", err)
		}
		*f = FeedResponse{Tastings: items}
		return nil
	}

	var obj struct {
		Tastings   []json.RawMessage `json:"tastings"`
		Items      []json.RawMessage `json:"items"`
		NextCursor *string           `json:"nextCursor"`
		HasMore    bool              `json:"hasMore"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return errors.Wrapf(errors.ErrInvalidPayload, "feed object: %v", err)
	}

	items := obj.Tastings
	if items == nil {
		items = obj.Items
	}
	*f = FeedResponse{Tastings: items, HasMore: obj.HasMore}
	if obj.NextCursor != nil {
		f.NextCursor = *obj.NextCursor
	}
	return nil
}
