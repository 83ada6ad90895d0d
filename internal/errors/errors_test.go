package errors_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/stretchr/testify/require"
)

type statusErr struct {
	status int
	msg    string
}

func (e statusErr) Error() string   { return e.msg }
func (e statusErr) StatusCode() int { return e.status }

type emptyErr struct{}

func (emptyErr) Error() string { return "" }

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server message", statusErr{status: 409, msg: "Email already registered"}, "Email already registered"},
		{"wrapped server message", fmt.Errorf("login: %w", statusErr{status: 401, msg: "Invalid credentials"}), "Invalid credentials"},
		{"network", fmt.Errorf("%w: GET /feed: %w", errors.ErrNetwork, context.DeadlineExceeded), errors.NetworkMessage},
		{"invalid payload", errors.Wrapf(errors.ErrInvalidPayload, "[api.request] decoding POST /auth/login: unexpected EOF"), errors.UnexpectedMessage},
		{"corrupt store", errors.Wrapf(errors.ErrStoreCorrupt, "[Credentials.User] bad json"), errors.UnexpectedMessage},
		{"other", errors.New("disk full"), "disk full"},
		{"empty", emptyErr{}, errors.UnexpectedMessage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, errors.Message(tc.err))
		})
	}
}

func TestStatusAndRateLimit(t *testing.T) {
	require.Equal(t, 0, errors.Status(errors.New("x")))
	require.Equal(t, 500, errors.Status(statusErr{status: 500}))
	require.True(t, errors.IsRateLimited(fmt.Errorf("feed: %w", statusErr{status: 429})))
	require.False(t, errors.IsRateLimited(statusErr{status: 503}))
}

func TestWrapf(t *testing.T) {
	require.NoError(t, errors.Wrapf(nil, "ignored"))

	err := errors.Wrapf(errors.ErrNoRefreshToken, "[restore] user %s", "u-1")
	require.Equal(t, "[restore] user u-1: no refresh token", err.Error())
	require.True(t, errors.Is(err, errors.ErrNoRefreshToken))
}
