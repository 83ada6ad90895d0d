package tastings_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/internal/utils"
	"github.com/jrsteele09/vinnote-client/tastings"
	"github.com/stretchr/testify/require"
)

const (
	tastingID = "7d0f3c1e-8a55-4b4c-9c0e-2f1e5a6b7c80"
	userID    = "1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"
	wineID    = "6ec0bd7f-11c0-43da-975e-2a8ad9ebae0b"
	createdAt = "2025-05-10T18:30:00.000Z"
)

func validTasting() tastings.Tasting {
	return tastings.Tasting{
		ID:        tastingID,
		UserID:    userID,
		WineID:    wineID,
		Score:     utils.Ptr(92),
		Comment:   utils.Ptr("Cherry, leather, long finish"),
		LikeCount: 4,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	got, err := tastings.Validate(validTasting())
	require.NoError(t, err)
	require.Equal(t, tastings.StatusDraft, got.Status)
	require.Equal(t, tastings.PrivacyPublic, got.PrivacyLevel)
	require.Equal(t, 4, got.LikeCount)
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	in := validTasting()
	in.Status = tastings.StatusPublished
	in.PrivacyLevel = tastings.PrivacyFollowersOnly
	in.PublishedAt = utils.Ptr("2025-05-10T19:00:00+02:00")

	got, err := tastings.Validate(in)
	require.NoError(t, err)
	require.Equal(t, in, got)
	require.Equal(t, 17, got.Published().UTC().Hour())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*tastings.Tasting)
		want   string
	}{
		{"bad id", func(tt *tastings.Tasting) { tt.ID = "42" }, "id must be a valid UUID"},
		{"missing wine", func(tt *tastings.Tasting) { tt.WineID = "" }, "wineId is required"},
		{"score too high", func(tt *tastings.Tasting) { tt.Score = utils.Ptr(101) }, "score must be less than or equal to 100"},
		{"negative likes", func(tt *tastings.Tasting) { tt.LikeCount = -1 }, "likeCount must be greater than or equal to 0"},
		{"unknown status", func(tt *tastings.Tasting) { tt.Status = "ARCHIVED" }, "status must be one of"},
		{"bad timestamp", func(tt *tastings.Tasting) { tt.CreatedAt = "yesterday" }, "createdAt must be an ISO 8601 datetime"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validTasting()
			tc.mutate(&in)
			_, err := tastings.Validate(in)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrInvalidPayload))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidateOrRaw_FallsBackToInput(t *testing.T) {
	in := validTasting()
	in.ID = "not-a-uuid"

	got := tastings.ValidateOrRaw(in)
	require.Equal(t, in, got)
	require.Empty(t, got.Status, "defaults are only applied to valid items")
}

func TestDecode(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"` + tastingID + `","userId":"` + userID + `","wineId":"` + wineID +
			`","likeCount":3,"commentCount":1,"createdAt":"` + createdAt + `","updatedAt":"` + createdAt + `","extra":true}`)
		got, err := tastings.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, tastingID, got.ID)
		require.Equal(t, 3, got.LikeCount)
	})

	t.Run("wrong field type keeps the rest", func(t *testing.T) {
		raw := json.RawMessage(`{"id":"` + tastingID + `","likeCount":"many","comment":"Fresh"}`)
		got, err := tastings.Decode(raw)
		require.Error(t, err)
		require.True(t, errors.Is(err, errors.ErrInvalidPayload))
		require.Equal(t, tastingID, got.ID)
		require.Equal(t, "Fresh", utils.Value(got.Comment))
		require.Zero(t, got.LikeCount)
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := tastings.Decode(json.RawMessage(`17`))
		require.Error(t, err)
	})
}
