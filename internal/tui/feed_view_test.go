package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/vinnote-client/feed"
	"github.com/jrsteele09/vinnote-client/internal/utils"
	"github.com/jrsteele09/vinnote-client/tastings"
	"github.com/stretchr/testify/require"
)

func newTestView(t *testing.T) (*FeedView, *feed.Synchronizer) {
	t.Helper()

	seed := []tastings.Tasting{
		{ID: "aaaaaaaa-0000-4000-8000-000000000001", LikeCount: 2, Score: utils.Ptr(91), Comment: utils.Ptr("Cassis")},
		{ID: "bbbbbbbb-0000-4000-8000-000000000002", LikeCount: 0},
	}
	source, err := feed.New(nil, feed.NewThrottle(feed.WithDebounce(0)), feed.WithMockSource(), feed.WithSeed(seed))
	require.NoError(t, err)

	v := NewFeedView(context.Background(), source)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return v, source
}

func press(v *FeedView, keys string) tea.Cmd {
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)})
	return cmd
}

func TestFeedView_LoadsOnInit(t *testing.T) {
	v, _ := newTestView(t)

	require.NotNil(t, v.Init())
	require.True(t, v.loading)

	msg := v.fetch(false)()
	v.Update(msg)
	require.False(t, v.loading)
	require.Len(t, v.list.Items(), 2)
	require.Contains(t, v.View(), "aaaaaaaa")
}

func TestFeedView_LikeAndBookmark(t *testing.T) {
	v, source := newTestView(t)

	press(v, "l")
	items := source.State().Items
	require.True(t, items[0].IsLiked)
	require.Equal(t, 3, items[0].LikeCount)
	require.Contains(t, v.View(), "♥ 3")

	press(v, "j")
	press(v, "b")
	items = source.State().Items
	require.True(t, items[1].IsBookmarked)
	require.False(t, items[1].IsLiked)
}

func TestFeedView_RefreshWhileLoading(t *testing.T) {
	v, _ := newTestView(t)
	v.loading = true

	require.Nil(t, press(v, "r"))
	require.Equal(t, "Still loading.", v.notice)

	v.loading = false
	require.NotNil(t, press(v, "r"))
	require.True(t, v.loading)
}

func TestFeedView_Quit(t *testing.T) {
	v, _ := newTestView(t)

	cmd := press(v, "q")
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFeedView_ShowsSourceError(t *testing.T) {
	th := feed.NewThrottle(feed.WithCooldown(time.Minute))
	th.TripCooldown()
	source, err := feed.New(nil, th, feed.WithMockSource())
	require.NoError(t, err)

	v := NewFeedView(context.Background(), source)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	v.Update(v.fetch(false)())

	require.Equal(t, "Too many requests. Try again in 60 seconds.", source.State().Error)
	require.Contains(t, v.View(), "Too many requests")
}

func TestTastingItem_Text(t *testing.T) {
	item := tastingItem{feed.TastingWithInteractions{
		Tasting:      tastings.Tasting{ID: "cccccccc-1111", Score: utils.Ptr(88), LikeCount: 1, CommentCount: 4},
		IsBookmarked: true,
	}}
	require.Equal(t, "Tasting cccccccc · 88 pts ★", item.Title())
	require.Equal(t, "♡ 1 · 4 comments", item.Description())
	require.Equal(t, "(no id)", shortID(""))
}
