// Package tui is the interactive terminal feed viewer.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/vinnote-client/feed"
)

// FeedSource is the part of feed.Synchronizer the viewer drives.
type FeedSource interface {
	State() feed.State
	LoadFeed(ctx context.Context) feed.Outcome
	OnRefresh(ctx context.Context) feed.Outcome
	HandleLike(id string) bool
	HandleBookmark(id string) bool
}

var _ FeedSource = (*feed.Synchronizer)(nil)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9B2335"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type keyMap struct {
	Like     key.Binding
	Bookmark key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Like:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		Bookmark: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// loadedMsg reports a finished LoadFeed or OnRefresh.
type loadedMsg struct {
	outcome feed.Outcome
}

// tastingItem implements list.Item for one feed entry.
type tastingItem struct {
	feed.TastingWithInteractions
}

func (i tastingItem) Title() string {
	title := "Tasting " + shortID(i.ID)
	if i.Score != nil {
		title += fmt.Sprintf(" · %d pts", *i.Score)
	}
	if i.IsBookmarked {
		title += " ★"
	}
	return title
}

func (i tastingItem) Description() string {
	heart := "♡"
	if i.IsLiked {
		heart = "♥"
	}
	parts := []string{fmt.Sprintf("%s %d", heart, i.LikeCount), fmt.Sprintf("%d comments", i.CommentCount)}
	if i.Comment != nil && *i.Comment != "" {
		parts = append(parts, *i.Comment)
	}
	return strings.Join(parts, " · ")
}

func (i tastingItem) FilterValue() string { return i.ID }

func shortID(id string) string {
	if id == "" {
		return "(no id)"
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FeedView is a bubbletea model listing the feed with like, bookmark and refresh keys.
type FeedView struct {
	ctx     context.Context
	source  FeedSource
	list    list.Model
	spinner spinner.Model
	keys    keyMap
	loading bool
	notice  string
}

// NewFeedView builds the viewer. ctx bounds every request it makes.
func NewFeedView(ctx context.Context, source FeedSource) *FeedView {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "VinNote feed"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	// l and b belong to the feed, keep arrows and h/pgup for paging.
	l.KeyMap.NextPage.SetKeys("right", "pgdown")
	l.KeyMap.PrevPage.SetKeys("left", "h", "pgup")
	l.KeyMap.Quit.SetEnabled(false)

	v := &FeedView{
		ctx:     ctx,
		source:  source,
		list:    l,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:    defaultKeyMap(),
	}
	v.syncItems()
	return v
}

func (v *FeedView) Init() tea.Cmd {
	v.loading = true
	return tea.Batch(v.spinner.Tick, v.fetch(false))
}

func (v *FeedView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.list.SetSize(msg.Width, msg.Height-3)
		return v, nil

	case loadedMsg:
		v.loading = false
		v.notice = noticeFor(msg.outcome)
		return v, v.syncItems()

	case spinner.TickMsg:
		if !v.loading {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Like):
			if id, ok := v.selectedID(); ok {
				v.source.HandleLike(id)
			}
			return v, v.syncItems()
		case key.Matches(msg, v.keys.Bookmark):
			if id, ok := v.selectedID(); ok {
				v.source.HandleBookmark(id)
			}
			return v, v.syncItems()
		case key.Matches(msg, v.keys.Refresh):
			if v.loading {
				v.notice = noticeFor(feed.DroppedInFlight)
				return v, nil
			}
			v.loading = true
			v.notice = ""
			return v, tea.Batch(v.spinner.Tick, v.fetch(true))
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *FeedView) View() string {
	var b strings.Builder
	b.WriteString(v.list.View())
	b.WriteString("\n")

	st := v.source.State()
	switch {
	case v.loading:
		b.WriteString(v.spinner.View() + " loading")
	case st.Error != "":
		b.WriteString(errorStyle.Render(st.Error))
	case v.notice != "":
		b.WriteString(noticeStyle.Render(v.notice))
	case len(st.Items) == 0:
		b.WriteString(noticeStyle.Render("No tastings yet."))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(v.helpLine()))
	return b.String()
}

// Header renders the title line used above the list when printing outside the TUI.
func Header(text string) string {
	return headerStyle.Render(text)
}

func (v *FeedView) helpLine() string {
	bindings := []key.Binding{v.keys.Like, v.keys.Bookmark, v.keys.Refresh, v.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return "j/k move · " + strings.Join(parts, " · ")
}

func (v *FeedView) fetch(refresh bool) tea.Cmd {
	return func() tea.Msg {
		if refresh {
			return loadedMsg{outcome: v.source.OnRefresh(v.ctx)}
		}
		return loadedMsg{outcome: v.source.LoadFeed(v.ctx)}
	}
}

func (v *FeedView) selectedID() (string, bool) {
	item, ok := v.list.SelectedItem().(tastingItem)
	if !ok {
		return "", false
	}
	return item.ID, true
}

func (v *FeedView) syncItems() tea.Cmd {
	st := v.source.State()
	items := make([]list.Item, len(st.Items))
	for i, t := range st.Items {
		items[i] = tastingItem{TastingWithInteractions: t}
	}
	return v.list.SetItems(items)
}

func noticeFor(o feed.Outcome) string {
	switch o {
	case feed.DroppedInFlight:
		return "Still loading."
	case feed.DroppedDebounce:
		return "Refreshed a moment ago."
	default:
		return ""
	}
}
