package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/vinnote-client/api"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/tastings"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultPageSize = 20

// Gateway is the feed endpoint of the remote API.
type Gateway interface {
	GetFeed(ctx context.Context, q api.FeedQuery) (*api.FeedResponse, error)
}

var _ Gateway = (*api.Client)(nil)

// State is a snapshot of the feed.
type State struct {
	Items        []TastingWithInteractions
	IsLoading    bool
	IsRefreshing bool
	Error        string
	NextCursor   string
	HasMore      bool
}

// Synchronizer owns one feed: loading, pull-to-refresh and the local like/bookmark overlay.
//
// Every successful load replaces the items and resets the overlay, so toggles made before a
// refresh are lost even for tastings that are still in the new page.
type Synchronizer struct {
	gateway  Gateway
	throttle *Throttle
	seed     []tastings.Tasting
	mock     bool
	pageSize int
	validate func(tastings.Tasting) tastings.Tasting
	logger   zerolog.Logger

	lock  sync.RWMutex
	state State
}

// Option defines a function type to modify the Synchronizer instance.
type Option func(*Synchronizer)

// WithSeed sets tastings shown before the first load and whenever a load fails.
func WithSeed(seed []tastings.Tasting) Option {
	return func(s *Synchronizer) {
		s.seed = append([]tastings.Tasting(nil), seed...)
	}
}

// WithMockSource serves the seed instead of calling the gateway.
func WithMockSource() Option {
	return func(s *Synchronizer) {
		s.mock = true
	}
}

func WithPageSize(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithValidator replaces tastings.ValidateOrRaw.
func WithValidator(validate func(tastings.Tasting) tastings.Tasting) Option {
	return func(s *Synchronizer) {
		s.validate = validate
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Synchronizer) {
		s.logger = logger
	}
}

// New creates a Synchronizer. throttle may be shared with other feeds to share one budget.
func New(gateway Gateway, throttle *Throttle, options ...Option) (*Synchronizer, error) {
	if throttle == nil {
		return nil, errors.New("[feed.New] throttle is required")
	}

	s := &Synchronizer{
		gateway:  gateway,
		throttle: throttle,
		pageSize: DefaultPageSize,
		validate: tastings.ValidateOrRaw,
		logger:   log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.gateway == nil && !s.mock {
		return nil, errors.New("[feed.New] gateway is required unless the mock source is used")
	}
	if s.validate == nil {
		return nil, errors.New("[feed.New] validator is required")
	}

	s.logger = s.logger.With().Str("component", "feed").Logger()
	s.state.Items = Decorate(s.seed)
	return s, nil
}

// State returns a snapshot; the Items slice is a copy.
func (s *Synchronizer) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	st := s.state
	st.Items = append([]TastingWithInteractions(nil), s.state.Items...)
	return st
}

// LoadFeed loads the first page, on mount or on a manual retry.
func (s *Synchronizer) LoadFeed(ctx context.Context) Outcome {
	return s.fetch(ctx, false)
}

// OnRefresh is LoadFeed for pull-to-refresh; it toggles IsRefreshing instead of IsLoading.
func (s *Synchronizer) OnRefresh(ctx context.Context) Outcome {
	return s.fetch(ctx, true)
}

// HandleLike toggles the like flag on the tasting with id and moves its like count with it.
// It reports whether a tasting matched.
func (s *Synchronizer) HandleLike(id string) bool {
	return s.toggle(id, toggleLike)
}

// HandleBookmark toggles the bookmark flag on the tasting with id.
func (s *Synchronizer) HandleBookmark(id string) bool {
	return s.toggle(id, toggleBookmark)
}

func (s *Synchronizer) toggle(id string, fn func(TastingWithInteractions) TastingWithInteractions) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	found := false
	items := make([]TastingWithInteractions, len(s.state.Items))
	for i, item := range s.state.Items {
		if item.ID == id {
			item = fn(item)
			found = true
		}
		items[i] = item
	}
	s.state.Items = items
	return found
}

func (s *Synchronizer) fetch(ctx context.Context, refreshing bool) Outcome {
	outcome, remaining := s.throttle.Admit()
	switch outcome {
	case DroppedCooldown:
		message := fmt.Sprintf("Too many requests. Try again in %d seconds.", wholeSeconds(remaining))
		s.update(func(st *State) { st.Error = message })
		s.logger.Debug().Dur("remaining", remaining).Msg("feed request dropped during cooldown")
		return outcome
	case DroppedInFlight, DroppedDebounce:
		s.logger.Debug().Stringer("outcome", outcome).Msg("feed request dropped")
		return outcome
	}

	s.update(func(st *State) {
		if refreshing {
			st.IsRefreshing = true
		} else {
			st.IsLoading = true
		}
		st.Error = ""
	})

	defer func() {
		s.throttle.Release()
		s.update(func(st *State) {
			if refreshing {
				st.IsRefreshing = false
			} else {
				st.IsLoading = false
			}
		})
	}()

	page, err := s.pull(ctx)
	if err != nil {
		s.fail(err)
		return Performed
	}

	s.update(func(st *State) {
		st.Items = page.items
		st.NextCursor = page.nextCursor
		st.HasMore = page.hasMore
	})
	s.logger.Debug().Int("items", len(page.items)).Bool("refresh", refreshing).Msg("feed loaded")
	return Performed
}

type page struct {
	items      []TastingWithInteractions
	nextCursor string
	hasMore    bool
}

func (s *Synchronizer) pull(ctx context.Context) (page, error) {
	if s.mock {
		return page{items: s.prepare(s.seed)}, nil
	}

	res, err := s.gateway.GetFeed(ctx, api.FeedQuery{Limit: s.pageSize})
	if err != nil {
		return page{}, err
	}

	decoded := make([]tastings.Tasting, 0, len(res.Tastings))
	for i, raw := range res.Tastings {
		t, err := tastings.Decode(raw)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("keeping feed item that did not decode cleanly")
		}
		decoded = append(decoded, t)
	}

	return page{
		items:      s.prepare(decoded),
		nextCursor: res.NextCursor,
		hasMore:    res.HasMore,
	}, nil
}

// prepare validates each tasting (falling back to the raw one), collapses repeated ids and
// resets the overlay.
func (s *Synchronizer) prepare(ts []tastings.Tasting) []TastingWithInteractions {
	validated := make([]tastings.Tasting, len(ts))
	for i, t := range ts {
		validated[i] = s.validate(t)
	}
	return Decorate(dedupe(validated))
}

func (s *Synchronizer) fail(err error) {
	if len(s.seed) > 0 {
		fallback := s.prepare(s.seed)
		s.update(func(st *State) { st.Items = fallback })
	}

	if errors.IsRateLimited(err) {
		until := s.throttle.TripCooldown()
		s.logger.Warn().Time("until", until).Msg("feed rate limited, cooling down")
		return
	}

	message := errors.Message(err)
	s.logger.Error().Err(err).Msg("loading feed")
	s.update(func(st *State) { st.Error = message })
}

func (s *Synchronizer) update(fn func(*State)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	fn(&s.state)
}
