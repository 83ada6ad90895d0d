package feed

import (
	"math"
	"sync"
	"time"
)

const (
	DefaultDebounce = 1500 * time.Millisecond
	DefaultCooldown = 15 * time.Second
)

// Outcome tells the caller what a load request did.
type Outcome int

const (
	// Performed means the request passed every guard and a fetch ran.
	Performed Outcome = iota
	// DroppedInFlight means another fetch held the throttle.
	DroppedInFlight
	// DroppedCooldown means the server rate limited us recently.
	DroppedCooldown
	// DroppedDebounce means the previous request was too recent.
	DroppedDebounce
)

func (o Outcome) String() string {
	switch o {
	case Performed:
		return "performed"
	case DroppedInFlight:
		return "dropped-in-flight"
	case DroppedCooldown:
		return "dropped-cooldown"
	case DroppedDebounce:
		return "dropped-debounce"
	default:
		return "unknown"
	}
}

// Throttle is the request budget shared by every Synchronizer it is handed to. It allows
// one fetch at a time, enforces a minimum gap between fetches and a cooldown after a 429.
type Throttle struct {
	lock          sync.Mutex
	nowTime       func() time.Time
	debounce      time.Duration
	cooldown      time.Duration
	lastRequest   time.Time
	cooldownUntil time.Time
	inFlight      bool
}

// ThrottleOption defines a function type to modify the Throttle instance.
type ThrottleOption func(*Throttle)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ThrottleOption {
	return func(t *Throttle) {
		t.nowTime = nowFunc
	}
}

func WithDebounce(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		t.debounce = d
	}
}

func WithCooldown(d time.Duration) ThrottleOption {
	return func(t *Throttle) {
		t.cooldown = d
	}
}

// NewThrottle starts with no cooldown and nothing in flight.
func NewThrottle(options ...ThrottleOption) *Throttle {
	t := &Throttle{
		nowTime:  time.Now,
		debounce: DefaultDebounce,
		cooldown: DefaultCooldown,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Admit applies the in-flight, cooldown and debounce guards in that order. On Performed the
// caller holds the in-flight slot and must call Release. On DroppedCooldown the remaining
// cooldown is returned as well.
func (t *Throttle) Admit() (Outcome, time.Duration) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.inFlight {
		return DroppedInFlight, 0
	}

	now := t.nowTime()
	if now.Before(t.cooldownUntil) {
		return DroppedCooldown, t.cooldownUntil.Sub(now)
	}

	if !t.lastRequest.IsZero() && now.Sub(t.lastRequest) < t.debounce {
		return DroppedDebounce, 0
	}

	t.lastRequest = now
	t.inFlight = true
	return Performed, 0
}

// Release frees the in-flight slot.
func (t *Throttle) Release() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.inFlight = false
}

// TripCooldown rejects requests until the cooldown elapses and returns the deadline.
func (t *Throttle) TripCooldown() time.Time {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.cooldownUntil = t.nowTime().Add(t.cooldown)
	return t.cooldownUntil
}

// InFlight reports whether a fetch currently holds the throttle.
func (t *Throttle) InFlight() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.inFlight
}

// wholeSeconds rounds d up to whole seconds, at least 1.
func wholeSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
