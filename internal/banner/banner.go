package banner

import (
	"log/slog"
	"sync"
	"time"

	"github.com/omnis-dev/omnis/internal/logger"
)

// State is the banner's visibility state.
type State int

const (
	Hidden State = iota
	Collapsed
	Expanded
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Collapsed:
		return "collapsed"
	case Expanded:
		return "expanded"
	default:
		return "unknown"
	}
}

// Config holds the banner timings and gesture threshold.
type Config struct {
	InitialDelay   time.Duration
	AutoDismiss    time.Duration
	Reappear       time.Duration
	SwipeThreshold float64
	// OfferID is passed to OnApplyRecommendation by Apply.
	OfferID string
	// ReappearAfterDismiss arms the reappear timer after an explicit
	// dismissal (close, apply, view more) as well as after auto-dismiss.
	ReappearAfterDismiss bool
}

// DefaultConfig returns 3s/30s/60s timings with a 50 unit swipe threshold.
func DefaultConfig() Config {
	return Config{
		InitialDelay:   3 * time.Second,
		AutoDismiss:    30 * time.Second,
		Reappear:       60 * time.Second,
		SwipeThreshold: 50,
		OfferID:        "flexible-savings",
	}
}

// Callbacks receives the banner's outward notifications.
type Callbacks interface {
	OnApplyRecommendation(id, token, apiRecommendationID string)
	OnViewRecommendation()
}

type timerKind int

const (
	timerShow timerKind = iota
	timerDismiss
	timerReappear
)

func (k timerKind) String() string {
	switch k {
	case timerShow:
		return "show"
	case timerDismiss:
		return "auto-dismiss"
	default:
		return "reappear"
	}
}

// Controller drives one promotional banner. It owns at most one pending
// timer; every transition goes through cancel before arming a new one.
//
// Callbacks and the observer run while the controller's lock is held and
// must not call back into the Controller.
type Controller struct {
	mu        sync.Mutex
	cfg       Config
	clock     Clock
	callbacks Callbacks
	observer  func(State)
	log       *slog.Logger

	state   State
	pending Timer
	kind    timerKind
	seq     uint64
	started bool
	stopped bool

	touching bool
	moved    bool
	originY  float64
	currentY float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the system clock.
func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// WithObserver registers a function called with every new state.
func WithObserver(f func(State)) Option {
	return func(ctl *Controller) { ctl.observer = f }
}

// NewController returns a Hidden controller. Call Start to mount it.
func NewController(cfg Config, callbacks Callbacks, opts ...Option) *Controller {
	c := &Controller{
		cfg:       cfg,
		clock:     SystemClock(),
		callbacks: callbacks,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logger.OrDefault(c.log)
	return c
}

// Start mounts the banner: it becomes Collapsed after InitialDelay.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.stopped {
		return
	}
	c.started = true
	c.arm(timerShow, c.cfg.InitialDelay)
}

// Stop unmounts the banner. The pending timer is cancelled and every later
// event, including a timer already in flight, is ignored.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	c.cancel()
}

// Tap handles a tap on the banner body.
func (c *Controller) Tap() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state != Collapsed {
		return
	}
	c.expand()
}

// Collapse handles the collapse control of the expanded banner.
func (c *Controller) Collapse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state != Expanded {
		return
	}
	c.collapse()
}

// Close handles the explicit close control.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state == Hidden {
		return
	}
	c.dismiss()
}

// Apply handles "Apply Now": the apply callback fires, then the banner hides.
func (c *Controller) Apply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state != Expanded {
		return
	}
	if c.callbacks != nil {
		c.callbacks.OnApplyRecommendation(c.cfg.OfferID, "", "")
	}
	c.dismiss()
}

// ViewMore handles "Tell me more": the view callback fires, then the banner hides.
func (c *Controller) ViewMore() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state != Expanded {
		return
	}
	if c.callbacks != nil {
		c.callbacks.OnViewRecommendation()
	}
	c.dismiss()
}

// TouchStart records the vertical origin of a touch. Touching counts as
// engagement: the pending timer is cancelled even if no swipe follows.
func (c *Controller) TouchStart(y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || c.state == Hidden {
		return
	}
	c.touching = true
	c.moved = false
	c.originY = y
	c.cancel()
}

// TouchMove records the current vertical position of the touch.
func (c *Controller) TouchMove(y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.touching {
		return
	}
	c.moved = true
	c.currentY = y
}

// TouchEnd classifies the gesture. origin-current above the threshold is an
// upward swipe, below minus the threshold a downward one; anything smaller
// changes nothing and does not re-arm the cancelled timer.
func (c *Controller) TouchEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	touching, moved := c.touching, c.moved
	c.touching, c.moved = false, false
	if c.stopped || !touching || !moved {
		return
	}

	distance := c.originY - c.currentY
	switch {
	case distance > c.cfg.SwipeThreshold:
		if c.state == Collapsed {
			c.expand()
		}
	case distance < -c.cfg.SwipeThreshold:
		switch c.state {
		case Expanded:
			c.collapse()
		case Collapsed:
			c.dismiss()
		}
	}
}

// Swipe is TouchStart(fromY), TouchMove(toY), TouchEnd().
func (c *Controller) Swipe(fromY, toY float64) {
	c.TouchStart(fromY)
	c.TouchMove(toY)
	c.TouchEnd()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Visible reports whether the banner is rendered.
func (c *Controller) Visible() bool { return c.State() != Hidden }

// Expanded reports whether the detailed offer is shown.
func (c *Controller) Expanded() bool { return c.State() == Expanded }

// TimerPending reports whether a timer is armed.
func (c *Controller) TimerPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *Controller) expand() {
	c.setState(Expanded)
	c.cancel()
}

func (c *Controller) collapse() {
	c.setState(Collapsed)
	c.arm(timerDismiss, c.cfg.AutoDismiss)
}

func (c *Controller) dismiss() {
	c.setState(Hidden)
	c.cancel()
	if c.cfg.ReappearAfterDismiss {
		c.arm(timerReappear, c.cfg.Reappear)
	}
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.log.Debug("banner state changed", "from", c.state.String(), "to", s.String())
	c.state = s
	if c.observer != nil {
		c.observer(s)
	}
}

// cancel stops the pending timer. Bumping seq also invalidates a callback
// that has already fired and is waiting on the lock.
func (c *Controller) cancel() {
	c.seq++
	if c.pending == nil {
		return
	}
	c.pending.Stop()
	c.pending = nil
}

func (c *Controller) arm(kind timerKind, d time.Duration) {
	c.cancel()
	seq := c.seq
	c.kind = kind
	c.pending = c.clock.AfterFunc(d, func() { c.fire(seq) })
	c.log.Debug("banner timer armed", "timer", kind.String(), "after", d)
}

func (c *Controller) fire(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped || seq != c.seq || c.pending == nil {
		return
	}
	c.pending = nil

	switch c.kind {
	case timerShow, timerReappear:
		if c.state == Hidden {
			c.setState(Collapsed)
			c.arm(timerDismiss, c.cfg.AutoDismiss)
		}
	case timerDismiss:
		if c.state == Collapsed {
			c.setState(Hidden)
			c.arm(timerReappear, c.cfg.Reappear)
		}
	}
}
