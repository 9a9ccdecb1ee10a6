package tracker

import (
	"context"
	"log"
	"sync"
	"time"
)

// State of a per-navigation controller.
type State string

const (
	StateAwaitingSession State = "awaiting_session"
	StateTracking        State = "tracking"
	StateTerminated      State = "terminated"
)

// Swapped out in tests to drive elapsed-time computation.
var timeNow = time.Now

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultSessionWait       = 1 * time.Second
	defaultSessionPoll       = 100 * time.Millisecond
	defaultCallTimeout       = 5 * time.Second
)

// Config describes one navigation. A fresh Controller is created per
// navigation; controllers never share or inherit state.
type Config struct {
	Client  Client
	Beacon  BeaconTransport // optional; Client is used when it also implements BeaconTransport
	Storage Storage

	PagePath  string
	FullPath  string
	PageTitle string
	Referrer  string
	UserAgent string

	HeartbeatInterval time.Duration // default 30s
	SessionWait       time.Duration // bounded wait for a session id, default 1s
	SessionPoll       time.Duration // poll step during the wait, default 100ms
	CallTimeout       time.Duration // per network call, default 5s
}

// Controller owns the lifecycle of a single page view: one ingestion call,
// periodic heartbeats while the page is open, and a best-effort final flush
// on teardown. Every delivery failure is swallowed; tracking never crashes
// a page.
type Controller struct {
	cfg    Config
	beacon BeaconTransport

	mu         sync.Mutex
	state      State
	pageViewID string
	startedAt  time.Time

	startOnce sync.Once
	started   bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func NewController(cfg Config) *Controller {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.SessionWait <= 0 {
		cfg.SessionWait = defaultSessionWait
	}
	if cfg.SessionPoll <= 0 {
		cfg.SessionPoll = defaultSessionPoll
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	beacon := cfg.Beacon
	if beacon == nil {
		if b, ok := cfg.Client.(BeaconTransport); ok {
			beacon = b
		}
	}

	return &Controller{
		cfg:    cfg,
		beacon: beacon,
		state:  StateAwaitingSession,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins tracking without blocking the caller.
func (c *Controller) Start() {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.started = true
		c.mu.Unlock()
		go c.run()
	})
}

// State reports the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PageViewID returns the server-assigned view id, or "" before ingestion
// has succeeded.
func (c *Controller) PageViewID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pageViewID
}

// Stop tears the navigation down: it halts the heartbeat timer on every
// exit path and attempts one final fire-and-forget flush. Skipped when no
// view id exists or no time has elapsed. Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)

		c.mu.Lock()
		started := c.started
		c.mu.Unlock()
		if started {
			<-c.done
		}

		c.mu.Lock()
		id := c.pageViewID
		elapsed := c.elapsedSecondsLocked()
		c.state = StateTerminated
		c.mu.Unlock()

		if id != "" && elapsed > 0 && c.beacon != nil {
			c.beacon.SendBeacon(id, elapsed)
		}
	})
}

func (c *Controller) run() {
	defer close(c.done)

	sessionID := c.awaitSessionID()
	if sessionID == "" {
		// Silent degradation: this navigation is simply not recorded.
		c.mu.Lock()
		c.state = StateTerminated
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.startedAt = timeNow()
	c.state = StateTracking
	c.mu.Unlock()

	payload := TrackPayload{
		SessionID: sessionID,
		PagePath:  c.cfg.PagePath,
		FullPath:  c.cfg.FullPath,
		PageTitle: c.cfg.PageTitle,
		Referrer:  c.cfg.Referrer,
		UserAgent: c.cfg.UserAgent,
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CallTimeout)
	id, err := c.cfg.Client.Track(ctx, payload)
	cancel()
	if err != nil {
		// No view id means nothing can ever be updated; no retries.
		log.Printf("tracker: page view for %s not recorded: %v", c.cfg.PagePath, err)
		c.mu.Lock()
		c.state = StateTerminated
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.pageViewID = id
	c.mu.Unlock()

	c.heartbeatLoop()
}

// awaitSessionID polls context storage for a bounded interval. An unbounded
// retry loop would leak timers on contexts where storage never becomes
// available.
func (c *Controller) awaitSessionID() string {
	deadline := time.Now().Add(c.cfg.SessionWait)
	for {
		if id := GetOrCreateSessionID(c.cfg.Storage); id != "" {
			return id
		}
		if time.Now().After(deadline) {
			return ""
		}
		select {
		case <-c.stopCh:
			return ""
		case <-time.After(c.cfg.SessionPoll):
		}
	}
}

func (c *Controller) heartbeatLoop() {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sendHeartbeat()
		}
	}
}

func (c *Controller) sendHeartbeat() {
	c.mu.Lock()
	id := c.pageViewID
	elapsed := c.elapsedSecondsLocked()
	c.mu.Unlock()

	if id == "" || elapsed <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.CallTimeout)
	defer cancel()
	if err := c.cfg.Client.UpdateTime(ctx, id, elapsed); err != nil {
		// Dropped heartbeats under-count time spent; that is the accepted
		// approximation, not a fault to recover from.
		log.Printf("tracker: heartbeat for %s dropped: %v", id, err)
	}
}

// elapsedSecondsLocked derives elapsed time from the single monotonic clock
// reading captured when tracking started. Callers hold c.mu.
func (c *Controller) elapsedSecondsLocked() int {
	if c.startedAt.IsZero() {
		return 0
	}
	return int(timeNow().Sub(c.startedAt).Seconds())
}
