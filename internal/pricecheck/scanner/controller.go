package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/pricecheck/pkg/idx"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

const (
	DefaultFrameRate     = 15
	DefaultLookupTimeout = 15 * time.Second
)

// Config wires a Controller to its collaborators.
type Config struct {
	Camera    Camera
	Detectors DetectorFactory
	Lookup    Lookup

	// Constraints defaults to DefaultConstraints.
	Constraints Constraints

	// FrameRate caps analysed frames per second.
	FrameRate float64

	LookupTimeout time.Duration
	Logger        *slog.Logger
}

// Controller owns at most one camera stream at a time. Every result that
// arrives asynchronously is applied only if its session generation is
// still current.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	session  Session
	gen      uint64
	detected bool
	closed   bool
	stream   Stream

	// cancelSession ends the acquisition, analysis and lookup of the
	// current session.
	cancelSession context.CancelFunc
	// stopAnalysis ends only the frame analysis.
	stopAnalysis context.CancelFunc

	listenersMu sync.Mutex
	nextID      int
	listeners   map[int]func(Session)
}

// New creates an idle controller.
func New(cfg Config) *Controller {
	if cfg.Detectors == nil {
		cfg.Detectors = BarcodeDetectors
	}
	if cfg.Constraints == (Constraints{}) {
		cfg.Constraints = DefaultConstraints
	}
	if cfg.FrameRate <= 0 {
		cfg.FrameRate = DefaultFrameRate
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = DefaultLookupTimeout
	}
	return &Controller{
		cfg:       cfg,
		logger:    slogx.OrDefault(cfg.Logger),
		listeners: make(map[int]func(Session)),
	}
}

// Snapshot returns the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// OnChange registers fn to receive every new session state.
func (c *Controller) OnChange(fn func(Session)) (unsubscribe func()) {
	c.listenersMu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.listenersMu.Unlock()

	return func() {
		c.listenersMu.Lock()
		delete(c.listeners, id)
		c.listenersMu.Unlock()
	}
}

func (c *Controller) notify(states ...Session) {
	c.listenersMu.Lock()
	fns := make([]func(Session), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, s := range states {
		for _, fn := range fns {
			fn(s)
		}
	}
}

// Start begins a scan. It is allowed from Idle, Error and Detected; from
// Detected it behaves as Restart. The camera is acquired asynchronously.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.session.Status == Requesting || c.session.Status == Active:
		c.mu.Unlock()
		return ErrScanInProgress
	}
	return c.startLocked(ctx)
}

// Restart clears the previous result and scans again. It is allowed only
// from Idle and Detected.
func (c *Controller) Restart(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.session.Status != Idle && c.session.Status != Detected:
		c.mu.Unlock()
		return ErrRestartNotAllowed
	}
	return c.startLocked(ctx)
}

// startLocked is called with c.mu held and releases it.
func (c *Controller) startLocked(ctx context.Context) error {
	c.endSessionLocked()
	c.gen++
	gen := c.gen
	c.detected = false
	c.session = Session{ID: idx.New(), Status: Requesting}

	log := c.logger.With("scan_id", c.session.ID)

	detector, err := c.cfg.Detectors(Symbologies)
	if err != nil {
		c.session.Status = Error
		c.session.Reason = ReasonDetectorError
		c.session.Err = err
		snap := c.session
		c.mu.Unlock()

		log.Error("barcode detector unavailable", "error", err)
		c.notify(snap)
		return fmt.Errorf("configure detector: %w", err)
	}

	sessCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelSession = cancel
	snap := c.session
	c.mu.Unlock()

	log.Info("scan requested")
	c.notify(snap)

	go c.acquire(sessCtx, gen, detector, log)
	return nil
}

func (c *Controller) acquire(ctx context.Context, gen uint64, detector Detector, log *slog.Logger) {
	stream, err := c.cfg.Camera.Acquire(ctx, c.cfg.Constraints)
	if stream != nil {
		stream = &onceStream{Stream: stream}
	}

	c.mu.Lock()
	if gen != c.gen || c.closed || c.session.Status != Requesting {
		c.mu.Unlock()
		if stream != nil {
			log.Debug("releasing stream acquired after cancel")
			stream.Stop()
		}
		return
	}

	if err != nil {
		c.session.Status = Error
		c.session.Reason = reasonFor(err)
		c.session.Err = err
		snap := c.session
		c.mu.Unlock()

		log.Warn("camera acquisition failed", "reason", snap.Reason, "error", err)
		c.notify(snap)
		return
	}

	analysisCtx, stop := context.WithCancel(ctx)
	c.stream = stream
	c.stopAnalysis = stop
	c.session.Status = Active
	snap := c.session
	c.mu.Unlock()

	log.Info("scan active")
	c.notify(snap)

	go c.analyse(ctx, analysisCtx, gen, stream, detector, log)
}

// analyse feeds frames to the detector until the first decode. sessCtx
// outlives analysis and bounds the lookup.
func (c *Controller) analyse(sessCtx, ctx context.Context, gen uint64, stream Stream, detector Detector, log *slog.Logger) {
	limiter := rate.NewLimiter(rate.Limit(c.cfg.FrameRate), 1)
	frames := stream.Frames()
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				c.streamEnded(gen, log)
				return
			}
			res, found := detector.Detect(frame)
			if !found {
				continue
			}
			if c.detect(sessCtx, gen, res.Text, res.Symbology.String(), log) {
				return
			}
		}
	}
}

// detect records the first decode of a session. It reports whether
// analysis should stop.
func (c *Controller) detect(ctx context.Context, gen uint64, code, format string, log *slog.Logger) bool {
	c.mu.Lock()
	if gen != c.gen || c.closed || c.session.Status != Active {
		c.mu.Unlock()
		return true
	}
	if c.detected {
		c.mu.Unlock()
		return true
	}
	c.detected = true

	if c.stopAnalysis != nil {
		c.stopAnalysis()
		c.stopAnalysis = nil
	}
	stream := c.stream
	c.stream = nil

	c.session.Status = Detected
	c.session.Code = code
	c.session.Format = format
	c.session.LookupPending = c.cfg.Lookup != nil
	snap := c.session
	c.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
	log.Info("barcode detected", "code", code, "format", format, "after", snap.ID.Age(time.Now()))
	c.notify(snap)

	if snap.LookupPending {
		go c.lookup(ctx, gen, code, log)
	}
	return true
}

func (c *Controller) lookup(ctx context.Context, gen uint64, code string, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.LookupTimeout)
	defer cancel()

	result, err := c.cfg.Lookup.LookupBarcode(ctx, code)

	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		log.Debug("discarding stale lookup result", "code", code)
		return
	}
	c.session.LookupPending = false
	c.session.Result = result
	c.session.LookupErr = err
	snap := c.session
	c.mu.Unlock()

	if err != nil {
		log.Warn("product lookup failed", "code", code, "error", err)
	} else {
		found := 0
		if result != nil {
			found = len(result.Products)
		}
		log.Info("product lookup complete", "code", code, "products", found)
	}
	c.notify(snap)
}

func (c *Controller) streamEnded(gen uint64, log *slog.Logger) {
	c.mu.Lock()
	if gen != c.gen || c.closed || c.session.Status != Active {
		c.mu.Unlock()
		return
	}
	stream := c.stream
	c.stream = nil
	c.endSessionLocked()
	c.session.Status = Error
	c.session.Reason = ReasonCameraError
	c.session.Err = ErrStreamEnded
	snap := c.session
	c.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
	log.Warn("camera stream ended while scanning")
	c.notify(snap)
}

// Cancel abandons a scan that is Requesting or Active, passing through
// Cancelled to Idle. It is a no-op in every other state and never panics.
func (c *Controller) Cancel() {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil

	var states []Session
	if st := c.session.Status; st == Requesting || st == Active {
		c.gen++
		c.endSessionLocked()
		id := c.session.ID
		c.session = Session{ID: id, Status: Cancelled}
		states = append(states, c.session)
		c.session = Session{ID: id, Status: Idle}
		states = append(states, c.session)
	}
	c.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
	if len(states) > 0 {
		c.logger.Info("scan cancelled", "scan_id", states[0].ID, "after", states[0].ID.Age(time.Now()))
		c.notify(states...)
	}
}

// Close tears the controller down with its view. Any scan is cancelled,
// a pending lookup is discarded and further starts fail with ErrClosed.
func (c *Controller) Close() {
	c.Cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	stream := c.stream
	c.stream = nil
	c.endSessionLocked()
	c.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
}

// endSessionLocked cancels everything the current session started.
func (c *Controller) endSessionLocked() {
	if c.stopAnalysis != nil {
		c.stopAnalysis()
		c.stopAnalysis = nil
	}
	if c.cancelSession != nil {
		c.cancelSession()
		c.cancelSession = nil
	}
}

// onceStream makes Stop idempotent.
type onceStream struct {
	Stream
	once sync.Once
}

func (s *onceStream) Stop() {
	s.once.Do(s.Stream.Stop)
}
