package scan

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/leaf-health-go/domain/capture"
)

// Stats counts controller activity.
type Stats struct {
	Submitted uint64
	Succeeded uint64
	Failed    uint64
	Discarded uint64
}

// Controller runs Reduce on a single event-loop goroutine and executes the
// resulting effects. Predictions run on their own goroutine and re-enter the
// loop as events, so every continuation is checked against the state current
// at that moment.
type Controller struct {
	predictor Predictor
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc

	mu    sync.RWMutex
	state State

	events    chan interface{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	listeners        []Listener
	failureListeners []FailureListener

	submitted atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	discarded atomic.Uint64
}

// NewController constructs and starts the event loop in Capturing.
func NewController(p Predictor, logger *slog.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		predictor: p,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		state:     Capturing{},
		events:    make(chan interface{}, 64),
		done:      make(chan struct{}),
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				if logger != nil {
					logger.Error("scan controller panic", "error", r, "stack", string(debug.Stack()))
				}
			}
		}()
		c.loop()
	}()
	return c
}

type (
	evtAddListener        struct{ l Listener }
	evtAddFailureListener struct{ l FailureListener }
)

func (c *Controller) loop() {
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.events:
			switch e := ev.(type) {
			case evtAddListener:
				c.listeners = append(c.listeners, e.l)
			case evtAddFailureListener:
				c.failureListeners = append(c.failureListeners, e.l)
			case Event:
				c.apply(e)
			}
		}
	}
}

func (c *Controller) apply(e Event) {
	prev := c.Current()
	next, eff := Reduce(prev, e)
	if prev.Phase() != next.Phase() {
		c.mu.Lock()
		c.state = next
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Debug("scan state transition", "from", prev.Phase().String(), "to", next.Phase().String())
		}
		for _, l := range c.listeners {
			l(prev, next)
		}
	}
	switch ef := eff.(type) {
	case SubmitPrediction:
		c.submit(ef.Image)
	case ReportFailure:
		c.failed.Add(1)
		if c.logger != nil {
			c.logger.Warn("prediction failed", "error", ef.Err)
		}
		for _, l := range c.failureListeners {
			l(ef.Err)
		}
	case DiscardResult:
		c.discarded.Add(1)
		if c.logger != nil {
			c.logger.Debug("stale prediction discarded", "image", ef.ImageID, "phase", ef.Phase.String())
		}
	}
	if _, ok := e.(PredictionSucceeded); ok && next.Phase() == PhaseShowing && prev.Phase() == PhaseSubmitting {
		c.succeeded.Add(1)
	}
}

func (c *Controller) submit(img *capture.CapturedImage) {
	c.submitted.Add(1)
	id := img.ID()
	if c.logger != nil {
		c.logger.Info("prediction submitted", "image", id, "bytes", img.Size())
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer recoverLog(c.logger, "prediction goroutine panic")
		start := time.Now()
		res, err := c.predictor.Predict(c.ctx, img)
		if err != nil {
			c.post(PredictionFailed{ImageID: id, Err: err})
			return
		}
		if c.logger != nil {
			c.logger.Debug("prediction returned", "image", id, "elapsed", time.Since(start))
		}
		c.post(PredictionSucceeded{ImageID: id, Result: res})
	}()
}

// post delivers to the loop unless the controller is closed.
func (c *Controller) post(ev interface{}) {
	select {
	case <-c.done:
	case c.events <- ev:
	}
}

// Acquire hands one image to the flow. Ignored unless Capturing.
func (c *Controller) Acquire(img *capture.CapturedImage) {
	if img == nil {
		return
	}
	c.post(ImageAcquired{Image: img})
}

// NewScan returns to Capturing, dropping any image and result.
func (c *Controller) NewScan() { c.post(NewScanRequested{}) }

func (c *Controller) AddListener(l Listener)               { c.post(evtAddListener{l: l}) }
func (c *Controller) AddFailureListener(l FailureListener) { c.post(evtAddFailureListener{l: l}) }

func (c *Controller) Current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) Stats() Stats {
	return Stats{
		Submitted: c.submitted.Load(),
		Succeeded: c.succeeded.Load(),
		Failed:    c.failed.Load(),
		Discarded: c.discarded.Load(),
	}
}

// Close stops the loop and cancels outstanding requests. Later calls are no-ops.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)
	})
	c.wg.Wait()
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
