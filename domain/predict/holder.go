package predict

import (
	"context"
	"errors"
	"sync/atomic"
)

var errNoClient = errors.New("no client configured")

// Holder lets the service URL change at runtime (settings window) while the
// scan controller keeps a single Predictor. In-flight requests finish on the
// client they started with.
type Holder struct {
	c atomic.Pointer[Client]
}

func NewHolder(c *Client) *Holder {
	h := &Holder{}
	h.c.Store(c)
	return h
}

// Swap installs c and returns the previous client.
func (h *Holder) Swap(c *Client) *Client { return h.c.Swap(c) }

func (h *Holder) Client() *Client { return h.c.Load() }

func (h *Holder) Predict(ctx context.Context, img Image) (Result, error) {
	c := h.c.Load()
	if c == nil {
		return Result{}, &TransportError{Op: "predict", Err: errNoClient}
	}
	return c.Predict(ctx, img)
}

func (h *Holder) Health(ctx context.Context) error {
	c := h.c.Load()
	if c == nil {
		return &TransportError{Op: "health", Err: errNoClient}
	}
	return c.Health(ctx)
}
