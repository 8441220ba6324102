package matrix

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Controller applies programs to the switching matrix.
type Controller struct {
	transport Transport
	log       *zap.Logger
}

// NewController wraps a transport. A nil log discards output.
func NewController(t Transport, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{transport: t, log: log}
}

// Apply opens every relay, closes the relays of each command and commits.
// It stops between frames when ctx is done; the staged state is then never
// committed.
func (c *Controller) Apply(ctx context.Context, p *Program) error {
	frames := p.Frames()
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("matrix: apply aborted after %d of %d frames: %w", i, len(frames), err)
		}
		data, err := f.Encode()
		if err != nil {
			return err
		}
		resp, err := c.transport.WriteRead(data)
		if err != nil {
			return fmt.Errorf("matrix: frame %d: %w", i, err)
		}
		if err := checkAck(f.Op, resp); err != nil {
			return fmt.Errorf("matrix: frame %d (%s): %w", i, f.ID, err)
		}
		c.log.Debug("frame applied",
			zap.Int("index", i),
			zap.Uint8("op", uint8(f.Op)),
			zap.String("component", f.ID),
			zap.Ints("busses", f.Busses))
	}
	c.log.Info("matrix programmed", zap.Int("commands", len(p.Commands)))
	return nil
}

// Close closes the transport.
func (c *Controller) Close() error {
	return c.transport.Close()
}
