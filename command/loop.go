package command

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Loop is the cooperative scheduler: one control flow that drains pending
// request lines through the dispatcher and advances both axes' in-flight
// motion, forever.  Commands are processed strictly in arrival order;
// motion progress interleaves between them but is never reordered on an
// axis.  There are no locks because there is no second flow — the only
// blocking inhabitant is recalibration, which monopolizes the loop by
// design.
type Loop struct {
	Disp *Dispatcher

	// Lines delivers complete request lines from the external reader
	Lines <-chan []byte

	// Out receives one response line per request
	Out io.Writer

	// Pace bounds the loop frequency; nil spins unthrottled
	Pace *rate.Limiter
}

// Run drives the loop until the context is cancelled or the line channel
// closes.  Write errors on Out abort the loop; the transport is gone.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-l.Lines:
			if !ok {
				return nil
			}
			resp := l.Disp.HandleLine(line)
			if _, err := l.Out.Write(append(resp, '\n')); err != nil {
				return err
			}
		default:
		}

		l.Disp.State.X.Advance()
		l.Disp.State.Y.Advance()

		if l.Pace != nil {
			if err := l.Pace.Wait(ctx); err != nil {
				return err
			}
		}
	}
}
