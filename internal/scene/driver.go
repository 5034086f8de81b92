package scene

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Driver invokes a per-frame callback at a paced cadence, one call at a
// time, from the goroutine that calls Run.
type Driver struct {
	limiter   *rate.Limiter
	maxFrames int64
}

// NewDriver paces frames at most once per interval. maxFrames of zero runs
// until the context ends.
func NewDriver(interval time.Duration, maxFrames int64) *Driver {
	return &Driver{
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		maxFrames: maxFrames,
	}
}

// Run calls tick with the 1-based frame number until ctx is done, tick
// fails, or maxFrames frames have run. It returns nil only in the last case.
func (d *Driver) Run(ctx context.Context, tick func(frame int64) error) error {
	var n int64
	for d.maxFrames == 0 || n < d.maxFrames {
		if err := d.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				// Next frame lands past the deadline.
				<-ctx.Done()
			}
			return ctx.Err()
		}
		n++
		if err := tick(n); err != nil {
			return err
		}
	}
	return nil
}
