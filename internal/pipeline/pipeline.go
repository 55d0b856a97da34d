// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"ampliscreen/internal/variant"
)

// Config controls partition fan-out.
type Config struct {
	Workers int // concurrent partitions; <=0 picks DefaultWorkers()
}

// DefaultWorkers leaves one CPU free and caps at 4. Never below 1.
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n > 4 {
		n = 4
	}
	if n < 1 {
		n = 1
	}
	return n
}

// PartitionError reports which chromosome failed to screen.
type PartitionError struct {
	Chrom string
	Err   error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("screening chromosome %q: %v", e.Chrom, e.Err)
}

func (e *PartitionError) Unwrap() error { return e.Err }

// DoneFunc observes each finished partition. It may be called concurrently.
type DoneFunc func(chrom string, rows int, elapsed time.Duration, err error)

// Coordinator screens chromosome partitions, possibly concurrently.
type Coordinator struct {
	workers int
	scr     Screener
	done    DoneFunc
}

// New fixes the worker count once; it is not re-read later.
func New(cfg Config, scr Screener) *Coordinator {
	w := cfg.Workers
	if w <= 0 {
		w = DefaultWorkers()
	}
	return &Coordinator{workers: w, scr: scr}
}

// OnPartitionDone registers fn; nil clears it.
func (c *Coordinator) OnPartitionDone(fn DoneFunc) { c.done = fn }

// Workers is the effective worker count.
func (c *Coordinator) Workers() int { return c.workers }

// Screen splits vs by chromosome, screens every partition and returns the
// partitions concatenated in first-encountered order. It returns either every
// row or an error: the first failing partition cancels the rest and comes back
// as a *PartitionError.
func (c *Coordinator) Screen(ctx context.Context, vs []variant.Variant) ([]variant.Variant, error) {
	parts := Split(vs)
	if len(parts) == 0 {
		return nil, nil
	}

	if len(parts) == 1 || c.workers == 1 {
		for i := range parts {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out, err := c.screenOne(parts[i])
			if err != nil {
				return nil, err
			}
			parts[i].Variants = out
		}
		return Merge(parts), nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	// Each goroutine writes only its own slot; the merge reads after Wait.
feed:
	for i := range parts {
		select {
		case <-gctx.Done():
			break feed
		default:
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := c.screenOne(parts[i])
			if err != nil {
				return err
			}
			parts[i].Variants = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Merge(parts), nil
}

func (c *Coordinator) screenOne(p Partition) (out []variant.Variant, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = &PartitionError{Chrom: p.Chrom, Err: err}
		}
		if c.done != nil {
			c.done(p.Chrom, len(p.Variants), time.Since(start), err)
		}
	}()

	out, err = c.scr.ScreenPartition(p.Chrom, p.Variants)
	if err == nil && len(out) != len(p.Variants) {
		err = fmt.Errorf("screener returned %d rows for %d", len(out), len(p.Variants))
	}
	return out, err
}
