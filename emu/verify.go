package emu

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"saturn/emu/log"
)

var ErrNonDeterministic = errors.New("emulation is not deterministic")

// Verify runs the same frames on several independent machines, in parallel,
// and checks they all end in the same state. When state is not nil, every
// machine starts from it.
func Verify(ctx context.Context, cfg Config, state []byte, frames, runs int) error {
	if runs < 2 {
		return fmt.Errorf("verify needs at least 2 runs, got %d", runs)
	}

	sums := make([]string, runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Host().NumCPU)
	for i := range runs {
		g.Go(func() error {
			e, err := New(cfg)
			if err != nil {
				return err
			}
			if state != nil {
				if err := e.LoadState(bytes.NewReader(state)); err != nil {
					return fmt.Errorf("run %d: %w", i, err)
				}
			}
			for range frames {
				if err := ctx.Err(); err != nil {
					return err
				}
				e.Saturn.RunFrame()
			}
			sums[i], err = e.Checksum()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := 1; i < runs; i++ {
		if sums[i] != sums[0] {
			return fmt.Errorf("%w: run %d ended in state %s, run 0 in %s", ErrNonDeterministic, i, sums[i], sums[0])
		}
	}
	log.ModEmu.InfoZ("verified").Int("runs", runs).Int("frames", frames).String("state", sums[0]).End()
	return nil
}
