// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

// Animator renders one frame at a millisecond timestamp
type Animator interface {
	Tick(now uint32) error
}

// Clock returns milliseconds on a free-running counter that may wrap
type Clock func() uint32

// SinceClock counts milliseconds from start
func SinceClock(start time.Time) Clock {
	return func() uint32 {
		return uint32(time.Since(start).Milliseconds())
	}
}

// Loop is the board main loop: drain the link, dispatch, send a heartbeat,
// render, then wait for the next frame. Everything but the transport
// reader runs on the goroutine that calls Run.
type Loop struct {
	Link       *gourd.Link
	Dispatcher *Dispatcher
	Animator   Animator
	Frame      time.Duration
	Clock      Clock
	Heartbeat  bool
	Log        zerolog.Logger
}

// Step runs one iteration at now
func (l *Loop) Step(now uint32) error {
	if l.Link != nil {
		l.Link.Poll()
		for l.Link.Buffered() >= gourd.PacketSize {
			p, ok := l.Link.TryReceive()
			if !ok {
				continue
			}
			if l.Dispatcher != nil {
				l.Dispatcher.Dispatch(now, p)
			}
		}

		if l.Heartbeat {
			if _, err := l.Link.SendHeartbeat(now); err != nil {
				l.Log.Warn().Err(err).Msg("heartbeat failed")
			}
		}
	}

	if l.Animator == nil {
		return nil
	}
	return l.Animator.Tick(now)
}

// Run steps every Frame until ctx is cancelled or the link's reader stops
func (l *Loop) Run(ctx context.Context) error {
	frame := l.Frame
	if frame <= 0 {
		frame = 10 * time.Millisecond
	}
	clock := l.Clock
	if clock == nil {
		clock = SinceClock(time.Now())
	}

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		// Sampled before Step so the final chunks are still drained
		var stopped error
		if l.Link != nil {
			stopped = l.Link.PumpErr()
		}
		if err := l.Step(clock()); err != nil {
			return err
		}
		if stopped != nil && ctx.Err() == nil {
			l.Log.Info().Err(stopped).Msg("link reader stopped")
			return fmt.Errorf("link: %w", stopped)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
