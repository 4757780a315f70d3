// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package engine renders LED frames from a background effect and transient
// events, and applies decoded board commands to them.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/lantern/internal/config"
)

// Display abstracts the strip hardware (NRZ over SPI, terminal preview, etc.)
type Display interface {
	Show(px *Pixels) error
	Close() error
}

// Option configures an Engine or Eyes
type Option func(*options)

type options struct {
	log zerolog.Logger
	rng *rand.Rand
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithRand sets the random source used by the fire simulation
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func buildOptions(seed int64, opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(seed))
	}
	return o
}

// Engine composites the background and pulses for a board of strips
type Engine struct {
	pixels     *Pixels
	pool       *Pool
	background *Background
	display    Display

	strips     int
	leds       int
	travel     uint32
	pulseColor Color

	log zerolog.Logger
}

// New builds an engine from cfg. display may be nil to render without output.
func New(cfg *config.Config, display Display, opts ...Option) *Engine {
	o := buildOptions(cfg.Fire.Seed, opts)
	return &Engine{
		pixels:     NewPixels(cfg.Geometry.Strips, cfg.Geometry.LedsPerStrip),
		pool:       NewPool(cfg.Pulse.Capacity),
		background: NewBackground(cfg, o.rng),
		display:    display,
		strips:     cfg.Geometry.Strips,
		leds:       cfg.Geometry.LedsPerStrip,
		travel:     cfg.Pulse.TravelMs,
		pulseColor: Color(cfg.Pulse.Color),
		log:        o.log,
	}
}

// Pixels returns the frame buffer of the last Tick
func (e *Engine) Pixels() *Pixels { return e.pixels }

// Pool returns the pulse pool
func (e *Engine) Pool() *Pool { return e.pool }

// Background returns the effect state machine
func (e *Engine) Background() *Background { return e.background }

// TriggerPulse starts a pulse running down strip.
// Strips outside the board are ignored.
func (e *Engine) TriggerPulse(now uint32, strip int) bool {
	if strip < 0 || strip >= e.strips {
		e.log.Debug().Int("strip", strip).Msg("pulse target out of range")
		return false
	}
	if !e.pool.Trigger(now, strip) {
		e.log.Debug().Int("strip", strip).Int("capacity", e.pool.Capacity()).Msg("pulse pool full, dropped")
		return false
	}
	e.log.Debug().Int("strip", strip).Msg("triggered pulse")
	return true
}

// SetEffect switches the background effect
func (e *Engine) SetEffect(now uint32, id uint8) error {
	if err := e.background.TransitionTo(now, id); err != nil {
		return err
	}
	e.log.Info().Stringer("effect", e.background.Mode()).Msg("effect changed")
	return nil
}

// Tick renders the frame for now and hands it to the display
func (e *Engine) Tick(now uint32) error {
	e.background.Advance(now)
	e.background.Fill(now, e.pixels)
	e.pool.Step(now, e.travel, e.leds, func(strip, position int) {
		e.pixels.Set(strip, position, e.pulseColor)
	})

	if e.display == nil {
		return nil
	}
	if err := e.display.Show(e.pixels); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}
