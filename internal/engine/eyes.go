// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/lantern/internal/config"
)

// Eyes drives the ring board: one zone of LEDs per eye, each breathing on
// its own, brightened by ripples that start when the eye's button changes.
//
// A pressed eye breathes PressedSpeedup times faster, peaks at
// Max/PressedDimming and shows PressedColor. When button lights are
// configured they occupy one extra zone after the eyes.
type Eyes struct {
	pixels  *Pixels
	pressed []bool
	ripples *Ripples
	amps    []float64
	lights  *ButtonLights

	breathing    Breathing
	speedup      float64
	dimming      float64
	idleColor    Color
	pressedColor Color

	display Display
	log     zerolog.Logger
}

// NewEyes builds the eyes renderer from cfg.Eyes and cfg.Breathing
func NewEyes(cfg *config.Config, display Display, opts ...Option) *Eyes {
	o := buildOptions(cfg.Fire.Seed, opts)
	ec := cfg.Eyes

	zones := append([]int(nil), ec.LedCounts...)
	var lights *ButtonLights
	if ec.ButtonLights > 0 {
		lights = NewButtonLights(ec.ButtonLights)
		zones = append(zones, ec.ButtonLights)
	}

	return &Eyes{
		pixels:  NewZonedPixels(zones),
		pressed: make([]bool, len(ec.LedCounts)),
		ripples: NewRipples(ec.Ripples, ec.RippleMs, ec.MaxTravel, ec.Boost, ec.Decay),
		amps:    make([]float64, len(ec.LedCounts)),
		lights:  lights,
		breathing: Breathing{
			Period: float64(cfg.Breathing.PeriodMs),
			Min:    cfg.Breathing.MinIntensity,
			Max:    cfg.Breathing.MaxIntensity,
		},
		speedup:      ec.PressedSpeedup,
		dimming:      ec.PressedDimming,
		idleColor:    Color(ec.IdleColor),
		pressedColor: Color(ec.PressedColor),
		display:      display,
		log:          o.log,
	}
}

// Count returns the number of eyes
func (e *Eyes) Count() int { return len(e.pressed) }

// Pixels returns the frame buffer of the last Tick
func (e *Eyes) Pixels() *Pixels { return e.pixels }

// Lights returns the button lights, or nil when none are configured
func (e *Eyes) Lights() *ButtonLights { return e.lights }

// Ripples returns the ripple pool
func (e *Eyes) Ripples() *Ripples { return e.ripples }

// Pressed reports whether eye's button is held
func (e *Eyes) Pressed(eye int) bool {
	return eye >= 0 && eye < len(e.pressed) && e.pressed[eye]
}

// SetPressed records a button change and starts a ripple from that eye.
// Both presses and releases ripple.
func (e *Eyes) SetPressed(now uint32, eye int, pressed bool) {
	if eye < 0 || eye >= len(e.pressed) {
		e.log.Debug().Int("eye", eye).Msg("eye out of range")
		return
	}
	e.pressed[eye] = pressed
	if !e.ripples.Trigger(now, eye) {
		e.log.Debug().Int("eye", eye).Msg("ripple pool full, dropped")
		return
	}
	e.log.Debug().Int("eye", eye).Bool("pressed", pressed).Msg("triggered ripple")
}

// HandleButton routes BUTTON_PRESS commands to SetPressed
func (e *Eyes) HandleButton(now uint32, button int, pressed bool) {
	e.SetPressed(now, button, pressed)
}

// Intensity returns eye's breathing intensity at now, before colour scaling.
// All eyes share one phase that starts at time 0. An unknown eye sits at
// the breathing minimum.
func (e *Eyes) Intensity(now uint32, eye int, amplitude float64) float64 {
	if eye < 0 || eye >= len(e.pressed) {
		return e.breathing.Min
	}
	period := e.breathing.Period
	peak := e.breathing.Max
	if e.pressed[eye] {
		period /= e.speedup
		peak /= e.dimming
	}
	peak *= amplitude
	return BreathingIntensity(now, period, e.breathing.Min, peak)
}

// Tick renders every eye at now and hands the frame to the display
func (e *Eyes) Tick(now uint32) error {
	e.ripples.Amplitudes(now, e.amps)

	for eye := range e.pressed {
		base := e.idleColor
		if e.pressed[eye] {
			base = e.pressedColor
		}
		e.pixels.FillRow(eye, base.Scale(e.Intensity(now, eye, e.amps[eye])))
	}

	if e.lights != nil {
		copy(e.pixels.Row(len(e.pressed)), e.lights.colors)
	}

	if e.display == nil {
		return nil
	}
	if err := e.display.Show(e.pixels); err != nil {
		return fmt.Errorf("show frame: %w", err)
	}
	return nil
}
