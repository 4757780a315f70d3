// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/pkg/gourd"
)

// ErrUnknownEffect is returned for effect ids the background cannot show
var ErrUnknownEffect = errors.New("unknown effect")

// Mode is the persistent pattern under the transient events
type Mode uint8

const (
	ModeOff            Mode = gourd.EffectOff
	ModeBreathingSolid Mode = gourd.EffectBreathingSolid
	ModeBreathingMulti Mode = gourd.EffectBreathingMulti
	ModePulsesOnly     Mode = gourd.EffectPulsesOnly
	ModeFire           Mode = gourd.EffectFire
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeBreathingSolid:
		return "breathing-solid"
	case ModeBreathingMulti:
		return "breathing-multi"
	case ModePulsesOnly:
		return "pulses-only"
	case ModeFire:
		return "fire"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Background is the effect state machine. Every accepted transition restarts
// the pattern's phase at the transition time.
type Background struct {
	mode       Mode
	phaseStart uint32

	breathing Breathing
	solid     Color
	multi     Color
	fill      Color
	fire      *Fire
}

// NewBackground builds the state machine for strips × leds pixels, starting in cfg.StartEffect
func NewBackground(cfg *config.Config, rng *rand.Rand) *Background {
	palette := make([]Color, len(cfg.Fire.Palette))
	for i, c := range cfg.Fire.Palette {
		palette[i] = Color(c)
	}

	b := &Background{
		mode: ModeOff,
		breathing: Breathing{
			Period: float64(cfg.Breathing.PeriodMs),
			Min:    cfg.Breathing.MinIntensity,
			Max:    cfg.Breathing.MaxIntensity,
		},
		solid: Color(cfg.Breathing.SolidColor),
		multi: Color(cfg.Breathing.MultiRatio),
		fill:  Color(cfg.Background),
		fire: NewFire(cfg.Geometry.Strips, cfg.Geometry.LedsPerStrip,
			cfg.Fire.IntervalMs, cfg.Fire.MaxHeat, cfg.Fire.FlickerChance, palette, rng),
	}
	if gourd.KnownEffect(cfg.StartEffect) {
		b.mode = Mode(cfg.StartEffect)
	}
	return b
}

// Mode returns the current pattern
func (b *Background) Mode() Mode { return b.mode }

// PhaseStart returns the time of the last transition
func (b *Background) PhaseStart() uint32 { return b.phaseStart }


// TransitionTo switches to the effect with the given wire id.
// Unknown ids leave the state untouched.
func (b *Background) TransitionTo(now uint32, id uint8) error {
	if !gourd.KnownEffect(id) {
		return fmt.Errorf("%w: %d", ErrUnknownEffect, id)
	}
	b.mode = Mode(id)
	b.phaseStart = now
	if b.mode == ModeFire {
		b.fire.Reset(now)
	}
	return nil
}

// Advance moves time-stepped state forward. Only fire keeps such state.
func (b *Background) Advance(now uint32) {
	if b.mode == ModeFire {
		b.fire.Update(now)
	}
}

// Intensity returns the breathing intensity at now for the current phase
func (b *Background) Intensity(now uint32) float64 {
	return b.breathing.Intensity(now - b.phaseStart)
}

// Fill overwrites every pixel with the background at now
func (b *Background) Fill(now uint32, px *Pixels) {
	switch b.mode {
	case ModeBreathingSolid:
		px.Fill(b.solid.Scale(b.Intensity(now)))
	case ModeBreathingMulti:
		px.Fill(b.multi.Scale(b.Intensity(now)))
	case ModeFire:
		px.Fill(b.fill)
		b.fire.Fill(px)
	default:
		px.Fill(b.fill)
	}
}
