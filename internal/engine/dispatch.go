// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"github.com/rs/zerolog"

	"github.com/Thermoquad/lantern/pkg/gourd"
)

// PulseTarget receives LED_PULSE commands
type PulseTarget interface {
	TriggerPulse(now uint32, target int) bool
}

// EffectTarget receives LED_EFFECT commands
type EffectTarget interface {
	SetEffect(now uint32, id uint8) error
}

// ButtonHandler receives BUTTON_PRESS commands
type ButtonHandler interface {
	HandleButton(now uint32, button int, pressed bool)
}

// Dispatcher applies decoded packets to the animation state.
// Any collaborator may be nil; its commands are then ignored.
type Dispatcher struct {
	Pulses  PulseTarget
	Effects EffectTarget
	Buttons ButtonHandler
	Lights  *ButtonLights
	Log     zerolog.Logger

	peerUptime uint32
	peerSeenAt uint32
	peerSeen   bool
}

// NewEngineDispatcher routes pulses and effects to e
func NewEngineDispatcher(e *Engine, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{Pulses: e, Effects: e, Log: log}
}

// NewEyesDispatcher routes button presses and button lights to e
func NewEyesDispatcher(e *Eyes, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{Buttons: e, Lights: e.Lights(), Log: log}
}

// Dispatch applies one packet
func (d *Dispatcher) Dispatch(now uint32, p *gourd.Packet) {
	switch p.Command() {
	case gourd.CmdLedPulse:
		// An empty payload selects strip 0
		strip := int(p.PayloadByte(0))
		if d.Pulses == nil {
			d.ignored(p)
			return
		}
		d.Pulses.TriggerPulse(now, strip)

	case gourd.CmdLedEffect:
		if p.Length() < 1 {
			d.Log.Warn().Msg("LED_EFFECT without effect id")
			return
		}
		if d.Effects == nil {
			d.ignored(p)
			return
		}
		if err := d.Effects.SetEffect(now, p.PayloadByte(0)); err != nil {
			d.Log.Warn().Err(err).Msg("effect not changed")
		}

	case gourd.CmdButtonPress:
		if p.Length() < 1 || d.Buttons == nil {
			d.ignored(p)
			return
		}
		pressed := p.Length() < 2 || p.PayloadByte(1) != 0
		d.Buttons.HandleButton(now, int(p.PayloadByte(0)), pressed)

	case gourd.CmdButtonLed:
		led, ok := gourd.ParseButtonLed(p)
		if !ok {
			d.Log.Warn().Uint8("length", p.Length()).Msg("malformed BUTTON_LED")
			return
		}
		if d.Lights == nil {
			d.ignored(p)
			return
		}
		if !d.Lights.Set(led) {
			d.Log.Debug().Uint8("id", led.ID).Msg("button light out of range")
		}

	case gourd.CmdHeartbeat:
		uptime, ok := gourd.HeartbeatUptime(p)
		if !ok {
			d.Log.Debug().Msg("short HEARTBEAT")
			return
		}
		d.peerUptime = uptime
		d.peerSeenAt = now
		d.peerSeen = true
		d.Log.Trace().Uint32("peer_uptime_ms", uptime).Msg("heartbeat")

	default:
		d.ignored(p)
	}
}

func (d *Dispatcher) ignored(p *gourd.Packet) {
	d.Log.Debug().
		Str("command", gourd.FormatCommand(p.Command())).
		Uint8("opcode", p.Command()).
		Msg("command ignored")
}

// Peer returns the uptime carried by the last heartbeat and when it arrived
func (d *Dispatcher) Peer() (uptime, seenAt uint32, ok bool) {
	return d.peerUptime, d.peerSeenAt, d.peerSeen
}
