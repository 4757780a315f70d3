// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import "encoding/binary"

// Command builder functions create Packet structs ready for encoding.
// Payload layouts follow the board firmware byte for byte.

// NewLedPulse creates an LED_PULSE packet (0x01).
// The strip index wraps modulo StripsPerBoard, so a sender counting buttons
// across several boards can pass its global index unchanged.
func NewLedPulse(strip int) *Packet {
	idx := strip % StripsPerBoard
	if idx < 0 {
		idx += StripsPerBoard
	}
	return NewPacket(CmdLedPulse, []byte{uint8(idx)})
}

// NewLedEffect creates an LED_EFFECT packet (0x02).
// The id is sent as-is; boards ignore ids they do not know.
func NewLedEffect(effect uint8) *Packet {
	return NewPacket(CmdLedEffect, []byte{effect})
}

// NewButtonPress creates a BUTTON_PRESS packet (0x10).
func NewButtonPress(button uint8, pressed bool) *Packet {
	state := uint8(0)
	if pressed {
		state = 1
	}
	return NewPacket(CmdButtonPress, []byte{button, state})
}

// NewButtonLed creates a BUTTON_LED packet (0x11) in the short [id, r, g, b] form.
func NewButtonLed(id, r, g, b uint8) *Packet {
	return NewPacket(CmdButtonLed, []byte{id, r, g, b})
}

// NewButtonLedWithBrightness creates a BUTTON_LED packet (0x11) in the long
// [id, brightness, r, g, b] form read by the input board firmware.
func NewButtonLedWithBrightness(id, brightness, r, g, b uint8) *Packet {
	return NewPacket(CmdButtonLed, []byte{id, brightness, r, g, b})
}

// NewSensorData creates a SENSOR_DATA packet (0x20).
// value is sent big-endian as the analog reading.
func NewSensorData(sensor uint8, value uint16, digital bool) *Packet {
	d := uint8(0)
	if digital {
		d = 1
	}
	return NewPacket(CmdSensorData, []byte{sensor, uint8(value >> 8), uint8(value), d})
}

// NewHeartbeat creates a HEARTBEAT packet (0xFF) carrying the sender's uptime in ms.
func NewHeartbeat(uptimeMs uint32) *Packet {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uptimeMs)
	return NewPacket(CmdHeartbeat, buf[:])
}

// HeartbeatUptime extracts the uptime from a HEARTBEAT packet.
// Returns false if the packet is not a heartbeat or is too short.
func HeartbeatUptime(p *Packet) (uint32, bool) {
	if p == nil || p.command != CmdHeartbeat || p.length < 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(p.payload[:4]), true
}

// ButtonLed is a decoded BUTTON_LED payload.
type ButtonLed struct {
	ID         uint8
	Brightness uint8
	R, G, B    uint8
}

// ParseButtonLed decodes either BUTTON_LED payload form.
// The short form has no brightness byte and reports full brightness.
func ParseButtonLed(p *Packet) (ButtonLed, bool) {
	if p == nil || p.command != CmdButtonLed {
		return ButtonLed{}, false
	}
	switch p.length {
	case 4:
		return ButtonLed{ID: p.payload[0], Brightness: 0xFF, R: p.payload[1], G: p.payload[2], B: p.payload[3]}, true
	case 5:
		return ButtonLed{ID: p.payload[0], Brightness: p.payload[1], R: p.payload[2], G: p.payload[3], B: p.payload[4]}, true
	default:
		return ButtonLed{}, false
	}
}
