// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package gourd provides a Go implementation of the Gourd board command protocol.
//
// Gourd boards exchange fixed-size command packets over an unframed byte stream
// (USB serial on the boards, WebSocket when bridged). Every packet is exactly
// PacketSize bytes laid out as command, length, a 32-byte payload and a one-byte
// XOR checksum. There is no start byte, escape sequence or length prefix; the
// receiver slices the stream into PacketSize blocks.
package gourd

// Packet layout
const (
	MaxPayloadSize = 32
	PacketSize     = 1 + 1 + MaxPayloadSize + 1 // command + length + payload + checksum

	offsetCommand  = 0
	offsetLength   = 1
	offsetPayload  = 2
	offsetChecksum = offsetPayload + MaxPayloadSize
)

// Board geometry shared by the sender and the strip boards
const (
	// StripsPerBoard is the number of strips one OctoWS2811 board drives.
	StripsPerBoard = 8
	// ButtonLightCount is the number of single-pixel button lights on the input board.
	ButtonLightCount = 4
)

// Timing
const (
	// HeartbeatIntervalMs is the minimum gap between two heartbeats.
	HeartbeatIntervalMs = 1000
	// DefaultBaudRate is the serial rate the boards are flashed with.
	DefaultBaudRate = 9600
)

// Commands - LED strip boards 0x01-0x0F
const (
	CmdLedPulse  = 0x01
	CmdLedEffect = 0x02
)

// Commands - input board 0x10-0x1F
const (
	CmdButtonPress = 0x10
	CmdButtonLed   = 0x11
)

// Telemetry 0x20-0x2F
const (
	CmdSensorData = 0x20
)

// Diagnostics
const (
	// CmdRingLedTest is reserved by the input board firmware and never sent.
	CmdRingLedTest = 0x30
	CmdHeartbeat   = 0xFF
)

// Effect identifiers carried in CmdLedEffect payload byte 0
const (
	EffectOff            = 0x00
	EffectBreathingSolid = 0x01
	EffectBreathingMulti = 0x02
	EffectPulsesOnly     = 0x03
	EffectFire           = 0x04
)

// KnownEffect reports whether id is an effect the strip boards understand.
func KnownEffect(id uint8) bool {
	return id <= EffectFire
}
