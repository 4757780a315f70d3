// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"fmt"
	"strings"
)

// FormatPacket formats a packet into a human-readable string
func FormatPacket(p *Packet) string {
	timestamp := p.timestamp.Format("15:04:05.000")
	name := FormatCommand(p.command)

	result := fmt.Sprintf("[%s] %s (0x%02X) len=%d chk=0x%02X\n", timestamp, name, p.command, p.length, p.checksum)
	result += FormatPayload(p)
	return result
}

// FormatCommand returns the human-readable name for an opcode
func FormatCommand(command uint8) string {
	switch command {
	case CmdLedPulse:
		return "LED_PULSE"
	case CmdLedEffect:
		return "LED_EFFECT"
	case CmdButtonPress:
		return "BUTTON_PRESS"
	case CmdButtonLed:
		return "BUTTON_LED"
	case CmdSensorData:
		return "SENSOR_DATA"
	case CmdRingLedTest:
		return "RING_LED_TEST"
	case CmdHeartbeat:
		return "HEARTBEAT"
	default:
		return "UNKNOWN"
	}
}

// FormatEffect returns the human-readable name for an effect id
func FormatEffect(id uint8) string {
	switch id {
	case EffectOff:
		return "OFF"
	case EffectBreathingSolid:
		return "BREATHING_SOLID"
	case EffectBreathingMulti:
		return "BREATHING_MULTI"
	case EffectPulsesOnly:
		return "PULSES_ONLY"
	case EffectFire:
		return "FIRE"
	default:
		return "UNKNOWN"
	}
}

// FormatPayload formats the payload based on the opcode
func FormatPayload(p *Packet) string {
	if p.length == 0 {
		return "  (no payload)\n"
	}

	switch p.command {
	case CmdLedPulse:
		return fmt.Sprintf("  Strip: %d\n", p.payload[0])

	case CmdLedEffect:
		id := p.payload[0]
		return fmt.Sprintf("  Effect: %s (%d)\n", FormatEffect(id), id)

	case CmdButtonPress:
		if p.length < 2 {
			break
		}
		state := "released"
		if p.payload[1] != 0 {
			state = "pressed"
		}
		return fmt.Sprintf("  Button: %d %s\n", p.payload[0], state)

	case CmdButtonLed:
		led, ok := ParseButtonLed(p)
		if !ok {
			break
		}
		return fmt.Sprintf("  Light: %d, Brightness: %d, RGB: #%02X%02X%02X\n", led.ID, led.Brightness, led.R, led.G, led.B)

	case CmdSensorData:
		if p.length < 4 {
			break
		}
		value := uint16(p.payload[1])<<8 | uint16(p.payload[2])
		return fmt.Sprintf("  Sensor: %d, Analog: %d, Digital: %d\n", p.payload[0], value, p.payload[3])

	case CmdHeartbeat:
		if uptime, ok := HeartbeatUptime(p); ok {
			return fmt.Sprintf("  Uptime: %s\n", formatDuration(uint64(uptime)))
		}
	}

	return fmt.Sprintf("  Raw: % X\n", p.Payload())
}

// FormatRaw formats the full wire block as hex, one field per group
func FormatRaw(raw []byte) string {
	if len(raw) < PacketSize {
		return fmt.Sprintf("% X", raw)
	}
	return fmt.Sprintf("%02X %02X [% X] %02X",
		raw[offsetCommand], raw[offsetLength], raw[offsetPayload:offsetChecksum], raw[offsetChecksum])
}

// formatDuration converts milliseconds to human-readable format
func formatDuration(ms uint64) string {
	seconds := ms / 1000
	if seconds == 0 {
		return fmt.Sprintf("%d ms", ms)
	}

	const (
		secondsPerMinute = 60
		secondsPerHour   = 60 * secondsPerMinute
		secondsPerDay    = 24 * secondsPerHour
	)

	days := seconds / secondsPerDay
	seconds %= secondsPerDay

	hours := seconds / secondsPerHour
	seconds %= secondsPerHour

	minutes := seconds / secondsPerMinute
	seconds %= secondsPerMinute

	parts := []string{}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return strings.Join(parts, " ")
}
