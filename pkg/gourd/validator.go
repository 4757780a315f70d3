// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	AnomalyLengthMismatch AnomalyType = iota
	AnomalyInvalidValue
	AnomalyUnknownCommand
	AnomalyChecksumError
	AnomalyDecodeError
)

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidatePacket checks a checksum-valid packet for payloads the boards would misread.
// Returns a slice of validation errors (empty if packet is valid)
func ValidatePacket(p *Packet) []ValidationError {
	errors := []ValidationError{}

	switch p.command {
	case CmdLedPulse:
		errors = append(errors, validateLedPulse(p)...)
	case CmdLedEffect:
		errors = append(errors, validateLedEffect(p)...)
	case CmdButtonPress:
		errors = append(errors, validateMinLength(p, "BUTTON_PRESS", 2)...)
	case CmdButtonLed:
		errors = append(errors, validateButtonLed(p)...)
	case CmdSensorData:
		errors = append(errors, validateMinLength(p, "SENSOR_DATA", 4)...)
	case CmdHeartbeat:
		errors = append(errors, validateMinLength(p, "HEARTBEAT", 4)...)
	case CmdRingLedTest:
		// reserved, no payload contract
	default:
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownCommand,
			Message: fmt.Sprintf("Unknown command 0x%02X", p.command),
			Details: map[string]interface{}{"command": p.command},
		})
	}

	return errors
}

func validateMinLength(p *Packet, name string, min int) []ValidationError {
	if int(p.length) < min {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: fmt.Sprintf("%s payload too short (expected %d bytes)", name, min),
			Details: map[string]interface{}{"length": p.length, "expected": min},
		}}
	}
	return nil
}

// validateLedPulse validates LED_PULSE packet
func validateLedPulse(p *Packet) []ValidationError {
	if errs := validateMinLength(p, "LED_PULSE", 1); errs != nil {
		return errs
	}
	if strip := p.payload[0]; strip >= StripsPerBoard {
		return []ValidationError{{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("Strip index=%d out of range (max %d)", strip, StripsPerBoard-1),
			Details: map[string]interface{}{"strip": strip, "max": StripsPerBoard - 1},
		}}
	}
	return nil
}

// validateLedEffect validates LED_EFFECT packet
func validateLedEffect(p *Packet) []ValidationError {
	if errs := validateMinLength(p, "LED_EFFECT", 1); errs != nil {
		return errs
	}
	if id := p.payload[0]; !KnownEffect(id) {
		return []ValidationError{{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("Unknown effect id=%d", id),
			Details: map[string]interface{}{"effect": id},
		}}
	}
	return nil
}

// validateButtonLed validates BUTTON_LED packet. Both the 4-byte and 5-byte forms are accepted.
func validateButtonLed(p *Packet) []ValidationError {
	errors := []ValidationError{}

	if p.length != 4 && p.length != 5 {
		return []ValidationError{{
			Type:    AnomalyLengthMismatch,
			Message: fmt.Sprintf("BUTTON_LED payload length=%d (expected 4 or 5)", p.length),
			Details: map[string]interface{}{"length": p.length},
		}}
	}

	if id := p.payload[0]; id >= ButtonLightCount {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidValue,
			Message: fmt.Sprintf("Button light id=%d out of range (max %d)", id, ButtonLightCount-1),
			Details: map[string]interface{}{"id": id, "max": ButtonLightCount - 1},
		})
	}

	return errors
}
