// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import "fmt"

// Encoder encodes Gourd packets for transmission.
type Encoder struct{}

// NewEncoder creates a new Gourd packet encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode serializes p to its PacketSize wire form.
// Raw packets whose length exceeds MaxPayloadSize are rejected.
func (e *Encoder) Encode(p *Packet) ([]byte, error) {
	if p.length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, p.length, MaxPayloadSize)
	}
	return EncodePacket(p), nil
}

// EncodePacketFromValues builds and serializes a packet in one step.
// data beyond MaxPayloadSize is dropped and the length clamped accordingly.
func EncodePacketFromValues(command uint8, data []byte) []byte {
	return EncodePacket(NewPacket(command, data))
}

// EncodePacket writes the packet fields in declaration order:
// command, length, the full 32-byte payload buffer, checksum.
// The stored checksum is written as-is so corrupted packets can be reproduced.
func EncodePacket(p *Packet) []byte {
	buf := make([]byte, PacketSize)
	buf[offsetCommand] = p.command
	buf[offsetLength] = p.length
	copy(buf[offsetPayload:offsetChecksum], p.payload[:])
	buf[offsetChecksum] = p.checksum
	return buf
}
