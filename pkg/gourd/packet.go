// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import "time"

// Packet represents one Gourd command packet
type Packet struct {
	command   uint8
	length    uint8
	payload   [MaxPayloadSize]byte
	checksum  uint8
	timestamp time.Time
}

// NewPacket builds a packet for command carrying data.
// At most MaxPayloadSize bytes of data are copied and the checksum is computed.
func NewPacket(command uint8, data []byte) *Packet {
	p := &Packet{
		command:   command,
		timestamp: time.Now(),
	}
	n := copy(p.payload[:], data)
	p.length = uint8(n)
	p.checksum = CalculateChecksum(p.command, p.length, p.payload[:])
	return p
}

// NewRawPacket creates a packet from wire fields without recomputing the checksum.
// length is stored as received and may exceed MaxPayloadSize.
func NewRawPacket(command, length uint8, payload []byte, checksum uint8) *Packet {
	p := &Packet{
		command:   command,
		length:    length,
		checksum:  checksum,
		timestamp: time.Now(),
	}
	copy(p.payload[:], payload)
	return p
}

// Command returns the packet's opcode
func (p *Packet) Command() uint8 {
	return p.command
}

// Length returns the number of valid payload bytes as carried on the wire
func (p *Packet) Length() uint8 {
	return p.length
}

// Payload returns the valid payload bytes (clamped to MaxPayloadSize)
func (p *Packet) Payload() []byte {
	n := int(p.length)
	if n > MaxPayloadSize {
		n = MaxPayloadSize
	}
	return p.payload[:n]
}

// PayloadByte returns payload byte i, or 0 if i is outside the valid payload
func (p *Packet) PayloadByte(i int) uint8 {
	if i < 0 || i >= int(p.length) || i >= MaxPayloadSize {
		return 0
	}
	return p.payload[i]
}

// Checksum returns the checksum as stored in the packet
func (p *Packet) Checksum() uint8 {
	return p.checksum
}

// Timestamp returns when the packet was built or decoded
func (p *Packet) Timestamp() time.Time {
	return p.timestamp
}

// Valid reports whether the stored checksum matches the contents
func (p *Packet) Valid() bool {
	return Verify(p)
}
