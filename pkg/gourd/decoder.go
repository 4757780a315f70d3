// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"fmt"
	"time"
)

// DecodePacket decodes exactly one packet from the first PacketSize bytes of data.
//
// The stream carries no framing, so a block cannot tell where a packet
// starts. A lost or extra byte shifts every following block until the stream
// happens to line up again; nothing here tries to detect or repair this.
func DecodePacket(data []byte) (*Packet, error) {
	if len(data) < PacketSize {
		return nil, fmt.Errorf("%w: %d bytes (need %d)", ErrShortPacket, len(data), PacketSize)
	}

	p := &Packet{
		command:   data[offsetCommand],
		length:    data[offsetLength],
		checksum:  data[offsetChecksum],
		timestamp: time.Now(),
	}
	copy(p.payload[:], data[offsetPayload:offsetChecksum])

	if p.length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: cmd=0x%02X len=%d (max %d)", ErrInvalidLength, p.command, p.length, MaxPayloadSize)
	}

	calculated := CalculateChecksum(p.command, p.length, p.payload[:])
	if calculated != p.checksum {
		return nil, fmt.Errorf("%w: cmd=0x%02X len=%d expected 0x%02X, got 0x%02X",
			ErrChecksumMismatch, p.command, p.length, calculated, p.checksum)
	}

	return p, nil
}
