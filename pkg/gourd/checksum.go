// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

// CalculateChecksum folds the command, the length and the first length payload
// bytes together with XOR.
//
// XOR only sees byte values, not positions: swapping two payload bytes, or
// flipping the same bit in two covered bytes, leaves the checksum unchanged.
// Deployed boards compute exactly this, so it cannot be strengthened without
// reflashing every board.
func CalculateChecksum(command, length uint8, payload []byte) uint8 {
	sum := command ^ length
	n := int(length)
	if n > len(payload) {
		n = len(payload)
	}
	for _, b := range payload[:n] {
		sum ^= b
	}
	return sum
}

// Verify recomputes the checksum of p and compares it with the stored one.
// Packets claiming more than MaxPayloadSize bytes never verify.
func Verify(p *Packet) bool {
	if p == nil || p.length > MaxPayloadSize {
		return false
	}
	return CalculateChecksum(p.command, p.length, p.payload[:]) == p.checksum
}
