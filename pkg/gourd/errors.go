// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import "errors"

// Sentinel errors returned by the codec. Wrapped errors carry details; match with errors.Is.
var (
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidLength    = errors.New("invalid payload length")
	ErrShortPacket      = errors.New("short packet")
	ErrPayloadTooLarge  = errors.New("payload too large")
)
