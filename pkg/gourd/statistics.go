// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Statistics tracks packet statistics and error rates
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPackets     uint64
	ValidPackets     uint64
	ChecksumErrors   uint64
	LengthErrors     uint64
	DecodeErrors     uint64
	MalformedPackets uint64
	LengthMismatches uint64
	InvalidValues    uint64
	UnknownCommands  uint64
	Heartbeats       uint64

	// Rates (calculated)
	PacketRate float64 // packets/sec
	ErrorRate  float64 // errors/sec
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a packet and its errors
func (s *Statistics) Update(packet *Packet, decodeErr error, validationErrors []ValidationError) {
	s.TotalPackets++
	s.LastUpdateTime = time.Now()

	if decodeErr != nil {
		switch {
		case errors.Is(decodeErr, ErrChecksumMismatch):
			s.ChecksumErrors++
		case errors.Is(decodeErr, ErrInvalidLength):
			s.LengthErrors++
		default:
			s.DecodeErrors++
		}
		return
	}

	if len(validationErrors) == 0 {
		s.ValidPackets++
		if packet != nil && packet.command == CmdHeartbeat {
			s.Heartbeats++
		}
		return
	}

	for _, err := range validationErrors {
		switch err.Type {
		case AnomalyLengthMismatch:
			s.LengthMismatches++
			s.MalformedPackets++
		case AnomalyInvalidValue:
			s.InvalidValues++
			s.MalformedPackets++
		case AnomalyUnknownCommand:
			s.UnknownCommands++
		}
	}
}

// ErrorCount returns every packet that failed decoding or validation
func (s *Statistics) ErrorCount() uint64 {
	return s.ChecksumErrors + s.LengthErrors + s.DecodeErrors + s.MalformedPackets + s.UnknownCommands
}

// CalculateRates calculates packet and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PacketRate = float64(s.TotalPackets) / elapsed
		s.ErrorRate = float64(s.ErrorCount()) / elapsed
	}
}

func percent(n, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	elapsed := time.Since(s.StartTime)

	var b strings.Builder
	fmt.Fprintf(&b, "=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	fmt.Fprintf(&b, "Total Packets:   %8d\n", s.TotalPackets)
	fmt.Fprintf(&b, "Valid Packets:   %8d (%.1f%%)\n", s.ValidPackets, percent(s.ValidPackets, s.TotalPackets))

	if s.ChecksumErrors > 0 {
		fmt.Fprintf(&b, "Checksum Errors: %8d (%.1f%%)\n", s.ChecksumErrors, percent(s.ChecksumErrors, s.TotalPackets))
	}
	if s.LengthErrors > 0 {
		fmt.Fprintf(&b, "Length Errors:   %8d (%.1f%%)\n", s.LengthErrors, percent(s.LengthErrors, s.TotalPackets))
	}
	if s.DecodeErrors > 0 {
		fmt.Fprintf(&b, "Decode Errors:   %8d (%.1f%%)\n", s.DecodeErrors, percent(s.DecodeErrors, s.TotalPackets))
	}
	if s.MalformedPackets > 0 {
		fmt.Fprintf(&b, "Malformed Pkts:  %8d (%.1f%%)\n", s.MalformedPackets, percent(s.MalformedPackets, s.TotalPackets))
		if s.LengthMismatches > 0 {
			fmt.Fprintf(&b, "  Length Mismatch:  %5d\n", s.LengthMismatches)
		}
		if s.InvalidValues > 0 {
			fmt.Fprintf(&b, "  Invalid Values:   %5d\n", s.InvalidValues)
		}
	}
	if s.UnknownCommands > 0 {
		fmt.Fprintf(&b, "Unknown Cmds:    %8d (%.1f%%)\n", s.UnknownCommands, percent(s.UnknownCommands, s.TotalPackets))
	}
	if s.Heartbeats > 0 {
		fmt.Fprintf(&b, "Heartbeats:      %8d\n", s.Heartbeats)
	}

	fmt.Fprintf(&b, "Packet Rate:     %8.1f pkts/sec\n", s.PacketRate)
	fmt.Fprintf(&b, "Error Rate:      %8.1f errors/sec\n", s.ErrorRate)
	b.WriteString("================================\n")

	return b.String()
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	*s = *NewStatistics()
}
