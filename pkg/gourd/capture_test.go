// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"bytes"
	"testing"
	"time"
)

// ============================================================
// Capture Tests
// ============================================================

func TestCapture_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewCaptureWriter(&buf)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(250 * time.Millisecond)}
	w.now = func() time.Time {
		t := clock[0]
		clock = clock[1:]
		return t
	}

	first := EncodePacket(NewLedPulse(1))
	second := EncodePacket(NewLedEffect(EffectBreathingSolid))
	if err := w.Write(first); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(second); err != nil {
		t.Fatal(err)
	}

	records, err := ReadCapture(&buf)
	if err != nil {
		t.Fatalf("ReadCapture() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].OffsetMs != 0 || records[1].OffsetMs != 250 {
		t.Errorf("offsets = %d, %d, want 0, 250", records[0].OffsetMs, records[1].OffsetMs)
	}
	if !bytes.Equal(records[0].Raw, first) || !bytes.Equal(records[1].Raw, second) {
		t.Error("raw bytes did not survive the round trip")
	}
}

func TestCapture_Empty(t *testing.T) {
	records, err := ReadCapture(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("ReadCapture() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from empty stream", len(records))
	}
}

func TestCapture_Truncated(t *testing.T) {
	var buf bytes.Buffer
	w := NewCaptureWriter(&buf)
	if err := w.Write(EncodePacket(NewLedPulse(1))); err != nil {
		t.Fatal(err)
	}

	data := buf.Bytes()
	records, err := ReadCapture(bytes.NewReader(data[:len(data)-3]))
	if err == nil {
		t.Fatal("expected error on truncated record")
	}
	if len(records) != 0 {
		t.Errorf("got %d records before the truncated one", len(records))
	}
}
