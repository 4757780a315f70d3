// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// CaptureRecord is one received block in a capture file: [offset_ms, raw]
// Captures are a CBOR sequence (RFC 8742) of these two-element arrays.
type CaptureRecord struct {
	_        struct{} `cbor:",toarray"`
	OffsetMs uint64
	Raw      []byte
}

// CaptureWriter appends raw blocks to a capture stream
type CaptureWriter struct {
	enc   *cbor.Encoder
	start time.Time
	now   func() time.Time
}

// NewCaptureWriter creates a writer whose offsets count from the first call to Write
func NewCaptureWriter(w io.Writer) *CaptureWriter {
	return &CaptureWriter{
		enc: cbor.NewEncoder(w),
		now: time.Now,
	}
}

// Write records raw, stamped with the time since the first record
func (c *CaptureWriter) Write(raw []byte) error {
	t := c.now()
	if c.start.IsZero() {
		c.start = t
	}
	return c.WriteRecord(CaptureRecord{
		OffsetMs: uint64(t.Sub(c.start).Milliseconds()),
		Raw:      raw,
	})
}

// WriteRecord records rec as given
func (c *CaptureWriter) WriteRecord(rec CaptureRecord) error {
	if err := c.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode capture record: %w", err)
	}
	return nil
}

// CaptureReader reads records back from a capture stream
type CaptureReader struct {
	dec *cbor.Decoder
}

// NewCaptureReader creates a reader over a capture stream
func NewCaptureReader(r io.Reader) *CaptureReader {
	return &CaptureReader{dec: cbor.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream
func (c *CaptureReader) Next() (CaptureRecord, error) {
	var rec CaptureRecord
	if err := c.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return CaptureRecord{}, io.EOF
		}
		return CaptureRecord{}, fmt.Errorf("failed to decode capture record: %w", err)
	}
	return rec, nil
}

// ReadCapture reads every record from r
func ReadCapture(r io.Reader) ([]CaptureRecord, error) {
	reader := NewCaptureReader(r)
	var records []CaptureRecord
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}
