// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// ErrLinkClosed is returned by Receive once the pump has stopped and every
// buffered byte has been consumed.
var ErrLinkClosed = errors.New("link closed")

const pumpChunkSize = 256

// Frame is one PacketSize block taken off the stream.
// Packet is nil when Err is set.
type Frame struct {
	Raw    []byte
	Packet *Packet
	Err    error
}

// Link moves packets over a byte transport.
//
// The receive side is driven by a single goroutine: Feed, Poll, TryReceive,
// Next and Receive must not be called concurrently. Pump is the only method
// meant to run on its own goroutine; it hands chunks to the owner over a
// channel. Send may be called from any goroutine.
type Link struct {
	w   io.Writer
	wmu sync.Mutex

	rx      []byte
	chunks  chan []byte
	done    chan struct{}
	pumpMu  sync.Mutex
	pumpErr error

	lastHeartbeat uint32
	stats         *Statistics
	log           zerolog.Logger
}

// LinkOption configures a Link
type LinkOption func(*Link)

// WithLogger sets the logger used for dropped packets
func WithLogger(log zerolog.Logger) LinkOption {
	return func(l *Link) { l.log = log }
}

// WithStatistics shares a statistics tracker with the caller
func WithStatistics(s *Statistics) LinkOption {
	return func(l *Link) { l.stats = s }
}

// NewLink creates a link that writes packets to w. w may be nil for receive-only use.
func NewLink(w io.Writer, opts ...LinkOption) *Link {
	l := &Link{
		w:      w,
		rx:     make([]byte, 0, PacketSize*4),
		chunks: make(chan []byte, 64),
		done:   make(chan struct{}),
		stats:  NewStatistics(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Statistics returns the link's receive statistics
func (l *Link) Statistics() *Statistics {
	return l.stats
}

// Send builds a packet and writes its PacketSize bytes in a single Write.
// data beyond MaxPayloadSize is dropped.
func (l *Link) Send(command uint8, data []byte) error {
	return l.SendPacket(NewPacket(command, data))
}

// SendPacket writes an already built packet, including its stored checksum.
func (l *Link) SendPacket(p *Packet) error {
	if l.w == nil {
		return fmt.Errorf("send 0x%02X: link has no writer", p.command)
	}
	buf, err := NewEncoder().Encode(p)
	if err != nil {
		return err
	}
	return l.write(buf)
}

// SendRaw writes a PacketSize block unchanged, without checking its checksum.
// Replaying a capture uses it to reproduce corrupt blocks too.
func (l *Link) SendRaw(raw []byte) error {
	if l.w == nil {
		return fmt.Errorf("send raw: link has no writer")
	}
	if len(raw) != PacketSize {
		return fmt.Errorf("send raw: %w (%d bytes)", ErrShortPacket, len(raw))
	}
	return l.write(raw)
}

func (l *Link) write(buf []byte) error {
	l.wmu.Lock()
	defer l.wmu.Unlock()

	n, err := l.w.Write(buf)
	if err != nil {
		return fmt.Errorf("send 0x%02X: %w", buf[offsetCommand], err)
	}
	if n != len(buf) {
		return fmt.Errorf("send 0x%02X: %w (%d of %d bytes)", buf[offsetCommand], io.ErrShortWrite, n, len(buf))
	}
	return l.flush()
}

func (l *Link) flush() error {
	switch f := l.w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case interface{ Drain() error }:
		return f.Drain()
	}
	return nil
}

// SendHeartbeat sends a HEARTBEAT when more than HeartbeatIntervalMs have passed
// since the last one. now is a free-running millisecond counter; wraparound is
// handled by unsigned subtraction. Reports whether a heartbeat was attempted.
func (l *Link) SendHeartbeat(now uint32) (bool, error) {
	if now-l.lastHeartbeat <= HeartbeatIntervalMs {
		return false, nil
	}
	l.lastHeartbeat = now
	return true, l.SendPacket(NewHeartbeat(now))
}

// Feed appends received bytes to the receive buffer
func (l *Link) Feed(data []byte) {
	l.rx = append(l.rx, data...)
}

// Buffered returns the number of received bytes not yet consumed
func (l *Link) Buffered() int {
	return len(l.rx)
}

// Next takes one PacketSize block off the receive buffer and decodes it.
// Returns false when fewer than PacketSize bytes are buffered.
func (l *Link) Next() (Frame, bool) {
	if len(l.rx) < PacketSize {
		return Frame{}, false
	}

	raw := make([]byte, PacketSize)
	copy(raw, l.rx[:PacketSize])
	rest := copy(l.rx, l.rx[PacketSize:])
	l.rx = l.rx[:rest]

	p, err := DecodePacket(raw)
	if err != nil {
		l.stats.Update(nil, err, nil)
		l.log.Warn().Err(err).Hex("raw", raw).Msg("dropped packet")
		return Frame{Raw: raw, Err: err}, true
	}

	l.stats.Update(p, nil, ValidatePacket(p))
	return Frame{Raw: raw, Packet: p}, true
}

// TryReceive returns the next valid packet without blocking.
// A block that fails verification is consumed and reported as nothing received.
func (l *Link) TryReceive() (*Packet, bool) {
	f, ok := l.Next()
	if !ok || f.Err != nil {
		return nil, false
	}
	return f.Packet, true
}

// Pump reads r until it fails or ctx is cancelled, handing chunks to the
// link's owner. Run it on its own goroutine, once per link. A read that
// returns no data and no error (a serial read timeout) is not an error.
func (l *Link) Pump(ctx context.Context, r io.Reader) error {
	defer close(l.done)

	buf := make([]byte, pumpChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			l.setPumpErr(err)
			return err
		}

		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case l.chunks <- chunk:
			case <-ctx.Done():
				l.setPumpErr(ctx.Err())
				return ctx.Err()
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				l.setPumpErr(ErrLinkClosed)
				return nil
			}
			err = fmt.Errorf("read: %w", err)
			l.setPumpErr(err)
			return err
		}
	}
}

func (l *Link) setPumpErr(err error) {
	l.pumpMu.Lock()
	l.pumpErr = err
	l.pumpMu.Unlock()
}

// PumpErr returns why the pump stopped, or nil while it is running
func (l *Link) PumpErr() error {
	l.pumpMu.Lock()
	defer l.pumpMu.Unlock()
	return l.pumpErr
}

// Poll moves every chunk the pump has delivered into the receive buffer
// without blocking. Returns the number of bytes added.
func (l *Link) Poll() int {
	total := 0
	for {
		select {
		case chunk := <-l.chunks:
			l.Feed(chunk)
			total += len(chunk)
		default:
			return total
		}
	}
}

// Receive blocks until a block is available, the pump stops, or ctx is done.
// Frames that failed verification are returned with Err set.
func (l *Link) Receive(ctx context.Context) (Frame, error) {
	for {
		if f, ok := l.Next(); ok {
			return f, nil
		}
		select {
		case chunk := <-l.chunks:
			l.Feed(chunk)
		case <-l.done:
			if l.Poll() > 0 {
				continue
			}
			if err := l.PumpErr(); err != nil {
				return Frame{}, err
			}
			return Frame{}, ErrLinkClosed
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		}
	}
}
