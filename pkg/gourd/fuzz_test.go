// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package gourd

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// randomPacket builds a packet with a random opcode and 0-32 random payload bytes
func randomPacket(rng *rand.Rand) *Packet {
	data := make([]byte, rng.Intn(MaxPayloadSize+1))
	rng.Read(data)
	return NewPacket(uint8(rng.Intn(256)), data)
}

// ============================================================
// Block Slicing Fuzz Tests
// ============================================================

// TestFuzzLink_RandomBytes feeds random bytes to a link in random chunks
// and verifies it consumes exactly one block per PacketSize bytes
func TestFuzzLink_RandomBytes(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)
	t.Logf("Running %d fuzz rounds", rounds)

	for i := 0; i < rounds; i++ {
		l := NewLink(nil)
		data := make([]byte, rng.Intn(PacketSize*4))
		rng.Read(data)

		blocks := 0
		for rest := data; len(rest) > 0; {
			n := 1 + rng.Intn(len(rest))
			l.Feed(rest[:n])
			rest = rest[n:]
			for {
				f, ok := l.Next()
				if !ok {
					break
				}
				blocks++
				if (f.Packet == nil) == (f.Err == nil) {
					t.Fatalf("round %d: frame must carry exactly one of packet or error", i)
				}
			}
		}
		if blocks != len(data)/PacketSize {
			t.Fatalf("round %d: %d blocks from %d bytes", i, blocks, len(data))
		}
		if l.Buffered() != len(data)%PacketSize {
			t.Fatalf("round %d: %d bytes buffered, want %d", i, l.Buffered(), len(data)%PacketSize)
		}
	}
}

// TestFuzzRoundTrip encodes random packets and decodes them back
func TestFuzzRoundTrip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)

	for i := 0; i < rounds; i++ {
		want := randomPacket(rng)
		got, err := DecodePacket(EncodePacket(want))
		if err != nil {
			t.Fatalf("round %d: DecodePacket() error = %v", i, err)
		}
		if got.Command() != want.Command() || !bytes.Equal(got.Payload(), want.Payload()) {
			t.Fatalf("round %d: mismatch cmd=0x%02X/0x%02X payload=% X/% X",
				i, got.Command(), want.Command(), got.Payload(), want.Payload())
		}
	}
}

// TestFuzzBitFlip flips one random bit inside the command, the covered payload
// or the checksum. XOR always sees a single flipped bit.
func TestFuzzBitFlip(t *testing.T) {
	rounds := getFuzzRounds()
	rng := newFuzzRng(t)

	for i := 0; i < rounds; i++ {
		p := randomPacket(rng)
		buf := EncodePacket(p)

		positions := []int{offsetCommand, offsetChecksum}
		for j := 0; j < int(p.Length()); j++ {
			positions = append(positions, offsetPayload+j)
		}
		pos := positions[rng.Intn(len(positions))]
		buf[pos] ^= 1 << uint(rng.Intn(8))

		if _, err := DecodePacket(buf); err == nil {
			t.Fatalf("round %d: flip at offset %d undetected (% X)", i, pos, buf)
		}
	}
}

// TestFuzzLink_Stream sends a random mix of valid and corrupted packets through
// a link and checks that every valid one comes out and every corrupt one is counted
func TestFuzzLink_Stream(t *testing.T) {
	rounds := getFuzzRounds() / 10
	if rounds == 0 {
		rounds = 1
	}
	rng := newFuzzRng(t)

	for i := 0; i < rounds; i++ {
		l := NewLink(nil)
		var wantValid, wantCorrupt int

		n := rng.Intn(20) + 1
		for j := 0; j < n; j++ {
			buf := EncodePacket(randomPacket(rng))
			if rng.Intn(3) == 0 {
				buf[offsetChecksum] ^= uint8(rng.Intn(255) + 1)
				wantCorrupt++
			} else {
				wantValid++
			}
			// Deliver in uneven chunks
			for len(buf) > 0 {
				k := rng.Intn(len(buf)) + 1
				l.Feed(buf[:k])
				buf = buf[k:]
			}
		}

		gotValid := 0
		for l.Buffered() >= PacketSize {
			if _, ok := l.TryReceive(); ok {
				gotValid++
			}
		}

		if gotValid != wantValid {
			t.Fatalf("round %d: %d valid packets, want %d", i, gotValid, wantValid)
		}
		if got := l.Statistics().ChecksumErrors; got != uint64(wantCorrupt) {
			t.Fatalf("round %d: %d checksum errors, want %d", i, got, wantCorrupt)
		}
	}
}
