// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/pkg/gourd"
)

func TestParseEffect(t *testing.T) {
	cases := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"fire", gourd.EffectFire, true},
		{"Solid", gourd.EffectBreathingSolid, true},
		{"0", gourd.EffectOff, true},
		{"3", gourd.EffectPulsesOnly, true},
		{"0x02", gourd.EffectBreathingMulti, true},
		{"200", 200, true}, // unknown ids pass through
		{"rainbow", 0, false},
		{"256", 0, false},
	}
	for _, c := range cases {
		got, err := parseEffect(c.in)
		if !c.ok {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseByte(t *testing.T) {
	v, err := parseByte("0xFF")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), v)

	_, err = parseByte("-1")
	assert.Error(t, err)
}

func TestBuildControlPacket(t *testing.T) {
	byName := map[string]controlAction{}
	for _, a := range controlActions {
		byName[a.name] = a
	}

	p, err := buildControlPacket(byName["Pulse"], "11")
	require.NoError(t, err)
	assert.Equal(t, uint8(gourd.CmdLedPulse), p.Command())
	assert.Equal(t, uint8(3), p.PayloadByte(0))

	// Empty input sends the placeholder
	p, err = buildControlPacket(byName["Effect"], "")
	require.NoError(t, err)
	assert.Equal(t, uint8(gourd.EffectFire), p.PayloadByte(0))

	p, err = buildControlPacket(byName["Button LED"], "1 10 20 30 128")
	require.NoError(t, err)
	led, ok := gourd.ParseButtonLed(p)
	require.True(t, ok)
	assert.Equal(t, gourd.ButtonLed{ID: 1, Brightness: 128, R: 10, G: 20, B: 30}, led)

	p, err = buildControlPacket(byName["Button press"], "2 0")
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0}, p.Payload())

	_, err = buildControlPacket(byName["Button LED"], "1 2")
	assert.Error(t, err)
}

func TestButtonBridge(t *testing.T) {
	var a, b, eyes bytes.Buffer
	br := &buttonBridge{
		targets: []*gourd.Link{gourd.NewLink(&a), gourd.NewLink(&b)},
		eyes:    gourd.NewLink(&eyes),
		log:     zerolog.Nop(),
	}

	assert.Equal(t, 3, br.handle(gourd.NewButtonPress(9, true)))
	pulse := gourd.EncodePacket(gourd.NewLedPulse(1))
	assert.Equal(t, pulse, a.Bytes())
	assert.Equal(t, pulse, b.Bytes())
	assert.Equal(t, gourd.EncodePacket(gourd.NewButtonPress(9, true)), eyes.Bytes())

	// Releases only reach the eyes board
	a.Reset()
	eyes.Reset()
	assert.Equal(t, 1, br.handle(gourd.NewButtonPress(9, false)))
	assert.Zero(t, a.Len())
	assert.Equal(t, gourd.EncodePacket(gourd.NewButtonPress(9, false)), eyes.Bytes())

	assert.Zero(t, br.handle(gourd.NewHeartbeat(5)))
}

func TestReplayRecords(t *testing.T) {
	recs := []gourd.CaptureRecord{
		{OffsetMs: 100, Raw: gourd.EncodePacket(gourd.NewLedPulse(0))},
		{OffsetMs: 110, Raw: gourd.EncodePacket(gourd.NewLedPulse(1))},
		{OffsetMs: 120, Raw: gourd.EncodePacket(gourd.NewLedPulse(2))},
	}

	var sent [][]byte
	n, err := replayRecords(context.Background(), recs, 1, func(raw []byte) error {
		sent = append(sent, raw)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	for i := range recs {
		assert.Equal(t, recs[i].Raw, sent[i])
	}

	boom := errors.New("boom")
	n, err = replayRecords(context.Background(), recs, 0, func([]byte) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = replayRecords(ctx, recs, 0, func([]byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "0 seconds", formatUptime(0))
	assert.Equal(t, "1 second", formatUptime(1000))
	assert.Equal(t, "1 minute and 5 seconds", formatUptime(65_000))
	assert.Equal(t, "1 day, 1 hour, and 1 second", formatUptime(90_001_000))
}

func TestRecordFrame(t *testing.T) {
	stats := gourd.NewStatistics()
	var peer peerState
	events := eventLog{max: 2}

	recordFrame(gourd.Frame{Packet: gourd.NewHeartbeat(4200)}, stats, &peer, &events, false)
	assert.True(t, peer.haveBeat)
	assert.Equal(t, uint32(4200), peer.uptime)
	assert.Empty(t, events.entries)

	recordFrame(gourd.Frame{Packet: gourd.NewLedEffect(9)}, stats, &peer, &events, false)
	require.Len(t, events.entries, 1)
	assert.True(t, events.entries[0].isError)

	recordFrame(gourd.Frame{Err: gourd.ErrChecksumMismatch}, stats, &peer, &events, false)
	recordFrame(gourd.Frame{Err: gourd.ErrChecksumMismatch}, stats, &peer, &events, false)
	assert.Len(t, events.entries, 2)
	assert.Equal(t, uint64(4), stats.TotalPackets)
	assert.Equal(t, uint64(2), stats.ChecksumErrors)
}

func TestWebSocketConnection(t *testing.T) {
	first := gourd.EncodePacket(gourd.NewLedPulse(4))
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		// One block split over two messages with a text message between
		c.WriteMessage(websocket.BinaryMessage, first[:10])
		c.WriteMessage(websocket.TextMessage, []byte("hello"))
		c.WriteMessage(websocket.BinaryMessage, first[10:])
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	conn, err := OpenWebSocketConnection("ws"+strings.TrimPrefix(srv.URL, "http"), "", "", false)
	require.NoError(t, err)
	defer conn.Close()

	got, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = OpenWebSocketConnection("http://example.com", "", "", false)
	assert.Error(t, err)
}

func TestCheckStatsInterval(t *testing.T) {
	assert.NoError(t, checkStatsInterval(1))
	assert.Error(t, checkStatsInterval(0))
	assert.Error(t, checkStatsInterval(-5))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	require.NoError(t, writeDefaultConfig(path, false))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), got)

	require.NoError(t, os.WriteFile(path, []byte("driver: none\n"), 0644))
	assert.Error(t, writeDefaultConfig(path, false), "existing file is kept")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "driver: none\n", string(raw))

	require.NoError(t, writeDefaultConfig(path, true))
	got, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Driver, got.Driver)
}
