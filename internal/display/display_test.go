// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/internal/engine"
)

func TestEncodeRGBW(t *testing.T) {
	px := engine.NewPixels(1, 2)
	px.Set(0, 0, engine.RGBW(1, 2, 3, 4))
	px.Set(0, 1, engine.RGB(0xFF, 0, 0x80))

	got := Encode(nil, px, 4, 1)
	assert.Equal(t, []byte{1, 2, 3, 4, 0xFF, 0, 0x80, 0}, got)
}

func TestEncodeRGBFoldsWhite(t *testing.T) {
	px := engine.NewPixels(1, 2)
	px.Set(0, 0, engine.RGBW(0x10, 0x20, 0x30, 0x05))
	px.Set(0, 1, engine.RGBW(0xFF, 0, 0, 0x10))

	got := Encode(nil, px, 3, 1)
	assert.Equal(t, []byte{0x15, 0x25, 0x35, 0xFF, 0x10, 0x10}, got)
}

func TestEncodeBrightness(t *testing.T) {
	px := engine.NewPixels(1, 1)
	px.Set(0, 0, engine.RGB(200, 100, 50))

	got := Encode(nil, px, 3, 0.5)
	assert.Equal(t, []byte{100, 50, 25}, got)
}

func TestNRZRecordsFrames(t *testing.T) {
	cfg := config.Default()
	cfg.Channels = 3

	var buf bytes.Buffer
	d, err := NewNRZ(spitest.NewRecordRaw(&buf), cfg, 4, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", d.String())

	px := engine.NewPixels(2, 2)
	px.Fill(engine.RGB(0xFF, 0, 0))
	require.NoError(t, d.Show(px))
	first := append([]byte(nil), buf.Bytes()...)
	assert.NotEmpty(t, first)

	buf.Reset()
	px.Fill(engine.Black)
	require.NoError(t, d.Show(px))
	assert.NotEqual(t, first, buf.Bytes())

	assert.NoError(t, d.Close())
}

func TestNRZShortFramePadsDark(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer
	d, err := NewNRZ(spitest.NewRecordRaw(&buf), cfg, 8, zerolog.Nop())
	require.NoError(t, err)

	// Fewer pixels than the chain still writes a full frame
	require.NoError(t, d.Show(engine.NewPixels(1, 3)))
	assert.Len(t, d.buf, 8*cfg.Channels)

	// More pixels are truncated
	require.NoError(t, d.Show(engine.NewPixels(2, 10)))
	assert.Len(t, d.buf, 8*cfg.Channels)
}

func TestRenderLayout(t *testing.T) {
	px := engine.NewZonedPixels([]int{3, 5})
	out := Render(px, 1)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 3, strings.Count(lines[0], pixelGlyph))
	assert.Equal(t, 5, strings.Count(lines[1], pixelGlyph))
}

func TestTerminalRateLimit(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, 1, 10)
	now := time.Unix(0, 0)
	term.now = func() time.Time { return now }

	px := engine.NewPixels(1, 1)
	require.NoError(t, term.Show(px))
	now = now.Add(50 * time.Millisecond)
	require.NoError(t, term.Show(px))
	assert.Equal(t, 1, term.Frames())

	now = now.Add(50 * time.Millisecond)
	require.NoError(t, term.Show(px))
	assert.Equal(t, 2, term.Frames())
	assert.Contains(t, buf.String(), pixelGlyph)
}

func TestOpenSelectsDriver(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer

	cfg.Driver = "none"
	d, err := Open(cfg, 10, &out, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &None{}, d)

	cfg.Driver = "term"
	d, err = Open(cfg, 10, &out, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, d)

	cfg.Driver = "laser"
	_, err = Open(cfg, 10, &out, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpenFallsBackToTerminal(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "nrz"
	cfg.SPI.Dev = "/dev/does-not-exist"

	var logs bytes.Buffer
	d, err := Open(cfg, 10, &bytes.Buffer{}, zerolog.New(&logs))
	require.NoError(t, err)
	assert.IsType(t, &Terminal{}, d)
	assert.Contains(t, logs.String(), "falling back")
}

func TestNoneCountsFrames(t *testing.T) {
	var n None
	px := engine.NewPixels(1, 1)
	require.NoError(t, n.Show(px))
	require.NoError(t, n.Show(px))
	assert.Equal(t, 2, n.Frames)
	assert.NoError(t, n.Close())
}
