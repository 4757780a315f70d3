// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/lantern/internal/engine"
)

const (
	pixelGlyph = "●"
	clearHome  = "\x1b[H\x1b[2J"
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Terminal previews frames as coloured glyphs, one line per row.
// Frames arriving faster than the refresh interval are skipped.
type Terminal struct {
	out        io.Writer
	brightness float64
	interval   time.Duration
	now        func() time.Time
	last       time.Time
	frames     int
}

// NewTerminal writes at most fps frames per second to out
func NewTerminal(out io.Writer, brightness float64, fps int) *Terminal {
	var interval time.Duration
	if fps > 0 {
		interval = time.Second / time.Duration(fps)
	}
	return &Terminal{
		out:        out,
		brightness: brightness,
		interval:   interval,
		now:        time.Now,
	}
}

func (t *Terminal) Show(px *engine.Pixels) error {
	now := t.now()
	if t.frames > 0 && now.Sub(t.last) < t.interval {
		return nil
	}
	t.last = now
	t.frames++
	_, err := io.WriteString(t.out, clearHome+Render(px, t.brightness))
	return err
}

func (t *Terminal) Close() error {
	_, err := io.WriteString(t.out, "\n")
	return err
}

// Frames returns the number of frames actually drawn
func (t *Terminal) Frames() int { return t.frames }

// Render draws px as text. Each line is a row label followed by one glyph
// per pixel; white is folded into the RGB preview colour.
func Render(px *engine.Pixels, brightness float64) string {
	var s strings.Builder
	var rgb []byte
	for r := 0; r < px.Rows(); r++ {
		s.WriteString(labelStyle.Render(fmt.Sprintf("%2d ", r)))
		for _, c := range px.Row(r) {
			rgb = appendColor(rgb[:0], c, 3, brightness)
			hex := fmt.Sprintf("#%02X%02X%02X", rgb[0], rgb[1], rgb[2])
			s.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(pixelGlyph))
		}
		s.WriteString("\n")
	}
	return s.String()
}
