// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package display implements the strip outputs the engine renders into.
package display

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/internal/engine"
)

// None discards frames, counting them
type None struct {
	Frames int
}

func (n *None) Show(*engine.Pixels) error {
	n.Frames++
	return nil
}

func (n *None) Close() error { return nil }

// Open returns the display selected by cfg.Driver for a chain of
// numPixels. If the NRZ strip cannot be opened it falls back to the
// terminal preview on out.
func Open(cfg *config.Config, numPixels int, out io.Writer, log zerolog.Logger) (engine.Display, error) {
	switch cfg.Driver {
	case "nrz":
		d, err := OpenNRZ(cfg, numPixels, log)
		if err != nil {
			log.Warn().
				Err(err).
				Str("driver", "nrz").
				Str("dev", cfg.SPI.Dev).
				Int("speed_hz", cfg.SPI.SpeedHz).
				Msg("NRZ init failed; falling back to terminal")
			return NewTerminal(out, cfg.Brightness, cfg.FPS), nil
		}
		return d, nil
	case "term":
		return NewTerminal(out, cfg.Brightness, cfg.FPS), nil
	case "none":
		return &None{}, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}
