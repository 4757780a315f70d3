// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/internal/engine"
)

// NRZ drives WS2812/SK6812 strips through an SPI port. All rows of the
// frame are written back to back as one chain.
type NRZ struct {
	dev        *nrzled.Dev
	closer     func() error
	numPixels  int
	channels   int
	brightness float64
	buf        []byte
	log        zerolog.Logger
}

// OpenNRZ initialises the host drivers and opens cfg.SPI.Dev
func OpenNRZ(cfg *config.Config, numPixels int, log zerolog.Logger) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	port, err := spireg.Open(cfg.SPI.Dev)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.SPI.Dev, err)
	}
	d, err := NewNRZ(port, cfg, numPixels, log)
	if err != nil {
		port.Close()
		return nil, err
	}
	d.closer = port.Close
	return d, nil
}

// NewNRZ drives an already opened port. The caller keeps ownership of port.
func NewNRZ(port spi.Port, cfg *config.Config, numPixels int, log zerolog.Logger) (*NRZ, error) {
	opts := nrzled.Opts{
		NumPixels: numPixels,
		Channels:  cfg.Channels,
		Freq:      physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz,
	}
	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	log.Info().
		Str("dev", dev.String()).
		Int("pixels", numPixels).
		Int("channels", cfg.Channels).
		Int("speed_hz", cfg.SPI.SpeedHz).
		Msg("NRZ strip ready")
	return &NRZ{
		dev:        dev,
		numPixels:  numPixels,
		channels:   cfg.Channels,
		brightness: cfg.Brightness,
		buf:        make([]byte, 0, numPixels*cfg.Channels),
		log:        log,
	}, nil
}

func (d *NRZ) String() string { return d.dev.String() }

// Show sends one frame. A frame larger than the chain is truncated and a
// smaller one leaves the remaining pixels dark.
func (d *NRZ) Show(px *engine.Pixels) error {
	d.buf = Encode(d.buf[:0], px, d.channels, d.brightness)
	want := d.numPixels * d.channels
	if len(d.buf) > want {
		d.buf = d.buf[:want]
	}
	for len(d.buf) < want {
		d.buf = append(d.buf, 0)
	}
	if _, err := d.dev.Write(d.buf); err != nil {
		return fmt.Errorf("nrz write: %w", err)
	}
	return nil
}

// Close turns the strip off and releases the port if OpenNRZ opened it
func (d *NRZ) Close() error {
	err := d.dev.Halt()
	if d.closer != nil {
		if cerr := d.closer(); err == nil {
			err = cerr
		}
	}
	return err
}
