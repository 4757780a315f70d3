// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the lantern.yaml board description.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Hex is a packed 0xWWRRGGBB colour. In YAML it is written as an integer,
// usually hex, and also accepts "#RRGGBB" strings.
type Hex uint32

func (h Hex) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("0x%08X", uint32(h))}, nil
}

func (h *Hex) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: colour must be a scalar", value.Line)
	}
	s := strings.TrimSpace(value.Value)

	var v uint64
	var err error
	switch {
	case value.ShortTag() == "!!int":
		v, err = strconv.ParseUint(s, 0, 32)
	case strings.HasPrefix(s, "#"):
		v, err = strconv.ParseUint(s[1:], 16, 32)
	default:
		err = errors.New("not an integer or #RRGGBB")
	}
	if err != nil {
		return fmt.Errorf("line %d: invalid colour %q", value.Line, value.Value)
	}
	*h = Hex(v)
	return nil
}

type Geometry struct {
	Strips       int `yaml:"strips"`
	LedsPerStrip int `yaml:"leds_per_strip"`
}

type Pulse struct {
	Capacity int    `yaml:"capacity"`
	TravelMs uint32 `yaml:"travel_ms"`
	Color    Hex    `yaml:"color"`
}

type Breathing struct {
	PeriodMs     uint32  `yaml:"period_ms"`
	MinIntensity float64 `yaml:"min_intensity"`
	MaxIntensity float64 `yaml:"max_intensity"`
	SolidColor   Hex     `yaml:"solid_color"`
	MultiRatio   Hex     `yaml:"multi_ratio"`
}

type Fire struct {
	IntervalMs    uint32  `yaml:"interval_ms"`
	MaxHeat       int     `yaml:"max_heat"`
	FlickerChance float64 `yaml:"flicker_chance"`
	Palette       []Hex   `yaml:"palette"`
	Seed          int64   `yaml:"seed,omitempty"` // 0 seeds from the clock
}

type Eyes struct {
	LedCounts      []int   `yaml:"led_counts"`
	Ripples        int     `yaml:"ripples"`
	RippleMs       uint32  `yaml:"ripple_ms"`
	MaxTravel      int     `yaml:"max_travel"`
	Boost          float64 `yaml:"boost"`
	Decay          float64 `yaml:"decay"`
	PressedSpeedup float64 `yaml:"pressed_speedup"`
	PressedDimming float64 `yaml:"pressed_dimming"`
	IdleColor      Hex     `yaml:"idle_color"`
	PressedColor   Hex     `yaml:"pressed_color"`
	ButtonLights   int     `yaml:"button_lights"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Config struct {
	Driver      string  `yaml:"driver"` // "nrz" | "term" | "none"
	Channels    int     `yaml:"channels"` // 3 (RGB) or 4 (RGBW)
	Brightness  float64 `yaml:"brightness"`
	FPS         int     `yaml:"fps"`
	StartEffect uint8   `yaml:"start_effect"`
	Background  Hex     `yaml:"background"`

	Geometry  Geometry  `yaml:"geometry"`
	Pulse     Pulse     `yaml:"pulse"`
	Breathing Breathing `yaml:"breathing"`
	Fire      Fire      `yaml:"fire"`
	Eyes      Eyes      `yaml:"eyes"`
	SPI       SPI       `yaml:"spi,omitempty"`
}

// Default returns the configuration the strip boards ship with
func Default() *Config {
	return &Config{
		Driver:      "term",
		Channels:    4,
		Brightness:  1.0,
		FPS:         100,
		StartEffect: 1,
		Background:  0x00000000,
		Geometry: Geometry{
			Strips:       8,
			LedsPerStrip: 50,
		},
		Pulse: Pulse{
			Capacity: 8,
			TravelMs: 400,
			Color:    0x00FFFFFF,
		},
		Breathing: Breathing{
			PeriodMs:     5000,
			MinIntensity: 0.05,
			MaxIntensity: 0.5,
			SolidColor:   0x00FF0000,
			MultiRatio:   0x00FF22AA,
		},
		Fire: Fire{
			IntervalMs:    100,
			MaxHeat:       3,
			FlickerChance: 0.2,
			Palette:       []Hex{0x00000000, 0x00400000, 0x00FF2000, 0x00FFA000},
		},
		Eyes: Eyes{
			LedCounts:      []int{12, 12, 12, 12, 12, 24, 24, 12, 24, 24, 24, 24, 12, 24, 24, 12},
			Ripples:        8,
			RippleMs:       1000,
			MaxTravel:      3,
			Boost:          1.5,
			Decay:          0.6,
			PressedSpeedup: 2.5,
			PressedDimming: 2.0,
			IdleColor:      0x00FF0000,
			PressedColor:   0x00FFFFFF,
			ButtonLights:   4,
		},
		SPI: SPI{
			Dev:     "/dev/spidev0.0",
			SpeedHz: 2500000,
		},
	}
}

// Load reads path on top of Default, so a file only needs the fields it changes
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, falling back to Default when path does not exist
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return c, err
}

// Save writes c to path as YAML
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate rejects settings the engine cannot run with
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Geometry.Strips > 0, "geometry.strips must be positive, got %d", c.Geometry.Strips)
	check(c.Geometry.LedsPerStrip > 0, "geometry.leds_per_strip must be positive, got %d", c.Geometry.LedsPerStrip)
	check(c.Pulse.Capacity > 0, "pulse.capacity must be positive, got %d", c.Pulse.Capacity)
	check(c.Pulse.TravelMs > 0, "pulse.travel_ms must be positive")
	check(c.Breathing.PeriodMs > 0, "breathing.period_ms must be positive")
	check(c.Breathing.MinIntensity >= 0 && c.Breathing.MinIntensity <= c.Breathing.MaxIntensity && c.Breathing.MaxIntensity <= 1,
		"breathing intensities must satisfy 0 <= min <= max <= 1, got %.2f/%.2f", c.Breathing.MinIntensity, c.Breathing.MaxIntensity)
	check(c.Fire.IntervalMs > 0, "fire.interval_ms must be positive")
	check(c.Fire.MaxHeat > 0, "fire.max_heat must be positive, got %d", c.Fire.MaxHeat)
	check(len(c.Fire.Palette) == c.Fire.MaxHeat+1, "fire.palette needs max_heat+1 = %d entries, got %d", c.Fire.MaxHeat+1, len(c.Fire.Palette))
	check(c.Fire.FlickerChance >= 0 && c.Fire.FlickerChance <= 1, "fire.flicker_chance must be within [0,1], got %.2f", c.Fire.FlickerChance)
	check(len(c.Eyes.LedCounts) > 0, "eyes.led_counts must not be empty")
	for i, n := range c.Eyes.LedCounts {
		check(n > 0, "eyes.led_counts[%d] must be positive, got %d", i, n)
	}
	check(c.Eyes.Ripples > 0, "eyes.ripples must be positive, got %d", c.Eyes.Ripples)
	check(c.Eyes.RippleMs > 0, "eyes.ripple_ms must be positive")
	check(c.Eyes.MaxTravel > 0, "eyes.max_travel must be positive, got %d", c.Eyes.MaxTravel)
	check(c.Eyes.PressedSpeedup > 0 && c.Eyes.PressedDimming > 0, "eyes pressed speedup and dimming must be positive")
	check(c.Channels == 3 || c.Channels == 4, "channels must be 3 or 4, got %d", c.Channels)
	check(c.FPS > 0, "fps must be positive, got %d", c.FPS)
	check(c.Brightness >= 0 && c.Brightness <= 1, "brightness must be within [0,1], got %.2f", c.Brightness)
	switch c.Driver {
	case "nrz", "term", "none":
	default:
		check(false, "unknown driver %q (want nrz, term or none)", c.Driver)
	}

	return errors.Join(errs...)
}
