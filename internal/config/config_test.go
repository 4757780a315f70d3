// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverlaysDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: none
geometry:
  leds_per_strip: 30
pulse:
  color: "#00FF00"
breathing:
  solid_color: 0x000000FF
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "none", c.Driver)
	assert.Equal(t, 30, c.Geometry.LedsPerStrip)
	assert.Equal(t, 8, c.Geometry.Strips, "unset fields keep their defaults")
	assert.Equal(t, Hex(0x0000FF00), c.Pulse.Color)
	assert.Equal(t, Hex(0x000000FF), c.Breathing.SolidColor)
	assert.Equal(t, uint32(5000), c.Breathing.PeriodMs)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	want := Default()
	want.Eyes.LedCounts = []int{12, 24}
	want.Fire.Seed = 42

	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "0x00FF0000", "colours are written as hex")
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	c, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadRejectsBadColour(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lantern.yaml")
	require.NoError(t, os.WriteFile(path, []byte("background: purple\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestHexForms(t *testing.T) {
	tests := []struct {
		in   string
		want Hex
	}{
		{"c: 0x00FF0000\n", 0x00FF0000},
		{"c: 255\n", 0x000000FF},
		{"c: 0o17\n", 0x0000000F},
		{"c: \"#0000FF\"\n", 0x000000FF},
		{"c: '#FF000000'\n", 0xFF000000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var out struct{ C Hex }
			require.NoError(t, yaml.Unmarshal([]byte(tt.in), &out))
			assert.Equal(t, tt.want, out.C)
		})
	}
}

func TestHexRejects(t *testing.T) {
	for _, in := range []string{
		"c: -1\n",
		"c: 0x1FFFFFFFF\n",
		"c: \"255\"\n",
		"c: \"#GG0000\"\n",
		"c: [1, 2]\n",
	} {
		var out struct{ C Hex }
		assert.Error(t, yaml.Unmarshal([]byte(in), &out), in)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no strips", func(c *Config) { c.Geometry.Strips = 0 }},
		{"no leds", func(c *Config) { c.Geometry.LedsPerStrip = -1 }},
		{"empty pool", func(c *Config) { c.Pulse.Capacity = 0 }},
		{"zero period", func(c *Config) { c.Breathing.PeriodMs = 0 }},
		{"min above max", func(c *Config) { c.Breathing.MinIntensity = 0.8 }},
		{"short palette", func(c *Config) { c.Fire.Palette = c.Fire.Palette[:2] }},
		{"flicker above one", func(c *Config) { c.Fire.FlickerChance = 1.5 }},
		{"eye without leds", func(c *Config) { c.Eyes.LedCounts = []int{12, 0} }},
		{"two channels", func(c *Config) { c.Channels = 2 }},
		{"unknown driver", func(c *Config) { c.Driver = "pwm" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}
