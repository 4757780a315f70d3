// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "math/rand"

// Fire is a coarse flame: every pixel holds a heat level in [0, maxHeat]
// that indexes the palette. On each strip update heat moves one pixel
// toward the far end, fresh random heat enters at pixel 0, and pixels
// flicker up or down by one level.
type Fire struct {
	heat       [][]uint8
	lastUpdate []uint32
	interval   uint32
	maxHeat    int
	flicker    float64
	palette    []Color
	rng        *rand.Rand
}

// NewFire allocates heat for strips × leds pixels.
// palette must hold maxHeat+1 colours.
func NewFire(strips, leds int, interval uint32, maxHeat int, flicker float64, palette []Color, rng *rand.Rand) *Fire {
	heat := make([][]uint8, strips)
	for i := range heat {
		heat[i] = make([]uint8, leds)
	}
	return &Fire{
		heat:       heat,
		lastUpdate: make([]uint32, strips),
		interval:   interval,
		maxHeat:    maxHeat,
		flicker:    flicker,
		palette:    palette,
		rng:        rng,
	}
}

// Reset cools every pixel and restarts each strip's update timer at now
func (f *Fire) Reset(now uint32) {
	for s := range f.heat {
		for i := range f.heat[s] {
			f.heat[s][i] = 0
		}
		f.lastUpdate[s] = now
	}
}

// Update steps every strip whose interval has elapsed since its last step.
// Returns the number of strips stepped.
func (f *Fire) Update(now uint32) int {
	stepped := 0
	for s := range f.heat {
		if now-f.lastUpdate[s] < f.interval {
			continue
		}
		f.lastUpdate[s] = now
		f.step(s)
		stepped++
	}
	return stepped
}

func (f *Fire) step(strip int) {
	h := f.heat[strip]
	if len(h) == 0 {
		return
	}

	for i := len(h) - 1; i > 0; i-- {
		h[i] = h[i-1]
	}
	h[0] = uint8(f.rng.Intn(f.maxHeat + 1))

	for i := range h {
		if f.rng.Float64() >= f.flicker {
			continue
		}
		if f.rng.Intn(2) == 0 {
			if int(h[i]) < f.maxHeat {
				h[i]++
			}
		} else if h[i] > 0 {
			h[i]--
		}
	}
}

// Heat returns the heat of one pixel
func (f *Fire) Heat(strip, led int) uint8 {
	return f.heat[strip][led]
}

// Fill writes the palette colour for every simulated pixel
func (f *Fire) Fill(px *Pixels) {
	for s, row := range f.heat {
		for i, h := range row {
			px.Set(s, i, f.color(h))
		}
	}
}

func (f *Fire) color(h uint8) Color {
	if int(h) >= len(f.palette) {
		if len(f.palette) == 0 {
			return Black
		}
		return f.palette[len(f.palette)-1]
	}
	return f.palette[h]
}
