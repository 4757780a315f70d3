// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "github.com/Thermoquad/lantern/pkg/gourd"

// ButtonLights holds the single-pixel lights inside the arcade buttons
type ButtonLights struct {
	colors []Color
}

// NewButtonLights allocates n dark lights
func NewButtonLights(n int) *ButtonLights {
	return &ButtonLights{colors: make([]Color, n)}
}

// Set applies a BUTTON_LED command. Brightness scales the colour.
// Returns false for ids outside the set.
func (b *ButtonLights) Set(led gourd.ButtonLed) bool {
	if int(led.ID) >= len(b.colors) {
		return false
	}
	c := RGB(led.R, led.G, led.B)
	if led.Brightness != 0xFF {
		c = c.Scale(float64(led.Brightness) / 255)
	}
	b.colors[led.ID] = c
	return true
}

// Len returns the number of lights
func (b *ButtonLights) Len() int { return len(b.colors) }

// Color returns light i
func (b *ButtonLights) Color(i int) Color {
	if i < 0 || i >= len(b.colors) {
		return Black
	}
	return b.colors[i]
}
