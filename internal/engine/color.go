// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "fmt"

// Color packs white, red, green and blue as 0xWWRRGGBB.
// Channel order on the wire is the display driver's concern.
type Color uint32

const Black Color = 0

// RGB builds a colour with no white component
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGBW builds a colour including the white channel
func RGBW(r, g, b, w uint8) Color {
	return Color(uint32(w)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

func (c Color) W() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Scale multiplies every channel by f and truncates.
// Results above 255 saturate; negative factors give black.
func (c Color) Scale(f float64) Color {
	return RGBW(scaleChannel(c.R(), f), scaleChannel(c.G(), f), scaleChannel(c.B(), f), scaleChannel(c.W(), f))
}

func scaleChannel(v uint8, f float64) uint8 {
	x := float64(v) * f
	switch {
	case x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}

func (c Color) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}
