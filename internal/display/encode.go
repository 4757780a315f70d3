// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import "github.com/Thermoquad/lantern/internal/engine"

// Encode appends px to dst as raw R,G,B(,W) bytes, scaled by brightness.
// With three channels the white component is folded into red, green and
// blue so RGB strips still show it.
func Encode(dst []byte, px *engine.Pixels, channels int, brightness float64) []byte {
	for _, c := range px.Data() {
		dst = appendColor(dst, c, channels, brightness)
	}
	return dst
}

func appendColor(dst []byte, c engine.Color, channels int, brightness float64) []byte {
	if brightness != 1 {
		c = c.Scale(brightness)
	}
	if channels == 4 {
		return append(dst, c.R(), c.G(), c.B(), c.W())
	}
	w := c.W()
	return append(dst, addSat(c.R(), w), addSat(c.G(), w), addSat(c.B(), w))
}

func addSat(a, b uint8) uint8 {
	if s := uint16(a) + uint16(b); s < 0xFF {
		return uint8(s)
	}
	return 0xFF
}
