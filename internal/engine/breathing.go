// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "math"

// Breathing is a sine wave between Min and Max intensity
type Breathing struct {
	Period float64 // ms
	Min    float64
	Max    float64
}

// Intensity returns the wave's value elapsed ms after its phase start
func (b Breathing) Intensity(elapsed uint32) float64 {
	return BreathingIntensity(elapsed, b.Period, b.Min, b.Max)
}

// BreathingIntensity maps sin(2π·elapsed/period) from [-1,1] onto [lo,hi]
func BreathingIntensity(elapsed uint32, period, lo, hi float64) float64 {
	if period <= 0 {
		return lo
	}
	s := math.Sin(2 * math.Pi * float64(elapsed) / period)
	return lo + (hi-lo)*(s+1)/2
}
