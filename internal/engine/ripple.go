// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import "math"

// Ripples spread a brightness boost from one zone to its neighbours.
//
// A ripple visits zone target+distance, where distance grows from 0 to
// MaxTravel-1 over the ripple's duration, clamped to the last zone.
// Ripples only travel toward higher zone indices; zones below the
// origin are never reached.
type Ripples struct {
	pool      *Pool
	duration  uint32
	maxTravel int
	boost     float64
	decay     float64
}

// NewRipples allocates capacity ripple slots
func NewRipples(capacity int, duration uint32, maxTravel int, boost, decay float64) *Ripples {
	return &Ripples{
		pool:      NewPool(capacity),
		duration:  duration,
		maxTravel: maxTravel,
		boost:     boost,
		decay:     decay,
	}
}

// Trigger starts a ripple at zone. Dropped when every slot is busy.
func (r *Ripples) Trigger(now uint32, zone int) bool {
	return r.pool.Trigger(now, zone)
}

// Active returns the number of ripples in flight
func (r *Ripples) Active() int { return r.pool.Active() }

// Amplitude returns the multiplier a wavefront applies after travelling distance zones
func (r *Ripples) Amplitude(distance int) float64 {
	return 1 + (r.boost-1)*math.Pow(r.decay, float64(distance))
}

// Amplitudes resets out to 1 and multiplies in every live wavefront.
// Overlapping ripples on one zone compound.
func (r *Ripples) Amplitudes(now uint32, out []float64) {
	for i := range out {
		out[i] = 1
	}
	if len(out) == 0 {
		r.pool.Step(now, r.duration, r.maxTravel, func(int, int) {})
		return
	}
	last := len(out) - 1
	r.pool.Step(now, r.duration, r.maxTravel, func(target, distance int) {
		zone := target + distance
		if zone > last {
			zone = last
		}
		if zone < 0 {
			return
		}
		out[zone] *= r.Amplitude(distance)
	})
}
