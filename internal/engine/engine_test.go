// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/lantern/internal/config"
	"github.com/Thermoquad/lantern/pkg/gourd"
)

// fakeDisplay captures every frame shown.
type fakeDisplay struct {
	frames []*Pixels
	err    error
	closed bool
}

func (d *fakeDisplay) Show(px *Pixels) error {
	if d.err != nil {
		return d.err
	}
	d.frames = append(d.frames, px.Clone())
	return nil
}

func (d *fakeDisplay) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDisplay) last() *Pixels {
	return d.frames[len(d.frames)-1]
}

// lit returns the positions on strip that hold c
func lit(px *Pixels, strip int, c Color) []int {
	var out []int
	for i, v := range px.Row(strip) {
		if v == c {
			out = append(out, i)
		}
	}
	return out
}

func testConfig() *config.Config {
	c := config.Default()
	c.StartEffect = gourd.EffectOff
	c.Fire.Seed = 1
	return c
}

// ============ Color ============

func TestColorChannels(t *testing.T) {
	c := RGBW(0x11, 0x22, 0x33, 0x44)
	assert.Equal(t, Color(0x44112233), c)
	assert.Equal(t, uint8(0x11), c.R())
	assert.Equal(t, uint8(0x22), c.G())
	assert.Equal(t, uint8(0x33), c.B())
	assert.Equal(t, uint8(0x44), c.W())
}

func TestColorScale(t *testing.T) {
	tests := []struct {
		in     Color
		f      float64
		expect Color
	}{
		{RGB(0xFF, 0, 0), 0.5, RGB(127, 0, 0)},
		{RGB(0xFF, 0x22, 0xAA), 0.05, RGB(12, 1, 8)},
		{RGB(200, 100, 0), 2, RGB(255, 200, 0)},
		{RGB(10, 10, 10), -1, Black},
		{RGBW(0, 0, 0, 100), 0.5, RGBW(0, 0, 0, 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expect, tt.in.Scale(tt.f), "%s * %.2f", tt.in, tt.f)
	}
}

// ============ Pixels ============

func TestPixelsAddressing(t *testing.T) {
	px := NewPixels(8, 50)
	assert.Equal(t, 400, px.Len())
	assert.Equal(t, 2*50+7, px.Index(2, 7))
	assert.Equal(t, -1, px.Index(8, 0))
	assert.Equal(t, -1, px.Index(0, 50))

	px.Set(2, 7, RGB(1, 2, 3))
	assert.Equal(t, RGB(1, 2, 3), px.Data()[107])
	px.Set(9, 0, RGB(1, 1, 1)) // ignored
	assert.Equal(t, Black, px.At(9, 0))
}

func TestZonedPixels(t *testing.T) {
	px := NewZonedPixels([]int{12, 24, 12})
	assert.Equal(t, 48, px.Len())
	assert.Equal(t, 3, px.Rows())
	assert.Equal(t, 24, px.RowLen(1))
	assert.Equal(t, 12+5, px.Index(1, 5))
	assert.Equal(t, 36, px.Index(2, 0))

	px.FillRow(1, RGB(9, 9, 9))
	assert.Equal(t, Black, px.At(0, 11))
	assert.Equal(t, RGB(9, 9, 9), px.At(1, 0))
	assert.Equal(t, RGB(9, 9, 9), px.At(1, 23))
	assert.Equal(t, Black, px.At(2, 0))
}

// ============ Pool ============

func TestPoolSaturation(t *testing.T) {
	p := NewPool(8)
	for i := 0; i < 8; i++ {
		require.True(t, p.Trigger(100, i), "slot %d", i)
	}
	before := p.Slots()

	assert.False(t, p.Trigger(150, 3), "ninth trigger must be dropped")
	assert.Equal(t, 8, p.Active())
	assert.Equal(t, before, p.Slots(), "dropped trigger changes nothing")
}

func TestPoolFirstFreeSlot(t *testing.T) {
	p := NewPool(3)
	p.Trigger(0, 10)
	p.Trigger(50, 11)
	p.Trigger(100, 12)

	// Retire slot 0 only
	p.Step(400, 400, 10, func(int, int) {})
	require.Equal(t, 2, p.Active())

	require.True(t, p.Trigger(401, 99))
	assert.Equal(t, Slot{Start: 401, Target: 99, Active: true}, p.Slots()[0])
}

func TestPoolActiveWindow(t *testing.T) {
	const travel = 400
	const t0 = 1000

	tests := []struct {
		now     uint32
		visible bool
	}{
		{t0, true},
		{t0 + 1, true},
		{t0 + travel/2, true},
		{t0 + travel - 1, true},
		{t0 + travel, false},
	}

	for _, tt := range tests {
		p := NewPool(8)
		p.Trigger(t0, 2)
		visited := false
		p.Step(tt.now, travel, 50, func(target, position int) {
			visited = true
			assert.Equal(t, 2, target)
			assert.GreaterOrEqual(t, position, 0)
			assert.Less(t, position, 50)
		})
		assert.Equal(t, tt.visible, visited, "now=t0+%d", tt.now-t0)
		assert.Equal(t, tt.visible, p.Active() == 1, "retired in the same pass at t0+%d", tt.now-t0)
	}
}

func TestPoolPositions(t *testing.T) {
	p := NewPool(1)
	p.Trigger(0, 0)

	var got []int
	for _, now := range []uint32{0, 7, 8, 200, 392, 399} {
		p.Step(now, 400, 50, func(_, position int) { got = append(got, position) })
	}
	assert.Equal(t, []int{0, 0, 1, 25, 49, 49}, got)
}

func TestPoolWrapAround(t *testing.T) {
	p := NewPool(1)
	p.Trigger(0xFFFFFF00, 0)

	var got []int
	p.Step(0x00000064, 400, 400, func(_, position int) { got = append(got, position) })
	assert.Equal(t, []int{0x164}, got, "elapsed time survives counter wrap")
}

// ============ Breathing ============

func TestBreathingQuarterPeriodIsMax(t *testing.T) {
	assert.InDelta(t, 0.5, BreathingIntensity(1250, 5000, 0.05, 0.5), 1e-9)
	assert.InDelta(t, 0.275, BreathingIntensity(0, 5000, 0.05, 0.5), 1e-9)
	assert.InDelta(t, 0.05, BreathingIntensity(3750, 5000, 0.05, 0.5), 1e-9)
}

func TestBreathingPeriodicAndBounded(t *testing.T) {
	b := Breathing{Period: 5000, Min: 0.05, Max: 0.5}
	for elapsed := uint32(0); elapsed < 20000; elapsed += 37 {
		v := b.Intensity(elapsed)
		assert.GreaterOrEqual(t, v, 0.05-1e-9)
		assert.LessOrEqual(t, v, 0.5+1e-9)
		assert.InDelta(t, v, b.Intensity(elapsed+5000), 1e-9, "elapsed=%d", elapsed)
	}
}

// ============ Background ============

func TestBackgroundUnknownEffectLeavesState(t *testing.T) {
	b := NewBackground(testConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, b.TransitionTo(500, gourd.EffectBreathingMulti))

	err := b.TransitionTo(900, 9)
	assert.True(t, errors.Is(err, ErrUnknownEffect))
	assert.Equal(t, ModeBreathingMulti, b.Mode())
	assert.Equal(t, uint32(500), b.PhaseStart())
}

func TestBackgroundTransitionResetsPhase(t *testing.T) {
	b := NewBackground(testConfig(), rand.New(rand.NewSource(1)))

	for _, id := range []uint8{gourd.EffectOff, gourd.EffectBreathingSolid, gourd.EffectBreathingSolid, gourd.EffectPulsesOnly, gourd.EffectFire} {
		now := uint32(1000 + int(id)*100)
		require.NoError(t, b.TransitionTo(now, id))
		assert.Equal(t, Mode(id), b.Mode())
		assert.Equal(t, now, b.PhaseStart())
	}

	// Breathing starts its wave over after a transition
	require.NoError(t, b.TransitionTo(7777, gourd.EffectBreathingSolid))
	assert.InDelta(t, 0.275, b.Intensity(7777), 1e-9)
	assert.InDelta(t, 0.5, b.Intensity(7777+1250), 1e-9)
}

func TestBackgroundFill(t *testing.T) {
	cfg := testConfig()
	cfg.Background = 0x00000010
	b := NewBackground(cfg, rand.New(rand.NewSource(1)))
	px := NewPixels(cfg.Geometry.Strips, cfg.Geometry.LedsPerStrip)

	b.Fill(0, px)
	for _, c := range px.Data() {
		require.Equal(t, Color(0x10), c, "off fills background colour")
	}

	require.NoError(t, b.TransitionTo(0, gourd.EffectBreathingSolid))
	b.Fill(1250, px)
	for _, c := range px.Data() {
		require.Equal(t, RGB(127, 0, 0), c, "solid red at half brightness peak")
	}

	require.NoError(t, b.TransitionTo(0, gourd.EffectBreathingMulti))
	b.Fill(1250, px)
	assert.Equal(t, RGB(127, 17, 85), px.At(7, 49))

	require.NoError(t, b.TransitionTo(0, gourd.EffectPulsesOnly))
	b.Fill(1250, px)
	assert.Equal(t, Color(0x10), px.At(3, 3))
}

// ============ Fire ============

func TestFireRateLimitedPerStrip(t *testing.T) {
	f := NewFire(2, 10, 100, 3, 0, []Color{0, 1, 2, 3}, rand.New(rand.NewSource(7)))
	f.Reset(0)

	assert.Equal(t, 0, f.Update(50))
	assert.Equal(t, 0, f.Update(99))
	assert.Equal(t, 2, f.Update(100))
	assert.Equal(t, 0, f.Update(150))
	assert.Equal(t, 2, f.Update(250))
}

func TestFireHeatRises(t *testing.T) {
	f := NewFire(1, 6, 100, 3, 0, []Color{0, 1, 2, 3}, rand.New(rand.NewSource(7)))
	f.Reset(0)

	for now := uint32(100); now <= 1000; now += 100 {
		before := make([]uint8, 6)
		for i := range before {
			before[i] = f.Heat(0, i)
		}
		require.Equal(t, 1, f.Update(now))
		for i := 1; i < 6; i++ {
			assert.Equal(t, before[i-1], f.Heat(0, i), "pixel %d takes its neighbour's heat", i)
		}
		assert.LessOrEqual(t, f.Heat(0, 0), uint8(3))
	}
}

func TestFireHeatBoundedWithFlicker(t *testing.T) {
	f := NewFire(3, 20, 10, 3, 1, []Color{0, 1, 2, 3}, rand.New(rand.NewSource(42)))
	f.Reset(0)
	px := NewPixels(3, 20)

	for now := uint32(10); now < 5000; now += 10 {
		f.Update(now)
	}
	f.Fill(px)
	for s := 0; s < 3; s++ {
		for i := 0; i < 20; i++ {
			h := f.Heat(s, i)
			require.LessOrEqual(t, h, uint8(3))
			assert.Equal(t, Color(h), px.At(s, i), "palette lookup")
		}
	}
}

func TestFireDeterministicWithSeed(t *testing.T) {
	run := func() []uint8 {
		f := NewFire(1, 8, 100, 3, 0.3, []Color{0, 1, 2, 3}, rand.New(rand.NewSource(99)))
		f.Reset(0)
		for now := uint32(100); now <= 2000; now += 100 {
			f.Update(now)
		}
		out := make([]uint8, 8)
		for i := range out {
			out[i] = f.Heat(0, i)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

// ============ Engine ============

func TestEnginePulseOutOfRangeIgnored(t *testing.T) {
	e := New(testConfig(), nil)
	assert.False(t, e.TriggerPulse(0, 8))
	assert.False(t, e.TriggerPulse(0, -1))
	assert.Equal(t, 0, e.Pool().Active())
	assert.True(t, e.TriggerPulse(0, 7))
}

func TestEngineTickOverlaysPulse(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())
	d := &fakeDisplay{}
	e := New(cfg, d)

	require.NoError(t, e.SetEffect(0, gourd.EffectBreathingSolid))
	require.True(t, e.TriggerPulse(0, 4))
	require.NoError(t, e.Tick(200))

	frame := d.last()
	white := Color(cfg.Pulse.Color)
	assert.Equal(t, []int{25}, lit(frame, 4, white))
	red := RGB(0xFF, 0, 0).Scale(BreathingIntensity(200, 5000, 0.05, 0.5))
	assert.Equal(t, red, frame.At(4, 24), "background under the pulse")
	assert.Empty(t, lit(frame, 3, white))
}

func TestEngineTickDisplayError(t *testing.T) {
	d := &fakeDisplay{err: errors.New("spi gone")}
	e := New(testConfig(), d)
	err := e.Tick(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spi gone")
}

func TestEngineFireTick(t *testing.T) {
	cfg := testConfig()
	d := &fakeDisplay{}
	e := New(cfg, d, WithRand(rand.New(rand.NewSource(3))))
	require.NoError(t, e.SetEffect(0, gourd.EffectFire))

	for now := uint32(0); now <= 1000; now += 10 {
		require.NoError(t, e.Tick(now))
	}

	palette := map[Color]bool{}
	for _, c := range cfg.Fire.Palette {
		palette[Color(c)] = true
	}
	for _, c := range d.last().Data() {
		require.True(t, palette[c], "fire pixel %s outside palette", c)
	}
}
