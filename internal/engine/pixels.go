// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

// Pixels is a frame buffer split into rows: one row per strip, or one per
// zone when rows differ in length. Pixel (row, led) lives at
// offset(row) + led in the flat buffer.
type Pixels struct {
	buf     []Color
	offsets []int
	lengths []int
}

// NewPixels allocates strips rows of ledsPerStrip pixels each
func NewPixels(strips, ledsPerStrip int) *Pixels {
	lengths := make([]int, strips)
	for i := range lengths {
		lengths[i] = ledsPerStrip
	}
	return NewZonedPixels(lengths)
}

// NewZonedPixels allocates one row per entry of lengths
func NewZonedPixels(lengths []int) *Pixels {
	p := &Pixels{
		offsets: make([]int, len(lengths)),
		lengths: append([]int(nil), lengths...),
	}
	total := 0
	for i, n := range lengths {
		p.offsets[i] = total
		total += n
	}
	p.buf = make([]Color, total)
	return p
}

// Rows returns the number of strips or zones
func (p *Pixels) Rows() int { return len(p.lengths) }

// RowLen returns the length of row r
func (p *Pixels) RowLen(r int) int { return p.lengths[r] }

// Len returns the total pixel count
func (p *Pixels) Len() int { return len(p.buf) }

// Index returns the flat offset of (row, led), or -1 if out of range
func (p *Pixels) Index(row, led int) int {
	if row < 0 || row >= len(p.lengths) || led < 0 || led >= p.lengths[row] {
		return -1
	}
	return p.offsets[row] + led
}

// Set writes one pixel. Out-of-range writes are ignored.
func (p *Pixels) Set(row, led int, c Color) {
	if i := p.Index(row, led); i >= 0 {
		p.buf[i] = c
	}
}

// At reads one pixel, returning Black when out of range
func (p *Pixels) At(row, led int) Color {
	if i := p.Index(row, led); i >= 0 {
		return p.buf[i]
	}
	return Black
}

// Row returns the pixels of row r, backed by the frame buffer
func (p *Pixels) Row(r int) []Color {
	return p.buf[p.offsets[r] : p.offsets[r]+p.lengths[r]]
}

// FillRow sets every pixel of row r
func (p *Pixels) FillRow(r int, c Color) {
	row := p.Row(r)
	for i := range row {
		row[i] = c
	}
}

// Fill sets every pixel
func (p *Pixels) Fill(c Color) {
	for i := range p.buf {
		p.buf[i] = c
	}
}

// Data returns the flat frame buffer
func (p *Pixels) Data() []Color { return p.buf }

// Clone returns a deep copy
func (p *Pixels) Clone() *Pixels {
	return &Pixels{
		buf:     append([]Color(nil), p.buf...),
		offsets: append([]int(nil), p.offsets...),
		lengths: append([]int(nil), p.lengths...),
	}
}
