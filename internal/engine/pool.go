// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package engine

// Slot is one transient event: something that started at Start on Target
// and travels along a path until its duration runs out.
type Slot struct {
	Start  uint32
	Target int
	Active bool
}

// Pool is a fixed set of event slots allocated once.
type Pool struct {
	slots []Slot
}

// NewPool allocates capacity slots
func NewPool(capacity int) *Pool {
	return &Pool{slots: make([]Slot, capacity)}
}

// Trigger starts an event in the first free slot.
// Returns false, changing nothing, when every slot is busy.
func (p *Pool) Trigger(now uint32, target int) bool {
	for i := range p.slots {
		if !p.slots[i].Active {
			p.slots[i] = Slot{Start: now, Target: target, Active: true}
			return true
		}
	}
	return false
}

// Step advances every active event to now. An event with elapsed time in
// [0, travel) visits position floor(elapsed/travel * pathLength); any other
// event is retired in the same pass and draws nothing.
func (p *Pool) Step(now, travel uint32, pathLength int, visit func(target, position int)) {
	for i := range p.slots {
		s := &p.slots[i]
		if !s.Active {
			continue
		}
		elapsed := now - s.Start
		if travel == 0 || elapsed >= travel {
			s.Active = false
			continue
		}
		position := int(uint64(elapsed) * uint64(pathLength) / uint64(travel))
		visit(s.Target, position)
	}
}

// Active returns the number of live events
func (p *Pool) Active() int {
	n := 0
	for _, s := range p.slots {
		if s.Active {
			n++
		}
	}
	return n
}

// Capacity returns the number of slots
func (p *Pool) Capacity() int { return len(p.slots) }

// Slots returns a copy of the slots
func (p *Pool) Slots() []Slot {
	return append([]Slot(nil), p.slots...)
}

// Clear retires every event
func (p *Pool) Clear() {
	for i := range p.slots {
		p.slots[i].Active = false
	}
}
