package cosegraph

import (
	"fmt"
	"sync/atomic"
)

var managerTags uint32

// handle addresses a slot in one of a Manager's arenas. The manager tag catches handles
// used against the wrong manager, the generation catches handles to released slots.
type handle struct {
	tag uint32
	idx uint32
	gen uint32
}

func (h handle) IsZero() bool {
	return h.gen == 0
}

func (h handle) String() string {
	if h.IsZero() {
		return "<nil>"
	}
	return fmt.Sprintf("%d:%d.%d", h.tag, h.idx, h.gen)
}

type NodeID struct{ handle }
type EdgeID struct{ handle }
type GraphID struct{ handle }

type slot[T any] struct {
	gen uint32
	val *T
}

type arena[T any] struct {
	tag   uint32
	slots []slot[T]
	free  []uint32
	live  int
}

func newArena[T any](tag uint32) arena[T] {
	return arena[T]{tag: tag}
}

func (a *arena[T]) alloc(v *T) handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}
	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen++
	}
	s.val = v
	a.live++
	return handle{tag: a.tag, idx: idx, gen: s.gen}
}

func (a *arena[T]) get(h handle) *T {
	if h.gen == 0 || h.tag != a.tag || int(h.idx) >= len(a.slots) {
		return nil
	}
	s := a.slots[h.idx]
	if s.gen != h.gen {
		return nil
	}
	return s.val
}

func (a *arena[T]) release(h handle) {
	if a.get(h) == nil {
		return
	}
	s := &a.slots[h.idx]
	s.val = nil
	s.gen++
	a.free = append(a.free, h.idx)
	a.live--
}

func nextManagerTag() uint32 {
	return atomic.AddUint32(&managerTags, 1)
}
