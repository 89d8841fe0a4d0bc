package store

import "github.com/joshuapare/termstore/internal/format"

// rootSet holds every root source the collector consults, in scan order.
type rootSet struct {
	pins []Term

	stacks []*RootStack
	active *RootStack

	slots   []*Term
	arrays  [][]Term
	regions [][]uint64

	callbacks []markCallback
	nextCB    int

	parked Symbol
}

type markCallback struct {
	id int
	fn func(*Marker)
}

func (r *rootSet) init() {
	r.active = &RootStack{}
	r.stacks = []*RootStack{r.active}
}

// RootStack is a shadow stack of term roots. Frames push onto it and
// release back to their base, so roots are held for a lexical scope:
//
//	f := h.Frame()
//	defer f.Release()
//	l := f.Hold(h.MakeListCell(x, h.EmptyList()))
type RootStack struct {
	heap  *Heap
	slots []Term
}

// Len returns the number of held roots.
func (s *RootStack) Len() int { return len(s.slots) }

// Frame is a scope on a RootStack.
type Frame struct {
	stack *RootStack
	base  int
}

// Frame opens a scope on the active root stack.
func (h *Heap) Frame() Frame {
	s := h.roots.active
	return Frame{stack: s, base: len(s.slots)}
}

// Hold roots t until the frame is released and returns it.
func (f Frame) Hold(t Term) Term {
	f.stack.slots = append(f.stack.slots, t)
	return t
}

// Release drops every root held since the frame was opened, including
// those of frames opened after it.
func (f Frame) Release() {
	if len(f.stack.slots) > f.base {
		clear(f.stack.slots[f.base:])
		f.stack.slots = f.stack.slots[:f.base]
	}
}

// NewRootStack registers an additional root stack, for callers that switch
// between cooperatively scheduled tasks sharing the heap. It becomes
// active through SetRootStack.
func (h *Heap) NewRootStack() *RootStack {
	s := &RootStack{heap: h}
	h.roots.stacks = append(h.roots.stacks, s)
	return s
}

// SetRootStack makes s the stack new frames are opened on and returns the
// previously active one. Every registered stack is scanned regardless of
// which is active. A nil s selects the heap's own stack.
func (h *Heap) SetRootStack(s *RootStack) *RootStack {
	prev := h.roots.active
	if s == nil {
		s = h.roots.stacks[0]
	}
	h.roots.active = s
	return prev
}

// Discard unregisters s. Its roots stop being scanned. If s was active,
// the heap's own stack becomes active again.
func (s *RootStack) Discard() {
	h := s.heap
	if h == nil {
		return
	}
	r := &h.roots
	for i, cur := range r.stacks {
		if cur == s {
			r.stacks = append(r.stacks[:i], r.stacks[i+1:]...)
			break
		}
	}
	if r.active == s {
		r.active = r.stacks[0]
	}
	s.slots = nil
	s.heap = nil
}

// Protect makes the term stored in *slot a root until Unprotect. The slot
// is read at every collection, so it may be reassigned meanwhile.
func (h *Heap) Protect(slot *Term) {
	h.roots.slots = append(h.roots.slots, slot)
}

// Unprotect undoes one Protect of slot.
func (h *Heap) Unprotect(slot *Term) {
	s := h.roots.slots
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == slot {
			h.roots.slots = append(s[:i], s[i+1:]...)
			return
		}
	}
}

// ProtectArray makes every element of arr a root until UnprotectArray is
// called with a slice sharing its first element.
func (h *Heap) ProtectArray(arr []Term) {
	if len(arr) == 0 {
		return
	}
	h.roots.arrays = append(h.roots.arrays, arr)
}

// UnprotectArray undoes ProtectArray for the array starting at &arr[0].
func (h *Heap) UnprotectArray(arr []Term) {
	if len(arr) == 0 {
		return
	}
	a := h.roots.arrays
	for i := len(a) - 1; i >= 0; i-- {
		if &a[i][0] == &arr[0] {
			h.roots.arrays = append(a[:i], a[i+1:]...)
			return
		}
	}
}

// ProtectMemoryRegion registers raw words that may hold terms or symbols.
// The region is scanned conservatively: any word that happens to be a
// valid term handle or symbol id keeps that value alive.
func (h *Heap) ProtectMemoryRegion(region []uint64) {
	if len(region) == 0 {
		return
	}
	h.roots.regions = append(h.roots.regions, region)
}

// UnprotectMemoryRegion undoes ProtectMemoryRegion for the region starting
// at &region[0].
func (h *Heap) UnprotectMemoryRegion(region []uint64) {
	if len(region) == 0 {
		return
	}
	r := h.roots.regions
	for i := len(r) - 1; i >= 0; i-- {
		if &r[i][0] == &region[0] {
			h.roots.regions = append(r[:i], r[i+1:]...)
			return
		}
	}
}

// Marker is handed to mark callbacks so they can report private roots.
type Marker struct {
	h    *Heap
	term func(Term)
	sym  func(Symbol)
}

// Mark reports t as reachable. Invalid handles are ignored.
func (m *Marker) Mark(t Term) {
	if m.h.IsValidTerm(t) {
		m.term(t)
	}
}

// MarkSymbol reports s as reachable.
func (m *Marker) MarkSymbol(s Symbol) {
	if m.h.syms.Valid(s) {
		m.sym(s)
	}
}

// State returns the collector state the callback runs in.
func (m *Marker) State() State { return m.h.state }

// RegisterMarkCallback adds fn to the root sources and returns an id for
// UnregisterMarkCallback. fn runs once per marking phase.
func (h *Heap) RegisterMarkCallback(fn func(*Marker)) int {
	h.roots.nextCB++
	h.roots.callbacks = append(h.roots.callbacks, markCallback{id: h.roots.nextCB, fn: fn})
	return h.roots.nextCB
}

// UnregisterMarkCallback removes a callback registered earlier.
func (h *Heap) UnregisterMarkCallback(id int) {
	cbs := h.roots.callbacks
	for i, cb := range cbs {
		if cb.id == id {
			h.roots.callbacks = append(cbs[:i], cbs[i+1:]...)
			return
		}
	}
}

// ProtectSymbol keeps s alive until a matching UnprotectSymbol.
func (h *Heap) ProtectSymbol(s Symbol) {
	h.syms.Protect(s)
}

// UnprotectSymbol undoes one ProtectSymbol.
func (h *Heap) UnprotectSymbol(s Symbol) {
	h.syms.Unprotect(s)
}

// ForEachRoot calls fn for every term root, in scan order: construction
// pins, shadow stacks, protected slots and arrays, protected memory
// regions, then whatever the mark callbacks report.
func (h *Heap) ForEachRoot(fn func(Term)) {
	h.forEachRoot(fn, func(Symbol) {})
}

func (h *Heap) forEachRoot(term func(Term), sym func(Symbol)) {
	visit := func(t Term) {
		if h.IsValidTerm(t) {
			term(t)
		}
	}
	r := &h.roots

	for _, t := range r.pins {
		visit(t)
	}
	for _, s := range r.stacks {
		for _, t := range s.slots {
			visit(t)
		}
	}
	for _, slot := range r.slots {
		visit(*slot)
	}
	for _, arr := range r.arrays {
		for _, t := range arr {
			visit(t)
		}
	}
	for _, region := range r.regions {
		for _, w := range region {
			if w > uint64(^format.Handle(0)) {
				continue
			}
			visit(Term(w))
			if h.syms.Valid(Symbol(w)) {
				sym(Symbol(w))
			}
		}
	}
	if len(r.callbacks) > 0 {
		m := &Marker{h: h, term: term, sym: sym}
		for _, cb := range r.callbacks {
			cb.fn(m)
		}
	}
	if h.syms.Valid(r.parked) {
		sym(r.parked)
	}
}
