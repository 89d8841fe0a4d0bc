// Package symbol interns function symbols: (name, arity, quoted) triples
// used as the head of application terms.
//
// Entries live in an index-addressed slot table. Buckets are chains of
// slot indices threaded through the entries themselves, and slots freed by
// a sweep are recycled through the same link field. The table has its own
// mark bits so the collector can reclaim symbols no live term refers to.
package symbol

import (
	"fmt"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"
)

// ID identifies an interned symbol. IDs are slot indices and may be reused
// after the symbol has been collected.
type ID uint32

// None is the zero ID; it never names a symbol.
const None ID = 0

const (
	defaultClass = 8  // 256 buckets
	maxClassCap  = 30 // hard ceiling on the bucket array
	maxLoad      = 0.75
)

// Options configures a Table.
type Options struct {
	// InitialClass is log2 of the initial bucket count. Zero selects 8.
	InitialClass int
	// MaxClass is the largest log2 bucket count resize may reach. Zero
	// selects 30.
	MaxClass int
	// Normalize folds names to Unicode NFC before interning, so visually
	// identical names that differ only in composition intern to one symbol.
	Normalize bool
	// OnResizeFailed is called when the bucket array cannot grow; the table
	// keeps working at its current size.
	OnResizeFailed func(err error)
}

type entry struct {
	name   string
	arity  int
	quoted bool
	hash   uint64

	next      ID // bucket chain while live, free chain while dead
	count     int
	protected int
	marked    bool
	live      bool
}

// Table is the symbol intern table. It is not safe for concurrent use.
type Table struct {
	entries []entry // entries[0] is unused so None is never live
	buckets []ID
	class   int
	free    ID
	live    int

	opts Options
}

// New creates an empty table.
func New(opts Options) *Table {
	if opts.InitialClass <= 0 {
		opts.InitialClass = defaultClass
	}
	if opts.MaxClass <= 0 || opts.MaxClass > maxClassCap {
		opts.MaxClass = maxClassCap
	}
	if opts.InitialClass > opts.MaxClass {
		opts.InitialClass = opts.MaxClass
	}
	return &Table{
		entries: make([]entry, 1, 1<<opts.InitialClass),
		buckets: make([]ID, 1<<opts.InitialClass),
		class:   opts.InitialClass,
		opts:    opts,
	}
}

func hashOf(name string, arity int, quoted bool) uint64 {
	h := xxh3.HashString(name)
	h ^= uint64(arity) * 0x9E3779B97F4A7C15
	if quoted {
		h = ^h
	}
	return h
}

func (t *Table) normalize(name string) string {
	if t.opts.Normalize {
		return norm.NFC.String(name)
	}
	return name
}

func (t *Table) bucket(hash uint64) int {
	return int(hash & uint64(len(t.buckets)-1))
}

func (t *Table) find(name string, arity int, quoted bool, hash uint64) ID {
	for id := t.buckets[t.bucket(hash)]; id != None; id = t.entries[id].next {
		e := &t.entries[id]
		if e.hash == hash && e.arity == arity && e.quoted == quoted && e.name == name {
			return id
		}
	}
	return None
}

// Intern returns the ID for (name, arity, quoted), creating it if needed.
func (t *Table) Intern(name string, arity int, quoted bool) ID {
	name = t.normalize(name)
	hash := hashOf(name, arity, quoted)
	if id := t.find(name, arity, quoted, hash); id != None {
		return id
	}

	var id ID
	if t.free != None {
		id = t.free
		t.free = t.entries[id].next
	} else {
		id = ID(len(t.entries))
		t.entries = append(t.entries, entry{})
	}

	b := t.bucket(hash)
	t.entries[id] = entry{
		name:   name,
		arity:  arity,
		quoted: quoted,
		hash:   hash,
		next:   t.buckets[b],
		live:   true,
	}
	t.buckets[b] = id
	t.live++

	if float64(t.live) > float64(len(t.buckets))*maxLoad {
		t.resize()
	}
	return id
}

// Lookup returns the ID for (name, arity, quoted) without interning.
func (t *Table) Lookup(name string, arity int, quoted bool) (ID, bool) {
	name = t.normalize(name)
	id := t.find(name, arity, quoted, hashOf(name, arity, quoted))
	return id, id != None
}

func (t *Table) resize() {
	if t.class >= t.opts.MaxClass {
		if t.opts.OnResizeFailed != nil {
			t.opts.OnResizeFailed(fmt.Errorf("symbol: table at maximum class %d (%d live)", t.class, t.live))
		}
		return
	}
	t.class++
	t.buckets = make([]ID, 1<<t.class)
	for id := ID(1); int(id) < len(t.entries); id++ {
		e := &t.entries[id]
		if !e.live {
			continue
		}
		b := t.bucket(e.hash)
		e.next = t.buckets[b]
		t.buckets[b] = id
	}
}

// Valid reports whether id names a live symbol.
func (t *Table) Valid(id ID) bool {
	return id != None && int(id) < len(t.entries) && t.entries[id].live
}

// Name returns the symbol's name, or "" for an invalid ID.
func (t *Table) Name(id ID) string {
	if !t.Valid(id) {
		return ""
	}
	return t.entries[id].name
}

// Arity returns the symbol's arity, or -1 for an invalid ID.
func (t *Table) Arity(id ID) int {
	if !t.Valid(id) {
		return -1
	}
	return t.entries[id].arity
}

// Quoted reports whether the symbol was interned as quoted.
func (t *Table) Quoted(id ID) bool {
	return t.Valid(id) && t.entries[id].quoted
}

// Count returns the number of live terms using the symbol.
func (t *Table) Count(id ID) int {
	if !t.Valid(id) {
		return 0
	}
	return t.entries[id].count
}

// Ref records one more term using the symbol.
func (t *Table) Ref(id ID) {
	if t.Valid(id) {
		t.entries[id].count++
	}
}

// Unref drops one term usage, called when such a term is reclaimed.
func (t *Table) Unref(id ID) {
	if t.Valid(id) && t.entries[id].count > 0 {
		t.entries[id].count--
	}
}

// Protect makes the symbol a root until a matching Unprotect.
func (t *Table) Protect(id ID) {
	if t.Valid(id) {
		t.entries[id].protected++
	}
}

// Unprotect undoes one Protect.
func (t *Table) Unprotect(id ID) {
	if t.Valid(id) && t.entries[id].protected > 0 {
		t.entries[id].protected--
	}
}

// Protected reports whether the symbol is explicitly protected.
func (t *Table) Protected(id ID) bool {
	return t.Valid(id) && t.entries[id].protected > 0
}

// Mark sets the symbol's mark bit.
func (t *Table) Mark(id ID) {
	if t.Valid(id) {
		t.entries[id].marked = true
	}
}

// Marked reports the symbol's mark bit.
func (t *Table) Marked(id ID) bool {
	return t.Valid(id) && t.entries[id].marked
}

// ClearMarks resets every mark bit.
func (t *Table) ClearMarks() {
	for i := range t.entries {
		t.entries[i].marked = false
	}
}

// Sweep frees every live symbol that is neither marked nor protected and
// clears the marks of the survivors. It returns the number freed.
func (t *Table) Sweep() int {
	freed := 0
	for id := ID(1); int(id) < len(t.entries); id++ {
		e := &t.entries[id]
		if !e.live {
			continue
		}
		if e.marked || e.protected > 0 {
			e.marked = false
			continue
		}
		t.unlink(id)
		*e = entry{next: t.free}
		t.free = id
		t.live--
		freed++
	}
	return freed
}

func (t *Table) unlink(id ID) {
	b := t.bucket(t.entries[id].hash)
	prev := None
	for cur := t.buckets[b]; cur != None; cur = t.entries[cur].next {
		if cur != id {
			prev = cur
			continue
		}
		if prev == None {
			t.buckets[b] = t.entries[cur].next
		} else {
			t.entries[prev].next = t.entries[cur].next
		}
		return
	}
}

// Len returns the number of live symbols.
func (t *Table) Len() int {
	return t.live
}

// Buckets returns the current bucket count.
func (t *Table) Buckets() int {
	return len(t.buckets)
}

// Each visits every live symbol in slot order.
func (t *Table) Each(fn func(ID)) {
	for id := ID(1); int(id) < len(t.entries); id++ {
		if t.entries[id].live {
			fn(id)
		}
	}
}
