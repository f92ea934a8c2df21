package node

import "reflect"

// StructPair is a (source, destination) type pair.
type StructPair struct{ Src, Dst reflect.Type }

func (p StructPair) String() string {
	return typeStr(p.Src) + " -> " + typeStr(p.Dst)
}

// Dealer tracks which type pairs are currently being expanded and counts re-entries.
// A re-entry means the type graph is cyclic along the current expansion path.
type Dealer struct {
	active  map[StructPair]int
	repeats int
}

// Enter marks the pair as being expanded and reports whether it already was.
func (d *Dealer) Enter(src, dst reflect.Type) (repeated bool) {
	if d.active == nil {
		d.active = make(map[StructPair]int)
	}

	pair := StructPair{Src: src, Dst: dst}
	if d.active[pair] > 0 {
		d.repeats++
		repeated = true
	}

	d.active[pair]++

	return repeated
}

// Leave ends one expansion of the pair.
func (d *Dealer) Leave(src, dst reflect.Type) {
	pair := StructPair{Src: src, Dst: dst}
	if d.active[pair] <= 1 {
		delete(d.active, pair)
		return
	}

	d.active[pair]--
}

// Active reports whether the pair is somewhere on the current expansion path.
func (d *Dealer) Active(src, dst reflect.Type) bool {
	return d.active[StructPair{Src: src, Dst: dst}] > 0
}

// Repeats is the number of re-entries seen so far.
func (d *Dealer) Repeats() int {
	return d.repeats
}
