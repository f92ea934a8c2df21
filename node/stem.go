package node

import "strconv"

// Stem hands out slot names "sub1", "sub2" and so on. Names bound to a key are stable,
// names listed as reserved are skipped.
type Stem struct {
	prefix   string
	reserved map[string]bool
	keyed    map[any]string
	n        int
}

// NewStem creates a stem for prefix that never returns any of reserved.
func NewStem(prefix string, reserved ...string) *Stem {
	s := &Stem{prefix: prefix, reserved: make(map[string]bool), keyed: make(map[any]string)}
	for _, r := range reserved {
		s.reserved[r] = true
	}

	return s
}

// Next returns a fresh name.
func (s *Stem) Next() string {
	for {
		s.n++

		name := s.prefix + strconv.Itoa(s.n)
		if !s.reserved[name] {
			s.reserved[name] = true
			return name
		}
	}
}

// For returns the name bound to key, binding the next fresh one on first use.
func (s *Stem) For(key any) string {
	name, ok := s.keyed[key]
	if !ok {
		name = s.Next()
		s.keyed[key] = name
	}

	return name
}
