package filetree

import "sort"

// Set is a set of directory paths. Methods never mutate the receiver, so a Set
// held in a state value can be shared between transitions.
type Set map[string]struct{}

// NewSet returns a set holding paths.
func NewSet(paths ...string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether p is in the set. A nil set is empty.
func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

// With returns a copy of s that also contains p.
func (s Set) With(p string) Set {
	c := s.Clone()
	c[p] = struct{}{}
	return c
}

// Without returns a copy of s without p.
func (s Set) Without(p string) Set {
	c := s.Clone()
	delete(c, p)
	return c
}

// Toggle returns a copy of s with p's membership flipped.
func (s Set) Toggle(p string) Set {
	if s.Has(p) {
		return s.Without(p)
	}
	return s.With(p)
}

// Clone returns a shallow copy of s. Cloning nil yields an empty, non-nil set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
