// Package irq implements the IRQ Line Abstraction (ILA): an allocation of
// N named input lines bound to a single handler and opaque context. It is
// the foundation every PIC and the SLAVIO controller is built on.
package irq

// Handler receives a level change on line n (0 <= n < N). opaque is
// whatever was passed to NewLineSet and is returned unmodified so the
// handler can recover its owning device without a package-level registry.
type Handler func(opaque any, n int, level int)

// LineSet is a fixed allocation of N input lines, each carrying a current
// binary level. Raising or lowering a line always invokes the handler,
// even if the level does not change from the handler's point of view --
// spurious-event suppression is the handler's responsibility, not this
// package's, because the suppression rule differs per PIC family at the
// pin level but this type is shared by SLAVIO too, which has no such rule.
type LineSet struct {
	handler Handler
	opaque  any
	levels  []int
}

// NewLineSet allocates n lines bound to handler over opaque.
func NewLineSet(n int, handler Handler, opaque any) *LineSet {
	return &LineSet{
		handler: handler,
		opaque:  opaque,
		levels:  make([]int, n),
	}
}

// Len returns the number of lines in the set.
func (s *LineSet) Len() int { return len(s.levels) }

// Level returns the current level of line n.
func (s *LineSet) Level(n int) int { return s.levels[n] }

// Set drives line n to level, recording the new level and invoking the
// bound handler.
func (s *LineSet) Set(n int, level int) {
	s.levels[n] = level
	s.handler(s.opaque, n, level)
}

// In returns a bound setter for line n, convenient for wiring a single
// line to a device's output without exposing the whole LineSet.
func (s *LineSet) In(n int) func(level int) {
	return func(level int) { s.Set(n, level) }
}
