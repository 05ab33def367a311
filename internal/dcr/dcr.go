// Package dcr implements the embedded PowerPC Device Control Register
// bus: a sparse, fixed-size (1024-slot) register space where each slot is
// bound, at most once, to a device's read/write callbacks.
package dcr

import "errors"

// NumRegisters is the fixed DCR address space size (DCRN_NB).
const NumRegisters = 1024

// ErrOutOfRange is returned when a DCR number falls outside
// [0, NumRegisters).
var ErrOutOfRange = errors.New("dcr: register number out of range")

// ErrDuplicateRegistration is returned by Register when the slot is
// already bound to a device.
var ErrDuplicateRegistration = errors.New("dcr: register already bound")

// ReadFunc and WriteFunc are a device's DCR slot accessors. opaque is
// whatever was passed to Register, returned unmodified.
type ReadFunc func(opaque any, dcrn int) uint32
type WriteFunc func(opaque any, dcrn int, val uint32)

// ErrorFunc is the bus-wide fallback invoked on an access to an
// unregistered or out-of-range slot. Its return value becomes the
// operation's result (for reads) or is otherwise ignored (for writes,
// other than as an error indicator).
type ErrorFunc func(dcrn int) int32

type slot struct {
	opaque any
	read   ReadFunc
	write  WriteFunc
}

// Bus is one CPU's DCR register space.
type Bus struct {
	slots      [NumRegisters]*slot
	readError  ErrorFunc
	writeError ErrorFunc
}

// New creates a Bus. readError/writeError may be nil, in which case the
// default -1-returning fallback is used for both directions.
func New(readError, writeError ErrorFunc) *Bus {
	return &Bus{readError: readError, writeError: writeError}
}

// Register binds dcrn to a device's accessors. It fails with
// ErrOutOfRange or ErrDuplicateRegistration rather than silently
// overwriting an existing binding.
func (b *Bus) Register(dcrn int, opaque any, read ReadFunc, write WriteFunc) error {
	if dcrn < 0 || dcrn >= NumRegisters {
		return ErrOutOfRange
	}
	if b.slots[dcrn] != nil {
		return ErrDuplicateRegistration
	}
	b.slots[dcrn] = &slot{opaque: opaque, read: read, write: write}
	return nil
}

// Read dispatches a read to dcrn's device, or to the bus's read-error
// fallback (default: always -1) if dcrn is unregistered or out of range.
func (b *Bus) Read(dcrn int) int64 {
	if dcrn >= 0 && dcrn < NumRegisters && b.slots[dcrn] != nil && b.slots[dcrn].read != nil {
		s := b.slots[dcrn]
		return int64(s.read(s.opaque, dcrn))
	}
	if b.readError != nil {
		return int64(b.readError(dcrn))
	}
	return -1
}

// Write dispatches a write to dcrn's device, or to the bus's write-error
// fallback (default: always -1, used only as a success/failure signal)
// if dcrn is unregistered or out of range.
func (b *Bus) Write(dcrn int, val uint32) int64 {
	if dcrn >= 0 && dcrn < NumRegisters && b.slots[dcrn] != nil && b.slots[dcrn].write != nil {
		s := b.slots[dcrn]
		s.write(s.opaque, dcrn, val)
		return 0
	}
	if b.writeError != nil {
		return int64(b.writeError(dcrn))
	}
	return -1
}
