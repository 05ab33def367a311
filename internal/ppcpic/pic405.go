package ppcpic

import (
	"ppccore/internal/cpucontext"
	"ppccore/internal/irq"
)

// 405 input pin indices.
const (
	PPC405InputResetSys = iota
	PPC405InputResetChip
	PPC405InputResetCore
	PPC405InputCint
	PPC405InputInt
	PPC405InputHalt
	PPC405InputDebug
	ppc405NumInputs
)

// ResetHooks lets the machine wire the 405's three rising-edge reset
// pins (RESET_SYS/RESET_CHIP/RESET_CORE) to whatever system-, chip- and
// core-level reset actions the embedding machine implements; those
// actions are outside the CIR's vocabulary (they don't set an
// interrupt-source bit, they reset state machines this package doesn't
// own). A nil hook is a no-op, matching the "acknowledged, no action"
// pattern used for the other families' reserved pins.
type ResetHooks struct {
	System func()
	Chip   func()
	Core   func()
}

func risingEdgeAction(hook func()) pinAction {
	return func(_ *cpucontext.CPU, level int, prev int) {
		if hook == nil {
			return
		}
		if prev == 0 && level != 0 {
			hook()
		}
	}
}

// Init405 allocates the 405 family's input lines bound to cpu. hooks may
// be the zero value (or have nil fields) if the embedding machine does not
// need to react to the reset pins.
func Init405(cpu *cpucontext.CPU, hooks ResetHooks) *irq.LineSet {
	actions := map[int]pinAction{
		PPC405InputResetSys:  risingEdgeAction(hooks.System),
		PPC405InputResetChip: risingEdgeAction(hooks.Chip),
		PPC405InputResetCore: risingEdgeAction(hooks.Core),
		// TOFIX: upstream routes the critical interrupt pin to
		// PPC_INTERRUPT_RESET rather than a dedicated critical-interrupt
		// source. Preserved as-is; do not invent a new bit here.
		PPC405InputCint:  levelAction(cpucontext.Reset),
		PPC405InputInt:   levelAction(cpucontext.External),
		PPC405InputHalt:  haltAction(),
		PPC405InputDebug: levelAction(cpucontext.Debug),
	}
	return irq.NewLineSet(ppc405NumInputs, func(opaque any, n int, level int) {
		dispatch(opaque.(*cpucontext.CPU), actions, n, level)
	}, cpu)
}
