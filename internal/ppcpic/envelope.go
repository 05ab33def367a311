// Package ppcpic implements the three PowerPC Input Controllers:
// PIC-6xx, PIC-970 and PIC-405. Each translates a family of platform
// input pins into CIR actions on a cpucontext.CPU.
//
// All three share the same dispatch envelope: drop spurious (unchanged)
// levels, act on the pin, then record the new level. That shared shape
// is factored here; the per-family pin tables live in pic6xx.go,
// pic970.go and pic405.go.
package ppcpic

import "ppccore/internal/cpucontext"

// pinAction is a family's per-pin handler. It receives the CPU, the new
// level, and the input pin's previous level (needed for edge-triggered
// pins like MCP). It must not touch irq_input_state itself; the envelope
// does that once, after the action runs, for every pin uniformly.
type pinAction func(cpu *cpucontext.CPU, level int, prevLevel int)

// dispatch implements the shared envelope: compare against the previous
// level, drop unchanged (non-edge) events, run the pin's action, then
// update irq_input_state. actions maps pin index to its handler; pins
// absent from the map are unknown pins and are ignored without touching
// irq_input_state.
func dispatch(cpu *cpucontext.CPU, actions map[int]pinAction, pin int, level int) {
	prev := cpu.IRQInputLevel(pin)
	if prev == level {
		return
	}
	action, ok := actions[pin]
	if !ok {
		return
	}
	action(cpu, level, prev)
	cpu.SetIRQInputLevel(pin, level)
}

// levelAction builds a pinAction for a plain level-sensitive pin that
// forwards level unchanged into CIR source n (covers INT/SMI/THINT/
// SRESET/CINT-style pins, active high).
func levelAction(n int) pinAction {
	return func(cpu *cpucontext.CPU, level int, _ int) {
		cpu.SetIRQ(n, level)
	}
}

// haltAction builds a pinAction that drives the CPU's halt latch
// directly from the pin level (CKSTP_IN/CKSTP/HALT).
func haltAction() pinAction {
	return func(cpu *cpucontext.CPU, level int, _ int) {
		cpu.SetHalted(level != 0)
	}
}

// negativeEdgeAction builds a pinAction that raises CIR source n exactly
// once, only on a 1->0 transition (MCP on every family that has it).
func negativeEdgeAction(n int) pinAction {
	return func(cpu *cpucontext.CPU, level int, prev int) {
		if prev == 1 && level == 0 {
			cpu.SetIRQ(n, 1)
		}
	}
}

// reservedAction acknowledges a pin (its level is still recorded by the
// envelope) without any further effect -- HRESET on 6xx/970, TBEN on 970.
func reservedAction() pinAction {
	return func(*cpucontext.CPU, int, int) {}
}
