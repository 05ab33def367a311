package ppcpic

import (
	"ppccore/internal/cpucontext"
	"ppccore/internal/irq"
)

// 6xx/7xx input pin indices.
const (
	PPC6xxInputInt = iota
	PPC6xxInputSMI
	PPC6xxInputMCP
	PPC6xxInputCkstpIn
	PPC6xxInputHReset
	PPC6xxInputSReset
	ppc6xxNumInputs
)

var ppc6xxActions = map[int]pinAction{
	PPC6xxInputInt:     levelAction(cpucontext.External),
	PPC6xxInputSMI:     levelAction(cpucontext.SMI),
	PPC6xxInputMCP:     negativeEdgeAction(cpucontext.MachineCheck),
	PPC6xxInputCkstpIn: haltAction(),
	PPC6xxInputHReset:  reservedAction(),
	PPC6xxInputSReset:  levelAction(cpucontext.Reset),
}

// Init6xx allocates the 6xx/7xx family's input lines bound to cpu.
func Init6xx(cpu *cpucontext.CPU) *irq.LineSet {
	return irq.NewLineSet(ppc6xxNumInputs, func(opaque any, n int, level int) {
		dispatch(opaque.(*cpucontext.CPU), ppc6xxActions, n, level)
	}, cpu)
}
