package ppcpic

import (
	"ppccore/internal/cpucontext"
	"ppccore/internal/irq"
)

// 970 input pin indices.
const (
	PPC970InputInt = iota
	PPC970InputThint
	PPC970InputMCP
	PPC970InputCkstp
	PPC970InputHReset
	PPC970InputSReset
	PPC970InputTben
	ppc970NumInputs
)

var ppc970Actions = map[int]pinAction{
	PPC970InputInt:    levelAction(cpucontext.External),
	PPC970InputThint:  levelAction(cpucontext.Thermal),
	PPC970InputMCP:    negativeEdgeAction(cpucontext.MachineCheck),
	PPC970InputCkstp:  haltAction(),
	PPC970InputHReset: reservedAction(),
	PPC970InputSReset: levelAction(cpucontext.Reset),
	PPC970InputTben:   reservedAction(),
}

// Init970 allocates the 970 family's input lines bound to cpu.
func Init970(cpu *cpucontext.CPU) *irq.LineSet {
	return irq.NewLineSet(ppc970NumInputs, func(opaque any, n int, level int) {
		dispatch(opaque.(*cpucontext.CPU), ppc970Actions, n, level)
	}, cpu)
}
