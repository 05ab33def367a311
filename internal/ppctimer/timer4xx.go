package ppctimer

import (
	"ppccore/internal/bitutil"
	"ppccore/internal/clock"
	"ppccore/internal/cpucontext"
)

// ResetHooks lets the embedding machine wire the watchdog's terminal
// action (TCR[WRC]) to its core/chip/system reset implementations. A nil
// hook is a no-op.
type ResetHooks struct {
	Core   func()
	Chip   func()
	System func()
}

// EmbTimers models the embedded-4xx Fixed Interval Timer, Programmable
// Interval Timer and Watchdog Timer, which share a single CPU's TCR/TSR
// SPRs. The PIT reuses the TB's decrementer timer and decrNext field for
// its own one-shot/auto-reload scheduling, exactly as the embedded timer
// block overlays the general timebase hardware on real 4xx cores.
type EmbTimers struct {
	*TB
	hooks ResetHooks

	pitReload uint64

	fitNext  uint64
	fitTimer *clock.Timer

	wdtNext  uint64
	wdtTimer *clock.Timer
}

// InitEmbTimers creates the FIT/PIT/WDT block for cpu ticking at freq Hz
// and registers it on cpu via SetTbEnv. The returned ReinstallFunc only
// updates the stored frequency; unlike the plain TBD it does not touch any
// armed timer deadlines.
func InitEmbTimers(cpu *cpucontext.CPU, clk Scheduler, freq uint32, hooks ResetHooks) (*EmbTimers, ReinstallFunc) {
	tb := &TB{cpu: cpu, clk: clk, tbFreq: freq}
	et := &EmbTimers{TB: tb, hooks: hooks}
	tb.decrTimer = clk.NewTimer(func(any) { et.pitCB() }, nil)
	et.fitTimer = clk.NewTimer(func(any) { et.fitCB() }, nil)
	et.wdtTimer = clk.NewTimer(func(any) { et.wdtCB() }, nil)
	cpu.SetTbEnv(tb)
	et.armFit()
	return et, et.setEmbClk
}

// armFit schedules the next FIT expiry from the current TCR period
// without touching TSR or the interrupt line -- used once at startup,
// since nothing in this subsystem arms the free-running FIT otherwise.
func (et *EmbTimers) armFit() {
	et.mu.Lock()
	defer et.mu.Unlock()
	tcr := et.cpu.SPR(cpucontext.SPR40xTCR)
	now := et.clk.Now()
	next := now + bitutil.MulDiv64U(fitPeriod(tcr), clock.TicksPerSec, uint64(et.tbFreq))
	if next == now {
		next++
	}
	et.clk.ModTimer(et.fitTimer, next)
	et.fitNext = next
}

// setEmbClk updates the shared frequency only; existing timer deadlines
// are left alone, matching the embedded-timer reinstall callback's known
// limitation (it does not retroactively rescale in-flight timers).
func (et *EmbTimers) setEmbClk(freq uint32) {
	et.mu.Lock()
	et.tbFreq = freq
	et.mu.Unlock()
}

func fitPeriod(tcr uint32) uint64 {
	switch (tcr >> 24) & 0x3 {
	case 0:
		return 1 << 9
	case 1:
		return 1 << 13
	case 2:
		return 1 << 17
	default:
		return 1 << 21
	}
}

func (et *EmbTimers) fitCB() {
	et.mu.Lock()
	tcr := et.cpu.SPR(cpucontext.SPR40xTCR)
	now := et.clk.Now()
	next := now + bitutil.MulDiv64U(fitPeriod(tcr), clock.TicksPerSec, uint64(et.tbFreq))
	if next == now {
		next++
	}
	et.clk.ModTimer(et.fitTimer, next)
	et.fitNext = next
	et.cpu.SetSPR(cpucontext.SPR40xTSR, et.cpu.SPR(cpucontext.SPR40xTSR)|(1<<26))
	raise := (tcr>>23)&0x1 != 0
	et.mu.Unlock()

	if raise {
		et.cpu.SetIRQ(cpucontext.FIT, 1)
	}
}

// startStopPit arms or disarms the shared decrementer timer for PIT duty,
// depending on the reload value and TCR[PIE]/TCR[ARE]. isExcp anchors the
// next deadline to the last one (auto-reload) instead of "now".
func (et *EmbTimers) startStopPit(isExcp bool) {
	et.mu.Lock()
	defer et.mu.Unlock()

	tcr := et.cpu.SPR(cpucontext.SPR40xTCR)
	if et.pitReload <= 1 || (tcr>>26)&0x1 == 0 || (isExcp && (tcr>>22)&0x1 == 0) {
		et.clk.DelTimer(et.decrTimer)
		return
	}
	now := et.clk.Now()
	next := now + bitutil.MulDiv64U(et.pitReload, clock.TicksPerSec, uint64(et.tbFreq))
	if isExcp {
		next += et.decrNext - now
	}
	if next == now {
		next++
	}
	et.clk.ModTimer(et.decrTimer, next)
	et.decrNext = next
}

func (et *EmbTimers) pitCB() {
	et.mu.Lock()
	tcr := et.cpu.SPR(cpucontext.SPR40xTCR)
	et.cpu.SetSPR(cpucontext.SPR40xTSR, et.cpu.SPR(cpucontext.SPR40xTSR)|(1<<27))
	raise := (tcr>>26)&0x1 != 0
	et.mu.Unlock()

	if raise {
		et.cpu.SetIRQ(cpucontext.PIT, 1)
	}
	et.startStopPit(true)
}

func wdtPeriod(tcr uint32) uint64 {
	switch (tcr >> 30) & 0x3 {
	case 0:
		return 1 << 17
	case 1:
		return 1 << 21
	case 2:
		return 1 << 25
	default:
		return 1 << 29
	}
}

func (et *EmbTimers) wdtCB() {
	et.mu.Lock()
	now := et.clk.Now()
	tcr := et.cpu.SPR(cpucontext.SPR40xTCR)
	next := now + bitutil.MulDiv64U(wdtPeriod(tcr), clock.TicksPerSec, uint64(et.tbFreq))
	if next == now {
		next++
	}

	tsr := et.cpu.SPR(cpucontext.SPR40xTSR)
	var raiseWDT bool
	var resetAction int = -1
	switch (tsr >> 30) & 0x3 {
	case 0x0, 0x1:
		et.clk.ModTimer(et.wdtTimer, next)
		et.wdtNext = next
		et.cpu.SetSPR(cpucontext.SPR40xTSR, tsr|(1<<31))
	case 0x2:
		et.clk.ModTimer(et.wdtTimer, next)
		et.wdtNext = next
		et.cpu.SetSPR(cpucontext.SPR40xTSR, tsr|(1<<30))
		raiseWDT = (tcr>>27)&0x1 != 0
	case 0x3:
		tsr = (tsr &^ 0x30000000) | (tcr & 0x30000000)
		et.cpu.SetSPR(cpucontext.SPR40xTSR, tsr)
		resetAction = int((tcr >> 28) & 0x3)
	}
	et.mu.Unlock()

	if raiseWDT {
		et.cpu.SetIRQ(cpucontext.WDT, 1)
	}
	switch resetAction {
	case 1:
		if et.hooks.Core != nil {
			et.hooks.Core()
		}
	case 2:
		if et.hooks.Chip != nil {
			et.hooks.Chip()
		}
	case 3:
		if et.hooks.System != nil {
			et.hooks.System()
		}
	}
}

// StorePIT sets the PIT auto-reload register and re-evaluates whether the
// shared timer should be running.
func (et *EmbTimers) StorePIT(val uint64) {
	et.mu.Lock()
	et.pitReload = val
	et.mu.Unlock()
	et.startStopPit(false)
}

// LoadPIT reads the PIT's live countdown value -- the same underlying
// counter as the plain decrementer, since PIT duty overlays decrTimer.
func (et *EmbTimers) LoadPIT() uint32 {
	return et.LoadDecr()
}

// StoreTSR clears the TSR bits named in val's write-1-to-clear mask, and
// deasserts the PIT interrupt line if bit 31 is cleared this way.
func (et *EmbTimers) StoreTSR(val uint32) {
	et.mu.Lock()
	et.cpu.SetSPR(cpucontext.SPR40xTSR, et.cpu.SPR(cpucontext.SPR40xTSR)&^(val&0xFC000000))
	clearPIT := val&0x80000000 != 0
	et.mu.Unlock()

	if clearPIT {
		et.cpu.SetIRQ(cpucontext.PIT, 0)
	}
}

// StoreTCR writes the control register and immediately re-evaluates the
// PIT and watchdog state machines against the new bits, matching the
// original's synchronous re-check on every TCR write (rather than waiting
// for the timers' own next expiry).
func (et *EmbTimers) StoreTCR(val uint32) {
	et.mu.Lock()
	et.cpu.SetSPR(cpucontext.SPR40xTCR, val&0xFFC00000)
	et.mu.Unlock()
	et.startStopPit(true)
	et.wdtCB()
}
