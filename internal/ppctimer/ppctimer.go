// Package ppctimer implements the PowerPC timebase/decrementer (TBD) core
// shared by every family, and the POWER/601 real-time-clock variant built
// on top of it. Embedded-4xx timers (FIT/PIT/WDT) live in timer4xx.go.
package ppctimer

import (
	"sync"

	"ppccore/internal/bitutil"
	"ppccore/internal/clock"
	"ppccore/internal/cpucontext"
)

// Scheduler is the subset of a clock.Virtual/clock.Wall this package
// needs: a readable clock plus one-shot absolute-deadline timers.
type Scheduler interface {
	clock.Source
	NewTimer(cb clock.Callback, opaque any) *clock.Timer
	ModTimer(t *clock.Timer, deadline uint64)
	DelTimer(t *clock.Timer)
}

// ReinstallFunc reinstalls the timebase frequency, e.g. when a guest OS
// reprograms the oscillator. The one returned by Init matches the Linux 2.4
// decrementer workaround below exactly: it always re-arms the decrementer,
// even if the frequency hasn't changed. The one returned by InitEmbTimers
// only updates the stored frequency.
type ReinstallFunc func(freq uint32)

// TB is a CPU's timebase and decrementer: a free-running counter derived
// from the scheduler's clock plus a compensating offset, and a one-shot
// decrementer that raises an interrupt on expiry and reloads to
// 0xFFFFFFFF ticks on its own callback.
type TB struct {
	mu  sync.Mutex
	cpu *cpucontext.CPU
	clk Scheduler

	tbOffset int64
	tbFreq   uint32

	decrNext  uint64
	decrTimer *clock.Timer
}

// Init creates a TB for cpu ticking at freq Hz, registers it on cpu via
// SetTbEnv, and returns the reinstall callback a machine calls whenever the
// guest reprograms the timebase oscillator.
func Init(cpu *cpucontext.CPU, clk Scheduler, freq uint32) (*TB, ReinstallFunc) {
	tb := &TB{cpu: cpu, clk: clk}
	tb.decrTimer = clk.NewTimer(func(any) { tb.decrCB() }, nil)
	cpu.SetTbEnv(tb)
	tb.setClk(freq)
	return tb, tb.setClk
}

func (tb *TB) getTBLocked() uint64 {
	raw := int64(tb.clk.Now()) + tb.tbOffset
	return bitutil.MulDiv64U(uint64(raw), uint64(tb.tbFreq), clock.TicksPerSec)
}

// LoadTBL returns the low 32 bits of the timebase.
func (tb *TB) LoadTBL() uint32 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return uint32(tb.getTBLocked())
}

// LoadTBU returns the high 32 bits of the timebase.
func (tb *TB) LoadTBU() uint32 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return uint32(tb.getTBLocked() >> 32)
}

func (tb *TB) storeTB(value uint64) {
	tb.tbOffset = bitutil.MulDiv64(int64(value), clock.TicksPerSec, uint64(tb.tbFreq)) - int64(tb.clk.Now())
}

// StoreTBU writes the high half, preserving the current low half.
func (tb *TB) StoreTBU(value uint32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	low := uint32(tb.getTBLocked())
	tb.storeTB(uint64(value)<<32 | uint64(low))
}

// StoreTBL writes the low half, preserving the current high half.
func (tb *TB) StoreTBL(value uint32) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	high := uint32(tb.getTBLocked() >> 32)
	tb.storeTB(uint64(high)<<32 | uint64(value))
}

// LoadDecr returns the decrementer's current value, derived from the time
// remaining until decrNext; a negative remainder is truncated toward zero
// and reported with the sign bit set, matching a free-running 32-bit
// down-counter that has just gone negative.
func (tb *TB) LoadDecr() uint32 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.loadDecrLocked()
}

func (tb *TB) loadDecrLocked() uint32 {
	diff := int64(tb.decrNext) - int64(tb.clk.Now())
	if diff >= 0 {
		return uint32(bitutil.MulDiv64U(uint64(diff), uint64(tb.tbFreq), clock.TicksPerSec))
	}
	return -uint32(bitutil.MulDiv64U(uint64(-diff), uint64(tb.tbFreq), clock.TicksPerSec))
}

func (tb *TB) decrExcp() { tb.cpu.SetIRQ(cpucontext.Decrementer, 1) }

// storeDecr is the shared decrementer write path used by both StoreDecr and
// the expiry callback. When isExcp is set, the new deadline is anchored to
// the decrementer's last deadline rather than "now", so a reload on expiry
// keeps wrapping at a constant real-time period.
func (tb *TB) storeDecr(decr uint32, value uint32, isExcp bool) {
	tb.mu.Lock()
	now := tb.clk.Now()
	next := now + bitutil.MulDiv64U(uint64(value), clock.TicksPerSec, uint64(tb.tbFreq))
	if isExcp {
		next += tb.decrNext - now
	}
	if next == now {
		next++
	}
	tb.decrNext = next
	tb.clk.ModTimer(tb.decrTimer, next)
	raise := value&0x80000000 != 0 && decr&0x80000000 == 0
	tb.mu.Unlock()

	if raise {
		tb.decrExcp()
	}
}

// StoreDecr writes a new decrementer value. Writing a negative value over a
// previously non-negative one raises the decrementer interrupt immediately.
func (tb *TB) StoreDecr(value uint32) {
	tb.storeDecr(tb.LoadDecr(), value, false)
}

func (tb *TB) decrCB() {
	tb.storeDecr(0x00000000, 0xFFFFFFFF, true)
}

// setClk installs a new timebase frequency and re-arms the decrementer at
// 0xFFFFFFFF ticks ahead without raising an exception -- working around
// guest kernels (Linux 2.4 in particular) that enable interrupts at boot
// before they're ready to field a decrementer exception that was already
// pending.
func (tb *TB) setClk(freq uint32) {
	tb.mu.Lock()
	tb.tbFreq = freq
	tb.mu.Unlock()
	tb.storeDecr(0xFFFFFFFF, 0xFFFFFFFF, false)
}

// RTC is the POWER/601 real-time clock: a TB fixed at 7.8125MHz whose low
// half is masked with 0x3FFFFF80 (bottom 7 bits and top 2 bits cleared) on
// both read and write.
type RTC struct {
	*TB
}

// InitRTC601 creates a 601-style RTC bound to cpu.
func InitRTC601(cpu *cpucontext.CPU, clk Scheduler) (*RTC, ReinstallFunc) {
	tb, reinstall := Init(cpu, clk, 7_812_500)
	return &RTC{TB: tb}, reinstall
}

// StoreRTCU aliases StoreTBU exactly, per the original attribute alias.
func (r *RTC) StoreRTCU(value uint32) { r.StoreTBU(value) }

// LoadRTCU aliases LoadTBU exactly.
func (r *RTC) LoadRTCU() uint32 { return r.LoadTBU() }

// StoreRTCL masks value to the 0x3FFFFF80 field before storing.
func (r *RTC) StoreRTCL(value uint32) { r.StoreTBL(value & 0x3FFFFF80) }

// LoadRTCL masks the read-back low half to the same field.
func (r *RTC) LoadRTCL() uint32 { return r.LoadTBL() & 0x3FFFFF80 }
