package ppctimer

import (
	"testing"

	"ppccore/internal/clock"
	"ppccore/internal/cpucontext"
)

func TestTBRoundTrip(t *testing.T) {
	cpu := cpucontext.New()
	clk := clock.NewVirtual()
	tb, _ := Init(cpu, clk, 1_000_000)

	tb.StoreTBU(0x1)
	tb.StoreTBL(0x2)
	if got := tb.LoadTBU(); got != 0x1 {
		t.Fatalf("LoadTBU = %#x, want 0x1", got)
	}
	if got := tb.LoadTBL(); got != 0x2 {
		t.Fatalf("LoadTBL = %#x, want 0x2", got)
	}
}

func TestDecrementerSignBitRaisesOnNegativeStore(t *testing.T) {
	cpu := cpucontext.New()
	clk := clock.NewVirtual()
	tb, _ := Init(cpu, clk, 1_000_000)

	// The reinstall arms the decrementer at -1 without raising.
	if cpu.PendingInterrupts()&(1<<cpucontext.Decrementer) != 0 {
		t.Fatalf("decrementer must not be pending right after init")
	}

	// Establish a known-positive decrementer value first.
	tb.StoreDecr(1000)
	if cpu.PendingInterrupts()&(1<<cpucontext.Decrementer) != 0 {
		t.Fatalf("storing a positive decrementer value must not raise DECR")
	}

	tb.StoreDecr(0x80000000) // store a negative value over the positive one
	if cpu.PendingInterrupts()&(1<<cpucontext.Decrementer) == 0 {
		t.Fatalf("storing a negative decrementer value over a positive one must raise DECR")
	}
}

func TestDecrementerExpiryRearmsAndRaises(t *testing.T) {
	cpu := cpucontext.New()
	clk := clock.NewVirtual()
	tb, _ := Init(cpu, clk, clock.TicksPerSec) // 1 tick == 1 "cycle"

	tb.StoreDecr(100)
	clk.Advance(101)

	if cpu.PendingInterrupts()&(1<<cpucontext.Decrementer) == 0 {
		t.Fatalf("decrementer expiry must raise DECR")
	}
}

// Confirms the guest-OS race workaround: the reinstall callback always
// re-arms the decrementer at 0xFFFFFFFF ticks ahead of the new frequency,
// without raising an exception, even though both old and new decr values
// carry the sign bit.
func TestReinstallRearmsWithoutRaising(t *testing.T) {
	cpu := cpucontext.New()
	clk := clock.NewVirtual()
	tb, reinstall := Init(cpu, clk, 1_000_000)

	reinstall(2_000_000)

	if cpu.PendingInterrupts()&(1<<cpucontext.Decrementer) != 0 {
		t.Fatalf("reinstall must not raise DECR")
	}
	decr := tb.LoadDecr()
	if decr&0x80000000 == 0 {
		t.Fatalf("decrementer should still read as a large unsigned value near 0xFFFFFFFF, got %#x", decr)
	}
}

func TestRTC601LowHalfIsMasked(t *testing.T) {
	cpu := cpucontext.New()
	clk := clock.NewVirtual()
	rtc, _ := InitRTC601(cpu, clk)

	rtc.StoreRTCL(0xFFFFFFFF)
	if got := rtc.LoadRTCL(); got != 0x3FFFFF80 {
		t.Fatalf("LoadRTCL = %#x, want %#x", got, uint32(0x3FFFFF80))
	}
}

func TestRTC601FreqIsFixed(t *testing.T) {
	cpu := cpucontext.New()
	clk := clock.NewVirtual()
	rtc, _ := InitRTC601(cpu, clk)
	if rtc.tbFreq != 7_812_500 {
		t.Fatalf("601 RTC frequency = %d, want 7812500", rtc.tbFreq)
	}
}
