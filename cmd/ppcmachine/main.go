// Command ppcmachine assembles one PowerPC CPU context, its chosen PIC
// family, a timebase/decrementer, a DCR bus and a debug console port atop
// a real-time clock, and runs it until interrupted. It exists to exercise
// the library end to end; it does not execute guest instructions.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ppccore/internal/clock"
	"ppccore/internal/cpucontext"
	"ppccore/internal/dcr"
	"ppccore/internal/debugconsole"
	"ppccore/internal/nvram"
	"ppccore/internal/obslog"
	"ppccore/internal/ppcpic"
	"ppccore/internal/ppctimer"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	family := flag.String("family", "6xx", "PIC family to wire: 6xx, 970 or 405")
	freq := flag.Uint64("freq", 100_000_000, "timebase frequency in Hz")
	arch := flag.String("arch", "PREP", "NVRAM arch string presented to the boot firmware")
	flag.Parse()

	level := obslog.LevelInfo
	if *verbose {
		level = obslog.LevelTrace
	}
	logger := obslog.New(nil, level)

	cpu := cpucontext.New()

	var lines interface{ Len() int }
	switch *family {
	case "6xx":
		lines = ppcpic.Init6xx(cpu)
	case "970":
		lines = ppcpic.Init970(cpu)
	case "405":
		lines = ppcpic.Init405(cpu, pic405ResetHooks(logger))
	default:
		log.Fatalf("unknown family %q (want 6xx, 970 or 405)", *family)
	}
	logger.Infof("wired %s PIC with %d input lines", *family, lines.Len())

	clk := clock.NewWall()
	if *freq >= (1 << 32) {
		log.Fatalf("freq %d exceeds a 32-bit timebase frequency", *freq)
	}
	tb, reinstall := ppctimer.Init(cpu, clk, uint32(*freq))
	_ = reinstall
	logger.Infof("timebase armed at %d Hz", *freq)

	bus := dcr.New(nil, nil)
	err := bus.Register(0x100, tb,
		func(opaque any, _ int) uint32 { return opaque.(*ppctimer.TB).LoadDecr() },
		nil,
	)
	if err != nil {
		logger.Infof("dcr registration skipped: %v", err)
	}

	console := debugconsole.New(os.Stdout, logger)
	console.Write(0, 'r')
	console.Write(0, 'd')
	console.Write(0, 'y')
	console.Write(1, 0)

	acc := nvram.NewAccessor(0x2000)
	ram := nvram.NewAccessor(nvram.CmdlineAddr + 4096)
	params := &nvram.Params{
		NVRAMSize:   uint16(len(acc.Data)),
		Arch:        *arch,
		RAMSize:     64 << 20,
		BootDevice:  'c',
		KernelImage: 0x00100000,
		NVRAMImage:  0,
	}
	if err := params.WriteTo(acc, ram); err != nil {
		log.Fatalf("writing NVRAM parameter block: %v", err)
	}
	logger.Infof("NVRAM parameter block written, CRC %#04x", acc.ReadWord(0xFC))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	start := time.Now()

	fmt.Println("ppcmachine running, press Ctrl+C to stop")
	for {
		select {
		case <-sigCh:
			logger.Infof("signal received, shutting down after %s", time.Since(start))
			return
		case <-ticker.C:
			logger.Infof("cpu HARD asserted=%v pending=%#08x decr(via dcr 0x100)=%#08x",
				cpu.HardAsserted(), cpu.PendingInterrupts(), bus.Read(0x100))
		}
	}
}

func pic405ResetHooks(logger *obslog.Logger) ppcpic.ResetHooks {
	return ppcpic.ResetHooks{
		Core:   func() { logger.Infof("405 core reset requested") },
		Chip:   func() { logger.Infof("405 chip reset requested") },
		System: func() { logger.Infof("405 system reset requested") },
	}
}
