// Package debugconsole implements the one-byte-wide BIOS debug console
// port: a 4-register MMIO window used by early boot firmware to print
// diagnostics before any real device model is available.
package debugconsole

import (
	"bufio"
	"io"
	"os"

	"ppccore/internal/obslog"
)

// Port is the debug console's register file.
type Port struct {
	out    *bufio.Writer
	levels obslog.Leveler
}

// New creates a Port writing characters to out (os.Stdout if nil) and
// setting log levels on levels (may be nil, in which case register 2
// writes are accepted and discarded).
func New(out io.Writer, levels obslog.Leveler) *Port {
	if out == nil {
		out = os.Stdout
	}
	return &Port{out: bufio.NewWriter(out), levels: levels}
}

// Read implements the register file's read side: every offset reads
// back 0, per the "undefined registers don't fault" rule.
func (p *Port) Read(offset int) uint32 {
	return 0
}

// Write implements the register file's write side. Offset 0 writes a
// character, 1 writes a newline and flushes, 2 sets the log level;
// offset 3 and anything else is ignored.
func (p *Port) Write(offset int, value uint32) {
	switch offset {
	case 0:
		p.out.WriteByte(byte(value))
	case 1:
		p.out.WriteByte('\n')
		p.out.Flush()
	case 2:
		if p.levels != nil {
			p.levels.SetLevel(obslog.Level(value | 0x100))
		}
	}
}
