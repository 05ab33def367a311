package debugconsole

import (
	"bytes"
	"testing"

	"ppccore/internal/obslog"
)

func TestWriteCharacterOffset0(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil)
	for _, c := range "hi" {
		p.Write(0, uint32(c))
	}
	p.Write(1, 0) // offset 0 output is buffered until offset 1 flushes it
	if buf.String() != "hi\n" {
		t.Fatalf("buf = %q, want %q", buf.String(), "hi\n")
	}
}

func TestOffset1WritesNewlineAndFlushes(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil)
	p.Write(0, 'x')
	p.Write(1, 0)
	if buf.String() != "x\n" {
		t.Fatalf("buf = %q, want %q", buf.String(), "x\n")
	}
}

func TestOffset2SetsLogLevelWithHighBitOR(t *testing.T) {
	l := &fakeLeveler{}
	p := New(&bytes.Buffer{}, l)
	p.Write(2, 3)
	if l.level != obslog.Level(3|0x100) {
		t.Fatalf("level = %#x, want %#x", l.level, 3|0x100)
	}
}

func TestOffset3AndReadsAreNoOps(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, nil)
	p.Write(3, 0xFF)
	if buf.Len() != 0 {
		t.Fatalf("offset 3 write must be a no-op, got %q", buf.String())
	}
	for off := 0; off < 4; off++ {
		if got := p.Read(off); got != 0 {
			t.Fatalf("Read(%d) = %#x, want 0", off, got)
		}
	}
}

func TestNilLevelerOffset2IsSilentlyIgnored(t *testing.T) {
	p := New(&bytes.Buffer{}, nil)
	p.Write(2, 5) // must not panic
}

type fakeLeveler struct{ level obslog.Level }

func (f *fakeLeveler) SetLevel(l obslog.Level) { f.level = l }
func (f *fakeLeveler) Level() obslog.Level      { return f.level }
