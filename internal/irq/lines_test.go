package irq

import "testing"

func TestLineSetDispatchesToHandler(t *testing.T) {
	var gotN, gotLevel int
	var gotOpaque any
	calls := 0

	ls := NewLineSet(4, func(opaque any, n int, level int) {
		calls++
		gotOpaque = opaque
		gotN = n
		gotLevel = level
	}, "device-handle")

	ls.Set(2, 1)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if gotOpaque != "device-handle" {
		t.Fatalf("opaque = %v, want device-handle", gotOpaque)
	}
	if gotN != 2 || gotLevel != 1 {
		t.Fatalf("n=%d level=%d, want n=2 level=1", gotN, gotLevel)
	}
	if ls.Level(2) != 1 {
		t.Fatalf("Level(2) = %d, want 1", ls.Level(2))
	}
}

func TestLineSetInBindsLine(t *testing.T) {
	var seen []int
	ls := NewLineSet(2, func(_ any, n int, level int) {
		seen = append(seen, n, level)
	}, nil)

	setter := ls.In(1)
	setter(1)
	setter(0)

	want := []int{1, 1, 1, 0}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}
