package sdly

import (
	"testing"
)

func TestWindows(t *testing.T) {
	row := []uint8{0, 1, 1, 1, 0, 1, 1, 0}
	got := Windows(nil, row, 0)
	want := []Window{{1, 3}, {5, 6}}
	if len(got) != len(want) {
		t.Fatalf("got %d windows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].Width() != 3 || got[1].Width() != 2 {
		t.Error("bad widths", got[0].Width(), got[1].Width())
	}
}

func TestWindowsClosedAtRowEnd(t *testing.T) {
	got := Windows(nil, []uint8{0, 0, 1}, 0)
	if len(got) != 1 || got[0] != (Window{2, 2}) {
		t.Fatalf("window starting on last cell not closed: %v", got)
	}
	if best := BestDelayTM5([]uint8{0, 0, 1}, 1); best != 2 {
		t.Errorf("got best %d, want 2", best)
	}
}

func TestWindowsSplit(t *testing.T) {
	row := make([]uint8, 40)
	for i := 10; i < 36; i++ {
		row[i] = Pass
	}
	got := Windows(nil, row, tm5Granularity)
	want := []Window{{10, 15}, {16, 31}, {32, 35}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("window %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	// Widest is the full 16-cell section. Center rounds down.
	if best := BestDelayTM5(row, 4); best != 16+7 {
		t.Errorf("tm5 best: got %d, want %d", best, 16+7)
	}
	// Unsplit the run is one 26 cell window.
	if best := BestDelay(row, 4); best != 10+13 {
		t.Errorf("legacy best: got %d, want %d", best, 10+13)
	}
}

func TestWindowsLimit(t *testing.T) {
	row := make([]uint8, 2*(MaxWindows+5))
	for i := 0; i < len(row); i += 2 {
		row[i] = Pass
	}
	got := Windows(nil, row, 0)
	if len(got) != MaxWindows {
		t.Fatalf("got %d windows, want %d", len(got), MaxWindows)
	}
}

func TestBestDelay(t *testing.T) {
	allPass := []uint8{1, 1, 1, 1, 1, 1, 1, 1}
	allFail := []uint8{0, 0, 0, 0, 0, 0, 0, 0}
	skipped := []uint8{0xff, 0xff, 0xff, 0xff}
	for _, test := range []struct {
		name      string
		sel       Selector
		row       []uint8
		threshold uint8
		want      uint8
	}{
		{name: "legacy all pass", sel: BestDelay, row: allPass, threshold: 1, want: 4},
		{name: "tm5 all pass", sel: BestDelayTM5, row: allPass, threshold: 1, want: 3},
		{name: "legacy all fail", sel: BestDelay, row: allFail, threshold: 0, want: NoDelay},
		{name: "tm5 all fail", sel: BestDelayTM5, row: allFail, threshold: 0, want: NoDelay},
		{name: "legacy skipped", sel: BestDelay, row: skipped, threshold: 0, want: NoDelay},
		{name: "legacy two windows", sel: BestDelay, row: []uint8{0, 1, 1, 1, 0, 1, 1, 0}, threshold: 3, want: 2},
		{name: "legacy below threshold", sel: BestDelay, row: []uint8{0, 1, 1, 1, 0, 1, 1, 0}, threshold: 4, want: NoDelay},
		{name: "legacy tie first wins", sel: BestDelay, row: []uint8{1, 1, 0, 0, 1, 1}, threshold: 2, want: 1},
		{name: "tm5 tie first wins", sel: BestDelayTM5, row: []uint8{1, 1, 0, 0, 1, 1}, threshold: 2, want: 0},
		{name: "legacy later wider", sel: BestDelay, row: []uint8{1, 0, 1, 1, 1, 1, 0}, threshold: 1, want: 4},
		{name: "first pass cell0", sel: FirstPassDelay, row: []uint8{1, 0}, want: 0},
		{name: "first pass cell1", sel: FirstPassDelay, row: []uint8{0, 1}, want: 1},
		{name: "first pass none", sel: FirstPassDelay, row: []uint8{0, 0, 1}, want: NoDelay},
		{name: "first pass skipped", sel: FirstPassDelay, row: []uint8{0xff, 0xff}, want: NoDelay},
	} {
		got := test.sel(test.row, test.threshold)
		if got != test.want {
			t.Errorf("%s: got %#x, want %#x", test.name, got, test.want)
		}
	}
}
