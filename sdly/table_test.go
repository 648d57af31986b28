package sdly

import (
	"strings"
	"testing"
)

func TestTableBounds(t *testing.T) {
	tbl := NewTable()
	if got := tbl.Sample(HS200, 3); got != NoDelay {
		t.Fatalf("new table entry: got %#x", got)
	}
	if err := tbl.SetSample(HS200, 3, 0x12); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetStrobe(5, 0x21); err != nil {
		t.Fatal(err)
	}
	if tbl.Sample(HS200, 3) != 0x12 || tbl.Delay(AxisSample, HS200, 3) != 0x12 {
		t.Error("sample delay not stored")
	}
	if tbl.Strobe(5) != 0x21 || tbl.Delay(AxisStrobe, Legacy, 5) != 0x21 {
		t.Error("strobe delay not stored")
	}

	if err := tbl.SetSample(HS400+1, 0, 1); err != ErrIndex {
		t.Error("expected ErrIndex for bad speed mode, got", err)
	}
	if err := tbl.SetSample(HS200, MaxFreqPoints, 1); err != ErrIndex {
		t.Error("expected ErrIndex for bad freq index, got", err)
	}
	if err := tbl.SetStrobe(-1, 1); err != ErrIndex {
		t.Error("expected ErrIndex for negative freq index, got", err)
	}
	if tbl.Sample(HS200, -1) != NoDelay || tbl.Strobe(MaxFreqPoints) != NoDelay {
		t.Error("out of range lookups must return NoDelay")
	}

	tbl.ResetMode(HS200)
	if tbl.Sample(HS200, 3) != NoDelay {
		t.Error("ResetMode did not clear row")
	}
	if tbl.Strobe(5) != 0x21 {
		t.Error("ResetMode cleared strobe axis")
	}
}

func TestTableString(t *testing.T) {
	tbl := NewTable()
	tbl.SetSample(HighSpeed, 2, 0x0a)
	s := tbl.String()
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) != NumSpeedModes+1 {
		t.Fatalf("got %d lines:\n%s", len(lines), s)
	}
	if lines[HighSpeed] != "HSSDR52/SDR25: ff ff 0a ff ff ff ff ff" {
		t.Errorf("bad line %q", lines[HighSpeed])
	}
}
