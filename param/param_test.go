package param

import (
	"encoding/binary"
	"testing"

	"github.com/soypat/mmctune/sdly"
)

func TestPackUnpack(t *testing.T) {
	for tm := sdly.Mode1; tm <= sdly.Mode5; tm++ {
		tbl := sdly.NewTable()
		for mode := sdly.SpeedMode(0); mode < sdly.NumSpeedModes; mode++ {
			for i := 0; i < sdly.MaxFreqPoints; i++ {
				tbl.SetSample(mode, i, uint8(int(mode)*16+i))
			}
		}
		for i := 0; i < sdly.MaxFreqPoints; i++ {
			tbl.SetStrobe(i, uint8(0xa0+i))
		}
		words := PackDelays(tm, &tbl)
		got := UnpackDelays(tm, words)
		for mode := sdly.SpeedMode(0); mode < sdly.NumSpeedModes; mode++ {
			persisted := !(mode == sdly.HS400 && tm == sdly.Mode5)
			for i := 0; i < sdly.MaxFreqPoints; i++ {
				want := tbl.Sample(mode, i)
				if !persisted {
					want = sdly.NoDelay
				}
				if got.Sample(mode, i) != want {
					t.Errorf("%s %s idx %d: got %#x, want %#x", tm, mode, i, got.Sample(mode, i), want)
				}
			}
		}
		for i := 0; i < sdly.MaxFreqPoints; i++ {
			want := tbl.Strobe(i)
			if !tm.HasStrobe() {
				want = sdly.NoDelay
			}
			if got.Strobe(i) != want {
				t.Errorf("%s strobe idx %d: got %#x, want %#x", tm, i, got.Strobe(i), want)
			}
		}
	}
}

func TestPackLayout(t *testing.T) {
	tbl := sdly.NewTable()
	tbl.SetSample(sdly.HighSpeed, 0, 0x11)
	tbl.SetSample(sdly.HighSpeed, 5, 0x22)
	tbl.SetStrobe(1, 0x33)
	tbl.SetSample(sdly.HS400, 2, 0x44)
	words := PackDelays(sdly.Mode4, &tbl)
	for _, test := range []struct {
		idx  int
		want uint32
	}{
		{idx: 2, want: 0xffffff11},
		{idx: 3, want: 0xffff22ff},
		{idx: 8, want: 0xffff33ff},
		{idx: 9, want: 0xffffffff},
		{idx: 10, want: 0xff44ffff},
	} {
		if words[test.idx] != test.want {
			t.Errorf("word %d: got %#08x, want %#08x", test.idx, words[test.idx], test.want)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	tbl := sdly.NewTable()
	tbl.SetSample(sdly.HS200, 3, 7)
	info := Info{
		CardType: CardMMC,
		ExtPara0: ExtPara0ID | ExtPara0TuningOK,
		ExtPara1: ExtPara1IO1V8Bias,
		Boot: BootConfig{
			Boot0Para:   1,
			OutDelay50M: 2,
			HSMaxFreq:   50,
		},
		TuneWords: PackDelays(sdly.Mode4, &tbl),
	}
	rec := NewRecord(info)
	region := make([]byte, 1024)
	for i := range region {
		region[i] = 0xaa
	}
	if err := rec.Put(region); err != nil {
		t.Fatal(err)
	}
	for i := RecordLen; i < len(region); i++ {
		if region[i] != 0 {
			t.Fatalf("region not zeroed past record at %d", i)
		}
	}
	got, err := Decode(region)
	if err != nil {
		t.Fatal(err)
	}
	if got != rec {
		t.Fatalf("record mismatch:\n got %+v\nwant %+v", got, rec)
	}
	if !got.Info.TuningOK() {
		t.Error("tuning flag lost")
	}
	if string(got.Header.Name[:]) != Name {
		t.Errorf("bad name %q", got.Header.Name[:])
	}
	unpacked := UnpackDelays(sdly.Mode4, got.Info.TuneWords)
	if unpacked != tbl {
		t.Error("delay table mismatch after record round trip")
	}
}

func TestRecordCorruption(t *testing.T) {
	rec := NewRecord(Info{CardType: CardSD, TuneWords: InvalidWords()})
	region := make([]byte, 512)
	if err := rec.Put(region); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < RecordLen; i++ {
		corrupt := append([]byte(nil), region...)
		corrupt[i] ^= 0x40
		_, err := Decode(corrupt)
		switch {
		case i >= offMagic && i < offMagic+4:
			if err != ErrBadMagic {
				t.Errorf("byte %d: want ErrBadMagic, got %v", i, err)
			}
		case i >= offLength && i < offLength+4:
			if err == nil {
				t.Errorf("byte %d: corrupt length accepted", i)
			}
		default:
			if err != ErrChecksum {
				t.Errorf("byte %d: want ErrChecksum, got %v", i, err)
			}
		}
	}
	// Bytes past the declared length are not covered.
	region[RecordLen] = 0xff
	if _, err := Decode(region); err != nil {
		t.Error(err)
	}
}

func TestRecordShortRegion(t *testing.T) {
	rec := NewRecord(Info{})
	if err := rec.Put(make([]byte, RecordLen-1)); err != ErrShortRegion {
		t.Errorf("want ErrShortRegion, got %v", err)
	}
	if _, err := Decode(make([]byte, HeaderLen-1)); err != ErrShortRegion {
		t.Errorf("want ErrShortRegion, got %v", err)
	}
	if _, err := Decode(make([]byte, 512)); err != ErrBadMagic {
		t.Errorf("blank region: want ErrBadMagic, got %v", err)
	}
}

func TestRecordHeaderLayout(t *testing.T) {
	if len(Name) != NameLen {
		t.Fatalf("name %q is %d bytes, NameLen is %d", Name, len(Name), NameLen)
	}
	if HeaderLen != 25 || RecordLen != 93 {
		t.Fatalf("HeaderLen=%d RecordLen=%d", HeaderLen, RecordLen)
	}
	rec := NewRecord(Info{CardType: CardMMC, ExtPara0: ExtPara0ID | ExtPara0TuningOK})
	var length uint32 = RecordLen
	if rec.Header.Length != length {
		t.Errorf("header length %d, want %d", rec.Header.Length, length)
	}
	region := make([]byte, RecordLen)
	if err := rec.Put(region); err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint32(region[offLength:]); got != RecordLen {
		t.Errorf("encoded length %d", got)
	}
	// TuningOK must be callable on values returned from functions.
	decoded := func() Info { r, _ := Decode(region); return r.Info }
	if !decoded().TuningOK() {
		t.Error("tuning flag not reported")
	}
}
