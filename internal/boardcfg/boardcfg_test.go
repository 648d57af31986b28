package boardcfg

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/mmctune"
	"github.com/soypat/mmctune/sdly"
)

const boardTOML = `
timing_mode = 2
window_threshold = 0
retry_cycles = 10
hs200_max_freq = 100
auto_sample = true
io_1v8 = true

[[ext_freq]]
mode = "hs200"
index = 4
mhz = 120

[card]
bus_width = 4
modes = ["hs52", "HS200"]

[boot]
boot0_para = 1
hs_max_freq = 50

[regions]
tuning = { lba = 0x1000, blocks = 16 }
param = { lba = 0x0fff, blocks = 1 }
`

const boardYAML = `
timing_mode: 2
window_threshold: 0
retry_cycles: 10
hs200_max_freq: 100
auto_sample: true
io_1v8: true
ext_freq:
  - mode: hs200
    index: 4
    mhz: 120
card:
  bus_width: 4
  modes: [hs52, HS200]
boot:
  boot0_para: 1
  hs_max_freq: 50
regions:
  tuning: {lba: 0x1000, blocks: 16}
  param: {lba: 0x0fff, blocks: 1}
`

func TestDecode(t *testing.T) {
	want := mmctune.DefaultConfig()
	want.TimingMode = sdly.Mode2
	want.WindowThreshold = 0
	want.RetryCycles = 10
	want.HS200MaxFreq = 100
	want.IO1V8 = true
	want.ExtFreq = []uint32{mmctune.ExtFreq(sdly.HS200, 4, 120)}
	want.Card = mmctune.Card{Caps: mmctune.CapBus4 | mmctune.CapHS52 | mmctune.CapHS200}
	want.Boot.Boot0Para = 1
	want.Boot.HSMaxFreq = 50
	want.Regions = mmctune.FixedRegions{TuningLBA: 0x1000, TuningBlocks: 16, ParamLBA: 0xfff, ParamBlocks: 1}

	for _, test := range []struct {
		format Format
		data   string
	}{
		{FormatTOML, boardTOML},
		{FormatYAML, boardYAML},
	} {
		got, err := Decode(strings.NewReader(test.data), test.format)
		if err != nil {
			t.Fatalf("format %d: %v", test.format, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("format %d:\ngot  %+v\nwant %+v", test.format, got, want)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		got, err := Decode(strings.NewReader(""), format)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, mmctune.DefaultConfig()) {
			t.Errorf("format %d: empty file does not yield defaults", format)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, test := range []struct {
		format Format
		data   string
	}{
		{FormatTOML, "unknown_key = 1"},
		{FormatYAML, "unknown_key: 1"},
		{FormatTOML, "[card]\nbus_width = 3"},
		{FormatYAML, "card: {modes: [hs800]}"},
		{FormatYAML, "ext_freq: [{mode: hs200, index: 9, mhz: 10}]"},
		{0, ""},
	} {
		if _, err := Decode(strings.NewReader(test.data), test.format); err == nil {
			t.Errorf("expected error decoding %q", test.data)
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := mmctune.DefaultConfig()
	cfg.IO1V8 = true
	cfg.Boot.SampleDelay50M = 7
	dir := t.TempDir()
	for _, name := range []string{"board.toml", "board.yaml"} {
		format, err := FormatOf(name)
		if err != nil {
			t.Fatal(err)
		}
		f := FromConfig(cfg)
		data, err := Marshal(&f, format)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, cfg) {
			t.Errorf("%s round trip:\n%s\ngot  %+v\nwant %+v", name, data, got, cfg)
		}
	}
	if _, err := FormatOf("board.json"); !errors.Is(err, ErrFormat) {
		t.Errorf("want ErrFormat, got %v", err)
	}
	f := FromConfig(cfg)
	if _, err := Marshal(&f, 0); err != ErrFormat {
		t.Errorf("want ErrFormat, got %v", err)
	}
	if data, _ := Marshal(&f, FormatTOML); !bytes.Contains(data, []byte("timing_mode = 4")) {
		t.Errorf("unexpected toml output:\n%s", data)
	}
}

func TestParseSpeedMode(t *testing.T) {
	for name, want := range map[string]sdly.SpeedMode{
		"legacy": sdly.Legacy,
		" HS52 ": sdly.HighSpeed,
		"ddr50":  sdly.DDR52,
		"SDR104": sdly.HS200,
		"hs400":  sdly.HS400,
	} {
		got, err := ParseSpeedMode(name)
		if err != nil || got != want {
			t.Errorf("%q: got %s, %v", name, got, err)
		}
	}
	if _, err := ParseSpeedMode("hs800"); !errors.Is(err, errMode) {
		t.Errorf("want errMode, got %v", err)
	}
}
