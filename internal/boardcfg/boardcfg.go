// Package boardcfg loads board tuning configuration files. YAML (.yaml, .yml)
// and TOML (.toml) files share the same schema:
//
//	timing_mode = 4
//	window_threshold = 4
//	auto_sample = true
//
//	[card]
//	bus_width = 8
//	modes = ["hs52", "ddr52", "hs200", "hs400"]
//
//	[regions]
//	tuning = { lba = 0x5c00, blocks = 16 }
//	param = { lba = 0x5bff, blocks = 1 }
package boardcfg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/soypat/mmctune"
	"github.com/soypat/mmctune/param"
	"github.com/soypat/mmctune/sdly"
)

var (
	ErrFormat = errors.New("boardcfg: unknown file format")
	errMode   = errors.New("boardcfg: unknown speed mode")
	errWidth  = errors.New("boardcfg: bus width must be 1, 4 or 8")
)

// Format is a configuration file encoding.
type Format uint8

const (
	FormatYAML Format = iota + 1
	FormatTOML
)

// FormatOf returns the format of filename by extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrFormat, filename)
}

// File is the on-disk board description. Zero fields keep mmctune.DefaultConfig values.
type File struct {
	TimingMode      uint8     `yaml:"timing_mode" toml:"timing_mode"`
	SamplePoints    int       `yaml:"sample_points" toml:"sample_points"`
	StrobePoints    int       `yaml:"strobe_points" toml:"strobe_points"`
	WindowThreshold *uint8    `yaml:"window_threshold" toml:"window_threshold"`
	RetryCycles     int       `yaml:"retry_cycles" toml:"retry_cycles"`
	HS200MaxFreq    uint32    `yaml:"hs200_max_freq" toml:"hs200_max_freq"`
	HS400MaxFreq    uint32    `yaml:"hs400_max_freq" toml:"hs400_max_freq"`
	ExtFreq         []ExtFreq `yaml:"ext_freq" toml:"ext_freq"`
	AutoSample      *bool     `yaml:"auto_sample" toml:"auto_sample"`
	TuneLegacy      bool      `yaml:"tune_legacy" toml:"tune_legacy"`
	IO1V8           bool      `yaml:"io_1v8" toml:"io_1v8"`
	Boot0HS         bool      `yaml:"boot0_hs" toml:"boot0_hs"`
	Card            *CardFile `yaml:"card" toml:"card"`
	Boot            BootFile  `yaml:"boot" toml:"boot"`
	Regions         *Regions  `yaml:"regions" toml:"regions"`
}

// ExtFreq replaces one candidate frequency of a speed mode.
type ExtFreq struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Index int    `yaml:"index" toml:"index"`
	MHz   uint8  `yaml:"mhz" toml:"mhz"`
}

type CardFile struct {
	SD       bool     `yaml:"sd" toml:"sd"`
	BusWidth int      `yaml:"bus_width" toml:"bus_width"`
	Modes    []string `yaml:"modes" toml:"modes"`
}

type BootFile struct {
	Boot0Para         uint8 `yaml:"boot0_para" toml:"boot0_para"`
	OutDelay50M       uint8 `yaml:"out_delay_50m" toml:"out_delay_50m"`
	SampleDelay50M    uint8 `yaml:"sample_delay_50m" toml:"sample_delay_50m"`
	OutDelay50MDDR    uint8 `yaml:"out_delay_50m_ddr" toml:"out_delay_50m_ddr"`
	SampleDelay50MDDR uint8 `yaml:"sample_delay_50m_ddr" toml:"sample_delay_50m_ddr"`
	HSMaxFreq         uint8 `yaml:"hs_max_freq" toml:"hs_max_freq"`
}

type Region struct {
	LBA    uint32 `yaml:"lba" toml:"lba"`
	Blocks uint32 `yaml:"blocks" toml:"blocks"`
}

type Regions struct {
	Tuning Region `yaml:"tuning" toml:"tuning"`
	Param  Region `yaml:"param" toml:"param"`
}

// Load reads and applies the configuration file at filename.
func Load(filename string) (mmctune.Config, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return mmctune.Config{}, err
	}
	fp, err := os.Open(filename)
	if err != nil {
		return mmctune.Config{}, err
	}
	defer fp.Close()
	cfg, err := Decode(fp, format)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

// Decode decodes a configuration file of the given format into a tuner configuration.
func Decode(r io.Reader, format Format) (mmctune.Config, error) {
	var f File
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return mmctune.Config{}, err
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return mmctune.Config{}, err
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return mmctune.Config{}, fmt.Errorf("unknown key %q", undec[0].String())
		}
	default:
		return mmctune.Config{}, ErrFormat
	}
	return f.Config()
}

// Config applies f over mmctune.DefaultConfig.
func (f *File) Config() (mmctune.Config, error) {
	cfg := mmctune.DefaultConfig()
	if f.TimingMode != 0 {
		cfg.TimingMode = sdly.TimingMode(f.TimingMode)
	}
	cfg.SamplePoints = f.SamplePoints
	cfg.StrobePoints = f.StrobePoints
	if f.WindowThreshold != nil {
		cfg.WindowThreshold = *f.WindowThreshold
	}
	if f.RetryCycles != 0 {
		cfg.RetryCycles = f.RetryCycles
	}
	cfg.HS200MaxFreq = f.HS200MaxFreq
	cfg.HS400MaxFreq = f.HS400MaxFreq
	for _, ext := range f.ExtFreq {
		mode, err := ParseSpeedMode(ext.Mode)
		if err != nil {
			return cfg, err
		}
		if ext.Index < 0 || ext.Index >= sdly.MaxFreqPoints {
			return cfg, fmt.Errorf("ext_freq %s: %w", ext.Mode, sdly.ErrIndex)
		}
		cfg.ExtFreq = append(cfg.ExtFreq, mmctune.ExtFreq(mode, ext.Index, ext.MHz))
	}
	if f.AutoSample != nil {
		cfg.AutoSample = *f.AutoSample
	}
	cfg.TuneLegacy = f.TuneLegacy
	cfg.IO1V8 = f.IO1V8
	cfg.Boot0HS = f.Boot0HS
	cfg.Boot = param.BootConfig(f.Boot)
	if f.Card != nil {
		card, err := f.Card.card()
		if err != nil {
			return cfg, err
		}
		cfg.Card = card
	}
	if f.Regions != nil {
		cfg.Regions = mmctune.FixedRegions{
			TuningLBA:    f.Regions.Tuning.LBA,
			TuningBlocks: f.Regions.Tuning.Blocks,
			ParamLBA:     f.Regions.Param.LBA,
			ParamBlocks:  f.Regions.Param.Blocks,
		}
	}
	return cfg, nil
}

func (c *CardFile) card() (card mmctune.Card, err error) {
	card.SD = c.SD
	switch c.BusWidth {
	case 0, 1:
	case 4:
		card.Caps |= mmctune.CapBus4
	case 8:
		card.Caps |= mmctune.CapBus4 | mmctune.CapBus8
	default:
		return card, errWidth
	}
	for _, name := range c.Modes {
		mode, err := ParseSpeedMode(name)
		if err != nil {
			return card, err
		}
		switch mode {
		case sdly.HighSpeed:
			card.Caps |= mmctune.CapHS52
		case sdly.DDR52:
			card.Caps |= mmctune.CapDDR52
		case sdly.HS200:
			card.Caps |= mmctune.CapHS200
		case sdly.HS400:
			card.Caps |= mmctune.CapHS400
		}
	}
	return card, nil
}

var modeNames = map[string]sdly.SpeedMode{
	"legacy": sdly.Legacy,
	"ds26":   sdly.Legacy,
	"sdr12":  sdly.Legacy,
	"hs":     sdly.HighSpeed,
	"hs52":   sdly.HighSpeed,
	"sdr25":  sdly.HighSpeed,
	"ddr52":  sdly.DDR52,
	"ddr50":  sdly.DDR52,
	"hs200":  sdly.HS200,
	"sdr104": sdly.HS200,
	"hs400":  sdly.HS400,
}

// ParseSpeedMode parses a case insensitive speed mode name such as "hs200" or "ddr52".
func ParseSpeedMode(name string) (sdly.SpeedMode, error) {
	mode, ok := modeNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errMode, name)
	}
	return mode, nil
}

// Marshal encodes f in the given format.
func Marshal(f *File, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return nil, err
		}
	default:
		return nil, ErrFormat
	}
	return buf.Bytes(), nil
}

// FromConfig returns the file describing cfg. ExtFreq words are not carried over.
func FromConfig(cfg mmctune.Config) File {
	th, auto := cfg.WindowThreshold, cfg.AutoSample
	f := File{
		TimingMode:      uint8(cfg.TimingMode),
		SamplePoints:    cfg.SamplePoints,
		StrobePoints:    cfg.StrobePoints,
		WindowThreshold: &th,
		RetryCycles:     cfg.RetryCycles,
		HS200MaxFreq:    cfg.HS200MaxFreq,
		HS400MaxFreq:    cfg.HS400MaxFreq,
		AutoSample:      &auto,
		TuneLegacy:      cfg.TuneLegacy,
		IO1V8:           cfg.IO1V8,
		Boot0HS:         cfg.Boot0HS,
		Boot:            BootFile(cfg.Boot),
		Card: &CardFile{
			SD:       cfg.Card.SD,
			BusWidth: cfg.Card.BusWidth(),
		},
	}
	for _, c := range []struct {
		cap  mmctune.Caps
		name string
	}{
		{mmctune.CapHS52, "hs52"},
		{mmctune.CapDDR52, "ddr52"},
		{mmctune.CapHS200, "hs200"},
		{mmctune.CapHS400, "hs400"},
	} {
		if cfg.Card.Caps.Has(c.cap) {
			f.Card.Modes = append(f.Card.Modes, c.name)
		}
	}
	if fr, ok := cfg.Regions.(mmctune.FixedRegions); ok {
		f.Regions = &Regions{
			Tuning: Region{LBA: fr.TuningLBA, Blocks: fr.TuningBlocks},
			Param:  Region{LBA: fr.ParamLBA, Blocks: fr.ParamBlocks},
		}
	}
	return f
}
