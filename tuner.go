// Package mmctune calibrates the sample delays of an MMC/SD host controller
// against the inserted card for every speed mode the card supports, from
// legacy timing up to HS400, and persists the result so later boots can skip tuning.
//
// A typical boot sequence is:
//
//	tuner := mmctune.New(bus)
//	err := tuner.Init(mmctune.DefaultConfig())
//	timing, err := tuner.Calibrate()
package mmctune

import (
	"context"
	"log/slog"
	"time"

	"github.com/soypat/mmctune/param"
	"github.com/soypat/mmctune/pattern"
	"github.com/soypat/mmctune/sdly"
)

// Config configures a tuning session. Zero values select defaults where noted.
type Config struct {
	Logger     *slog.Logger
	TimingMode sdly.TimingMode
	// SamplePoints is the sample delay chain length. 0 selects the timing mode default.
	// Timing mode 5 always probes 3 points outside of HS400.
	SamplePoints int
	// StrobePoints is the HS400 data strobe chain length. 0 selects the timing mode default.
	StrobePoints int
	// WindowThreshold is the minimum passing window width accepted.
	// DDR52 always requires 8 cells except in timing mode 5.
	WindowThreshold uint8
	// RetryCycles is the amount of reads or status polls per probed delay. 0 selects DefaultRetryCycles.
	RetryCycles int
	// Maximum frequency overrides in MHz. 0 keeps the builtin range.
	HS200MaxFreq uint32
	HS400MaxFreq uint32
	// ExtFreq overrides candidate frequencies, see ExtFreq.
	ExtFreq []uint32
	// AutoSample enables tuning. When disabled delay tables are persisted and loaded as NoDelay.
	AutoSample bool
	// TuneLegacy also sweeps the legacy speed mode during BusTuning.
	TuneLegacy bool
	Card       Card
	// Boot is the board snapshot persisted for early boot stages.
	Boot    param.BootConfig
	IO1V8   bool
	Boot0HS bool
	// Regions resolves the tuning and parameter regions. nil selects DefaultRegions.
	Regions Regions
}

// DefaultConfig returns a configuration for an 8 bit HS400 capable eMMC on a timing mode 4 host.
func DefaultConfig() Config {
	return Config{
		TimingMode:      sdly.Mode4,
		WindowThreshold: 4,
		RetryCycles:     DefaultRetryCycles,
		AutoSample:      true,
		Card: Card{
			Caps: CapHS52 | CapDDR52 | CapHS200 | CapHS400 | CapBus4 | CapBus8,
		},
		Regions: DefaultRegions(),
	}
}

// Tuner is a tuning session for a single card. It is not safe for concurrent use.
type Tuner struct {
	bus     Bus
	regions Regions
	cfg     Config
	tm      sdly.TimingMode
	// Delay chain lengths resolved from Config.
	samplePoints int
	strobePoints int
	retry        int

	table sdly.Table
	// Reference patterns per bus width and read back buffer.
	pat4  []byte
	pat8  []byte
	rdbuf []byte
	// bitmap holds one row per frequency index of the sweep in progress.
	bitmap [sdly.MaxFreqPoints][]uint8

	current sdly.Timing
	// tuned is set after BusTuning completes or a completed calibration is loaded.
	tuned  bool
	loaded param.Info

	logger        *slog.Logger
	_traceenabled bool
	statusGap     time.Duration
}

// New returns a Tuner driving bus. Init must succeed before any operation that
// accesses the card, which otherwise return ErrNotInitialized.
func New(bus Bus) *Tuner {
	return &Tuner{
		bus:       bus,
		table:     sdly.NewTable(),
		statusGap: 10 * time.Microsecond,
		current:   sdly.Timing{FreqIndex: -1, Sample: sdly.NoDelay, Strobe: sdly.NoDelay},
	}
}

// Init validates cfg, resets the delay tables and generates the reference patterns.
func (t *Tuner) Init(cfg Config) error {
	t.logger = cfg.Logger
	t._traceenabled = t.logger != nil && t.logger.Handler().Enabled(context.Background(), levelTrace)
	if !cfg.TimingMode.IsValid() {
		return errTimingMode
	}
	if len(cfg.ExtFreq) > MaxExtFreq {
		return errExtFreq
	}
	sample, strobe := defaultPoints(cfg.TimingMode)
	if cfg.SamplePoints != 0 && cfg.TimingMode != sdly.Mode5 {
		sample = cfg.SamplePoints
	}
	if cfg.StrobePoints != 0 {
		strobe = cfg.StrobePoints
	}
	if sample <= 0 || sample > sdly.MaxSamplePoints || strobe < 0 || strobe > sdly.MaxSamplePoints {
		return errSamplePoints
	}
	if cfg.RetryCycles <= 0 {
		cfg.RetryCycles = DefaultRetryCycles
	}
	if cfg.Regions == nil {
		cfg.Regions = DefaultRegions()
	}
	t.cfg = cfg
	t.tm = cfg.TimingMode
	t.samplePoints = sample
	t.strobePoints = strobe
	t.retry = cfg.RetryCycles
	t.regions = cfg.Regions
	t.table.Reset()
	t.tuned = false
	t.info("Init",
		slog.String("tm", t.tm.String()),
		slog.Int("sdly_cnt", sample),
		slog.Int("dsdly_cnt", strobe),
		slog.Int("width", cfg.Card.BusWidth()),
	)
	return t.InitPatterns()
}

// InitPatterns generates the reference patterns for 4 and 8 bit buses and checks
// the 8 bit pattern fits the tuning region. Patterns are generated once.
func (t *Tuner) InitPatterns() error {
	if t.pat4 == nil || t.pat8 == nil {
		pat4, err := pattern.Generate(4)
		if err != nil {
			return err
		}
		pat8, err := pattern.Generate(8)
		if err != nil {
			return err
		}
		t.pat4, t.pat8 = pat4, pat8
		t.rdbuf = make([]byte, len(pat8))
		t.debug("InitPatterns",
			slog.Int("blocks4", pattern.Blocks(pat4)),
			slog.Int("blocks8", pattern.Blocks(pat8)),
		)
	}
	if t.regions != nil && uint32(pattern.Blocks(t.pat8)) > t.regions.RegionSize(RegionTuning) {
		return ErrPatternTooLarge
	}
	return nil
}

// Table returns a copy of the session's delay tables.
func (t *Tuner) Table() sdly.Table { return t.table }

// Timing returns the timing last applied to the bus.
func (t *Tuner) Timing() sdly.Timing { return t.current }

// TimingMode returns the configured host timing mode.
func (t *Tuner) TimingMode() sdly.TimingMode { return t.tm }

// Tuned reports whether the delay tables come from a completed bus tuning sequence.
func (t *Tuner) Tuned() bool { return t.tuned }

// referencePattern returns the reference pattern for the card's bus width.
func (t *Tuner) referencePattern() ([]byte, error) {
	if t.regions == nil {
		return nil, ErrNotInitialized
	}
	if err := t.InitPatterns(); err != nil {
		return nil, err
	}
	switch t.cfg.Card.BusWidth() {
	case 4:
		return t.pat4, nil
	case 8:
		return t.pat8, nil
	}
	return nil, ErrBusWidth
}
