package mmctune

import (
	"fmt"
	"log/slog"

	"github.com/soypat/mmctune/sdly"
)

type verifyMethod uint8

const (
	// methodPattern reads the tuning pattern back and compares it.
	methodPattern verifyMethod = iota
	// methodStatus polls the card status. Used for the HS400 command line.
	methodStatus
)

// geometry describes how one sweep probes the delay space of a speed mode.
type geometry struct {
	axis      sdly.Axis
	points    int
	selector  sdly.Selector
	threshold uint8
	method    verifyMethod
	// roundTrip writes and reads back the pattern before every probe.
	roundTrip bool
	// primaryOnly limits the operating point to frequency index 2.
	primaryOnly bool
}

// dataGeometry returns the data line sweep geometry of mode under the session's timing mode.
func (t *Tuner) dataGeometry(mode sdly.SpeedMode) geometry {
	g := geometry{
		axis:      sdly.AxisSample,
		points:    t.samplePoints,
		selector:  sdly.BestDelay,
		threshold: t.cfg.WindowThreshold,
		method:    methodPattern,
	}
	if t.tm == sdly.Mode5 {
		if mode == sdly.HS400 {
			g.axis = sdly.AxisStrobe
			g.points = t.strobePoints
			g.selector = sdly.BestDelayTM5
			g.roundTrip = true
		} else {
			g.points = tm5Points
			g.selector = sdly.BestDelayTM5
			g.threshold = 1
		}
		return g
	}
	if mode == sdly.DDR52 {
		g.threshold = 8
	}
	switch {
	case mode == sdly.HS400 && t.tm.HasStrobe():
		g.axis = sdly.AxisStrobe
		g.points = t.strobePoints
	case t.tm == sdly.Mode2:
		g.selector = sdly.FirstPassDelay
	}
	return g
}

// cmdGeometry returns the HS400 command line sweep geometry. Results are
// stored in the HS400 sample row.
func (t *Tuner) cmdGeometry() geometry {
	g := geometry{
		axis:        sdly.AxisSample,
		points:      t.samplePoints,
		selector:    sdly.BestDelay,
		threshold:   t.cfg.WindowThreshold,
		method:      methodStatus,
		primaryOnly: true,
	}
	if t.tm == sdly.Mode2 {
		g.selector = sdly.FirstPassDelay
	}
	return g
}

// hasCmdTuning reports whether HS400 command line delays are tuned separately from data.
func (t *Tuner) hasCmdTuning() bool {
	return t.tm.HasStrobe() && t.tm != sdly.Mode5
}

// sweep probes every delay of g for each candidate frequency of mode, records
// the best delay per frequency and leaves the bus at a validated operating point.
func (t *Tuner) sweep(mode sdly.SpeedMode, g geometry) error {
	t.debug("sweep:start",
		slog.String("mode", mode.String()),
		slog.String("axis", g.axis.String()),
		slog.Int("points", g.points),
		slog.Int("th", int(g.threshold)),
	)
	if g.axis == sdly.AxisStrobe {
		for i := 0; i < sdly.MaxFreqPoints; i++ {
			t.table.SetStrobe(i, sdly.NoDelay)
		}
	} else {
		t.table.ResetMode(mode)
	}
	nfreq := 0
	for idx := 0; idx < sdly.MaxFreqPoints; idx++ {
		freq := t.selectFreq(mode, idx)
		if freq == 0 {
			break
		}
		nfreq++
		row := t.bitmapRow(idx, g.points)
		if t.skipFreq(mode, freq) {
			t.debug("sweep:skip", slog.Int("idx", idx), slog.Uint64("freq", uint64(freq)))
			for d := range row {
				row[d] = sdly.Skipped
			}
			continue
		}
		t.debug("sweep:freq", slog.Int("idx", idx), slog.Uint64("freq", uint64(freq)))
		for d := range row {
			t.table.SetDelay(g.axis, mode, idx, uint8(d))
			row[d] = t.probe(mode, idx, freq, g)
		}
	}

	for idx := 0; idx < nfreq; idx++ {
		row := t.bitmap[idx][:g.points]
		best := g.selector(row, g.threshold)
		t.table.SetDelay(g.axis, mode, idx, best)
		t.traceRow("sweep:row", t.selectFreq(mode, idx), row)
		t.debug("sweep:best", slog.Int("idx", idx), slog.Int("best", int(best)))
	}
	return t.chooseOperatingPoint(mode, g)
}

func (t *Tuner) bitmapRow(idx, points int) []uint8 {
	if cap(t.bitmap[idx]) < points {
		t.bitmap[idx] = make([]uint8, points)
	}
	return t.bitmap[idx][:points]
}

// probe applies the delay currently stored in the table and verifies the bus with it.
func (t *Tuner) probe(mode sdly.SpeedMode, idx int, freq uint32, g geometry) uint8 {
	err := t.apply(mode, idx, freq)
	if err == nil && g.roundTrip {
		err = t.writeReadback()
	}
	if err == nil {
		switch g.method {
		case methodStatus:
			err = t.verifyStatus()
		default:
			err = t.verifyPattern()
		}
	}
	if err != nil {
		if t._traceenabled {
			t.trace("probe:fail", slog.Int("idx", idx), slog.Int("dly", int(t.table.Delay(g.axis, mode, idx))), errAttr(err))
		}
		return sdly.Fail
	}
	return sdly.Pass
}

// chooseOperatingPoint applies frequency index 2 of mode, or index 1 if index 2
// has no valid delay. If neither is usable DefaultFreq is applied and ErrNoUsableDelay returned.
func (t *Tuner) chooseOperatingPoint(mode sdly.SpeedMode, g geometry) error {
	candidates := []int{2, 1}
	if g.primaryOnly {
		candidates = candidates[:1]
	}
	for _, idx := range candidates {
		freq := t.selectFreq(mode, idx)
		if freq != 0 && t.table.Delay(g.axis, mode, idx) != sdly.NoDelay {
			t.debug("sweep:done", slog.String("mode", mode.String()), slog.Int("idx", idx), slog.Uint64("freq", uint64(freq)))
			return t.apply(mode, idx, freq)
		}
	}
	t.warn("sweep:no-delay", slog.String("mode", mode.String()), slog.Uint64("fallback", DefaultFreq))
	if err := t.applyFallback(mode); err != nil {
		return err
	}
	return fmt.Errorf("%s %s: %w", mode, g.axis, ErrNoUsableDelay)
}

// apply programs frequency index idx of mode along with its tabulated delays.
func (t *Tuner) apply(mode sdly.SpeedMode, idx int, freq uint32) error {
	tm := sdly.Timing{
		Mode:      mode,
		FreqIndex: idx,
		Freq:      freq,
		Sample:    t.table.Sample(mode, idx),
		Strobe:    sdly.NoDelay,
	}
	if mode == sdly.HS400 {
		tm.Strobe = t.table.Strobe(idx)
	}
	return t.setClock(tm)
}

func (t *Tuner) applyFallback(mode sdly.SpeedMode) error {
	return t.setClock(sdly.Timing{
		Mode:      mode,
		FreqIndex: -1,
		Freq:      DefaultFreq,
		Sample:    sdly.NoDelay,
		Strobe:    sdly.NoDelay,
	})
}

func (t *Tuner) setClock(tm sdly.Timing) error {
	err := t.bus.SetClock(tm)
	if err != nil {
		return fmt.Errorf("set clock %d Hz: %w", tm.Freq, err)
	}
	t.current = tm
	return nil
}
