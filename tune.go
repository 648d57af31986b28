package mmctune

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/mmctune/sdly"
)

// TuneSpeedMode switches the card to mode and sweeps its delays. HS400 command
// line delays are tuned before the data strobe on hosts with a separate strobe chain.
// A returned ErrNoUsableDelay leaves the bus at DefaultFreq.
func (t *Tuner) TuneSpeedMode(mode sdly.SpeedMode) error {
	if !mode.IsValid() {
		return ErrUnsupportedMode
	}
	if _, err := t.referencePattern(); err != nil {
		return err
	}
	if err := t.switchMode(mode); err != nil {
		return err
	}
	start := time.Now()
	if mode == sdly.HS400 && t.hasCmdTuning() {
		if err := t.sweep(mode, t.cmdGeometry()); err != nil {
			return fmt.Errorf("hs400 cmd line: %w", err)
		}
	}
	err := t.sweep(mode, t.dataGeometry(mode))
	t.info("TuneSpeedMode", slog.String("mode", mode.String()), slog.Duration("took", time.Since(start)), slog.Bool("ok", err == nil))
	return err
}

// switchMode negotiates mode with MMC cards. HS400 is entered from DDR52.
// SD cards stay in their current mode and do not support DDR52 or faster.
func (t *Tuner) switchMode(mode sdly.SpeedMode) error {
	card := t.cfg.Card
	if card.SD {
		if mode >= sdly.DDR52 {
			return fmt.Errorf("%s on SD card: %w", mode, ErrUnsupportedMode)
		}
		t.current.Mode = mode
		return nil
	}
	width := card.BusWidth()
	if mode == sdly.HS400 {
		if err := t.bus.SwitchSpeedMode(sdly.DDR52, width); err != nil {
			return fmt.Errorf("switch to %s: %w", sdly.DDR52, err)
		}
	}
	if err := t.bus.SwitchSpeedMode(mode, width); err != nil {
		return fmt.Errorf("switch to %s: %w", mode, err)
	}
	t.current.Mode = mode
	t.debug("switch", slog.String("mode", mode.String()), slog.Int("width", width))
	return nil
}

// settle applies the best tabulated point of mode after switching back to it.
func (t *Tuner) settle(mode sdly.SpeedMode) error {
	err := t.chooseOperatingPoint(mode, geometry{axis: sdly.AxisSample})
	if errors.Is(err, ErrNoUsableDelay) {
		return nil
	}
	return err
}

// BusTuning writes the tuning pattern and tunes every speed mode the card supports.
// HighSpeed is mandatory. HS200 and DDR52 are optional and HS400 is only
// attempted on 8 bit HS400 cards when both optional modes succeeded, after which it is
// mandatory. The card is left in HighSpeed mode.
func (t *Tuner) BusTuning() error {
	t.tuned = false
	caps := t.cfg.Card.Caps
	if err := t.WriteTuningPattern(); err != nil {
		return fmt.Errorf("write tuning pattern: %w", err)
	}
	if t.cfg.TuneLegacy {
		if err := t.TuneSpeedMode(sdly.Legacy); err != nil {
			t.warn("BusTuning:fail", slog.String("mode", sdly.Legacy.String()), errAttr(err))
		}
	}
	if err := t.TuneSpeedMode(sdly.HighSpeed); err != nil {
		t.logerr("BusTuning:fail", slog.String("mode", sdly.HighSpeed.String()), errAttr(err))
		return errors.Join(ErrMandatoryMode, err)
	}
	optionalFailed := false
	for _, opt := range []struct {
		cap  Caps
		mode sdly.SpeedMode
	}{
		{cap: CapHS200, mode: sdly.HS200},
		{cap: CapDDR52, mode: sdly.DDR52},
	} {
		if !caps.Has(opt.cap) {
			continue
		}
		if err := t.TuneSpeedMode(opt.mode); err != nil {
			t.warn("BusTuning:fail", slog.String("mode", opt.mode.String()), errAttr(err))
			optionalFailed = true
		}
	}
	if caps.Has(CapHS400|CapBus8) && !optionalFailed {
		if err := t.TuneSpeedMode(sdly.HS400); err != nil {
			t.logerr("BusTuning:fail", slog.String("mode", sdly.HS400.String()), errAttr(err))
			return errors.Join(ErrMandatoryMode, err)
		}
		if err := t.switchMode(sdly.DDR52); err != nil {
			return err
		}
	}
	if err := t.switchMode(sdly.HighSpeed); err != nil {
		return err
	}
	if err := t.settle(sdly.HighSpeed); err != nil {
		return err
	}
	t.tuned = true
	t.info("BusTuning:done")
	return nil
}

// SelectBestKnownPoint switches an MMC card to the fastest speed mode and
// frequency with valid tabulated delays, falling back to HighSpeed at
// frequency index 2. SD cards keep their current operating point.
func (t *Tuner) SelectBestKnownPoint() (sdly.SpeedMode, uint32, error) {
	if t.cfg.Card.SD {
		return t.current.Mode, t.current.Freq, nil
	}
	mode, idx := t.bestKnownPoint()
	freq := t.selectFreq(mode, idx)
	if freq == 0 {
		return mode, 0, fmt.Errorf("%s has no frequency at index %d", mode, idx)
	}
	if err := t.switchMode(mode); err != nil {
		return mode, freq, err
	}
	if err := t.apply(mode, idx, freq); err != nil {
		return mode, freq, err
	}
	t.info("SelectBestKnownPoint",
		slog.String("mode", mode.String()),
		slog.Int("idx", idx),
		slog.Uint64("freq", uint64(freq)),
		slog.Int("width", t.cfg.Card.BusWidth()),
	)
	return mode, freq, nil
}

func (t *Tuner) bestKnownPoint() (sdly.SpeedMode, int) {
	caps := t.cfg.Card.Caps
	tbl := &t.table
	if caps.Has(CapHS400 | CapBus8) {
		idx := 3
		if t.cfg.HS400MaxFreq != 0 {
			idx = 5
		}
		for ; idx >= 2; idx-- {
			// Timing mode 5 does not tune HS200 with the HS400 sample chain.
			sampleOK := t.tm == sdly.Mode5 || tbl.Sample(sdly.HS200, idx) != sdly.NoDelay
			data := tbl.Strobe(idx)
			if !t.tm.HasStrobe() {
				data = tbl.Sample(sdly.HS400, idx)
			}
			if sampleOK && data != sdly.NoDelay {
				return sdly.HS400, idx
			}
		}
	}
	if caps.Has(CapHS200) {
		idx := 4
		if t.cfg.HS200MaxFreq != 0 {
			idx = 5
		}
		for ; idx >= 4; idx-- {
			if tbl.Sample(sdly.HS200, idx) != sdly.NoDelay {
				return sdly.HS200, idx
			}
		}
	}
	if caps.Has(CapDDR52) && tbl.Sample(sdly.DDR52, 2) != sdly.NoDelay {
		return sdly.DDR52, 2
	}
	if caps.Has(CapHS52) {
		for idx := 2; idx >= 1; idx-- {
			if tbl.Sample(sdly.HighSpeed, idx) != sdly.NoDelay {
				return sdly.HighSpeed, idx
			}
		}
	}
	return sdly.HighSpeed, 2
}
