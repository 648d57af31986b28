package mmctune

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/mmctune/sdly"
)

// Calibrate runs the boot time calibration flow. A stored record from a completed
// tuning sequence is adopted as is. Otherwise the bus is tuned and the result persisted.
// The bus is finally switched to the best known operating point, which is returned.
// Boards without AutoSample skip tuning and persist empty tables.
func (t *Tuner) Calibrate() (sdly.Timing, error) {
	if t.regions == nil {
		return t.current, ErrNotInitialized
	}
	start := time.Now()
	t.info("Calibrate:start", slog.String("tm", t.tm.String()))
	_, err := t.LoadPersisted(t.tm)
	switch {
	case err == nil && t.cfg.AutoSample && t.loaded.TuningOK():
		t.tuned = true
		t.info("Calibrate:reuse")
	case !t.cfg.AutoSample:
		if err := t.PackAndPersist(t.tm); err != nil {
			return t.current, err
		}
	default:
		if err != nil {
			t.info("Calibrate:tune", errAttr(err))
		}
		if err := t.BusTuning(); err != nil {
			return t.current, fmt.Errorf("bus tuning: %w", err)
		}
		if err := t.PackAndPersist(t.tm); err != nil {
			return t.current, err
		}
	}
	mode, freq, err := t.SelectBestKnownPoint()
	if err != nil {
		return t.current, err
	}
	t.info("Calibrate:done",
		slog.String("mode", mode.String()),
		slog.Uint64("freq", uint64(freq)),
		slog.Duration("took", time.Since(start)),
	)
	return t.current, nil
}
