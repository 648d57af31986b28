package mmctune

import (
	"fmt"
	"log/slog"

	"github.com/soypat/mmctune/param"
	"github.com/soypat/mmctune/sdly"
)

// PackAndPersist packs the delay tables used by timing mode tm into a calibration
// record and writes it to the parameter region. The record is read back and verified,
// and the whole cycle is attempted up to 3 times.
func (t *Tuner) PackAndPersist(tm sdly.TimingMode) error {
	if !tm.IsValid() {
		return errTimingMode
	}
	region, err := t.paramRegion()
	if err != nil {
		return err
	}
	rec := param.NewRecord(t.snapshot(tm))
	if err := rec.Put(region); err != nil {
		return err
	}
	lba := t.regions.RegionOffset(RegionParam)
	readback := make([]byte, len(region))
	err = retry(persistAttempts, func(attempt int) error {
		if err := t.writeBlocks(lba, region); err != nil {
			t.warn("store:write", slog.Int("attempt", attempt), errAttr(err))
			return fmt.Errorf("%w: write: %w", ErrPersistIO, err)
		}
		if err := t.readBlocks(lba, readback); err != nil {
			t.warn("store:read", slog.Int("attempt", attempt), errAttr(err))
			return fmt.Errorf("%w: read back: %w", ErrPersistIO, err)
		}
		got, err := param.Decode(readback)
		if err == nil && got.Header.Checksum != rec.Header.Checksum {
			err = param.ErrChecksum
		}
		if err != nil {
			t.warn("store:verify", slog.Int("attempt", attempt), errAttr(err))
		}
		return err
	})
	if err != nil {
		t.logerr("store:fail", errAttr(err))
		return fmt.Errorf("%w after %d attempts: %w", ErrPersistIntegrity, persistAttempts, err)
	}
	t.info("store:ok", slog.String("tm", tm.String()), slog.Bool("tuned", t.tuned), slog.Uint64("sum", uint64(rec.Header.Checksum)))
	return nil
}

// LoadPersisted reads and verifies the calibration record, attempting up to 3 times,
// and adopts the delay tables it holds for timing mode tm. On failure the session's
// tables are reset to NoDelay and the returned error wraps ErrNoCalibration.
func (t *Tuner) LoadPersisted(tm sdly.TimingMode) (sdly.Table, error) {
	t.loaded = param.Info{}
	if !tm.IsValid() {
		return t.table, errTimingMode
	}
	region, err := t.paramRegion()
	if err != nil {
		t.table.Reset()
		return t.table, fmt.Errorf("%w: %w", ErrNoCalibration, err)
	}
	lba := t.regions.RegionOffset(RegionParam)
	var rec param.Record
	err = retry(persistAttempts, func(attempt int) (err error) {
		if err = t.readBlocks(lba, region); err != nil {
			err = fmt.Errorf("%w: %w", ErrPersistIO, err)
		} else {
			rec, err = param.Decode(region)
		}
		if err != nil {
			t.debug("load:retry", slog.Int("attempt", attempt), errAttr(err))
		}
		return err
	})
	if err != nil {
		t.table.Reset()
		t.warn("load:fail", errAttr(err))
		return t.table, fmt.Errorf("%w: %w", ErrNoCalibration, err)
	}
	t.loaded = rec.Info
	if t.cfg.AutoSample {
		t.table = param.UnpackDelays(tm, rec.Info.TuneWords)
	} else {
		t.table.Reset()
	}
	t.info("load:ok", slog.String("card", rec.Info.CardType.String()), slog.Bool("tuned", rec.Info.TuningOK()))
	return t.table, nil
}

// snapshot returns the record payload for the current session.
func (t *Tuner) snapshot(tm sdly.TimingMode) param.Info {
	info := param.Info{
		CardType:  param.CardMMC,
		Boot:      t.cfg.Boot,
		TuneWords: param.InvalidWords(),
	}
	if t.cfg.Card.SD {
		info.CardType = param.CardSD
	}
	if t.cfg.AutoSample {
		info.TuneWords = param.PackDelays(tm, &t.table)
		info.ExtPara0 = param.ExtPara0ID
		if t.tuned {
			info.ExtPara0 |= param.ExtPara0TuningOK
		}
	}
	if t.cfg.IO1V8 {
		info.ExtPara1 |= param.ExtPara1IO1V8Bias
	}
	if t.cfg.Boot0HS {
		info.ExtPara1 |= param.ExtPara1Boot0HS
	}
	return info
}

func (t *Tuner) paramRegion() ([]byte, error) {
	if t.regions == nil {
		return nil, ErrNotInitialized
	}
	size := int(t.regions.RegionSize(RegionParam)) * BlockSize
	if size < param.RecordLen {
		return nil, param.ErrShortRegion
	}
	return make([]byte, size), nil
}

// Loaded returns the payload of the last record read by LoadPersisted.
func (t *Tuner) Loaded() param.Info { return t.loaded }
