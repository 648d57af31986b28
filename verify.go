package mmctune

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/soypat/mmctune/pattern"
	"github.com/soypat/mmctune/sdly"
)

// Frequencies the tuning pattern write is attempted at, in order.
var patternWriteFreqs = [...]uint32{25 * mhz, 50 * mhz}

// verifyPattern reads the tuning pattern back RetryCycles times at the applied
// delay. Every read must succeed and match. A failed transfer is followed by a manual stop.
func (t *Tuner) verifyPattern() error {
	pat, err := t.referencePattern()
	if err != nil {
		return err
	}
	lba := t.regions.RegionOffset(RegionTuning)
	buf := t.rdbuf[:len(pat)]
	for i := 0; i < t.retry; i++ {
		err = t.readBlocks(lba, buf)
		if err != nil {
			t.bus.SendManualStop()
			return err
		}
		if !bytes.Equal(pat, buf) {
			return errPatternMismatch
		}
	}
	return nil
}

// verifyStatus polls the card status RetryCycles times at the applied delay.
func (t *Tuner) verifyStatus() error {
	for i := 0; i < t.retry; i++ {
		if err := t.bus.SendStatus(); err != nil {
			return err
		}
		if t.statusGap > 0 {
			time.Sleep(t.statusGap)
		}
	}
	return nil
}

// writeReadback writes the tuning pattern and checks it reads back unchanged.
func (t *Tuner) writeReadback() error {
	pat, err := t.referencePattern()
	if err != nil {
		return err
	}
	lba := t.regions.RegionOffset(RegionTuning)
	err = t.writeBlocks(lba, pat)
	if err != nil {
		t.manualStop(len(pat))
		return fmt.Errorf("write pattern: %w", err)
	}
	buf := t.rdbuf[:len(pat)]
	err = t.readBlocks(lba, buf)
	if err != nil {
		t.manualStop(len(pat))
		return fmt.Errorf("read pattern: %w", err)
	}
	if !bytes.Equal(pat, buf) {
		return errPatternMismatch
	}
	return nil
}

// manualStop stops an open multiple block transfer of n bytes.
func (t *Tuner) manualStop(n int) {
	if n > BlockSize {
		t.bus.SendManualStop()
	}
}

// WriteTuningPattern writes the reference pattern to the tuning region with no
// sample delay applied, trying 25 MHz first and 50 MHz second. The previous clock
// is restored on success.
func (t *Tuner) WriteTuningPattern() (err error) {
	if _, err = t.referencePattern(); err != nil {
		return err
	}
	prev := t.current
	for _, freq := range patternWriteFreqs {
		err = t.setClock(sdly.Timing{
			Mode:      prev.Mode,
			FreqIndex: -1,
			Freq:      freq,
			Sample:    sdly.NoDelay,
			Strobe:    sdly.NoDelay,
		})
		if err == nil {
			err = t.writeReadback()
		}
		if err == nil {
			t.info("WriteTuningPattern:ok", slog.Uint64("freq", uint64(freq)))
			if prev.Freq != 0 {
				return t.setClock(prev)
			}
			return nil
		}
		t.warn("WriteTuningPattern:fail", slog.Uint64("freq", uint64(freq)), errAttr(err))
	}
	return err
}

func (t *Tuner) readBlocks(lba uint32, dst []byte) error {
	n, err := t.bus.ReadBlocks(lba, dst)
	if err == nil && n != pattern.Blocks(dst) {
		err = errShortTransfer
	}
	return err
}

func (t *Tuner) writeBlocks(lba uint32, src []byte) error {
	n, err := t.bus.WriteBlocks(lba, src)
	if err == nil && n != pattern.Blocks(src) {
		err = errShortTransfer
	}
	return err
}
