package mmctune

import (
	"errors"

	"github.com/soypat/mmctune/sdly"
)

var (
	// ErrNoUsableDelay is returned when no swept frequency of a speed mode has a valid delay.
	// The bus is left at DefaultFreq.
	ErrNoUsableDelay = errors.New("mmctune: no usable sample delay")
	// ErrPersistIntegrity is returned once all attempts to store or load the
	// calibration record failed verification or I/O.
	ErrPersistIntegrity = errors.New("mmctune: calibration record integrity")
	ErrPersistIO        = errors.New("mmctune: calibration record I/O")
	// ErrNoCalibration is returned by LoadPersisted when no valid record is stored.
	ErrNoCalibration   = errors.New("mmctune: no valid calibration stored")
	ErrBusWidth        = errors.New("mmctune: unsupported bus width")
	ErrUnsupportedMode = errors.New("mmctune: speed mode not supported by card")
	ErrPatternTooLarge = errors.New("mmctune: tuning pattern exceeds tuning region")
	// ErrMandatoryMode is joined to the error of a speed mode whose tuning must succeed.
	ErrMandatoryMode = errors.New("mmctune: mandatory speed mode failed")
	// ErrNotInitialized is returned by card operations on a Tuner before a successful Init.
	ErrNotInitialized = errors.New("mmctune: tuner not initialized")

	errPatternMismatch = errors.New("pattern mismatch")
	errShortTransfer   = errors.New("short block transfer")
	errTimingMode      = errors.New("mmctune: invalid timing mode")
	errSamplePoints    = errors.New("mmctune: sample point count out of range")
	errExtFreq         = errors.New("mmctune: too many extended frequency points")
)

const (
	// BlockSize is the card's data block size.
	BlockSize = 512
	// DefaultFreq is the fallback clock applied when a speed mode has no usable delay.
	DefaultFreq = 6_000_000
	// DefaultRetryCycles is the amount of pattern reads or status polls per probed delay.
	DefaultRetryCycles = 15
	// MaxExtFreq is the maximum amount of Config.ExtFreq entries.
	MaxExtFreq = 4
	// Attempts made by the calibration record store and load paths.
	persistAttempts = 3
)

// Caps is a bitfield of card capabilities.
type Caps uint8

const (
	CapHS52 Caps = 1 << iota
	CapDDR52
	CapHS200
	CapHS400
	CapBus4
	CapBus8
)

// Has reports whether all capabilities in want are set.
func (c Caps) Has(want Caps) bool { return c&want == want }

// Card describes the inserted card.
type Card struct {
	// SD is set for SD cards. SD cards do not support DDR52 and faster modes
	// and keep their operating point after tuning.
	SD   bool
	Caps Caps
}

// BusWidth returns the widest data bus the card supports.
func (c Card) BusWidth() int {
	switch {
	case c.Caps&CapBus8 != 0:
		return 8
	case c.Caps&CapBus4 != 0:
		return 4
	}
	return 1
}

// defaultPoints returns the delay chain length of a timing mode for the sample
// axis and the HS400 data strobe axis.
func defaultPoints(tm sdly.TimingMode) (sample, strobe int) {
	switch tm {
	case sdly.Mode1:
		return 8, 0
	case sdly.Mode2:
		return 2, 64
	case sdly.Mode3:
		return 64, 0
	case sdly.Mode4:
		return 64, 64
	case sdly.Mode5:
		return tm5Points, 32
	}
	return 0, 0
}

// Timing mode 5 only has three sample phases outside of HS400.
const tm5Points = 3
