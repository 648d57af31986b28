// Package sdly implements sample delay tables and the window search used
// to pick the best sample delay out of a pass/fail sweep.
package sdly

import (
	"errors"
	"strconv"
)

const (
	// MaxFreqPoints is the amount of candidate frequencies per speed mode.
	MaxFreqPoints = 8
	// NoDelay marks a table entry for which no valid delay was found or
	// whose frequency was skipped. Also used as bitmap cell value for skipped frequencies.
	NoDelay = 0xff
	// MaxSamplePoints is the largest delay-chain length a timing mode may declare.
	MaxSamplePoints = NoDelay
)

// Bitmap cell values.
const (
	Fail    = 0
	Pass    = 1
	Skipped = NoDelay
)

var ErrIndex = errors.New("sdly: index out of range")

// SpeedMode is an electrical/protocol bus operating mode.
type SpeedMode uint8

const (
	Legacy    SpeedMode = iota // DS26/SDR12
	HighSpeed                  // HSSDR52/SDR25
	DDR52                      // HSDDR52/DDR50
	HS200                      // HS200/SDR104
	HS400
	NumSpeedModes = iota
)

func (m SpeedMode) IsValid() bool { return m < NumSpeedModes }

func (m SpeedMode) String() (s string) {
	switch m {
	case Legacy:
		s = "DS26/SDR12"
	case HighSpeed:
		s = "HSSDR52/SDR25"
	case DDR52:
		s = "HSDDR52/DDR50"
	case HS200:
		s = "HS200/SDR104"
	case HS400:
		s = "HS400"
	default:
		s = "SpeedMode(" + strconv.Itoa(int(m)) + ")"
	}
	return s
}

// IsDDR reports whether data is sampled on both clock edges in mode m.
func (m SpeedMode) IsDDR() bool { return m == DDR52 || m == HS400 }

// TimingMode selects the host controller's delay-chain geometry.
type TimingMode uint8

const (
	Mode1 TimingMode = iota + 1
	Mode2
	Mode3
	Mode4
	Mode5
)

func (tm TimingMode) IsValid() bool { return tm >= Mode1 && tm <= Mode5 }

// HasStrobe reports whether HS400 data is tuned on a separate data strobe delay axis.
func (tm TimingMode) HasStrobe() bool {
	return tm == Mode2 || tm == Mode4 || tm == Mode5
}

func (tm TimingMode) String() string {
	if !tm.IsValid() {
		return "TimingMode(" + strconv.Itoa(int(tm)) + ")"
	}
	return "tm" + strconv.Itoa(int(tm))
}

// Axis selects which delay chain of a Table is addressed.
type Axis uint8

const (
	AxisSample Axis = iota
	// AxisStrobe is the HS400 data strobe delay chain. It is indexed by frequency only.
	AxisStrobe
)

func (a Axis) String() string {
	if a == AxisStrobe {
		return "dsdly"
	}
	return "sdly"
}

// Timing is the sampling configuration applied to the bus along with a clock frequency.
type Timing struct {
	Mode SpeedMode
	// FreqIndex is the candidate frequency index Freq was resolved from.
	// It is -1 when Freq is a fallback frequency.
	FreqIndex int
	// Freq is the card clock in hertz.
	Freq uint32
	// Sample is the data (or HS400 command) line sample delay.
	Sample uint8
	// Strobe is the HS400 data strobe delay. NoDelay outside of HS400.
	Strobe uint8
}
