package mmctune

import "github.com/soypat/mmctune/sdly"

const mhz = 1_000_000

// Candidate frequencies per speed mode. A zero entry ends the list.
var freqTable = [sdly.NumSpeedModes][sdly.MaxFreqPoints]uint32{
	sdly.Legacy:    {400_000, 25 * mhz, 50 * mhz},
	sdly.HighSpeed: {400_000, 25 * mhz, 50 * mhz},
	sdly.DDR52:     {400_000, 25 * mhz, 50 * mhz},
	sdly.HS200:     {400_000, 25 * mhz, 50 * mhz, 100 * mhz, 150 * mhz, 200 * mhz},
	sdly.HS400:     {400_000, 25 * mhz, 50 * mhz, 100 * mhz, 150 * mhz, 200 * mhz},
}

// Frequencies outside a speed mode's range are not probed.
var freqRange = [sdly.NumSpeedModes]struct{ min, max uint32 }{
	sdly.Legacy:    {400_000, 26 * mhz},
	sdly.HighSpeed: {50 * mhz, 52 * mhz},
	sdly.DDR52:     {25 * mhz, 52 * mhz},
	sdly.HS200:     {50 * mhz, 200 * mhz},
	sdly.HS400:     {50 * mhz, 150 * mhz},
}

// Extended frequency point word layout.
const (
	extFreqValid     = 1 << 31
	extFreqModeShift = 16
	extFreqIdxShift  = 8
)

// ExtFreq returns a Config.ExtFreq word replacing candidate frequency idx of mode with freqMHz.
func ExtFreq(mode sdly.SpeedMode, idx int, freqMHz uint8) uint32 {
	return extFreqValid | uint32(mode)<<extFreqModeShift | uint32(uint8(idx))<<extFreqIdxShift | uint32(freqMHz)
}

// selectFreq resolves candidate frequency idx of mode in hertz.
// It returns 0 past the last candidate.
func (t *Tuner) selectFreq(mode sdly.SpeedMode, idx int) uint32 {
	if !mode.IsValid() || idx < 0 || idx >= sdly.MaxFreqPoints {
		return 0
	}
	for _, v := range t.cfg.ExtFreq {
		if v&extFreqValid == 0 {
			continue
		}
		if int(v>>extFreqIdxShift&0xff) == idx && sdly.SpeedMode(v>>extFreqModeShift&0xff) == mode {
			return (v & 0xff) * mhz
		}
	}
	return freqTable[mode][idx]
}

// skipFreq reports whether freq is outside of the allowed range of mode.
func (t *Tuner) skipFreq(mode sdly.SpeedMode, freq uint32) bool {
	r := freqRange[mode]
	switch {
	case mode == sdly.HS200 && t.cfg.HS200MaxFreq != 0:
		r.max = t.cfg.HS200MaxFreq * mhz
	case mode == sdly.HS400 && t.cfg.HS400MaxFreq != 0:
		r.max = t.cfg.HS400MaxFreq * mhz
	}
	return freq < r.min || freq > r.max
}
