package param

import "github.com/soypat/mmctune/sdly"

// NumTuneWords is the amount of 32 bit words holding packed delays.
// Each speed mode uses two words, HS400 may use two groups of two words.
const NumTuneWords = 12

const (
	freqsPerWord = 4
	wordsPerRow  = sdly.MaxFreqPoints / freqsPerWord
)

// InvalidWords returns tune words with every delay set to sdly.NoDelay.
func InvalidWords() (words [NumTuneWords]uint32) {
	for i := range words {
		words[i] = 0xffff_ffff
	}
	return words
}

// PackDelays packs the rows of t used by timing mode tm. Frequency index i of a
// row is stored in byte i%4 of word i/4 of that row, low byte first.
// Words not used by tm are left as NoDelay.
func PackDelays(tm sdly.TimingMode, t *sdly.Table) [NumTuneWords]uint32 {
	words := InvalidWords()
	for mode := sdly.SpeedMode(0); mode < sdly.NumSpeedModes; mode++ {
		for g, axis := range groups(tm, mode) {
			var row [sdly.MaxFreqPoints]uint8
			if axis == sdly.AxisStrobe {
				row = t.StrobeRow()
			} else {
				row = t.Row(mode)
			}
			for half := 0; half < wordsPerRow; half++ {
				var val uint32
				for i := 0; i < freqsPerWord; i++ {
					val |= uint32(row[half*freqsPerWord+i]) << (8 * i)
				}
				words[wordIndex(mode, g, half)] = val
			}
		}
	}
	return words
}

// UnpackDelays is the inverse of PackDelays. Entries tm does not persist are NoDelay.
func UnpackDelays(tm sdly.TimingMode, words [NumTuneWords]uint32) sdly.Table {
	t := sdly.NewTable()
	for mode := sdly.SpeedMode(0); mode < sdly.NumSpeedModes; mode++ {
		for g, axis := range groups(tm, mode) {
			for half := 0; half < wordsPerRow; half++ {
				val := words[wordIndex(mode, g, half)]
				for i := 0; i < freqsPerWord; i++ {
					t.SetDelay(axis, mode, half*freqsPerWord+i, uint8(val>>(8*i)))
				}
			}
		}
	}
	return t
}

func wordIndex(mode sdly.SpeedMode, group, half int) int {
	return int(mode)*wordsPerRow + group*wordsPerRow + half
}

// groups returns the delay axes persisted for mode under timing mode tm, in word order.
// HS400 stores the strobe axis first. Timing mode 5 only persists the strobe axis
// since HS400 command line tuning is not done in that mode.
func groups(tm sdly.TimingMode, mode sdly.SpeedMode) []sdly.Axis {
	if mode != sdly.HS400 || !tm.HasStrobe() {
		return []sdly.Axis{sdly.AxisSample}
	}
	if tm == sdly.Mode5 {
		return []sdly.Axis{sdly.AxisStrobe}
	}
	return []sdly.Axis{sdly.AxisStrobe, sdly.AxisSample}
}
