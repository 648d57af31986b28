package sdly

// Table holds the calibrated sample delays of a tuning session, indexed by
// speed mode and frequency index, along with the HS400 data strobe delays
// indexed by frequency only. The zero value holds delay 0 everywhere;
// use NewTable or Reset to start out with NoDelay entries.
type Table struct {
	sample [NumSpeedModes][MaxFreqPoints]uint8
	strobe [MaxFreqPoints]uint8
}

// NewTable returns a table filled with NoDelay.
func NewTable() Table {
	var t Table
	t.Reset()
	return t
}

// Reset fills every entry of both axes with NoDelay.
func (t *Table) Reset() {
	for m := range t.sample {
		for i := range t.sample[m] {
			t.sample[m][i] = NoDelay
		}
	}
	for i := range t.strobe {
		t.strobe[i] = NoDelay
	}
}

// Sample returns the sample delay for mode at frequency index idx.
// Out of range lookups return NoDelay.
func (t *Table) Sample(mode SpeedMode, idx int) uint8 {
	if !mode.IsValid() || !validFreqIndex(idx) {
		return NoDelay
	}
	return t.sample[mode][idx]
}

// Strobe returns the HS400 data strobe delay at frequency index idx.
// Out of range lookups return NoDelay.
func (t *Table) Strobe(idx int) uint8 {
	if !validFreqIndex(idx) {
		return NoDelay
	}
	return t.strobe[idx]
}

func (t *Table) SetSample(mode SpeedMode, idx int, delay uint8) error {
	if !mode.IsValid() || !validFreqIndex(idx) {
		return ErrIndex
	}
	t.sample[mode][idx] = delay
	return nil
}

func (t *Table) SetStrobe(idx int, delay uint8) error {
	if !validFreqIndex(idx) {
		return ErrIndex
	}
	t.strobe[idx] = delay
	return nil
}

// Delay returns the delay on axis a. mode is ignored for AxisStrobe.
func (t *Table) Delay(a Axis, mode SpeedMode, idx int) uint8 {
	if a == AxisStrobe {
		return t.Strobe(idx)
	}
	return t.Sample(mode, idx)
}

// SetDelay sets the delay on axis a. mode is ignored for AxisStrobe.
func (t *Table) SetDelay(a Axis, mode SpeedMode, idx int, delay uint8) error {
	if a == AxisStrobe {
		return t.SetStrobe(idx, delay)
	}
	return t.SetSample(mode, idx, delay)
}

// Row returns a copy of the sample delays for mode.
func (t *Table) Row(mode SpeedMode) (row [MaxFreqPoints]uint8) {
	if !mode.IsValid() {
		for i := range row {
			row[i] = NoDelay
		}
		return row
	}
	return t.sample[mode]
}

// StrobeRow returns a copy of the data strobe delays.
func (t *Table) StrobeRow() [MaxFreqPoints]uint8 { return t.strobe }

// ResetMode fills the sample delays of mode with NoDelay.
func (t *Table) ResetMode(mode SpeedMode) {
	if !mode.IsValid() {
		return
	}
	for i := range t.sample[mode] {
		t.sample[mode][i] = NoDelay
	}
}

// String formats the table one speed mode per line, followed by the strobe axis.
func (t *Table) String() string {
	buf := make([]byte, 0, (NumSpeedModes+1)*(16+3*MaxFreqPoints))
	for m := SpeedMode(0); m < NumSpeedModes; m++ {
		buf = append(buf, m.String()...)
		buf = appendRow(buf, t.sample[m][:])
	}
	buf = append(buf, AxisStrobe.String()...)
	buf = appendRow(buf, t.strobe[:])
	return string(buf)
}

func appendRow(buf []byte, row []uint8) []byte {
	const hextable = "0123456789abcdef"
	buf = append(buf, ':')
	for _, v := range row {
		buf = append(buf, ' ', hextable[v>>4], hextable[v&0xf])
	}
	return append(buf, '\n')
}

func validFreqIndex(idx int) bool { return idx >= 0 && idx < MaxFreqPoints }

