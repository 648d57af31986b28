package sdly

// MaxWindows is the maximum amount of passing windows tracked per bitmap row.
// Windows found after the limit is reached are ignored.
const MaxWindows = 15

// tm5Granularity is the delay-chain section length of timing mode 5.
// Windows never span across a section boundary.
const tm5Granularity = 16

// Window is a maximal run of passing cells in a bitmap row.
type Window struct {
	Start int
	End   int // inclusive.
}

// Width returns the amount of cells in the window, or 0 for a malformed window.
func (w Window) Width() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start + 1
}

// Selector picks the best delay out of a bitmap row.
// It returns NoDelay when no window is at least threshold cells wide.
type Selector func(row []uint8, threshold uint8) uint8

// Windows groups consecutive passing cells of row into windows. A window is
// terminated by a failing cell or the end of the row. If split is greater than zero
// a new window is started at every multiple of split even in the middle of a run.
// At most MaxWindows windows are appended to dst.
func Windows(dst []Window, row []uint8, split int) []Window {
	found := 0
	inWindow := false
	var w Window
	for i, cell := range row {
		if !inWindow {
			if cell == Pass {
				inWindow = true
				w = Window{Start: i, End: i}
			}
			continue
		}
		if cell == Fail {
			inWindow = false
			dst, found = appendWindow(dst, found, w)
			continue
		}
		// Skipped cells never start a window but do not end one either.
		if split > 0 && w.Start/split != i/split {
			w.End = i/split*split - 1
			dst, found = appendWindow(dst, found, w)
			w = Window{Start: i / split * split}
		}
		w.End = i
	}
	if inWindow {
		dst, _ = appendWindow(dst, found, w)
	}
	return dst
}

func appendWindow(dst []Window, found int, w Window) ([]Window, int) {
	if found >= MaxWindows {
		return dst, found
	}
	return append(dst, w), found + 1
}

// widest returns the widest window. The first window found wins ties.
func widest(windows []Window) (best Window, ok bool) {
	if len(windows) == 0 {
		return best, false
	}
	best = windows[0]
	for _, w := range windows[1:] {
		if w.Width() > best.Width() {
			best = w
		}
	}
	return best, true
}

// BestDelay is the general window selector. It returns the center of the widest
// passing window, rounding towards the later half for even widths.
func BestDelay(row []uint8, threshold uint8) uint8 {
	var buf [MaxWindows]Window
	w, ok := widest(Windows(buf[:0], row, 0))
	width := w.Width()
	if !ok || width == 0 || width < int(threshold) {
		return NoDelay
	}
	return uint8(w.Start + width>>1)
}

// BestDelayTM5 is the timing mode 5 window selector. Windows are split at
// 16-cell delay-chain sections and the center rounds towards the earlier half.
func BestDelayTM5(row []uint8, threshold uint8) uint8 {
	var buf [MaxWindows]Window
	w, ok := widest(Windows(buf[:0], row, tm5Granularity))
	width := w.Width()
	if !ok || width == 0 || width < int(threshold) {
		return NoDelay
	}
	return uint8(w.Start + (width-1)>>1)
}

// FirstPassDelay is used by timing mode 2 outside of HS400 where only the two first
// sample points are meaningful. threshold is ignored.
func FirstPassDelay(row []uint8, threshold uint8) uint8 {
	switch {
	case len(row) > 0 && row[0] == Pass:
		return 0
	case len(row) > 1 && row[1] == Pass:
		return 1
	}
	return NoDelay
}
