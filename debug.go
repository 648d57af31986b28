package mmctune

import (
	"context"
	"encoding/hex"
	"log/slog"
)

// levelTrace is used for per-delay probe results and bitmap rows.
const levelTrace slog.Level = slog.LevelDebug - 1

func (t *Tuner) logerr(msg string, attrs ...slog.Attr) {
	t.logattrs(slog.LevelError, msg, attrs...)
}

func (t *Tuner) warn(msg string, attrs ...slog.Attr) {
	t.logattrs(slog.LevelWarn, msg, attrs...)
}

func (t *Tuner) info(msg string, attrs ...slog.Attr) {
	t.logattrs(slog.LevelInfo, msg, attrs...)
}

func (t *Tuner) debug(msg string, attrs ...slog.Attr) {
	t.logattrs(slog.LevelDebug, msg, attrs...)
}

func (t *Tuner) trace(msg string, attrs ...slog.Attr) {
	if !t._traceenabled {
		return
	}
	t.logattrs(levelTrace, msg, attrs...)
}

func (t *Tuner) logattrs(level slog.Level, msg string, attrs ...slog.Attr) {
	if t.logger == nil {
		return
	}
	t.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// traceRow dumps a bitmap row hex encoded. 0xff cells mark skipped frequencies.
func (t *Tuner) traceRow(msg string, freq uint32, row []uint8) {
	if !t._traceenabled {
		return
	}
	t.trace(msg, slog.Uint64("freq", uint64(freq)), slog.String("row", hex.EncodeToString(row)))
}

func errAttr(err error) slog.Attr { return slog.String("err", err.Error()) }
