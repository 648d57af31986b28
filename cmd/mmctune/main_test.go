package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("mmctune %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestTuneAndShow(t *testing.T) {
	img := filepath.Join(t.TempDir(), "card.img")
	out := run(t, "tune", "-i", img)
	if !strings.HasPrefix(out, "mode=HS400 freq=100000000") {
		t.Errorf("unexpected tune report:\n%s", out)
	}
	out = run(t, "show", "-i", img)
	if !strings.Contains(out, "card=MMC tuned=true") {
		t.Errorf("unexpected record:\n%s", out)
	}
	// Stored calibration is reused.
	out = run(t, "tune", "-i", img)
	if !strings.HasPrefix(out, "mode=HS400 freq=100000000") {
		t.Errorf("unexpected report on reuse:\n%s", out)
	}
}

func TestConfigTemplate(t *testing.T) {
	dir := t.TempDir()
	out := run(t, "config", "--format", "yaml")
	if !strings.Contains(out, "timing_mode: 4") {
		t.Fatalf("unexpected yaml template:\n%s", out)
	}
	out = run(t, "pattern", "-w", "4", "-o", filepath.Join(dir, "pat.bin"))
	if out != "" {
		t.Errorf("unexpected output: %q", out)
	}
}
