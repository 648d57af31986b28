package pattern

import (
	"bytes"
	"testing"
)

func TestGenerate(t *testing.T) {
	for _, test := range []struct {
		width  int
		blocks int
	}{
		{width: 4, blocks: 6},
		{width: 8, blocks: 10},
	} {
		p, err := Generate(test.width)
		if err != nil {
			t.Fatal(err)
		}
		if len(p)%BlockSize != 0 {
			t.Errorf("width %d: length %d not multiple of block size", test.width, len(p))
		}
		if Blocks(p) != test.blocks {
			t.Errorf("width %d: got %d blocks, want %d", test.width, Blocks(p), test.blocks)
		}
		if Size(test.width) != len(p) {
			t.Errorf("width %d: Size()=%d, len=%d", test.width, Size(test.width), len(p))
		}
		again, _ := Generate(test.width)
		if !bytes.Equal(p, again) {
			t.Errorf("width %d: pattern generation not deterministic", test.width)
		}
	}
	if _, err := Generate(1); err == nil {
		t.Error("expected error for 1 bit bus")
	}
}

func TestGenerateLayout8(t *testing.T) {
	p, _ := Generate(8)
	for i := 0; i < BlockSize; i++ {
		if p[i] != hs200Block8[i%len(hs200Block8)] {
			t.Fatalf("hs200 block mismatch at %d", i)
		}
	}
	// Data bit 0, seed pair 0 is not rotated.
	lines := p[BlockSize:]
	if lines[0] != 0xfe || lines[1] != 0x01 || lines[lineSize8-1] != 0x01 {
		t.Errorf("bit 0 pattern 0: got % x", lines[:4])
	}
	// Data bit 1, seed pair 0 is rotated left by one.
	bit1 := lines[patternsPerLine*lineSize8:]
	if bit1[0] != 0xfd || bit1[1] != 0x02 {
		t.Errorf("bit 1 pattern 0: got % x", bit1[:4])
	}
	last := p[len(p)-BlockSize:]
	if !bytes.Equal(last[:128], randData[:]) {
		t.Error("last block random quarter mismatch")
	}
	if !bytes.Equal(last[128:192], wifiData[:]) || !bytes.Equal(last[192:256], wifiData[:]) {
		t.Error("last block wifi quarter mismatch")
	}
	if last[256] != 0x00 || last[257] != 0xff || last[383] != 0xff {
		t.Errorf("last block third quarter: % x", last[256:260])
	}
	if last[384] != 0xff || last[385] != 0x00 || last[511] != 0x00 {
		t.Errorf("last block fourth quarter: % x", last[384:388])
	}
}

func TestGenerateLayout4(t *testing.T) {
	p, _ := Generate(4)
	lines := p[BlockSize:]
	// Seed 0xfe, low nibble 0xe duplicated.
	if lines[0] != 0xee || lines[1] != 0x11 {
		t.Errorf("bit 0 pattern 0: got % x", lines[:2])
	}
	// Bit 4 wraps around the nibble back to the unrotated seed.
	bit4 := lines[4*patternsPerLine*lineSize4:]
	if bit4[0] != 0xee || bit4[1] != 0x11 {
		t.Errorf("bit 4 pattern 0: got % x", bit4[:2])
	}
	bit1 := lines[patternsPerLine*lineSize4:]
	if bit1[0] != 0xdd || bit1[1] != 0x22 {
		t.Errorf("bit 1 pattern 0: got % x", bit1[:2])
	}
}

func TestGeneratePadding(t *testing.T) {
	const lineSize = 40 // 8*4*40 = 1280 bytes, 256 bytes short of a block boundary.
	p := generate(8, lineSize)
	if len(p)%BlockSize != 0 {
		t.Fatalf("length %d not multiple of block size", len(p))
	}
	if Blocks(p) != 1+3+1 {
		t.Fatalf("got %d blocks", Blocks(p))
	}
	pad := p[BlockSize+dataBits*patternsPerLine*lineSize : 4*BlockSize]
	if len(pad) != 256 {
		t.Fatalf("padding length %d", len(pad))
	}
	if !bytes.Equal(pad[:128], randData[:]) || !bytes.Equal(pad[128:], randData[:]) {
		t.Error("padding is not random data")
	}
}
