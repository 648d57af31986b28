// Package pattern generates the reference data transmitted to and read back
// from a card while tuning its data line sample delays.
//
// A pattern is built out of 512 byte blocks:
//
//  1. The HS200/UHS tuning block replicated over a whole block.
//  2. For each of the 8 data bit positions, single-line toggling patterns built
//     from 4 seed pairs rotated by the bit position.
//  3. Random padding up to the next block boundary, if needed.
//  4. A mixed block of random data, a Wi-Fi packet capture and alternating 0x00/0xff bytes.
package pattern

import (
	"errors"

	"golang.org/x/exp/constraints"
)

// BlockSize is the size of a card data block.
const BlockSize = 512

const (
	// Bit positions exercised by the single-line patterns.
	dataBits = 8
	// Seed pairs used per data bit position.
	patternsPerLine = 4
	// Bytes generated per seed pair.
	lineSize4 = 64
	lineSize8 = 128
)

var errBusWidth = errors.New("pattern: unsupported bus width")

// Generate returns the reference pattern for a 4 or 8 bit wide bus.
// The returned buffer's length is always a multiple of BlockSize.
func Generate(busWidth int) ([]byte, error) {
	switch busWidth {
	case 4:
		return generate(busWidth, lineSize4), nil
	case 8:
		return generate(busWidth, lineSize8), nil
	}
	return nil, errBusWidth
}

// Blocks returns the amount of whole blocks in pattern p.
func Blocks(p []byte) int { return len(p) / BlockSize }

// Size returns the length in bytes of the pattern Generate returns for busWidth, or 0
// if the bus width is not supported.
func Size(busWidth int) int {
	switch busWidth {
	case 4:
		return size(lineSize4)
	case 8:
		return size(lineSize8)
	}
	return 0
}

func size(lineSize int) int {
	lines := alignup(dataBits*patternsPerLine*lineSize, BlockSize)
	return BlockSize + lines + BlockSize
}

func generate(busWidth, lineSize int) []byte {
	buf := make([]byte, size(lineSize))
	// HS200 tuning block.
	block := hs200Block8[:]
	if busWidth == 4 {
		block = hs200Block4[:]
	}
	fill(buf[:BlockSize], block)

	// Single data line patterns.
	off := BlockSize
	for bit := 0; bit < dataBits; bit++ {
		for p := 0; p < patternsPerLine; p++ {
			d1, d2 := seedPair(busWidth, p, bit)
			for i := 0; i < lineSize; i += 2 {
				buf[off+i] = d1
				buf[off+i+1] = d2
			}
			off += lineSize
		}
	}
	if rem := off % BlockSize; rem != 0 {
		fill(buf[off:off+BlockSize-rem], randData[:])
		off += BlockSize - rem
	}

	// Random, wifi, 0x00/0xff and 0xff/0x00 quarters.
	last := buf[off : off+BlockSize]
	const quarter = BlockSize / 4
	copy(last[:quarter], randData[:])
	fill(last[quarter:2*quarter], wifiData[:])
	fill(last[2*quarter:3*quarter], []byte{0x00, 0xff})
	fill(last[3*quarter:], []byte{0xff, 0x00})
	return buf
}

// seedPair returns the two bytes toggled on data bit position bit for seed pair p.
func seedPair(busWidth, p, bit int) (d1, d2 byte) {
	s := seedPairs[p]
	if busWidth == 4 {
		return nibbleDup(rotl4(s[0], bit)), nibbleDup(rotl4(s[1], bit))
	}
	return rotl8(s[0], bit), rotl8(s[1], bit)
}

func rotl8(v byte, n int) byte {
	n %= 8
	return v<<n | v>>(8-n)
}

func rotl4(v byte, n int) byte {
	v &= 0xf
	n %= 4
	return (v<<n | v>>(4-n)) & 0xf
}

func nibbleDup(v byte) byte { return v<<4 | v&0xf }

// fill repeats src over dst.
func fill(dst, src []byte) {
	for i := 0; i < len(dst); i += len(src) {
		copy(dst[i:], src)
	}
}

// alignup rounds `val` up to nearest multiple of `align`.
func alignup[T constraints.Integer](val, align T) T {
	return (val + align - 1) / align * align
}
