// Package param defines the binary layout of the calibration record persisted
// to the card's reserved parameter region between boots.
//
// A record is a fixed 25 byte little endian header followed by the Info payload:
//
//	offset  size  field
//	0       9     name, "sdmmc_arg"
//	9       4     version
//	13      4     magic
//	17      4     length of header plus payload
//	21      4     checksum
//	25      68    Info
//
// The checksum is the 32 bit wrapping sum of the first length bytes of the record
// with the checksum field taken as zero.
package param

import (
	"encoding/binary"
	"errors"
)

const (
	Name    = "sdmmc_arg"
	NameLen = 9
	// Version of the record layout.
	Version uint32 = 0x00010000
	// Magic identifies a record written by this package: "sdmp" in little endian.
	Magic uint32 = 0x706d6473

	HeaderLen = NameLen + 4*4
	// RecordLen is the encoded length of a complete record.
	RecordLen = HeaderLen + InfoLen

	offVersion  = NameLen
	offMagic    = offVersion + 4
	offLength   = offMagic + 4
	offChecksum = offLength + 4
)

var (
	ErrBadMagic    = errors.New("param: bad magic")
	ErrChecksum    = errors.New("param: checksum mismatch")
	ErrShortRegion = errors.New("param: region too short for record")
)

type Header struct {
	Name     [NameLen]byte
	Version  uint32
	Magic    uint32
	Length   uint32
	Checksum uint32
}

// DecodeHeader decodes the first HeaderLen bytes of b. Panics if b is shorter than HeaderLen.
func DecodeHeader(b []byte) (hdr Header) {
	_ = b[HeaderLen-1]
	copy(hdr.Name[:], b)
	hdr.Version = binary.LittleEndian.Uint32(b[offVersion:])
	hdr.Magic = binary.LittleEndian.Uint32(b[offMagic:])
	hdr.Length = binary.LittleEndian.Uint32(b[offLength:])
	hdr.Checksum = binary.LittleEndian.Uint32(b[offChecksum:])
	return hdr
}

// Put puts all HeaderLen bytes of the header in dst. Panics if dst is shorter than HeaderLen.
func (h *Header) Put(dst []byte) {
	_ = dst[HeaderLen-1]
	copy(dst, h.Name[:])
	binary.LittleEndian.PutUint32(dst[offVersion:], h.Version)
	binary.LittleEndian.PutUint32(dst[offMagic:], h.Magic)
	binary.LittleEndian.PutUint32(dst[offLength:], h.Length)
	binary.LittleEndian.PutUint32(dst[offChecksum:], h.Checksum)
}

// Record is the persisted calibration record.
type Record struct {
	Header Header
	Info   Info
}

// NewRecord returns a record carrying info with its header filled in.
// The checksum is computed by Put.
func NewRecord(info Info) Record {
	r := Record{Info: info}
	copy(r.Header.Name[:], Name)
	r.Header.Version = Version
	r.Header.Magic = Magic
	r.Header.Length = RecordLen
	return r
}

// Put encodes the record into dst and sets the header checksum, which is also
// stored in r. Bytes of dst past the record are zeroed so the whole region
// is rewritten. Returns ErrShortRegion if dst cannot hold the record.
func (r *Record) Put(dst []byte) error {
	if len(dst) < RecordLen || r.Header.Length > uint32(len(dst)) || r.Header.Length < RecordLen {
		return ErrShortRegion
	}
	clear(dst)
	r.Header.Checksum = 0
	r.Header.Put(dst)
	r.Info.Put(dst[HeaderLen:])
	r.Header.Checksum = Checksum(dst[:r.Header.Length])
	binary.LittleEndian.PutUint32(dst[offChecksum:], r.Header.Checksum)
	return nil
}

// Decode verifies and decodes the record at the start of b.
func Decode(b []byte) (r Record, err error) {
	if len(b) < HeaderLen {
		return r, ErrShortRegion
	}
	r.Header = DecodeHeader(b)
	if r.Header.Magic != Magic {
		return r, ErrBadMagic
	}
	if r.Header.Length < RecordLen || r.Header.Length > uint32(len(b)) {
		return r, ErrShortRegion
	}
	if Checksum(b[:r.Header.Length]) != r.Header.Checksum {
		return r, ErrChecksum
	}
	r.Info = DecodeInfo(b[HeaderLen:])
	return r, nil
}

// Checksum returns the wrapping byte sum of record skipping the checksum field.
func Checksum(record []byte) (sum uint32) {
	for i, b := range record {
		if i >= offChecksum && i < offChecksum+4 {
			continue
		}
		sum += uint32(b)
	}
	return sum
}
