package param

import "encoding/binary"

// InfoLen is the encoded length of Info.
const InfoLen = 3*4 + bootConfigLen + NumTuneWords*4

const bootConfigLen = 8 // 6 fields and 2 bytes of padding.

type CardType uint32

const (
	CardUnknown CardType = iota
	CardSD
	CardMMC
)

func (c CardType) String() string {
	switch c {
	case CardSD:
		return "SD"
	case CardMMC:
		return "MMC"
	}
	return "unknown"
}

// ExtPara0 flags.
const (
	// ExtPara0ID marks ExtPara0 as written by a tuning session.
	ExtPara0ID uint32 = 0x5a000000
	// ExtPara0TuningOK is set when the bus tuning sequence completed.
	ExtPara0TuningOK uint32 = 1 << 0
)

// ExtPara1 flags.
const (
	ExtPara1IO1V8Bias uint32 = 1 << 0
	// ExtPara1Boot0HS is set when the boot0 stage supports HS200/HS400.
	ExtPara1Boot0HS uint32 = 1 << 1
)

// BootConfig is the board snapshot handed to early boot stages.
type BootConfig struct {
	Boot0Para         uint8
	OutDelay50M       uint8
	SampleDelay50M    uint8
	OutDelay50MDDR    uint8
	SampleDelay50MDDR uint8
	// HSMaxFreq is the highest frequency in MHz boot0 may use.
	HSMaxFreq uint8
}

// Info is the record payload.
type Info struct {
	CardType  CardType
	ExtPara0  uint32
	ExtPara1  uint32
	Boot      BootConfig
	TuneWords [NumTuneWords]uint32
}

// TuningOK reports whether the record was written after a completed bus tuning sequence.
func (info Info) TuningOK() bool {
	return info.ExtPara0&0xff000000 == ExtPara0ID && info.ExtPara0&ExtPara0TuningOK != 0
}

// Put puts all InfoLen bytes of info in dst. Panics if dst is shorter than InfoLen.
func (info *Info) Put(dst []byte) {
	_ = dst[InfoLen-1]
	binary.LittleEndian.PutUint32(dst[0:], uint32(info.CardType))
	binary.LittleEndian.PutUint32(dst[4:], info.ExtPara0)
	binary.LittleEndian.PutUint32(dst[8:], info.ExtPara1)
	b := info.Boot
	copy(dst[12:12+bootConfigLen], []byte{
		b.Boot0Para, b.OutDelay50M, b.SampleDelay50M,
		b.OutDelay50MDDR, b.SampleDelay50MDDR, b.HSMaxFreq, 0, 0,
	})
	for i, w := range info.TuneWords {
		binary.LittleEndian.PutUint32(dst[12+bootConfigLen+4*i:], w)
	}
}

// DecodeInfo decodes the first InfoLen bytes of b. Panics if b is shorter than InfoLen.
func DecodeInfo(b []byte) (info Info) {
	_ = b[InfoLen-1]
	info.CardType = CardType(binary.LittleEndian.Uint32(b[0:]))
	info.ExtPara0 = binary.LittleEndian.Uint32(b[4:])
	info.ExtPara1 = binary.LittleEndian.Uint32(b[8:])
	info.Boot = BootConfig{
		Boot0Para:         b[12],
		OutDelay50M:       b[13],
		SampleDelay50M:    b[14],
		OutDelay50MDDR:    b[15],
		SampleDelay50MDDR: b[16],
		HSMaxFreq:         b[17],
	}
	for i := range info.TuneWords {
		info.TuneWords[i] = binary.LittleEndian.Uint32(b[12+bootConfigLen+4*i:])
	}
	return info
}
