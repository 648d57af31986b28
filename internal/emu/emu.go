// Package emu emulates an MMC host controller and card pair whose sampling
// behaviour is described by delay eyes, for exercising the tuner without hardware.
package emu

import (
	"errors"
	"fmt"
	"io"

	"github.com/soypat/mmctune/sdly"
)

const blockSize = 512

// Unsampled buses work up to this frequency.
const noDelayMaxFreq = 52_000_000

var (
	errCRC       = errors.New("emu: data crc error")
	errCmdCRC    = errors.New("emu: response crc error")
	errInjected  = errors.New("emu: injected fault")
	errAlignment = errors.New("emu: transfer not block aligned")
	errRange     = errors.New("emu: block out of range")
	errMode      = errors.New("emu: speed mode rejected")
	errWidth     = errors.New("emu: unsupported bus width")
)

// Disk is the card's backing storage.
type Disk interface {
	io.ReaderAt
	io.WriterAt
}

// Eye is the range of delays a signal is sampled correctly at.
type Eye struct {
	Center int
	// Span is the distance from Center still sampled correctly. Negative spans never pass.
	Span int
	// MaxFreq is the highest working frequency in hertz. 0 means unlimited.
	MaxFreq uint32
}

// Pass reports whether a signal is sampled correctly at delay and freq.
// NoDelay works at legacy frequencies only.
func (e Eye) Pass(delay uint8, freq uint32) bool {
	if delay == sdly.NoDelay {
		return freq <= noDelayMaxFreq
	}
	if e.Span < 0 || (e.MaxFreq != 0 && freq > e.MaxFreq) {
		return false
	}
	d := int(delay) - e.Center
	return d >= -e.Span && d <= e.Span
}

type Config struct {
	Disk Disk
	// Blocks is the card capacity. 0 disables range checks.
	Blocks uint32
	// Data holds the sample delay eye of the data lines per speed mode.
	// Outside of HS400 the command line shares it.
	Data [sdly.NumSpeedModes]Eye
	// Strobe is the HS400 data strobe eye.
	Strobe Eye
	// Cmd is the HS400 command line eye.
	Cmd Eye
	// Reject lists speed modes the card refuses to switch to.
	Reject []sdly.SpeedMode
}

// DefaultConfig returns an 8 bit eMMC with healthy eyes for a 64 point delay chain.
func DefaultConfig(disk Disk) Config {
	return Config{
		Disk: disk,
		Data: [sdly.NumSpeedModes]Eye{
			sdly.Legacy:    {Center: 16, Span: 15, MaxFreq: 52_000_000},
			sdly.HighSpeed: {Center: 20, Span: 10, MaxFreq: 52_000_000},
			sdly.DDR52:     {Center: 24, Span: 8, MaxFreq: 52_000_000},
			sdly.HS200:     {Center: 30, Span: 12, MaxFreq: 200_000_000},
			sdly.HS400:     {Center: 30, Span: 6, MaxFreq: 150_000_000},
		},
		Strobe: Eye{Center: 16, Span: 8, MaxFreq: 150_000_000},
		Cmd:    Eye{Center: 28, Span: 9, MaxFreq: 200_000_000},
	}
}

// Card is an emulated host controller and card.
type Card struct {
	cfg    Config
	timing sdly.Timing
	mode   sdly.SpeedMode
	width  int
	// Bad reads alternate between errors and corrupt data.
	badToggle bool

	// Fault injection. Each counter fails that many of the next operations.
	FailWrites   int
	FailReads    int
	CorruptReads int

	// Statistics.
	Stops       int
	StatusPolls int
	Switches    []sdly.SpeedMode
	Clocks      int
}

func New(cfg Config) *Card {
	return &Card{
		cfg:    cfg,
		width:  1,
		timing: sdly.Timing{FreqIndex: -1, Freq: 400_000, Sample: sdly.NoDelay, Strobe: sdly.NoDelay},
	}
}

func (c *Card) SetClock(t sdly.Timing) error {
	if t.Freq == 0 {
		return errors.New("emu: zero clock")
	}
	c.timing = t
	c.Clocks++
	return nil
}

// Timing returns the last applied timing.
func (c *Card) Timing() sdly.Timing { return c.timing }

// Mode returns the last negotiated speed mode.
func (c *Card) Mode() sdly.SpeedMode { return c.mode }

// SwitchSpeedMode switches the card to mode. Sample delays are reset to NoDelay.
func (c *Card) SwitchSpeedMode(mode sdly.SpeedMode, busWidth int) error {
	if busWidth != 1 && busWidth != 4 && busWidth != 8 {
		return errWidth
	}
	for _, m := range c.cfg.Reject {
		if m == mode {
			return fmt.Errorf("%w: %s", errMode, mode)
		}
	}
	c.mode = mode
	c.width = busWidth
	c.timing.Mode = mode
	c.timing.Sample = sdly.NoDelay
	c.timing.Strobe = sdly.NoDelay
	c.Switches = append(c.Switches, mode)
	return nil
}

func (c *Card) dataOK() bool {
	t := c.timing
	if !t.Mode.IsValid() {
		return false
	}
	if t.Mode == sdly.HS400 && t.Strobe != sdly.NoDelay {
		return c.cfg.Strobe.Pass(t.Strobe, t.Freq)
	}
	return c.cfg.Data[t.Mode].Pass(t.Sample, t.Freq)
}

func (c *Card) cmdOK() bool {
	t := c.timing
	if t.Mode == sdly.HS400 {
		return c.cfg.Cmd.Pass(t.Sample, t.Freq)
	}
	return c.dataOK()
}

func (c *Card) checkTransfer(lba uint32, n int) (blocks int, err error) {
	if n%blockSize != 0 {
		return 0, errAlignment
	}
	blocks = n / blockSize
	if c.cfg.Blocks != 0 && uint64(lba)+uint64(blocks) > uint64(c.cfg.Blocks) {
		return 0, errRange
	}
	return blocks, nil
}

func (c *Card) WriteBlocks(lba uint32, src []byte) (int, error) {
	blocks, err := c.checkTransfer(lba, len(src))
	if err != nil {
		return 0, err
	}
	if c.FailWrites > 0 {
		c.FailWrites--
		return 0, errInjected
	}
	if !c.dataOK() {
		return 0, errCRC
	}
	_, err = c.cfg.Disk.WriteAt(src, int64(lba)*blockSize)
	if err != nil {
		return 0, err
	}
	return blocks, nil
}

func (c *Card) ReadBlocks(lba uint32, dst []byte) (int, error) {
	blocks, err := c.checkTransfer(lba, len(dst))
	if err != nil {
		return 0, err
	}
	if c.FailReads > 0 {
		c.FailReads--
		return 0, errInjected
	}
	corrupt := false
	if !c.dataOK() {
		c.badToggle = !c.badToggle
		if c.badToggle {
			return 0, errCRC
		}
		corrupt = true
	}
	n, err := c.cfg.Disk.ReadAt(dst, int64(lba)*blockSize)
	if err == io.EOF {
		// Past the end of a file backed disk.
		clear(dst[n:])
	} else if err != nil {
		return 0, err
	}
	if c.CorruptReads > 0 {
		c.CorruptReads--
		corrupt = true
	}
	if corrupt && len(dst) > 0 {
		dst[0] ^= 0x10
	}
	return blocks, nil
}

func (c *Card) SendManualStop() error {
	c.Stops++
	return nil
}

func (c *Card) SendStatus() error {
	c.StatusPolls++
	if !c.cmdOK() {
		return errCmdCRC
	}
	return nil
}
