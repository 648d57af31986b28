package mmctune

import "github.com/soypat/mmctune/sdly"

// Bus is the host controller and card command layer the tuner drives.
// Block transfers return the amount of whole blocks transferred.
type Bus interface {
	// SetClock programs the card clock and the sample delays in t.
	SetClock(t sdly.Timing) error
	// SwitchSpeedMode negotiates mode with the card over a busWidth wide data bus.
	SwitchSpeedMode(mode sdly.SpeedMode, busWidth int) error
	WriteBlocks(lba uint32, src []byte) (int, error)
	ReadBlocks(lba uint32, dst []byte) (int, error)
	// SendManualStop aborts an open multiple block transfer.
	SendManualStop() error
	// SendStatus issues a status request command to the card.
	SendStatus() error
}

// Region names a reserved area of the card.
type Region string

const (
	// RegionTuning holds the tuning pattern.
	RegionTuning Region = "mmc_tuning"
	// RegionParam holds the persisted calibration record.
	RegionParam Region = "boot_param"
)

// Regions resolves reserved areas of the card. Offsets and sizes are in blocks.
type Regions interface {
	RegionOffset(r Region) uint32
	RegionSize(r Region) uint32
}

// FixedRegions is a Regions with fixed offsets.
type FixedRegions struct {
	TuningLBA    uint32
	TuningBlocks uint32
	ParamLBA     uint32
	ParamBlocks  uint32
}

// DefaultRegions returns the reserved layout used by the boot flash map.
func DefaultRegions() FixedRegions {
	return FixedRegions{
		TuningLBA:    0x5c00,
		TuningBlocks: 16,
		ParamLBA:     0x5bff,
		ParamBlocks:  1,
	}
}

func (fr FixedRegions) RegionOffset(r Region) uint32 {
	switch r {
	case RegionTuning:
		return fr.TuningLBA
	case RegionParam:
		return fr.ParamLBA
	}
	return 0
}

func (fr FixedRegions) RegionSize(r Region) uint32 {
	switch r {
	case RegionTuning:
		return fr.TuningBlocks
	case RegionParam:
		return fr.ParamBlocks
	}
	return 0
}
