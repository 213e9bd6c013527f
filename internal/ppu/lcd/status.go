package lcd

import (
	"github.com/thelolagemann/gbcore/pkg/bits"
)

// Status is the decoded LCD status register. Its value is stored at
// 0xFF41 as follows:
//
//	Bit 6 - LYC=LY Coincidence Interrupt (1=Enable) (Read/Write)
//	Bit 5 - Mode 2 OAM Interrupt         (1=Enable) (Read/Write)
//	Bit 4 - Mode 1 V-Blank Interrupt     (1=Enable) (Read/Write)
//	Bit 3 - Mode 0 H-Blank Interrupt     (1=Enable) (Read/Write)
//	Bit 2 - Coincidence Flag  (0:LYC<>LY, 1:LYC=LY) (Read Only)
//	Bit 1-0 - Mode Flag       (Mode 0-3) (Read Only)
type Status struct {
	CoincidenceInterrupt bool
	OAMInterrupt         bool
	VBlankInterrupt      bool
	HBlankInterrupt      bool
	Coincidence          bool
	Mode                 Mode
}

// NewStatus decodes the value of the status register.
func NewStatus(value uint8) Status {
	return Status{
		CoincidenceInterrupt: bits.Test(value, 6),
		OAMInterrupt:         bits.Test(value, 5),
		VBlankInterrupt:      bits.Test(value, 4),
		HBlankInterrupt:      bits.Test(value, 3),
		Coincidence:          bits.Test(value, 2),
		Mode:                 value & 0x03,
	}
}

// InterruptEnabled reports whether entering mode m raises a STAT interrupt.
func (s Status) InterruptEnabled(m Mode) bool {
	switch m {
	case HBlank:
		return s.HBlankInterrupt
	case VBlank:
		return s.VBlankInterrupt
	case OAM:
		return s.OAMInterrupt
	}
	return false
}

// Value encodes the status register. Bit 7 always reads as set.
func (s Status) Value() uint8 {
	var value uint8 = 0x80
	if s.CoincidenceInterrupt {
		value = bits.Set(value, 6)
	}
	if s.OAMInterrupt {
		value = bits.Set(value, 5)
	}
	if s.VBlankInterrupt {
		value = bits.Set(value, 4)
	}
	if s.HBlankInterrupt {
		value = bits.Set(value, 3)
	}
	if s.Coincidence {
		value = bits.Set(value, 2)
	}
	return value | s.Mode&0x03
}
