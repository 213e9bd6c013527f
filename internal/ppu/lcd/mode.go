package lcd

// Mode represents a mode of the LCD, as reported in bits 0-1 of the
// status register.
type Mode = uint8

const (
	// HBlank is the horizontal blanking mode. The CPU can access both the display RAM and OAM.
	HBlank Mode = iota
	// VBlank is the vertical blanking mode. The CPU can access both the display RAM and OAM.
	VBlank
	// OAM is the OAM mode. The CPU can access OAM but not the display RAM.
	OAM
	// VRAM is the VRAM mode. The CPU can access the display RAM but not OAM.
	VRAM
)

// Durations of each mode in machine cycles. A visible line always
// takes OAMCycles + VRAMCycles + HBlankCycles = LineCycles.
const (
	OAMCycles    = 20
	VRAMCycles   = 43
	HBlankCycles = 51
	LineCycles   = OAMCycles + VRAMCycles + HBlankCycles

	// VisibleLines is the number of lines drawn to the screen.
	VisibleLines = 144
	// VBlankLines is the number of line-equivalents spent in VBlank.
	VBlankLines = 10
	// FrameCycles is the number of machine cycles in a frame.
	FrameCycles = LineCycles * (VisibleLines + VBlankLines)
)

// Cycles returns the duration of a mode in machine cycles. In VBlank
// the duration is that of a single line.
func Cycles(m Mode) uint16 {
	switch m {
	case OAM:
		return OAMCycles
	case VRAM:
		return VRAMCycles
	case HBlank:
		return HBlankCycles
	default:
		return LineCycles
	}
}
