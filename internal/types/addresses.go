package types

// Memory map boundaries of the flat 64KB address space.
const (
	// BootLimit is the first address not covered by the boot overlay.
	BootLimit uint16 = 0x0100
	// ROMLimit is the first address past the region a game image may occupy.
	ROMLimit = 0x8000
	// VRAMStart is the first address of video memory.
	VRAMStart uint16 = 0x8000
	// VRAMEnd is the first address past video memory.
	VRAMEnd uint16 = 0xA000
	// TileDataEnd is the first address past the tile data in video memory,
	// the remainder of VRAM holding the two 32x32 tile maps.
	TileDataEnd uint16 = 0x9800
	// OAMStart is the first address of the sprite attribute table.
	OAMStart uint16 = 0xFE00
	// OAMSize is the size of the sprite attribute table, 40 sprites of 4 bytes.
	OAMSize = 0xA0
)

// HardwareAddress represents the address of a hardware
// register of the Game Boy. The hardware IO are mapped
// to memory addresses 0xFF00 - 0xFF7F & 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 is the address of the P1 hardware register. The P1
	// hardware register is used to select the input keys to
	// be read by the CPU, and to read the state of the joypad.
	P1 HardwareAddress = 0xFF00
	// SB is the address of the SB hardware register. The SB
	// hardware register is used to transfer data between the
	// CPU and the serial port.
	SB HardwareAddress = 0xFF01
	// SC is the address of the SC hardware register. The SC
	// hardware register is used to control the serial port.
	SC HardwareAddress = 0xFF02
	// DIV is the address of the DIV hardware register. The DIV
	// hardware register is incremented at a rate of 16384Hz. Internally
	// it is a 16-bit register, but only the lower 8 bits may be read.
	DIV HardwareAddress = 0xFF04
	// TIMA is the address of the TIMA hardware register. The TIMA
	// hardware register is incremented at a rate specified by the TAC
	// hardware register. When TIMA overflows, it is reset to the value
	// specified by the TMA hardware register, and a timer interrupt is
	// requested.
	TIMA HardwareAddress = 0xFF05
	// TMA is the address of the TMA hardware register. The TMA
	// hardware register is loaded into TIMA when it overflows.
	TMA HardwareAddress = 0xFF06
	// TAC is the address of the TAC hardware register. The TAC
	// hardware register is used to control the timer.
	TAC HardwareAddress = 0xFF07
	// IF is the address of the IF hardware register. The IF
	// hardware register is used to request interrupts. Writing a 1
	// to a bit in IF requests an interrupt, and writing a 0 clears
	// the request.
	//
	//  Bit 0: V-Blank Interrupt Request (INT 40h)  (1=Request)
	//  Bit 1: LCD STAT Interrupt Request (INT 48h) (1=Request)
	//  Bit 2: Timer Interrupt Request (INT 50h)    (1=Request)
	//  Bit 3: Serial Interrupt Request (INT 58h)   (1=Request)
	//  Bit 4: Joypad Interrupt Request (INT 60h)   (1=Request)
	IF HardwareAddress = 0xFF0F
	// LCDC is the address of the LCDC hardware register. The LCDC
	// hardware register is used to control the LCD.
	//
	// The register is set as follows:
	//
	//  Bit 7: LCD Enable             (0=Off, 1=On)
	//  Bit 6: Window Tile Map Display Select (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 5: Window Display Enable          (0=Off, 1=On)
	//  Bit 4: BG & Window Tile Data Select   (0=8800-97FF, 1=8000-8FFF)
	//  Bit 3: BG Tile Map Display Select     (0=9800-9BFF, 1=9C00-9FFF)
	//  Bit 2: OBJ (Sprite) Size              (0=8x8, 1=8x16)
	//  Bit 1: OBJ (Sprite) Display Enable    (0=Off, 1=On)
	//  Bit 0: BG Display (for CGB see below) (0=Off, 1=On)
	LCDC HardwareAddress = 0xFF40
	// STAT is the address of the STAT hardware register. The STAT
	// hardware register contains the status of the LCD, and is used
	// to report the mode the LCD is in, and to request LCD interrupts.
	//
	//  The register is set as follows:
	//
	//  Bit 6: LYC=LY Coincidence Interrupt (1=Enable) (Read/Write)
	//  Bit 5: mode 2 OAM Interrupt         (1=Enable) (Read/Write)
	//  Bit 4: mode 1 V-Blank Interrupt     (1=Enable) (Read/Write)
	//  Bit 3: mode 0 H-Blank Interrupt     (1=Enable) (Read/Write)
	//  Bit 2: Coincidence Flag  (0:LYC<>LY, 1:LYC=LY) (Read Only)
	//  Bit 1-0: mode Flag       (mode 0-3, see below) (Read Only)
	//           0: During H-Blank
	//           1: During V-Blank
	//           2: During Searching OAM-RAM
	//           3: During Transfering Data to LCD Driver
	STAT HardwareAddress = 0xFF41
	// SCY is the address of the SCY hardware register. The SCY
	// hardware register is used to control the vertical scroll
	// position of the background.
	SCY HardwareAddress = 0xFF42
	// SCX is the address of the SCX hardware register. The SCX
	// hardware register is used to control the horizontal scroll
	// position of the background.
	SCX HardwareAddress = 0xFF43
	// LY is the address of the LY hardware register. The LY
	// hardware register is the current scanline being rendered.
	// The range of values for LY is 0-153.
	LY HardwareAddress = 0xFF44
	// LYC is the address of the LYC hardware register. This register
	// is compared to LY. When they are the same, the coincidence flag
	// in the STAT hardware register is set, and a STAT interrupt is
	// requested if the coincidence interrupt flag is set.
	LYC HardwareAddress = 0xFF45
	// DMA is the address of the DMA hardware register. Writing a value
	// to DMA transfers 160 bytes of data from value<<8 to OAM.
	DMA HardwareAddress = 0xFF46
	// BGP is the address of the BGP hardware register. The BGP
	// hardware register is used to set the shade of grey to use for
	// the background palette.
	//
	// The palette is set as follows:
	//  Bit 7-6 - Shade for Color Number 3
	//  Bit 5-4 - Shade for Color Number 2
	//  Bit 3-2 - Shade for Color Number 1
	//  Bit 1-0 - Shade for Color Number 0
	BGP HardwareAddress = 0xFF47
	// OBP0 is the address of the OBP0 hardware register. The OBP0
	// hardware register is used to set the shade of grey to use for
	// sprite palette 0.
	//
	// The palette is set as follows:
	//  Bit 7-6 - Shade for Color Number 3
	//  Bit 5-4 - Shade for Color Number 2
	//  Bit 3-2 - Shade for Color Number 1
	//  Bit 1-0 - Ignored (always transparent)
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is the address of the OBP1 hardware register. The OBP1
	// hardware register is used to set the shade of grey to use for
	// sprite palette 1.
	//
	// The palette is set as follows:
	//  Bit 7-6 - Shade for Color Number 3
	//  Bit 5-4 - Shade for Color Number 2
	//  Bit 3-2 - Shade for Color Number 1
	//  Bit 1-0 - Ignored (always transparent)
	OBP1 HardwareAddress = 0xFF49
	// WY is the address of the WY hardware register. The WY
	// hardware register is used to set the Y position of the window.
	// The window is visible when (if enabled) both WY and WX
	// are in the ranges WX=0..166, WY=0..143 respectively. Values
	// WX=7 and WY=0 locates the window at the top left of the LCD.
	WY HardwareAddress = 0xFF4A
	// WX is the address of the WX hardware register. The WX
	// hardware register is used to set the X position of the window.
	// The window is visible when (if enabled) both WY and WX
	// are in the ranges WX=0..166, WY=0..143 respectively. Values
	// WX=7 and WY=0 locates the window at the top left of the LCD.
	WX HardwareAddress = 0xFF4B
	// BDIS is the address of the BDIS hardware register. The BDIS
	// hardware register is used only to unmap the boot overlay. Any
	// non-zero write marks the system as ready.
	BDIS HardwareAddress = 0xFF50
	// IE is the address of the IE hardware register. The IE
	// hardware register is used to Enable interrupts. Writing a 1
	// to a bit in IE Enables the corresponding interrupt, and writing
	// a 0 disables the interrupt.
	IE HardwareAddress = 0xFFFF
)
