package boot

// overlay is the built-in boot program. It clears video memory, sets up
// the background palette and the LCD, leaves the registers in the state
// the DMG boot ROM leaves them in, and finally unmaps itself by writing
// A (0x01) to BDIS from 0x00FE so that execution falls through to 0x0100.
var overlay = [Size]byte{
	0x31, 0xFE, 0xFF, // 0x00 LD SP, $FFFE
	0xAF,             // 0x03 XOR A
	0x21, 0xFF, 0x9F, // 0x04 LD HL, $9FFF
	0x32,       // 0x07 LD (HL-), A
	0xCB, 0x7C, // 0x08 BIT 7, H
	0x20, 0xFB, // 0x0A JR NZ, $07
	0x3E, 0xFC, // 0x0C LD A, $FC
	0xE0, 0x47, // 0x0E LDH (BGP), A
	0x3E, 0x91, // 0x10 LD A, $91
	0xE0, 0x40, // 0x12 LDH (LCDC), A
	0x01, 0xB0, 0x01, // 0x14 LD BC, $01B0
	0xC5,             // 0x17 PUSH BC
	0xF1,             // 0x18 POP AF
	0x01, 0x13, 0x00, // 0x19 LD BC, $0013
	0x11, 0xD8, 0x00, // 0x1C LD DE, $00D8
	0x21, 0x4D, 0x01, // 0x1F LD HL, $014D
	// 0x22 - 0xFD NOP
	0xFE: 0xE0, 0xFF: 0x50, // 0xFE LDH (BDIS), A
}
