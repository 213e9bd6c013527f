package types

// Peripheral is a peripheral device that is clocked by the CPU, such as
// the graphics unit, the timer or the serial port. After every
// Fetch-Decode-Execute cycle the orchestrator calls Step with the number
// of machine cycles the CPU spent, so that each device advances by
// exactly the same amount of time.
type Peripheral interface {
	// Step advances the peripheral device by the given number of cycles.
	Step(cycles uint8)
}
