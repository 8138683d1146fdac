package cpu

// Halt disables interrupts and stops instruction execution. Halt never
// returns.
func Halt()

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// LoadGDT loads the GDTR register from the descriptor at descriptorAddr.
func LoadGDT(descriptorAddr uintptr)

// ReloadSegments performs a far return into codeSelector and then loads
// dataSelector into the data and stack segment registers.
func ReloadSegments(codeSelector, dataSelector uint16)
