// Package cpu exposes the privileged processor operations needed during early
// boot: port I/O, descriptor table loading, segment register reloads and
// halting.
package cpu

// Privileged is implemented by objects that can execute ring-0 instructions on
// behalf of the kernel. Drivers receive a Privileged value instead of calling
// the assembly helpers directly so that their effects can be observed by a
// Recorder.
type Privileged interface {
	// PortWriteByte writes a uint8 value to the requested port.
	PortWriteByte(port uint16, val uint8)

	// PortReadByte reads a uint8 value from the requested port.
	PortReadByte(port uint16) uint8

	// LoadGDT loads the descriptor table register from the 6-byte
	// descriptor located at the supplied address.
	LoadGDT(descriptorAddr uintptr)

	// ReloadSegments reloads CS with the code selector (via a far
	// transfer) and DS, ES, FS, GS and SS with the data selector.
	ReloadSegments(codeSelector, dataSelector uint16)

	// Halt disables interrupts and stops instruction execution.
	Halt()
}

var (
	// These are mocked by tests and are automatically inlined by the
	// compiler.
	portWriteByteFn  = PortWriteByte
	portReadByteFn   = PortReadByte
	loadGDTFn        = LoadGDT
	reloadSegmentsFn = ReloadSegments
	haltFn           = Halt
)

// Native implements Privileged by executing the actual CPU instructions.
type Native struct{}

// PortWriteByte writes a uint8 value to the requested port.
func (Native) PortWriteByte(port uint16, val uint8) { portWriteByteFn(port, val) }

// PortReadByte reads a uint8 value from the requested port.
func (Native) PortReadByte(port uint16) uint8 { return portReadByteFn(port) }

// LoadGDT executes LGDT with the descriptor at descriptorAddr.
func (Native) LoadGDT(descriptorAddr uintptr) { loadGDTFn(descriptorAddr) }

// ReloadSegments reloads the segment registers with the supplied selectors.
func (Native) ReloadSegments(codeSelector, dataSelector uint16) {
	reloadSegmentsFn(codeSelector, dataSelector)
}

// Halt stops instruction execution.
func (Native) Halt() { haltFn() }
