// Package device defines the contracts implemented by character output
// devices.
package device

import "titanium/kernel"

// TerminalType identifies the kind of device a terminal is attached to.
type TerminalType uint32

// The supported terminal types.
const (
	TerminalVideo  TerminalType = 1
	TerminalSerial TerminalType = 2
)

// String implements fmt.Stringer for TerminalType.
func (t TerminalType) String() string {
	switch t {
	case TerminalVideo:
		return "video"
	case TerminalSerial:
		return "serial"
	default:
		return "unknown"
	}
}

// CharacterDevice is implemented by output devices that accept a full
// screen of 16-bit cells. The low byte of each cell holds the character and
// the high byte its attribute.
type CharacterDevice interface {
	// Name returns the resource name of the device.
	Name() string

	// Start brings the device up and reports the outcome.
	Start() kernel.Status

	// ClearBuffer zeroes every cell of the device.
	ClearBuffer()

	// Write copies cells to the device. The device rejects buffers whose
	// length does not match its capacity.
	Write(cells []uint16) *kernel.Error

	// TerminalType reports the kind of device.
	TerminalType() TerminalType

	// Capacity returns the number of cells held by the device.
	Capacity() int
}
