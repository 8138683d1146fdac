//go:build !386

package cpu

import "titanium/kernel"

// errUnsupported is raised when a privileged instruction is invoked on a host
// build. Host builds are expected to use a Recorder instead.
var errUnsupported = &kernel.Error{Module: "cpu", Message: "privileged instructions are only available on 386 builds"}

// Halt stops instruction execution.
func Halt() { panic(errUnsupported) }

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(_ uint16, _ uint8) { panic(errUnsupported) }

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(_ uint16) uint8 { panic(errUnsupported) }

// LoadGDT loads the GDTR register from the descriptor at descriptorAddr.
func LoadGDT(_ uintptr) { panic(errUnsupported) }

// ReloadSegments reloads the segment registers.
func ReloadSegments(_, _ uint16) { panic(errUnsupported) }
