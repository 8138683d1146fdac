//go:build !debug

package multiboot

// DefaultDiagnostics reports whether optional handoff checks are enabled by
// default. Build with the debug tag to enable them.
const DefaultDiagnostics = false
