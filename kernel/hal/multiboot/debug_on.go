//go:build debug

package multiboot

// DefaultDiagnostics reports whether optional handoff checks are enabled by
// default.
const DefaultDiagnostics = true
