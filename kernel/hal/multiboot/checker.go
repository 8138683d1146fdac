package multiboot

import (
	"io"

	"titanium/kernel"
	"titanium/kernel/kfmt"
	"titanium/kernel/mem"
)

// Checker validates the loader handoff. Missing mandatory information makes
// Start return StatusPanic; missing optional information is reported as a
// warning when Diagnostics is enabled.
type Checker struct {
	magic    uint32
	infoAddr uintptr
	space    mem.Space
	out      io.Writer

	// Diagnostics enables the optional checks. It defaults to true in
	// builds with the debug tag.
	Diagnostics bool

	info       *Info
	memorySize uint32
}

// NewChecker creates a checker for the magic value and information block
// address passed by the loader. Findings are written to out.
func NewChecker(magic uint32, infoAddr uintptr, space mem.Space, out io.Writer) *Checker {
	return &Checker{
		magic:       magic,
		infoAddr:    infoAddr,
		space:       space,
		out:         out,
		Diagnostics: DefaultDiagnostics,
	}
}

// Start runs every check, reporting each finding on its own line, and
// classifies the result.
func (c *Checker) Start() kernel.Status {
	var valid, warning = true, false

	invalid := func(msg string) {
		kfmt.Fprintf(c.out, "\n%s", msg)
		valid = false
	}
	warn := func(msg string) {
		kfmt.Fprintf(c.out, "\n%s", msg)
		warning = true
	}

	if c.magic != BootloaderMagic {
		invalid("Invalid bootloader magic!!!")
	}

	info, err := ReadInfo(c.space, c.infoAddr)
	if err != nil {
		invalid("Invalid multiboot information address")
		kfmt.Fprintf(c.out, "\n")
		return kernel.StatusPanic
	}
	c.info = info

	if !info.Has(FlagMemory) {
		invalid("Invalid memory area")
	} else {
		c.memorySize = info.MemLower + info.MemUpper
	}

	if !info.Has(FlagBootDevice) {
		invalid("Invalid boot device")
	}

	if !info.Has(FlagCmdLine) {
		invalid("No command line passed")
	}

	if c.Diagnostics && !info.Has(FlagModules) {
		warn("Invalid modules")
	}

	if info.Has(FlagAoutSymbols | FlagElfSections) {
		invalid("No mutual exclusion on bit 4 and 5")
	}

	if c.Diagnostics {
		if !info.Has(FlagAoutSymbols) {
			warn("Invalid a.out symbol table")
		}

		if !info.Has(FlagElfSections) {
			warn("Invalid ELF section header")
		}
	}

	if !info.Has(FlagMemoryMap) {
		invalid("Invalid mmap")
	}

	switch {
	case !valid:
		kfmt.Fprintf(c.out, "\n")
		return kernel.StatusPanic
	case warning && c.Diagnostics:
		kfmt.Fprintf(c.out, "\n")
		return kernel.StatusWarning
	default:
		return kernel.StatusSuccess
	}
}

// MemorySize returns the lower plus upper memory in kB reported by the
// loader. It returns 0 before Start or if the loader omitted it.
func (c *Checker) MemorySize() uint32 {
	return c.memorySize
}

// Info returns the decoded information block or nil if Start has not run or
// the block could not be read.
func (c *Checker) Info() *Info {
	return c.info
}

// Name implements resource.Resource.
func (c *Checker) Name() string {
	return "GRUB multiboot header"
}
