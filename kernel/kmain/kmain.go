// Package kmain contains the boot sequence that brings up the early kernel
// subsystems and reports their state on the console.
package kmain

import (
	"runtime"

	"titanium/device/tty"
	"titanium/device/video"
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/gdt"
	"titanium/kernel/hal/multiboot"
	"titanium/kernel/kfmt"
	"titanium/kernel/mem"
	"titanium/kernel/mem/allocator"
	"titanium/kernel/resource"
)

// Build information. These are overridden at link time with
// -ldflags "-X titanium/kernel/kmain.Version=...".
var (
	Version   = "0.1.0"
	Year      = "2026"
	BuildUser = "unknown"
	BuildHost = "unknown"
	BuildDate = "unknown"
)

var (
	// bootFn, panicFn and idleFn are mocked by tests.
	bootFn  = Boot
	panicFn = kfmt.Panic
	idleFn  = cpu.Halt

	errBootHalted = &kernel.Error{Module: "kmain", Message: "boot sequence halted by a resource"}

	bannerAttr = video.MakeAttr(video.Black, video.White, false)
)

// Machine describes the hardware the boot sequence runs on and the values
// handed over by the boot loader.
type Machine struct {
	Space mem.Space
	CPU   cpu.Privileged

	Magic    uint32
	InfoAddr uintptr

	// Diagnostics enables the optional boot loader handoff checks.
	Diagnostics bool
}

// System holds the subsystems created by Boot.
type System struct {
	Allocator *allocator.Kernel
	Video     *video.Framebuffer
	Terminal  *tty.Terminal
	Console   *tty.Console
	Manager   *resource.Manager
	GDT       *gdt.Table
	Checker   *multiboot.Checker
}

// Kmain is invoked by the rt0 code with the values passed by a multiboot
// compliant boot loader. Kmain is not expected to return.
//
//go:noinline
func Kmain(magic uint32, infoAddr uintptr) {
	_, err := bootFn(Machine{
		Space:       mem.Direct,
		CPU:         cpu.Native{},
		Magic:       magic,
		InfoAddr:    infoAddr,
		Diagnostics: multiboot.DefaultDiagnostics,
	})

	if err != nil {
		panicFn(err)
		return
	}

	idleFn()
}

// Boot brings up the allocators, the text output path, the GDT and validates
// the boot loader handoff, registering each subsystem with a resource
// manager. The returned System is partially populated if an error occurs.
func Boot(m Machine) (*System, *kernel.Error) {
	var (
		sys = &System{}
		err *kernel.Error
	)

	if sys.Allocator, err = allocator.New(m.Space, mem.StaticAllocBase, mem.StaticAllocSize); err != nil {
		return sys, err
	}

	if sys.Video, err = video.New(m.Space, mem.VideoBase, m.CPU); err != nil {
		return sys, err
	}

	if sys.Terminal, err = tty.NewTerminal(sys.Video, sys.Allocator, m.Space); err != nil {
		return sys, err
	}

	if err = sys.Terminal.SetColor(bannerAttr); err != nil {
		return sys, err
	}

	sys.Console = tty.NewConsole(m.CPU)
	if err = sys.Console.SwitchTerminal(sys.Terminal); err != nil {
		return sys, err
	}
	kfmt.SetOutputSink(sys.Console)

	printBanner()

	if err = sys.Terminal.SetColor(video.DefaultAttr); err != nil {
		return sys, err
	}

	sys.Manager = resource.NewManager(sys.Console, m.CPU)

	for _, r := range []resource.Resource{
		sys.Allocator,
		sys.Allocator.Arena(),
		sys.Video,
		sys.Console,
		sys.Terminal,
	} {
		if sys.Manager.Register(r) == kernel.StatusPanic {
			return sys, errBootHalted
		}
	}

	// The GDT is the only architecture specific resource.
	kfmt.Printf("Detected architecture: ")
	kfmt.Printf("i386\n")

	if sys.GDT, err = gdt.New(sys.Allocator, m.Space, m.CPU); err != nil {
		return sys, err
	}
	if sys.Manager.Register(sys.GDT) == kernel.StatusPanic {
		return sys, errBootHalted
	}

	sys.Checker = multiboot.NewChecker(m.Magic, m.InfoAddr, m.Space, sys.Console)
	sys.Checker.Diagnostics = m.Diagnostics
	if sys.Manager.Register(sys.Checker) == kernel.StatusPanic {
		return sys, errBootHalted
	}

	printReport(sys)

	return sys, nil
}

func printBanner() {
	kfmt.Printf("Titanium kernel version: %s\n", Version)
	kfmt.Printf("Copyright Matthias van der Vlies 2008-%s\n", Year)
	kfmt.Printf("Compiled by %s@%s on %s using %s\n", BuildUser, BuildHost, BuildDate, runtime.Version())
}

// printReport prints the memory reported by the boot loader and the
// allocator counters.
func printReport(sys *System) {
	kfmt.Printf("Memory size: %dkB\n", sys.Checker.MemorySize())

	if info := sys.Checker.Info(); info != nil {
		if cmdLine := info.CmdLineString(); cmdLine != "" {
			kfmt.Printf("Command line: %s\n", cmdLine)
		}
	}

	sys.Allocator.DumpTo(&kfmt.PrefixWriter{Sink: sys.Console, Prefix: []byte("[kmain] ")})
}
