package main

import "titanium/kernel/kmain"

var (
	bootMagic    uint32
	bootInfoAddr uintptr
)

// main makes a dummy call to the actual kernel entrypoint. It is defined so
// the Go compiler does not optimize away the kernel code, which is only
// reachable from the rt0 code.
//
// Global variables are passed as arguments to Kmain to prevent the compiler
// from inlining the call and removing Kmain from the generated object file.
func main() {
	kmain.Kmain(bootMagic, bootInfoAddr)
}
