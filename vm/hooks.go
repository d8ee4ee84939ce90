package vm

import "tlbcore/mem"

// The hardware and scheduler collaborators this package is bound to
// are supplied by the rest of the kernel: TLB mutation, interrupt
// priority, and "current address space" all live outside this package.
// Each collaborator is a swappable package-level function variable:
// production code assigns a real implementation once at boot, and
// tests install a mock TLB / counting allocator and restore the
// original on return.
var (
	// ProcGetASFn returns the address space of the running process, or
	// nil if there is none. Backs proc_getas().
	ProcGetASFn = func() *Addrspace_t { return nil }

	// SplHighFn raises the CPU to the highest interrupt priority level
	// and returns the previous level, for SplXFn to restore. Backs
	// splhigh().
	SplHighFn = func() int { return 0 }

	// SplXFn restores a previously saved interrupt priority level.
	// Backs splx().
	SplXFn = func(int) {}

	// TLBWriteFn installs the (hi, lo) pair into a specific hardware
	// TLB slot. Backs tlb_write(hi, lo, slot).
	TLBWriteFn = func(hi, lo uint32, slot int) {}

	// TLBRandomFn installs the (hi, lo) pair into a hardware-chosen
	// slot. Backs tlb_random(hi, lo).
	TLBRandomFn = func(hi, lo uint32) {}
)

// mipsKseg2 is the base of the unmapped, uncached MIPS KSEG2 segment.
// TLBHI_INVALID places each slot's invalid tag just below this
// boundary, spaced one page apart per slot index, so that no two
// invalidated slots ever carry the same virtual tag.
const mipsKseg2 = 0xc0000000

// TLBHI_INVALID returns a valid-format, distinct-per-slot virtual tag
// suitable for invalidating TLB slot i: never a tag a running process
// could legitimately fault on (it sits above any user or normal kernel
// mapping), and distinct across slots so the hardware never reports a
// duplicate-tag exception against itself.
func TLBHI_INVALID(slot int) uint32 {
	return uint32(mipsKseg2-mem.PAGE_SIZE*(slot+1)) & uint32(mem.PAGE_FRAME)
}

// TLBLO_INVALID returns the EntryLo word for an invalidated slot:
// VALID clear, everything else zero.
func TLBLO_INVALID() uint32 {
	return 0
}

// Shootdown is the SMP TLB-shootdown entry point. Multiprocessor TLB
// coherence is not implemented; being asked to perform one is fatal,
// not silently ignored, so that porting this core to SMP without
// addressing shootdown fails loudly.
func Shootdown() {
	panic("vm: tlb shootdown requested but multiprocessor TLB shootdown is not implemented")
}
