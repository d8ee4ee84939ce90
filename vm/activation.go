package vm

import "tlbcore/mem"

// Activate makes the current process's address space current on the
// CPU by flushing the entire hardware TLB. This machine has no ASIDs,
// so the only correct way to stop the TLB from answering translations
// that belong to the outgoing address space is to invalidate every
// slot. If the current process has no address space (a kernel-only
// thread), the prior address space is left in place.
func Activate() {
	as := ProcGetASFn()
	if as == nil {
		return
	}

	spl := SplHighFn()
	for i := 0; i < mem.NUM_TLB; i++ {
		TLBWriteFn(TLBHI_INVALID(i), TLBLO_INVALID(), i)
	}
	SplXFn(spl)
}

// Deactivate is called on context-switch-out. Without ASIDs there is
// no cheaper correct option than the same full flush Activate
// performs; it clears stale hardware TLB entries left by the outgoing
// address space, though it does not revisit permissions already baked
// into resident page-table entries.
func Deactivate() {
	Activate()
}
