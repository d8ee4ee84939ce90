package vm

import (
	"tlbcore/defs"
	"tlbcore/mem"
	"tlbcore/util"
)

// Region_t is a defined virtual-address range with permission bits.
// The order of the singly-linked region list is irrelevant for
// correctness — any owned sequence would do — so it is kept as a
// plain `next` pointer, a small kernel-owned collection in the style
// of an intrusive linked list.
type Region_t struct {
	Vbase      mem.Vaddr_t
	Size       mem.Vaddr_t
	Flags      mem.Perm_t
	SavedFlags mem.Perm_t
	next       *Region_t
}

// DefineRegion sets up a region at virtual address vaddr of size
// memsize, rounding vaddr down and memsize up to page multiples so the
// stored region always covers at least the requested range. It fails
// with EINVAL if the resulting range would overflow a 32-bit address
// or intrude on the kernel range (everything at or above USERSTACK),
// and with ENOMEM if the region node cannot be allocated. Regions are
// not checked for overlap with existing regions — Find resolves any
// overlap by returning the first match in list order.
func (as *Addrspace_t) DefineRegion(vaddr, memsize mem.Vaddr_t, perm mem.Perm_t) defs.Err_t {
	memsize += vaddr & mem.PGOFFSET
	vaddr &= mem.PAGE_FRAME
	memsize = util.Roundup(memsize, mem.Vaddr_t(mem.PAGE_SIZE))

	end := vaddr + memsize
	if end < vaddr {
		return defs.EINVAL
	}
	if end > mem.USERSTACK {
		return defs.EINVAL
	}

	r := &Region_t{
		Vbase:      vaddr,
		Size:       memsize,
		Flags:      perm,
		SavedFlags: perm,
	}
	r.next = as.regions
	as.regions = r
	return 0
}

// Find performs a linear scan of the region list and returns the first
// region containing vaddr, or false if none does. List order is
// insertion order (most recently defined region first), so when two
// regions overlap the most recently defined one wins.
func (as *Addrspace_t) Find(vaddr mem.Vaddr_t) (*Region_t, bool) {
	for r := as.regions; r != nil; r = r.next {
		if vaddr >= r.Vbase && vaddr < r.Vbase+r.Size {
			return r, true
		}
	}
	return nil, false
}

// PrepareLoad saves every region's current flags into SavedFlags and
// forces flags to R|W so the ELF loader may write into segments that
// will end up read-only, such as .text. It cannot fail except for a
// nil address space.
func (as *Addrspace_t) PrepareLoad() defs.Err_t {
	if as == nil {
		return defs.EFAULT
	}
	for r := as.regions; r != nil; r = r.next {
		r.SavedFlags = r.Flags
		r.Flags = mem.PF_R | mem.PF_W
	}
	return 0
}

// CompleteLoad restores every region's flags from SavedFlags, then
// deactivates the address space to force a full TLB flush. Permission
// is enforced only at the moment a page-table entry is first
// installed, so a page the loader actually wrote to during the forced
// R|W window keeps its writable bit baked in from then on; pages that
// were never faulted in during loading get the restored, narrower
// flags the first time something touches them. The deactivate here
// only clears stale hardware TLB state left over from the load
// window — it does not retroactively narrow any already-installed
// entry.
func (as *Addrspace_t) CompleteLoad() defs.Err_t {
	if as == nil {
		return defs.EFAULT
	}
	for r := as.regions; r != nil; r = r.next {
		r.Flags = r.SavedFlags
	}
	Deactivate()
	return 0
}

// DefineStack defines the fixed-size user stack region ending at
// USERSTACK and returns the initial stack pointer (USERSTACK itself,
// one past the highest address inside the stack region).
func (as *Addrspace_t) DefineStack() (mem.Vaddr_t, defs.Err_t) {
	if err := as.DefineRegion(mem.USERSTACK-mem.USERSTACK_SIZE, mem.USERSTACK_SIZE,
		mem.PF_R|mem.PF_W|mem.PF_X); err != 0 {
		return 0, err
	}
	return mem.USERSTACK, 0
}
