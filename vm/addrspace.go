package vm

import (
	"sync"

	"tlbcore/defs"
	"tlbcore/mem"
)

// Addrspace_t exclusively owns one page table and one region list,
// plus the immutable stack-base virtual address. The embedded mutex is
// not required by the uniprocessor fault path itself (no suspension
// points run while the TLB is inconsistent) but guards the one case
// that model doesn't rule out — a fault being handled for this address
// space while another kernel thread concurrently forks it via Copy —
// the same Lock_pmap/Unlock_pmap/Lockassert_pmap discipline kernels in
// this lineage use around their page tables.
type Addrspace_t struct {
	sync.Mutex
	pgfltaken bool

	pt        *Pagetable_t
	regions   *Region_t
	stackbase mem.Vaddr_t
}

// Lock_pmap acquires the address-space mutex and marks that page-table
// mutation is in progress, for Lockassert_pmap to check.
func (as *Addrspace_t) Lock_pmap() {
	as.Lock()
	as.pgfltaken = true
}

// Unlock_pmap releases the address-space mutex.
func (as *Addrspace_t) Unlock_pmap() {
	as.pgfltaken = false
	as.Unlock()
}

// Lockassert_pmap panics if the address-space mutex is not held.
func (as *Addrspace_t) Lockassert_pmap() {
	if !as.pgfltaken {
		panic("vm: pmap lock must be held")
	}
}

// Create returns an empty address space: no regions, an empty page
// table, and the stack base set to USERSTACK.
func Create() (*Addrspace_t, defs.Err_t) {
	pt, err := NewPagetable()
	if err != 0 {
		return nil, err
	}
	return &Addrspace_t{pt: pt, stackbase: mem.USERSTACK}, 0
}

// StackBase returns the fixed top-of-stack virtual address.
func (as *Addrspace_t) StackBase() mem.Vaddr_t {
	return as.stackbase
}

// Copy clones old's region list (fresh nodes, value-copied attributes)
// and deep-copies its page table: every resident frame is newly
// allocated and its contents copied byte-for-byte, so the two address
// spaces never alias a frame. On any failure the partially built
// address space is fully destroyed before returning the error.
func Copy(old *Addrspace_t) (*Addrspace_t, defs.Err_t) {
	if old == nil {
		return nil, defs.EINVAL
	}

	old.Lock_pmap()
	defer old.Unlock_pmap()

	newas, err := Create()
	if err != 0 {
		return nil, err
	}
	newas.stackbase = old.stackbase

	var head, tail *Region_t
	for r := old.regions; r != nil; r = r.next {
		nr := &Region_t{
			Vbase:      r.Vbase,
			Size:       r.Size,
			Flags:      r.Flags,
			SavedFlags: r.SavedFlags,
		}
		if head == nil {
			head = nr
		} else {
			tail.next = nr
		}
		tail = nr
	}
	newas.regions = head

	pt, err := old.pt.Copy()
	if err != 0 {
		Destroy(newas)
		return nil, err
	}
	newas.pt = pt

	return newas, 0
}

// Destroy frees every region, destroys the page table (releasing every
// frame it owns), and tolerates a nil address space.
func Destroy(as *Addrspace_t) {
	if as == nil {
		return
	}
	as.regions = nil
	as.pt.Destroy()
	as.pt = nil
}
