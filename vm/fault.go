package vm

import (
	"tlbcore/defs"
	"tlbcore/mem"
)

// FaultType names the three hardware trap reasons the MIPS refill path
// can hand the fault handler.
type FaultType int

const (
	FaultReadOnly FaultType = iota
	FaultRead
	FaultWrite
)

// Fault translates a hardware TLB miss into either a new page-table
// entry (installing a freshly zeroed frame) or a rejection, then loads
// the TLB. It is the vm_fault equivalent: it takes only the fault type
// and faulting address, fetching the current address space itself via
// ProcGetASFn. Every failure path returns without touching the TLB or
// mutating any region.
func Fault(ftype FaultType, faultaddr mem.Vaddr_t) defs.Err_t {
	switch ftype {
	case FaultReadOnly:
		// The TLB told us a write hit a non-writable page. There is no
		// copy-on-write here, so this is unrecoverable.
		return defs.EPERMFAULT
	case FaultRead, FaultWrite:
	default:
		return defs.EINVAL
	}

	if faultaddr == 0 {
		return defs.EFAULT
	}

	as := ProcGetASFn()
	if as == nil {
		return defs.EFAULT
	}

	as.Lock_pmap()
	defer as.Unlock_pmap()

	faultaddr &= mem.PAGE_FRAME

	// L1 index uses bits [31:21] as stored; L2 index uses bits [20:12].
	// The (addr<<11)>>23 sequence clears the top 11 bits before
	// extracting the middle 9 — numerically identical to
	// (addr>>12)&0x1FF, kept in this form to match the reference
	// implementation this logic is ported from.
	msb := int(faultaddr >> 21)
	lsb := int((faultaddr << 11) >> 23)

	if _, ok := as.pt.Lookup(msb, lsb); !ok {
		region, ok := as.Find(faultaddr)
		if !ok {
			return defs.EFAULT
		}
		if ftype == FaultWrite && region.Flags&mem.PF_W == 0 {
			return defs.EFAULT
		}

		var writable mem.Vaddr_t
		if region.Flags&mem.PF_W != 0 {
			writable = mem.TLBLO_DIRTY
		}
		if err := as.pt.Install(msb, lsb, writable); err != 0 {
			return err
		}
	}

	entryLo, _ := as.pt.Lookup(msb, lsb)
	entryHi := faultaddr & mem.PAGE_FRAME

	spl := SplHighFn()
	TLBRandomFn(uint32(entryHi), uint32(entryLo))
	SplXFn(spl)

	return 0
}
