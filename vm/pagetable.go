package vm

import (
	"tlbcore/defs"
	"tlbcore/mem"
)

// Pte_t is a hardware-ready EntryLo word: (physical frame number << 12)
// | dirty | valid, or zero if no page is installed. It is stored and
// handed to the TLB exactly as-is — the fault path does no translation
// at refill time.
type Pte_t mem.Vaddr_t

// l2Page is one second-level page-table page: 512 machine words,
// indexed by bits [20:12] of a virtual address.
type l2Page [mem.L2_PT_SIZE]Pte_t

// Pagetable_t is a two-level sparse page table: an L1 array of 2048
// slots, each either empty or owning an L2 array of 512 hardware-ready
// leaf words. It exclusively owns every frame reachable through a
// non-zero leaf; no entry is ever shared between two Pagetable_t
// values.
type Pagetable_t struct {
	l1 [mem.L1_PT_SIZE]*l2Page
}

// NewPagetable returns an empty root of 2048 empty L1 slots. The root
// itself is a plain Go value (no heap allocation can fail short of the
// runtime's own OOM panic), so this never fails in practice; it still
// returns an Err_t for symmetry with the other page-table operations
// and in case a future backing store for the L1 root becomes fallible.
func NewPagetable() (*Pagetable_t, defs.Err_t) {
	return &Pagetable_t{}, 0
}

// EnsureL2 allocates a zeroed L2 array for L1 slot msb if it is empty.
// It fails with EINVAL if the slot is already populated — double-create
// is treated as programmer error, not a recoverable condition — and
// with ENOMEM if the array cannot be obtained.
func (pt *Pagetable_t) EnsureL2(msb int) defs.Err_t {
	if pt.l1[msb] != nil {
		return defs.EINVAL
	}
	pt.l1[msb] = &l2Page{}
	return 0
}

// Install requires that L2[msb][lsb] be empty; it allocates a frame,
// zero-fills it (via the Frame Wrapper, which zero-fills on
// allocation), and writes a hardware-ready EntryLo word combining the
// frame's physical address with writable and VALID into the slot. It
// fails with EINVAL if the slot is already present, and with ENOMEM if
// either the L2 array or the frame cannot be obtained.
func (pt *Pagetable_t) Install(msb, lsb int, writable mem.Vaddr_t) defs.Err_t {
	if pt.l1[msb] == nil {
		if err := pt.EnsureL2(msb); err != 0 {
			return err
		}
	}
	if pt.l1[msb][lsb] != 0 {
		return defs.EINVAL
	}
	f, err := mem.AllocFrame()
	if err != 0 {
		return err
	}
	lo := (mem.Vaddr_t(f.Paddr) & mem.PAGE_FRAME) | writable | mem.TLBLO_VALID
	pt.l1[msb][lsb] = Pte_t(lo)
	return 0
}

// Lookup is a total, pure read: it reports the leaf word at (msb, lsb)
// and whether one is present.
func (pt *Pagetable_t) Lookup(msb, lsb int) (Pte_t, bool) {
	if pt.l1[msb] == nil {
		return 0, false
	}
	e := pt.l1[msb][lsb]
	return e, e != 0
}

// Copy builds an independent page table whose set of present entries
// equals this one's; for every present entry it allocates a fresh
// frame, copies the source frame's contents byte-for-byte, and
// installs a new entry with the same writable/valid bits. If any
// allocation fails partway through, the partially built destination is
// destroyed before returning ENOMEM — no frame leaks, and nothing
// half-built is ever handed back to the caller to unwind itself.
func (pt *Pagetable_t) Copy() (*Pagetable_t, defs.Err_t) {
	dst := &Pagetable_t{}
	for msb := 0; msb < mem.L1_PT_SIZE; msb++ {
		src2 := pt.l1[msb]
		if src2 == nil {
			continue
		}
		dst2 := &l2Page{}
		dst.l1[msb] = dst2
		for lsb := 0; lsb < mem.L2_PT_SIZE; lsb++ {
			e := src2[lsb]
			if e == 0 {
				continue
			}
			f, err := mem.AllocFrame()
			if err != 0 {
				dst.Destroy()
				return nil, defs.ENOMEM
			}
			srcPaddr := mem.Pa_t(mem.Vaddr_t(e) & mem.PAGE_FRAME)
			srcFrame := mem.Frame{Paddr: srcPaddr, Kvaddr: mem.PADDR_TO_KVADDR(srcPaddr)}
			copy(f.Bytes(), srcFrame.Bytes())
			bits := mem.Vaddr_t(e) &^ mem.PAGE_FRAME
			dst2[lsb] = Pte_t((mem.Vaddr_t(f.Paddr) & mem.PAGE_FRAME) | bits)
		}
	}
	return dst, 0
}

// Destroy frees every resident frame, every L2 array, and tolerates a
// nil receiver so that `var pt *Pagetable_t; pt.Destroy()` is a no-op.
func (pt *Pagetable_t) Destroy() {
	if pt == nil {
		return
	}
	for msb := range pt.l1 {
		l2 := pt.l1[msb]
		if l2 == nil {
			continue
		}
		for lsb := range l2 {
			e := l2[lsb]
			if e == 0 {
				continue
			}
			paddr := mem.Pa_t(mem.Vaddr_t(e) & mem.PAGE_FRAME)
			mem.FreeFrame(mem.Frame{Paddr: paddr, Kvaddr: mem.PADDR_TO_KVADDR(paddr)})
			l2[lsb] = 0
		}
		pt.l1[msb] = nil
	}
}
