package mem

import "sync"

// AllocKpagesFn and FreeKpagesFn are the injected kernel virtual-page
// allocator: alloc_kpages(n)/free_kpages(kvaddr). The physical frame
// allocator is an external collaborator; production code assigns these
// once during boot and tests swap them for a counting or
// failure-injecting mock.
//
// The default implementation backs "kernel virtual pages" with a
// simple growable arena rather than real hardware, since nothing below
// this package can assume a board exists; it is adequate for the
// kernel-mapped, page-granular, zero-fill-on-demand contract this
// package promises and is what every unit test exercises unless it
// installs its own mock.
var (
	AllocKpagesFn = defaultAllocKpages
	FreeKpagesFn  = defaultFreeKpages
)

type directMap struct {
	sync.Mutex
	pages map[Vaddr_t][]byte
	free  []Vaddr_t
	next  Vaddr_t
}

var dmap = &directMap{pages: make(map[Vaddr_t][]byte)}

func defaultAllocKpages(n int) (Vaddr_t, bool) {
	if n != 1 {
		panic("mem: only single-page allocations are supported")
	}
	dmap.Lock()
	defer dmap.Unlock()

	var kva Vaddr_t
	if l := len(dmap.free); l > 0 {
		kva = dmap.free[l-1]
		dmap.free = dmap.free[:l-1]
	} else {
		kva = Vdirect + dmap.next
		dmap.next += Vaddr_t(PAGE_SIZE)
		dmap.pages[kva] = make([]byte, PAGE_SIZE)
	}
	return kva, true
}

func defaultFreeKpages(kva Vaddr_t) {
	dmap.Lock()
	defer dmap.Unlock()
	if _, ok := dmap.pages[kva]; !ok {
		panic("mem: freeing a kvaddr never allocated")
	}
	dmap.free = append(dmap.free, kva)
}

func kpageBytes(kva Vaddr_t) []byte {
	dmap.Lock()
	b, ok := dmap.pages[kva]
	dmap.Unlock()
	if !ok {
		panic("mem: dereferencing an unmapped kernel virtual address")
	}
	return b
}

func zero(kva Vaddr_t) {
	b := kpageBytes(kva)
	for i := range b {
		b[i] = 0
	}
}
