package mem

import "testing"

func TestAllocFrameZeroFilled(t *testing.T) {
	f, err := AllocFrame()
	if err != 0 {
		t.Fatalf("AllocFrame: %v", err)
	}
	b := f.Bytes()
	if len(b) != PAGE_SIZE {
		t.Fatalf("frame size = %d, want %d", len(b), PAGE_SIZE)
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("frame not zero-filled at byte %d: %#x", i, v)
		}
	}
	FreeFrame(f)
}

func TestAllocFrameCounting(t *testing.T) {
	before := Stats()
	f1, _ := AllocFrame()
	f2, _ := AllocFrame()
	mid := Stats()
	if mid.Outstanding() != before.Outstanding()+2 {
		t.Fatalf("outstanding = %d, want %d", mid.Outstanding(), before.Outstanding()+2)
	}
	FreeFrame(f1)
	FreeFrame(f2)
	after := Stats()
	if after.Outstanding() != before.Outstanding() {
		t.Fatalf("outstanding after free = %d, want %d", after.Outstanding(), before.Outstanding())
	}
}

func TestFrameContentsIndependent(t *testing.T) {
	f1, _ := AllocFrame()
	f2, _ := AllocFrame()
	defer FreeFrame(f1)
	defer FreeFrame(f2)

	f1.Bytes()[0] = 0xAB
	if f2.Bytes()[0] == 0xAB {
		t.Fatal("frames alias the same backing storage")
	}
}

func TestPaddrKvaddrRoundTrip(t *testing.T) {
	f, _ := AllocFrame()
	defer FreeFrame(f)

	kva := PADDR_TO_KVADDR(f.Paddr)
	if kva != f.Kvaddr {
		t.Fatalf("PADDR_TO_KVADDR(%#x) = %#x, want %#x", f.Paddr, kva, f.Kvaddr)
	}
	if KVADDR_TO_PADDR(kva) != f.Paddr {
		t.Fatalf("KVADDR_TO_PADDR(%#x) = %#x, want %#x", kva, KVADDR_TO_PADDR(kva), f.Paddr)
	}
}

func TestKvaddrToPaddrPanicsOutsideDirectMap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an address outside the direct map")
		}
	}()
	KVADDR_TO_PADDR(Vdirect - Vaddr_t(PAGE_SIZE))
}

func TestPageFrameMaskConstants(t *testing.T) {
	if PAGE_SIZE != 4096 {
		t.Fatalf("PAGE_SIZE = %d, want 4096", PAGE_SIZE)
	}
	if PAGE_FRAME != 0xFFFFF000 {
		t.Fatalf("PAGE_FRAME = %#x, want 0xFFFFF000", uint32(PAGE_FRAME))
	}
	if L1_PT_SIZE != 2048 || L2_PT_SIZE != 512 {
		t.Fatalf("L1/L2 sizes = %d/%d, want 2048/512", L1_PT_SIZE, L2_PT_SIZE)
	}
}
