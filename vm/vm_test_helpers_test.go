package vm

import (
	"testing"

	"tlbcore/mem"
)

// tlbEvent records one call into the mock hardware TLB.
type tlbEvent struct {
	hi, lo uint32
	slot   int
	random bool
}

// mockTLB replaces the hardware collaborators for a single test.
type mockTLB struct {
	events   []tlbEvent
	splHighs int
	splXs    int
}

func installMockTLB(t *testing.T) *mockTLB {
	t.Helper()
	origWrite := TLBWriteFn
	origRandom := TLBRandomFn
	origSplHigh := SplHighFn
	origSplX := SplXFn

	m := &mockTLB{}
	TLBWriteFn = func(hi, lo uint32, slot int) {
		m.events = append(m.events, tlbEvent{hi: hi, lo: lo, slot: slot})
	}
	TLBRandomFn = func(hi, lo uint32) {
		m.events = append(m.events, tlbEvent{hi: hi, lo: lo, random: true})
	}
	SplHighFn = func() int { m.splHighs++; return 0 }
	SplXFn = func(int) { m.splXs++ }

	t.Cleanup(func() {
		TLBWriteFn = origWrite
		TLBRandomFn = origRandom
		SplHighFn = origSplHigh
		SplXFn = origSplX
	})
	return m
}

func installCurrentAS(t *testing.T, as *Addrspace_t) {
	t.Helper()
	orig := ProcGetASFn
	ProcGetASFn = func() *Addrspace_t { return as }
	t.Cleanup(func() { ProcGetASFn = orig })
}

func frameOutstanding() int64 {
	return mem.Stats().Outstanding()
}
