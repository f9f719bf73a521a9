package grass

import (
	"sync"
	"testing"
)

func TestReserveIsBijection(t *testing.T) {
	const n = 20000
	var args DrawIndirectArgs
	slots := make([]uint32, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots[i] = args.Reserve()
		}()
	}
	wg.Wait()

	if got := args.Count(); got != n {
		t.Fatalf("Count = %d, want %d", got, n)
	}
	seen := make([]bool, n)
	for i, s := range slots {
		if s >= n {
			t.Fatalf("task %d reserved slot %d, out of range", i, s)
		}
		if seen[s] {
			t.Fatalf("slot %d reserved twice", s)
		}
		seen[s] = true
	}
}

func TestResetClearsStaleCount(t *testing.T) {
	var args DrawIndirectArgs
	for range 5 {
		args.Reserve()
	}
	args.Reset()

	if got := args.Reserve(); got != 0 {
		t.Errorf("first slot after Reset = %d, want 0", got)
	}
	snap := args.Snapshot()
	want := GPUDrawIndirectArgs{VertexCount: 1, InstanceCount: 1}
	if snap != want {
		t.Errorf("Snapshot = %+v, want %+v", snap, want)
	}
}
