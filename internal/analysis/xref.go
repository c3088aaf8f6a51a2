package analysis

import (
	"runtime"
	"sync"

	"romscope/internal/logging"
	"romscope/internal/rom"
	"romscope/internal/thumb"
)

// Index is the whole-image cross-reference index: every 32-bit
// constant found in a literal pool mapped back to the slots and loads
// that reference it, and every long-branch target mapped back to its
// call sites. Built once per image in a single pass and immutable
// afterwards, so any number of queries can share it without locking.
type Index struct {
	pools map[uint32][]PoolEntry // constant value -> referencing loads
	calls map[uint32][]uint32    // call target -> bl/blx sites
}

// BuildIndex scans the whole image once and builds both reverse maps.
// The scan advances by the decoded instruction size, so the low
// halfword of a long-branch pair is never reinterpreted as the start
// of another instruction.
func BuildIndex(r *rom.Rom) *Index {
	idx := &Index{
		pools: make(map[uint32][]PoolEntry),
		calls: make(map[uint32][]uint32),
	}
	end := rom.ROMStart + uint32(r.Len())
	idx.scan(r, rom.ROMStart, end)
	if logging.IsDebug() {
		lg := logging.NewLogger()
		defer lg.Close()
		lg.Debug("index built", "values", len(idx.pools), "targets", len(idx.calls))
	}
	return idx
}

// BuildIndexParallel builds the same index using workers goroutines
// over disjoint chunks. The result is identical to BuildIndex: a pair
// straddling a chunk boundary is decoded by the chunk owning its high
// halfword, and the orphaned low halfword at the start of the next
// chunk matches no format on its own. workers < 1 means GOMAXPROCS.
func BuildIndexParallel(r *rom.Rom, workers int) *Index {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	size := uint32(r.Len())
	if workers == 1 || size < 1<<16 {
		return BuildIndex(r)
	}

	chunk := ((size+uint32(workers)-1)/uint32(workers) + 1) &^ 1
	parts := make([]*Index, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		lo := rom.ROMStart + uint32(i)*chunk
		hi := lo + chunk
		if max := rom.ROMStart + size; hi > max {
			hi = max
		}
		if lo >= hi {
			break
		}
		part := &Index{
			pools: make(map[uint32][]PoolEntry),
			calls: make(map[uint32][]uint32),
		}
		parts[i] = part
		wg.Add(1)
		go func(lo, hi uint32) {
			defer wg.Done()
			part.scan(r, lo, hi)
		}(lo, hi)
	}
	wg.Wait()

	// Merge in chunk order so slices stay address-sorted.
	idx := &Index{
		pools: make(map[uint32][]PoolEntry),
		calls: make(map[uint32][]uint32),
	}
	for _, part := range parts {
		if part == nil {
			continue
		}
		for v, entries := range part.pools {
			idx.pools[v] = append(idx.pools[v], entries...)
		}
		for t, sites := range part.calls {
			idx.calls[t] = append(idx.calls[t], sites...)
		}
	}
	if logging.IsDebug() {
		lg := logging.NewLogger()
		defer lg.Close()
		lg.Debug("index built", "workers", workers, "chunk", chunk,
			"values", len(idx.pools), "targets", len(idx.calls))
	}
	return idx
}

// scan indexes instructions whose address lies in [lo, hi).
func (idx *Index) scan(r *rom.Rom, lo, hi uint32) {
	for addr := rom.MaskThumb(lo); addr < hi && r.Contains(addr); {
		inst := thumb.Decode(r, addr)
		switch n := inst.(type) {
		case *thumb.PCRelLoad:
			if entry, ok := ResolvePool(r, n); ok {
				idx.pools[entry.Value] = append(idx.pools[entry.Value], entry)
			}
		case *thumb.LongBranch:
			target := rom.MaskThumb(n.Target())
			idx.calls[target] = append(idx.calls[target], addr)
		}
		addr += uint32(inst.Size())
	}
}

// RefsToValue returns the pool slot addresses holding v, in ascending
// order.
func (idx *Index) RefsToValue(v uint32) []uint32 {
	entries := idx.pools[v]
	if len(entries) == 0 {
		return nil
	}
	slots := make([]uint32, len(entries))
	for i, e := range entries {
		slots[i] = e.PoolAddr
	}
	return slots
}

// RefEntries returns the full pool entries for v, including the
// addresses of the referencing loads.
func (idx *Index) RefEntries(v uint32) []PoolEntry {
	return idx.pools[v]
}

// CallersOf returns the call sites branching to target. The THUMB bit
// on target is ignored.
func (idx *Index) CallersOf(target uint32) []uint32 {
	return idx.calls[rom.MaskThumb(target)]
}

// NumValues returns how many distinct pool constants were indexed.
func (idx *Index) NumValues() int { return len(idx.pools) }

// NumTargets returns how many distinct call targets were indexed.
func (idx *Index) NumTargets() int { return len(idx.calls) }
