package analysis

import (
	"romscope/internal/rom"
	"romscope/internal/thumb"
)

// PoolEntry is a resolved literal pool reference: a pc-relative load
// together with the pool slot it reads and the 32-bit constant found
// there.
type PoolEntry struct {
	InstAddr uint32 // address of the referencing ldr
	PoolAddr uint32 // address of the pool slot
	Value    uint32
	Region   rom.Region // region the value points into, RegionUnknown if none
}

// ResolvePool resolves the pool slot behind a pc-relative load. ok is
// false when inst is not a pool load or the computed slot falls
// outside the image; a truncated pool is an expected condition near
// the end of a dump, not an error.
func ResolvePool(r *rom.Rom, inst thumb.Inst) (PoolEntry, bool) {
	load, isLoad := inst.(*thumb.PCRelLoad)
	if !isLoad {
		return PoolEntry{}, false
	}
	poolAddr := load.PoolAddr()
	value, ok := r.Word(poolAddr)
	if !ok {
		return PoolEntry{}, false
	}
	return PoolEntry{
		InstAddr: load.Addr(),
		PoolAddr: poolAddr,
		Value:    value,
		Region:   rom.RegionOf(value),
	}, true
}
