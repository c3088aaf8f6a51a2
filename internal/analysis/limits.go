// Package analysis provides the static analysis passes over a GBA ROM:
// literal pool resolution, function boundary recovery, the full-image
// cross-reference index, and the annotated disassembly listing the CLI
// is built on.
package analysis

// Bounds for the heuristic searches. All scans are explicitly capped
// so a query over a pathological region terminates.
const (
	// DefaultMaxBack is how far FindStart searches backward for a
	// prologue before giving up.
	DefaultMaxBack = 0x400

	// DefaultMaxFwd is how far FindEnd searches forward for an
	// epilogue before giving up.
	DefaultMaxFwd = 0x1000

	// MaxFunctionBytes caps the size of a function recovered during a
	// whole-image sweep.
	MaxFunctionBytes = 0x2000
)
