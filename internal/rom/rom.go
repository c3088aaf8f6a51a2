// Package rom maps a flat GBA ROM image into the console's 32-bit
// address space and provides bounds-checked little-endian reads.
package rom

import (
	"fmt"
	"os"

	"golang.org/x/arch/arm/armasm"
)

// GBA memory regions visible to cartridge code.
const (
	ROMStart   = 0x08000000
	ROMEnd     = 0x09FFFFFF
	EWRAMStart = 0x02000000
	EWRAMEnd   = 0x0203FFFF
	IWRAMStart = 0x03000000
	IWRAMEnd   = 0x03007FFF
	IOStart    = 0x04000000
	IOEnd      = 0x040003FF
)

// Region identifies which GBA memory region an address falls in.
type Region int

const (
	RegionUnknown Region = iota
	RegionROM
	RegionEWRAM
	RegionIWRAM
	RegionIO
)

func (r Region) String() string {
	switch r {
	case RegionROM:
		return "ROM"
	case RegionEWRAM:
		return "EWRAM"
	case RegionIWRAM:
		return "IWRAM"
	case RegionIO:
		return "IO"
	default:
		return "unknown"
	}
}

// RegionOf classifies a 32-bit address. The THUMB bit is masked off
// before the range check.
func RegionOf(addr uint32) Region {
	addr &^= 1
	switch {
	case addr >= ROMStart && addr <= ROMEnd:
		return RegionROM
	case addr >= EWRAMStart && addr <= EWRAMEnd:
		return RegionEWRAM
	case addr >= IWRAMStart && addr <= IWRAMEnd:
		return RegionIWRAM
	case addr >= IOStart && addr <= IOEnd:
		return RegionIO
	default:
		return RegionUnknown
	}
}

// MaskThumb clears the low routing bit of an address. The bit marks
// THUMB execution mode on call target values and is not part of the
// numeric address.
func MaskThumb(addr uint32) uint32 {
	return addr &^ 1
}

// Header field offsets within the cartridge header.
const (
	headerTitleOff    = 0xA0
	headerTitleLen    = 12
	headerGameCodeOff = 0xAC
	headerGameCodeLen = 4
	headerMakerOff    = 0xB0
	headerMakerLen    = 2
	headerFixedOff    = 0xB2
	headerFixedValue  = 0x96
	headerChecksumOff = 0xBD
	headerSize        = 0xC0
)

// Rom is an immutable cartridge image. All analysis components share
// it by read-only reference; it is never mutated after loading.
type Rom struct {
	data []byte
	path string
}

// New wraps an in-memory image. The caller must not modify data
// afterwards.
func New(data []byte) *Rom {
	return &Rom{data: data}
}

// Load reads a ROM image from disk.
func Load(path string) (*Rom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}
	return &Rom{data: data, path: path}, nil
}

// Path returns the file the image was loaded from, if any.
func (r *Rom) Path() string { return r.path }

// Len returns the image size in bytes.
func (r *Rom) Len() int { return len(r.data) }

// Bytes returns the underlying image. Callers must treat it as
// read-only.
func (r *Rom) Bytes() []byte { return r.data }

// Offset translates a bus address to a file offset. ok is false when
// the address does not map into the loaded image.
func (r *Rom) Offset(addr uint32) (uint32, bool) {
	addr = MaskThumb(addr)
	if addr < ROMStart || addr > ROMEnd {
		return 0, false
	}
	off := addr - ROMStart
	if off >= uint32(len(r.data)) {
		return 0, false
	}
	return off, true
}

// Contains reports whether addr maps into the loaded image.
func (r *Rom) Contains(addr uint32) bool {
	_, ok := r.Offset(addr)
	return ok
}

// Byte reads one byte at a bus address.
func (r *Rom) Byte(addr uint32) (byte, bool) {
	off, ok := r.Offset(addr)
	if !ok {
		return 0, false
	}
	return r.data[off], true
}

// Halfword reads a little-endian 16-bit value at a bus address.
func (r *Rom) Halfword(addr uint32) (uint16, bool) {
	off, ok := r.Offset(addr)
	if !ok || off+1 >= uint32(len(r.data)) {
		return 0, false
	}
	return uint16(r.data[off]) | uint16(r.data[off+1])<<8, true
}

// Word reads a little-endian 32-bit value at a bus address.
func (r *Rom) Word(addr uint32) (uint32, bool) {
	off, ok := r.Offset(addr)
	if !ok || off+3 >= uint32(len(r.data)) {
		return 0, false
	}
	return uint32(r.data[off]) | uint32(r.data[off+1])<<8 |
		uint32(r.data[off+2])<<16 | uint32(r.data[off+3])<<24, true
}

// Header holds the cartridge header fields used for identification.
type Header struct {
	Title      string
	GameCode   string
	MakerCode  string
	Checksum   byte
	ChecksumOK bool
	Entry      uint32 // branch target of the header's ARM entry instruction, 0 if undecodable
}

// Header parses the cartridge header at the start of the image.
func (r *Rom) Header() (Header, error) {
	if len(r.data) < headerSize {
		return Header{}, fmt.Errorf("parse header: image too small (%d bytes)", len(r.data))
	}
	h := Header{
		Title:     trimZero(r.data[headerTitleOff : headerTitleOff+headerTitleLen]),
		GameCode:  trimZero(r.data[headerGameCodeOff : headerGameCodeOff+headerGameCodeLen]),
		MakerCode: trimZero(r.data[headerMakerOff : headerMakerOff+headerMakerLen]),
		Checksum:  r.data[headerChecksumOff],
	}
	h.ChecksumOK = headerChecksum(r.data) == h.Checksum && r.data[headerFixedOff] == headerFixedValue
	h.Entry = r.EntryPoint()
	return h, nil
}

// headerChecksum computes the header complement check over 0xA0..0xBC.
func headerChecksum(data []byte) byte {
	var sum byte
	for _, b := range data[0xA0:0xBD] {
		sum += b
	}
	return -(sum + 0x19)
}

func trimZero(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// EntryPoint decodes the 32-bit ARM branch at the very start of the
// cartridge and returns its target, which is where execution begins
// after the header. Returns 0 if the first word is not a branch. This
// is the only ARM-mode instruction the tool ever looks at; everything
// past the entry trampoline is analyzed as THUMB.
func (r *Rom) EntryPoint() uint32 {
	if len(r.data) < 4 {
		return 0
	}
	inst, err := armasm.Decode(r.data[:4], armasm.ModeARM)
	if err != nil || inst.Op != armasm.B {
		// The header always starts with an unconditional branch.
		return 0
	}
	rel, ok := inst.Args[0].(armasm.PCRel)
	if !ok {
		return 0
	}
	// PC reads 8 bytes ahead of the instruction in ARM state.
	return uint32(int64(ROMStart) + 8 + int64(rel))
}
