package thumb

import "romscope/internal/rom"

// Long branch halfword patterns. The high half carries the sign bit
// and upper 11 bits of the offset, the low half the lower 11 bits.
const (
	longBranchHighMask = 0xF800
	longBranchHigh     = 0xF000
	longBranchLowBL    = 0xF800
	longBranchLowBLX   = 0xE800
)

// Decode decodes the instruction at addr. It is a pure function of
// its inputs and never mutates the image. Misaligned requests, reads
// past the image, and halfwords outside the defined formats all come
// back as *Unknown so a scan can keep advancing; nothing here panics.
func Decode(r *rom.Rom, addr uint32) Inst {
	if addr&1 != 0 {
		// THUMB bit still set, or genuinely odd: refuse to read
		// garbage and let the caller align.
		return &Unknown{base{addr, 0}}
	}
	raw, ok := r.Halfword(addr)
	if !ok {
		return &Unknown{base{addr, 0}}
	}
	return decodeHalfword(r, addr, raw)
}

// decodeHalfword classifies raw by its top bits. The nesting mirrors
// the format map of the encoding: narrower patterns are tested before
// the wider ones they overlap with (add/sub before move-shifted,
// adjust-sp before push/pop, swi before conditional branch).
func decodeHalfword(r *rom.Rom, addr uint32, raw uint16) Inst {
	b := base{addr, raw}

	switch raw >> 13 {
	case 0: // 000: shift by immediate, or add/subtract
		if raw&0x1800 == 0x1800 {
			n := &AddSub{base: b}
			n.Rd = uint8(raw & 7)
			n.Rs = uint8((raw >> 3) & 7)
			n.Val = uint8((raw >> 6) & 7)
			n.Sub = raw&0x0200 != 0
			n.Imm = raw&0x0400 != 0
			return n
		}
		return &MoveShifted{
			base: b,
			Op:   uint8((raw >> 11) & 3),
			Rd:   uint8(raw & 7),
			Rs:   uint8((raw >> 3) & 7),
			Imm:  uint8((raw >> 6) & 0x1f),
		}

	case 1: // 001: move/compare/add/subtract immediate
		return &MoveCompareImm{
			base: b,
			Op:   uint8((raw >> 11) & 3),
			Rd:   uint8((raw >> 8) & 7),
			Imm:  uint8(raw & 0xff),
		}

	case 2: // 010: ALU, hi-register, pc-relative load, load/store register
		switch {
		case raw&0xFC00 == 0x4000:
			return &ALU{
				base: b,
				Op:   uint8((raw >> 6) & 0xf),
				Rd:   uint8(raw & 7),
				Rs:   uint8((raw >> 3) & 7),
			}
		case raw&0xFC00 == 0x4400:
			n := &HiReg{base: b, Op: uint8((raw >> 8) & 3)}
			n.Rd = uint8(raw & 7)
			if raw&0x0080 != 0 {
				n.Rd += 8
			}
			n.Rs = uint8((raw >> 3) & 7)
			if raw&0x0040 != 0 {
				n.Rs += 8
			}
			return n
		case raw&0xF800 == 0x4800:
			return &PCRelLoad{
				base: b,
				Rd:   uint8((raw >> 8) & 7),
				Imm:  uint8(raw & 0xff),
			}
		case raw&0x0200 == 0:
			return &LoadStoreReg{
				base: b,
				Load: raw&0x0800 != 0,
				Byte: raw&0x0400 != 0,
				Rd:   uint8(raw & 7),
				Rb:   uint8((raw >> 3) & 7),
				Ro:   uint8((raw >> 6) & 7),
			}
		default:
			return &LoadStoreSignExt{
				base: b,
				H:    raw&0x0800 != 0,
				Sign: raw&0x0400 != 0,
				Rd:   uint8(raw & 7),
				Rb:   uint8((raw >> 3) & 7),
				Ro:   uint8((raw >> 6) & 7),
			}
		}

	case 3: // 011: load/store with immediate offset
		return &LoadStoreImm{
			base: b,
			Load: raw&0x0800 != 0,
			Byte: raw&0x1000 != 0,
			Rd:   uint8(raw & 7),
			Rb:   uint8((raw >> 3) & 7),
			Imm:  uint8((raw >> 6) & 0x1f),
		}

	case 4: // 100: halfword and sp-relative load/store
		if raw&0x1000 == 0 {
			return &LoadStoreHalf{
				base: b,
				Load: raw&0x0800 != 0,
				Rd:   uint8(raw & 7),
				Rb:   uint8((raw >> 3) & 7),
				Imm:  uint8((raw >> 6) & 0x1f),
			}
		}
		return &SPRelLoadStore{
			base: b,
			Load: raw&0x0800 != 0,
			Rd:   uint8((raw >> 8) & 7),
			Imm:  uint8(raw & 0xff),
		}

	case 5: // 101: load address, sp adjust, push/pop
		if raw&0x1000 == 0 {
			return &LoadAddress{
				base: b,
				SP:   raw&0x0800 != 0,
				Rd:   uint8((raw >> 8) & 7),
				Imm:  uint8(raw & 0xff),
			}
		}
		switch {
		case raw&0xFF00 == 0xB000:
			return &AdjustSP{
				base: b,
				Neg:  raw&0x0080 != 0,
				Imm:  uint8(raw & 0x7f),
			}
		case raw&0xF600 == 0xB400:
			return &PushPop{
				base: b,
				Load: raw&0x0800 != 0,
				PCLR: raw&0x0100 != 0,
				Regs: uint8(raw & 0xff),
			}
		default:
			// BKPT, CPS and the other 0xBxxx gaps are not ARMv4T.
			return &Unknown{b}
		}

	case 6: // 110: multiple load/store, conditional branch, swi
		if raw&0x1000 == 0 {
			return &MultipleLoadStore{
				base: b,
				Load: raw&0x0800 != 0,
				Rb:   uint8((raw >> 8) & 7),
				Regs: uint8(raw & 0xff),
			}
		}
		cond := uint8((raw >> 8) & 0xf)
		switch cond {
		case 0xf:
			return &SWI{base: b, Comment: uint8(raw & 0xff)}
		case 0xe:
			// The always-condition slot is an undefined encoding.
			return &Unknown{b}
		default:
			return &CondBranch{
				base: b,
				Cond: cond,
				Off:  signExtend(uint32(raw&0xff), 8) * 2,
			}
		}

	default: // 111: unconditional branch and the long branch pair
		switch raw & longBranchHighMask {
		case 0xE000:
			return &Branch{
				base: b,
				Off:  signExtend(uint32(raw&0x7ff), 11) * 2,
			}
		case longBranchHigh:
			return decodeLongBranch(r, addr, raw)
		default:
			// A low halfword (0xE800 or 0xF800 pattern) on its own is
			// only meaningful as the tail of a pair.
			return &Unknown{b}
		}
	}
}

// decodeLongBranch pairs a BL/BLX high halfword with the following
// halfword. It fails closed: when the next halfword is missing or is
// not a valid low half, only the high halfword is consumed and it is
// reported as unrecognized rather than paired with unrelated bytes.
func decodeLongBranch(r *rom.Rom, addr uint32, hi uint16) Inst {
	lo, ok := r.Halfword(addr + 2)
	if !ok {
		return &Unknown{base{addr, hi}}
	}
	var exch bool
	switch lo & longBranchHighMask {
	case longBranchLowBL:
		exch = false
	case longBranchLowBLX:
		exch = true
	default:
		return &Unknown{base{addr, hi}}
	}
	// The combined halfword offset is (hi11 << 11) | lo11; the sign
	// lives in bit 21 and must be extended over the full 22-bit field,
	// not over the high half alone.
	field := uint32(hi&0x7ff)<<11 | uint32(lo&0x7ff)
	return &LongBranch{
		base:  base{addr, hi},
		RawLo: lo,
		Exch:  exch,
		Off:   signExtend(field, 22) * 2,
	}
}

// signExtend interprets the low bits of val as a signed two's
// complement quantity.
func signExtend(val uint32, bits int) int32 {
	sign := uint32(1) << (bits - 1)
	mask := sign - 1
	if val&sign != 0 {
		return int32(val | ^mask)
	}
	return int32(val & mask)
}
