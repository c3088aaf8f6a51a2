// Package thumb decodes the 16-bit THUMB instruction encoding of the
// ARM7TDMI. Each of the defined instruction formats gets its own
// variant type so downstream passes can type-switch exhaustively.
package thumb

import (
	"fmt"
	"strings"
)

// Inst is one decoded instruction. Long branches span two halfwords
// and report Size 4; everything else is 2 bytes.
type Inst interface {
	fmt.Stringer
	Addr() uint32 // address the instruction was decoded at, THUMB bit cleared
	Raw() uint16  // first (or only) halfword
	Size() int    // byte length: 2, or 4 for a long branch pair
}

type base struct {
	addr uint32
	raw  uint16
}

func (b base) Addr() uint32 { return b.addr }
func (b base) Raw() uint16  { return b.raw }
func (b base) Size() int    { return 2 }

// Unknown is any halfword that does not match a defined format,
// including a long-branch high halfword with no matching low half.
// It always advances 2 bytes so scans can continue.
type Unknown struct {
	base
}

func (n *Unknown) String() string {
	return fmt.Sprintf(".hword 0x%04x", n.raw)
}

// MoveShifted is LSL/LSR/ASR Rd, Rs, #imm5.
type MoveShifted struct {
	base
	Op  uint8 // 0=lsl 1=lsr 2=asr
	Rd  uint8
	Rs  uint8
	Imm uint8 // 5-bit shift amount
}

func (n *MoveShifted) String() string {
	ops := [3]string{"lsl", "lsr", "asr"}
	return fmt.Sprintf("%s r%d, r%d, #%d", ops[n.Op], n.Rd, n.Rs, n.Imm)
}

// AddSub is ADD/SUB Rd, Rs, Rn or ADD/SUB Rd, Rs, #imm3.
type AddSub struct {
	base
	Sub bool
	Imm bool // immediate form
	Rd  uint8
	Rs  uint8
	Val uint8 // Rn or 3-bit immediate
}

func (n *AddSub) String() string {
	op := "add"
	if n.Sub {
		op = "sub"
	}
	if n.Imm {
		return fmt.Sprintf("%s r%d, r%d, #%d", op, n.Rd, n.Rs, n.Val)
	}
	return fmt.Sprintf("%s r%d, r%d, r%d", op, n.Rd, n.Rs, n.Val)
}

// MoveCompareImm is MOV/CMP/ADD/SUB Rd, #imm8.
type MoveCompareImm struct {
	base
	Op  uint8 // 0=mov 1=cmp 2=add 3=sub
	Rd  uint8
	Imm uint8
}

func (n *MoveCompareImm) String() string {
	ops := [4]string{"mov", "cmp", "add", "sub"}
	return fmt.Sprintf("%s r%d, #%d", ops[n.Op], n.Rd, n.Imm)
}

// ALU is the register-to-register ALU operation format.
type ALU struct {
	base
	Op uint8 // 4-bit ALU opcode
	Rd uint8
	Rs uint8
}

var aluNames = [16]string{
	"and", "eor", "lsl", "lsr", "asr", "adc", "sbc", "ror",
	"tst", "neg", "cmp", "cmn", "orr", "mul", "bic", "mvn",
}

func (n *ALU) String() string {
	return fmt.Sprintf("%s r%d, r%d", aluNames[n.Op&0xf], n.Rd, n.Rs)
}

// HiReg is ADD/CMP/MOV involving high registers, and BX.
type HiReg struct {
	base
	Op uint8 // 0=add 1=cmp 2=mov 3=bx
	Rd uint8 // full 4-bit register number
	Rs uint8
}

// IsBX reports whether this is a branch-exchange.
func (n *HiReg) IsBX() bool { return n.Op == 3 }

// IsReturn reports whether this is BX LR, the register-return idiom
// used as a function epilogue.
func (n *HiReg) IsReturn() bool { return n.IsBX() && n.Rs == 14 }

func (n *HiReg) String() string {
	if n.IsBX() {
		return fmt.Sprintf("bx %s", regName(n.Rs))
	}
	ops := [3]string{"add", "cmp", "mov"}
	return fmt.Sprintf("%s %s, %s", ops[n.Op], regName(n.Rd), regName(n.Rs))
}

// PCRelLoad is LDR Rd, [pc, #imm8*4], the literal pool load.
type PCRelLoad struct {
	base
	Rd  uint8
	Imm uint8 // word offset from the aligned pc
}

// PoolAddr computes the address of the referenced pool slot. The pc
// value is the instruction address plus 4, word-aligned; the rounding
// matters when the instruction itself sits at a mod-4 = 2 address.
func (n *PCRelLoad) PoolAddr() uint32 {
	return ((n.addr + 4) &^ 3) + uint32(n.Imm)*4
}

func (n *PCRelLoad) String() string {
	return fmt.Sprintf("ldr r%d, [pc, #%d]", n.Rd, uint32(n.Imm)*4)
}

// LoadStoreReg is LDR/STR/LDRB/STRB Rd, [Rb, Ro].
type LoadStoreReg struct {
	base
	Load bool
	Byte bool
	Rd   uint8
	Rb   uint8
	Ro   uint8
}

func (n *LoadStoreReg) String() string {
	return fmt.Sprintf("%s r%d, [r%d, r%d]", loadStoreOp(n.Load, n.Byte), n.Rd, n.Rb, n.Ro)
}

// LoadStoreSignExt is STRH/LDRH/LDSB/LDSH Rd, [Rb, Ro].
type LoadStoreSignExt struct {
	base
	H    bool
	Sign bool
	Rd   uint8
	Rb   uint8
	Ro   uint8
}

func (n *LoadStoreSignExt) String() string {
	var op string
	switch {
	case n.Sign && n.H:
		op = "ldsh"
	case n.Sign:
		op = "ldsb"
	case n.H:
		op = "ldrh"
	default:
		op = "strh"
	}
	return fmt.Sprintf("%s r%d, [r%d, r%d]", op, n.Rd, n.Rb, n.Ro)
}

// LoadStoreImm is LDR/STR/LDRB/STRB Rd, [Rb, #imm].
type LoadStoreImm struct {
	base
	Load bool
	Byte bool
	Rd   uint8
	Rb   uint8
	Imm  uint8 // raw 5-bit offset, words for word access
}

func (n *LoadStoreImm) String() string {
	off := uint32(n.Imm)
	if !n.Byte {
		off <<= 2
	}
	return fmt.Sprintf("%s r%d, [r%d, #%d]", loadStoreOp(n.Load, n.Byte), n.Rd, n.Rb, off)
}

// LoadStoreHalf is LDRH/STRH Rd, [Rb, #imm5*2].
type LoadStoreHalf struct {
	base
	Load bool
	Rd   uint8
	Rb   uint8
	Imm  uint8
}

func (n *LoadStoreHalf) String() string {
	op := "strh"
	if n.Load {
		op = "ldrh"
	}
	return fmt.Sprintf("%s r%d, [r%d, #%d]", op, n.Rd, n.Rb, uint32(n.Imm)*2)
}

// SPRelLoadStore is LDR/STR Rd, [sp, #imm8*4].
type SPRelLoadStore struct {
	base
	Load bool
	Rd   uint8
	Imm  uint8
}

func (n *SPRelLoadStore) String() string {
	op := "str"
	if n.Load {
		op = "ldr"
	}
	return fmt.Sprintf("%s r%d, [sp, #%d]", op, n.Rd, uint32(n.Imm)*4)
}

// LoadAddress is ADD Rd, pc|sp, #imm8*4.
type LoadAddress struct {
	base
	SP  bool
	Rd  uint8
	Imm uint8
}

func (n *LoadAddress) String() string {
	src := "pc"
	if n.SP {
		src = "sp"
	}
	return fmt.Sprintf("add r%d, %s, #%d", n.Rd, src, uint32(n.Imm)*4)
}

// AdjustSP is ADD SP, #±imm7*4.
type AdjustSP struct {
	base
	Neg bool
	Imm uint8 // 7-bit word count
}

func (n *AdjustSP) String() string {
	off := int32(n.Imm) * 4
	if n.Neg {
		off = -off
	}
	return fmt.Sprintf("add sp, #%d", off)
}

// PushPop is PUSH {..[,lr]} / POP {..[,pc]}.
type PushPop struct {
	base
	Load bool  // pop
	PCLR bool  // lr pushed / pc popped
	Regs uint8 // r0-r7 bitmap
}

// IsPrologue reports whether this is a PUSH that saves the link
// register, the canonical function entry.
func (n *PushPop) IsPrologue() bool { return !n.Load && n.PCLR }

// IsEpilogue reports whether this is a POP that restores the program
// counter, the canonical function return.
func (n *PushPop) IsEpilogue() bool { return n.Load && n.PCLR }

func (n *PushPop) String() string {
	list := regListString(n.Regs)
	extra := ""
	if n.PCLR {
		extra = "lr"
		if n.Load {
			extra = "pc"
		}
		if list != "" {
			extra = ", " + extra
		}
	}
	op := "push"
	if n.Load {
		op = "pop"
	}
	return fmt.Sprintf("%s {%s%s}", op, list, extra)
}

// MultipleLoadStore is LDMIA/STMIA Rb!, {regs}.
type MultipleLoadStore struct {
	base
	Load bool
	Rb   uint8
	Regs uint8
}

func (n *MultipleLoadStore) String() string {
	op := "stmia"
	if n.Load {
		op = "ldmia"
	}
	return fmt.Sprintf("%s r%d!, {%s}", op, n.Rb, regListString(n.Regs))
}

// CondBranch is B<cond> with a signed 8-bit halfword offset.
type CondBranch struct {
	base
	Cond uint8
	Off  int32 // signed byte offset already doubled
}

// Target returns the absolute branch destination.
func (n *CondBranch) Target() uint32 {
	return uint32(int64(n.addr) + 4 + int64(n.Off))
}

// Conditions 14 and 15 never reach CondBranch; the decoder rejects
// the former and routes the latter to SWI.
var condNames = [16]string{
	"eq", "ne", "cs", "cc", "mi", "pl", "vs", "vc",
	"hi", "ls", "ge", "lt", "gt", "le", "al", "nv",
}

func (n *CondBranch) String() string {
	return fmt.Sprintf("b%s 0x%08x", condNames[n.Cond&0xf], n.Target())
}

// SWI is the software interrupt (BIOS call) instruction.
type SWI struct {
	base
	Comment uint8
}

func (n *SWI) String() string {
	return fmt.Sprintf("swi %d", n.Comment)
}

// Branch is the unconditional branch with a signed 11-bit halfword
// offset.
type Branch struct {
	base
	Off int32 // signed byte offset already doubled
}

// Target returns the absolute branch destination.
func (n *Branch) Target() uint32 {
	return uint32(int64(n.addr) + 4 + int64(n.Off))
}

func (n *Branch) String() string {
	return fmt.Sprintf("b 0x%08x", n.Target())
}

// LongBranch is the two-halfword BL/BLX call. Decoding consumes both
// halfwords atomically; the pair is a single 4-byte instruction.
type LongBranch struct {
	base
	RawLo uint16 // second halfword
	Exch  bool   // BLX: target executes in ARM state
	Off   int32  // sign-extended 22-bit byte offset
}

func (n *LongBranch) Size() int { return 4 }

// Target returns the absolute call destination. For BLX the result is
// word-aligned as the CPU does.
func (n *LongBranch) Target() uint32 {
	t := uint32(int64(n.addr) + 4 + int64(n.Off))
	if n.Exch {
		t &^= 3
	}
	return t
}

func (n *LongBranch) String() string {
	op := "bl"
	if n.Exch {
		op = "blx"
	}
	return fmt.Sprintf("%s 0x%08x", op, n.Target())
}

func loadStoreOp(load, byteQ bool) string {
	op := "str"
	if load {
		op = "ldr"
	}
	if byteQ {
		op += "b"
	}
	return op
}

func regName(r uint8) string {
	switch r {
	case 13:
		return "sp"
	case 14:
		return "lr"
	case 15:
		return "pc"
	default:
		return fmt.Sprintf("r%d", r)
	}
}

// regListString renders a r0-r7 bitmap as "r0-r3, r5" range notation.
func regListString(bits uint8) string {
	var parts []string
	run := -1
	for i := 0; i <= 8; i++ {
		set := i < 8 && bits&(1<<i) != 0
		if set && run < 0 {
			run = i
		}
		if !set && run >= 0 {
			if run == i-1 {
				parts = append(parts, fmt.Sprintf("r%d", run))
			} else {
				parts = append(parts, fmt.Sprintf("r%d-r%d", run, i-1))
			}
			run = -1
		}
	}
	return strings.Join(parts, ", ")
}
