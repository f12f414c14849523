// Package cpu provides functional RV64I emulation.
package cpu

// BranchUnit implements RV64I branch and jump operations.
//
// Every method takes the address of the branch instruction itself (pc)
// explicitly; fetch has already advanced the architectural PC past the
// instruction, so the caller passes the pre-advance value and installs
// the returned target as the new PC.
type BranchUnit struct {
	regs *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regs *RegFile) *BranchUnit {
	return &BranchUnit{regs: regs}
}

// BEQ branches to pc+offset if Xs1 == Xs2, else falls through to pc+4.
func (b *BranchUnit) BEQ(rs1, rs2 uint32, pc uint64, offset int64) uint64 {
	return b.cond(b.regs.ReadReg(rs1) == b.regs.ReadReg(rs2), pc, offset)
}

// BNE branches to pc+offset if Xs1 != Xs2.
func (b *BranchUnit) BNE(rs1, rs2 uint32, pc uint64, offset int64) uint64 {
	return b.cond(b.regs.ReadReg(rs1) != b.regs.ReadReg(rs2), pc, offset)
}

// BLT branches to pc+offset if Xs1 <s Xs2 (signed compare).
func (b *BranchUnit) BLT(rs1, rs2 uint32, pc uint64, offset int64) uint64 {
	return b.cond(int64(b.regs.ReadReg(rs1)) < int64(b.regs.ReadReg(rs2)), pc, offset)
}

// BGE branches to pc+offset if Xs1 >=s Xs2 (signed compare).
func (b *BranchUnit) BGE(rs1, rs2 uint32, pc uint64, offset int64) uint64 {
	return b.cond(int64(b.regs.ReadReg(rs1)) >= int64(b.regs.ReadReg(rs2)), pc, offset)
}

// BLTU branches to pc+offset if Xs1 <u Xs2 (unsigned compare).
func (b *BranchUnit) BLTU(rs1, rs2 uint32, pc uint64, offset int64) uint64 {
	return b.cond(b.regs.ReadReg(rs1) < b.regs.ReadReg(rs2), pc, offset)
}

// BGEU branches to pc+offset if Xs1 >=u Xs2 (unsigned compare).
func (b *BranchUnit) BGEU(rs1, rs2 uint32, pc uint64, offset int64) uint64 {
	return b.cond(b.regs.ReadReg(rs1) >= b.regs.ReadReg(rs2), pc, offset)
}

// JAL saves the return address pc+4 to Xd and jumps to pc+offset.
func (b *BranchUnit) JAL(rd uint32, pc uint64, offset int64) uint64 {
	b.regs.WriteReg(rd, pc+4)
	return pc + uint64(offset)
}

// JALR saves the return address pc+4 to Xd and jumps to (Xs1 + imm)
// with the low bit cleared. The target is read before the link register
// is written so rd == rs1 behaves per the ISA.
func (b *BranchUnit) JALR(rd, rs1 uint32, pc uint64, imm int64) uint64 {
	target := (b.regs.ReadReg(rs1) + uint64(imm)) &^ 1
	b.regs.WriteReg(rd, pc+4)
	return target
}

func (b *BranchUnit) cond(taken bool, pc uint64, offset int64) uint64 {
	if taken {
		return pc + uint64(offset)
	}
	return pc + 4
}
