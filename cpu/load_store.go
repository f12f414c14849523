// Package cpu provides functional RV64I emulation.
package cpu

import (
	"github.com/rv64emu/rv64emu/bus"
)

// LoadStoreUnit implements RV64I load and store operations. All traffic
// goes through the Bus; the unit never touches memory directly.
type LoadStoreUnit struct {
	regs *RegFile
	bus  *bus.Bus
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and bus.
func NewLoadStoreUnit(regs *RegFile, b *bus.Bus) *LoadStoreUnit {
	return &LoadStoreUnit{regs: regs, bus: b}
}

func (lsu *LoadStoreUnit) addr(rs1 uint32, offset int64) uint64 {
	return lsu.regs.ReadReg(rs1) + uint64(offset)
}

// LB loads a byte and sign-extends it: Xd = sext8(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LB(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 8)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, uint64(int64(int8(value))))
	return nil
}

// LH loads a halfword and sign-extends it: Xd = sext16(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LH(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 16)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, uint64(int64(int16(value))))
	return nil
}

// LW loads a word and sign-extends it: Xd = sext32(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LW(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 32)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, uint64(int64(int32(value))))
	return nil
}

// LD loads a doubleword: Xd = mem[Xs1 + offset]
func (lsu *LoadStoreUnit) LD(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 64)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, value)
	return nil
}

// LBU loads a byte with zero extension: Xd = zext8(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LBU(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 8)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, value)
	return nil
}

// LHU loads a halfword with zero extension: Xd = zext16(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LHU(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 16)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, value)
	return nil
}

// LWU loads a word with zero extension: Xd = zext32(mem[Xs1 + offset])
func (lsu *LoadStoreUnit) LWU(rd, rs1 uint32, offset int64) error {
	value, err := lsu.bus.Load(lsu.addr(rs1, offset), 32)
	if err != nil {
		return err
	}
	lsu.regs.WriteReg(rd, value)
	return nil
}

// SB stores the low byte of Xs2: mem[Xs1 + offset] = Xs2[7:0]
func (lsu *LoadStoreUnit) SB(rs1, rs2 uint32, offset int64) error {
	return lsu.bus.Store(lsu.addr(rs1, offset), 8, lsu.regs.ReadReg(rs2))
}

// SH stores the low halfword of Xs2: mem[Xs1 + offset] = Xs2[15:0]
func (lsu *LoadStoreUnit) SH(rs1, rs2 uint32, offset int64) error {
	return lsu.bus.Store(lsu.addr(rs1, offset), 16, lsu.regs.ReadReg(rs2))
}

// SW stores the low word of Xs2: mem[Xs1 + offset] = Xs2[31:0]
func (lsu *LoadStoreUnit) SW(rs1, rs2 uint32, offset int64) error {
	return lsu.bus.Store(lsu.addr(rs1, offset), 32, lsu.regs.ReadReg(rs2))
}

// SD stores Xs2: mem[Xs1 + offset] = Xs2
func (lsu *LoadStoreUnit) SD(rs1, rs2 uint32, offset int64) error {
	return lsu.bus.Store(lsu.addr(rs1, offset), 64, lsu.regs.ReadReg(rs2))
}
