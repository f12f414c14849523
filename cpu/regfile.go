// Package cpu provides functional RV64I emulation.
package cpu

// RegFile represents the RV64 integer register file.
// It contains 32 general-purpose registers X0-X31.
// X[0] is hardwired to zero: reads return 0 and writes are discarded.
type RegFile struct {
	X [32]uint64
}

// ReadReg reads a register value. Register 0 returns 0.
func (r *RegFile) ReadReg(reg uint32) uint64 {
	if reg == 0 {
		return 0
	}
	return r.X[reg&0x1f]
}

// WriteReg writes a value to a register. Writes to register 0 are ignored.
func (r *RegFile) WriteReg(reg uint32, value uint64) {
	if reg == 0 {
		return
	}
	r.X[reg&0x1f] = value
}

// ABINames maps register indices to their RISC-V ABI mnemonics, for
// diagnostic register listings.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}
