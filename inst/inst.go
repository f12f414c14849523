// Package inst decodes RV64I/M instruction words into their constituent
// bit fields and reconstructed immediates. It has no knowledge of opcode
// semantics; cpu.Execute interprets the fields this package extracts.
package inst

// Instruction is a single tagged decode result covering every RV64I/M
// encoding format (R, I, S, B, U, J). Every field below is always
// populated, including all five immediate reconstructions ImmI..ImmJ;
// which of them applies is a function of Opcode, decided by the caller.
type Instruction struct {
	Raw    uint32
	Opcode uint32
	Rd     uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
	Funct7 uint32

	ImmI int64
	ImmS int64
	ImmB int64
	ImmU int64
	ImmJ int64
}

// Decode extracts every fixed bit field and every immediate-format
// reconstruction from a 32-bit instruction word, per the RV64 encoding
// tables. Callers pick whichever ImmX applies to the decoded opcode.
func Decode(word uint32) Instruction {
	return Instruction{
		Raw:    word,
		Opcode: word & 0x7f,
		Rd:     (word >> 7) & 0x1f,
		Funct3: (word >> 12) & 0x7,
		Rs1:    (word >> 15) & 0x1f,
		Rs2:    (word >> 20) & 0x1f,
		Funct7: (word >> 25) & 0x7f,

		ImmI: immI(word),
		ImmS: immS(word),
		ImmB: immB(word),
		ImmU: immU(word),
		ImmJ: immJ(word),
	}
}

// sext sign-extends the low n bits of v to 64 bits.
func sext(v uint64, n uint) int64 {
	shift := 64 - n
	return int64(v<<shift) >> shift
}

// immI reconstructs the I-type immediate: sext(inst[31:20]).
func immI(word uint32) int64 {
	return sext(uint64(word>>20), 12)
}

// immS reconstructs the S-type immediate: sext({inst[31:25], inst[11:7]}).
func immS(word uint32) int64 {
	hi := (word >> 25) & 0x7f
	lo := (word >> 7) & 0x1f
	return sext(uint64(hi<<5|lo), 12)
}

// immB reconstructs the B-type immediate:
// sext({inst[31], inst[7], inst[30:25], inst[11:8], 0}).
func immB(word uint32) int64 {
	b11 := (word >> 7) & 0x1
	b4_1 := (word >> 8) & 0xf
	b10_5 := (word >> 25) & 0x3f
	b12 := (word >> 31) & 0x1
	v := b12<<12 | b11<<11 | b10_5<<5 | b4_1<<1
	return sext(uint64(v), 13)
}

// immU reconstructs the U-type immediate: sext(inst[31:12] << 12).
func immU(word uint32) int64 {
	return sext(uint64(word&0xfffff000), 32)
}

// immJ reconstructs the J-type immediate:
// sext({inst[31], inst[19:12], inst[20], inst[30:21], 0}).
func immJ(word uint32) int64 {
	b19_12 := (word >> 12) & 0xff
	b11 := (word >> 20) & 0x1
	b10_1 := (word >> 21) & 0x3ff
	b20 := (word >> 31) & 0x1
	v := b20<<20 | b19_12<<12 | b11<<11 | b10_1<<1
	return sext(uint64(v), 21)
}

// Shamt6 returns the low 6 bits of the I-immediate, for RV64 shift-by-
// immediate instructions (SLLI/SRLI/SRAI).
func (i Instruction) Shamt6() uint32 {
	return uint32(i.ImmI) & 0x3f
}

// Shamt5 returns the low 5 bits of the I-immediate, for the word-sized
// shift-by-immediate variants (SLLIW/SRLIW/SRAIW).
func (i Instruction) Shamt5() uint32 {
	return uint32(i.ImmI) & 0x1f
}
