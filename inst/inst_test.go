package inst_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv64emu/rv64emu/inst"
)

var _ = Describe("Decode", func() {
	Describe("fixed bit fields", func() {
		It("extracts opcode, rd, funct3, rs1, rs2, funct7", func() {
			// addi x2, x1, 37 -> 0x02508113
			d := inst.Decode(0x02508113)
			Expect(d.Opcode).To(Equal(uint32(0x13)))
			Expect(d.Rd).To(Equal(uint32(2)))
			Expect(d.Funct3).To(Equal(uint32(0)))
			Expect(d.Rs1).To(Equal(uint32(1)))
			Expect(d.Rs2).To(Equal(uint32(0x25 & 0x1f)))
			Expect(d.Funct7).To(Equal(uint32(0x02508113) >> 25))
		})
	})

	Describe("I-immediate", func() {
		It("decodes a small positive immediate", func() {
			// addi x1, x0, 5 -> 0x00500093
			Expect(inst.Decode(0x00500093).ImmI).To(Equal(int64(5)))
		})

		It("sign-extends a negative immediate", func() {
			// addi x1, x0, -1 -> imm12 = 0xFFF
			word := uint32(0xFFF00093)
			Expect(inst.Decode(word).ImmI).To(Equal(int64(-1)))
		})
	})

	Describe("S-immediate", func() {
		It("reassembles the split high/low fields", func() {
			// sd x1, 0(x2): imm=0 -> 0x00113023
			Expect(inst.Decode(0x00113023).ImmS).To(Equal(int64(0)))
		})

		It("sign-extends a negative S-immediate", func() {
			// sb x1, -1(x2): funct7=1111111, rs2=1, rs1=2, funct3=0, rd(imm_lo)=11111
			word := uint32(0b1111111_00001_00010_000_11111_0100011)
			Expect(inst.Decode(word).ImmS).To(Equal(int64(-1)))
		})
	})

	Describe("B-immediate", func() {
		It("decodes a forward branch offset with bit0 always zero", func() {
			// beq x1, x1, +8 -> 0x00108463
			Expect(inst.Decode(0x00108463).ImmB).To(Equal(int64(8)))
		})

		It("sign-extends a negative branch offset", func() {
			// a loop-back branch: construct bits so the reconstructed
			// 13-bit immediate is -8 (b12=1,b11=1,b10_5=111111,b4_1=1100)
			word := uint32(1<<31 | 1<<7 | 0x3f<<25 | 0xc<<8)
			Expect(inst.Decode(word).ImmB).To(Equal(int64(-8)))
		})
	})

	Describe("U-immediate", func() {
		It("places imm[31:12] in the top bits and zeros the low 12", func() {
			// lui x5, 0x12345 -> 0x123452B7
			Expect(inst.Decode(0x123452B7).ImmU).To(Equal(int64(0x12345000)))
		})

		It("sign-extends when bit 31 is set", func() {
			word := uint32(0xFFFFF2B7) // imm20 = 0xFFFFF
			Expect(inst.Decode(word).ImmU).To(Equal(int64(-4096)))
		})
	})

	Describe("J-immediate", func() {
		It("decodes a forward jump offset with bit0 always zero", func() {
			// jal x1, +8 -> 0x008000EF
			Expect(inst.Decode(0x008000EF).ImmJ).To(Equal(int64(8)))
		})

		It("sign-extends a negative jump offset", func() {
			// jal x0, -8 -> 0xFF9FF06F
			Expect(inst.Decode(0xFF9FF06F).ImmJ).To(Equal(int64(-8)))
		})
	})

	Describe("Shamt6/Shamt5", func() {
		It("masks the I-immediate to 6 bits for RV64 shift-immediate", func() {
			// slli x1, x1, 63 -> imm12 = 0x03F (funct7=000000, shamt=111111)
			word := uint32(0b000000_111111_00001_001_00001_0010011)
			Expect(inst.Decode(word).Shamt6()).To(Equal(uint32(63)))
		})

		It("masks the I-immediate to 5 bits for the *iw shift variants", func() {
			word := uint32(0b0000000_11111_00001_001_00001_0011011)
			Expect(inst.Decode(word).Shamt5()).To(Equal(uint32(31)))
		})
	})
})
