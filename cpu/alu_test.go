package cpu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rv64emu/rv64emu/cpu"
)

var _ = Describe("ALU", func() {
	var (
		regs *cpu.RegFile
		alu  *cpu.ALU
	)

	BeforeEach(func() {
		regs = &cpu.RegFile{}
		alu = cpu.NewALU(regs)
	})

	Describe("immediate arithmetic", func() {
		It("adds a negative immediate", func() {
			regs.WriteReg(1, 10)
			alu.ADDI(2, 1, -3)
			Expect(regs.ReadReg(2)).To(Equal(uint64(7)))
		})

		It("distinguishes signed and unsigned set-less-than", func() {
			regs.WriteReg(1, 0xFFFFFFFFFFFFFFFF) // -1 signed, max unsigned
			alu.SLTI(2, 1, 0)
			alu.SLTIU(3, 1, 0)
			Expect(regs.ReadReg(2)).To(Equal(uint64(1)))
			Expect(regs.ReadReg(3)).To(Equal(uint64(0)))
		})

		It("shifts right logically and arithmetically", func() {
			regs.WriteReg(1, 0x8000000000000000)
			alu.SRLI(2, 1, 63)
			alu.SRAI(3, 1, 63)
			Expect(regs.ReadReg(2)).To(Equal(uint64(1)))
			Expect(regs.ReadReg(3)).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
		})
	})

	Describe("word-sized immediate arithmetic", func() {
		It("sign-extends the 32-bit ADDIW result", func() {
			regs.WriteReg(1, 0x7FFFFFFF)
			alu.ADDIW(2, 1, 1)
			Expect(regs.ReadReg(2)).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("operates on the low 32 bits only", func() {
			regs.WriteReg(1, 0xAAAAAAAA00000001)
			alu.ADDIW(2, 1, 1)
			Expect(regs.ReadReg(2)).To(Equal(uint64(2)))
		})

		It("sign-extends SLLIW when the shift sets bit 31", func() {
			regs.WriteReg(1, 1)
			alu.SLLIW(2, 1, 31)
			Expect(regs.ReadReg(2)).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("shifts words right logically and arithmetically", func() {
			regs.WriteReg(1, 0x80000000)
			alu.SRLIW(2, 1, 31)
			alu.SRAIW(3, 1, 31)
			Expect(regs.ReadReg(2)).To(Equal(uint64(1)))
			Expect(regs.ReadReg(3)).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
		})
	})

	Describe("register arithmetic", func() {
		It("adds and subtracts", func() {
			regs.WriteReg(1, 30)
			regs.WriteReg(2, 12)
			alu.ADD(3, 1, 2)
			alu.SUB(4, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(42)))
			Expect(regs.ReadReg(4)).To(Equal(uint64(18)))
		})

		It("takes the shift amount modulo 64 from rs2", func() {
			regs.WriteReg(1, 1)
			regs.WriteReg(2, 64+3)
			alu.SLL(3, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(8)))
		})

		It("multiplies keeping the low 64 bits", func() {
			regs.WriteReg(1, 0xFFFFFFFFFFFFFFFF) // -1
			regs.WriteReg(2, 3)
			alu.MUL(3, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(0xFFFFFFFFFFFFFFFD)))
		})

		It("compares signed and unsigned", func() {
			regs.WriteReg(1, 0xFFFFFFFFFFFFFFFF) // -1 signed
			regs.WriteReg(2, 1)
			alu.SLT(3, 1, 2)
			alu.SLTU(4, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(1)))
			Expect(regs.ReadReg(4)).To(Equal(uint64(0)))
		})
	})

	Describe("word-sized register arithmetic", func() {
		It("sign-extends ADDW overflow", func() {
			regs.WriteReg(1, 0x7FFFFFFF)
			regs.WriteReg(2, 1)
			alu.ADDW(3, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(0xFFFFFFFF80000000)))
		})

		It("takes the word shift amount modulo 32 from rs2", func() {
			regs.WriteReg(1, 1)
			regs.WriteReg(2, 32+4)
			alu.SLLW(3, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(16)))
		})

		It("shifts words right arithmetically", func() {
			regs.WriteReg(1, 0x80000000)
			regs.WriteReg(2, 31)
			alu.SRAW(3, 1, 2)
			Expect(regs.ReadReg(3)).To(Equal(uint64(0xFFFFFFFFFFFFFFFF)))
		})
	})

	Describe("upper-immediate", func() {
		It("LUI writes the sign-extended U-immediate", func() {
			alu.LUI(1, 0x12345000)
			Expect(regs.ReadReg(1)).To(Equal(uint64(0x12345000)))

			alu.LUI(2, -4096) // imm20 = 0xFFFFF
			Expect(regs.ReadReg(2)).To(Equal(uint64(0xFFFFFFFFFFFFF000)))
		})

		It("AUIPC adds the U-immediate to the instruction address", func() {
			alu.AUIPC(1, 0x80000004, 0x1000)
			Expect(regs.ReadReg(1)).To(Equal(uint64(0x80001004)))
		})
	})
})
