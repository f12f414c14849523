// Package cpu provides functional RV64I emulation.
package cpu

import (
	"fmt"
	"io"

	"github.com/rv64emu/rv64emu/bus"
	"github.com/rv64emu/rv64emu/inst"
	"github.com/rv64emu/rv64emu/mem"
)

// Major opcodes of the supported RV64I/M subset.
const (
	opLoad    = 0x03
	opImm     = 0x13
	opAUIPC   = 0x17
	opImmWord = 0x1b
	opStore   = 0x23
	opReg     = 0x33
	opLUI     = 0x37
	opRegWord = 0x3b
	opBranch  = 0x63
	opJALR    = 0x67
	opJAL     = 0x6f
	opSystem  = 0x73
)

// ErrDecode indicates an opcode, funct3, or funct7 outside the
// supported instruction set.
var ErrDecode = fmt.Errorf("cpu: unsupported instruction")

// CPU holds the architectural state of one RV64 hart and drives the
// fetch/execute cycle. It owns the bus; all memory traffic goes
// through it.
type CPU struct {
	// PC is the program counter.
	PC uint64

	// Regs is the integer register file.
	Regs *RegFile

	// CSRs is the control-and-status register file.
	CSRs *CSRFile

	// Bus routes loads and stores to guest memory.
	Bus *bus.Bus

	// Execution units
	alu    *ALU
	branch *BranchUnit
	lsu    *LoadStoreUnit

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// Option is a functional option for configuring the CPU.
type Option func(*CPU)

// WithStackTop sets the initial stack pointer (x2) value.
func WithStackTop(sp uint64) Option {
	return func(c *CPU) {
		c.Regs.WriteReg(2, sp)
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) Option {
	return func(c *CPU) {
		c.maxInstructions = max
	}
}

// New creates a CPU with image loaded at the start of a fresh guest
// memory. The PC starts at mem.Base and the stack pointer at the top
// of RAM. An image larger than mem.Size is a load error.
func New(image []byte, opts ...Option) (*CPU, error) {
	m := mem.New()
	if err := m.LoadImage(image); err != nil {
		return nil, err
	}

	regs := &RegFile{}
	c := &CPU{
		PC:   mem.Base,
		Regs: regs,
		CSRs: &CSRFile{},
		Bus:  bus.New(m),
	}
	c.alu = NewALU(regs)
	c.branch = NewBranchUnit(regs)
	c.lsu = NewLoadStoreUnit(regs, c.Bus)

	regs.WriteReg(2, mem.Base+mem.Size)

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// InstructionCount returns the number of instructions executed.
func (c *CPU) InstructionCount() uint64 {
	return c.instructionCount
}

// Fetch reads the 32-bit instruction word at PC and advances PC by 4.
func (c *CPU) Fetch() (uint32, error) {
	word, err := c.Bus.Load(c.PC, 32)
	if err != nil {
		return 0, fmt.Errorf("fetch at pc=0x%x: %w", c.PC, err)
	}
	c.PC += 4
	return uint32(word), nil
}

// Execute runs a single already-fetched instruction word. Fetch has
// already advanced PC past the instruction, so branch and jump targets
// are computed relative to PC-4.
func (c *CPU) Execute(word uint32) error {
	d := inst.Decode(word)
	pc := c.PC - 4

	defer func() { c.Regs.X[0] = 0 }()

	switch d.Opcode {
	case opLoad:
		switch d.Funct3 {
		case 0x0:
			return c.lsu.LB(d.Rd, d.Rs1, d.ImmI)
		case 0x1:
			return c.lsu.LH(d.Rd, d.Rs1, d.ImmI)
		case 0x2:
			return c.lsu.LW(d.Rd, d.Rs1, d.ImmI)
		case 0x3:
			return c.lsu.LD(d.Rd, d.Rs1, d.ImmI)
		case 0x4:
			return c.lsu.LBU(d.Rd, d.Rs1, d.ImmI)
		case 0x5:
			return c.lsu.LHU(d.Rd, d.Rs1, d.ImmI)
		case 0x6:
			return c.lsu.LWU(d.Rd, d.Rs1, d.ImmI)
		default:
			return c.decodeError(d, pc)
		}

	case opImm:
		switch d.Funct3 {
		case 0x0:
			c.alu.ADDI(d.Rd, d.Rs1, d.ImmI)
		case 0x1:
			c.alu.SLLI(d.Rd, d.Rs1, d.Shamt6())
		case 0x2:
			c.alu.SLTI(d.Rd, d.Rs1, d.ImmI)
		case 0x3:
			c.alu.SLTIU(d.Rd, d.Rs1, d.ImmI)
		case 0x4:
			c.alu.XORI(d.Rd, d.Rs1, d.ImmI)
		case 0x5:
			// SRLI and SRAI share funct3; funct7[6:1] disambiguates.
			switch d.Funct7 >> 1 {
			case 0x00:
				c.alu.SRLI(d.Rd, d.Rs1, d.Shamt6())
			case 0x10:
				c.alu.SRAI(d.Rd, d.Rs1, d.Shamt6())
			default:
				return c.decodeError(d, pc)
			}
		case 0x6:
			c.alu.ORI(d.Rd, d.Rs1, d.ImmI)
		case 0x7:
			c.alu.ANDI(d.Rd, d.Rs1, d.ImmI)
		}

	case opAUIPC:
		c.alu.AUIPC(d.Rd, pc, d.ImmU)

	case opImmWord:
		switch d.Funct3 {
		case 0x0:
			c.alu.ADDIW(d.Rd, d.Rs1, d.ImmI)
		case 0x1:
			c.alu.SLLIW(d.Rd, d.Rs1, d.Shamt5())
		case 0x5:
			switch d.Funct7 {
			case 0x00:
				c.alu.SRLIW(d.Rd, d.Rs1, d.Shamt5())
			case 0x20:
				c.alu.SRAIW(d.Rd, d.Rs1, d.Shamt5())
			default:
				return c.decodeError(d, pc)
			}
		default:
			return c.decodeError(d, pc)
		}

	case opStore:
		switch d.Funct3 {
		case 0x0:
			return c.lsu.SB(d.Rs1, d.Rs2, d.ImmS)
		case 0x1:
			return c.lsu.SH(d.Rs1, d.Rs2, d.ImmS)
		case 0x2:
			return c.lsu.SW(d.Rs1, d.Rs2, d.ImmS)
		case 0x3:
			return c.lsu.SD(d.Rs1, d.Rs2, d.ImmS)
		default:
			return c.decodeError(d, pc)
		}

	case opReg:
		switch {
		case d.Funct3 == 0x0 && d.Funct7 == 0x00:
			c.alu.ADD(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x0 && d.Funct7 == 0x20:
			c.alu.SUB(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x0 && d.Funct7 == 0x01:
			c.alu.MUL(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x1 && d.Funct7 == 0x00:
			c.alu.SLL(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x2 && d.Funct7 == 0x00:
			c.alu.SLT(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x3 && d.Funct7 == 0x00:
			c.alu.SLTU(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x4 && d.Funct7 == 0x00:
			c.alu.XOR(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x5 && d.Funct7 == 0x00:
			c.alu.SRL(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x5 && d.Funct7 == 0x20:
			c.alu.SRA(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x6 && d.Funct7 == 0x00:
			c.alu.OR(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x7 && d.Funct7 == 0x00:
			c.alu.AND(d.Rd, d.Rs1, d.Rs2)
		default:
			return c.decodeError(d, pc)
		}

	case opLUI:
		c.alu.LUI(d.Rd, d.ImmU)

	case opRegWord:
		switch {
		case d.Funct3 == 0x0 && d.Funct7 == 0x00:
			c.alu.ADDW(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x0 && d.Funct7 == 0x20:
			c.alu.SUBW(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x1 && d.Funct7 == 0x00:
			c.alu.SLLW(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x5 && d.Funct7 == 0x00:
			c.alu.SRLW(d.Rd, d.Rs1, d.Rs2)
		case d.Funct3 == 0x5 && d.Funct7 == 0x20:
			c.alu.SRAW(d.Rd, d.Rs1, d.Rs2)
		default:
			return c.decodeError(d, pc)
		}

	case opBranch:
		switch d.Funct3 {
		case 0x0:
			c.PC = c.branch.BEQ(d.Rs1, d.Rs2, pc, d.ImmB)
		case 0x1:
			c.PC = c.branch.BNE(d.Rs1, d.Rs2, pc, d.ImmB)
		case 0x4:
			c.PC = c.branch.BLT(d.Rs1, d.Rs2, pc, d.ImmB)
		case 0x5:
			c.PC = c.branch.BGE(d.Rs1, d.Rs2, pc, d.ImmB)
		case 0x6:
			c.PC = c.branch.BLTU(d.Rs1, d.Rs2, pc, d.ImmB)
		case 0x7:
			c.PC = c.branch.BGEU(d.Rs1, d.Rs2, pc, d.ImmB)
		default:
			// funct3 2 and 3 are reserved encodings.
			return c.decodeError(d, pc)
		}

	case opJALR:
		c.PC = c.branch.JALR(d.Rd, d.Rs1, pc, d.ImmI)

	case opJAL:
		c.PC = c.branch.JAL(d.Rd, pc, d.ImmJ)

	case opSystem:
		return c.executeCSR(d, pc)

	default:
		return c.decodeError(d, pc)
	}

	return nil
}

// executeCSR handles the SYSTEM opcode's CSR operations. Each form
// atomically reads the old CSR value into rd, then writes back a value
// derived from the source. The set/clear forms suppress the write when
// the source register is x0 (or zimm is 0) so a plain CSR read has no
// store side effect.
func (c *CPU) executeCSR(d inst.Instruction, pc uint64) error {
	addr := (d.Raw >> 20) & 0xfff

	switch d.Funct3 {
	case 0x1: // csrrw
		t := c.CSRs.Load(addr)
		c.CSRs.Store(addr, c.Regs.ReadReg(d.Rs1))
		c.Regs.WriteReg(d.Rd, t)
	case 0x2: // csrrs
		t := c.CSRs.Load(addr)
		if d.Rs1 != 0 {
			c.CSRs.Store(addr, t|c.Regs.ReadReg(d.Rs1))
		}
		c.Regs.WriteReg(d.Rd, t)
	case 0x3: // csrrc
		t := c.CSRs.Load(addr)
		if d.Rs1 != 0 {
			c.CSRs.Store(addr, t&^c.Regs.ReadReg(d.Rs1))
		}
		c.Regs.WriteReg(d.Rd, t)
	case 0x5: // csrrwi
		zimm := uint64(d.Rs1)
		t := c.CSRs.Load(addr)
		c.CSRs.Store(addr, zimm)
		c.Regs.WriteReg(d.Rd, t)
	case 0x6: // csrrsi
		zimm := uint64(d.Rs1)
		t := c.CSRs.Load(addr)
		if zimm != 0 {
			c.CSRs.Store(addr, t|zimm)
		}
		c.Regs.WriteReg(d.Rd, t)
	case 0x7: // csrrci
		zimm := uint64(d.Rs1)
		t := c.CSRs.Load(addr)
		if zimm != 0 {
			c.CSRs.Store(addr, t&^zimm)
		}
		c.Regs.WriteReg(d.Rd, t)
	default:
		return c.decodeError(d, pc)
	}

	return nil
}

func (c *CPU) decodeError(d inst.Instruction, pc uint64) error {
	return fmt.Errorf("%w: opcode=0x%02x funct3=0x%x funct7=0x%02x pc=0x%x",
		ErrDecode, d.Opcode, d.Funct3, d.Funct7, pc)
}

// Run drives the fetch/execute loop until a halt condition or a fatal
// error. The loop halts successfully when PC reaches 0 (a zeroed
// return address jumped through by test programs) or when the fetched
// instruction word is 0. Real programs never hit either condition on
// their own; they must exit through a host call or loop forever.
// On success the register dump and CSR dump are written to w.
func (c *CPU) Run(w io.Writer) error {
	for {
		if c.PC == 0 {
			break
		}
		if c.maxInstructions > 0 && c.instructionCount >= c.maxInstructions {
			return fmt.Errorf("cpu: max instructions reached at pc=0x%x", c.PC)
		}

		word, err := c.Fetch()
		if err != nil {
			return err
		}
		if word == 0 {
			break
		}
		if err := c.Execute(word); err != nil {
			return err
		}
		c.instructionCount++
	}

	c.Dump(w)
	c.DumpCSRs(w)
	return nil
}

// Dump writes the PC and the 32 register values in hex on a single line.
// The format is a debugging aid, not a stable interface.
func (c *CPU) Dump(w io.Writer) {
	fmt.Fprintf(w, "%x ", c.PC)
	for i := 0; i < 32; i++ {
		fmt.Fprintf(w, "%x ", c.Regs.X[i])
	}
	fmt.Fprintf(w, "\n")
}

// DumpCSRs writes the machine and supervisor trap-handling CSRs.
func (c *CPU) DumpCSRs(w io.Writer) {
	fmt.Fprintf(w, "mstatus=%18x mtvec=%18x mepc=%18x mcause=%18x\n",
		c.CSRs.Load(MSTATUS), c.CSRs.Load(MTVEC), c.CSRs.Load(MEPC), c.CSRs.Load(MCAUSE))
	fmt.Fprintf(w, "sstatus=%18x stvec=%18x sepc=%18x scause=%18x\n",
		c.CSRs.Load(SSTATUS), c.CSRs.Load(STVEC), c.CSRs.Load(SEPC), c.CSRs.Load(SCAUSE))
}
