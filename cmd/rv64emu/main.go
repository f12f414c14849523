// Package main provides the entry point for rv64emu.
// rv64emu is a user-space RV64I instruction-set emulator that runs a
// flat binary image loaded at the base of guest RAM.
package main

import (
	"fmt"
	"os"

	"github.com/rv64emu/rv64emu/cpu"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: rv64emu <binary-path>\n")
		os.Exit(1)
	}

	image, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading binary: %v\n", err)
		os.Exit(1)
	}

	c, err := cpu.New(image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading binary: %v\n", err)
		os.Exit(1)
	}

	if err := c.Run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Emulation error: %v\n", err)
		dumpRegisters(c)
		os.Exit(1)
	}
}

// dumpRegisters writes a legible register listing to stderr after a
// fatal emulation error.
func dumpRegisters(c *cpu.CPU) {
	fmt.Fprintf(os.Stderr, "pc   %016x\n", c.PC)
	for i, name := range cpu.ABINames {
		fmt.Fprintf(os.Stderr, "%-4s %016x\n", name, c.Regs.ReadReg(uint32(i)))
	}
}
