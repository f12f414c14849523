// Package bus provides the single address-decoding layer between the CPU
// and its memory devices.
package bus

import (
	"fmt"

	"github.com/rv64emu/rv64emu/mem"
)

// ErrUnmapped indicates a load targeted an address with no backing device.
var ErrUnmapped = fmt.Errorf("bus: unmapped address")

// route maps addresses at or above base to a device. Today there is only
// one route (RAM at mem.Base); the slice exists so a future UART, timer,
// PLIC, or CLINT region can be added as another entry without touching CPU.
type route struct {
	base   uint64
	memory *mem.Memory
}

// Bus routes CPU loads and stores to the device owning the target address.
type Bus struct {
	routes []route
}

// New creates a Bus with m mapped starting at mem.Base.
func New(m *mem.Memory) *Bus {
	return &Bus{routes: []route{{base: mem.Base, memory: m}}}
}

func (b *Bus) find(addr uint64) *mem.Memory {
	for i := range b.routes {
		if addr >= b.routes[i].base {
			return b.routes[i].memory
		}
	}
	return nil
}

// Load reads size bits from addr. An address below every route's base
// returns ErrUnmapped.
func (b *Bus) Load(addr uint64, size int) (uint64, error) {
	m := b.find(addr)
	if m == nil {
		return 0, fmt.Errorf("%w: 0x%x", ErrUnmapped, addr)
	}
	return m.Load(addr, size)
}

// Store writes the low size bits of value to addr. A write to an address
// below every route's base is silently dropped, matching the bus behavior
// this core is ported from.
func (b *Bus) Store(addr uint64, size int, value uint64) error {
	m := b.find(addr)
	if m == nil {
		return nil
	}
	return m.Store(addr, size, value)
}
