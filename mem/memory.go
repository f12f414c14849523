// Package mem provides the guest physical memory backing a CPU core.
package mem

import (
	"encoding/binary"
	"fmt"
)

const (
	// Base is the guest physical address of the first byte of RAM.
	Base = uint64(0x8000_0000)

	// Size is the total RAM capacity in bytes (128 MiB).
	Size = 128 * 1024 * 1024
)

// ErrOutOfRange indicates an access fell outside the memory's backing array.
var ErrOutOfRange = fmt.Errorf("mem: address out of range")

// ErrImageTooLarge indicates LoadImage was given more bytes than Size.
var ErrImageTooLarge = fmt.Errorf("mem: image larger than memory size")

// Memory is a flat, byte-addressable RAM region mapped at Base.
type Memory struct {
	bytes []byte
}

// New allocates a zeroed Memory of Size bytes.
func New() *Memory {
	return &Memory{bytes: make([]byte, Size)}
}

// LoadImage copies image into the prefix of memory. It is an error for
// image to be larger than Size; all bytes beyond the image stay zero.
func (m *Memory) LoadImage(image []byte) error {
	if len(image) > Size {
		return ErrImageTooLarge
	}
	copy(m.bytes, image)
	return nil
}

func (m *Memory) index(addr uint64, width int) (int, error) {
	if addr < Base {
		return 0, ErrOutOfRange
	}
	idx := addr - Base
	if idx >= Size || idx+uint64(width) > Size {
		return 0, ErrOutOfRange
	}
	return int(idx), nil
}

// Read8 reads a single byte at addr.
func (m *Memory) Read8(addr uint64) (uint8, error) {
	i, err := m.index(addr, 1)
	if err != nil {
		return 0, err
	}
	return m.bytes[i], nil
}

// Read16 reads a little-endian 16-bit word at addr.
func (m *Memory) Read16(addr uint64) (uint16, error) {
	i, err := m.index(addr, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.bytes[i : i+2]), nil
}

// Read32 reads a little-endian 32-bit word at addr.
func (m *Memory) Read32(addr uint64) (uint32, error) {
	i, err := m.index(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.bytes[i : i+4]), nil
}

// Read64 reads a little-endian 64-bit word at addr.
func (m *Memory) Read64(addr uint64) (uint64, error) {
	i, err := m.index(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.bytes[i : i+8]), nil
}

// Write8 writes a single byte at addr.
func (m *Memory) Write8(addr uint64, v uint8) error {
	i, err := m.index(addr, 1)
	if err != nil {
		return err
	}
	m.bytes[i] = v
	return nil
}

// Write16 writes a little-endian 16-bit word at addr.
func (m *Memory) Write16(addr uint64, v uint16) error {
	i, err := m.index(addr, 2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.bytes[i:i+2], v)
	return nil
}

// Write32 writes a little-endian 32-bit word at addr.
func (m *Memory) Write32(addr uint64, v uint32) error {
	i, err := m.index(addr, 4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.bytes[i:i+4], v)
	return nil
}

// Write64 writes a little-endian 64-bit word at addr.
func (m *Memory) Write64(addr uint64, v uint64) error {
	i, err := m.index(addr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.bytes[i:i+8], v)
	return nil
}

// Load reads size bits (8, 16, 32, or 64) at addr and returns them
// zero-extended in a uint64. Any other size is a caller programming error
// and returns ErrOutOfRange.
func (m *Memory) Load(addr uint64, size int) (uint64, error) {
	switch size {
	case 8:
		v, err := m.Read8(addr)
		return uint64(v), err
	case 16:
		v, err := m.Read16(addr)
		return uint64(v), err
	case 32:
		v, err := m.Read32(addr)
		return uint64(v), err
	case 64:
		return m.Read64(addr)
	default:
		return 0, ErrOutOfRange
	}
}

// Store writes the low size bits (8, 16, 32, or 64) of value at addr.
func (m *Memory) Store(addr uint64, size int, value uint64) error {
	switch size {
	case 8:
		return m.Write8(addr, uint8(value))
	case 16:
		return m.Write16(addr, uint16(value))
	case 32:
		return m.Write32(addr, uint32(value))
	case 64:
		return m.Write64(addr, value)
	default:
		return ErrOutOfRange
	}
}
