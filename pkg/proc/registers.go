package proc

import (
	"encoding/binary"
	"fmt"
)

// Registers is an interface for a generic register type. The
// interface encapsulates the generic values / actions
// we need independent of arch. The concrete register types
// will be different depending on the architecture of the target.
type Registers interface {
	PC() uint64
	SP() uint64
	BP() uint64
	TLS() uint64
	Slice(floatingPoint bool) ([]Register, error)
	// Copy returns a copy of the registers that is guaranteed not to
	// change when the registers of the associated thread change.
	Copy() (Registers, error)
}

// Register represents a single CPU register and its raw value.
type Register struct {
	Name  string
	Bytes []byte
}

func (r *Register) String() string {
	if len(r.Bytes) <= 8 {
		buf := make([]byte, 8)
		copy(buf, r.Bytes)
		return fmt.Sprintf("%#016x", binary.LittleEndian.Uint64(buf))
	}
	return fmt.Sprintf("%#x", r.Bytes)
}

// Uint64Val returns the register contents interpreted as a little
// endian 64-bit integer, truncating registers wider than 8 bytes.
func (r *Register) Uint64Val() uint64 {
	buf := make([]byte, 8)
	copy(buf, r.Bytes)
	return binary.LittleEndian.Uint64(buf)
}

// AppendUint64Register appends a 64 bit register to regs.
func AppendUint64Register(regs []Register, name string, value uint64) []Register {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, value)
	return append(regs, Register{name, buf})
}

// AppendBytesRegister appends a register of arbitrary size to regs.
func AppendBytesRegister(regs []Register, name string, value []byte) []Register {
	return append(regs, Register{name, value})
}
