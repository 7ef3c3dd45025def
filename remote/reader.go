package remote

import (
	"bytes"
	"context"

	"fortio.org/safecast"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/swift-reflection/errors"
	"github.com/wippyai/swift-reflection/records"
)

// Reader reads bytes at addresses of some address space.
type Reader interface {
	// ReadBytes returns size bytes starting at addr. The result is owned by
	// the caller.
	ReadBytes(ctx context.Context, addr uint64, size int) ([]byte, error)
}

// Bytes is an in-process address space: Data mapped at Base.
type Bytes struct {
	Base uint64
	Data []byte
}

// ReadBytes implements Reader.
func (b Bytes) ReadBytes(_ context.Context, addr uint64, size int) ([]byte, error) {
	if size < 0 || addr < b.Base {
		return nil, errors.OutOfBounds(errors.PhaseRead, addr, uint64(max(size, 0)))
	}
	off := addr - b.Base
	if off > uint64(len(b.Data)) || uint64(size) > uint64(len(b.Data))-off {
		return nil, errors.OutOfBounds(errors.PhaseRead, addr, uint64(size))
	}
	return bytes.Clone(b.Data[off : off+uint64(size)]), nil
}

// WasmMemory reads from the linear memory of a wazero module instance.
// Addresses are guest offsets.
type WasmMemory struct {
	Mem api.Memory
}

// WrapMemory wraps a wazero memory. It returns nil for a nil memory.
func WrapMemory(mem api.Memory) *WasmMemory {
	if mem == nil {
		return nil
	}
	return &WasmMemory{Mem: mem}
}

// ReadBytes implements Reader. The bytes are copied out because the guest
// may grow or rewrite its memory afterwards.
func (m *WasmMemory) ReadBytes(ctx context.Context, addr uint64, size int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	offset, err := safecast.Conv[uint32](addr)
	if err != nil {
		return nil, errors.Overflow(errors.PhaseRead, addr, "uint32")
	}
	length, err := safecast.Conv[uint32](size)
	if err != nil {
		return nil, errors.Overflow(errors.PhaseRead, size, "uint32")
	}
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(errors.PhaseRead, addr, uint64(length))
	}
	return bytes.Clone(data), nil
}

// Size returns the current size of the memory in bytes.
func (m *WasmMemory) Size() uint32 {
	return m.Mem.Size()
}

// ReadSection reads the [begin, end) range of r as a section called name.
// An empty range gives an empty section without touching r.
func ReadSection(ctx context.Context, r Reader, name string, begin, end uint64) (records.Section, error) {
	if end < begin {
		return records.Section{}, errors.InvalidInput(errors.PhaseRead, "section "+name+" ends before it begins")
	}
	size, err := safecast.Conv[int](end - begin)
	if err != nil {
		return records.Section{}, errors.Overflow(errors.PhaseRead, end-begin, "int")
	}
	if size == 0 {
		return records.NewSection(name, begin, nil), nil
	}
	data, err := r.ReadBytes(ctx, begin, size)
	if err != nil {
		kind := errors.KindOf(err)
		if kind == "" {
			return records.Section{}, err
		}
		return records.Section{}, errors.New(errors.PhaseRead, kind).
			Path(name).
			Cause(err).
			Detail("cannot read section at %#x", begin).
			Build()
	}
	return records.SectionFromRange(name, begin, end, data)
}
