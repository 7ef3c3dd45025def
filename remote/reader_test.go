package remote

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/swift-reflection/errors"
)

// memoryWASM is a minimal WASM module with 1 page of memory exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 page, no max
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // name: "memory" (6 bytes + string)
	0x02, 0x00, // kind: memory, index 0
}

func instantiate(t *testing.T) api.Memory {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	mem := mod.ExportedMemory("memory")
	if mem == nil {
		t.Fatal("memory not exported")
	}
	return mem
}

func TestBytes_ReadBytes(t *testing.T) {
	r := Bytes{Base: 0x1000, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	ctx := context.Background()

	tests := []struct {
		name string
		addr uint64
		size int
		want []byte
	}{
		{"start", 0x1000, 2, []byte{1, 2}},
		{"middle", 0x1003, 3, []byte{4, 5, 6}},
		{"to end", 0x1006, 2, []byte{7, 8}},
		{"empty at end", 0x1008, 0, []byte{}},
		{"before base", 0xfff, 1, nil},
		{"past end", 0x1006, 3, nil},
		{"far past end", 0x2000, 1, nil},
		{"negative size", 0x1000, -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ReadBytes(ctx, tt.addr, tt.size)
			if tt.want == nil {
				if errors.KindOf(err) != errors.KindOutOfBounds {
					t.Fatalf("expected out of bounds, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBytes_ReadBytesCopies(t *testing.T) {
	data := []byte{1, 2, 3}
	got, err := Bytes{Data: data}.ReadBytes(context.Background(), 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	got[0] = 9
	if data[0] != 1 {
		t.Error("ReadBytes returned a view of the backing data")
	}
}

func TestWrapMemory_Nil(t *testing.T) {
	if WrapMemory(nil) != nil {
		t.Error("expected nil for nil memory")
	}
}

func TestWasmMemory_ReadBytes(t *testing.T) {
	mem := instantiate(t)
	if !mem.Write(0x100, []byte("swift")) {
		t.Fatal("write failed")
	}

	r := WrapMemory(mem)
	if r.Size() != 65536 {
		t.Errorf("size = %d, want one page", r.Size())
	}

	ctx := context.Background()
	got, err := r.ReadBytes(ctx, 0x100, 5)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "swift" {
		t.Errorf("got %q", got)
	}

	// the copy must not follow later guest writes
	mem.WriteByte(0x100, 'S')
	if got[0] != 's' {
		t.Error("ReadBytes returned a view of guest memory")
	}

	if _, err := r.ReadBytes(ctx, 65530, 16); errors.KindOf(err) != errors.KindOutOfBounds {
		t.Errorf("expected out of bounds, got %v", err)
	}
	if _, err := r.ReadBytes(ctx, 1<<40, 1); errors.KindOf(err) != errors.KindOverflow {
		t.Errorf("expected overflow, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := r.ReadBytes(cancelled, 0, 1); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestReadSection(t *testing.T) {
	r := Bytes{Base: 0x2000, Data: []byte{0xaa, 0xbb, 0xcc, 0xdd}}
	ctx := context.Background()

	s, err := ReadSection(ctx, r, "swift5_reflstr", 0x2001, 0x2003)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "swift5_reflstr" || s.Addr != 0x2001 || !bytes.Equal(s.Data, []byte{0xbb, 0xcc}) {
		t.Errorf("unexpected section %+v", s)
	}

	empty, err := ReadSection(ctx, r, "swift5_builtin", 0x9000, 0x9000)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Size() != 0 || empty.Addr != 0x9000 {
		t.Errorf("unexpected empty section %+v", empty)
	}

	if _, err := ReadSection(ctx, r, "swift5_fieldmd", 0x2003, 0x2001); errors.KindOf(err) != errors.KindInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
	_, err = ReadSection(ctx, r, "swift5_fieldmd", 0x2002, 0x2010)
	if errors.KindOf(err) != errors.KindOutOfBounds {
		t.Errorf("expected out of bounds, got %v", err)
	}
}
