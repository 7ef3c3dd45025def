package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindMalformed,
				Path:   []string{"swift5_fieldmd", "Fields", "2"},
				Type:   "4main3FooV",
				Image:  "libMain.so",
				Detail: "name pointer out of range",
			},
			contains: []string{"[parse]", "malformed", "swift5_fieldmd.Fields.2", "4main3FooV", "libMain.so", "name pointer out of range"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseLookup,
				Kind:  KindNotFound,
			},
			contains: []string{"[lookup]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseRead,
				Kind:   KindOutOfBounds,
				Detail: "short read",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[read]", "out_of_bounds", "short read", "caused by", "underlying error"},
		},
		{
			name: "image only",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Image:  "a.out",
				Detail: "bad magic",
			},
			contains: []string{"image a.out - bad magic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindMalformed,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseLookup,
		Kind:  KindNotFound,
		Type:  "Si",
	}

	if !err.Is(&Error{Phase: PhaseLookup, Kind: KindNotFound}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseParse, Kind: KindNotFound}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseLookup, Kind: KindUsage}) {
		t.Error("Is should not match different kind")
	}

	wrapped := fmt.Errorf("query: %w", err)
	if !errors.Is(wrapped, &Error{Phase: PhaseLookup, Kind: KindNotFound}) {
		t.Error("errors.Is should match through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseLookup, KindNotFound).
		Path("swift5_assocty").
		Type("4main9ContainerV").
		Image("libMain.so").
		Value(7).
		Cause(cause).
		Detail("no member %q", "Element").
		Build()

	if err.Phase != PhaseLookup {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseLookup)
	}
	if err.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
	}
	if len(err.Path) != 1 || err.Path[0] != "swift5_assocty" {
		t.Errorf("Path = %v, want [swift5_assocty]", err.Path)
	}
	if err.Type != "4main9ContainerV" {
		t.Errorf("Type = %v", err.Type)
	}
	if err.Image != "libMain.so" {
		t.Errorf("Image = %v", err.Image)
	}
	if err.Value != 7 {
		t.Errorf("Value = %v, want 7", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != `no member "Element"` {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidShape", func(t *testing.T) {
		err := InvalidShape("protocol composition", "member 1 is not a protocol")
		if err.Kind != KindInvalidShape || err.Phase != PhaseConstruct {
			t.Errorf("got %v/%v", err.Phase, err.Kind)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound("field descriptor", "4main3FooV")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if err.Type != "4main3FooV" {
			t.Errorf("Type = %v", err.Type)
		}
	})

	t.Run("Usage", func(t *testing.T) {
		err := Usage("builtin type info", "function")
		if err.Kind != KindUsage {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUsage)
		}
		if !strings.Contains(err.Detail, "function") {
			t.Errorf("Detail = %v", err.Detail)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		err := Malformed("swift5_builtin", 0x1000, errors.New("truncated"))
		if err.Kind != KindMalformed {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMalformed)
		}
		if err.Value != uint64(0x1000) {
			t.Errorf("Value = %v", err.Value)
		}
		if !strings.Contains(err.Error(), "0x1000") {
			t.Errorf("message %q should contain address", err.Error())
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseRead, 0x20, 4)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseParse, int64(-1), "uint64")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseDecode, "symbolic reference")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Load", func(t *testing.T) {
		cause := errors.New("eof")
		err := Load("open image", cause)
		if err.Phase != PhaseLoad || !errors.Is(err, cause) {
			t.Errorf("unexpected %v", err)
		}
	})
}

func TestPredicates(t *testing.T) {
	notFound := NotFound("builtin type descriptor", "Bi64_")
	malformed := Malformed("swift5_fieldmd", 0x40, nil)

	if !IsNotFound(notFound) || IsMalformed(notFound) {
		t.Error("not found predicates")
	}
	if !IsMalformed(fmt.Errorf("scan: %w", malformed)) {
		t.Error("IsMalformed should see through wrapping")
	}

	joined := errors.Join(errors.New("other"), malformed)
	if !IsMalformed(joined) {
		t.Error("IsMalformed should see through errors.Join")
	}
	if IsNotFound(joined) {
		t.Error("joined malformed error is not a lookup miss")
	}

	if !IsUsage(Usage("field type info", "tuple")) {
		t.Error("IsUsage")
	}
	if !IsInvalidShape(InvalidShape("dependent member", "protocol is not a protocol")) {
		t.Error("IsInvalidShape")
	}
	if IsNotFound(nil) {
		t.Error("nil is never a lookup miss")
	}

	if KindOf(fmt.Errorf("x: %w", notFound)) != KindNotFound {
		t.Error("KindOf should unwrap")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf of a plain error should be empty")
	}
}
