package validate

import (
	"strings"
	"testing"

	perr "seedsearch/internal/platform/errors"
)

type sample struct {
	Name string `json:"name" validate:"required"`
	Size int    `json:"size" validate:"min=1,max=8"`
	Lo   uint64 `json:"lo"`
	Hi   uint64 `json:"hi" validate:"gtefield=Lo"`
}

type tagged struct {
	Plain string `validate:"omitempty,even_len"`
}

func TestStruct_OK(t *testing.T) {
	if err := Struct(sample{Name: "a", Size: 1, Lo: 1, Hi: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_FieldAndMessage(t *testing.T) {
	cases := []struct {
		name      string
		in        sample
		wantField string
		wantMsg   string
	}{
		{"required", sample{Size: 1}, "name", "name is a required field"},
		{"min", sample{Name: "a", Size: 0}, "size", "size must be at least 1"},
		{"max", sample{Name: "a", Size: 9}, "size", "size must be at most 8"},
		{"gtefield", sample{Name: "a", Size: 1, Lo: 5, Hi: 2}, "hi", "hi must be greater than or equal to Lo"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Struct(c.in)
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
			if e.Field() != c.wantField {
				t.Fatalf("field = %q, want %q", e.Field(), c.wantField)
			}
			if e.Error() != c.wantMsg {
				t.Fatalf("msg = %q, want %q", e.Error(), c.wantMsg)
			}
		})
	}
}

func TestRegisterValidation_CustomTag(t *testing.T) {
	err := RegisterValidation("even_len", func(fl FieldLevel) bool {
		return len(fl.Field().String())%2 == 0
	}, "{0} must have an even length")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	err = Struct(tagged{Plain: "abc"})
	if err == nil || !strings.Contains(err.Error(), "Plain must have an even length") {
		t.Fatalf("custom tag message missing: %v", err)
	}
}

func TestStruct_InvalidTarget(t *testing.T) {
	if err := Struct(42); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
}
