package header

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlagList(t *testing.T) {
	tests := []struct {
		name string
		f    Flag
		want []string
	}{
		{"none", 0, nil},
		{"typical executable", NoUndefs | DyldLink | TwoLevel | PIE, []string{"NOUNDEFS", "DYLDLINK", "TWOLEVEL", "PIE"}},
		{"high bit", DylibInCache, []string{"DYLIB_IN_CACHE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.f.List()); diff != "" {
				t.Errorf("List() mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if len(flagStrings) != 29 {
		t.Errorf("len(flagStrings) = %d, want 29", len(flagStrings))
	}
}

func TestFlagSet(t *testing.T) {
	var f Flag
	f.Set(PIE, true)
	f.Set(PIE, true)
	if !f.PIE() {
		t.Fatal("PIE not set")
	}
	f.Set(PIE, false)
	f.Set(PIE, false)
	if f != 0 {
		t.Errorf("flags = %#x, want 0", uint32(f))
	}
}

func TestTypeString(t *testing.T) {
	if got := Exec.String(); got != "EXECUTE" {
		t.Errorf("Exec.String() = %q", got)
	}
	if got := FileSet.String(); got != "FILESET" {
		t.Errorf("FileSet.String() = %q", got)
	}
	if got := Type(42).String(); got != "42" {
		t.Errorf("Type(42).String() = %q", got)
	}
}

func TestFileHeaderString(t *testing.T) {
	h := FileHeader{
		Magic:        Magic64,
		Type:         Exec,
		NCommands:    2,
		SizeCommands: 28,
		Flags:        PIE,
	}
	s := h.String()
	for _, want := range []string{"64-bit MachO", "EXECUTE", "Commands      = 2 (Size: 28)", "PIE"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
