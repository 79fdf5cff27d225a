package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveSubtype(t *testing.T) {
	tests := []struct {
		name   string
		cpu    CPU
		raw    CPUSubtype
		want   Subtype
		wantOK bool
	}{
		{
			name:   "armv7",
			cpu:    CPUArm,
			raw:    9,
			want:   Subtype{Family: FamilyARM, Value: 9, Name: "ARMV7"},
			wantOK: true,
		},
		{
			name:   "arm64 uses arm table",
			cpu:    CPUArm64,
			raw:    0x80000002,
			want:   Subtype{Family: FamilyARM, Value: 2, Caps: 0x80000000, Name: "ARMA500"},
			wantOK: true,
		},
		{
			name:   "pentium4",
			cpu:    CPUAmd64,
			raw:    0xA,
			want:   Subtype{Family: FamilyX86, Value: 0xA, Name: "PENTIUM4"},
			wantOK: true,
		},
		{
			name:   "x86_64 lib64 caps",
			cpu:    CPUAmd64,
			raw:    0x80000003,
			want:   Subtype{Family: FamilyX86, Value: 3, Caps: 0x80000000, Name: "ALLX86"},
			wantOK: true,
		},
		{
			name:   "unknown arm value",
			cpu:    CPUArm,
			raw:    99,
			want:   Subtype{Family: FamilyARM, Value: 99},
			wantOK: false,
		},
		{
			name:   "no table for powerpc",
			cpu:    CPUPpc,
			raw:    100,
			want:   Subtype{Family: FamilyNone, Value: 100},
			wantOK: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveSubtype(tt.cpu, tt.raw)
			if ok != tt.wantOK {
				t.Errorf("ResolveSubtype() ok = %v, want %v", ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ResolveSubtype() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubtypeTyped(t *testing.T) {
	s, _ := ResolveSubtype(CPUArm, 9)
	if s.Arm() != CPUSubtypeArmV7 {
		t.Errorf("Arm() = %v, want %v", s.Arm(), CPUSubtypeArmV7)
	}
	s, _ = ResolveSubtype(CPUAmd64, 0xA)
	if s.X86() != CPUSubtypeX86Pentium4 {
		t.Errorf("X86() = %v, want %v", s.X86(), CPUSubtypeX86Pentium4)
	}
	if got := CPUSubtype(99).String(CPUArm); got != "99" {
		t.Errorf("String() = %q, want %q", got, "99")
	}
}

func TestCPUString(t *testing.T) {
	tests := []struct {
		cpu  CPU
		want string
	}{
		{CPUArm64, "ARM64"},
		{CPUArm6432, "ARM64_32"},
		{CPUAmd64, "X86_64"},
		{CPUX86, "X86"},
		{CPU(0x1234), "4660"},
	}
	for _, tt := range tests {
		if got := tt.cpu.String(); got != tt.want {
			t.Errorf("CPU(%#x).String() = %q, want %q", uint32(tt.cpu), got, tt.want)
		}
	}
}

func TestVersions(t *testing.T) {
	if got := Version(0x000e0500).String(); got != "14.5.0" {
		t.Errorf("Version.String() = %q, want %q", got, "14.5.0")
	}
	// 1205.4.3.2.1
	sv := SrcVersion(1205<<40 | 4<<30 | 3<<20 | 2<<10 | 1)
	if got := sv.String(); got != "1205.4.3.2.1" {
		t.Errorf("SrcVersion.String() = %q, want %q", got, "1205.4.3.2.1")
	}
}

func TestUUIDString(t *testing.T) {
	u := UUID{0xde, 0xad, 0xbe, 0xef, 0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6}
	want := "DEADBEEF-0001-0002-0003-000400050006"
	if got := u.String(); got != want {
		t.Errorf("UUID.String() = %q, want %q", got, want)
	}
}

func TestVmProtection(t *testing.T) {
	if got := VmProtection(5).String(); got != "r-x" {
		t.Errorf("VmProtection.String() = %q, want %q", got, "r-x")
	}
}
