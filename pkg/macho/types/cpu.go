package types

import (
	"strconv"

	"github.com/blacktop/lazymacho/pkg/macho/utils"
)

// A CPU is a Mach-O cpu type.
type CPU uint32

const (
	cpuArch64   = 0x01000000 // 64 bit ABI
	cpuArch6432 = 0x02000000 // ABI for 64-bit hardware with 32-bit types; LP32
)

const (
	CPUAny       CPU = 0
	CPUVax       CPU = 1
	CPURomp      CPU = 2
	CPUNs32032   CPU = 4
	CPUNs32332   CPU = 5
	CPUMc680x0   CPU = 6
	CPUX86       CPU = 7
	CPUAmd64     CPU = CPUX86 | cpuArch64
	CPUMips      CPU = 8
	CPUNs32352   CPU = 9
	CPUMc98000   CPU = 10
	CPUHppa      CPU = 11
	CPUArm       CPU = 12
	CPUArm64     CPU = CPUArm | cpuArch64
	CPUArm6432   CPU = CPUArm | cpuArch6432
	CPUMc88000   CPU = 13
	CPUSparc     CPU = 14
	CPUI860LE    CPU = 15
	CPUI860BE    CPU = 16
	CPURs6000    CPU = 17
	CPUPpc       CPU = 18
	CPUPpc64     CPU = CPUPpc | cpuArch64
	CPUVeo       CPU = 255
)

var cpuStrings = []utils.IntName{
	{I: uint32(CPUAny), S: "ANY"},
	{I: uint32(CPUVax), S: "VAX"},
	{I: uint32(CPURomp), S: "ROMP"},
	{I: uint32(CPUNs32032), S: "NS32032"},
	{I: uint32(CPUNs32332), S: "NS32332"},
	{I: uint32(CPUMc680x0), S: "MC680x0"},
	{I: uint32(CPUX86), S: "X86"},
	{I: uint32(CPUAmd64), S: "X86_64"},
	{I: uint32(CPUMips), S: "MIPS"},
	{I: uint32(CPUNs32352), S: "NS32352"},
	{I: uint32(CPUMc98000), S: "MC98000"},
	{I: uint32(CPUHppa), S: "HPPA"},
	{I: uint32(CPUArm), S: "ARM"},
	{I: uint32(CPUArm64), S: "ARM64"},
	{I: uint32(CPUArm6432), S: "ARM64_32"},
	{I: uint32(CPUMc88000), S: "MC88000"},
	{I: uint32(CPUSparc), S: "SPARC"},
	{I: uint32(CPUI860LE), S: "I860LE"},
	{I: uint32(CPUI860BE), S: "I860BE"},
	{I: uint32(CPURs6000), S: "RS6000"},
	{I: uint32(CPUPpc), S: "POWERPC"},
	{I: uint32(CPUPpc64), S: "POWERPC64"},
	{I: uint32(CPUVeo), S: "VEO"},
}

func (c CPU) String() string   { return utils.StringName(uint32(c), cpuStrings, false) }
func (c CPU) GoString() string { return utils.StringName(uint32(c), cpuStrings, true) }

// A SubtypeFamily names the subtype vocabulary a CPU type resolves through.
type SubtypeFamily uint8

const (
	FamilyNone SubtypeFamily = iota // no resolution table, subtype stays raw
	FamilyARM
	FamilyX86
)

func (f SubtypeFamily) String() string {
	switch f {
	case FamilyARM:
		return "ARM"
	case FamilyX86:
		return "X86"
	default:
		return "none"
	}
}

// SubtypeFamily returns the subtype vocabulary for c.
// ARM64 and ARM64_32 share the 32-bit ARM table.
func (c CPU) SubtypeFamily() SubtypeFamily {
	switch c {
	case CPUArm, CPUArm64, CPUArm6432:
		return FamilyARM
	case CPUAmd64:
		return FamilyX86
	default:
		return FamilyNone
	}
}

// A CPUSubtype is the raw cpu subtype word of a header or fat arch.
type CPUSubtype uint32

// CPUSubtypeMask covers the capability bits in the high byte.
const CPUSubtypeMask CPUSubtype = 0xff000000

// Caps returns the capability bits.
func (st CPUSubtype) Caps() uint32 { return uint32(st & CPUSubtypeMask) }

// Value returns the subtype with the capability bits cleared.
func (st CPUSubtype) Value() uint32 { return uint32(st &^ CPUSubtypeMask) }

// String returns the symbolic subtype name for cpu, or the raw number.
func (st CPUSubtype) String(cpu CPU) string {
	s, _ := ResolveSubtype(cpu, st)
	return s.String()
}

type CPUSubtypeArm uint32

const (
	CPUSubtypeArmAll      CPUSubtypeArm = 0
	CPUSubtypeArmA500Arch CPUSubtypeArm = 1
	CPUSubtypeArmA500     CPUSubtypeArm = 2
	CPUSubtypeArmA440     CPUSubtypeArm = 3
	CPUSubtypeArmM4       CPUSubtypeArm = 4
	CPUSubtypeArmV4T      CPUSubtypeArm = 5
	CPUSubtypeArmV6       CPUSubtypeArm = 6
	CPUSubtypeArmV5Tej    CPUSubtypeArm = 7
	CPUSubtypeArmXscale   CPUSubtypeArm = 8
	CPUSubtypeArmV7       CPUSubtypeArm = 9
	CPUSubtypeArmV7F      CPUSubtypeArm = 10
	CPUSubtypeArmV7S      CPUSubtypeArm = 11
	CPUSubtypeArmV7K      CPUSubtypeArm = 12
	CPUSubtypeArmV8       CPUSubtypeArm = 13
	CPUSubtypeArmV6M      CPUSubtypeArm = 14
	CPUSubtypeArmV7M      CPUSubtypeArm = 15
	CPUSubtypeArmV7Em     CPUSubtypeArm = 16
	CPUSubtypeArmV8M      CPUSubtypeArm = 17
)

var armSubtypeStrings = []utils.IntName{
	{I: uint32(CPUSubtypeArmAll), S: "ALLARM"},
	{I: uint32(CPUSubtypeArmA500Arch), S: "ARMA500ARCH"},
	{I: uint32(CPUSubtypeArmA500), S: "ARMA500"},
	{I: uint32(CPUSubtypeArmA440), S: "ARMA440"},
	{I: uint32(CPUSubtypeArmM4), S: "ARMM4"},
	{I: uint32(CPUSubtypeArmV4T), S: "ARMV4T"},
	{I: uint32(CPUSubtypeArmV6), S: "ARMV6"},
	{I: uint32(CPUSubtypeArmV5Tej), S: "ARMV5TEJ"},
	{I: uint32(CPUSubtypeArmXscale), S: "ARMXSCALE"},
	{I: uint32(CPUSubtypeArmV7), S: "ARMV7"},
	{I: uint32(CPUSubtypeArmV7F), S: "ARMV7F"},
	{I: uint32(CPUSubtypeArmV7S), S: "ARMV7S"},
	{I: uint32(CPUSubtypeArmV7K), S: "ARMV7K"},
	{I: uint32(CPUSubtypeArmV8), S: "ARMV8"},
	{I: uint32(CPUSubtypeArmV6M), S: "ARMV6M"},
	{I: uint32(CPUSubtypeArmV7M), S: "ARMV7M"},
	{I: uint32(CPUSubtypeArmV7Em), S: "ARMV7EM"},
	{I: uint32(CPUSubtypeArmV8M), S: "ARMV8M"},
}

func (st CPUSubtypeArm) String() string {
	return utils.StringName(uint32(st), armSubtypeStrings, false)
}

// ARM64 subtypes. Header resolution for ARM64 goes through the ARM table;
// these are here for callers comparing raw values.
const (
	CPUSubtypeArm64All uint32 = 0
	CPUSubtypeArm64V8  uint32 = 1
	CPUSubtypeArm64E   uint32 = 2
)

type CPUSubtypeX86 uint32

const (
	CPUSubtypeX86All           CPUSubtypeX86 = 3
	CPUSubtypeX86486           CPUSubtypeX86 = 4
	CPUSubtypeX86Pentium3      CPUSubtypeX86 = 8
	CPUSubtypeX86Pentium4      CPUSubtypeX86 = 0xA
	CPUSubtypeX86Itanium       CPUSubtypeX86 = 0xB
	CPUSubtypeX86Xeon          CPUSubtypeX86 = 0xC
	CPUSubtypeX86Pentium3M     CPUSubtypeX86 = 0x18
	CPUSubtypeX86Itanium2      CPUSubtypeX86 = 0x1B
	CPUSubtypeX86XeonMP        CPUSubtypeX86 = 0x1C
	CPUSubtypeX86Pentium3Xeon  CPUSubtypeX86 = 0x28
	CPUSubtypeX86PentiumM5     CPUSubtypeX86 = 0x56
	CPUSubtypeX86Celeron       CPUSubtypeX86 = 0x67
	CPUSubtypeX86CeleronMobile CPUSubtypeX86 = 0x77
	CPUSubtypeX86486SX         CPUSubtypeX86 = 0x84
)

var x86SubtypeStrings = []utils.IntName{
	{I: uint32(CPUSubtypeX86All), S: "ALLX86"},
	{I: uint32(CPUSubtypeX86486), S: "486"},
	{I: uint32(CPUSubtypeX86Pentium3), S: "PENTIUM3"},
	{I: uint32(CPUSubtypeX86Pentium4), S: "PENTIUM4"},
	{I: uint32(CPUSubtypeX86Itanium), S: "ITANIUM"},
	{I: uint32(CPUSubtypeX86Xeon), S: "XEON"},
	{I: uint32(CPUSubtypeX86Pentium3M), S: "PENTIUM3M"},
	{I: uint32(CPUSubtypeX86Itanium2), S: "ITANIUM2"},
	{I: uint32(CPUSubtypeX86XeonMP), S: "XEONMP"},
	{I: uint32(CPUSubtypeX86Pentium3Xeon), S: "PENTIUM3XEON"},
	{I: uint32(CPUSubtypeX86PentiumM5), S: "PENTIUMM5"},
	{I: uint32(CPUSubtypeX86Celeron), S: "CELERON"},
	{I: uint32(CPUSubtypeX86CeleronMobile), S: "CELERONMOBILE"},
	{I: uint32(CPUSubtypeX86486SX), S: "486SX"},
}

func (st CPUSubtypeX86) String() string {
	return utils.StringName(uint32(st), x86SubtypeStrings, false)
}

// A Subtype is a cpu subtype resolved against its CPU family's vocabulary.
type Subtype struct {
	Family SubtypeFamily
	Value  uint32 // capability bits cleared
	Caps   uint32
	Name   string // empty when unresolved
}

// Resolved reports whether Value matched an entry of its family's table.
func (s Subtype) Resolved() bool { return s.Name != "" }

// Arm returns the value as an ARM subtype. Only meaningful for FamilyARM.
func (s Subtype) Arm() CPUSubtypeArm { return CPUSubtypeArm(s.Value) }

// X86 returns the value as an x86 subtype. Only meaningful for FamilyX86.
func (s Subtype) X86() CPUSubtypeX86 { return CPUSubtypeX86(s.Value) }

func (s Subtype) String() string {
	if s.Resolved() {
		return s.Name
	}
	return strconv.FormatUint(uint64(s.Value), 10)
}

// ResolveSubtype interprets raw through the subtype table selected by cpu.
// The second result is false when cpu has a table and raw is not in it;
// it is true for cpu types without a table, where the value stays raw.
func ResolveSubtype(cpu CPU, raw CPUSubtype) (Subtype, bool) {
	s := Subtype{
		Family: cpu.SubtypeFamily(),
		Value:  raw.Value(),
		Caps:   raw.Caps(),
	}
	var names []utils.IntName
	switch s.Family {
	case FamilyARM:
		names = armSubtypeStrings
	case FamilyX86:
		names = x86SubtypeStrings
	default:
		return s, true
	}
	name, ok := utils.Lookup(s.Value, names)
	s.Name = name
	return s, ok
}
