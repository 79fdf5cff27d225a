package header

import (
	"strings"

	"github.com/blacktop/lazymacho/pkg/macho/utils"
)

type Flag uint32

const (
	NoUndefs                   Flag = 0x1
	IncrLink                   Flag = 0x2
	DyldLink                   Flag = 0x4
	BindAtLoad                 Flag = 0x8
	Prebound                   Flag = 0x10
	SplitSegs                  Flag = 0x20
	LazyInit                   Flag = 0x40
	TwoLevel                   Flag = 0x80
	ForceFlat                  Flag = 0x100
	NoMultiDefs                Flag = 0x200
	NoFixPrebinding            Flag = 0x400
	Prebindable                Flag = 0x800
	AllModsBound               Flag = 0x1000
	SubsectionsViaSymbols      Flag = 0x2000
	Canonical                  Flag = 0x4000
	WeakDefines                Flag = 0x8000
	BindsToWeak                Flag = 0x10000
	AllowStackExecution        Flag = 0x20000
	RootSafe                   Flag = 0x40000
	SetuidSafe                 Flag = 0x80000
	NoReexportedDylibs         Flag = 0x100000
	PIE                        Flag = 0x200000
	DeadStrippableDylib        Flag = 0x400000
	HasTLVDescriptors          Flag = 0x800000
	NoHeapExecution            Flag = 0x1000000
	AppExtensionSafe           Flag = 0x2000000
	NlistOutofsyncWithDyldinfo Flag = 0x4000000
	SimSupport                 Flag = 0x8000000
	DylibInCache               Flag = 0x80000000
)

// in bit order; List and Flags walk this table
var flagStrings = []utils.IntName{
	{I: uint32(NoUndefs), S: "NOUNDEFS"},
	{I: uint32(IncrLink), S: "INCRLINK"},
	{I: uint32(DyldLink), S: "DYLDLINK"},
	{I: uint32(BindAtLoad), S: "BINDATLOAD"},
	{I: uint32(Prebound), S: "PREBOUND"},
	{I: uint32(SplitSegs), S: "SPLIT_SEGS"},
	{I: uint32(LazyInit), S: "LAZY_INIT"},
	{I: uint32(TwoLevel), S: "TWOLEVEL"},
	{I: uint32(ForceFlat), S: "FORCE_FLAT"},
	{I: uint32(NoMultiDefs), S: "NOMULTIDEFS"},
	{I: uint32(NoFixPrebinding), S: "NOFIXPREBINDING"},
	{I: uint32(Prebindable), S: "PREBINDABLE"},
	{I: uint32(AllModsBound), S: "ALLMODSBOUND"},
	{I: uint32(SubsectionsViaSymbols), S: "SUBSECTIONS_VIA_SYMBOLS"},
	{I: uint32(Canonical), S: "CANONICAL"},
	{I: uint32(WeakDefines), S: "WEAK_DEFINES"},
	{I: uint32(BindsToWeak), S: "BINDS_TO_WEAK"},
	{I: uint32(AllowStackExecution), S: "ALLOW_STACK_EXECUTION"},
	{I: uint32(RootSafe), S: "ROOT_SAFE"},
	{I: uint32(SetuidSafe), S: "SETUID_SAFE"},
	{I: uint32(NoReexportedDylibs), S: "NO_REEXPORTED_DYLIBS"},
	{I: uint32(PIE), S: "PIE"},
	{I: uint32(DeadStrippableDylib), S: "DEAD_STRIPPABLE_DYLIB"},
	{I: uint32(HasTLVDescriptors), S: "HAS_TLV_DESCRIPTORS"},
	{I: uint32(NoHeapExecution), S: "NO_HEAP_EXECUTION"},
	{I: uint32(AppExtensionSafe), S: "APP_EXTENSION_SAFE"},
	{I: uint32(NlistOutofsyncWithDyldinfo), S: "NLIST_OUTOFSYNC_WITH_DYLDINFO"},
	{I: uint32(SimSupport), S: "SIM_SUPPORT"},
	{I: uint32(DylibInCache), S: "DYLIB_IN_CACHE"},
}

// Has reports whether every bit of flag is set.
func (f Flag) Has(flag Flag) bool { return f&flag == flag }

func (f Flag) NoUndefs() bool     { return f.Has(NoUndefs) }
func (f Flag) DyldLink() bool     { return f.Has(DyldLink) }
func (f Flag) TwoLevel() bool     { return f.Has(TwoLevel) }
func (f Flag) PIE() bool          { return f.Has(PIE) }
func (f Flag) DylibInCache() bool { return f.Has(DylibInCache) }

///SETTER
func (f *Flag) Set(flag Flag, set bool) {
	if set {
		*f |= flag
	} else {
		*f &^= flag
	}
}

// String returns the name of a single flag, or its hex value.
func (f Flag) String() string { return utils.HexName(uint32(f), flagStrings) }

// List returns a string array of flag names
func (f Flag) List() []string {
	var flags []string
	for _, n := range flagStrings {
		if f.Has(Flag(n.I)) {
			flags = append(flags, n.S)
		}
	}
	return flags
}

func (f Flag) Flags() string {
	return strings.Join(f.List(), ", ")
}
