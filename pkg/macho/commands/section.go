package commands

import (
	"strings"

	"github.com/blacktop/lazymacho/pkg/macho/utils"
)

// A Section32 is a 32-bit Mach-O section header.
type Section32 struct {
	Name     [16]byte
	Seg      [16]byte
	Addr     uint32
	Size     uint32
	Offset   uint32
	Align    uint32
	Reloff   uint32
	Nreloc   uint32
	Flags    SectionFlag
	Reserve1 uint32
	Reserve2 uint32
}

// A Section64 is a 64-bit Mach-O section header.
type Section64 struct {
	Name     [16]byte
	Seg      [16]byte
	Addr     uint64
	Size     uint64
	Offset   uint32
	Align    uint32
	Reloff   uint32
	Nreloc   uint32
	Flags    SectionFlag
	Reserve1 uint32
	Reserve2 uint32
	Reserve3 uint32
}

const (
	Section32Size = 68
	Section64Size = 80
)

type SectionFlag uint32

const (
	SectionType       SectionFlag = 0x000000ff /* 256 section types */
	SectionAttributes SectionFlag = 0xffffff00 /*  24 section attributes */
)

const (
	PURE_INSTRUCTIONS   SectionFlag = 0x80000000 /* section contains only true machine instructions */
	NO_TOC              SectionFlag = 0x40000000 /* section contains coalesced symbols that are not to be in a ranlib table of contents */
	STRIP_STATIC_SYMS   SectionFlag = 0x20000000 /* ok to strip static symbols in this section in files with the MH_DYLDLINK flag */
	NO_DEAD_STRIP       SectionFlag = 0x10000000 /* no dead stripping */
	LIVE_SUPPORT        SectionFlag = 0x08000000 /* blocks are live if they reference live blocks */
	SELF_MODIFYING_CODE SectionFlag = 0x04000000 /* Used with i386 code stubs written on by dyld */
	DEBUG               SectionFlag = 0x02000000 /* a debug section */
	SOME_INSTRUCTIONS   SectionFlag = 0x00000400 /* section contains some machine instructions */
	EXT_RELOC           SectionFlag = 0x00000200 /* section has external relocation entries */
	LOC_RELOC           SectionFlag = 0x00000100 /* section has local relocation entries */
)

var sectionAttrStrings = []utils.IntName{
	{I: uint32(PURE_INSTRUCTIONS), S: "PureInstructions"},
	{I: uint32(NO_TOC), S: "NoToc"},
	{I: uint32(STRIP_STATIC_SYMS), S: "StripStaticSyms"},
	{I: uint32(NO_DEAD_STRIP), S: "NoDeadStrip"},
	{I: uint32(LIVE_SUPPORT), S: "LiveSupport"},
	{I: uint32(SELF_MODIFYING_CODE), S: "SelfModifyingCode"},
	{I: uint32(DEBUG), S: "Debug"},
	{I: uint32(SOME_INSTRUCTIONS), S: "SomeInstructions"},
	{I: uint32(EXT_RELOC), S: "ExtReloc"},
	{I: uint32(LOC_RELOC), S: "LocReloc"},
}

/* Constants for the type of a section */
const (
	S_REGULAR                             SectionFlag = 0x0  /* regular section */
	S_ZEROFILL                            SectionFlag = 0x1  /* zero fill on demand section */
	S_CSTRING_LITERALS                    SectionFlag = 0x2  /* section with only literal C strings*/
	S_4BYTE_LITERALS                      SectionFlag = 0x3  /* section with only 4 byte literals */
	S_8BYTE_LITERALS                      SectionFlag = 0x4  /* section with only 8 byte literals */
	S_LITERAL_POINTERS                    SectionFlag = 0x5  /* section with only pointers to literals */
	S_NON_LAZY_SYMBOL_POINTERS            SectionFlag = 0x6  /* section with only non-lazy symbol pointers */
	S_LAZY_SYMBOL_POINTERS                SectionFlag = 0x7  /* section with only lazy symbol pointers */
	S_SYMBOL_STUBS                        SectionFlag = 0x8  /* section with only symbol stubs */
	S_MOD_INIT_FUNC_POINTERS              SectionFlag = 0x9  /* section with only function pointers for initialization*/
	S_MOD_TERM_FUNC_POINTERS              SectionFlag = 0xa  /* section with only function pointers for termination */
	S_COALESCED                           SectionFlag = 0xb  /* section contains symbols that are to be coalesced */
	S_GB_ZEROFILL                         SectionFlag = 0xc  /* zero fill on demand section (that can be larger than 4 gigabytes) */
	S_INTERPOSING                         SectionFlag = 0xd  /* section with only pairs of function pointers for interposing */
	S_16BYTE_LITERALS                     SectionFlag = 0xe  /* section with only 16 byte literals */
	S_DTRACE_DOF                          SectionFlag = 0xf  /* section contains DTrace Object Format */
	S_LAZY_DYLIB_SYMBOL_POINTERS          SectionFlag = 0x10 /* section with only lazy symbol pointers to lazy loaded dylibs */
	S_THREAD_LOCAL_REGULAR                SectionFlag = 0x11 /* template of initial values for TLVs */
	S_THREAD_LOCAL_ZEROFILL               SectionFlag = 0x12 /* template of initial values for TLVs */
	S_THREAD_LOCAL_VARIABLES              SectionFlag = 0x13 /* TLV descriptors */
	S_THREAD_LOCAL_VARIABLE_POINTERS      SectionFlag = 0x14 /* pointers to TLV descriptors */
	S_THREAD_LOCAL_INIT_FUNCTION_POINTERS SectionFlag = 0x15 /* functions to call to initialize TLV values */
	S_INIT_FUNC_OFFSETS                   SectionFlag = 0x16 /* 32-bit offsets to initializers */
)

var sectionTypeStrings = []utils.IntName{
	{I: uint32(S_REGULAR), S: "Regular"},
	{I: uint32(S_ZEROFILL), S: "Zerofill"},
	{I: uint32(S_CSTRING_LITERALS), S: "Cstring Literals"},
	{I: uint32(S_4BYTE_LITERALS), S: "4Byte Literals"},
	{I: uint32(S_8BYTE_LITERALS), S: "8Byte Literals"},
	{I: uint32(S_LITERAL_POINTERS), S: "Literal Pointers"},
	{I: uint32(S_NON_LAZY_SYMBOL_POINTERS), S: "NonLazySymbolPointers"},
	{I: uint32(S_LAZY_SYMBOL_POINTERS), S: "LazySymbolPointers"},
	{I: uint32(S_SYMBOL_STUBS), S: "SymbolStubs"},
	{I: uint32(S_MOD_INIT_FUNC_POINTERS), S: "ModInitFuncPointers"},
	{I: uint32(S_MOD_TERM_FUNC_POINTERS), S: "ModTermFuncPointers"},
	{I: uint32(S_COALESCED), S: "Coalesced"},
	{I: uint32(S_GB_ZEROFILL), S: "GbZerofill"},
	{I: uint32(S_INTERPOSING), S: "Interposing"},
	{I: uint32(S_16BYTE_LITERALS), S: "16ByteLiterals"},
	{I: uint32(S_DTRACE_DOF), S: "DtraceDof"},
	{I: uint32(S_LAZY_DYLIB_SYMBOL_POINTERS), S: "LazyDylibSymbolPointers"},
	{I: uint32(S_THREAD_LOCAL_REGULAR), S: "ThreadLocalRegular"},
	{I: uint32(S_THREAD_LOCAL_ZEROFILL), S: "ThreadLocalZerofill"},
	{I: uint32(S_THREAD_LOCAL_VARIABLES), S: "ThreadLocalVariables"},
	{I: uint32(S_THREAD_LOCAL_VARIABLE_POINTERS), S: "ThreadLocalVariablePointers"},
	{I: uint32(S_THREAD_LOCAL_INIT_FUNCTION_POINTERS), S: "ThreadLocalInitFunctionPointers"},
	{I: uint32(S_INIT_FUNC_OFFSETS), S: "InitFuncOffsets"},
}

func (t SectionFlag) GetType() SectionFlag {
	return t & SectionType
}

// TypeString returns the name of the section type.
func (t SectionFlag) TypeString() string {
	return utils.StringName(uint32(t.GetType()), sectionTypeStrings, false)
}

func (t SectionFlag) GetAttributes() SectionFlag {
	return (t & SectionAttributes)
}

func (t SectionFlag) AttributesList() []string {
	var attrs []string
	for _, n := range sectionAttrStrings {
		if t.GetAttributes()&SectionFlag(n.I) != 0 {
			attrs = append(attrs, n.S)
		}
	}
	return attrs
}

func (t SectionFlag) AttributesString() string {
	return strings.Join(t.AttributesList(), "|")
}
