package commands

import (
	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/blacktop/lazymacho/pkg/macho/utils"
)

// A LoadCmd is a Mach-O load command.
type LoadCmd uint32

const (
	LoadCmdReqDyld       LoadCmd = 0x80000000
	LoadCmdSegment       LoadCmd = 0x1  // segment of this file to be mapped
	LoadCmdSymtab        LoadCmd = 0x2  // link-edit stab symbol table info
	LoadCmdSymseg        LoadCmd = 0x3  // link-edit gdb symbol table info (obsolete)
	LoadCmdThread        LoadCmd = 0x4  // thread
	LoadCmdUnixThread    LoadCmd = 0x5  // thread+stack
	LoadCmdLoadfvmlib    LoadCmd = 0x6  // load a specified fixed VM shared library
	LoadCmdIdfvmlib      LoadCmd = 0x7  // fixed VM shared library identification
	LoadCmdIdent         LoadCmd = 0x8  // object identification info (obsolete)
	LoadCmdFvmfile       LoadCmd = 0x9  // fixed VM file inclusion (internal use)
	LoadCmdPrepage       LoadCmd = 0xa  // prepage command (internal use)
	LoadCmdDysymtab      LoadCmd = 0xb  // dynamic link-edit symbol table info
	LoadCmdDylib         LoadCmd = 0xc  // load dylib command
	LoadCmdDylibID       LoadCmd = 0xd  // id dylib command
	LoadCmdDylinker      LoadCmd = 0xe  // load a dynamic linker
	LoadCmdDylinkerID    LoadCmd = 0xf  // id dylinker command (not load dylinker command)
	LoadCmdPreboundDylib LoadCmd = 0x10 // modules prebound for a dynamically linked shared library
	LoadCmdRoutines      LoadCmd = 0x11 // image routines
	LoadCmdSubFramework  LoadCmd = 0x12 // sub framework
	LoadCmdSubUmbrella   LoadCmd = 0x13 // sub umbrella
	LoadCmdSubClient     LoadCmd = 0x14 // sub client
	LoadCmdSubLibrary    LoadCmd = 0x15 // sub library
	LoadCmdTwolevelHints LoadCmd = 0x16 // two-level namespace lookup hints
	LoadCmdPrebindCksum  LoadCmd = 0x17 // prebind checksum

	LoadCmdLoadWeakDylib          LoadCmd = (0x18 | LoadCmdReqDyld) // load a dylib that is allowed to be missing
	LoadCmdSegment64              LoadCmd = 0x19                    // 64-bit segment of this file to be mapped
	LoadCmdRoutines64             LoadCmd = 0x1a                    // 64-bit image routines
	LoadCmdUUID                   LoadCmd = 0x1b                    // the uuid
	LoadCmdRpath                  LoadCmd = (0x1c | LoadCmdReqDyld) // runpath additions
	LoadCmdCodeSignature          LoadCmd = 0x1d                    // local of code signature
	LoadCmdSegmentSplitInfo       LoadCmd = 0x1e                    // local of info to split segments
	LoadCmdReexportDylib          LoadCmd = (0x1f | LoadCmdReqDyld) // load and re-export dylib
	LoadCmdLazyLoadDylib          LoadCmd = 0x20                    // delay load of dylib until first use
	LoadCmdEncryptionInfo         LoadCmd = 0x21                    // encrypted segment information
	LoadCmdDyldInfo               LoadCmd = 0x22                    // compressed dyld information
	LoadCmdDyldInfoOnly           LoadCmd = (0x22 | LoadCmdReqDyld) // compressed dyld information only
	LoadCmdLoadUpwardDylib        LoadCmd = (0x23 | LoadCmdReqDyld) // load upward dylib
	LoadCmdVersionMinMacosx       LoadCmd = 0x24                    // build for MacOSX min OS version
	LoadCmdVersionMinIphoneos     LoadCmd = 0x25                    // build for iPhoneOS min OS version
	LoadCmdFunctionStarts         LoadCmd = 0x26                    // compressed table of function start addresses
	LoadCmdDyldEnvironment        LoadCmd = 0x27                    // string for dyld to treat like environment variable
	LoadCmdMain                   LoadCmd = (0x28 | LoadCmdReqDyld) // replacement for LC_UNIXTHREAD
	LoadCmdDataInCode             LoadCmd = 0x29                    // table of non-instructions in __text
	LoadCmdSourceVersion          LoadCmd = 0x2A                    // source version used to build binary
	LoadCmdDylibCodeSignDrs       LoadCmd = 0x2B                    // Code signing DRs copied from linked dylibs
	LoadCmdEncryptionInfo64       LoadCmd = 0x2C                    // 64-bit encrypted segment information
	LoadCmdLinkerOption           LoadCmd = 0x2D                    // linker options in MH_OBJECT files
	LoadCmdLinkerOptimizationHint LoadCmd = 0x2E                    // optimization hints in MH_OBJECT files
	LoadCmdVersionMinTvos         LoadCmd = 0x2F                    // build for AppleTV min OS version
	LoadCmdVersionMinWatchos      LoadCmd = 0x30                    // build for Watch min OS version
	LoadCmdNote                   LoadCmd = 0x31                    // arbitrary data included within a Mach-O file
	LoadCmdBuildVersion           LoadCmd = 0x32                    // build for platform min OS version
	LoadCmdDyldExportsTrie        LoadCmd = (0x33 | LoadCmdReqDyld) // used with linkedit_data_command, payload is trie
	LoadCmdDyldChainedFixups      LoadCmd = (0x34 | LoadCmdReqDyld) // used with linkedit_data_command
	LoadCmdFilesetEntry           LoadCmd = (0x35 | LoadCmdReqDyld) // used with fileset_entry_command
	LoadCmdAtomInfo               LoadCmd = 0x36                    // used with linkedit_data_command
	LoadCmdFunctionVariants       LoadCmd = 0x37                    // used with linkedit_data_command
	LoadCmdFunctionVariantFixups  LoadCmd = 0x38                    // used with linkedit_data_command
	LoadCmdTargetTriple           LoadCmd = 0x39                    // target triple used to compile
)

var cmdStrings = []utils.IntName{
	{I: uint32(LoadCmdSegment), S: "LC_SEGMENT"},
	{I: uint32(LoadCmdSymtab), S: "LC_SYMTAB"},
	{I: uint32(LoadCmdSymseg), S: "LC_SYMSEG"},
	{I: uint32(LoadCmdThread), S: "LC_THREAD"},
	{I: uint32(LoadCmdUnixThread), S: "LC_UNIXTHREAD"},
	{I: uint32(LoadCmdLoadfvmlib), S: "LC_LOADFVMLIB"},
	{I: uint32(LoadCmdIdfvmlib), S: "LC_IDFVMLIB"},
	{I: uint32(LoadCmdIdent), S: "LC_IDENT"},
	{I: uint32(LoadCmdFvmfile), S: "LC_FVMFILE"},
	{I: uint32(LoadCmdPrepage), S: "LC_PREPAGE"},
	{I: uint32(LoadCmdDysymtab), S: "LC_DYSYMTAB"},
	{I: uint32(LoadCmdDylib), S: "LC_LOAD_DYLIB"},
	{I: uint32(LoadCmdDylibID), S: "LC_ID_DYLIB"},
	{I: uint32(LoadCmdDylinker), S: "LC_LOAD_DYLINKER"},
	{I: uint32(LoadCmdDylinkerID), S: "LC_ID_DYLINKER"},
	{I: uint32(LoadCmdPreboundDylib), S: "LC_PREBOUND_DYLIB"},
	{I: uint32(LoadCmdRoutines), S: "LC_ROUTINES"},
	{I: uint32(LoadCmdSubFramework), S: "LC_SUB_FRAMEWORK"},
	{I: uint32(LoadCmdSubUmbrella), S: "LC_SUB_UMBRELLA"},
	{I: uint32(LoadCmdSubClient), S: "LC_SUB_CLIENT"},
	{I: uint32(LoadCmdSubLibrary), S: "LC_SUB_LIBRARY"},
	{I: uint32(LoadCmdTwolevelHints), S: "LC_TWOLEVEL_HINTS"},
	{I: uint32(LoadCmdPrebindCksum), S: "LC_PREBIND_CKSUM"},
	{I: uint32(LoadCmdLoadWeakDylib), S: "LC_LOAD_WEAK_DYLIB"},
	{I: uint32(LoadCmdSegment64), S: "LC_SEGMENT_64"},
	{I: uint32(LoadCmdRoutines64), S: "LC_ROUTINES_64"},
	{I: uint32(LoadCmdUUID), S: "LC_UUID"},
	{I: uint32(LoadCmdRpath), S: "LC_RPATH"},
	{I: uint32(LoadCmdCodeSignature), S: "LC_CODE_SIGNATURE"},
	{I: uint32(LoadCmdSegmentSplitInfo), S: "LC_SEGMENT_SPLIT_INFO"},
	{I: uint32(LoadCmdReexportDylib), S: "LC_REEXPORT_DYLIB"},
	{I: uint32(LoadCmdLazyLoadDylib), S: "LC_LAZY_LOAD_DYLIB"},
	{I: uint32(LoadCmdEncryptionInfo), S: "LC_ENCRYPTION_INFO"},
	{I: uint32(LoadCmdDyldInfo), S: "LC_DYLD_INFO"},
	{I: uint32(LoadCmdDyldInfoOnly), S: "LC_DYLD_INFO_ONLY"},
	{I: uint32(LoadCmdLoadUpwardDylib), S: "LC_LOAD_UPWARD_DYLIB"},
	{I: uint32(LoadCmdVersionMinMacosx), S: "LC_VERSION_MIN_MACOSX"},
	{I: uint32(LoadCmdVersionMinIphoneos), S: "LC_VERSION_MIN_IPHONEOS"},
	{I: uint32(LoadCmdFunctionStarts), S: "LC_FUNCTION_STARTS"},
	{I: uint32(LoadCmdDyldEnvironment), S: "LC_DYLD_ENVIRONMENT"},
	{I: uint32(LoadCmdMain), S: "LC_MAIN"},
	{I: uint32(LoadCmdDataInCode), S: "LC_DATA_IN_CODE"},
	{I: uint32(LoadCmdSourceVersion), S: "LC_SOURCE_VERSION"},
	{I: uint32(LoadCmdDylibCodeSignDrs), S: "LC_DYLIB_CODE_SIGN_DRS"},
	{I: uint32(LoadCmdEncryptionInfo64), S: "LC_ENCRYPTION_INFO_64"},
	{I: uint32(LoadCmdLinkerOption), S: "LC_LINKER_OPTION"},
	{I: uint32(LoadCmdLinkerOptimizationHint), S: "LC_LINKER_OPTIMIZATION_HINT"},
	{I: uint32(LoadCmdVersionMinTvos), S: "LC_VERSION_MIN_TVOS"},
	{I: uint32(LoadCmdVersionMinWatchos), S: "LC_VERSION_MIN_WATCHOS"},
	{I: uint32(LoadCmdNote), S: "LC_NOTE"},
	{I: uint32(LoadCmdBuildVersion), S: "LC_BUILD_VERSION"},
	{I: uint32(LoadCmdDyldExportsTrie), S: "LC_DYLD_EXPORTS_TRIE"},
	{I: uint32(LoadCmdDyldChainedFixups), S: "LC_DYLD_CHAINED_FIXUPS"},
	{I: uint32(LoadCmdFilesetEntry), S: "LC_FILESET_ENTRY"},
	{I: uint32(LoadCmdAtomInfo), S: "LC_ATOM_INFO"},
	{I: uint32(LoadCmdFunctionVariants), S: "LC_FUNCTION_VARIANTS"},
	{I: uint32(LoadCmdFunctionVariantFixups), S: "LC_FUNCTION_VARIANT_FIXUPS"},
	{I: uint32(LoadCmdTargetTriple), S: "LC_TARGET_TRIPLE"},
}

func (i LoadCmd) String() string   { return utils.HexName(uint32(i), cmdStrings) }
func (i LoadCmd) GoString() string { return utils.StringName(uint32(i), cmdStrings, true) }

// Known reports whether i has a name in the command catalog.
func (i LoadCmd) Known() bool {
	_, ok := utils.Lookup(uint32(i), cmdStrings)
	return ok
}

// RequiresDyld reports whether the REQ_DYLD bit is set.
func (i LoadCmd) RequiresDyld() bool { return i&LoadCmdReqDyld != 0 }

// LoadCmdHeader is the {cmd, cmdsize} prefix every load command starts with.
type LoadCmdHeader struct {
	Cmd LoadCmd
	Len uint32 // includes this header
}

// LoadCmdHeaderSize is the size of LoadCmdHeader on disk.
const LoadCmdHeaderSize = 8

func (h LoadCmdHeader) Command() LoadCmd  { return h.Cmd }
func (h LoadCmdHeader) LoadSize() uint32 { return h.Len }

type SegFlag uint32

/* Constants for the flags field of the segment_command */
const (
	HighVM            SegFlag = 0x1  /* file contents are for the high part of the VM space */
	FvmLib            SegFlag = 0x2  /* VM allocated by a fixed VM library */
	NoReLoc           SegFlag = 0x4  /* nothing relocated in it and nothing relocated to it */
	ProtectedVersion1 SegFlag = 0x8  /* segment is protected past the first page */
	ReadOnly          SegFlag = 0x10 /* made read-only after fixups */
)

// A Segment32 is a 32-bit Mach-O segment load command.
type Segment32 struct {
	LoadCmdHeader                    /* LC_SEGMENT */
	Name          [16]byte           /* segment name */
	Addr          uint32             /* memory address of this segment */
	Memsz         uint32             /* memory size of this segment */
	Offset        uint32             /* file offset of this segment */
	Filesz        uint32             /* amount to map from the file */
	Maxprot       types.VmProtection /* maximum VM protection */
	Prot          types.VmProtection /* initial VM protection */
	Nsect         uint32             /* number of sections in segment */
	Flag          SegFlag            /* flags */
}

// A Segment64 is a 64-bit Mach-O segment load command.
type Segment64 struct {
	LoadCmdHeader                    /* LC_SEGMENT_64 */
	Name          [16]byte           /* segment name */
	Addr          uint64             /* memory address of this segment */
	Memsz         uint64             /* memory size of this segment */
	Offset        uint64             /* file offset of this segment */
	Filesz        uint64             /* amount to map from the file */
	Maxprot       types.VmProtection /* maximum VM protection */
	Prot          types.VmProtection /* initial VM protection */
	Nsect         uint32             /* number of sections in segment */
	Flag          SegFlag            /* flags */
}

// A SymtabCmd is a Mach-O symbol table command.
type SymtabCmd struct {
	LoadCmdHeader // LC_SYMTAB
	Symoff        uint32
	Nsyms         uint32
	Stroff        uint32
	Strsize       uint32
}

// A DysymtabCmd is a Mach-O dynamic symbol table command.
type DysymtabCmd struct {
	LoadCmdHeader  // LC_DYSYMTAB
	Ilocalsym      uint32
	Nlocalsym      uint32
	Iextdefsym     uint32
	Nextdefsym     uint32
	Iundefsym      uint32
	Nundefsym      uint32
	Tocoffset      uint32
	Ntoc           uint32
	Modtaboff      uint32
	Nmodtab        uint32
	Extrefsymoff   uint32
	Nextrefsyms    uint32
	Indirectsymoff uint32
	Nindirectsyms  uint32
	Extreloff      uint32
	Nextrel        uint32
	Locreloff      uint32
	Nlocrel        uint32
}

// A DylibCmd is a Mach-O load dynamic library command.
type DylibCmd struct {
	LoadCmdHeader  // LC_LOAD_DYLIB
	Name           uint32
	Time           uint32
	CurrentVersion types.Version
	CompatVersion  types.Version
}

// A DylinkerCmd is a Mach-O dynamic load a dynamic linker command.
type DylinkerCmd struct {
	LoadCmdHeader        // LC_LOAD_DYLINKER
	Name          uint32 // dynamic linker's path name
}

// A UUIDCmd is a Mach-O uuid load command contains a single
// 128-bit unique random number that identifies an object produced
// by the static link editor.
type UUIDCmd struct {
	LoadCmdHeader // LC_UUID
	UUID          types.UUID
}

// A LinkEditDataCmd is a Mach-O linkedit data command.
type LinkEditDataCmd struct {
	LoadCmdHeader
	Offset uint32
	Size   uint32
}

// A EncryptionInfoCmd is a Mach-O encrypted segment information command.
type EncryptionInfoCmd struct {
	LoadCmdHeader        // LC_ENCRYPTION_INFO
	Offset        uint32 // file offset of encrypted range
	Size          uint32 // file size of encrypted range
	CryptID       uint32 // which enryption system, 0 means not-encrypted yet
}

// A EncryptionInfo64Cmd is a Mach-O 64-bit encrypted segment information command.
type EncryptionInfo64Cmd struct {
	LoadCmdHeader        // LC_ENCRYPTION_INFO_64
	Offset        uint32 // file offset of encrypted range
	Size          uint32 // file size of encrypted range
	CryptID       uint32 // which enryption system, 0 means not-encrypted yet
	Pad           uint32 // padding to make this struct's size a multiple of 8 bytes
}

// A DyldInfoCmd is a Mach-O id dyld info command.
type DyldInfoCmd struct {
	LoadCmdHeader        // LC_DYLD_INFO
	RebaseOff     uint32 // file offset to rebase info
	RebaseSize    uint32 //  size of rebase info
	BindOff       uint32 // file offset to binding info
	BindSize      uint32 // size of binding info
	WeakBindOff   uint32 // file offset to weak binding info
	WeakBindSize  uint32 //  size of weak binding info
	LazyBindOff   uint32 // file offset to lazy binding info
	LazyBindSize  uint32 //  size of lazy binding info
	ExportOff     uint32 // file offset to export info
	ExportSize    uint32 //  size of export info
}

// A EntryPointCmd is a Mach-O main command.
type EntryPointCmd struct {
	LoadCmdHeader        // LC_MAIN only used in MH_EXECUTE filetypes
	Offset        uint64 // file (__TEXT) offset of main()
	StackSize     uint64 // if not zero, initial stack size
}

// A SourceVersionCmd is a Mach-O source version command.
type SourceVersionCmd struct {
	LoadCmdHeader                  // LC_SOURCE_VERSION
	Version       types.SrcVersion // A.B.C.D.E packed as a24.b10.c10.d10.e10
}

/*
* The build_version_command contains the min OS version on which this
* binary was built to run for its platform.  The list of known platforms and
* tool values following it.
 */
type BuildVersionCmd struct {
	LoadCmdHeader                /* LC_BUILD_VERSION */
	Platform      types.Platform /* platform */
	Minos         types.Version  /* X.Y.Z is encoded in nibbles xxxx.yy.zz */
	Sdk           types.Version  /* X.Y.Z is encoded in nibbles xxxx.yy.zz */
	NumTools      uint32         /* number of tool entries following this */
}
