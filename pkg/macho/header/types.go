package header

import "github.com/blacktop/lazymacho/pkg/macho/utils"

// A Type is the Mach-O file type, e.g. an object file, executable, or dynamic library.
type Type uint32

const (
	Obj        Type = 1
	Exec       Type = 2
	FVMLib     Type = 3
	Core       Type = 4
	Preload    Type = 5 /* preloaded executable file */
	Dylib      Type = 6 /* dynamically bound shared library */
	Dylinker   Type = 7 /* dynamic link editor */
	Bundle     Type = 8
	DylibStub  Type = 0x9 /* shared library stub for static */
	Dsym       Type = 0xa /* companion file with only debug */
	KextBundle Type = 0xb /* x86_64 kexts */
	FileSet    Type = 0xc /* kernel cache fileset */
)

var typeStrings = []utils.IntName{
	{I: uint32(Obj), S: "OBJECT"},
	{I: uint32(Exec), S: "EXECUTE"},
	{I: uint32(FVMLib), S: "FVMLIB"},
	{I: uint32(Core), S: "CORE"},
	{I: uint32(Preload), S: "PRELOAD"},
	{I: uint32(Dylib), S: "DYLIB"},
	{I: uint32(Dylinker), S: "DYLINKER"},
	{I: uint32(Bundle), S: "BUNDLE"},
	{I: uint32(DylibStub), S: "DYLIB_STUB"},
	{I: uint32(Dsym), S: "DSYM"},
	{I: uint32(KextBundle), S: "KEXT_BUNDLE"},
	{I: uint32(FileSet), S: "FILESET"},
}

func (t Type) String() string   { return utils.StringName(uint32(t), typeStrings, false) }
func (t Type) GoString() string { return utils.StringName(uint32(t), typeStrings, true) }
