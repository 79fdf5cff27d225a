package macho

import (
	"fmt"
	"strings"

	"github.com/blacktop/lazymacho/pkg/macho/commands"
	"github.com/blacktop/lazymacho/pkg/macho/types"
)

// A Load represents any Mach-O load command.
//
// The set of implementations is closed: every value handed out by a File
// is one of the shapes in this file, with *LoadCmdBytes for tags that have
// no dedicated shape.
type Load interface {
	Raw() []byte
	String() string
	Command() commands.LoadCmd
	LoadSize() uint32
	isLoad()
}

// A LoadBytes is the uninterpreted bytes of a Mach-O load command,
// including its 8-byte {cmd, cmdsize} prefix.
type LoadBytes []byte

func (b LoadBytes) String() string {
	s := "["
	for i, a := range b {
		if i > 0 {
			s += " "
			if len(b) > 48 && i >= 16 {
				s += fmt.Sprintf("... (%d bytes)", len(b))
				break
			}
		}
		s += fmt.Sprintf("%x", a)
	}
	s += "]"
	return s
}

func (b LoadBytes) Raw() []byte { return b }
func (LoadBytes) isLoad()       {}

// Payload returns the bytes following the {cmd, cmdsize} prefix.
func (b LoadBytes) Payload() []byte {
	if len(b) < commands.LoadCmdHeaderSize {
		return nil
	}
	return b[commands.LoadCmdHeaderSize:]
}

// LoadCmdBytes is a command-tagged sequence of bytes.
// This is used for load commands without a dedicated shape.
type LoadCmdBytes struct {
	commands.LoadCmdHeader
	LoadBytes
}

func (s *LoadCmdBytes) String() string {
	return fmt.Sprintf("%-28s size=%d %s", s.Cmd, s.Len, LoadBytes(s.Payload()))
}

/*******************************************************************************
 * SEGMENT
 *******************************************************************************/

// A SegmentHeader is the header for a Mach-O 32-bit or 64-bit load segment command.
type SegmentHeader struct {
	commands.LoadCmdHeader
	Name    string
	Addr    uint64
	Memsz   uint64
	Offset  uint64
	Filesz  uint64
	Maxprot types.VmProtection
	Prot    types.VmProtection
	Nsect   uint32
	Flag    commands.SegFlag
}

// A Segment represents a Mach-O 32-bit or 64-bit load segment command.
type Segment struct {
	LoadBytes
	SegmentHeader
	Sections []*Section
}

func (s *Segment) String() string {
	return fmt.Sprintf("%-28s %-16s addr=%#09x-%#09x off=%#08x-%#08x %s/%s nsect=%d",
		s.Cmd, s.Name,
		s.Addr, s.Addr+s.Memsz,
		s.Offset, s.Offset+s.Filesz,
		s.Prot, s.Maxprot,
		s.Nsect)
}

// Is64 reports whether s came from an LC_SEGMENT_64 command.
func (s *Segment) Is64() bool { return s.Cmd == commands.LoadCmdSegment64 }

// A Section is a 32-bit or 64-bit section header, widened to 64 bits.
type Section struct {
	Name      string
	Seg       string
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	Reloff    uint32
	Nreloc    uint32
	Flags     commands.SectionFlag
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32 // 64-bit only
}

func (s *Section) String() string {
	return fmt.Sprintf("%s.%s addr=%#x size=%#x off=%#x align=2^%d (%s) %s",
		s.Seg, s.Name, s.Addr, s.Size, s.Offset, s.Align, s.Flags.TypeString(), s.Flags.AttributesString())
}

/*******************************************************************************
 * SYMBOL TABLES
 *******************************************************************************/

// A Symtab represents a Mach-O LC_SYMTAB command. The table itself is not read.
type Symtab struct {
	LoadBytes
	commands.SymtabCmd
}

func (s *Symtab) String() string {
	return fmt.Sprintf("%-28s sym_off=%#08x nsyms=%d str_off=%#08x str_size=%#x",
		s.Cmd, s.Symoff, s.Nsyms, s.Stroff, s.Strsize)
}

// A Dysymtab represents a Mach-O LC_DYSYMTAB command.
type Dysymtab struct {
	LoadBytes
	commands.DysymtabCmd
}

func (d *Dysymtab) String() string {
	return fmt.Sprintf("%-28s locals=%d exported=%d undefined=%d indirect=%d",
		d.Cmd, d.Nlocalsym, d.Nextdefsym, d.Nundefsym, d.Nindirectsyms)
}

/*******************************************************************************
 * DYLD
 *******************************************************************************/

// A DyldInfo represents a Mach-O LC_DYLD_INFO_ONLY command.
type DyldInfo struct {
	LoadBytes
	commands.DyldInfoCmd
}

func (d *DyldInfo) String() string {
	return fmt.Sprintf("%-28s rebase=%#x/%#x bind=%#x/%#x weak=%#x/%#x lazy=%#x/%#x export=%#x/%#x",
		d.Cmd,
		d.RebaseOff, d.RebaseSize,
		d.BindOff, d.BindSize,
		d.WeakBindOff, d.WeakBindSize,
		d.LazyBindOff, d.LazyBindSize,
		d.ExportOff, d.ExportSize)
}

// A Dylinker represents a Mach-O LC_LOAD_DYLINKER command.
type Dylinker struct {
	LoadBytes
	commands.LoadCmdHeader
	Name string
}

func (d *Dylinker) String() string { return fmt.Sprintf("%-28s %s", d.Cmd, d.Name) }

// A Dylib represents a Mach-O LC_LOAD_DYLIB command.
type Dylib struct {
	LoadBytes
	commands.LoadCmdHeader
	Name           string
	Time           uint32
	CurrentVersion types.Version
	CompatVersion  types.Version
}

func (d *Dylib) String() string {
	return fmt.Sprintf("%-28s %s (%s)", d.Cmd, d.Name, d.CurrentVersion)
}

/*******************************************************************************
 * VERSIONS
 *******************************************************************************/

// A BuildVersion represents a Mach-O LC_BUILD_VERSION command.
type BuildVersion struct {
	LoadBytes
	commands.LoadCmdHeader
	Platform types.Platform
	Minos    types.Version
	Sdk      types.Version
	NumTools uint32
	Tools    []types.BuildToolVersion
}

func (b *BuildVersion) String() string {
	var tools []string
	for _, t := range b.Tools {
		tools = append(tools, fmt.Sprintf("%s (%s)", t.Tool, t.Version))
	}
	s := fmt.Sprintf("%-28s Platform: %s, MinOS: %s, SDK: %s", b.Cmd, b.Platform, b.Minos, b.Sdk)
	if len(tools) > 0 {
		s += ", Tools: " + strings.Join(tools, ", ")
	}
	return s
}

// A SourceVersion represents a Mach-O LC_SOURCE_VERSION command.
type SourceVersion struct {
	LoadBytes
	commands.SourceVersionCmd
}

func (s *SourceVersion) String() string { return fmt.Sprintf("%-28s %s", s.Cmd, s.Version) }

/*******************************************************************************
 * MISC
 *******************************************************************************/

// A UUID represents a Mach-O LC_UUID command.
type UUID struct {
	LoadBytes
	commands.LoadCmdHeader
	ID types.UUID
}

func (u *UUID) String() string { return fmt.Sprintf("%-28s %s", u.Cmd, u.ID) }

// An EntryPoint represents a Mach-O LC_MAIN command.
type EntryPoint struct {
	LoadBytes
	commands.EntryPointCmd
}

func (e *EntryPoint) String() string {
	return fmt.Sprintf("%-28s entryoff=%#x stacksize=%#x", e.Cmd, e.Offset, e.StackSize)
}

// A LinkEditData represents any of the load commands that point at a blob
// in __LINKEDIT (code signature, function starts, chained fixups, ...).
type LinkEditData struct {
	LoadBytes
	commands.LinkEditDataCmd
}

func (l *LinkEditData) String() string {
	return fmt.Sprintf("%-28s offset=%#08x-%#08x size=%d", l.Cmd, l.Offset, l.Offset+l.Size, l.Size)
}

// An EncryptionInfo represents a Mach-O LC_ENCRYPTION_INFO command.
type EncryptionInfo struct {
	LoadBytes
	commands.EncryptionInfoCmd
}

func (e *EncryptionInfo) String() string {
	return fmt.Sprintf("%-28s offset=%#x size=%#x cryptid=%d", e.Cmd, e.Offset, e.Size, e.CryptID)
}

// An EncryptionInfo64 represents a Mach-O LC_ENCRYPTION_INFO_64 command.
type EncryptionInfo64 struct {
	LoadBytes
	commands.EncryptionInfo64Cmd
}

func (e *EncryptionInfo64) String() string {
	return fmt.Sprintf("%-28s offset=%#x size=%#x cryptid=%d", e.Cmd, e.Offset, e.Size, e.CryptID)
}
