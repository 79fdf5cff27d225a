package macho

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/blacktop/lazymacho/pkg/macho/commands"
	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/google/go-cmp/cmp"
)

func TestDispatchShapes(t *testing.T) {
	linkedit := func(cmd commands.LoadCmd) []byte {
		return le(t, commands.LinkEditDataCmd{LoadCmdHeader: hdr(cmd, 16), Offset: 0x8000, Size: 0x40})
	}
	tests := []struct {
		name  string
		dat   []byte
		check func(t *testing.T, l Load)
	}{
		{
			name: "uuid",
			dat:  uuidCmd(t, types.UUID{0xde, 0xad}),
			check: func(t *testing.T, l Load) {
				if u := l.(*UUID); u.ID != (types.UUID{0xde, 0xad}) {
					t.Errorf("ID = %s", u.ID)
				}
			},
		},
		{
			name: "dylib",
			dat:  dylibCmd(t, "/usr/lib/libobjc.A.dylib", 0x00e40000, 0x00010000),
			check: func(t *testing.T, l Load) {
				d := l.(*Dylib)
				if d.Name != "/usr/lib/libobjc.A.dylib" {
					t.Errorf("Name = %q", d.Name)
				}
				if d.CurrentVersion.String() != "228.0.0" || d.CompatVersion.String() != "1.0.0" {
					t.Errorf("versions = %s/%s", d.CurrentVersion, d.CompatVersion)
				}
				if d.Time != 2 {
					t.Errorf("Time = %d", d.Time)
				}
			},
		},
		{
			name: "dylinker",
			dat:  dylinkerCmd(t, "/usr/lib/dyld"),
			check: func(t *testing.T, l Load) {
				if d := l.(*Dylinker); d.Name != "/usr/lib/dyld" {
					t.Errorf("Name = %q", d.Name)
				}
			},
		},
		{
			name: "build version",
			dat: buildVersionCmd(t, types.PlatformMacOS, 0x000e0000, 0x000e0500,
				types.BuildToolVersion{Tool: types.ToolLd, Version: 0x03f80100}),
			check: func(t *testing.T, l Load) {
				b := l.(*BuildVersion)
				if b.Platform != types.PlatformMacOS || b.Minos.String() != "14.0.0" || b.Sdk.String() != "14.5.0" {
					t.Errorf("BuildVersion = %s", b)
				}
				want := []types.BuildToolVersion{{Tool: types.ToolLd, Version: 0x03f80100}}
				if diff := cmp.Diff(want, b.Tools); diff != "" {
					t.Errorf("Tools mismatch (-want +got):\n%s", diff)
				}
				if !strings.Contains(b.String(), "ld (1016.1.0)") {
					t.Errorf("String() = %q", b.String())
				}
			},
		},
		{
			name: "segment 64",
			dat:  segment64Cmd(t, "__TEXT", 0x100000000, "__text", "__cstring"),
			check: func(t *testing.T, l Load) {
				s := l.(*Segment)
				if !s.Is64() || s.Name != "__TEXT" || s.Nsect != 2 {
					t.Errorf("Segment = %s", s)
				}
				want := []*Section{
					{Name: "__text", Seg: "__TEXT", Addr: 0x100000000, Size: 0x100, Align: 2, Flags: commands.PURE_INSTRUCTIONS | commands.SOME_INSTRUCTIONS},
					{Name: "__cstring", Seg: "__TEXT", Addr: 0x100000100, Size: 0x100, Offset: 0x100, Align: 2, Flags: commands.PURE_INSTRUCTIONS | commands.SOME_INSTRUCTIONS},
				}
				if diff := cmp.Diff(want, s.Sections); diff != "" {
					t.Errorf("Sections mismatch (-want +got):\n%s", diff)
				}
				if s.Prot.String() != "r-x" {
					t.Errorf("Prot = %s", s.Prot)
				}
			},
		},
		{
			name: "segment 32",
			dat:  segment32Cmd(t, "__DATA", 0x4000, "__bss"),
			check: func(t *testing.T, l Load) {
				s := l.(*Segment)
				if s.Is64() || s.Name != "__DATA" || len(s.Sections) != 1 {
					t.Fatalf("Segment = %s", s)
				}
				if got := s.Sections[0].Flags.TypeString(); got != "Zerofill" {
					t.Errorf("section type = %q, want Zerofill", got)
				}
			},
		},
		{
			name: "symtab",
			dat:  le(t, commands.SymtabCmd{LoadCmdHeader: hdr(commands.LoadCmdSymtab, 24), Symoff: 0x100, Nsyms: 3, Stroff: 0x200, Strsize: 0x40}),
			check: func(t *testing.T, l Load) {
				if s := l.(*Symtab); s.Nsyms != 3 || s.Stroff != 0x200 {
					t.Errorf("Symtab = %s", s)
				}
			},
		},
		{
			name: "dysymtab",
			dat:  le(t, commands.DysymtabCmd{LoadCmdHeader: hdr(commands.LoadCmdDysymtab, 80), Nlocalsym: 4, Nundefsym: 2}),
			check: func(t *testing.T, l Load) {
				if d := l.(*Dysymtab); d.Nlocalsym != 4 || d.Nundefsym != 2 {
					t.Errorf("Dysymtab = %s", d)
				}
			},
		},
		{
			name: "dyld info only",
			dat:  le(t, commands.DyldInfoCmd{LoadCmdHeader: hdr(commands.LoadCmdDyldInfoOnly, 48), ExportOff: 0x9000, ExportSize: 0x30}),
			check: func(t *testing.T, l Load) {
				if d := l.(*DyldInfo); d.ExportOff != 0x9000 {
					t.Errorf("DyldInfo = %s", d)
				}
			},
		},
		{
			name: "dyld info stays generic",
			dat:  le(t, commands.DyldInfoCmd{LoadCmdHeader: hdr(commands.LoadCmdDyldInfo, 48)}),
			check: func(t *testing.T, l Load) {
				if _, ok := l.(*LoadCmdBytes); !ok {
					t.Errorf("got %T, want *LoadCmdBytes", l)
				}
			},
		},
		{
			name: "weak dylib stays generic",
			dat:  rawCmd(t, commands.LoadCmdLoadWeakDylib, 32, nil),
			check: func(t *testing.T, l Load) {
				if _, ok := l.(*LoadCmdBytes); !ok {
					t.Errorf("got %T, want *LoadCmdBytes", l)
				}
			},
		},
		{
			name: "main",
			dat:  le(t, commands.EntryPointCmd{LoadCmdHeader: hdr(commands.LoadCmdMain, 24), Offset: 0x3f40}),
			check: func(t *testing.T, l Load) {
				if e := l.(*EntryPoint); e.Offset != 0x3f40 {
					t.Errorf("EntryPoint = %s", e)
				}
			},
		},
		{
			name: "encryption info",
			dat:  le(t, commands.EncryptionInfoCmd{LoadCmdHeader: hdr(commands.LoadCmdEncryptionInfo, 20), Offset: 0x4000, CryptID: 1}),
			check: func(t *testing.T, l Load) {
				if e := l.(*EncryptionInfo); e.CryptID != 1 {
					t.Errorf("EncryptionInfo = %s", e)
				}
			},
		},
		{
			name: "encryption info 64",
			dat:  le(t, commands.EncryptionInfo64Cmd{LoadCmdHeader: hdr(commands.LoadCmdEncryptionInfo64, 24), Offset: 0x4000, Size: 0x1000}),
			check: func(t *testing.T, l Load) {
				if e := l.(*EncryptionInfo64); e.Size != 0x1000 {
					t.Errorf("EncryptionInfo64 = %s", e)
				}
			},
		},
		{
			name: "source version",
			dat:  sourceVersionCmd(t, srcVersion),
			check: func(t *testing.T, l Load) {
				if s := l.(*SourceVersion); s.Version.String() != "1.2.3.4.5" {
					t.Errorf("SourceVersion = %s", s)
				}
			},
		},
	}
	for _, cmd := range []commands.LoadCmd{
		commands.LoadCmdCodeSignature,
		commands.LoadCmdSegmentSplitInfo,
		commands.LoadCmdDylibCodeSignDrs,
		commands.LoadCmdLinkerOptimizationHint,
		commands.LoadCmdDyldExportsTrie,
		commands.LoadCmdDyldChainedFixups,
		commands.LoadCmdFunctionStarts,
		commands.LoadCmdDataInCode,
	} {
		tests = append(tests, struct {
			name  string
			dat   []byte
			check func(t *testing.T, l Load)
		}{
			name: cmd.String(),
			dat:  linkedit(cmd),
			check: func(t *testing.T, l Load) {
				if e := l.(*LinkEditData); e.Offset != 0x8000 || e.Size != 0x40 {
					t.Errorf("LinkEditData = %s", e)
				}
			},
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := commands.LoadCmd(binary.LittleEndian.Uint32(tt.dat))
			l, err := dispatch(cmd, tt.dat, Layout64LE, 0x20)
			if err != nil {
				t.Fatalf("dispatch() error = %v", err)
			}
			if l.Command() != cmd {
				t.Errorf("Command() = %s, want %s", l.Command(), cmd)
			}
			if int(l.LoadSize()) != len(tt.dat) {
				t.Errorf("LoadSize() = %d, want %d", l.LoadSize(), len(tt.dat))
			}
			if diff := cmp.Diff(tt.dat, l.Raw()); diff != "" {
				t.Errorf("Raw() mismatch (-want +got):\n%s", diff)
			}
			if l.String() == "" {
				t.Error("String() is empty")
			}
			tt.check(t, l)
		})
	}
}

func TestDispatchMalformed(t *testing.T) {
	dylibBadName := dylibCmd(t, "/usr/lib/libz.1.dylib", 0, 0)
	binary.LittleEndian.PutUint32(dylibBadName[8:], 0x400)

	dylibNameInFixed := dylibCmd(t, "/usr/lib/libz.1.dylib", 0, 0)
	binary.LittleEndian.PutUint32(dylibNameInFixed[8:], 8)

	tooManyTools := buildVersionCmd(t, types.PlatformIOS, 0, 0)
	binary.LittleEndian.PutUint32(tooManyTools[20:], 5)

	tooManySects := segment64Cmd(t, "__TEXT", 0, "__text")
	binary.LittleEndian.PutUint32(tooManySects[64:], 2)

	tests := []struct {
		name      string
		dat       []byte
		truncated bool
	}{
		{"dylib name offset past command", dylibBadName, false},
		{"dylib name offset inside fixed fields", dylibNameInFixed, false},
		{"build version tools past command", tooManyTools, true},
		{"segment sections past command", tooManySects, true},
		{"uuid too small", rawCmd(t, commands.LoadCmdUUID, 16, nil), true},
		{"segment too small", rawCmd(t, commands.LoadCmdSegment64, 56, nil), true},
		{"dyld info only too small", rawCmd(t, commands.LoadCmdDyldInfoOnly, 16, nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := commands.LoadCmd(binary.LittleEndian.Uint32(tt.dat))
			_, err := dispatch(cmd, tt.dat, Layout64LE, 0x20)
			if !IsMalformed(err) {
				t.Fatalf("dispatch() error = %v, want a format error", err)
			}
			if IsTruncated(err) != tt.truncated {
				t.Errorf("IsTruncated() = %v, want %v (%v)", IsTruncated(err), tt.truncated, err)
			}
			if !strings.Contains(err.Error(), "in record at byte 0x20") {
				t.Errorf("error %q does not name the record offset", err)
			}
		})
	}
}

func TestLoadCmdBytesString(t *testing.T) {
	l, err := dispatch(0x7777, rawCmd(t, 0x7777, 12, []byte{1, 2, 3, 4}), Layout64LE, 0)
	if err != nil {
		t.Fatalf("dispatch() error = %v", err)
	}
	if got := l.String(); !strings.Contains(got, "[1 2 3 4]") {
		t.Errorf("String() = %q", got)
	}
}
