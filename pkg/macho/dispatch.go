package macho

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/blacktop/lazymacho/pkg/macho/commands"
	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/pkg/errors"
)

// dispatch decodes one load command. dat holds exactly the command's
// declared size, prefix included; off is dat's position in the source and
// is only used for error reporting.
func dispatch(cmd commands.LoadCmd, dat []byte, lay Layout, off int64) (Load, error) {
	bo := lay.ByteOrder
	hdr := commands.LoadCmdHeader{Cmd: cmd, Len: uint32(len(dat))}

	switch cmd {
	case commands.LoadCmdUUID:
		var u commands.UUIDCmd
		if err := decode(dat, bo, &u, off, cmd); err != nil {
			return nil, err
		}
		return &UUID{LoadBytes: dat, LoadCmdHeader: hdr, ID: u.UUID}, nil

	case commands.LoadCmdSegment:
		var seg32 commands.Segment32
		if err := decode(dat, bo, &seg32, off, cmd); err != nil {
			return nil, err
		}
		s := &Segment{LoadBytes: dat}
		s.LoadCmdHeader = hdr
		s.Name = cstring(seg32.Name[0:])
		s.Addr = uint64(seg32.Addr)
		s.Memsz = uint64(seg32.Memsz)
		s.Offset = uint64(seg32.Offset)
		s.Filesz = uint64(seg32.Filesz)
		s.Maxprot = seg32.Maxprot
		s.Prot = seg32.Prot
		s.Nsect = seg32.Nsect
		s.Flag = seg32.Flag
		if err := readSections32(s, dat[binary.Size(seg32):], bo, off); err != nil {
			return nil, err
		}
		return s, nil

	case commands.LoadCmdSegment64:
		var seg64 commands.Segment64
		if err := decode(dat, bo, &seg64, off, cmd); err != nil {
			return nil, err
		}
		s := &Segment{LoadBytes: dat}
		s.LoadCmdHeader = hdr
		s.Name = cstring(seg64.Name[0:])
		s.Addr = seg64.Addr
		s.Memsz = seg64.Memsz
		s.Offset = seg64.Offset
		s.Filesz = seg64.Filesz
		s.Maxprot = seg64.Maxprot
		s.Prot = seg64.Prot
		s.Nsect = seg64.Nsect
		s.Flag = seg64.Flag
		if err := readSections64(s, dat[binary.Size(seg64):], bo, off); err != nil {
			return nil, err
		}
		return s, nil

	case commands.LoadCmdDyldInfoOnly:
		l := &DyldInfo{LoadBytes: dat}
		if err := decode(dat, bo, &l.DyldInfoCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdSymtab:
		l := &Symtab{LoadBytes: dat}
		if err := decode(dat, bo, &l.SymtabCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdDysymtab:
		l := &Dysymtab{LoadBytes: dat}
		if err := decode(dat, bo, &l.DysymtabCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdDylinker:
		var d commands.DylinkerCmd
		if err := decode(dat, bo, &d, off, cmd); err != nil {
			return nil, err
		}
		name, err := lcString(dat, d.Name, binary.Size(d), off, "invalid name in load dylinker command")
		if err != nil {
			return nil, err
		}
		return &Dylinker{LoadBytes: dat, LoadCmdHeader: hdr, Name: name}, nil

	case commands.LoadCmdBuildVersion:
		var build commands.BuildVersionCmd
		if err := decode(dat, bo, &build, off, cmd); err != nil {
			return nil, err
		}
		l := &BuildVersion{
			LoadBytes:     dat,
			LoadCmdHeader: hdr,
			Platform:      build.Platform,
			Minos:         build.Minos,
			Sdk:           build.Sdk,
			NumTools:      build.NumTools,
		}
		fixed := binary.Size(build)
		toolSize := binary.Size(types.BuildToolVersion{})
		if uint64(build.NumTools)*uint64(toolSize) > uint64(len(dat)-fixed) {
			return nil, truncated(off, "build version tools exceed command size", build.NumTools)
		}
		if build.NumTools > 0 {
			l.Tools = make([]types.BuildToolVersion, build.NumTools)
			if err := binary.Read(bytes.NewReader(dat[fixed:]), bo, l.Tools); err != nil {
				return nil, errors.Wrap(err, "failed to read build tool versions")
			}
		}
		return l, nil

	case commands.LoadCmdSourceVersion:
		l := &SourceVersion{LoadBytes: dat}
		if err := decode(dat, bo, &l.SourceVersionCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdMain:
		l := &EntryPoint{LoadBytes: dat}
		if err := decode(dat, bo, &l.EntryPointCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdCodeSignature,
		commands.LoadCmdSegmentSplitInfo,
		commands.LoadCmdDylibCodeSignDrs,
		commands.LoadCmdLinkerOptimizationHint,
		commands.LoadCmdDyldExportsTrie,
		commands.LoadCmdDyldChainedFixups,
		commands.LoadCmdFunctionStarts,
		commands.LoadCmdDataInCode:
		l := &LinkEditData{LoadBytes: dat}
		if err := decode(dat, bo, &l.LinkEditDataCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdEncryptionInfo:
		l := &EncryptionInfo{LoadBytes: dat}
		if err := decode(dat, bo, &l.EncryptionInfoCmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdEncryptionInfo64:
		l := &EncryptionInfo64{LoadBytes: dat}
		if err := decode(dat, bo, &l.EncryptionInfo64Cmd, off, cmd); err != nil {
			return nil, err
		}
		return l, nil

	case commands.LoadCmdDylib:
		var d commands.DylibCmd
		if err := decode(dat, bo, &d, off, cmd); err != nil {
			return nil, err
		}
		name, err := lcString(dat, d.Name, binary.Size(d), off, "invalid name in dynamic library command")
		if err != nil {
			return nil, err
		}
		return &Dylib{
			LoadBytes:      dat,
			LoadCmdHeader:  hdr,
			Name:           name,
			Time:           d.Time,
			CurrentVersion: d.CurrentVersion,
			CompatVersion:  d.CompatVersion,
		}, nil

	default:
		return &LoadCmdBytes{LoadCmdHeader: hdr, LoadBytes: dat}, nil
	}
}

// decode reads the fixed part of a command into v. A command declaring
// fewer bytes than its fixed fields need is malformed.
func decode(dat []byte, bo binary.ByteOrder, v any, off int64, cmd commands.LoadCmd) error {
	if need := binary.Size(v); need > len(dat) {
		return truncated(off, fmt.Sprintf("%s command too small (need %d bytes)", cmd, need), len(dat))
	}
	if err := binary.Read(bytes.NewReader(dat), bo, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", cmd)
	}
	return nil
}

// lcString resolves an lc_str offset. The string must start after the
// fixed fields and inside the command.
func lcString(dat []byte, strOff uint32, fixed int, off int64, msg string) (string, error) {
	if strOff < uint32(fixed) || strOff >= uint32(len(dat)) {
		return "", &FormatError{Off: off, Msg: msg, Val: strOff}
	}
	return cstring(dat[strOff:]), nil
}

func readSections32(s *Segment, dat []byte, bo binary.ByteOrder, off int64) error {
	if uint64(s.Nsect)*commands.Section32Size > uint64(len(dat)) {
		return truncated(off, "section headers exceed segment command size", s.Nsect)
	}
	b := bytes.NewReader(dat)
	s.Sections = make([]*Section, 0, s.Nsect)
	for i := uint32(0); i < s.Nsect; i++ {
		var sh32 commands.Section32
		if err := binary.Read(b, bo, &sh32); err != nil {
			return errors.Wrapf(err, "failed to read section %d of %s", i, s.Name)
		}
		s.Sections = append(s.Sections, &Section{
			Name:      cstring(sh32.Name[0:]),
			Seg:       cstring(sh32.Seg[0:]),
			Addr:      uint64(sh32.Addr),
			Size:      uint64(sh32.Size),
			Offset:    sh32.Offset,
			Align:     sh32.Align,
			Reloff:    sh32.Reloff,
			Nreloc:    sh32.Nreloc,
			Flags:     sh32.Flags,
			Reserved1: sh32.Reserve1,
			Reserved2: sh32.Reserve2,
		})
	}
	return nil
}

func readSections64(s *Segment, dat []byte, bo binary.ByteOrder, off int64) error {
	if uint64(s.Nsect)*commands.Section64Size > uint64(len(dat)) {
		return truncated(off, "section headers exceed segment command size", s.Nsect)
	}
	b := bytes.NewReader(dat)
	s.Sections = make([]*Section, 0, s.Nsect)
	for i := uint32(0); i < s.Nsect; i++ {
		var sh64 commands.Section64
		if err := binary.Read(b, bo, &sh64); err != nil {
			return errors.Wrapf(err, "failed to read section %d of %s", i, s.Name)
		}
		s.Sections = append(s.Sections, &Section{
			Name:      cstring(sh64.Name[0:]),
			Seg:       cstring(sh64.Seg[0:]),
			Addr:      sh64.Addr,
			Size:      sh64.Size,
			Offset:    sh64.Offset,
			Align:     sh64.Align,
			Reloff:    sh64.Reloff,
			Nreloc:    sh64.Nreloc,
			Flags:     sh64.Flags,
			Reserved1: sh64.Reserve1,
			Reserved2: sh64.Reserve2,
			Reserved3: sh64.Reserve3,
		})
	}
	return nil
}

func cstring(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		i = len(b)
	}
	return string(b[0:i])
}
