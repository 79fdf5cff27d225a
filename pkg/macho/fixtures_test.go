package macho

import (
	"bytes"
	"encoding/binary"
	"io"
	"sync/atomic"
	"testing"

	"github.com/blacktop/lazymacho/pkg/macho/commands"
	"github.com/blacktop/lazymacho/pkg/macho/header"
	"github.com/blacktop/lazymacho/pkg/macho/types"
)

// countingReaderAt counts positioned reads. It does not expose a size.
type countingReaderAt struct {
	r     io.ReaderAt
	reads atomic.Int64
}

func (c *countingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	c.reads.Add(1)
	return c.r.ReadAt(p, off)
}

// sizeless hides Size() so the parser has to work without a known length.
type sizeless struct{ io.ReaderAt }

func le(t testing.TB, vs ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vs {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("binary.Write(%T) = %v", v, err)
		}
	}
	return buf.Bytes()
}

func be(t testing.TB, vs ...any) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vs {
		if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
			t.Fatalf("binary.Write(%T) = %v", v, err)
		}
	}
	return buf.Bytes()
}

func name16(s string) (b [16]byte) {
	copy(b[:], s)
	return b
}

func pad8(b []byte) []byte {
	for len(b)%8 != 0 {
		b = append(b, 0)
	}
	return b
}

// image builds a little-endian image whose ncmds and sizeofcmds match cmds.
func image(t testing.TB, magic header.Magic, cpu types.CPU, sub types.CPUSubtype, cmds ...[]byte) []byte {
	t.Helper()
	var size uint32
	for _, c := range cmds {
		size += uint32(len(c))
	}
	return imageWithSize(t, magic, cpu, sub, size, cmds...)
}

func imageWithSize(t testing.TB, magic header.Magic, cpu types.CPU, sub types.CPUSubtype, sizeofcmds uint32, cmds ...[]byte) []byte {
	t.Helper()
	h := []any{uint32(magic), uint32(cpu), uint32(sub), uint32(header.Exec), uint32(len(cmds)), sizeofcmds, uint32(header.PIE | header.NoUndefs)}
	if magic == header.Magic64 {
		h = append(h, uint32(0))
	}
	b := le(t, h...)
	for _, c := range cmds {
		b = append(b, c...)
	}
	return b
}

func image64(t testing.TB, cmds ...[]byte) []byte {
	t.Helper()
	return image(t, header.Magic64, types.CPUArm64, 0, cmds...)
}

// rawCmd writes a {cmd, size} prefix followed by payload, zero padded to size.
// The prefix is always written in full, even when size is below 8.
func rawCmd(t testing.TB, cmd commands.LoadCmd, size uint32, payload []byte) []byte {
	t.Helper()
	b := le(t, uint32(cmd), size)
	b = append(b, payload...)
	for uint32(len(b)) < size {
		b = append(b, 0)
	}
	return b
}

func hdr(cmd commands.LoadCmd, size int) commands.LoadCmdHeader {
	return commands.LoadCmdHeader{Cmd: cmd, Len: uint32(size)}
}

func sourceVersionCmd(t testing.TB, v types.SrcVersion) []byte {
	return le(t, commands.SourceVersionCmd{LoadCmdHeader: hdr(commands.LoadCmdSourceVersion, 16), Version: v})
}

func uuidCmd(t testing.TB, u types.UUID) []byte {
	return le(t, commands.UUIDCmd{LoadCmdHeader: hdr(commands.LoadCmdUUID, 24), UUID: u})
}

func dylibCmd(t testing.TB, name string, cur, compat types.Version) []byte {
	size := len(pad8(append([]byte(name), 0))) + 24
	b := le(t, commands.DylibCmd{
		LoadCmdHeader:  hdr(commands.LoadCmdDylib, size),
		Name:           24,
		Time:           2,
		CurrentVersion: cur,
		CompatVersion:  compat,
	})
	return pad8(append(append(b, name...), 0))
}

func dylinkerCmd(t testing.TB, name string) []byte {
	size := len(pad8(make([]byte, 12+len(name)+1)))
	b := le(t, commands.DylinkerCmd{LoadCmdHeader: hdr(commands.LoadCmdDylinker, size), Name: 12})
	return pad8(append(append(b, name...), 0))
}

func buildVersionCmd(t testing.TB, p types.Platform, minos, sdk types.Version, tools ...types.BuildToolVersion) []byte {
	b := le(t, commands.BuildVersionCmd{
		LoadCmdHeader: hdr(commands.LoadCmdBuildVersion, 24+8*len(tools)),
		Platform:      p,
		Minos:         minos,
		Sdk:           sdk,
		NumTools:      uint32(len(tools)),
	})
	for _, tool := range tools {
		b = append(b, le(t, tool)...)
	}
	return b
}

func segment64Cmd(t testing.TB, name string, addr uint64, sects ...string) []byte {
	b := le(t, commands.Segment64{
		LoadCmdHeader: hdr(commands.LoadCmdSegment64, 72+80*len(sects)),
		Name:          name16(name),
		Addr:          addr,
		Memsz:         0x4000,
		Offset:        0,
		Filesz:        0x4000,
		Maxprot:       5,
		Prot:          5,
		Nsect:         uint32(len(sects)),
	})
	for i, s := range sects {
		b = append(b, le(t, commands.Section64{
			Name:   name16(s),
			Seg:    name16(name),
			Addr:   addr + uint64(i)*0x100,
			Size:   0x100,
			Offset: uint32(i) * 0x100,
			Align:  2,
			Flags:  commands.PURE_INSTRUCTIONS | commands.SOME_INSTRUCTIONS,
		})...)
	}
	return b
}

func segment32Cmd(t testing.TB, name string, addr uint32, sects ...string) []byte {
	b := le(t, commands.Segment32{
		LoadCmdHeader: hdr(commands.LoadCmdSegment, 56+68*len(sects)),
		Name:          name16(name),
		Addr:          addr,
		Memsz:         0x1000,
		Filesz:        0x1000,
		Maxprot:       7,
		Prot:          3,
		Nsect:         uint32(len(sects)),
	})
	for i, s := range sects {
		b = append(b, le(t, commands.Section32{
			Name:  name16(s),
			Seg:   name16(name),
			Addr:  addr + uint32(i)*0x10,
			Size:  0x10,
			Align: 3,
			Flags: commands.S_ZEROFILL,
		})...)
	}
	return b
}

// A fatSlice is one arch of a fat archive built by fat.
type fatSlice struct {
	cpu  types.CPU
	sub  types.CPUSubtype
	data []byte
}

// fat lays out slices after a big-endian arch table, each at a 16-byte
// aligned offset.
func fat(t testing.TB, slices ...fatSlice) []byte {
	t.Helper()
	align := func(n int) int { return (n + 15) &^ 15 }
	b := be(t, uint32(header.MagicFat), uint32(len(slices)))
	off := align(fatHeaderSize + fatArchSize*len(slices))
	offs := make([]int, len(slices))
	for i, s := range slices {
		offs[i] = off
		b = append(b, be(t, uint32(s.cpu), uint32(s.sub), uint32(off), uint32(len(s.data)), uint32(4))...)
		off = align(off + len(s.data))
	}
	out := make([]byte, off)
	copy(out, b)
	for i, s := range slices {
		copy(out[offs[i]:], s.data)
	}
	return out
}
