package header

import (
	"fmt"

	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/blacktop/lazymacho/pkg/macho/utils"
)

// A FileHeader represents a Mach-O file header.
type FileHeader struct {
	Magic        Magic
	CPU          types.CPU
	SubCPU       types.CPUSubtype // raw word, capability bits included
	Subtype      types.Subtype
	Type         Type
	NCommands    uint32
	SizeCommands uint32
	Flags        Flag
	Reserved     uint32 // 64-bit only
}

const (
	FileHeaderSize32 = 7 * 4
	FileHeaderSize64 = 8 * 4
)

type Magic uint32

const (
	Magic32          Magic = 0xfeedface
	Magic64          Magic = 0xfeedfacf
	MagicFat         Magic = 0xcafebabe
	MagicFatReversed Magic = 0xbebafeca
)

var magicStrings = []utils.IntName{
	{I: uint32(Magic32), S: "32-bit MachO"},
	{I: uint32(Magic64), S: "64-bit MachO"},
	{I: uint32(MagicFat), S: "Fat MachO"},
	{I: uint32(MagicFatReversed), S: "Fat MachO (reversed)"},
}

func (i Magic) Int() uint32      { return uint32(i) }
func (i Magic) String() string   { return utils.StringName(uint32(i), magicStrings, false) }
func (i Magic) GoString() string { return utils.StringName(uint32(i), magicStrings, true) }

// Is64 reports whether the magic names a 64-bit single image.
func (i Magic) Is64() bool { return i == Magic64 }

// IsFat reports whether the magic names a fat archive in either spelling.
func (i Magic) IsFat() bool { return i == MagicFat || i == MagicFatReversed }

func (h FileHeader) String() string {
	return fmt.Sprintf(
		"Magic         = %s\n"+
			"Type          = %s\n"+
			"CPU           = %s, %s\n"+
			"Commands      = %d (Size: %d)\n"+
			"Flags         = %s\n",
		h.Magic,
		h.Type,
		h.CPU, h.Subtype,
		h.NCommands,
		h.SizeCommands,
		h.Flags.Flags(),
	)
}
