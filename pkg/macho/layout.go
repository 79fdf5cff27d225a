package macho

import (
	"encoding/binary"

	"github.com/blacktop/lazymacho/pkg/macho/header"
)

const (
	fatHeaderSize = 2 * 4
	fatArchSize   = 5 * 4
)

// A Layout describes how one image's records are laid out on disk.
// Values are passed by copy; a Layout is fixed for the life of an image.
type Layout struct {
	ByteOrder  binary.ByteOrder
	HeaderSize int64
	PtrSize    int
	Is64       bool
	Fat        bool
}

var (
	Layout32LE = Layout{ByteOrder: binary.LittleEndian, HeaderSize: header.FileHeaderSize32, PtrSize: 4}
	Layout64LE = Layout{ByteOrder: binary.LittleEndian, HeaderSize: header.FileHeaderSize64, PtrSize: 8, Is64: true}
	// fat header and arch table; the embedded images pick their own layout
	LayoutFat = Layout{ByteOrder: binary.BigEndian, HeaderSize: fatHeaderSize, Fat: true}
)
