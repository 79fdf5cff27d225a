package macho

import (
	"encoding/binary"
	"io"

	"github.com/blacktop/lazymacho/pkg/macho/header"
	"github.com/pkg/errors"
)

// An Identity is what the first four bytes of an image say about it.
type Identity struct {
	Magic     header.Magic // normalized; both fat spellings map to MagicFat
	Reversed  bool         // fat magic read little-endian was 0xbebafeca (ca fe ba be on disk)
	ByteOrder binary.ByteOrder
	Is64      bool
}

// IsFat reports whether the identity is a fat archive.
func (id Identity) IsFat() bool { return id.Magic == header.MagicFat }

// Layout returns the layout descriptor for the identity.
func (id Identity) Layout() Layout {
	switch {
	case id.IsFat():
		return LayoutFat
	case id.Is64:
		return Layout64LE
	default:
		return Layout32LE
	}
}

func (id Identity) String() string {
	if id.Reversed {
		return header.MagicFatReversed.String()
	}
	return id.Magic.String()
}

// Detect classifies the image at off with a single positioned read.
func Detect(r io.ReaderAt, off int64) (Identity, error) {
	var b [4]byte
	n, err := r.ReadAt(b[:], off)
	if n < len(b) {
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return Identity{}, errors.Wrapf(err, "failed to read magic at %#x", off)
		}
		return Identity{}, &SignatureError{Off: off, Magic: b, N: n}
	}
	return classify(b, off)
}

// Peek classifies the image at the current position of rs and leaves the
// position where it was, whether or not detection succeeds.
func Peek(rs io.ReadSeeker) (id Identity, err error) {
	cur, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Identity{}, errors.Wrap(err, "failed to get stream position")
	}
	defer func() {
		if _, serr := rs.Seek(cur, io.SeekStart); serr != nil && err == nil {
			err = errors.Wrap(serr, "failed to restore stream position")
		}
	}()
	var b [4]byte
	n, err := io.ReadFull(rs, b[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Identity{}, &SignatureError{Off: cur, Magic: b, N: n}
		}
		return Identity{}, errors.Wrap(err, "failed to read magic")
	}
	return classify(b, cur)
}

func classify(b [4]byte, off int64) (Identity, error) {
	switch m := header.Magic(binary.LittleEndian.Uint32(b[:])); m {
	case header.Magic32:
		return Identity{Magic: header.Magic32, ByteOrder: binary.LittleEndian}, nil
	case header.Magic64:
		return Identity{Magic: header.Magic64, ByteOrder: binary.LittleEndian, Is64: true}, nil
	case header.MagicFat, header.MagicFatReversed:
		return Identity{
			Magic:     header.MagicFat,
			Reversed:  m == header.MagicFatReversed,
			ByteOrder: binary.BigEndian,
		}, nil
	default:
		return Identity{}, &SignatureError{Off: off, Magic: b, N: len(b)}
	}
}

// detectSlice classifies an image embedded in a fat archive. Only single
// little-endian images are accepted there.
func detectSlice(r io.ReaderAt, off int64) (Identity, error) {
	id, err := Detect(r, off)
	if err != nil {
		return Identity{}, err
	}
	if id.IsFat() {
		return Identity{}, &FormatError{Off: off, Msg: "nested fat archive"}
	}
	return id, nil
}
