package macho

import (
	"io"

	"github.com/apex/log"
	"github.com/blacktop/lazymacho/pkg/macho/header"
	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/pkg/errors"
)

// readFileHeader decodes the header of the image at base. The magic has
// already been classified into id; the header carries the normalized value.
func readFileHeader(r io.ReaderAt, base int64, id Identity, strict bool) (header.FileHeader, error) {
	var h header.FileHeader

	l := id.Layout()
	dat := make([]byte, l.HeaderSize)
	if err := readFull(r, dat, base); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return h, truncated(base, "file header too small", len(dat))
		}
		return h, errors.Wrapf(err, "failed to read file header at %#x", base)
	}

	bo := l.ByteOrder
	h.Magic = id.Magic
	h.CPU = types.CPU(bo.Uint32(dat[4:]))
	h.SubCPU = types.CPUSubtype(bo.Uint32(dat[8:]))
	h.Type = header.Type(bo.Uint32(dat[12:]))
	h.NCommands = bo.Uint32(dat[16:])
	h.SizeCommands = bo.Uint32(dat[20:])
	h.Flags = header.Flag(bo.Uint32(dat[24:]))
	if l.Is64 {
		h.Reserved = bo.Uint32(dat[28:])
	}

	sub, ok := types.ResolveSubtype(h.CPU, h.SubCPU)
	if !ok {
		if strict {
			return header.FileHeader{}, &SubtypeError{CPU: h.CPU, Value: h.SubCPU}
		}
		log.WithFields(log.Fields{
			"cpu":     h.CPU,
			"subtype": sub.Value,
			"offset":  base,
		}).Debug("unknown cpu subtype, keeping raw value")
	}
	h.Subtype = sub

	return h, nil
}
