package macho

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/blacktop/lazymacho/pkg/macho/header"
	"github.com/blacktop/lazymacho/pkg/macho/lazy"
	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// A FatArchHeader represents a fat header for a specific image architecture.
type FatArchHeader struct {
	CPU    types.CPU
	SubCPU types.CPUSubtype
	Offset uint32
	Size   uint32
	Align  uint32 // power of 2
}

// Subtype resolves SubCPU against the arch's cpu family.
func (h FatArchHeader) Subtype() types.Subtype {
	s, _ := types.ResolveSubtype(h.CPU, h.SubCPU)
	return s
}

func (h FatArchHeader) String() string {
	return fmt.Sprintf("%s %s offset=%#x size=%#x align=2^%d", h.CPU, h.Subtype(), h.Offset, h.Size, h.Align)
}

// A FatFile is a Mach-O universal binary that contains at least one architecture.
type FatFile struct {
	Magic    header.Magic
	Reversed bool
	Arches   []FatArchHeader // on-disk order

	images      *lazy.Table[*File]
	concurrency int
	closer      io.Closer
}

// An ArchResult is the outcome of parsing one fat slice.
type ArchResult struct {
	Index int
	Arch  FatArchHeader
	File  *File
	Err   error
}

// NewFatFile creates a new FatFile for accessing all the Mach-O images in a
// universal binary. The Mach-O binary is expected to start at the
// configured offset (0 by default). It fails with ErrNotFat for a single image.
func NewFatFile(r io.ReaderAt, opts ...Option) (*FatFile, error) {
	cfg := newConfig(r, opts)
	id, err := Detect(r, cfg.offset)
	if err != nil {
		return nil, err
	}
	if !id.IsFat() {
		return nil, ErrNotFat
	}
	return newFatFile(r, id, cfg)
}

func newFatFile(r io.ReaderAt, id Identity, cfg config) (*FatFile, error) {
	base := cfg.offset
	bo := LayoutFat.ByteOrder

	var fh [fatHeaderSize]byte
	if err := readFull(r, fh[:], base); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, truncated(base, "fat header too small", nil)
		}
		return nil, errors.Wrap(err, "failed to read fat header")
	}
	narch := bo.Uint32(fh[4:])
	if narch < 1 {
		return nil, &FormatError{Off: base, Msg: "file contains no images"}
	}

	// the whole arch table has to exist before any of it is read
	tableEnd := int64(fatHeaderSize) + int64(narch)*fatArchSize
	if cfg.size >= 0 {
		if tableEnd > cfg.size {
			return nil, truncated(base+4, "fat arch count exceeds file size", narch)
		}
	} else {
		var last [1]byte
		if err := readFull(r, last[:], base+tableEnd-1); err != nil {
			return nil, truncated(base+4, "fat arch count exceeds file size", narch)
		}
	}

	dat := make([]byte, tableEnd-fatHeaderSize)
	if err := readFull(r, dat, base+fatHeaderSize); err != nil {
		return nil, truncated(base+fatHeaderSize, "fat arch table truncated", narch)
	}

	ff := &FatFile{
		Magic:       id.Magic,
		Reversed:    id.Reversed,
		Arches:      make([]FatArchHeader, narch),
		concurrency: cfg.concurrency,
	}
	for i := range ff.Arches {
		a := dat[i*fatArchSize:]
		ff.Arches[i] = FatArchHeader{
			CPU:    types.CPU(bo.Uint32(a[0:])),
			SubCPU: types.CPUSubtype(bo.Uint32(a[4:])),
			Offset: bo.Uint32(a[8:]),
			Size:   bo.Uint32(a[12:]),
			Align:  bo.Uint32(a[16:]),
		}
	}

	ff.images = lazy.New(len(ff.Arches), func(i int) (*File, error) {
		arch := ff.Arches[i]
		if cfg.size >= 0 && int64(arch.Offset)+int64(arch.Size) > cfg.size {
			return nil, truncated(base+fatHeaderSize+int64(i)*fatArchSize, "fat arch extends past end of file", arch.Size)
		}
		sr := io.NewSectionReader(r, base+int64(arch.Offset), int64(arch.Size))
		sid, err := detectSlice(sr, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "arch %d (%s)", i, arch.CPU)
		}
		f, err := newFile(sr, sid, 0, int64(arch.Size), cfg.strict)
		if err != nil {
			return nil, errors.Wrapf(err, "arch %d (%s)", i, arch.CPU)
		}
		if f.CPU != arch.CPU {
			log.WithFields(log.Fields{
				"arch":   i,
				"fat":    arch.CPU,
				"header": f.CPU,
			}).Warn("fat arch cpu does not match slice header")
		}
		return f, nil
	})

	return ff, nil
}

// OpenFat opens the named file using os.Open and prepares it for use as a Mach-O
// universal binary.
func OpenFat(name string, opts ...Option) (*FatFile, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	ff, err := NewFatFile(fp, opts...)
	if err != nil {
		fp.Close()
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	ff.closer = fp
	return ff, nil
}

// Close closes the FatFile.
func (ff *FatFile) Close() error {
	var err error
	if ff.closer != nil {
		err = ff.closer.Close()
		ff.closer = nil
	}
	return err
}

// NumArches returns the number of arch descriptors.
func (ff *FatFile) NumArches() int { return len(ff.Arches) }

// Image returns the image of arch i, parsing its header on first access.
// A failure is scoped to that arch.
func (ff *FatFile) Image(i int) (*File, error) { return ff.images.Get(i) }

// Lookup returns the index of the first arch matching cpu and subtype.
// The subtype comparison ignores capability bits.
func (ff *FatFile) Lookup(cpu types.CPU, sub types.CPUSubtype) (int, bool) {
	for i, a := range ff.Arches {
		if a.CPU == cpu && a.SubCPU.Value() == sub.Value() {
			return i, true
		}
	}
	return -1, false
}

// LookupName returns the index of the first arch whose cpu or
// "cpu/subtype" name matches name, e.g. "ARM64" or "ARM/ARMV7".
func (ff *FatFile) LookupName(name string) (int, bool) {
	for i, a := range ff.Arches {
		if a.CPU.String() == name || a.CPU.String()+"/"+a.Subtype().String() == name {
			return i, true
		}
	}
	return -1, false
}

// ParseAll parses every arch concurrently and returns one result per
// descriptor in on-disk order. One failing arch does not stop the others.
func (ff *FatFile) ParseAll(ctx context.Context) ([]ArchResult, error) {
	results := make([]ArchResult, len(ff.Arches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ff.concurrency)
	for i := range ff.Arches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := ff.Image(i)
			results[i] = ArchResult{Index: i, Arch: ff.Arches[i], File: f, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
