// Package macho implements lazy access to Mach-O object files.
//
// Only the header (and, for fat files, the arch table) is read up front.
// Load commands are located and decoded one at a time, the first time
// they are asked for, and cached afterwards.
package macho

import (
	"io"
	"iter"
	"os"

	"github.com/apex/log"
	"github.com/blacktop/lazymacho/pkg/macho/commands"
	"github.com/blacktop/lazymacho/pkg/macho/header"
	"github.com/pkg/errors"
)

// A File represents an open single-architecture Mach-O image.
type File struct {
	header.FileHeader

	ident  Identity
	layout Layout
	base   int64
	loads  *cmdTable

	closer io.Closer
}

// A Binary is the result of Parse: exactly one of File and Fat is set.
type Binary struct {
	Identity Identity
	File     *File
	Fat      *FatFile
}

// IsFat reports whether the source was a fat archive.
func (b *Binary) IsFat() bool { return b.Fat != nil }

// Close closes whichever image Parse opened.
func (b *Binary) Close() error {
	if b.Fat != nil {
		return b.Fat.Close()
	}
	if b.File != nil {
		return b.File.Close()
	}
	return nil
}

// Parse detects the image at the configured offset of r and opens it as a
// single image or a fat archive.
// The ReaderAt is borrowed and must stay valid while the result is in use.
func Parse(r io.ReaderAt, opts ...Option) (*Binary, error) {
	cfg := newConfig(r, opts)
	id, err := Detect(r, cfg.offset)
	if err != nil {
		return nil, err
	}
	if id.IsFat() {
		ff, err := newFatFile(r, id, cfg)
		if err != nil {
			return nil, err
		}
		return &Binary{Identity: id, Fat: ff}, nil
	}
	f, err := newFile(r, id, cfg.offset, cfg.size, cfg.strict)
	if err != nil {
		return nil, err
	}
	return &Binary{Identity: id, File: f}, nil
}

// NewFile creates a new File for accessing a single Mach-O image in an
// underlying reader. The image is expected to start at the configured
// offset (0 by default). It fails with ErrFat for a fat archive.
func NewFile(r io.ReaderAt, opts ...Option) (*File, error) {
	cfg := newConfig(r, opts)
	id, err := Detect(r, cfg.offset)
	if err != nil {
		return nil, err
	}
	if id.IsFat() {
		return nil, ErrFat
	}
	return newFile(r, id, cfg.offset, cfg.size, cfg.strict)
}

// newFile parses the header at base. size is the number of bytes the image
// may span from base, or -1 when unknown.
func newFile(r io.ReaderAt, id Identity, base, size int64, strict bool) (*File, error) {
	fh, err := readFileHeader(r, base, id, strict)
	if err != nil {
		return nil, err
	}
	f := &File{
		FileHeader: fh,
		ident:      id,
		layout:     id.Layout(),
		base:       base,
	}

	// every command needs at least its {cmd, cmdsize} prefix
	avail := int64(-1)
	limit := int64(fh.SizeCommands)
	if size >= 0 {
		avail = max(size-f.layout.HeaderSize, 0)
		limit = min(limit, avail)
	}
	prefixes := int64(fh.NCommands) * commands.LoadCmdHeaderSize
	if prefixes > limit {
		return nil, truncated(base+16, "load command count exceeds command region", fh.NCommands)
	}
	if size < 0 && prefixes > 0 {
		var last [1]byte
		if err := readFull(r, last[:], base+f.layout.HeaderSize+prefixes-1); err != nil {
			return nil, truncated(base+16, "load command count exceeds file size", fh.NCommands)
		}
	}
	f.loads = newCmdTable(r, base+f.layout.HeaderSize, fh.NCommands, fh.SizeCommands, avail, f.layout)

	log.WithFields(log.Fields{
		"magic":  fh.Magic,
		"cpu":    fh.CPU,
		"ncmds":  fh.NCommands,
		"offset": base,
	}).Debug("parsed mach-o header")

	return f, nil
}

// Open opens the named file using os.Open and prepares it for use as a
// single Mach-O image.
func Open(name string, opts ...Option) (*File, error) {
	fp, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	f, err := NewFile(fp, opts...)
	if err != nil {
		fp.Close()
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	f.closer = fp
	return f, nil
}

// Close closes the File.
// If the File was created using NewFile directly instead of Open,
// Close has no effect.
func (f *File) Close() error {
	var err error
	if f.closer != nil {
		err = f.closer.Close()
		f.closer = nil
	}
	return err
}

// Identity returns the detected magic, byte order and bitness.
func (f *File) Identity() Identity { return f.ident }

// Layout returns the image's layout descriptor.
func (f *File) Layout() Layout { return f.layout }

// Base returns the offset of the image's header in its source.
func (f *File) Base() int64 { return f.base }

// NumLoads returns the number of load commands declared by the header.
func (f *File) NumLoads() int { return f.loads.loads.Len() }

// Load returns load command i, decoding it on first access.
func (f *File) Load(i int) (Load, error) { return f.loads.loads.Get(i) }

// LoadOffset returns the source offset of load command i.
func (f *File) LoadOffset(i int) (int64, error) { return f.loads.offset(i) }

// Loaded reports whether load command i has already been decoded.
func (f *File) Loaded(i int) bool { return f.loads.loads.Loaded(i) }

// Loads iterates the load commands in order.
func (f *File) Loads() iter.Seq2[Load, error] { return f.loads.loads.All() }

// VerifyLoads checks that the command stream is consistent with the
// header: every declared command is reachable and their sizes add up to
// sizeofcmds.
func (f *File) VerifyLoads() error {
	n, total, err := f.loads.sum()
	if err != nil {
		return err
	}
	if n != int(f.NCommands) {
		return &FormatError{Off: f.base, Msg: "load command count mismatch", Val: n}
	}
	if total != uint64(f.SizeCommands) {
		log.WithFields(log.Fields{
			"sizeofcmds": f.SizeCommands,
			"sum":        total,
		}).Warn("load command sizes do not match header")
		return &FormatError{Off: f.base, Msg: "load command sizes do not add up to sizeofcmds", Val: total}
	}
	return nil
}

// LoadsByCmd returns every load command with the given tag.
func (f *File) LoadsByCmd(cmd commands.LoadCmd) ([]Load, error) {
	var loads []Load
	for l, err := range f.Loads() {
		if err != nil {
			return loads, err
		}
		if l.Command() == cmd {
			loads = append(loads, l)
		}
	}
	return loads, nil
}

// Segment returns the first Segment with the given name, or nil if no such segment exists.
func (f *File) Segment(name string) (*Segment, error) {
	for l, err := range f.Loads() {
		if err != nil {
			return nil, err
		}
		if s, ok := l.(*Segment); ok && s.Name == name {
			return s, nil
		}
	}
	return nil, nil
}

// UUID returns the LC_UUID command, or nil if there is none.
func (f *File) UUID() (*UUID, error) {
	for l, err := range f.Loads() {
		if err != nil {
			return nil, err
		}
		if u, ok := l.(*UUID); ok {
			return u, nil
		}
	}
	return nil, nil
}
