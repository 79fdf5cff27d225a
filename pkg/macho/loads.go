package macho

import (
	"io"
	"sync"

	"github.com/apex/log"
	"github.com/blacktop/lazymacho/pkg/macho/commands"
	"github.com/blacktop/lazymacho/pkg/macho/lazy"
	"github.com/pkg/errors"
)

type cmdEntry struct {
	cmd commands.LoadCmd
	off int64 // relative to the start of the command region
	len uint32
}

// commands larger than this are probed for their last byte before the
// buffer is allocated when the source size is unknown
const maxUnprobedCmd = 1 << 20

// cmdTable is the lazily materialized list of load commands of one image.
// The region [base, base+size) is never read past.
type cmdTable struct {
	r      io.ReaderAt
	base   int64
	size   uint32
	avail  int64 // bytes the source holds past base; -1 when unknown
	layout Layout

	once    sync.Once
	entries []cmdEntry
	scanErr error

	loads *lazy.Table[Load]
}

func newCmdTable(r io.ReaderAt, base int64, ncmds, size uint32, avail int64, l Layout) *cmdTable {
	t := &cmdTable{r: r, base: base, size: size, avail: avail, layout: l}
	t.loads = lazy.New(int(ncmds), t.load)
	return t
}

// scan walks the {cmd, cmdsize} prefixes once and records where each
// command starts. A bad prefix stops the walk; commands before it stay
// reachable.
func (t *cmdTable) scan() {
	t.once.Do(func() {
		n := t.loads.Len()
		var prefix [commands.LoadCmdHeaderSize]byte
		var off int64
		for i := range n {
			abs := t.base + off
			if off+commands.LoadCmdHeaderSize > int64(t.size) {
				t.scanErr = truncated(abs, "load command extends past sizeofcmds", i)
				return
			}
			if err := readFull(t.r, prefix[:], abs); err != nil {
				if errors.Is(err, io.ErrUnexpectedEOF) {
					t.scanErr = truncated(abs, "load command block truncated", i)
				} else {
					t.scanErr = errors.Wrapf(err, "failed to read load command %d", i)
				}
				return
			}
			bo := t.layout.ByteOrder
			cmd, siz := commands.LoadCmd(bo.Uint32(prefix[0:4])), bo.Uint32(prefix[4:8])
			if siz < commands.LoadCmdHeaderSize {
				t.scanErr = &FormatError{Off: abs, Msg: "invalid command block size", Val: siz}
				return
			}
			if off+int64(siz) > int64(t.size) {
				t.scanErr = truncated(abs, "load command extends past sizeofcmds", siz)
				return
			}
			if t.avail >= 0 && off+int64(siz) > t.avail {
				t.scanErr = truncated(abs, "load command extends past end of file", siz)
				return
			}
			t.entries = append(t.entries, cmdEntry{cmd: cmd, off: off, len: siz})
			off += int64(siz)
		}
		if off != int64(t.size) {
			log.WithFields(log.Fields{
				"sizeofcmds": t.size,
				"consumed":   off,
			}).Warn("load command sizes do not add up to sizeofcmds")
		}
	})
}

func (t *cmdTable) load(i int) (Load, error) {
	t.scan()
	if i >= len(t.entries) {
		return nil, errors.Wrapf(t.scanErr, "load command %d unreachable", i)
	}
	e := t.entries[i]
	abs := t.base + e.off
	if t.avail < 0 && e.len > maxUnprobedCmd {
		var last [1]byte
		if err := readFull(t.r, last[:], abs+int64(e.len)-1); err != nil {
			return nil, truncated(abs, "load command truncated", e.len)
		}
	}
	dat := make([]byte, e.len)
	if err := readFull(t.r, dat, abs); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, truncated(abs, "load command truncated", e.len)
		}
		return nil, errors.Wrapf(err, "failed to read load command %d", i)
	}
	l, err := dispatch(e.cmd, dat, t.layout, abs)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"index": i,
		"cmd":   e.cmd,
		"size":  e.len,
	}).Debug("materialized load command")
	return l, nil
}

// sum returns the number of commands reachable and their total size.
func (t *cmdTable) sum() (int, uint64, error) {
	t.scan()
	var total uint64
	for _, e := range t.entries {
		total += uint64(e.len)
	}
	return len(t.entries), total, t.scanErr
}

// offset returns the absolute source offset of command i.
func (t *cmdTable) offset(i int) (int64, error) {
	if i < 0 || i >= t.loads.Len() {
		return 0, errors.Wrapf(lazy.ErrIndexOutOfRange, "load command %d", i)
	}
	t.scan()
	if i >= len(t.entries) {
		return 0, errors.Wrapf(t.scanErr, "load command %d unreachable", i)
	}
	return t.base + t.entries[i].off, nil
}
