// Package macho renders lazily parsed Mach-O images for the CLI.
package macho

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/blacktop/lazymacho/internal/colors"
	"github.com/blacktop/lazymacho/pkg/macho"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Config controls what the renderers print.
type Config struct {
	Verbose bool // sections, raw payloads and per-arch load listings
}

// SelectImage picks the image to inspect: the single image of a thin
// binary, or the arch named by arch ("ARM64", "ARM/ARMV7" or an index)
// of a fat one.
func SelectImage(b *macho.Binary, arch string) (*macho.File, error) {
	if !b.IsFat() {
		if arch != "" && arch != b.File.CPU.String() {
			return nil, errors.Errorf("binary is a single %s image, not %s", b.File.CPU, arch)
		}
		return b.File, nil
	}
	if arch == "" {
		if b.Fat.NumArches() == 1 {
			return b.Fat.Image(0)
		}
		return nil, errors.Errorf("fat binary has %d arches; pick one with --arch (%s)", b.Fat.NumArches(), archNames(b.Fat))
	}
	if i, err := strconv.Atoi(arch); err == nil {
		return b.Fat.Image(i)
	}
	i, ok := b.Fat.LookupName(arch)
	if !ok {
		return nil, errors.Errorf("no %s arch in fat binary (%s)", arch, archNames(b.Fat))
	}
	return b.Fat.Image(i)
}

func archNames(ff *macho.FatFile) string {
	var names []string
	for _, a := range ff.Arches {
		names = append(names, a.CPU.String()+"/"+a.Subtype().String())
	}
	return strings.Join(names, ", ")
}

// Header writes the identity and header of f.
func Header(w io.Writer, f *macho.File) {
	label := colors.Func(colors.Label)
	fmt.Fprintf(w, "%s %s\n", label("Magic:"), colors.Sprint(colors.Value, f.Identity()))
	fmt.Fprintf(w, "%s %s\n", label("CPU:  "), colors.Sprintf(colors.Value, "%s, %s", f.CPU, f.Subtype))
	fmt.Fprintf(w, "%s %s\n", label("Type: "), colors.Sprint(colors.Value, f.Type))
	fmt.Fprintf(w, "%s %s\n", label("Flags:"), colors.Sprint(colors.Value, f.Flags.Flags()))
	fmt.Fprintf(w, "%s %s\n", label("Loads:"), colors.Sprintf(colors.Value, "%d (%s)", f.NCommands, humanize.Bytes(uint64(f.SizeCommands))))
}

// Arches writes the fat arch table.
func Arches(w io.Writer, ff *macho.FatFile) {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.DiscardEmptyColumns)
	fmt.Fprintf(tw, "#\tCPU\tSUBTYPE\tOFFSET\tSIZE\tALIGN\n")
	for i, a := range ff.Arches {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
			i,
			colors.Sprint(colors.Name, a.CPU),
			a.Subtype(),
			colors.Sprintf(colors.Offset, "%#x", a.Offset),
			humanize.Bytes(uint64(a.Size)),
			uint64(1)<<a.Align,
		)
	}
	tw.Flush()
}

// Loads writes every load command of f in order. A command that fails
// to decode is reported in place and the listing stops, since no later
// command can be located.
func Loads(w io.Writer, f *macho.File, conf *Config) error {
	i := 0
	for l, err := range f.Loads() {
		if err != nil {
			fmt.Fprintf(w, "%03d: %s\n", i, colors.Sprint(colors.Fail, err))
			return errors.Wrapf(err, "load command %d", i)
		}
		Load(w, i, l, conf)
		i++
	}
	if err := f.VerifyLoads(); err != nil {
		fmt.Fprintf(w, "%s %v\n", colors.Sprint(colors.Warn, "warning:"), err)
	}
	return nil
}

// Load writes load command i.
func Load(w io.Writer, i int, l macho.Load, conf *Config) {
	if conf == nil {
		conf = &Config{}
	}
	cmd := colors.Sprintf(colors.Command, "%-28s", l.Command())
	prefix := fmt.Sprintf("%03d: ", i)

	switch l := l.(type) {
	case *macho.Segment:
		fmt.Fprintf(w, "%s%s %s addr=%s-%s off=%s-%s %s/%s size=%s\n",
			prefix, cmd,
			colors.Sprintf(colors.Name, "%-16s", l.Name),
			colors.Sprintf(colors.Offset, "%#09x", l.Addr), colors.Sprintf(colors.Offset, "%#09x", l.Addr+l.Memsz),
			colors.Sprintf(colors.Offset, "%#08x", l.Offset), colors.Sprintf(colors.Offset, "%#08x", l.Offset+l.Filesz),
			l.Prot, l.Maxprot,
			humanize.Bytes(l.Memsz),
		)
		if conf.Verbose {
			for _, s := range l.Sections {
				fmt.Fprintf(w, "\t%s addr=%s size=%s %s\n",
					colors.Sprintf(colors.Name, "%-24s", s.Seg+"."+s.Name),
					colors.Sprintf(colors.Offset, "%#09x", s.Addr),
					humanize.Bytes(s.Size),
					colors.Sprint(colors.Muted, sectionKind(s)),
				)
			}
		}
	case *macho.Dylib:
		fmt.Fprintf(w, "%s%s %s (%s)\n", prefix, cmd, colors.Sprint(colors.Name, l.Name), l.CurrentVersion)
	case *macho.Dylinker:
		fmt.Fprintf(w, "%s%s %s\n", prefix, cmd, colors.Sprint(colors.Name, l.Name))
	case *macho.UUID:
		fmt.Fprintf(w, "%s%s %s\n", prefix, cmd, colors.Sprint(colors.Value, l.ID))
	case *macho.LinkEditData:
		fmt.Fprintf(w, "%s%s offset=%s size=%s\n", prefix, cmd,
			colors.Sprintf(colors.Offset, "%#08x", l.Offset), humanize.Bytes(uint64(l.Size)))
	case *macho.LoadCmdBytes:
		if conf.Verbose {
			fmt.Fprintf(w, "%s%s size=%d %s\n", prefix, cmd, l.Len, colors.Sprint(colors.Muted, macho.LoadBytes(l.Payload())))
		} else {
			fmt.Fprintf(w, "%s%s size=%d\n", prefix, cmd, l.Len)
		}
	default:
		// the shape's own String starts with the padded command name
		s := l.String()
		if n := len(l.Command().String()); len(s) > n {
			s = strings.TrimLeft(s[n:], " ")
		}
		fmt.Fprintf(w, "%s%s %s\n", prefix, cmd, s)
	}
}

func sectionKind(s *macho.Section) string {
	if attrs := s.Flags.AttributesString(); attrs != "" {
		return s.Flags.TypeString() + " " + attrs
	}
	return s.Flags.TypeString()
}

// Info writes the identity and header of every image in b. For a fat
// binary all arches are parsed concurrently and a failing arch is reported
// without hiding the others.
func Info(ctx context.Context, w io.Writer, b *macho.Binary, conf *Config) error {
	if conf == nil {
		conf = &Config{}
	}
	if !b.IsFat() {
		Header(w, b.File)
		if conf.Verbose {
			fmt.Fprintln(w)
			return Loads(w, b.File, conf)
		}
		return nil
	}

	fmt.Fprintf(w, "%s %s (%d arches)\n\n",
		colors.Sprint(colors.Title, "Fat"), b.Identity, b.Fat.NumArches())
	Arches(w, b.Fat)

	results, err := b.Fat.ParseAll(ctx)
	if err != nil {
		return err
	}
	var failed int
	for _, r := range results {
		fmt.Fprintf(w, "\n%s\n", colors.Sprintf(colors.Title, "[arch %d] %s/%s", r.Index, r.Arch.CPU, r.Arch.Subtype()))
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s %v\n", colors.Sprint(colors.Fail, "error:"), r.Err)
			continue
		}
		Header(w, r.File)
		if conf.Verbose {
			fmt.Fprintln(w)
			// reported in place; the header still parsed
			_ = Loads(w, r.File, conf)
		}
	}
	if failed == len(results) {
		return errors.New("no arch could be parsed")
	}
	return nil
}
