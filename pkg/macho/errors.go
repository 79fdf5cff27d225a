package macho

import (
	"fmt"
	"io"

	"github.com/blacktop/lazymacho/pkg/macho/types"
	"github.com/pkg/errors"
)

var (
	// ErrNotFat is returned by NewFatFile when the source is a single image.
	ErrNotFat = errors.New("not a fat Mach-O file")
	// ErrFat is returned by NewFile when the source is a fat archive.
	ErrFat = errors.New("fat Mach-O file; use NewFatFile")
)

// FormatError is returned by some operations if the data does
// not have the correct format for a Mach-O file.
type FormatError struct {
	Off int64
	Msg string
	Val any
	Err error // io.ErrUnexpectedEOF for truncation
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Val != nil {
		msg += fmt.Sprintf(" '%v'", e.Val)
	}
	msg += fmt.Sprintf(" in record at byte %#x", e.Off)
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

func truncated(off int64, msg string, val any) *FormatError {
	return &FormatError{Off: off, Msg: msg, Val: val, Err: io.ErrUnexpectedEOF}
}

// SignatureError is returned when the bytes at the probed offset are not a
// Mach-O or fat magic.
type SignatureError struct {
	Off   int64
	Magic [4]byte
	N     int // bytes available, < 4 for short sources
}

func (e *SignatureError) Error() string {
	if e.N < len(e.Magic) {
		return fmt.Sprintf("invalid magic number: only %d bytes at %#x", e.N, e.Off)
	}
	return fmt.Sprintf("invalid magic number % x at %#x", e.Magic[:], e.Off)
}

// SubtypeError is returned under strict subtype resolution when a cpu
// subtype has no entry in its cpu family's table.
type SubtypeError struct {
	CPU   types.CPU
	Value types.CPUSubtype
}

func (e *SubtypeError) Error() string {
	return fmt.Sprintf("unknown %s subtype %#x for cpu %s", e.CPU.SubtypeFamily(), uint32(e.Value), e.CPU)
}

// IsNotMachO reports whether err means the source is not a Mach-O family file.
func IsNotMachO(err error) bool {
	var se *SignatureError
	return errors.As(err, &se)
}

// IsMalformed reports whether err means the source is a Mach-O file with
// invalid or truncated structure.
func IsMalformed(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsTruncated reports whether err is a FormatError caused by a declared
// length running past the available bytes.
func IsTruncated(err error) bool {
	return IsMalformed(err) && errors.Is(err, io.ErrUnexpectedEOF)
}

// readFull reads exactly len(buf) bytes at off. A ReaderAt may return
// io.EOF alongside a full read; that is not an error here.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}
