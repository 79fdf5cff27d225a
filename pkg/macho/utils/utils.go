package utils

import "strconv"

// IntName maps an enum value to its symbolic name.
type IntName struct {
	I uint32
	S string
}

// Lookup returns the name registered for i, if any.
func Lookup(i uint32, names []IntName) (string, bool) {
	for _, n := range names {
		if n.I == i {
			return n.S, true
		}
	}
	return "", false
}

// StringName returns the name registered for i or its decimal value.
func StringName(i uint32, names []IntName, goSyntax bool) string {
	if s, ok := Lookup(i, names); ok {
		if goSyntax {
			return "macho." + s
		}
		return s
	}
	return strconv.FormatUint(uint64(i), 10)
}

// HexName is StringName with a hexadecimal fallback, used for tags whose
// numeric form is normally quoted in hex (load command values with the
// REQ_DYLD bit set are unreadable in decimal).
func HexName(i uint32, names []IntName) string {
	if s, ok := Lookup(i, names); ok {
		return s
	}
	return "0x" + strconv.FormatUint(uint64(i), 16)
}
