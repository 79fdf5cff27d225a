// Package colors provides the CLI's color palette with TTY-aware defaults.
//
// Colors are disabled when stdout is not a terminal; fatih/color detects that
// on its own. Init overrides the detection from the --color flag.
package colors

import "github.com/fatih/color"

// Init overrides the auto-detected color setting.
//   - forceColor == nil: keep the auto-detected value
//   - forceColor == true: force colors on
//   - forceColor == false: force colors off
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// A Role is the part of a Mach-O listing a piece of text belongs to.
type Role int

const (
	Title   Role = iota // file and arch banners
	Label               // field names
	Value               // field values
	Offset              // addresses, offsets and sizes
	Command             // load command tags
	Name                // segment, section and dylib names
	Muted               // raw bytes and other noise
	Warn                // recoverable problems
	Fail                // per-item errors
)

var palette = map[Role][]color.Attribute{
	Title:   {color.Bold, color.FgHiWhite},
	Label:   {color.Bold, color.FgHiBlue},
	Value:   {color.FgHiWhite},
	Offset:  {color.FgHiMagenta},
	Command: {color.Bold, color.FgHiCyan},
	Name:    {color.FgHiYellow},
	Muted:   {color.Faint, color.FgWhite},
	Warn:    {color.Bold, color.FgYellow},
	Fail:    {color.Bold, color.FgHiRed},
}

// For returns the color used for role.
func For(r Role) *color.Color {
	attrs, ok := palette[r]
	if !ok {
		return color.New(color.Reset)
	}
	return color.New(attrs...)
}

// Sprint formats a in role's color.
func Sprint(r Role, a ...any) string { return For(r).Sprint(a...) }

// Sprintf formats according to format in role's color.
func Sprintf(r Role, format string, a ...any) string { return For(r).Sprintf(format, a...) }

// Func returns a Sprintf-style function for role, for use in tight loops.
func Func(r Role) func(format string, a ...any) string { return For(r).SprintfFunc() }
