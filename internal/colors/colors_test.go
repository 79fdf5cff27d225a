package colors

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestInit_ForceOn(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	forceOn := true
	Init(&forceOn)

	if color.NoColor {
		t.Error("expected colors enabled when Init(true)")
	}
	if !Enabled() {
		t.Error("Enabled() should return true")
	}
}

func TestInit_ForceOff(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = false
	forceOff := false
	Init(&forceOff)

	if !color.NoColor {
		t.Error("expected colors disabled when Init(false)")
	}
	if Enabled() {
		t.Error("Enabled() should return false")
	}
}

func TestInit_Nil_KeepsExisting(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	for _, noColor := range []bool{false, true} {
		color.NoColor = noColor
		Init(nil)
		if color.NoColor != noColor {
			t.Errorf("Init(nil) changed NoColor from %v", noColor)
		}
	}
}

func TestRoles(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	roles := []Role{Title, Label, Value, Offset, Command, Name, Muted, Warn, Fail}
	for _, r := range roles {
		color.NoColor = false
		if got := Sprint(r, "x"); !strings.Contains(got, "\x1b[") {
			t.Errorf("Sprint(%d) = %q, expected ANSI codes", r, got)
		}
		color.NoColor = true
		if got := Sprintf(r, "%#x", 16); got != "0x10" {
			t.Errorf("Sprintf(%d) = %q, want plain 0x10", r, got)
		}
	}
}

func TestFunc(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	f := Func(Command)
	if got := f("%s", "LC_UUID"); got != "LC_UUID" {
		t.Errorf("Func(Command)() = %q", got)
	}
}

func TestUnknownRole(t *testing.T) {
	orig := color.NoColor
	defer func() { color.NoColor = orig }()

	color.NoColor = true
	if got := Sprint(Role(99), "plain"); got != "plain" {
		t.Errorf("Sprint(99) = %q", got)
	}
}
