package types

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/blacktop/lazymacho/pkg/macho/utils"
	"github.com/google/uuid"
)

type VmProtection int32

func (v VmProtection) Read() bool {
	return (v & 0x01) != 0
}

func (v VmProtection) Write() bool {
	return (v & 0x02) != 0
}

func (v VmProtection) Execute() bool {
	return (v & 0x04) != 0
}

func (v VmProtection) String() string {
	var protStr string
	if v.Read() {
		protStr += "r"
	} else {
		protStr += "-"
	}
	if v.Write() {
		protStr += "w"
	} else {
		protStr += "-"
	}
	if v.Execute() {
		protStr += "x"
	} else {
		protStr += "-"
	}
	return protStr
}

// UUID is a macho uuid object
type UUID [16]byte

// UUID returns u as a google/uuid value.
func (u UUID) UUID() uuid.UUID { return uuid.UUID(u) }

func (u UUID) String() string {
	return strings.ToUpper(uuid.UUID(u).String())
}

// Platform is a macho platform object
type Platform uint32

const (
	PlatformUnknown          Platform = 0
	PlatformMacOS            Platform = 1  // PLATFORM_MACOS
	PlatformIOS              Platform = 2  // PLATFORM_IOS
	PlatformTvOS             Platform = 3  // PLATFORM_TVOS
	PlatformWatchOS          Platform = 4  // PLATFORM_WATCHOS
	PlatformBridgeOS         Platform = 5  // PLATFORM_BRIDGEOS
	PlatformMacCatalyst      Platform = 6  // PLATFORM_MACCATALYST
	PlatformIOSSimulator     Platform = 7  // PLATFORM_IOSSIMULATOR
	PlatformTvOSSimulator    Platform = 8  // PLATFORM_TVOSSIMULATOR
	PlatformWatchOSSimulator Platform = 9  // PLATFORM_WATCHOSSIMULATOR
	PlatformDriverKit        Platform = 10 // PLATFORM_DRIVERKIT
)

var platformStrings = []utils.IntName{
	{I: uint32(PlatformUnknown), S: "unknown"},
	{I: uint32(PlatformMacOS), S: "macOS"},
	{I: uint32(PlatformIOS), S: "iOS"},
	{I: uint32(PlatformTvOS), S: "tvOS"},
	{I: uint32(PlatformWatchOS), S: "watchOS"},
	{I: uint32(PlatformBridgeOS), S: "bridgeOS"},
	{I: uint32(PlatformMacCatalyst), S: "macCatalyst"},
	{I: uint32(PlatformIOSSimulator), S: "iOS Simulator"},
	{I: uint32(PlatformTvOSSimulator), S: "tvOS Simulator"},
	{I: uint32(PlatformWatchOSSimulator), S: "watchOS Simulator"},
	{I: uint32(PlatformDriverKit), S: "DriverKit"},
}

func (p Platform) String() string { return utils.StringName(uint32(p), platformStrings, false) }

// Version is an X.Y.Z version encoded in nibbles xxxx.yy.zz
type Version uint32

func (v Version) String() string {
	s := make([]byte, 4)
	binary.BigEndian.PutUint32(s, uint32(v))
	return fmt.Sprintf("%d.%d.%d", binary.BigEndian.Uint16(s[:2]), s[2], s[3])
}

// SrcVersion is A.B.C.D.E packed as a24.b10.c10.d10.e10
type SrcVersion uint64

func (sv SrcVersion) String() string {
	a := sv >> 40
	b := (sv >> 30) & 0x3ff
	c := (sv >> 20) & 0x3ff
	d := (sv >> 10) & 0x3ff
	e := sv & 0x3ff
	return fmt.Sprintf("%d.%d.%d.%d.%d", a, b, c, d, e)
}

type Tool uint32

const (
	ToolClang Tool = 1 // TOOL_CLANG
	ToolSwift Tool = 2 // TOOL_SWIFT
	ToolLd    Tool = 3 // TOOL_LD
	ToolLld   Tool = 4 // TOOL_LLD
)

var toolStrings = []utils.IntName{
	{I: uint32(ToolClang), S: "clang"},
	{I: uint32(ToolSwift), S: "swift"},
	{I: uint32(ToolLd), S: "ld"},
	{I: uint32(ToolLld), S: "lld"},
}

func (t Tool) String() string { return utils.StringName(uint32(t), toolStrings, false) }

type BuildToolVersion struct {
	Tool    Tool    /* enum for the tool */
	Version Version /* version number of the tool */
}
