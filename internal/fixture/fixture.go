// Package fixture writes the buffers the tests read. It uses the flatbuffers
// builder so the fixtures come from the reference writer rather than from
// this module's own idea of the format.
package fixture

import (
	fb "github.com/dolthub/flatbuffers/v23/go"
)

// Slots of the example schema, as laid out by the writer.
const (
	slotSchemaVersion = iota
	slotAppName
	slotAppID
	slotDebugEnabled
	slotMaxConnections
	slotTimeoutMs
	slotAdvancedSettings
	// written by newer schemas only
	slotReleaseChannel
)

const (
	slotLogLevel = iota
	slotBufferSizeKb
	slotEnableMetrics
	slotAllowedHosts
	// written by newer schemas only
	slotRetryBudget
)

// Declared defaults; a writer omits a field equal to its default.
const (
	DefaultMaxConnections = 100
	DefaultTimeoutMs      = 5000
	DefaultBufferSizeKb   = 1024
)

type Version struct {
	Major, Minor, Patch uint32
}

type AppConfig struct {
	Version        *Version
	AppName        string
	AppID          uint32
	DebugEnabled   bool
	MaxConnections uint32
	TimeoutMs      uint32
	Advanced       *AdvancedSettings

	// ReleaseChannel is a field the current schema does not know about.
	ReleaseChannel string
}

type AdvancedSettings struct {
	LogLevel      string
	BufferSizeKb  uint32
	EnableMetrics bool
	AllowedHosts  []string

	// RetryBudget is a field the current schema does not know about.
	RetryBudget uint64
}

type Options struct {
	Identifier    string
	SizePrefixed  bool
	ForceDefaults bool
}

// Basic is the reference configuration: the defaulted fields are left at
// their defaults and so are not written at all.
func Basic() AppConfig {
	return AppConfig{
		Version:        &Version{Major: 1},
		AppName:        "TestApp",
		MaxConnections: DefaultMaxConnections,
		TimeoutMs:      DefaultTimeoutMs,
		Advanced: &AdvancedSettings{
			LogLevel:      "INFO",
			BufferSizeKb:  2048,
			EnableMetrics: true,
			AllowedHosts:  []string{"host1", "host2"},
		},
	}
}

// Evolution is Basic as written by a newer schema: minor version bumped and
// one extra field in each table.
func Evolution() AppConfig {
	c := Basic()
	c.Version = &Version{Major: 1, Minor: 1}
	c.ReleaseChannel = "beta"
	c.Advanced.RetryBudget = 3
	return c
}

// Minimal carries the required fields only.
func Minimal() AppConfig {
	return AppConfig{
		Version:        &Version{Major: 1},
		AppName:        "TestApp",
		MaxConnections: DefaultMaxConnections,
		TimeoutMs:      DefaultTimeoutMs,
	}
}

func BasicBytes() []byte     { return Build(Basic(), Options{}) }
func EvolutionBytes() []byte { return Build(Evolution(), Options{}) }

// Build serializes c.
func Build(c AppConfig, opts Options) []byte {
	b := fb.NewBuilder(1024)
	force := opts.ForceDefaults

	var name, adv, channel fb.UOffsetT
	if c.AppName != "" {
		name = b.CreateString(c.AppName)
	}
	if c.Advanced != nil {
		adv = buildAdvanced(b, c.Advanced, force)
	}
	if c.ReleaseChannel != "" {
		channel = b.CreateString(c.ReleaseChannel)
	}

	numFields := slotAdvancedSettings + 1
	if channel != 0 {
		numFields = slotReleaseChannel + 1
	}
	b.StartObject(numFields)
	if c.Version != nil {
		b.PrependStructSlot(slotSchemaVersion, createVersion(b, *c.Version), 0)
	}
	if name != 0 {
		b.PrependUOffsetTSlot(slotAppName, name, 0)
	}
	if adv != 0 {
		b.PrependUOffsetTSlot(slotAdvancedSettings, adv, 0)
	}
	if channel != 0 {
		b.PrependUOffsetTSlot(slotReleaseChannel, channel, 0)
	}
	uint32Slot(b, force, slotAppID, c.AppID, 0)
	uint32Slot(b, force, slotMaxConnections, c.MaxConnections, DefaultMaxConnections)
	uint32Slot(b, force, slotTimeoutMs, c.TimeoutMs, DefaultTimeoutMs)
	boolSlot(b, force, slotDebugEnabled, c.DebugEnabled, false)
	root := b.EndObject()

	return finish(b, root, opts)
}

func buildAdvanced(b *fb.Builder, a *AdvancedSettings, force bool) fb.UOffsetT {
	var level, hosts fb.UOffsetT
	if a.LogLevel != "" {
		level = b.CreateString(a.LogLevel)
	}
	if a.AllowedHosts != nil {
		hosts = StringVector(b, a.AllowedHosts)
	}
	numFields := slotAllowedHosts + 1
	if a.RetryBudget != 0 {
		numFields = slotRetryBudget + 1
	}
	b.StartObject(numFields)
	if a.RetryBudget != 0 {
		b.PrependUint64Slot(slotRetryBudget, a.RetryBudget, 0)
	}
	if level != 0 {
		b.PrependUOffsetTSlot(slotLogLevel, level, 0)
	}
	if hosts != 0 {
		b.PrependUOffsetTSlot(slotAllowedHosts, hosts, 0)
	}
	uint32Slot(b, force, slotBufferSizeKb, a.BufferSizeKb, DefaultBufferSizeKb)
	boolSlot(b, force, slotEnableMetrics, a.EnableMetrics, false)
	return b.EndObject()
}

// uint32Slot is PrependUint32Slot, except that force stores x even when it
// equals the default.
func uint32Slot(b *fb.Builder, force bool, slot int, x, d uint32) {
	if !force {
		b.PrependUint32Slot(slot, x, d)
		return
	}
	b.PrependUint32(x)
	b.Slot(slot)
}

func boolSlot(b *fb.Builder, force bool, slot int, x, d bool) {
	if !force {
		b.PrependBoolSlot(slot, x, d)
		return
	}
	b.PrependBool(x)
	b.Slot(slot)
}

func createVersion(b *fb.Builder, v Version) fb.UOffsetT {
	b.Prep(4, 12)
	b.PrependUint32(v.Patch)
	b.PrependUint32(v.Minor)
	b.PrependUint32(v.Major)
	return b.Offset()
}

// StringVector writes the strings and then a vector of offsets to them.
func StringVector(b *fb.Builder, ss []string) fb.UOffsetT {
	offs := make([]fb.UOffsetT, len(ss))
	for i, s := range ss {
		offs[i] = b.CreateString(s)
	}
	return OffsetVector(b, offs)
}

// OffsetVector writes a vector of previously written strings or tables.
func OffsetVector(b *fb.Builder, offs []fb.UOffsetT) fb.UOffsetT {
	b.StartVector(fb.SizeUOffsetT, len(offs), fb.SizeUOffsetT)
	for i := len(offs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offs[i])
	}
	return b.EndVector(len(offs))
}

func finish(b *fb.Builder, root fb.UOffsetT, opts Options) []byte {
	switch {
	case opts.SizePrefixed && opts.Identifier != "":
		b.FinishSizePrefixedWithFileIdentifier(root, []byte(opts.Identifier))
	case opts.SizePrefixed:
		b.FinishSizePrefixed(root)
	case opts.Identifier != "":
		b.FinishWithFileIdentifier(root, []byte(opts.Identifier))
	default:
		b.Finish(root)
	}
	return b.FinishedBytes()
}

// Garbage is n bytes of a deterministic pattern that is not a valid buffer
// for any root type.
func Garbage(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte((i*0x5A + 0xAA) & 0xFF)
	}
	return buf
}
