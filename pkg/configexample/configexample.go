// Package configexample is the typed accessor layer for the example
// application configuration:
//
//	struct Version { major:uint; minor:uint; patch:uint; }
//
//	table AppConfig {
//	  schema_version:Version (required);
//	  app_name:string (required);
//	  app_id:uint;
//	  debug_enabled:bool = false;
//	  max_connections:uint = 100;
//	  timeout_ms:uint = 5000;
//	  advanced_settings:AdvancedSettings;
//	}
//
//	table AdvancedSettings {
//	  log_level:string;
//	  buffer_size_kb:uint = 1024;
//	  enable_metrics:bool = false;
//	  allowed_hosts:[string];
//	}
//
//	root_type AppConfig;
//
// It is written the way a schema compiler would emit it: slot constants, a
// package-level Descriptor and thin wrappers over zcconfig.View.
package configexample

import (
	"github.com/rawbytedev/zcconfig"
	"github.com/rawbytedev/zcconfig/pkg/layout"
)

const (
	AppConfigSchemaVersion uint16 = iota
	AppConfigAppName
	AppConfigAppID
	AppConfigDebugEnabled
	AppConfigMaxConnections
	AppConfigTimeoutMs
	AppConfigAdvancedSettings
)

const (
	AdvancedSettingsLogLevel uint16 = iota
	AdvancedSettingsBufferSizeKb
	AdvancedSettingsEnableMetrics
	AdvancedSettingsAllowedHosts
)

const (
	VersionMajor = iota
	VersionMinor
	VersionPatch
)

var Descriptor = layout.MustCompile(layout.Schema{
	Root: "AppConfig",
	Structs: []*layout.Struct{{
		Name: "Version",
		Fields: []layout.StructField{
			{Name: "major", Kind: layout.Uint32},
			{Name: "minor", Kind: layout.Uint32},
			{Name: "patch", Kind: layout.Uint32},
		},
	}},
	Tables: []*layout.Table{
		{
			Name: "AppConfig",
			Fields: []layout.FieldSpec{
				{Name: "schema_version", Slot: AppConfigSchemaVersion, Type: layout.StructOf("Version"), Required: true},
				{Name: "app_name", Slot: AppConfigAppName, Type: layout.TypeOf(layout.String), Required: true},
				{Name: "app_id", Slot: AppConfigAppID, Type: layout.TypeOf(layout.Uint32)},
				{Name: "debug_enabled", Slot: AppConfigDebugEnabled, Type: layout.TypeOf(layout.Bool), Default: layout.BoolValue(false)},
				{Name: "max_connections", Slot: AppConfigMaxConnections, Type: layout.TypeOf(layout.Uint32), Default: layout.Uint(layout.Uint32, 100)},
				{Name: "timeout_ms", Slot: AppConfigTimeoutMs, Type: layout.TypeOf(layout.Uint32), Default: layout.Uint(layout.Uint32, 5000)},
				{Name: "advanced_settings", Slot: AppConfigAdvancedSettings, Type: layout.TableOf("AdvancedSettings")},
			},
		},
		{
			Name: "AdvancedSettings",
			Fields: []layout.FieldSpec{
				{Name: "log_level", Slot: AdvancedSettingsLogLevel, Type: layout.TypeOf(layout.String)},
				{Name: "buffer_size_kb", Slot: AdvancedSettingsBufferSizeKb, Type: layout.TypeOf(layout.Uint32), Default: layout.Uint(layout.Uint32, 1024)},
				{Name: "enable_metrics", Slot: AdvancedSettingsEnableMetrics, Type: layout.TypeOf(layout.Bool), Default: layout.BoolValue(false)},
				{Name: "allowed_hosts", Slot: AdvancedSettingsAllowedHosts, Type: layout.VectorOf(layout.String)},
			},
		},
	},
})

type Version struct {
	Major, Minor, Patch uint32
}

type AppConfig struct {
	v zcconfig.View
}

// VerifyAppConfig verifies buf and returns its root.
func VerifyAppConfig(buf []byte, opts zcconfig.Options) (AppConfig, error) {
	v, err := zcconfig.NewReader(Descriptor, opts).VerifyAndView(buf, "AppConfig")
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{v: v}, nil
}

// GetRootAsAppConfig returns the root of buf without verifying it. Only use
// it on buffers this process wrote or verified before.
func GetRootAsAppConfig(buf []byte) AppConfig {
	return AppConfig{v: zcconfig.UncheckedView(Descriptor, buf, "AppConfig")}
}

// AsAppConfig wraps a view of an AppConfig table.
func AsAppConfig(v zcconfig.View) AppConfig { return AppConfig{v: v} }

func (rcv AppConfig) View() zcconfig.View { return rcv.v }

func (rcv AppConfig) SchemaVersion() Version {
	s, _ := rcv.v.Struct(AppConfigSchemaVersion)
	return Version{
		Major: s.Uint32(VersionMajor),
		Minor: s.Uint32(VersionMinor),
		Patch: s.Uint32(VersionPatch),
	}
}

func (rcv AppConfig) AppName() string {
	s, _ := rcv.v.String(AppConfigAppName)
	return s
}

func (rcv AppConfig) AppID() uint32          { return rcv.v.Uint32(AppConfigAppID) }
func (rcv AppConfig) DebugEnabled() bool     { return rcv.v.Bool(AppConfigDebugEnabled) }
func (rcv AppConfig) MaxConnections() uint32 { return rcv.v.Uint32(AppConfigMaxConnections) }
func (rcv AppConfig) TimeoutMs() uint32      { return rcv.v.Uint32(AppConfigTimeoutMs) }

// AdvancedSettings returns the nested settings; the result reads defaults
// when the buffer has none, and the bool reports which case applies.
func (rcv AppConfig) AdvancedSettings() (AdvancedSettings, bool) {
	t := rcv.v.Table(AppConfigAdvancedSettings)
	return AdvancedSettings{v: t}, t.Present()
}

type AdvancedSettings struct {
	v zcconfig.View
}

func (rcv AdvancedSettings) View() zcconfig.View { return rcv.v }

func (rcv AdvancedSettings) LogLevel() (string, bool) { return rcv.v.String(AdvancedSettingsLogLevel) }
func (rcv AdvancedSettings) BufferSizeKb() uint32     { return rcv.v.Uint32(AdvancedSettingsBufferSizeKb) }
func (rcv AdvancedSettings) EnableMetrics() bool      { return rcv.v.Bool(AdvancedSettingsEnableMetrics) }

func (rcv AdvancedSettings) AllowedHostsLength() int {
	return rcv.v.Vector(AdvancedSettingsAllowedHosts).Len()
}

func (rcv AdvancedSettings) AllowedHosts(j int) string {
	return rcv.v.Vector(AdvancedSettingsAllowedHosts).String(j)
}

// AllowedHostsList copies the hosts out; nil when the vector is absent.
func (rcv AdvancedSettings) AllowedHostsList() []string {
	if !rcv.v.Has(AdvancedSettingsAllowedHosts) {
		return nil
	}
	vec := rcv.v.Vector(AdvancedSettingsAllowedHosts)
	out := make([]string, vec.Len())
	for i := range out {
		out[i] = vec.String(i)
	}
	return out
}
