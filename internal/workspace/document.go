package workspace

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/mesh-intelligence/ckx/pkg/types"
)

// Document keys with a known meaning.
const (
	KeyUnderlays      = "underlays"
	KeySourceSpace    = "source_space"
	KeyLogSpace       = "log_space"
	KeyBuildSpace     = "build_space"
	KeyDevelSpace     = "devel_space"
	KeyInstallSpace   = "install_space"
	KeyDocSpace       = "doc_space"
	KeyDevelLayout    = "devel_layout"
	KeyInstall        = "install"
	KeyIsolateInstall = "isolate_install"
	KeyCMakeArgs      = "cmake_args"
	KeyMakeArgs       = "make_args"
	KeyCatkinMakeArgs = "catkin_make_args"
	KeyWhitelist      = "whitelist"
	KeyBlacklist      = "blacklist"
	KeyPlatform       = "platform"
	KeyToolchain      = "toolchain"
	KeyDocPrefix      = "doc_prefix"

	KeyJobsArgs                 = "jobs_args"
	KeyUseInternalMakeJobserver = "use_internal_make_jobserver"
	KeyUseEnvCache              = "use_env_cache"

	// keyIsolateDevel is the pre-0.4.0 spelling of devel_layout.
	keyIsolateDevel = "isolate_devel"
)

// Devel space layouts.
const (
	DevelLayoutLinked   = "linked"
	DevelLayoutMerged   = "merged"
	DevelLayoutIsolated = "isolated"
)

// ToolchainNone is stored as the toolchain of a profile configured to build
// with the host toolchain, so settings defaults do not replace it later.
const ToolchainNone = "none"

// ConfigOptions is the typed view of the config verb document. Keys it does
// not know are kept in Extra.
type ConfigOptions struct {
	Underlays      string   `mapstructure:"underlays"`
	SourceSpace    string   `mapstructure:"source_space"`
	LogSpace       string   `mapstructure:"log_space"`
	BuildSpace     string   `mapstructure:"build_space"`
	DevelSpace     string   `mapstructure:"devel_space"`
	InstallSpace   string   `mapstructure:"install_space"`
	DocSpace       string   `mapstructure:"doc_space"`
	DevelLayout    string   `mapstructure:"devel_layout"`
	Install        *bool    `mapstructure:"install"`
	IsolateInstall *bool    `mapstructure:"isolate_install"`
	CMakeArgs      []string `mapstructure:"cmake_args"`
	MakeArgs       []string `mapstructure:"make_args"`
	CatkinMakeArgs []string `mapstructure:"catkin_make_args"`
	Whitelist      []string `mapstructure:"whitelist"`
	Blacklist      []string `mapstructure:"blacklist"`
	Platform       string   `mapstructure:"platform"`
	Toolchain      string   `mapstructure:"toolchain"`
	DocPrefix      string   `mapstructure:"doc_prefix"`

	Extra map[string]any `mapstructure:",remain"`
}

// ToolchainName returns the toolchain to install, or "" for the host toolchain.
func (o ConfigOptions) ToolchainName() string {
	if o.Toolchain == ToolchainNone {
		return ""
	}
	return o.Toolchain
}

// BuildOptions is the typed view of the build verb document.
type BuildOptions struct {
	DevelLayout              string   `mapstructure:"devel_layout"`
	JobsArgs                 []string `mapstructure:"jobs_args"`
	UseInternalMakeJobserver *bool    `mapstructure:"use_internal_make_jobserver"`
	UseEnvCache              *bool    `mapstructure:"use_env_cache"`

	Extra map[string]any `mapstructure:",remain"`
}

// DecodeConfigOptions validates doc against the config schema.
func DecodeConfigOptions(doc Document) (ConfigOptions, error) {
	var opts ConfigOptions
	if err := decodeStrict(doc, &opts); err != nil {
		return ConfigOptions{}, err
	}
	if err := validDevelLayout(opts.DevelLayout); err != nil {
		return ConfigOptions{}, err
	}
	return opts, nil
}

// DecodeBuildOptions validates doc against the build schema.
func DecodeBuildOptions(doc Document) (BuildOptions, error) {
	var opts BuildOptions
	if err := decodeStrict(doc, &opts); err != nil {
		return BuildOptions{}, err
	}
	if err := validDevelLayout(opts.DevelLayout); err != nil {
		return BuildOptions{}, err
	}
	return opts, nil
}

func decodeStrict(doc Document, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(doc)); err != nil {
		return fmt.Errorf("%w: %v", types.ErrUnexpectedShape, err)
	}
	return nil
}

func validDevelLayout(layout string) error {
	switch layout {
	case "", DevelLayoutLinked, DevelLayoutMerged, DevelLayoutIsolated:
		return nil
	}
	return fmt.Errorf("%w: %s %q", types.ErrUnexpectedShape, KeyDevelLayout, layout)
}

// Document returns the options as a Document. Unset fields are omitted and
// Extra keys are carried over.
func (o ConfigOptions) Document() Document {
	doc := Document{}
	for k, v := range o.Extra {
		doc[k] = v
	}
	setString(doc, KeyUnderlays, o.Underlays)
	setString(doc, KeySourceSpace, o.SourceSpace)
	setString(doc, KeyLogSpace, o.LogSpace)
	setString(doc, KeyBuildSpace, o.BuildSpace)
	setString(doc, KeyDevelSpace, o.DevelSpace)
	setString(doc, KeyInstallSpace, o.InstallSpace)
	setString(doc, KeyDocSpace, o.DocSpace)
	setString(doc, KeyDevelLayout, o.DevelLayout)
	setBool(doc, KeyInstall, o.Install)
	setBool(doc, KeyIsolateInstall, o.IsolateInstall)
	setList(doc, KeyCMakeArgs, o.CMakeArgs)
	setList(doc, KeyMakeArgs, o.MakeArgs)
	setList(doc, KeyCatkinMakeArgs, o.CatkinMakeArgs)
	setList(doc, KeyWhitelist, o.Whitelist)
	setList(doc, KeyBlacklist, o.Blacklist)
	setString(doc, KeyPlatform, o.Platform)
	setString(doc, KeyToolchain, o.Toolchain)
	setString(doc, KeyDocPrefix, o.DocPrefix)
	return doc
}

// Document returns the options as a Document.
func (o BuildOptions) Document() Document {
	doc := Document{}
	for k, v := range o.Extra {
		doc[k] = v
	}
	setString(doc, KeyDevelLayout, o.DevelLayout)
	setList(doc, KeyJobsArgs, o.JobsArgs)
	setBool(doc, KeyUseInternalMakeJobserver, o.UseInternalMakeJobserver)
	setBool(doc, KeyUseEnvCache, o.UseEnvCache)
	return doc
}

func setString(doc Document, key, value string) {
	if value != "" {
		doc[key] = value
	}
}

func setBool(doc Document, key string, value *bool) {
	if value != nil {
		doc[key] = *value
	}
}

func setList(doc Document, key string, value []string) {
	if value != nil {
		doc[key] = value
	}
}
