// Package config loads .flowlint.yaml and merges it with command-line flags
// into the effective settings for one invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/flowlint/flow"
)

// FileConfig is the on-disk configuration schema. Key names match the
// historical settings surface of the plugin: `all`, `lib`,
// `show-all-errors`, `use-server`, `executable`, `coverage`.
type FileConfig struct {
	All           bool     `yaml:"all"`
	Libs          []string `yaml:"lib"`
	ShowAllErrors bool     `yaml:"show-all-errors"`
	UseServer     bool     `yaml:"use-server"`
	Executable    string   `yaml:"executable"`
	Coverage      bool     `yaml:"coverage"`
	FlowJSON      bool     `yaml:"flow-json"`
	Format        string   `yaml:"format"`
	NoColor       bool     `yaml:"no-color"`
	// Timeout is a Go duration string, e.g. "30s".
	Timeout string `yaml:"timeout"`
}

// Flags holds command-line flag values plus explicit-set tracking, so an
// unset flag never clobbers a file setting.
type Flags struct {
	All           bool
	Libs          []string
	ShowAllErrors bool
	UseServer     bool
	Executable    string
	Coverage      bool
	FlowJSON      bool
	Format        string
	NoColor       bool
	Timeout       time.Duration
	Watch         bool
	Interval      time.Duration
	Debug         bool

	AllSet           bool
	ShowAllErrorsSet bool
	UseServerSet     bool
	CoverageSet      bool
	FlowJSONSet      bool
	NoColorSet       bool
	TimeoutSet       bool
	DebugSet         bool
}

// Settings is the fully resolved configuration for one invocation.
type Settings struct {
	Flow     flow.Config
	FlowJSON bool
	Format   string
	NoColor  bool
	Timeout  time.Duration
	Watch    bool
	Interval time.Duration
	Debug    bool
}

// Defaults for settings not specified anywhere. ShowAllErrors defaults on:
// Flow's 50-error cap predates editors that can render long lists and only
// hides information.
const (
	DefaultFormat   = "pretty"
	DefaultTimeout  = 30 * time.Second
	DefaultInterval = 2 * time.Second
)

// Load reads the configuration file, looking in the working directory first
// and the user config dir second. A missing file is not an error; the
// returned config then carries only defaults.
func Load() *FileConfig {
	cfg := &FileConfig{
		ShowAllErrors: true,
		Format:        DefaultFormat,
	}

	path := configPath()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file %s: %v. Using defaults.\n", path, err)
		}
		return cfg
	}

	// Unmarshal over the defaults so absent keys keep their default values.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error unmarshalling config file %s: %v. Using defaults.\n", path, err)
		return &FileConfig{
			ShowAllErrors: true,
			Format:        DefaultFormat,
		}
	}
	return cfg
}

// configPath finds .flowlint.yaml, checking the local directory first, then
// the XDG user config dir.
func configPath() string {
	localPath := ".flowlint.yaml"
	if _, err := os.Stat(localPath); err == nil {
		debugf("configPath", "using local config file: %s", localPath)
		return localPath
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		debugf("configPath", "UserConfigDir unusable (err: %v, path: %q)", err, configHome)
		return ""
	}
	xdgPath := filepath.Join(configHome, "flowlint", "flowlint.yaml")
	if _, err := os.Stat(xdgPath); err == nil {
		debugf("configPath", "using XDG config file: %s", xdgPath)
		return xdgPath
	}
	return ""
}

// Merge resolves the final settings: file values first, explicitly set flags
// on top, then environment overrides (NO_COLOR, CI, FLOWLINT_DEBUG).
func Merge(file *FileConfig, flags Flags) Settings {
	s := Settings{
		Flow: flow.Config{
			All:           file.All,
			Libs:          file.Libs,
			ShowAllErrors: file.ShowAllErrors,
			UseServer:     file.UseServer,
			Executable:    file.Executable,
			Coverage:      file.Coverage,
		},
		FlowJSON: file.FlowJSON,
		Format:   file.Format,
		NoColor:  file.NoColor,
		Timeout:  DefaultTimeout,
		Watch:    flags.Watch,
		Interval: DefaultInterval,
	}
	if file.Timeout != "" {
		if d, err := time.ParseDuration(file.Timeout); err == nil && d > 0 {
			s.Timeout = d
		} else {
			fmt.Fprintf(os.Stderr, "Warning: invalid timeout %q in config file, using %s.\n", file.Timeout, DefaultTimeout)
		}
	}

	if flags.AllSet {
		s.Flow.All = flags.All
	}
	if len(flags.Libs) > 0 {
		s.Flow.Libs = flags.Libs
	}
	if flags.ShowAllErrorsSet {
		s.Flow.ShowAllErrors = flags.ShowAllErrors
	}
	if flags.UseServerSet {
		s.Flow.UseServer = flags.UseServer
	}
	if flags.Executable != "" {
		s.Flow.Executable = flags.Executable
	}
	if flags.CoverageSet {
		s.Flow.Coverage = flags.Coverage
	}
	if flags.FlowJSONSet {
		s.FlowJSON = flags.FlowJSON
	}
	if flags.Format != "" {
		s.Format = flags.Format
	}
	if flags.NoColorSet {
		s.NoColor = flags.NoColor
	}
	if flags.TimeoutSet && flags.Timeout > 0 {
		s.Timeout = flags.Timeout
	}
	if flags.Interval > 0 {
		s.Interval = flags.Interval
	}
	if flags.DebugSet {
		s.Debug = flags.Debug
	}

	if v := envBool("FLOWLINT_NO_COLOR", "NO_COLOR"); v != nil && !flags.NoColorSet {
		s.NoColor = *v
	}
	if v := envBool("CI"); v != nil && *v && !flags.NoColorSet {
		s.NoColor = true
	}
	if !flags.DebugSet && os.Getenv("FLOWLINT_DEBUG") != "" {
		s.Debug = true
	}

	if s.Format == "" {
		s.Format = DefaultFormat
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	return s
}

// envBool returns the first parseable boolean among the named variables.
// A variable that is set but unparseable counts as true, matching how
// NO_COLOR is specified (presence, not value).
func envBool(names ...string) *bool {
	for _, name := range names {
		val, ok := os.LookupEnv(name)
		if !ok || val == "" {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			b = true
		}
		return &b
	}
	return nil
}

func debugf(fn, format string, args ...any) {
	if os.Getenv("FLOWLINT_DEBUG") == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "[DEBUG "+fn+"] "+format+"\n", args...)
}
