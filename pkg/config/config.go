// Package config holds the tunable values of a bootstrap run and loads them
// from TOML or YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nexusboot/pkg/install"
	"nexusboot/pkg/logwatch"
	"nexusboot/pkg/mux"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Default values.
const (
	DefaultSession = "nexus"
	DefaultLogFile = "/tmp/nexus_screen.log"
	DefaultShell   = "bash"
	DefaultSettle  = 3 * time.Second
)

// Duration is a time.Duration written as a Go duration string ("500ms", "3s")
// in config files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Trigger is the file form of a logwatch.Rule.
type Trigger struct {
	Name    string   `toml:"name" yaml:"name"`
	Match   []string `toml:"match" yaml:"match"`
	Respond string   `toml:"respond,omitempty" yaml:"respond,omitempty"`
	Done    bool     `toml:"done,omitempty" yaml:"done,omitempty"`
}

// Config is everything a bootstrap run needs to know.
type Config struct {
	Multiplexer    string    `toml:"multiplexer" yaml:"multiplexer"`
	Session        string    `toml:"session" yaml:"session"`
	Shell          string    `toml:"shell" yaml:"shell"`
	LogFile        string    `toml:"log_file" yaml:"log_file"`
	InstallCommand string    `toml:"install_command" yaml:"install_command"`
	FilePoll       Duration  `toml:"file_poll" yaml:"file_poll"`
	LinePoll       Duration  `toml:"line_poll" yaml:"line_poll"`
	Settle         *Duration `toml:"settle,omitempty" yaml:"settle,omitempty"`
	Notify         *bool     `toml:"notify,omitempty" yaml:"notify,omitempty"`
	Triggers       []Trigger `toml:"triggers" yaml:"triggers"`
}

// Defaults returns the configuration nexusboot runs with when nothing is
// overridden.
func Defaults() *Config {
	notify := true
	settle := Duration(DefaultSettle)
	cfg := &Config{
		Multiplexer:    mux.KindScreen,
		Session:        DefaultSession,
		Shell:          DefaultShell,
		LogFile:        DefaultLogFile,
		InstallCommand: install.DefaultCommand,
		FilePoll:       Duration(logwatch.DefaultFilePoll),
		LinePoll:       Duration(logwatch.DefaultLinePoll),
		Settle:         &settle,
		Notify:         &notify,
	}
	for _, r := range logwatch.DefaultRules() {
		cfg.Triggers = append(cfg.Triggers, Trigger{Name: r.Name, Match: r.Match, Respond: r.Respond, Done: r.Done})
	}
	return cfg
}

// Rules converts the configured triggers to monitor rules, in order.
func (c *Config) Rules() []logwatch.Rule {
	rules := make([]logwatch.Rule, 0, len(c.Triggers))
	for _, t := range c.Triggers {
		rules = append(rules, logwatch.Rule{Name: t.Name, Match: t.Match, Respond: t.Respond, Done: t.Done})
	}
	return rules
}

// SettleDuration returns the pause between teardown and session creation.
// An unset value means DefaultSettle; an explicit zero disables the pause.
func (c *Config) SettleDuration() time.Duration {
	if c.Settle == nil {
		return DefaultSettle
	}
	return c.Settle.Std()
}

// SetSettle sets the settle pause, zero included.
func (c *Config) SetSettle(d time.Duration) {
	v := Duration(d)
	c.Settle = &v
}

// NotifyEnabled reports whether fsnotify wake-ups are on (default true).
func (c *Config) NotifyEnabled() bool {
	return c.Notify == nil || *c.Notify
}

// Load reads the file at path over the defaults. The format is chosen by
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	//nolint:gosec // path comes from the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, filepath.Ext(path))
	}

	cfg := Defaults()
	cfg.merge(&file)
	return cfg, nil
}

// Discover returns the first of config.toml, config.yaml, config.yml found in
// dir, or "" if there is none.
func Discover(dir string) string {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// merge copies every field set in o over c. Triggers are replaced as a whole.
func (c *Config) merge(o *Config) {
	if o.Multiplexer != "" {
		c.Multiplexer = o.Multiplexer
	}
	if o.Session != "" {
		c.Session = o.Session
	}
	if o.Shell != "" {
		c.Shell = o.Shell
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.InstallCommand != "" {
		c.InstallCommand = o.InstallCommand
	}
	if o.FilePoll != 0 {
		c.FilePoll = o.FilePoll
	}
	if o.LinePoll != 0 {
		c.LinePoll = o.LinePoll
	}
	if o.Settle != nil {
		c.Settle = o.Settle
	}
	if o.Notify != nil {
		c.Notify = o.Notify
	}
	if len(o.Triggers) > 0 {
		c.Triggers = o.Triggers
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvSession        = "NEXUSBOOT_SESSION"
	EnvLogFile        = "NEXUSBOOT_LOG_FILE"
	EnvMultiplexer    = "NEXUSBOOT_MUX"
	EnvInstallCommand = "NEXUSBOOT_INSTALL_CMD"
	EnvSettle         = "NEXUSBOOT_SETTLE"
)

// ApplyEnv overrides fields from environment variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvSession); v != "" {
		c.Session = v
	}
	if v := getenv(EnvLogFile); v != "" {
		c.LogFile = v
	}
	if v := getenv(EnvMultiplexer); v != "" {
		c.Multiplexer = v
	}
	if v := getenv(EnvInstallCommand); v != "" {
		c.InstallCommand = v
	}
	if v := getenv(EnvSettle); v != "" {
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvSettle, err)
		}
		c.SetSettle(d.Std())
	}
	return nil
}

// Validate reports the first problem that would make a run impossible.
func (c *Config) Validate() error {
	switch c.Multiplexer {
	case mux.KindScreen, mux.KindTmux:
	default:
		return fmt.Errorf("%w: multiplexer must be %q or %q, got %q", ErrInvalid, mux.KindScreen, mux.KindTmux, c.Multiplexer)
	}
	if c.Session == "" || strings.ContainsAny(c.Session, " \t\n.:") {
		return fmt.Errorf("%w: session name %q must be non-empty without whitespace, '.' or ':'", ErrInvalid, c.Session)
	}
	if c.LogFile == "" {
		return fmt.Errorf("%w: log_file is empty", ErrInvalid)
	}
	if c.InstallCommand == "" {
		return fmt.Errorf("%w: install_command is empty", ErrInvalid)
	}
	if c.FilePoll <= 0 || c.LinePoll <= 0 {
		return fmt.Errorf("%w: poll intervals must be positive", ErrInvalid)
	}
	if c.SettleDuration() < 0 {
		return fmt.Errorf("%w: settle must not be negative", ErrInvalid)
	}
	if len(c.Triggers) == 0 {
		return fmt.Errorf("%w: no triggers configured", ErrInvalid)
	}
	hasDone := false
	for i, t := range c.Triggers {
		if len(t.Match) == 0 {
			return fmt.Errorf("%w: trigger %d (%s) has no match phrases", ErrInvalid, i, t.Name)
		}
		if t.Respond == "" && !t.Done {
			return fmt.Errorf("%w: trigger %d (%s) neither responds nor finishes", ErrInvalid, i, t.Name)
		}
		hasDone = hasDone || t.Done
	}
	if !hasDone {
		return fmt.Errorf("%w: no trigger finishes the run", ErrInvalid)
	}
	return nil
}

// EncodeTOML renders c as TOML.
func (c *Config) EncodeTOML() ([]byte, error) {
	return toml.Marshal(c)
}

// EncodeYAML renders c as YAML.
func (c *Config) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(c)
}
