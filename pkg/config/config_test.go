package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nexusboot/pkg/install"
	"nexusboot/pkg/logwatch"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Session != "nexus" {
		t.Errorf("Session = %q, want nexus", cfg.Session)
	}
	if cfg.LogFile != "/tmp/nexus_screen.log" {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
	if cfg.Multiplexer != "screen" {
		t.Errorf("Multiplexer = %q, want screen", cfg.Multiplexer)
	}
	if cfg.InstallCommand != install.DefaultCommand {
		t.Errorf("InstallCommand = %q", cfg.InstallCommand)
	}
	if cfg.FilePoll.Std() != 500*time.Millisecond || cfg.LinePoll.Std() != 200*time.Millisecond {
		t.Errorf("poll intervals = %v / %v", cfg.FilePoll.Std(), cfg.LinePoll.Std())
	}
	if cfg.SettleDuration() != 3*time.Second {
		t.Errorf("Settle = %v, want 3s", cfg.SettleDuration())
	}
	if !cfg.NotifyEnabled() {
		t.Error("notify should default to on")
	}

	rules := cfg.Rules()
	if len(rules) != 2 || rules[0].Respond != "y" || !rules[1].Done {
		t.Errorf("default rules = %+v", rules)
	}
	if !rules[0].Matches(logwatch.PhraseExistingAccount) || !rules[1].Matches(logwatch.PhraseTaskFetch) {
		t.Error("default rules do not match the installer phrases")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad(t *testing.T) {
	t.Run("toml overrides selected fields", func(t *testing.T) {
		p := writeFile(t, "config.toml", `
multiplexer = "tmux"
session = "prover"
settle = "1500ms"
notify = false

[[triggers]]
name = "done"
match = ["ready"]
done = true
`)
		cfg, err := Load(p)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Multiplexer != "tmux" || cfg.Session != "prover" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.SettleDuration() != 1500*time.Millisecond {
			t.Errorf("Settle = %v", cfg.SettleDuration())
		}
		if cfg.NotifyEnabled() {
			t.Error("notify should be off")
		}
		if cfg.LogFile != DefaultLogFile {
			t.Errorf("unset LogFile should keep default, got %q", cfg.LogFile)
		}
		if len(cfg.Triggers) != 1 || cfg.Triggers[0].Name != "done" {
			t.Errorf("Triggers = %+v", cfg.Triggers)
		}
	})

	t.Run("yaml overrides selected fields", func(t *testing.T) {
		p := writeFile(t, "config.yaml", `
log_file: /var/tmp/nexus.log
line_poll: 50ms
install_command: "sh /opt/nexus/install.sh"
`)
		cfg, err := Load(p)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.LogFile != "/var/tmp/nexus.log" || cfg.InstallCommand != "sh /opt/nexus/install.sh" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.LinePoll.Std() != 50*time.Millisecond {
			t.Errorf("LinePoll = %v", cfg.LinePoll.Std())
		}
		if len(cfg.Triggers) != 2 {
			t.Errorf("default triggers should be kept, got %d", len(cfg.Triggers))
		}
	})

	t.Run("explicit zero settle", func(t *testing.T) {
		for name, content := range map[string]string{
			"config.toml": "settle = \"0s\"\n",
			"config.yaml": "settle: 0s\n",
		} {
			cfg, err := Load(writeFile(t, name, content))
			if err != nil {
				t.Fatalf("Load(%s): %v", name, err)
			}
			if cfg.SettleDuration() != 0 {
				t.Errorf("%s: Settle = %v, want 0", name, cfg.SettleDuration())
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s: zero settle should validate: %v", name, err)
			}
		}
	})

	t.Run("absent settle keeps default", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "config.toml", "session = \"x\"\n"))
		if err != nil {
			t.Fatal(err)
		}
		if cfg.SettleDuration() != DefaultSettle {
			t.Errorf("Settle = %v, want %v", cfg.SettleDuration(), DefaultSettle)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		p := writeFile(t, "config.yaml", "settle: soon\n")
		if _, err := Load(p); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		p := writeFile(t, "config.json", "{}")
		if _, err := Load(p); !errors.Is(err, ErrInvalid) {
			t.Fatalf("err = %v, want ErrInvalid", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	if got := Discover(dir); got != "" {
		t.Errorf("Discover(empty) = %q", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Discover(dir); filepath.Base(got) != "config.yaml" {
		t.Errorf("Discover = %q, want config.yaml", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if got := Discover(dir); filepath.Base(got) != "config.toml" {
		t.Errorf("Discover = %q, want config.toml to take precedence", got)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvSession:        "other",
		EnvLogFile:        "/tmp/other.log",
		EnvMultiplexer:    "tmux",
		EnvInstallCommand: "true",
		EnvSettle:         "0s",
	}
	cfg := Defaults()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Session != "other" || cfg.LogFile != "/tmp/other.log" || cfg.Multiplexer != "tmux" || cfg.InstallCommand != "true" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SettleDuration() != 0 {
		t.Errorf("Settle = %v, want 0", cfg.SettleDuration())
	}

	bad := Defaults()
	err := bad.ApplyEnv(func(k string) string {
		if k == EnvSettle {
			return "three"
		}
		return ""
	})
	if err == nil || !strings.Contains(err.Error(), EnvSettle) {
		t.Errorf("err = %v, want mention of %s", err, EnvSettle)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown multiplexer", func(c *Config) { c.Multiplexer = "zellij" }},
		{"empty session", func(c *Config) { c.Session = "" }},
		{"session with dot", func(c *Config) { c.Session = "a.b" }},
		{"empty log file", func(c *Config) { c.LogFile = "" }},
		{"empty install command", func(c *Config) { c.InstallCommand = "" }},
		{"zero line poll", func(c *Config) { c.LinePoll = 0 }},
		{"negative settle", func(c *Config) { c.SetSettle(-time.Second) }},
		{"no triggers", func(c *Config) { c.Triggers = nil }},
		{"trigger without phrases", func(c *Config) { c.Triggers[0].Match = nil }},
		{"trigger without action", func(c *Config) { c.Triggers[0].Respond = "" }},
		{"nothing finishes", func(c *Config) { c.Triggers = c.Triggers[:1] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	cfg := Defaults()

	tomlOut, err := cfg.EncodeTOML()
	if err != nil {
		t.Fatalf("EncodeTOML: %v", err)
	}
	if !strings.Contains(string(tomlOut), `settle = '3s'`) && !strings.Contains(string(tomlOut), `settle = "3s"`) {
		t.Errorf("TOML missing settle:\n%s", tomlOut)
	}

	yamlOut, err := cfg.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	if !strings.Contains(string(yamlOut), "session: nexus") {
		t.Errorf("YAML missing session:\n%s", yamlOut)
	}

	// Both renderings load back to the same effective values.
	for name, data := range map[string][]byte{"config.toml": tomlOut, "config.yaml": yamlOut} {
		p := writeFile(t, name, string(data))
		back, err := Load(p)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if back.SettleDuration() != cfg.SettleDuration() || back.Session != cfg.Session || len(back.Triggers) != len(cfg.Triggers) {
			t.Errorf("%s did not load back: %+v", name, back)
		}
	}
}
