package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dkoosis/loopcheck/pkg/loopback"
)

// Defaults.
const (
	DefaultDevice = "Dev1"
	DefaultFormat = "auto"
	DefaultTheme  = "default"
)

// CliFlags holds the values of command-line flags, with *Set markers for
// flags the user passed explicitly.
type CliFlags struct {
	Device  string
	Format  string
	Theme   string
	Settle  time.Duration
	NoColor bool
	CI      bool

	DeviceSet  bool
	FormatSet  bool
	ThemeSet   bool
	SettleSet  bool
	NoColorSet bool
	CISet      bool
}

// FileConfig is the shape of .loopcheck.yaml.
type FileConfig struct {
	Device  string   `yaml:"device,omitempty"`
	Format  string   `yaml:"format,omitempty"`
	Theme   string   `yaml:"theme,omitempty"`
	Settle  string   `yaml:"settle,omitempty"` // duration string, e.g. "1ms"
	NoColor bool     `yaml:"no_color"`
	CI      bool     `yaml:"ci"`
	Pairs   [][2]int `yaml:"pairs,omitempty"` // [source, dest] overrides
}

// Resolved is the final configuration after applying all priority rules.
type Resolved struct {
	Device  string
	Format  string
	Theme   string
	Settle  time.Duration
	NoColor bool
	CI      bool
	Pairs   []loopback.PairSpec // nil means the default pairs

	// Resolution metadata for --debug style introspection.
	DeviceSource string // "cli", "env", "file", "default"
}

// Resolve loads the config file (if any) and merges it with environment
// variables and CLI flags.
func Resolve(flags CliFlags) (*Resolved, error) {
	file, err := loadFile(configPath())
	if err != nil {
		return nil, err
	}

	r := &Resolved{
		Device:       DefaultDevice,
		Format:       DefaultFormat,
		Theme:        DefaultTheme,
		Settle:       loopback.DefaultSettle,
		DeviceSource: "default",
	}

	// File layer.
	if file != nil {
		if file.Device != "" {
			r.Device, r.DeviceSource = file.Device, "file"
		}
		if file.Format != "" {
			r.Format = file.Format
		}
		if file.Theme != "" {
			r.Theme = file.Theme
		}
		if file.Settle != "" {
			d, perr := time.ParseDuration(file.Settle)
			if perr != nil {
				return nil, fmt.Errorf("config: invalid settle %q: %w", file.Settle, perr)
			}
			r.Settle = d
		}
		r.NoColor = file.NoColor
		r.CI = file.CI
		for _, p := range file.Pairs {
			r.Pairs = append(r.Pairs, loopback.PairSpec{Source: p[0], Dest: p[1]})
		}
	}

	// Environment layer.
	if dev := os.Getenv("LOOPCHECK_DEVICE"); dev != "" {
		r.Device, r.DeviceSource = dev, "env"
	}
	if v := getEnvBool("LOOPCHECK_NO_COLOR", "NO_COLOR"); v != nil {
		r.NoColor = *v
	}
	if v := getEnvBool("LOOPCHECK_CI", "CI"); v != nil {
		r.CI = *v
	}

	// CLI layer.
	if flags.DeviceSet {
		r.Device, r.DeviceSource = flags.Device, "cli"
	}
	if flags.FormatSet {
		r.Format = flags.Format
	}
	if flags.ThemeSet {
		r.Theme = flags.Theme
	}
	if flags.SettleSet {
		r.Settle = flags.Settle
	}
	if flags.NoColorSet {
		r.NoColor = flags.NoColor
	}
	if flags.CISet {
		r.CI = flags.CI
	}

	// CI mode implies monochrome output.
	if r.CI {
		r.NoColor = true
	}

	if err := validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

func validate(r *Resolved) error {
	switch r.Format {
	case "auto", "terminal", "plain", "json":
	default:
		return fmt.Errorf("config: unknown format %q (expected auto, terminal, plain, json)", r.Format)
	}
	if r.Settle < 0 {
		return fmt.Errorf("config: settle must not be negative, got %s", r.Settle)
	}
	for _, p := range r.Pairs {
		if p.Source < 0 || p.Source > 3 || p.Dest < 0 || p.Dest > 3 {
			return fmt.Errorf("config: pair %s references a port outside 0-3", p)
		}
		if p.Source == p.Dest {
			return fmt.Errorf("config: pair %s loops a port onto itself", p)
		}
	}
	return nil
}

// loadFile reads and parses the YAML config. A missing file is not an
// error; a malformed one is.
func loadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &fc, nil
}

// configPath finds .loopcheck.yaml: local directory first, then the XDG
// user config dir.
func configPath() string {
	local := ".loopcheck.yaml"
	if _, err := os.Stat(local); err == nil {
		return local
	}
	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		return ""
	}
	xdg := filepath.Join(configHome, "loopcheck", "loopcheck.yaml")
	if _, err := os.Stat(xdg); err == nil {
		return xdg
	}
	return ""
}

// getEnvBool reads a boolean from environment variables, trying keys in
// order. Returns nil if none are set.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
			// NO_COLOR convention: any non-empty value disables color.
			t := true
			return &t
		}
	}
	return nil
}
