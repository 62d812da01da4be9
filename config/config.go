// Package config loads and saves go-fcb settings from ~/.config/go-fcb.
//
// config.yaml is preferred when present, otherwise config.json is read.
// Missing files yield DefaultConfig. Save always writes JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"go-fcb/footswitch"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// ModeType selects how a mode's switches behave.
type ModeType string

const (
	// ModeStomp toggles one host CC per numbered switch.
	ModeStomp ModeType = "stomp"
	// ModeSession selects patches on 1-4, taps tempo on 5 and toggles
	// stomps on 6-8.
	ModeSession ModeType = "session"
	// ModeMacro runs binding tokens.
	ModeMacro ModeType = "macro"
)

// PortConfig names a MIDI port (matched by substring) and its channel.
type PortConfig struct {
	Port    string `json:"port" yaml:"port"`
	Channel uint8  `json:"channel" yaml:"channel"`
}

// GestureConfig sets the disambiguation windows.
type GestureConfig struct {
	LongPressMs   int `json:"longPressMs" yaml:"long_press_ms"`
	DoublePressMs int `json:"doublePressMs" yaml:"double_press_ms"`
}

// LEDConfig sets blink timing and where mode indicators live.
type LEDConfig struct {
	FastBlinkMs   int   `json:"fastBlinkMs" yaml:"fast_blink_ms"`
	SlowBlinkMs   int   `json:"slowBlinkMs" yaml:"slow_blink_ms"`
	ModeAddresses []int `json:"modeAddresses,omitempty" yaml:"mode_addresses"`
}

// ModeConfig defines one board mode.
type ModeConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Type        ModeType `json:"type" yaml:"type"`
	BaseCC      uint8    `json:"baseCC,omitempty" yaml:"base_cc"`
	BaseProgram uint8    `json:"baseProgram,omitempty" yaml:"base_program"`
	MetronomeCC uint8    `json:"metronomeCC,omitempty" yaml:"metronome_cc"`
	TempoCC     uint8    `json:"tempoCC,omitempty" yaml:"tempo_cc"`
	Bindings    []string `json:"bindings,omitempty" yaml:"bindings"`
}

// Config is the main configuration structure
type Config struct {
	Controller PortConfig    `json:"controller" yaml:"controller"`
	Host       PortConfig    `json:"host" yaml:"host"`
	Gestures   GestureConfig `json:"gestures" yaml:"gestures"`
	LEDs       LEDConfig     `json:"leds" yaml:"leds"`
	Modes      []ModeConfig  `json:"modes,omitempty" yaml:"modes"`
	Debug      bool          `json:"debug,omitempty" yaml:"debug"`
}

// numLEDs mirrors the controller's address space (0-22).
const numLEDs = 23

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Controller: PortConfig{Port: "FCB1010"},
		Host:       PortConfig{Port: "IAC Driver"},
		Gestures: GestureConfig{
			LongPressMs:   800,
			DoublePressMs: 500,
		},
		LEDs: LEDConfig{
			FastBlinkMs:   300,
			SlowBlinkMs:   800,
			ModeAddresses: []int{20, 21, 22},
		},
		Modes: []ModeConfig{
			{Name: "Stomp", Type: ModeStomp, BaseCC: 20},
			{Name: "Session", Type: ModeSession, BaseCC: 30, BaseProgram: 0, MetronomeCC: 40, TempoCC: 41},
			{
				Name:   "Macro",
				Type:   ModeMacro,
				BaseCC: 50,
				Bindings: []string{
					"Drive #s1pt",
					"Delay Mix #s2ht0-64 #s2ps32",
					"Boost #s3ds127 #s3us0",
					"Freeze #s42t",
				},
			},
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-fcb"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads config.yaml or config.json from ConfigDir, or returns
// defaults if neither exists.
func Load() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return DefaultConfig(), nil
	}
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFile reads path, choosing YAML or JSON by extension. Fields absent
// from the file keep their defaults. The result is validated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Modes = nil
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if cfg.Modes == nil {
		cfg.Modes = DefaultConfig().Modes
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets the ports and debug flag be set without editing
// the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GO_FCB_CONTROLLER_PORT"); v != "" {
		cfg.Controller.Port = v
	}
	if v := os.Getenv("GO_FCB_HOST_PORT"); v != "" {
		cfg.Host.Port = v
	}
	if v := os.Getenv("GO_FCB_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path as YAML or JSON by extension.
func (c *Config) SaveFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks windows, channels, LED addresses and modes. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	// The controller sends its switches on channel 1 (0 on the wire) and
	// listens for LED commands there too.
	if c.Controller.Channel != 0 {
		errs = append(errs, "controller.channel must be 0")
	}
	if c.Host.Channel > 15 {
		errs = append(errs, "host.channel must be 0-15")
	}
	if c.Gestures.LongPressMs <= 0 {
		errs = append(errs, "gestures.long_press_ms must be positive")
	}
	if c.Gestures.DoublePressMs <= 0 {
		errs = append(errs, "gestures.double_press_ms must be positive")
	}
	if c.LEDs.FastBlinkMs <= 0 || c.LEDs.SlowBlinkMs <= 0 {
		errs = append(errs, "leds blink periods must be positive")
	}

	seen := make(map[int]bool)
	for _, addr := range c.LEDs.ModeAddresses {
		if addr < 0 || addr >= numLEDs {
			errs = append(errs, fmt.Sprintf("leds.mode_addresses: %d out of range", addr))
		}
		if seen[addr] {
			errs = append(errs, fmt.Sprintf("leds.mode_addresses: %d repeated", addr))
		}
		seen[addr] = true
	}
	for _, addr := range c.LEDs.ModeAddresses {
		if addr >= 0 && addr <= 10 {
			errs = append(errs, fmt.Sprintf("leds.mode_addresses: %d belongs to a switch", addr))
		}
	}

	names := make(map[string]bool)
	for i, m := range c.Modes {
		if m.Name == "" {
			errs = append(errs, fmt.Sprintf("modes[%d]: name is required", i))
		} else if names[m.Name] {
			errs = append(errs, fmt.Sprintf("modes[%d]: duplicate name %q", i, m.Name))
		}
		names[m.Name] = true

		switch m.Type {
		case ModeStomp:
			if int(m.BaseCC)+9 > 127 {
				errs = append(errs, fmt.Sprintf("modes[%d]: base_cc %d leaves no room for 10 switches", i, m.BaseCC))
			}
		case ModeSession:
			if int(m.BaseProgram)+3 > 127 {
				errs = append(errs, fmt.Sprintf("modes[%d]: base_program %d leaves no room for 4 patches", i, m.BaseProgram))
			}
			if int(m.BaseCC)+2 > 127 {
				errs = append(errs, fmt.Sprintf("modes[%d]: base_cc %d leaves no room for 3 stomps", i, m.BaseCC))
			}
			if m.MetronomeCC > 127 || m.TempoCC > 127 {
				errs = append(errs, fmt.Sprintf("modes[%d]: metronome_cc and tempo_cc must be 0-127", i))
			}
		case ModeMacro:
			if m.BaseCC > 127 {
				errs = append(errs, fmt.Sprintf("modes[%d]: base_cc must be 0-127", i))
			}
			if len(m.Bindings) == 0 {
				errs = append(errs, fmt.Sprintf("modes[%d]: macro mode needs bindings", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("modes[%d]: unknown type %q", i, m.Type))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// GestureOptions returns the disambiguation windows.
func (c *Config) GestureOptions() footswitch.Options {
	return footswitch.Options{
		LongPress:   time.Duration(c.Gestures.LongPressMs) * time.Millisecond,
		DoublePress: time.Duration(c.Gestures.DoublePressMs) * time.Millisecond,
	}
}

// BlinkPeriods returns the fast and slow blink periods.
func (c *Config) BlinkPeriods() (fast, slow time.Duration) {
	return time.Duration(c.LEDs.FastBlinkMs) * time.Millisecond,
		time.Duration(c.LEDs.SlowBlinkMs) * time.Millisecond
}

// FindMode returns the mode named name, or nil.
func (c *Config) FindMode(name string) *ModeConfig {
	for i := range c.Modes {
		if c.Modes[i].Name == name {
			return &c.Modes[i]
		}
	}
	return nil
}
