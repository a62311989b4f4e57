package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/godbus/dbus/v5"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     App     `mapstructure:"app" toml:"app"`
	Backend Backend `mapstructure:"backend" toml:"backend"`
	Bus     Bus     `mapstructure:"bus" toml:"bus"`
	Icons   Icons   `mapstructure:"icons" toml:"icons"`
	Logging Logging `mapstructure:"logging" toml:"logging"`

	File  string            `mapstructure:"-" toml:"-"`
	Flags map[string]string `mapstructure:"-" toml:"-"`
	Args  []string          `mapstructure:"-" toml:"-"`
}

type App struct {
	Width         int `mapstructure:"width" toml:"width"`
	BaseHeight    int `mapstructure:"base_height" toml:"base_height"`
	UnitHeight    int `mapstructure:"unit_height" toml:"unit_height"`
	RequestBuffer int `mapstructure:"request_buffer" toml:"request_buffer"`
}

type Backend struct {
	Command    string   `mapstructure:"command" toml:"command"`
	Args       []string `mapstructure:"args" toml:"args"`
	MaxResults int      `mapstructure:"max_results" toml:"max_results"`
}

// Builtin reports whether the in-process application backend was requested.
func (b Backend) Builtin() bool {
	return b.Command == BuiltinBackend
}

type Bus struct {
	Name      string `mapstructure:"name" toml:"name"`
	Path      string `mapstructure:"path" toml:"path"`
	Interface string `mapstructure:"interface" toml:"interface"`
	HostHide  bool   `mapstructure:"host_hide" toml:"host_hide"`
}

type Icons struct {
	Theme     string `mapstructure:"theme" toml:"theme"`
	CacheSize int    `mapstructure:"cache_size" toml:"cache_size"`
}

type Logging struct {
	File  string `mapstructure:"file" toml:"file"`
	Level string `mapstructure:"level" toml:"level"`
	Trace bool   `mapstructure:"trace" toml:"trace"`
}

const (
	BuiltinBackend = "builtin"
	envPrefix      = "POPUP_LAUNCHER_"
	envConfig      = envPrefix + "CONFIG"
	appDir         = "popup-launcher"
)

var defaults = map[string]interface{}{
	"app.width":           600,
	"app.base_height":     100,
	"app.unit_height":     48,
	"app.request_buffer":  32,
	"backend.command":     "pop-launcher",
	"backend.args":        []string{},
	"backend.max_results": 8,
	"bus.name":            "com.system76.IcedLauncher",
	"bus.path":            "/com/system76/IcedLauncher",
	"bus.interface":       "com.system76.IcedLauncher",
	"bus.host_hide":       true,
	"icons.theme":         "",
	"icons.cache_size":    256,
	"logging.file":        "",
	"logging.level":       "info",
	"logging.trace":       false,
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"backend":     "backend.command",
	"bus-name":    "bus.name",
	"width":       "app.width",
	"base-height": "app.base_height",
	"unit-height": "app.unit_height",
	"log-file":    "logging.file",
	"log-level":   "logging.level",
	"trace":       "logging.trace",
}

// RegisterFlags adds the launcher flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to the TOML config file (default $XDG_CONFIG_HOME/popup-launcher/config.toml)")
	fs.String("backend", "", "backend command, or \"builtin\" for the in-process application search")
	fs.String("bus-name", "", "well-known D-Bus name to own")
	fs.Int("width", 0, "surface width")
	fs.Int("base-height", 0, "surface height with no results")
	fs.Int("unit-height", 0, "height added per result row")
	fs.String("log-file", "", "path to the log file")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.Bool("trace", false, "enable verbose JSON trace logging")
}

// LoadArgs parses args with a fresh flag set and resolves the configuration.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("popup-launcher", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return Resolve(fs, args, environ)
}

// Resolve layers defaults, the config file, POPUP_LAUNCHER_* variables from
// environ and the flags that were set on fs, in increasing precedence.
func Resolve(fs *pflag.FlagSet, args []string, environ []string) (Config, error) {
	env := parseEnv(environ)
	v := viper.New()
	v.SetConfigType("toml")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	file, explicit := configPath(fs, env)
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
				return Config{}, fmt.Errorf("read config %s: %w", file, err)
			}
			file = ""
		}
	}

	overrides, err := envOverrides(env)
	if err != nil {
		return Config{}, err
	}
	if err := v.MergeConfigMap(overrides); err != nil {
		return Config{}, fmt.Errorf("apply environment: %w", err)
	}

	for name, key := range flagKeys {
		if flag := fs.Lookup(name); flag != nil && flag.Changed {
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = file
	cfg.Flags = map[string]string{}
	fs.VisitAll(func(f *pflag.Flag) {
		cfg.Flags[f.Name] = f.Value.String()
	})
	cfg.Args = append([]string(nil), args...)
	return cfg, nil
}

func configPath(fs *pflag.FlagSet, env map[string]string) (string, bool) {
	if flag := fs.Lookup("config"); flag != nil && flag.Value.String() != "" {
		return flag.Value.String(), true
	}
	if path := env[envConfig]; path != "" {
		return path, true
	}
	dir := env["XDG_CONFIG_HOME"]
	if dir == "" {
		home := env["HOME"]
		if home == "" {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appDir, "config.toml"), false
}

// envOverrides turns POPUP_LAUNCHER_<SECTION>_<KEY> variables into a nested
// map keyed like the config file.
func envOverrides(env map[string]string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for key, def := range defaults {
		name := envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		raw, ok := env[name]
		if !ok {
			continue
		}
		value, err := convert(raw, def)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		section, field, _ := strings.Cut(key, ".")
		sub, ok := out[section].(map[string]interface{})
		if !ok {
			sub = map[string]interface{}{}
			out[section] = sub
		}
		sub[field] = value
	}
	return out, nil
}

func convert(raw string, like interface{}) (interface{}, error) {
	switch like.(type) {
	case int:
		return strconv.Atoi(strings.TrimSpace(raw))
	case bool:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case []string:
		return strings.Fields(raw), nil
	default:
		return raw, nil
	}
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate rejects configurations the launcher cannot run with.
func Validate(cfg Config) error {
	positive := []struct {
		name  string
		value int
	}{
		{"app.width", cfg.App.Width},
		{"app.base_height", cfg.App.BaseHeight},
		{"app.unit_height", cfg.App.UnitHeight},
		{"app.request_buffer", cfg.App.RequestBuffer},
		{"backend.max_results", cfg.Backend.MaxResults},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", p.name, p.value)
		}
	}
	if cfg.Icons.CacheSize < 0 {
		return fmt.Errorf("icons.cache_size must be >= 0 (got %d)", cfg.Icons.CacheSize)
	}
	if strings.TrimSpace(cfg.Backend.Command) == "" {
		return errors.New("backend.command must not be empty")
	}
	if strings.TrimSpace(cfg.Bus.Name) == "" {
		return errors.New("bus.name must not be empty")
	}
	if strings.TrimSpace(cfg.Bus.Interface) == "" {
		return errors.New("bus.interface must not be empty")
	}
	if !dbus.ObjectPath(cfg.Bus.Path).IsValid() {
		return fmt.Errorf("bus.path %q is not a valid object path", cfg.Bus.Path)
	}
	return nil
}

// TOML renders the effective configuration in config-file form.
func (c Config) TOML() ([]byte, error) {
	return toml.Marshal(c)
}
