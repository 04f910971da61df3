package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// configNames are the config file names searched for, in order.
var configNames = []string{"leapq.yaml", "leapq.yml"}

// Result is a loaded configuration and the file it came from.
type Result struct {
	Config   *Config
	FileUsed string
}

// configExistsIn returns the config file in dir, or "".
func configExistsIn(dir string) string {
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigUpward searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configExistsIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// Load loads configuration from defaults, the config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Result, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"dialect":              DefaultDialect,
		"state_path":           DefaultStateFile,
		"output":               DefaultOutput,
		"verbose":              false,
		"precision":            DefaultPrecision,
		"history":              true,
		"backend.samples":      DefaultSamples,
		"backend.seed":         0,
		"serve.addr":           DefaultServeAddr,
		"serve.shutdown_grace": "5s",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file: explicit path, else search upward from the CWD
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = findConfigUpward(cwd)
		}
	}
	baseDir, _ := os.Getwd()
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Environment variables (LEAPQ_ prefix)
	// Transform: LEAPQ_STATE_PATH -> state_path, LEAPQ_BACKEND__SEED -> backend.seed
	if err := k.Load(env.Provider("LEAPQ_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "LEAPQ_"))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (only those explicitly set)
	var flagStatePath string
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "state":
				flagStatePath = f.Value.String()
				return "state_path", posflag.FlagVal(flags, f)
			case "samples", "seed":
				return "backend." + key, posflag.FlagVal(flags, f)
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				bindingsHook,
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           &cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Flag paths are relative to the CWD; file and default paths to the config file.
	if flagStatePath != "" {
		if abs, err := filepath.Abs(flagStatePath); err == nil && flagStatePath != ":memory:" {
			cfg.StatePath = abs
		}
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, baseDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Result{Config: &cfg, FileUsed: cfgFile}, nil
}

var bindingsType = reflect.TypeOf(map[string]float64(nil))

// bindingsHook decodes "name=value,name=value" strings, as set through
// LEAPQ_BINDINGS, into a bindings map.
func bindingsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != bindingsType {
		return data, nil
	}
	out := make(map[string]float64)
	for _, pair := range strings.Split(data.(string), ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q (want name=value)", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid binding %q: %w", pair, err)
		}
		out[name] = v
	}
	return out, nil
}

type (
	configKey struct{}
	loggerKey struct{}
)

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config stored in ctx, or defaults.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		Dialect:   DefaultDialect,
		StatePath: DefaultStateFile,
		Output:    DefaultOutput,
		Precision: DefaultPrecision,
		History:   true,
		Backend:   BackendConfig{Samples: DefaultSamples},
		Serve:     ServeConfig{Addr: DefaultServeAddr},
	}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
