package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/benchhttp/errors"
	"github.com/kbukum/benchhttp/logger"
)

// EnvPrefix marks environment variables read as configuration.
const EnvPrefix = "BENCHHTTP_"

// FileSystem interface for file operations (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles finds the config and env files for serviceName. Explicit
// paths win; an explicit config file that does not exist is an error.
func ResolveFiles(serviceName string, lc LoaderConfig) (ResolvedFiles, error) {
	resolved := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}

	if resolved.ConfigFile != "" {
		if !lc.FileSystem.Exists(resolved.ConfigFile) {
			return resolved, errors.InvalidConfig("config file not found: " + resolved.ConfigFile)
		}
	} else {
		resolved.ConfigFile = firstExisting(lc.FileSystem, []string{
			fmt.Sprintf("./cmd/%s/config.yml", serviceName),
			"./config/config.yml",
			"./config.yml",
		})
	}

	if resolved.EnvFile == "" {
		candidates := []string{".env"}
		if resolved.ConfigFile != "" {
			candidates = append([]string{filepath.Join(filepath.Dir(resolved.ConfigFile), ".env")}, candidates...)
		}
		resolved.EnvFile = firstExisting(lc.FileSystem, candidates)
	}
	return resolved, nil
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig loads configuration for a service into the provided cfg struct.
// It reads the YAML file, applies BENCHHTTP_ environment overrides and
// unmarshals the result into cfg.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}

	files, err := ResolveFiles(serviceName, lc)
	if err != nil {
		return err
	}

	v := viper.New()

	// 1. Load YAML config first (base configuration)
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.InvalidConfig("failed to read config file " + files.ConfigFile).WithCause(err)
		}
	}

	// 2. Load .env into the process environment; variables already set win.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	// 3. Environment overrides
	bindEnv(v, os.Environ())

	// 4. Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return errors.InvalidConfig(fmt.Sprintf("failed to unmarshal config for %s", serviceName)).WithCause(err)
	}

	logger.Debug("config loaded", logger.Fields("config_file", files.ConfigFile, "env_file", files.EnvFile))
	return nil
}

// bindEnv sets every BENCHHTTP_ variable on v under each key it could mean.
// Keys already present in the file are matched exactly; unknown keys get
// every nesting variant.
func bindEnv(v *viper.Viper, environ []string) {
	known := make(map[string]bool)
	for _, k := range v.AllKeys() {
		known[k] = true
	}

	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		variants := envKeyVariants(strings.TrimPrefix(key, EnvPrefix))

		matched := false
		for _, variant := range variants {
			if known[variant] {
				v.Set(variant, value)
				matched = true
			}
		}
		if matched {
			continue
		}
		for _, variant := range variants {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an env key to the config keys it may address.
//
//	HTTP_TIMEOUT            -> http.timeout, http_timeout
//	BENCH_STOP_ON_ERROR     -> bench.stop_on_error, bench.stop.on_error, bench.stop.on.error, ...
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower}
	// prefix.rest for each split point, plus fully dotted.
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	variants = append(variants, strings.Join(parts, "."))
	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
