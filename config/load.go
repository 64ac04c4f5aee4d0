package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/cruxgen/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// sources lists the config files merged into viperInstance, lowest precedence first.
var sources []string

// explicitFile replaces file discovery when set with UseFile.
var explicitFile string

// UseFile makes Load read only path instead of searching for cruxgen.toml files.
func UseFile(path string) {
	explicitFile = path
	Reset()
}

// Load reads the cruxgen configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	if explicitFile != "" {
		if _, err := os.Stat(explicitFile); err != nil {
			return nil, errors.WithHint(
				errors.NewNotFoundError("config file %s", explicitFile),
				"create one with 'cruxgen config init'",
			)
		}
	}

	config, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance so CLI flags can be bound to it
func GetViper() *viper.Viper {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path on top of the defaults
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("config file %s", configPath)
		}
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	sources = nil
}

// Sources returns the config files that were merged, lowest precedence first.
func Sources() []string {
	initViper()
	return append([]string(nil), sources...)
}

// Settings returns every effective setting flattened to dotted keys, sorted.
func Settings() [][2]string {
	v := initViper()
	keys := v.AllKeys()
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, v.GetString(k)})
	}
	return out
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// CRUXGEN_CODEGEN_POINTER_WIDTH overrides codegen.pointer_width
	v.SetEnvPrefix("CRUXGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// UserDir returns ~/.cruxgen, or "" when there is no home directory.
func UserDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cruxgen")
}

// findProjectConfig walks up from the working directory looking for cruxgen.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges user then project config into the config layer,
// which viper ranks below env vars and flags.
func mergeConfigFiles(v *viper.Viper) {
	var paths []string
	switch {
	case explicitFile != "":
		paths = append(paths, explicitFile)
	default:
		if dir := UserDir(); dir != "" {
			paths = append(paths, filepath.Join(dir, FileName))
		}
		if project := findProjectConfig(); project != "" {
			paths = append(paths, project)
		}
	}

	sources = nil
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		file := viper.New()
		file.SetConfigFile(path)
		file.SetConfigType("toml")
		if err := file.ReadInConfig(); err != nil {
			continue
		}
		if err := v.MergeConfigMap(file.AllSettings()); err != nil {
			continue
		}
		sources = append(sources, path)
	}
}
