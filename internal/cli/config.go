package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/pkl/internal/monorepo"
	"github.com/mesh-intelligence/pkl/internal/paths"
	"github.com/mesh-intelligence/pkl/internal/pm"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "PKL"

	cfgKeyPackageManager = "package_manager"
	cfgKeyMonorepoTool   = "monorepo_tool"
	cfgKeyHistory        = "history"
	cfgKeyLogLevel       = "log_level"

	defaultLogLevel = "warn"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	PackageManager string `yaml:"package_manager"`
	MonorepoTool   string `yaml:"monorepo_tool"`
	History        bool   `yaml:"history"`
	LogLevel       string `yaml:"log_level"`
}

func defaultConfig() configFile {
	return configFile{
		PackageManager: pm.NameNPM,
		MonorepoTool:   monorepo.DefaultCommand,
		History:        true,
		LogLevel:       defaultLogLevel,
	}
}

// loadConfig reads config.yaml from the pkl home using Viper, writing a
// default file on first run. PKL_* environment variables override the
// file. A missing config.yaml is not an error.
func loadConfig(home string) (*viper.Viper, error) {
	if err := os.MkdirAll(home, 0o755); err != nil {
		return nil, fmt.Errorf("create pkl home: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigPath(home)); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	def := defaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyPackageManager, def.PackageManager)
	v.SetDefault(cfgKeyMonorepoTool, def.MonorepoTool)
	v.SetDefault(cfgKeyHistory, def.History)
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(home)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. If it already exists, the function returns nil (idempotent).
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfig()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
