package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/kladia/internal/paths"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "KLADIA"

	cfgKeyBackend   = "backend"
	cfgKeyLogLevel  = "log_level"
	cfgKeyLogFormat = "log_format"
)

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	cfgKeyBackend:   "backend",
	cfgKeyLogLevel:  "log-level",
	cfgKeyLogFormat: "log-format",
}

func resolveEnvFile(flag string) (string, error) {
	path, err := paths.ResolveEnvFile(flag)
	if err != nil {
		return "", sysError(fmt.Errorf("resolve env file: %w", err))
	}
	return path, nil
}

// loadEnvFile exports the variables in path into the process environment.
// Variables already set win. A missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// loadConfig resolves the configuration directory and reads config.yaml from
// it. Precedence, highest first: flags, KLADIA_* environment, config.yaml,
// defaults. A missing config.yaml is not an error.
func loadConfig(flagDir string, cmd *cobra.Command) (string, types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flagDir)
	if err != nil {
		return "", types.Config{}, sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	v := viper.New()
	defaults := types.DefaultConfig()
	v.SetDefault(cfgKeyBackend, defaults.Backend)
	v.SetDefault(cfgKeyLogLevel, defaults.LogLevel)
	v.SetDefault(cfgKeyLogFormat, defaults.LogFormat)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return "", types.Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return "", types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		Backend:   v.GetString(cfgKeyBackend),
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return "", types.Config{}, fmt.Errorf("config: %w", err)
	}
	return configDir, cfg, nil
}
