package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazuki-dev/picshift/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		BotToken:        "",
		AdminID:         0,
		StatsFile:       "bot_statistics.json",
		TempDir:         "", // empty means os.TempDir()/picshift
		APIEnabled:      true,
		APIListenAddr:   "127.0.0.1:8742",
		MaxFileSizeMB:   20,
		MaxBatchSize:    50,
		SessionTTLSec:   3600,
		CleanupAgeSec:   7200,
		CleanupEverySec: 600,
	}
}

// LoadConfig reads the YAML config at path, creating it with defaults when
// it does not exist. The bot token may still be supplied by flag or env.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 20
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 50
	}
	if cfg.SessionTTLSec <= 0 {
		cfg.SessionTTLSec = 3600
	}

	CurrentConfig = cfg
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func GetCurrentConfig() *types.AppConfig {
	return &CurrentConfig
}
