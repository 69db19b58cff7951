package types

// AppConfig is the persisted bot configuration, loaded from config.yaml.
type AppConfig struct {
	BotToken        string `yaml:"bot_token"`
	AdminID         int64  `yaml:"admin_id"`
	StatsFile       string `yaml:"stats_file"`
	TempDir         string `yaml:"temp_dir"`
	APIEnabled      bool   `yaml:"api_enabled"`
	APIListenAddr   string `yaml:"api_listen_addr"`
	MaxFileSizeMB   int64  `yaml:"max_file_size_mb"`
	MaxBatchSize    int    `yaml:"max_batch_size"`
	SessionTTLSec   int    `yaml:"session_ttl_seconds"`
	CleanupAgeSec   int    `yaml:"cleanup_age_seconds"`
	CleanupEverySec int    `yaml:"cleanup_interval_seconds"`
}

// MaxFileSizeBytes returns the staged-file size cap in bytes.
func (c *AppConfig) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB << 20
}

// FlagConfig holds runtime overrides from CLI flags.
type FlagConfig struct {
	Log           string
	UseConfigPath string
	UseToken      string
	UseTempDir    string
	UseStatsFile  string
	UseAPIAddr    string
	NoAPI         bool
}
