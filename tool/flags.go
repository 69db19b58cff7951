package tool

import (
	"flag"

	"github.com/hazuki-dev/picshift/types"
)

// SetFlags parses CLI flags and returns the override config.
func SetFlags() types.FlagConfig {
	var cfg types.FlagConfig
	flag.StringVar(&cfg.Log, "log", "", "log mode: dev|prod|none")
	flag.StringVar(&cfg.UseConfigPath, "useConfigPath", "", "override config file path")
	flag.StringVar(&cfg.UseToken, "useToken", "", "override the bot token (also read from BOT_TOKEN env)")
	flag.StringVar(&cfg.UseTempDir, "useTempDir", "", "override the staging directory for downloaded and converted files")
	flag.StringVar(&cfg.UseStatsFile, "useStatsFile", "", "override the statistics file path")
	flag.StringVar(&cfg.UseAPIAddr, "useApiAddr", "", "override the local admin API listen address")
	flag.BoolVar(&cfg.NoAPI, "noApi", false, "disable the local admin API server")
	flag.Parse()
	return cfg
}
