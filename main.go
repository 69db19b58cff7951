package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hazuki-dev/picshift/api"
	"github.com/hazuki-dev/picshift/api/eventhub"
	"github.com/hazuki-dev/picshift/bot"
	"github.com/hazuki-dev/picshift/cleanup"
	"github.com/hazuki-dev/picshift/convert"
	"github.com/hazuki-dev/picshift/imaging"
	"github.com/hazuki-dev/picshift/session"
	"github.com/hazuki-dev/picshift/stats"
	"github.com/hazuki-dev/picshift/tool"
)

func main() {
	flags := tool.SetFlags()
	appCfg, err := tool.LoadConfig(flags.UseConfigPath)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}

	if flags.UseToken != "" {
		appCfg.BotToken = flags.UseToken
	}
	if appCfg.BotToken == "" {
		appCfg.BotToken = os.Getenv("BOT_TOKEN")
	}
	if appCfg.BotToken == "" {
		tool.DefaultLogger.Fatalf("No bot token: set bot_token in %s, -useToken, or BOT_TOKEN", tool.ConfigPath)
	}
	if flags.UseTempDir != "" {
		appCfg.TempDir = flags.UseTempDir
	}
	if flags.UseStatsFile != "" {
		appCfg.StatsFile = flags.UseStatsFile
	}
	if flags.UseAPIAddr != "" {
		appCfg.APIListenAddr = flags.UseAPIAddr
	}
	if flags.NoAPI {
		appCfg.APIEnabled = false
	}

	tool.InitLogger()
	switch strings.ToLower(flags.Log) {
	case "", "dev":
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	case "prod":
		tool.DefaultLogger.SetLevel(log.InfoLevel)
	case "none":
		tool.DefaultLogger.SetLevel(log.FatalLevel)
	default:
		tool.DefaultLogger.Warnf("Unknown log mode %q, using debug level", flags.Log)
		tool.DefaultLogger.SetLevel(log.DebugLevel)
	}

	tempDir, err := tool.InitTempRoot(appCfg.TempDir)
	if err != nil {
		tool.DefaultLogger.Fatalf("%v", err)
	}
	tool.DefaultLogger.Infof("Staging directory: %s", tempDir)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	aggregator := stats.New(appCfg.StatsFile)
	store := session.NewStore(time.Duration(appCfg.SessionTTLSec) * time.Second)
	pipeline := convert.NewPipeline(imaging.NewStdCodec(), aggregator)

	var hub *eventhub.Hub
	if appCfg.APIEnabled {
		hub = eventhub.New()
		apiServer := api.NewServer(appCfg.APIListenAddr, aggregator, hub)
		go func() {
			if err := apiServer.Start(); err != nil {
				tool.DefaultLogger.Errorf("Admin API server failed: %v", err)
			}
		}()
		defer apiServer.Stop()
	}

	janitor := cleanup.NewRunner(cleanup.Config{
		Dir:      tempDir,
		MaxAge:   time.Duration(appCfg.CleanupAgeSec) * time.Second,
		Interval: time.Duration(appCfg.CleanupEverySec) * time.Second,
	})
	go janitor.Run(ctx)

	b, err := bot.New(&appCfg, store, pipeline, aggregator, hub)
	if err != nil {
		tool.DefaultLogger.Fatalf("Bot startup failed: %v", err)
	}
	b.Run(ctx)
}
