package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mahyarmirrashed/afd/internal/config"
	"github.com/mahyarmirrashed/afd/internal/daemon"
	"github.com/mahyarmirrashed/afd/internal/utils"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

// Set at build time: go build -ldflags "-X main.version=1.2.3"
var version = "dev"

func init() {
	// Configure logger to include timestamp and caller (file:line)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	})
}

func main() {
	app := &cli.Command{
		Name:    "afd",
		Usage:   "Move aged files from watched folders into a holding area",
		Version: version,
		Flags:   flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				log.Fatalf("Failed to load config: %v", err)
			}

			// Set log level from config
			switch cfg.LogLevel {
			case "debug":
				log.SetLevel(log.DebugLevel)
				log.SetReportCaller(true)
			case "warn":
				log.SetLevel(log.WarnLevel)
			case "error":
				log.SetLevel(log.ErrorLevel)
			default:
				log.SetLevel(log.InfoLevel)
			}

			if cmd.Bool("once") {
				if err := daemon.RunOnce(ctx, cfg); err != nil {
					return cli.Exit(err.Error(), 1)
				}
				return nil
			}

			// Only daemonize if config says so
			if cfg.Daemonize {
				parent, release, err := daemon.Detach()
				if err != nil {
					log.Fatalf("Unable to run: %s", err)
				}
				if parent {
					return nil // Parent process exits
				}
				defer release()
			} else {
				log.Info("Running in foreground (not daemonized)")
			}

			return daemon.RunDaemon(ctx, cfg)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to config file (.properties, .yaml or .toml)",
			Sources: cli.EnvVars("AFD_CONFIG"),
			Value:   config.DefaultConfigFilename,
		},
		&cli.StringFlag{
			Name:    "root-path",
			Usage:   "directory containing the watched folders",
			Sources: cli.EnvVars("AFD_ROOT_PATH"),
		},
		&cli.StringFlag{
			Name:    "temp-path",
			Usage:   "holding area aged files are moved to",
			Sources: cli.EnvVars("AFD_TEMP_PATH"),
		},
		&cli.StringFlag{
			Name:    "deletion-frequency-days",
			Usage:   "age threshold and sweep interval, in days",
			Sources: cli.EnvVars("AFD_DELETION_FREQUENCY_DAYS"),
		},
		&cli.StringSliceFlag{
			Name:    "folder-names",
			Usage:   "watched folders under the root path (repeat or comma-separated)",
			Sources: cli.EnvVars("AFD_FOLDER_NAMES"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "logging level: debug, info, warn, error",
			Sources: cli.EnvVars("AFD_LOG_LEVEL"),
		},
		&cli.StringSliceFlag{
			Name:    "exclude",
			Usage:   "glob patterns to leave in place (repeat or comma-separated)",
			Sources: cli.EnvVars("AFD_EXCLUDE"),
		},
		&cli.BoolFlag{
			Name:    "daemonize",
			Usage:   "run as daemon",
			Sources: cli.EnvVars("AFD_DAEMONIZE"),
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Usage:   "dry run mode",
			Sources: cli.EnvVars("AFD_DRY_RUN"),
		},
		&cli.BoolFlag{
			Name:    "notifications",
			Usage:   "send desktop notifications",
			Sources: cli.EnvVars("AFD_NOTIFICATIONS"),
		},
		&cli.BoolFlag{
			Name:  "once",
			Usage: "run a single sweep and exit",
		},
	}
}

// loadConfig reads the config file if it exists, applies flag overrides and
// validates the result.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := &config.Config{LogLevel: "info"}
	configPath := cmd.String("config")

	// Only load config if the file exists, unless it was asked for explicitly
	if _, err := os.Stat(configPath); err == nil || cmd.IsSet("config") {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if loaded.LogLevel == "" {
			loaded.LogLevel = cfg.LogLevel
		}
		cfg = loaded
	}

	// Override config with flags if set
	if cmd.IsSet("root-path") {
		cfg.RootPath = utils.ExpandTilde(cmd.String("root-path"))
	}
	if cmd.IsSet("temp-path") {
		cfg.TempPath = utils.ExpandTilde(cmd.String("temp-path"))
	}
	if cmd.IsSet("deletion-frequency-days") {
		days, err := config.ParseDays(cmd.String("deletion-frequency-days"))
		if err != nil {
			return nil, &config.ConfigError{Source: "flags", Key: config.KeyDeletionFrequencyDays, Err: err}
		}
		cfg.DeletionFrequencyDays = days
	}
	if cmd.IsSet("folder-names") {
		cfg.FolderNames = splitAll(cmd.StringSlice("folder-names"))
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(cmd.String("log-level")))
	}
	if cmd.IsSet("exclude") {
		cfg.Exclude = splitAll(cmd.StringSlice("exclude"))
	}
	if cmd.IsSet("daemonize") {
		cfg.Daemonize = cmd.Bool("daemonize")
	}
	if cmd.IsSet("dry-run") {
		cfg.DryRun = cmd.Bool("dry-run")
	}
	if cmd.IsSet("notifications") {
		cfg.Notifications = cmd.Bool("notifications")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitAll(values []string) []string {
	var merged []string
	for _, v := range values {
		merged = append(merged, config.SplitList(v)...)
	}
	return merged
}
