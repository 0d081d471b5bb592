package main

import (
	"fmt"
	"os"

	"github.com/l1jgo/tickframe/internal/config"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tickframe"
	app.HelpName = "tickframe"
	app.Usage = "fixed-timestep simulation loop"
	app.UsageText = "tickframe [--config FILE] <command> [arguments...]"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Value:  "config/tickframe.toml",
			EnvVar: "TICKFRAME_CONFIG",
			Usage:  "path to the TOML config file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:    "run",
			Aliases: []string{"r"},
			Usage:   "run the arena in real time until interrupted",
			Action:  runAction,
			Flags:   runFlags,
		},
		{
			Name:    "replay",
			Aliases: []string{"p"},
			Usage:   "drive the arena with a synthetic clock and print a summary",
			Action:  replayAction,
			Flags:   replayFlags,
		},
	}
	return app
}

// loadConfig reads the config named by --config. The default path may be
// absent, in which case built-in defaults apply.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.GlobalString("config")
	if !c.GlobalIsSet("config") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
