package main

import (
	"fmt"
	"os"
	"sort"

	"course_sales/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const version = "v1.0.0"

func init() {
	gin.SetMode(gin.ReleaseMode)

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}
}

// loadRuntime reads configuration and builds the logger for a command.
func loadRuntime(c *cli.Context) (config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(c.String("env-file"))
	if err != nil {
		return config.Config{}, nil, err
	}
	if c.IsSet("loglevel") {
		cfg.Log.Level = c.String("loglevel")
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newCLIApp() *cli.App {
	app := &cli.App{
		Name:           "course-sales",
		Usage:          "HTTP API for recording course sales",
		Version:        version,
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "load environment variables from `FILE` before reading configuration",
				Value:   ".env",
			},
			&cli.StringFlag{
				Name:    "loglevel",
				Aliases: []string{"l"},
				Usage:   "override LOG_LEVEL (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Usage:   "run the HTTP API",
				Action: func(c *cli.Context) error {
					cfg, logger, err := loadRuntime(c)
					if err != nil {
						return err
					}
					defer logger.Sync() //nolint:errcheck

					return serve(c.Context, cfg, logger)
				},
			},
			{
				Name:    "migrate",
				Aliases: []string{"m"},
				Usage:   "create or update the sales table",
				Action: func(c *cli.Context) error {
					cfg, logger, err := loadRuntime(c)
					if err != nil {
						return err
					}
					defer logger.Sync() //nolint:errcheck

					return migrate(c.Context, cfg, logger)
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("course-sales: %v", err))
		os.Exit(1)
	}
}
