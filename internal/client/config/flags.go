package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/traveldiary/internal/flagx"
)

// parseFlags overlays Config with command-line flags.
//
//	-a string           backend endpoint URL
//	-p string           backend project id
//	-db string          local state database path
//	-log-level string   debug, info, warn or error
//	-log-format string  text, json or zap
//	-upload             upload device-local images before saving entries
//
// Other arguments are ignored so several loaders can share os.Args.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-p", "-db", "-log-level", "-log-format"}, "-upload")

	fs := flag.NewFlagSet("traveldiary", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Endpoint, "a", cfg.Endpoint, "backend endpoint URL")
	fs.StringVar(&cfg.Project, "p", cfg.Project, "backend project id")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "local state database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.BoolVar(&cfg.UploadImages, "upload", cfg.UploadImages, "upload local images to object storage")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
