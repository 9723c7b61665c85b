package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-isatty"

	"github.com/lepinkainen/imgconvert/cmd"
	"github.com/lepinkainen/imgconvert/config"
	"github.com/lepinkainen/imgconvert/logging"
	"github.com/lepinkainen/imgconvert/types"
)

var Version = "dev"

type CLI struct {
	ConfigFile string `name:"config" short:"c" help:"Path to config file (default: ~/.config/imgconvert/config.toml)" env:"IMGCONVERT_CONFIG" type:"path"`
	Endpoint   string `help:"Conversion service URL" env:"IMGCONVERT_ENDPOINT"`
	Offline    bool   `help:"Convert locally instead of calling the service (png and jpg only)" env:"IMGCONVERT_OFFLINE"`
	LogLevel   string `help:"Log level (debug, info, warn, error)" env:"IMGCONVERT_LOG_LEVEL"`
	LogJSON    bool   `name:"log-json" help:"Write logs as JSON" env:"IMGCONVERT_LOG_JSON"`

	Version kong.VersionFlag `help:"Print version and exit"`

	UI      cmd.UICmd      `cmd:"" default:"withargs" help:"Interactive upload, convert and download (default)"`
	Convert cmd.ConvertCmd `cmd:"" help:"Convert images in one shot and save the results"`
	Config  cmd.ConfigCmd  `cmd:"" help:"Manage the config file"`
}

// setup loads the config, applies global flag overrides and builds the
// logger for the selected command
func (cli *CLI) setup(command string) (*types.AppContext, func() error, error) {
	cfg, path, _, err := config.Load(cli.ConfigFile)
	if err != nil {
		// A broken config file must not stop it from being regenerated
		if !strings.HasPrefix(command, "config init") {
			return nil, nil, err
		}
		defaults := config.Default()
		cfg = &defaults
	}

	if cli.Endpoint != "" {
		cfg.Endpoint = strings.TrimSpace(cli.Endpoint)
	}
	if cli.Offline {
		cfg.Offline = true
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(cli.LogLevel)
	}
	if cli.LogJSON {
		cfg.Logging.Format = "json"
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Logging, logOutput(command))
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	if path == "" && cli.ConfigFile != "" {
		path = cli.ConfigFile
	}

	return &types.AppContext{
		Version:    Version,
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
	}, closeLog, nil
}

// logOutput keeps log records off the screen while the TUI owns it
func logOutput(command string) io.Writer {
	if strings.HasPrefix(command, "ui") && isatty.IsTerminal(os.Stdout.Fd()) {
		return io.Discard
	}
	return os.Stderr
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("imgconvert"),
		kong.Description("Convert JPEG and PNG images to PNG, WebP or JPG"),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	)

	appCtx, closeLog, err := cli.setup(ctx.Command())
	ctx.FatalIfErrorf(err)

	err = ctx.Run(appCtx)
	_ = closeLog()
	ctx.FatalIfErrorf(err)
}
