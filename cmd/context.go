package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/lepinkainen/imgconvert/config"
	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/types"
	"github.com/lepinkainen/imgconvert/utils"
)

// resolve fills in defaults for a missing or partial AppContext
func resolve(appCtx *types.AppContext) (string, *config.Config, *slog.Logger) {
	version := types.DefaultVersion
	cfg := config.Default()
	cfgPtr := &cfg
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if appCtx != nil {
		if appCtx.Version != "" {
			version = appCtx.Version
		}
		if appCtx.Config != nil {
			cfgPtr = appCtx.Config
		}
		if appCtx.Logger != nil {
			logger = appCtx.Logger
		}
	}
	return version, cfgPtr, logger
}

// newConverter builds the converter selected by cfg. Progress is only drawn
// when showProgress is set.
func newConverter(cfg *config.Config, logger *slog.Logger, showProgress bool) (converter.Converter, error) {
	if cfg.Offline {
		logger.Info("using local converter")
		return converter.NewLocal(), nil
	}

	endpoint, err := utils.ValidateEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	if utils.IsPlaintextRemote(endpoint) {
		logger.Warn("endpoint is not encrypted; images are uploaded in plain text", "endpoint", endpoint.String())
	}

	opts := []converter.Option{
		converter.WithLogger(logger),
		converter.WithTimeout(cfg.Timeout()),
	}
	if showProgress {
		opts = append(opts, converter.WithProgress(func(size int64) io.Writer {
			return progressbar.DefaultBytes(size, "📤 uploading")
		}))
	}
	return converter.NewClient(endpoint.String(), opts...), nil
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
