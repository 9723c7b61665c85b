package config

import (
	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
)

const (
	defaultOutputDir           = "."
	defaultTimeoutSeconds      = 0
	defaultSimilarityThreshold = 5
	defaultQuality             = "80"
	defaultFormat              = "webp"
	defaultLogLevel            = "info"
	defaultLogFormat           = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Endpoint:            converter.DefaultEndpoint,
		TimeoutSeconds:      defaultTimeoutSeconds,
		OutputDir:           defaultOutputDir,
		MaxFiles:            picker.MaxFiles,
		SimilarityThreshold: defaultSimilarityThreshold,
		Defaults: Defaults{
			Quality: defaultQuality,
			Format:  defaultFormat,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
