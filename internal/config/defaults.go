package config

const (
	defaultInstallRoot        = "~/comfyui"
	defaultManifestPath       = "~/.config/quarry/artifacts.yaml"
	defaultLogDir             = "~/.local/share/quarry/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMaxAttempts        = 3
	defaultTimeoutSeconds     = 300
	defaultConcurrency        = 1
	defaultChunkSizeKiB       = 1024
	defaultBackoffBaseSeconds = 1

	// maxConcurrency caps parallel batch transfers so a handful of
	// multi-gigabyte downloads cannot saturate the link and starve
	// retry backoff timers.
	maxConcurrency = 4
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InstallRoot: defaultInstallRoot,
			Manifest:    defaultManifestPath,
			LogDir:      defaultLogDir,
		},
		Fetch: Fetch{
			MaxAttempts:        defaultMaxAttempts,
			TimeoutSeconds:     defaultTimeoutSeconds,
			Concurrency:        defaultConcurrency,
			ChunkSizeKiB:       defaultChunkSizeKiB,
			BackoffBaseSeconds: defaultBackoffBaseSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
