package config

const (
	defaultProjectsDir     = "~/CutroomProjects"
	defaultDataDir         = "~/.local/share/cutroom"
	defaultLogDir          = "~/.local/share/cutroom/logs"
	defaultExportDir       = "~/CutroomExports"
	defaultOutputFormat    = "mp4"
	defaultResolution      = "1920x1080"
	defaultFramerate       = 30
	defaultVideoCodec      = "h264"
	defaultAudioSampleRate = 44100
	defaultAudioChannels   = 2
	defaultAudioCodec      = "aac"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultMinFreeMiB      = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ProjectsDir: defaultProjectsDir,
			DataDir:     defaultDataDir,
			LogDir:      defaultLogDir,
			ExportDir:   defaultExportDir,
		},
		Defaults: Defaults{
			OutputFormat:    defaultOutputFormat,
			Resolution:      defaultResolution,
			Framerate:       defaultFramerate,
			VideoCodec:      defaultVideoCodec,
			AudioSampleRate: defaultAudioSampleRate,
			AudioChannels:   defaultAudioChannels,
			AudioCodec:      defaultAudioCodec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Storage: Storage{
			MinFreeMiB: defaultMinFreeMiB,
		},
	}
}
