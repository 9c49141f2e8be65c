package config

const (
	defaultOutputDir    = "~/.local/share/clipforge/output"
	defaultStagingDir   = "~/.local/share/clipforge/staging"
	defaultLogDir       = "~/.local/share/clipforge/logs"
	defaultAPIBind      = "127.0.0.1:7507"
	defaultFrameWidth   = 1280
	defaultFrameHeight  = 720
	defaultFrameRate    = 24
	defaultPreset       = "medium"
	defaultMinSilenceMs = 200
	defaultNoiseDb      = -30.0
	defaultMaxParts     = 100
	defaultMinSegmentMs = 300
	defaultWordsPerLine = 3
	defaultFontSize     = 40
	defaultFontColor    = "white"
	defaultStrokeColor  = "black"
	defaultStrokeWidth  = 2
	defaultPadding      = 20
	defaultSpeechModel  = "large-v3-turbo"
	defaultVADMethod    = "silero"
	defaultFetchTimeout = 30
	defaultMaxSourceMiB = 512
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Media: Media{
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
			FrameWidth:    defaultFrameWidth,
			FrameHeight:   defaultFrameHeight,
			FrameRate:     defaultFrameRate,
			Preset:        defaultPreset,
		},
		Segmentation: Segmentation{
			MinSilenceMs: defaultMinSilenceMs,
			NoiseDb:      defaultNoiseDb,
			MaxParts:     defaultMaxParts,
			MinSegmentMs: defaultMinSegmentMs,
		},
		Alignment: Alignment{
			WordsPerLine: defaultWordsPerLine,
			FontSize:     defaultFontSize,
			FontColor:    defaultFontColor,
			StrokeColor:  defaultStrokeColor,
			StrokeWidth:  defaultStrokeWidth,
			Padding:      defaultPadding,
		},
		Speech: Speech{
			Model:     defaultSpeechModel,
			VADMethod: defaultVADMethod,
		},
		Workflow: Workflow{
			FetchTimeoutSeconds: defaultFetchTimeout,
			MaxSourceBytes:      defaultMaxSourceMiB << 20,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
