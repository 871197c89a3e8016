package config

const (
	defaultConfigPath                    = "~/.config/moviepicker/config.toml"
	defaultVideoDir                      = "~/.local/share/moviepicker/videos"
	defaultTempDir                       = "~/.cache/moviepicker/tmp"
	defaultLogDir                        = "~/.local/share/moviepicker/logs"
	defaultDatabasePath                  = "~/.local/share/moviepicker/movies.db"
	defaultServerBind                    = "127.0.0.1:8000"
	defaultPipelineRatePerMinute         = 6
	defaultPipelineTimeoutSeconds        = 600
	defaultOMDbBaseURL                   = "http://www.omdbapi.com/"
	defaultOMDbRequestsPerSecond         = 5
	defaultOMDbTimeoutSeconds            = 15
	defaultOpenAIBaseURL                 = "https://api.openai.com/v1"
	defaultVisionModel                   = "gpt-4o"
	defaultSearchModel                   = "gpt-4o-mini-search-preview"
	defaultSearchContextSize             = "low"
	defaultTextModel                     = "gpt-4o-mini"
	defaultTranscriptionModel            = "whisper-1"
	defaultOpenAITimeoutSeconds          = 120
	defaultFrameCount                    = 3
	defaultMaxMatchesPerTitle            = 3
	defaultYtDlpBinary                   = "yt-dlp"
	defaultFFmpegBinary                  = "ffmpeg"
	defaultFFprobeBinary                 = "ffprobe"
	defaultMinFreeBytes           uint64 = 512 << 20
	defaultStaleTempHours                = 24
	defaultNotifyTimeoutSeconds          = 10
	defaultLogFormat                     = "console"
	defaultLogLevel                      = "info"
)

// Store drivers.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoDir:     defaultVideoDir,
			TempDir:      defaultTempDir,
			LogDir:       defaultLogDir,
			DatabasePath: defaultDatabasePath,
		},
		Store: Store{
			Driver: StoreSQLite,
		},
		Server: Server{
			Bind:                   defaultServerBind,
			CORSOrigins:            []string{"*"},
			PipelineRatePerMinute:  defaultPipelineRatePerMinute,
			PipelineTimeoutSeconds: defaultPipelineTimeoutSeconds,
		},
		OMDb: OMDb{
			BaseURL:           defaultOMDbBaseURL,
			RequestsPerSecond: defaultOMDbRequestsPerSecond,
			TimeoutSeconds:    defaultOMDbTimeoutSeconds,
		},
		OpenAI: OpenAI{
			BaseURL:            defaultOpenAIBaseURL,
			VisionModel:        defaultVisionModel,
			SearchModel:        defaultSearchModel,
			SearchContextSize:  defaultSearchContextSize,
			TextModel:          defaultTextModel,
			TranscriptionModel: defaultTranscriptionModel,
			TimeoutSeconds:     defaultOpenAITimeoutSeconds,
		},
		Reel: Reel{
			FrameCount:         defaultFrameCount,
			MaxMatchesPerTitle: defaultMaxMatchesPerTitle,
			RequireCookies:     true,
			YtDlpBinary:        defaultYtDlpBinary,
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			MinFreeBytes:       defaultMinFreeBytes,
			StaleTempHours:     defaultStaleTempHours,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
