package config

const (
	defaultDataDir           = "~/.local/share/skald"
	defaultReportDir         = "~/.local/share/skald/reports"
	defaultLogDir            = "~/.local/share/skald/logs"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/skald-tools/skald"
	defaultLLMTitle          = "Skald Narration Pipeline"
	defaultLLMTimeoutSeconds = 120
	defaultSegmentationTemp  = 0.3
	defaultSegmentationMax   = 4096
	defaultAlignmentTemp     = 0.2
	defaultAlignmentMax      = 2048
	defaultWorkers           = 1
	defaultQueuePollInterval = 5
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ReportDir: defaultReportDir,
			LogDir:    defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Segmentation: Segmentation{
			Temperature:     defaultSegmentationTemp,
			MaxOutputTokens: defaultSegmentationMax,
		},
		Alignment: Alignment{
			Temperature:     defaultAlignmentTemp,
			MaxOutputTokens: defaultAlignmentMax,
		},
		Workflow: Workflow{
			Workers:           defaultWorkers,
			QueuePollInterval: defaultQueuePollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
