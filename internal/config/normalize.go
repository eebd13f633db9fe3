package config

import "strings"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeTuning()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	expanded, err := expandPath(defaultString(c.Paths.DataDir, defaultDataDir))
	if err != nil {
		return err
	}
	c.Paths.DataDir = expanded

	expanded, err = expandPath(defaultString(c.Paths.ReportDir, defaultReportDir))
	if err != nil {
		return err
	}
	c.Paths.ReportDir = expanded

	expanded, err = expandPath(defaultString(c.Paths.LogDir, defaultLogDir))
	if err != nil {
		return err
	}
	c.Paths.LogDir = expanded
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = defaultString(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = defaultString(c.LLM.Model, defaultLLMModel)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeTuning() {
	if c.Segmentation.Temperature < 0 {
		c.Segmentation.Temperature = 0
	}
	if c.Segmentation.MaxOutputTokens <= 0 {
		c.Segmentation.MaxOutputTokens = defaultSegmentationMax
	}
	if c.Alignment.Temperature < 0 {
		c.Alignment.Temperature = 0
	}
	if c.Alignment.MaxOutputTokens <= 0 {
		c.Alignment.MaxOutputTokens = defaultAlignmentMax
	}
	if c.Workflow.Workers <= 0 {
		c.Workflow.Workers = defaultWorkers
	}
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(defaultString(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(defaultString(c.Logging.Level, defaultLogLevel))
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
