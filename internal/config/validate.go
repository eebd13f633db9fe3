package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		problems = append(problems, "llm.base_url must be set")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		problems = append(problems, "llm.model must be set")
	}
	if c.Segmentation.Temperature > 2 {
		problems = append(problems, "segmentation.temperature must be <= 2")
	}
	if c.Alignment.Temperature > 2 {
		problems = append(problems, "alignment.temperature must be <= 2")
	}
	if c.Workflow.Workers > 16 {
		problems = append(problems, "workflow.workers must be <= 16")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}
	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
