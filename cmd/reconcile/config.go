package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/resumeforge/reconcile/internal/extract"
	"github.com/resumeforge/reconcile/internal/match"
	"github.com/resumeforge/reconcile/internal/pipeline"
	"github.com/resumeforge/reconcile/internal/storage"
)

const defaultConfigPath = ".reconcile/config.yaml"

// appConfig is the on-disk CLI configuration. Every section has working
// defaults; secrets (API keys) come from the environment, never the
// file.
type appConfig struct {
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Bucket struct {
		// URL is the Supabase project base URL. Empty selects the
		// local-directory backend rooted at Dir.
		URL    string `yaml:"url"`
		Name   string `yaml:"name"`
		Prefix string `yaml:"prefix"`
		Dir    string `yaml:"dir"`
	} `yaml:"bucket"`

	Extract struct {
		Model          string `yaml:"model"`
		CallsPerMinute int    `yaml:"calls_per_minute"`
	} `yaml:"extract"`

	Pipeline struct {
		PollInterval  string `yaml:"poll_interval"`
		MaxConcurrent int    `yaml:"max_concurrent"`
	} `yaml:"pipeline"`

	Match struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"match"`

	ProcessedLog string `yaml:"processed_log"`
}

// loadConfig reads the YAML config at path, falling back to defaults
// when the file is absent. A missing explicit path is an error; a
// missing default path is not.
func loadConfig(path string) (*appConfig, error) {
	cfg := defaultAppConfig()

	explicit := path != ""
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func defaultAppConfig() *appConfig {
	cfg := &appConfig{}
	cfg.Storage.Path = storage.DefaultConfig().Path
	cfg.Bucket.Name = "resumes"
	cfg.Match.Threshold = 0.7
	cfg.ProcessedLog = ".reconcile/processed_files.json"
	return cfg
}

// extractConfig builds the extraction client config from file plus
// environment.
func (c *appConfig) extractConfig() extract.Config {
	ec := extract.DefaultConfig()
	if c.Extract.Model != "" {
		ec.Model = c.Extract.Model
	}
	if c.Extract.CallsPerMinute > 0 {
		ec.CallsPerMinute = c.Extract.CallsPerMinute
	}
	return ec.FromEnv()
}

// pipelineConfig builds the pipeline config from file plus environment.
func (c *appConfig) pipelineConfig() (pipeline.Config, error) {
	pc := pipeline.DefaultConfig()
	if c.Pipeline.PollInterval != "" {
		d, err := time.ParseDuration(c.Pipeline.PollInterval)
		if err != nil {
			return pc, fmt.Errorf("invalid poll_interval: %w", err)
		}
		pc.PollInterval = d
	}
	if c.Pipeline.MaxConcurrent > 0 {
		pc.MaxConcurrent = c.Pipeline.MaxConcurrent
	}
	pc.Prefix = c.Bucket.Prefix
	pc.TempDir = os.TempDir()
	return pc.FromEnv(), nil
}

// matchConfig builds the scorer config from file plus environment.
func (c *appConfig) matchConfig() match.Config {
	return match.DefaultConfig().FromEnv()
}
