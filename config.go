package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gamma-omg/docqa-mcp/retrieval"
)

type Config struct {
	LogFile         string `yaml:"log"`
	Database        string `yaml:"database"`
	DocRoot         string `yaml:"doc_root"`
	WriteDebounceMs int    `yaml:"write_debounce_ms"`
	ServerAddr      string `yaml:"server_addr"`
	TopK            int    `yaml:"top_k"`
	SnippetsPerDoc  int    `yaml:"snippets_per_doc"`
	MaxSnippetChars int    `yaml:"max_snippet_chars"`
	MaxFeatures     int    `yaml:"max_features"`
	LLM             struct {
		BaseURL   string `yaml:"base_url"`
		Model     string `yaml:"model"`
		APIKeyEnv string `yaml:"api_key_env"`
	} `yaml:"llm"`
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	if cfg.WriteDebounceMs <= 0 {
		cfg.WriteDebounceMs = 500
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "LLM_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "phi3:mini"
	}

	return cfg, nil
}

func (c *Config) retrievalOptions() retrieval.Options {
	return retrieval.Options{
		TopK:            c.TopK,
		SnippetsPerDoc:  c.SnippetsPerDoc,
		MaxSnippetChars: c.MaxSnippetChars,
		MaxFeatures:     c.MaxFeatures,
	}
}
