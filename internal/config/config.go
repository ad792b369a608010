// Package config loads application configuration from file and
// environment into an explicit Config value. There is no package-level
// state: callers load once and pass the result to the components that
// need it.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Storage StorageConfig `mapstructure:"storage"`
	API     APIConfig     `mapstructure:"api"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig holds crawler-specific configuration.
type CrawlerConfig struct {
	MaxPages int `mapstructure:"max_pages"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	Root string `mapstructure:"root"`
}

// APIConfig holds the model endpoint configuration. The recognized
// fields are fixed: endpoint URL, tags URL, docs directory, model name,
// temperature, token-prediction length and context window size.
type APIConfig struct {
	EndpointURL string  `mapstructure:"endpoint_url"`
	TagsURL     string  `mapstructure:"tags_url"`
	DocsDir     string  `mapstructure:"docs_dir"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	NumPredict  int     `mapstructure:"num_predict"`
	NumCtx      int     `mapstructure:"num_ctx"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load reads configuration from the given file (or the default search
// paths when empty) and the environment. A missing config file is not an
// error; defaults and environment variables apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.sitedigest")
	}

	setDefaults(v)

	v.SetEnvPrefix("SITEDIGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.max_pages", 50)

	v.SetDefault("storage.root", "storage")

	v.SetDefault("api.endpoint_url", "http://localhost:11434/api/chat")
	v.SetDefault("api.tags_url", "http://localhost:11434/api/tags")
	v.SetDefault("api.docs_dir", "./docs")
	v.SetDefault("api.model", "llama3")
	v.SetDefault("api.temperature", 0.1)
	v.SetDefault("api.num_predict", 12000)
	v.SetDefault("api.num_ctx", 116000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks the configuration for values no component can work
// with.
func (c *Config) Validate() error {
	if c.Crawler.MaxPages < 0 {
		return fmt.Errorf("crawler.max_pages must be >= 0")
	}
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root must not be empty")
	}
	if c.API.NumPredict <= 0 {
		return fmt.Errorf("api.num_predict must be positive")
	}
	if c.API.NumCtx <= 0 {
		return fmt.Errorf("api.num_ctx must be positive")
	}
	return nil
}
