package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultChatEndpoint = "https://api.openai.com/v1/chat/completions"
	DefaultTimeEndpoint = "https://worldtimeapi.org/api/timezone/Europe/Rome"
	DefaultModel        = "gpt-3.5-turbo"
	DefaultAPIKeyEnv    = "OPENAI_API_KEY"
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 500 * time.Millisecond
	DefaultTimeout      = 60 * time.Second
	DefaultUserName     = "User"
	DefaultBotName      = "Assistant"
)

// Config holds every tunable of a chat session. Zero values are meaningful
// (max_retries: 0 is a single attempt), so files are decoded on top of
// DefaultConfig rather than defaulted afterwards.
type Config struct {
	Chat struct {
		Endpoint  string        `yaml:"endpoint"`
		Model     string        `yaml:"model"`
		APIKeyEnv string        `yaml:"api_key_env"`
		APIKey    string        `yaml:"-"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"chat"`
	Time struct {
		Endpoint string        `yaml:"endpoint"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"time"`
	Retry struct {
		MaxRetries int           `yaml:"max_retries"`
		Delay      time.Duration `yaml:"delay"`
	} `yaml:"retry"`
	Session struct {
		UserName string `yaml:"user_name"`
		BotName  string `yaml:"bot_name"`
	} `yaml:"session"`
	Output struct {
		Export  string `yaml:"export"`
		Format  string `yaml:"format"`
		Archive string `yaml:"archive"`
		Plain   bool   `yaml:"plain"`
	} `yaml:"output"`
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file or flag overrides it
func DefaultConfig() Config {
	var cfg Config
	cfg.Chat.Endpoint = DefaultChatEndpoint
	cfg.Chat.Model = DefaultModel
	cfg.Chat.APIKeyEnv = DefaultAPIKeyEnv
	cfg.Chat.Timeout = DefaultTimeout
	cfg.Time.Endpoint = DefaultTimeEndpoint
	cfg.Time.Timeout = DefaultTimeout
	cfg.Retry.MaxRetries = DefaultMaxRetries
	cfg.Retry.Delay = DefaultRetryDelay
	cfg.Session.UserName = DefaultUserName
	cfg.Session.BotName = DefaultBotName
	return cfg
}

// LoadConfig reads a YAML file over the defaults. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &ConfigError{Path: path, Err: err}
	}
	if err := decodeConfig(&cfg, b); err != nil {
		return cfg, &ConfigError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return cfg, err
	}
	return cfg, nil
}

func decodeConfig(cfg *Config, b []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ResolveAPIKey fills Chat.APIKey from the configured environment variable
// when no key was supplied explicitly.
func (c *Config) ResolveAPIKey() {
	if c.Chat.APIKey != "" {
		return
	}
	env := c.Chat.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	c.Chat.APIKey = os.Getenv(env)
}

// Validate checks field ranges and endpoint syntax
func (c Config) Validate() error {
	if err := validateEndpoint(c.Chat.Endpoint); err != nil {
		return &ConfigError{Field: "chat.endpoint", Err: err}
	}
	if err := validateEndpoint(c.Time.Endpoint); err != nil {
		return &ConfigError{Field: "time.endpoint", Err: err}
	}
	if c.Chat.Model == "" {
		return &ConfigError{Field: "chat.model", Err: errors.New("must not be empty")}
	}
	if c.Chat.Timeout <= 0 {
		return &ConfigError{Field: "chat.timeout", Err: errors.New("must be positive")}
	}
	if c.Time.Timeout <= 0 {
		return &ConfigError{Field: "time.timeout", Err: errors.New("must be positive")}
	}
	if c.Retry.MaxRetries < 0 {
		return &ConfigError{Field: "retry.max_retries", Err: errors.New("must be >= 0")}
	}
	if c.Retry.Delay < 0 {
		return &ConfigError{Field: "retry.delay", Err: errors.New("must be >= 0")}
	}
	if c.LogLevel != "" {
		if _, ok := ParseLogLevel(c.LogLevel); !ok {
			return &ConfigError{Field: "log_level", Err: fmt.Errorf("unknown level %q", c.LogLevel)}
		}
	}
	return nil
}

func validateEndpoint(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
