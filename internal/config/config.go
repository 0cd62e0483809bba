package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	bperrors "git.home.luguber.info/inful/blogpub/internal/errors"
)

// Config represents the application configuration loaded from blogpub.yaml.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Deploy  DeployConfig  `yaml:"deploy"`
	Content ContentConfig `yaml:"content"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the Hugo site being published.
type SiteConfig struct {
	Title       string `yaml:"title"`
	BaseURL     string `yaml:"base_url,omitempty"`
	ContentDir  string `yaml:"content_dir"`
	PublishDir  string `yaml:"publish_dir"`
	Environment string `yaml:"environment"` // Hugo deployment environment used for deploys
}

// ContentConfig controls content scanning and lint rules.
type ContentConfig struct {
	RequiredFields []string `yaml:"required_fields,omitempty"`
	Taxonomies     []string `yaml:"taxonomies,omitempty"`
}

// WatchConfig controls watch mode behavior.
type WatchConfig struct {
	Debounce       time.Duration `yaml:"debounce"`
	DeployInterval time.Duration `yaml:"deploy_interval,omitempty"` // 0 disables scheduled deploys
	ListenAddr     string        `yaml:"listen_addr,omitempty"`     // metrics/health endpoint, empty disables
}

// LoggingConfig controls slog level and output format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load loads configuration from the specified file.
//
// Environment variables referenced as ${VAR} in the YAML are expanded before
// unmarshaling, so secrets (deploy credentials, key paths) can stay out of
// the file. A .env file next to the working directory is loaded first.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, bperrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if res := Normalize(&cfg); len(res.Warnings) > 0 {
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, "config:", w)
		}
	}

	return &cfg, nil
}

// applyDefaults fills zero-valued fields after unmarshal.
func (c *Config) applyDefaults() {
	if c.Site.ContentDir == "" {
		c.Site.ContentDir = "content/posts"
	}
	if c.Site.PublishDir == "" {
		c.Site.PublishDir = "public"
	}
	if c.Site.Environment == "" {
		c.Site.Environment = "production"
	}
	if len(c.Content.RequiredFields) == 0 {
		c.Content.RequiredFields = []string{"title", "date"}
	}
	if c.Deploy.Port == 0 {
		c.Deploy.Port = 22
	}
	if c.Deploy.Delete == nil {
		del := true
		c.Deploy.Delete = &del
	}
	if c.Deploy.Concurrency == 0 {
		c.Deploy.Concurrency = 4
	}
	if c.Deploy.Retry.MaxRetries == 0 {
		c.Deploy.Retry.MaxRetries = 2
	}
	if c.Deploy.Retry.InitialBackoff == 0 {
		c.Deploy.Retry.InitialBackoff = time.Second
	}
	if c.Deploy.Retry.MaxBackoff == 0 {
		c.Deploy.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	if c.Deploy.KeyPath != "" {
		c.Deploy.KeyPath = expandHome(c.Deploy.KeyPath)
	}
	if c.Deploy.KnownHosts != "" {
		c.Deploy.KnownHosts = expandHome(c.Deploy.KnownHosts)
	}
}

// Validate checks fields required before a deploy can run.
func (c *Config) Validate() error {
	if c.Deploy.Host == "" {
		return bperrors.ConfigRequired("deploy.host")
	}
	if c.Deploy.User == "" {
		return bperrors.ConfigRequired("deploy.user")
	}
	if c.Deploy.RemoteDir == "" {
		return bperrors.ConfigRequired("deploy.remote_dir")
	}
	if c.Deploy.KeyPath == "" {
		return bperrors.ConfigRequired("deploy.key_path")
	}
	if !strings.HasPrefix(c.Deploy.RemoteDir, "/") {
		return bperrors.ValidationFailed("deploy.remote_dir", "must be an absolute path")
	}
	return nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const exampleConfig = `site:
  title: My Blog
  base_url: https://blog.example.com
  content_dir: content/posts
  publish_dir: public
  environment: production

deploy:
  host: blog.example.com
  port: 22
  user: deploy
  remote_dir: /var/www/blog
  key_path: ~/.ssh/id_ed25519
  known_hosts: ~/.ssh/known_hosts
  delete: true
  concurrency: 4
  retry:
    max_retries: 2
    initial_backoff: 1s
    max_backoff: 30s
    backoff: linear

content:
  required_fields: [title, date]
  taxonomies: [tags]

watch:
  debounce: 2s
  # deploy_interval: 1h
  # listen_addr: :9105

logging:
  level: info
  format: text
`

// loadEnvFiles loads environment variables from .env/.env.local if present.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				fmt.Fprintf(os.Stderr, "Note: %s could not be loaded: %v\n", p, err)
			}
			return
		}
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
