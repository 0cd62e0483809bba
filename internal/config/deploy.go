package config

import (
	"strings"
	"time"
)

// DeployConfig describes the remote target the published site is mirrored to.
type DeployConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port,omitempty"`
	User       string `yaml:"user"`
	RemoteDir  string `yaml:"remote_dir"`
	KeyPath    string `yaml:"key_path"`
	KnownHosts string `yaml:"known_hosts,omitempty"`

	// InsecureIgnoreHostKey disables host key verification. Only for
	// throwaway targets; a missing known_hosts file is otherwise an error.
	InsecureIgnoreHostKey bool `yaml:"insecure_ignore_host_key,omitempty"`

	// Delete enables mirror semantics: remote files absent locally are
	// removed. Defaults to true, matching the original deploy scripts.
	Delete *bool `yaml:"delete,omitempty"`

	Concurrency int         `yaml:"concurrency,omitempty"`
	Retry       RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig holds retry/backoff settings for transient transfer failures.
type RetryConfig struct {
	MaxRetries     int              `yaml:"max_retries,omitempty"`
	InitialBackoff time.Duration    `yaml:"initial_backoff,omitempty"`
	MaxBackoff     time.Duration    `yaml:"max_backoff,omitempty"`
	Backoff        RetryBackoffMode `yaml:"backoff,omitempty"`
}

// DeleteEnabled reports whether mirror deletions are enabled.
func (d *DeployConfig) DeleteEnabled() bool {
	return d.Delete == nil || *d.Delete
}

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a typed mode, returning empty string for unknown.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RetryBackoffFixed):
		return RetryBackoffFixed
	case string(RetryBackoffLinear):
		return RetryBackoffLinear
	case string(RetryBackoffExponential):
		return RetryBackoffExponential
	default:
		return ""
	}
}
