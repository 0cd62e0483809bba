package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blogpub.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  title: Test Blog\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "content/posts", cfg.Site.ContentDir)
	require.Equal(t, "public", cfg.Site.PublishDir)
	require.Equal(t, "production", cfg.Site.Environment)
	require.Equal(t, 22, cfg.Deploy.Port)
	require.Equal(t, 4, cfg.Deploy.Concurrency)
	require.True(t, cfg.Deploy.DeleteEnabled())
	require.Equal(t, RetryBackoffLinear, cfg.Deploy.Retry.Backoff)
	require.Equal(t, time.Second, cfg.Deploy.Retry.InitialBackoff)
	require.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("BLOGPUB_TEST_HOST", "blog.internal")
	path := writeConfig(t, "deploy:\n  host: ${BLOGPUB_TEST_HOST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "blog.internal", cfg.Deploy.Host)
}

func TestLoad_DeleteFalseIsPreserved(t *testing.T) {
	path := writeConfig(t, "deploy:\n  delete: false\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.False(t, cfg.Deploy.DeleteEnabled())
}

func TestValidate_RequiresDeployFields(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	require.Error(t, cfg.Validate())

	cfg.Deploy.Host = "blog.example.com"
	cfg.Deploy.User = "deploy"
	cfg.Deploy.RemoteDir = "/var/www/blog"
	cfg.Deploy.KeyPath = "/home/u/.ssh/id_ed25519"
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsRelativeRemoteDir(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Deploy.Host = "h"
	cfg.Deploy.User = "u"
	cfg.Deploy.KeyPath = "/k"
	cfg.Deploy.RemoteDir = "www/blog"
	require.Error(t, cfg.Validate())
}

func TestInit_WritesExampleConfigAndRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogpub.yaml")
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Site.Title)

	require.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))
}

func TestNormalize_CoercesUnknownEnums(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Logging.Level = "LOUD"
	cfg.Logging.Format = "xml"
	cfg.Deploy.Retry.Backoff = "quadratic"

	res := Normalize(cfg)
	require.Len(t, res.Warnings, 3)
	require.Equal(t, LogLevelInfo, cfg.Logging.Level)
	require.Equal(t, LogFormatText, cfg.Logging.Format)
	require.Equal(t, RetryBackoffLinear, cfg.Deploy.Retry.Backoff)
}

func TestNormalize_CaseInsensitiveEnums(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Logging.Level = "DEBUG"
	cfg.Deploy.Retry.Backoff = " Exponential "

	res := Normalize(cfg)
	require.NotEmpty(t, res.Warnings)
	require.Equal(t, LogLevelDebug, cfg.Logging.Level)
	require.Equal(t, RetryBackoffExponential, cfg.Deploy.Retry.Backoff)
}
