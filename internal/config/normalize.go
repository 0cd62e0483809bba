package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments & warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated and bounded fields after default application.
// It mutates the provided config in-place and returns a result describing any coercions.
func Normalize(c *Config) *NormalizationResult {
	res := &NormalizationResult{}
	if c == nil {
		return res
	}

	// logging.level
	if lvl := NormalizeLogLevel(string(c.Logging.Level)); lvl != "" {
		if c.Logging.Level != lvl {
			res.Warnings = append(res.Warnings, warnChanged("logging.level", c.Logging.Level, lvl))
			c.Logging.Level = lvl
		}
	} else if strings.TrimSpace(string(c.Logging.Level)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("logging.level", string(c.Logging.Level), string(LogLevelInfo)))
		c.Logging.Level = LogLevelInfo
	} else {
		c.Logging.Level = LogLevelInfo
	}

	// logging.format
	if f := NormalizeLogFormat(string(c.Logging.Format)); f != "" {
		if c.Logging.Format != f {
			res.Warnings = append(res.Warnings, warnChanged("logging.format", c.Logging.Format, f))
			c.Logging.Format = f
		}
	} else if strings.TrimSpace(string(c.Logging.Format)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("logging.format", string(c.Logging.Format), string(LogFormatText)))
		c.Logging.Format = LogFormatText
	} else {
		c.Logging.Format = LogFormatText
	}

	// deploy.retry.backoff
	if rb := NormalizeRetryBackoff(string(c.Deploy.Retry.Backoff)); rb != "" {
		if c.Deploy.Retry.Backoff != rb {
			res.Warnings = append(res.Warnings, warnChanged("deploy.retry.backoff", c.Deploy.Retry.Backoff, rb))
			c.Deploy.Retry.Backoff = rb
		}
	} else if strings.TrimSpace(string(c.Deploy.Retry.Backoff)) != "" {
		res.Warnings = append(res.Warnings, warnUnknown("deploy.retry.backoff", string(c.Deploy.Retry.Backoff), string(RetryBackoffLinear)))
		c.Deploy.Retry.Backoff = RetryBackoffLinear
	} else {
		c.Deploy.Retry.Backoff = RetryBackoffLinear
	}

	// bounds
	if c.Deploy.Concurrency < 1 {
		res.Warnings = append(res.Warnings, warnUnknown("deploy.concurrency", fmt.Sprint(c.Deploy.Concurrency), "1"))
		c.Deploy.Concurrency = 1
	}
	if c.Deploy.Retry.MaxRetries < 0 {
		c.Deploy.Retry.MaxRetries = 0
	}

	return res
}

func warnChanged(field string, from, to interface{}) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}
func warnUnknown(field, value, def string) string {
	return fmt.Sprintf("unknown %s '%s', defaulting to %s", field, value, def)
}
