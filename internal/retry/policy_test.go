package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogpub/internal/config"
)

func TestDefaultPolicy_IsValid(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())
	require.Equal(t, config.RetryBackoffLinear, p.Mode)
}

func TestDelay_Fixed(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 2*time.Second, 10*time.Second, 3)
	require.Equal(t, 2*time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(5))
}

func TestDelay_LinearGrowsAndCaps(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, time.Second, 3*time.Second, 5)
	require.Equal(t, time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(2))
	require.Equal(t, 3*time.Second, p.Delay(3))
	require.Equal(t, 3*time.Second, p.Delay(10))
}

func TestDelay_ExponentialGrowsAndCaps(t *testing.T) {
	p := NewPolicy(config.RetryBackoffExponential, time.Second, 5*time.Second, 5)
	require.Equal(t, time.Second, p.Delay(1))
	require.Equal(t, 2*time.Second, p.Delay(2))
	require.Equal(t, 4*time.Second, p.Delay(3))
	require.Equal(t, 5*time.Second, p.Delay(4))
}

func TestDelay_ZeroAttemptHasNoDelay(t *testing.T) {
	p := DefaultPolicy()
	require.Equal(t, time.Duration(0), p.Delay(0))
	require.Equal(t, time.Duration(0), p.Delay(-1))
}

func TestNewPolicy_UnknownModeFallsBack(t *testing.T) {
	p := NewPolicy(config.RetryBackoffMode("quadratic"), 0, 0, -1)
	require.Equal(t, DefaultPolicy(), p)
}

func TestFromConfig_UsesConfiguredValues(t *testing.T) {
	p := FromConfig(config.RetryConfig{
		MaxRetries:     4,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Backoff:        config.RetryBackoffExponential,
	})
	require.Equal(t, 4, p.MaxRetries)
	require.Equal(t, 500*time.Millisecond, p.Initial)
	require.Equal(t, config.RetryBackoffExponential, p.Mode)
}
