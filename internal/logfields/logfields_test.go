package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
// Key drift would break log ingestion schemas.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"DeployID", KeyDeployID, "abc-123", DeployID("abc-123")},
		{"Environment", KeyEnvironment, "production", Environment("production")},
		{"Host", KeyHost, "web.example.com", Host("web.example.com")},
		{"RemoteDir", KeyRemoteDir, "/var/www/blog", RemoteDir("/var/www/blog")},
		{"Path", KeyPath, "posts/hello.md", Path("posts/hello.md")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
	}

	for _, tc := range cases {
		require.Equal(t, tc.attrKey, tc.attr.Key, tc.name)
		require.Equal(t, tc.attrVal, tc.attr.Value.String(), tc.name)
	}
}

func TestNumericHelpers(t *testing.T) {
	require.Equal(t, KeyBytes, Bytes(42).Key)
	require.Equal(t, int64(42), Bytes(42).Value.Int64())
	require.Equal(t, KeyDurationMS, DurationMS(12.5).Key)
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	require.Equal(t, KeyError, attr.Key)
	require.Empty(t, attr.Value.String())

	attr = Error(errors.New("dial failed"))
	require.Equal(t, "dial failed", attr.Value.String())
}
