package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDeployID    = "deploy_id"
	KeyEnvironment = "environment"
	KeyHost        = "host"
	KeyRemoteDir   = "remote_dir"
	KeyPath        = "path"
	KeyOutcome     = "outcome"
	KeyBytes       = "bytes"
	KeyDurationMS  = "duration_ms"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DeployID(id string) slog.Attr    { return slog.String(KeyDeployID, id) }
func Environment(e string) slog.Attr  { return slog.String(KeyEnvironment, e) }
func Host(h string) slog.Attr         { return slog.String(KeyHost, h) }
func RemoteDir(d string) slog.Attr    { return slog.String(KeyRemoteDir, d) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Bytes(n int64) slog.Attr         { return slog.Int64(KeyBytes, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
