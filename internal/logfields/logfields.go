package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared across packages.
const (
	KeyOperation = "operation"
	KeyStore     = "store"
	KeyPath      = "path"
	KeyElapsedMS = "elapsed_ms"
	KeyUserState = "user_state"
	KeyLap       = "lap"
	KeyError     = "error"
)

func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }
func Store(name string) slog.Attr { return slog.String(KeyStore, name) }
func Path(path string) slog.Attr { return slog.String(KeyPath, path) }
func UserState(s string) slog.Attr { return slog.String(KeyUserState, s) }
func Lap(index int) slog.Attr { return slog.Int(KeyLap, index) }
func Elapsed(d time.Duration) slog.Attr {
	return slog.Int64(KeyElapsedMS, d.Milliseconds())
}

// Error renders err as a string attribute; nil yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
