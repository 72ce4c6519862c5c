package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". Nil errors yield an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ToastID records a toast identifier under "toast_id".
func ToastID(id string) slog.Attr {
	return slog.String("toast_id", id)
}

// ToastKind records a toast kind under "toast_kind".
func ToastKind(kind string) slog.Attr {
	return slog.String("toast_kind", kind)
}

// SessionID records a toast session identifier under "session_id".
// Empty ids yield an empty Attr.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("session_id", id)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records d under "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Count records n under "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
