package logger

import (
	"log/slog"
	"time"
)

// Error records err under "error". A nil err yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting subsystem under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// PublicID records the derived public id under "public_id".
// Never pass the UUID or the key here.
func PublicID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("public_id", id)
}

// SecretName records a secret's display name under "secret_name".
func SecretName(name string) slog.Attr {
	return slog.String("secret_name", name)
}

// Count records a quantity under "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

// Path records a filesystem path under "path".
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Storage records the sync server storage backend under "storage".
func Storage(kind string) slog.Attr {
	return slog.String("storage", kind)
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
