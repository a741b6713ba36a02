// Package logger builds *slog.Logger values for the open2fa binaries and
// keeps attribute names consistent across packages.
//
// New takes option functions for level, format, output, static attributes
// and context extractors:
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithAttr(logger.Component("sync")),
//	)
//	log.Debug("pushed secrets", logger.Count(3), logger.PublicID(ident.PublicID()))
//
// The defaults suit a CLI: text on stderr at warn level. Library packages
// take a logger through an option and fall back to Discard.
//
// Attribute helpers such as Error and PublicID return an empty Attr for zero
// input, so callers do not need nil checks. Secrets, UUIDs and encryption
// keys must never be logged.
package logger
