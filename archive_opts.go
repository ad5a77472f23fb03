package bundle

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets a logger for diagnostics.
//
// The codec treats truncated reads, oversized names, unsupported
// compression identifiers, and override failures as non-fatal; the
// logger is the only place they are reported. By default diagnostics
// are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

// WithFooterPad pads the written archive to a 16-byte boundary.
//
// Some bundles in the wild carry this trailing pad but the consuming
// application does not appear to require it, so it is off by default.
func WithFooterPad(enabled bool) Option {
	return func(a *Archive) {
		a.footerPad = enabled
	}
}

// WithProgress sets a callback receiving per-entry progress updates.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Archive) {
		a.progress = fn
	}
}
