// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides leveled structured logging on top of go-ethereum's slog handlers.
package log

import (
	"context"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger writes key/value pairs to a Handler.
type Logger = ethlog.Logger

// Levels, lower is more verbose.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Root returns the root logger.
func Root() Logger {
	return ethlog.Root()
}

// SetDefault sets the root logger.
func SetDefault(l Logger) {
	ethlog.SetDefault(l)
}

// NewLogger returns a logger with the specified handler set.
func NewLogger(h slog.Handler) Logger {
	return ethlog.NewLogger(h)
}

// FromLegacyLevel converts the 0 (crit) to 5 (trace) verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

// WithContext returns a logger carrying ctx, bound to whatever the root logger is at the time of writing.
// It is meant for package level loggers declared before the root logger is configured.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) resolve() Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) With(ctx ...any) Logger {
	return &lazyLogger{ctx: append(append([]any{}, l.ctx...), ctx...)}
}

func (l *lazyLogger) New(ctx ...any) Logger {
	return l.With(ctx...)
}

func (l *lazyLogger) Log(level slog.Level, msg string, ctx ...any) {
	l.resolve().Log(level, msg, ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.resolve().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.resolve().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.resolve().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.resolve().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.resolve().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.resolve().Crit(msg, ctx...) }

func (l *lazyLogger) Write(level slog.Level, msg string, attrs ...any) {
	l.resolve().Write(level, msg, attrs...)
}

func (l *lazyLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.resolve().Enabled(ctx, level)
}

func (l *lazyLogger) Handler() slog.Handler {
	return l.resolve().Handler()
}

// Trace is a convenient alias for Root().Trace
func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }

// Debug is a convenient alias for Root().Debug
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }

// Info is a convenient alias for Root().Info
func Info(msg string, ctx ...any) { ethlog.Root().Info(msg, ctx...) }

// Warn is a convenient alias for Root().Warn
func Warn(msg string, ctx ...any) { ethlog.Root().Warn(msg, ctx...) }

// Error is a convenient alias for Root().Error
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// Crit is a convenient alias for Root().Crit
func Crit(msg string, ctx ...any) { ethlog.Root().Crit(msg, ctx...) }
