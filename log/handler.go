// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// levelHandler filters records against a level that can change while the handler is in use.
type levelHandler struct {
	lvl   *slog.LevelVar
	inner slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.lvl.Level() && h.inner.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.lvl, h.inner.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{h.lvl, h.inner.WithGroup(name)}
}

// NewTerminalHandlerWithLevel returns a human friendly handler for terminals.
// Records below lvl are dropped, reading lvl on every record.
func NewTerminalHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar, useColor bool) slog.Handler {
	return &levelHandler{lvl, ethlog.NewTerminalHandler(wr, useColor)}
}

// JSONHandlerWithLevel returns a handler printing one JSON object per record at or above lvl.
func JSONHandlerWithLevel(wr io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &levelHandler{lvl, ethlog.JSONHandler(wr)}
}
