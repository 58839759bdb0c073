// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log provides leveled structured logging on top of go-ethereum's slog based logger.
// Package level loggers are created once with WithContext and follow later changes of the
// root handler made through SetHandler.
package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

type Logger = ethlog.Logger

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

var (
	current atomic.Pointer[slog.Handler]
	root    Logger
)

func init() {
	SetHandler(DiscardHandler())
	root = ethlog.NewLogger(&swapHandler{})
}

// Root returns the root logger.
func Root() Logger {
	return root
}

// WithContext returns a logger carrying the given key/value pairs on every record.
func WithContext(ctx ...any) Logger {
	return root.With(ctx...)
}

// SetHandler replaces the handler all loggers write to.
func SetHandler(h slog.Handler) {
	current.Store(&h)
}

func Trace(msg string, ctx ...any) { root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { root.Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { root.Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { root.Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { root.Error(msg, ctx...) }

// NewHandler creates a handler of the given format ("terminal" or "json") writing
// records at or above level to wr.
func NewHandler(wr io.Writer, format string, level slog.Level, useColor bool) (slog.Handler, error) {
	switch strings.ToLower(format) {
	case "", "terminal":
		return ethlog.NewTerminalHandlerWithLevel(wr, level, useColor), nil
	case "json":
		return ethlog.JSONHandlerWithLevel(wr, level), nil
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
}

// ParseLevel parses a level name such as "info" or "debug".
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "trce":
		return LevelTrace, nil
	case "debug", "dbug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error", "eror":
		return LevelError, nil
	case "crit":
		return LevelCrit, nil
	default:
		return LevelInfo, errors.Errorf("unknown log level %q", s)
	}
}

// swapHandler forwards to the handler installed by SetHandler at the time of the call.
// Attrs and groups are replayed onto that handler in the order they were added.
type swapHandler struct {
	steps []step
}

// step is either a group name or a set of attrs.
type step struct {
	group string
	attrs []slog.Attr
}

func (h *swapHandler) inner() slog.Handler {
	return *current.Load()
}

func (h *swapHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner().Enabled(ctx, level)
}

func (h *swapHandler) Handle(ctx context.Context, r slog.Record) error {
	inner := h.inner()
	for _, s := range h.steps {
		if s.group != "" {
			inner = inner.WithGroup(s.group)
		} else {
			inner = inner.WithAttrs(s.attrs)
		}
	}
	return inner.Handle(ctx, r)
}

func (h *swapHandler) with(s step) *swapHandler {
	steps := make([]step, 0, len(h.steps)+1)
	steps = append(steps, h.steps...)
	return &swapHandler{steps: append(steps, s)}
}

func (h *swapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(step{attrs: attrs})
}

func (h *swapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(step{group: name})
}

type discardHandler struct{}

// DiscardHandler returns a no-op handler
func DiscardHandler() slog.Handler {
	return &discardHandler{}
}

func (h *discardHandler) Handle(_ context.Context, _ slog.Record) error {
	return nil
}

func (h *discardHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return false
}

func (h *discardHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *discardHandler) WithAttrs(_ []slog.Attr) slog.Handler {
	return &discardHandler{}
}
