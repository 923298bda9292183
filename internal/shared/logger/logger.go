package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/orris-inc/satsgate/internal/shared/config"
)

var (
	root      *slog.Logger
	rootMu    sync.RWMutex
	levelVar  = new(slog.LevelVar)
	closeFunc = func() error { return nil }
)

// Init configures the process-wide slog logger. In debug mode every level carries
// its source location; otherwise only warnings and errors do.
func Init(cfg *config.LoggerConfig, mode string) error {
	levelVar.Set(parseLevel(cfg.Level))

	writer, closer, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}

	sourceFrom := slog.LevelWarn
	if mode == "debug" {
		sourceFrom = slog.LevelDebug
	}

	var base slog.Handler
	if cfg.Format == "json" {
		base = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: levelVar})
	} else {
		base = newTintHandler(writer, levelVar)
	}

	l := slog.New(NewSourceHandler(base, sourceFrom))

	rootMu.Lock()
	root = l
	closeFunc = closer
	rootMu.Unlock()

	slog.SetDefault(l)
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openOutput(path string) (io.Writer, func() error, error) {
	switch strings.ToLower(path) {
	case "", "stdout":
		return os.Stdout, func() error { return nil }, nil
	case "stderr":
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newTintHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	})
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SetLevel changes the level of the logger created by Init at runtime.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// Get returns the process logger, falling back to a console logger before Init.
func Get() *slog.Logger {
	rootMu.RLock()
	l := root
	rootMu.RUnlock()
	if l != nil {
		return l
	}

	rootMu.Lock()
	defer rootMu.Unlock()
	if root == nil {
		root = slog.New(NewSourceHandler(newTintHandler(os.Stdout, slog.LevelInfo), slog.LevelWarn))
	}
	return root
}

// Sync closes a file output opened by Init.
func Sync() error {
	rootMu.RLock()
	defer rootMu.RUnlock()
	return closeFunc()
}
