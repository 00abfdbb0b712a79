package main

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileBackups = 7

// version reports the main module version stamped by the go tool.
func version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// newLogger builds a text logger on stderr and, with --log-file, a JSON
// logger on that file. Both share the returned LevelVar. The returned func
// closes the log file.
func newLogger(cmd *cobra.Command) (*slog.Logger, *slog.LevelVar, func() error, error) {
	fs := cmd.Flags()
	levelName, _ := fs.GetString("log-level")
	logFile, _ := fs.GetString("log-file")

	level := new(slog.LevelVar)
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, nil, nil, errors.Wrap(err, "parse --log-level")
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	closeFn := func() error { return nil }
	if logFile != "" {
		file := &lumberjack.Logger{
			Filename:   logFile,
			MaxBackups: logFileBackups,
			MaxAge:     logFileBackups,
		}
		ctx, cancel := context.WithCancel(context.Background())
		go rotateDaily(ctx, file)

		handler = fanout{handler, slog.NewJSONHandler(file, handlerOpts)}
		closeFn = func() error {
			cancel()
			return file.Close()
		}
	}

	logger := slog.New(handler)
	logger.Info("udprint starting", slog.String("version", version()), slog.String("command", cmd.Name()))
	return logger, level, closeFn, nil
}

func rotateDaily(ctx context.Context, file *lumberjack.Logger) {
	for {
		now := time.Now()
		midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
		t := time.NewTimer(midnight.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		_ = file.Rotate()
	}
}

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
