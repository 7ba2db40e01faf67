package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs the default slog logger. When file is set, records go to a
// rotating file instead of stderr, which keeps terminal front ends clean.
// The returned closer releases the file.
func Setup(file, level string) io.Closer {
	var (
		out    io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)

	if file != "" {
		lj := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    16,
			MaxBackups: 7,
			MaxAge:     30,
		}
		out = lj
		closer = lj
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(level)})
	slog.SetDefault(slog.New(handler))

	return closer
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
