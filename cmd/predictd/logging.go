package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"predictd/internal/common/fsutil"
	"predictd/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger builds the process logger. The returned closer flushes the log
// file, if any, and must be called on exit.
func newLogger(lc config.LogConfig, out io.Writer) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if out == nil {
		out = os.Stderr
	}
	var w io.Writer = out
	if lc.Format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	var closer io.Closer = nopCloser{}
	if lc.File != "" {
		p, err := fsutil.ResolvePath(lc.File)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		lj := &lumberjack.Logger{
			Filename:   p,
			MaxSize:    lc.MaxSizeMB,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAgeDays,
			Compress:   true,
		}
		// Files always get JSON lines.
		w = zerolog.MultiLevelWriter(w, lj)
		closer = lj
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "predictd").Logger()
	zlog.Logger = l
	return l, closer, nil
}
