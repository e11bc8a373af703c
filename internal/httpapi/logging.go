package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	zl "github.com/rs/zerolog/log"
)

// zlog is an optional structured logger. If unset, the zerolog global logger is used.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logger() *zerolog.Logger {
	if zlog != nil {
		return zlog
	}
	return &zl.Logger
}

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel is read once from PREDICTD_REQUEST_LOG.
var defaultLogLevel = parseLevel(os.Getenv("PREDICTD_REQUEST_LOG"))

// SetDefaultRequestLogLevel overrides the environment default.
func SetDefaultRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// predictLog emits the start/end lines of a /predict call at the request's level.
type predictLog struct {
	lvl   LogLevel
	rid   string
	start time.Time
}

func newPredictLog(r *http.Request) predictLog {
	return predictLog{lvl: requestLogLevel(r), rid: middleware.GetReqID(r.Context()), start: time.Now()}
}

func (p predictLog) begin(domain, model string, records int) {
	if p.lvl < LevelInfo {
		return
	}
	logger().Info().Str("request_id", p.rid).Str("domain", domain).Str("model", model).Int("records", records).Msg("predict start")
}

func (p predictLog) end(status int, model string, err error) {
	switch {
	case err != nil && p.lvl >= LevelError:
		logger().Error().Str("request_id", p.rid).Int("status", status).Dur("dur", time.Since(p.start)).Err(err).Msg("predict end")
	case err == nil && p.lvl >= LevelInfo:
		logger().Info().Str("request_id", p.rid).Int("status", status).Str("model", model).Dur("dur", time.Since(p.start)).Msg("predict end")
	}
}

func (p predictLog) debug(v any) {
	if p.lvl < LevelDebug {
		return
	}
	logger().Debug().Str("request_id", p.rid).Interface("body", v).Msg("predict payload")
}
