package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"textpipe/pkg/types"
)

// zlog is the package logger. It discards everything until SetLogger installs
// a real one.
var zlog = zerolog.Nop()

// SetLogger installs the structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

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

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("TEXTPIPED_LOG_LEVEL"))

// requestLogLevel resolves the logging level for one request. The query
// parameter wins over the header, the header over the process default.
func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logGenerateStart emits one line per accepted request at info and above.
// Debug adds the sampling knobs.
func logGenerateStart(r *http.Request, lvl LogLevel, req types.GenerateRequest) {
	if lvl < LevelInfo {
		return
	}
	z := zlog.Info().
		Str("path", r.URL.Path).
		Str("model", req.Model).
		Str("task", req.Task).
		Int("prompts", promptCount(req))
	if lvl >= LevelDebug {
		z = z.Int("max_new_tokens", req.MaxNewTokens).
			Float64("temperature", req.Temperature).
			Float64("top_p", req.TopP).
			Bool("echo", req.Echo)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("generate start")
}

// logGenerateEnd emits the outcome line. Errors always log at LevelError and
// above; successes need LevelInfo.
func logGenerateEnd(r *http.Request, lvl LogLevel, status int, start time.Time, err error) {
	if err == nil {
		if lvl < LevelInfo {
			return
		}
	} else if lvl < LevelError {
		return
	}
	z := zlog.Info()
	if err != nil {
		z = zlog.Error().Err(err)
	}
	z = z.Str("path", r.URL.Path).Int("status", status).Dur("dur", time.Since(start))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("generate end")
}

func promptCount(req types.GenerateRequest) int {
	if len(req.Prompts) > 0 {
		return len(req.Prompts)
	}
	if req.Prompt != "" {
		return 1
	}
	return 0
}
