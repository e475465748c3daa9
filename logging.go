package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorMagenta = 35

	colorBold = 1
)

func colorize(s interface{}, c int) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}

// ThreadSafeWriter serializes writes so concurrent handlers don't
// interleave log lines
type ThreadSafeWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewThreadSafeWriter(w io.Writer) *ThreadSafeWriter {
	return &ThreadSafeWriter{w: w}
}

func (tsw *ThreadSafeWriter) Write(p []byte) (int, error) {
	tsw.mu.Lock()
	defer tsw.mu.Unlock()
	return tsw.w.Write(p)
}

var levelLabels = map[string]string{
	zerolog.LevelTraceValue: colorize("TRACE", colorMagenta),
	zerolog.LevelDebugValue: colorize("DEBUG", colorYellow),
	zerolog.LevelInfoValue:  colorize("INFO ", colorGreen),
	zerolog.LevelWarnValue:  colorize("WARN ", colorRed),
	zerolog.LevelErrorValue: colorize(colorize("ERROR", colorRed), colorBold),
	zerolog.LevelFatalValue: colorize(colorize("FATAL", colorRed), colorBold),
	zerolog.LevelPanicValue: colorize(colorize("PANIC", colorRed), colorBold),
}

func InitializeLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	output := zerolog.ConsoleWriter{
		Out:        NewThreadSafeWriter(colorable.NewColorable(os.Stdout)),
		TimeFormat: time.RFC3339,
	}

	output.FormatLevel = func(i interface{}) string {
		if ll, ok := i.(string); ok {
			if l, known := levelLabels[ll]; known {
				return fmt.Sprintf("| %s |", l)
			}
			return fmt.Sprintf("| %s |", strings.ToUpper(fmt.Sprintf("%-5s", ll))[0:5])
		}
		return fmt.Sprintf("| %s |", colorize("???  ", colorBold))
	}

	log.Logger = log.Output(output)
}

// LoggerMiddleware logs every request and recovers from handler panics.
// Adapted from https://github.com/ironstar-io/chizerolog
func LoggerMiddleware(logger *zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			log := logger.With().Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Interface("recover_info", rec).
						Bytes("debug_stack", debug.Stack()).
						Msg("HTTP endpoint panic")

					http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}

				log.Info().
					Str("type", "access").
					Timestamp().
					Fields(map[string]interface{}{
						"remote_ip":  r.RemoteAddr,
						"url":        r.URL.Path,
						"method":     r.Method,
						"status":     ww.Status(),
						"latency_ms": float64(time.Since(start).Nanoseconds()) / 1000000.0,
						"bytes_out":  ww.BytesWritten(),
					}).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
