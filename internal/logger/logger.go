// Package logger builds the process-wide slog logger.
//
// Production writes JSON lines. Everything else gets a compact console
// format meant for a terminal:
//
//	15:04:05 INF flag challenged component=flag_service flag_id=flg-1 retired=true
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Output formats accepted in Config.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string // FormatJSON or FormatConsole; derived from Environment when empty
	Environment string
	Level       slog.Level
	AddSource   bool
	NoColor     bool // plain console output, for pipes and files
}

// New creates a logger from cfg. A nil Writer means stdout.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	format := cfg.Format
	if format == "" {
		format = FormatConsole
		if cfg.Environment == "production" {
			format = FormatJSON
		}
	}

	opts := &slog.HandlerOptions{
		Level:       cfg.Level,
		AddSource:   cfg.AddSource,
		ReplaceAttr: trimSourcePath,
	}

	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = newConsoleHandler(w, opts, !cfg.NoColor)
	}
	return &Logger{Logger: slog.New(h)}
}

// Component returns a child logger tagged with the owning component,
// e.g. "tag_service" or "http".
func (l *Logger) Component(name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// ParseLevel converts a string to slog.Level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

func trimSourcePath(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	if src, ok := a.Value.Any().(*slog.Source); ok {
		return slog.String(slog.SourceKey, filepath.Base(src.File)+":"+strconv.Itoa(src.Line))
	}
	return a
}

// palette holds the escape sequences for one console line. The zero value
// prints without color.
type palette struct {
	reset, dim, bold, attrs string
	levels                  map[slog.Level]string
}

var ansi = palette{
	reset: "\033[0m",
	dim:   "\033[2m",
	bold:  "\033[1m",
	attrs: "\033[36m",
	levels: map[slog.Level]string{
		slog.LevelDebug: "\033[35m",
		slog.LevelInfo:  "\033[32m",
		slog.LevelWarn:  "\033[33m",
		slog.LevelError: "\033[31m",
	},
}

var levelLabels = map[slog.Level]string{
	slog.LevelDebug: "DBG",
	slog.LevelInfo:  "INF",
	slog.LevelWarn:  "WRN",
	slog.LevelError: "ERR",
}

// consoleOutput is shared by a handler and every handler derived from it,
// so concurrent records never interleave on the writer.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

type consoleHandler struct {
	out    *consoleOutput
	opts   *slog.HandlerOptions
	colors palette
	prefix string // group path, "" or "a.b."
	attrs  string // preformatted attributes from WithAttrs
}

func newConsoleHandler(w io.Writer, opts *slog.HandlerOptions, color bool) *consoleHandler {
	h := &consoleHandler{out: &consoleOutput{w: w}, opts: opts}
	if color {
		h.colors = ansi
	}
	return h
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	c := h.colors
	var b strings.Builder

	b.WriteString(c.dim + r.Time.Format("15:04:05") + c.reset + " ")

	label, ok := levelLabels[r.Level]
	if !ok {
		label = r.Level.String()
	}
	b.WriteString(c.levels[r.Level] + label + c.reset + " ")

	if h.opts.AddSource && r.PC != 0 {
		src := trimSourcePath(nil, slog.Any(slog.SourceKey, r.Source()))
		b.WriteString(c.dim + src.Value.String() + c.reset + " ")
	}

	b.WriteString(c.bold + r.Message + c.reset)

	var attrs strings.Builder
	attrs.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&attrs, h.prefix, a)
		return true
	})
	if attrs.Len() > 0 {
		b.WriteString(c.attrs + attrs.String() + c.reset)
	}
	b.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := io.WriteString(h.out.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&b, h.prefix, a)
	}
	clone := *h
	clone.attrs = b.String()
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// writeAttr appends " key=value", flattening group values into dotted keys.
func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			writeAttr(b, inner, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix + a.Key + "=" + formatValue(v))
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
