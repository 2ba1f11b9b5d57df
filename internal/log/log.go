// Package log provides structured, colored logging for klingseed.
package log

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Component loggers for different parts of the system.
var (
	MasterKey zerolog.Logger
	Search    zerolog.Logger
	Wordlist  zerolog.Logger
	Keyfile   zerolog.Logger
	RPC       zerolog.Logger
	Qt        zerolog.Logger
)

func init() {
	// Default to colored console output
	Logger = NewConsoleLogger(os.Stdout, "info")
	initComponentLoggers()
}

// Init initializes the logger with the given configuration.
// When file is non-empty, logs are written to both the console (colored or
// JSON depending on jsonOutput) and the file (always JSON for machine parsing).
func Init(level string, jsonOutput bool, file string) error {
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}

		lvl := parseLevel(level)

		// Console writer (stdout): colored or JSON per flag.
		var consoleWriter io.Writer
		if jsonOutput {
			consoleWriter = os.Stdout
		} else {
			consoleWriter = zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: "15:04:05",
				NoColor:    false,
			}
		}

		// File writer: always JSON (no ANSI codes, structured for parsing).
		multi := zerolog.MultiLevelWriter(consoleWriter, f)
		Logger = zerolog.New(Redact(multi)).
			Level(lvl).
			With().
			Timestamp().
			Logger()
	} else if jsonOutput {
		Logger = NewJSONLogger(os.Stdout, level)
	} else {
		Logger = NewConsoleLogger(os.Stdout, level)
	}

	initComponentLoggers()
	return nil
}

// NewConsoleLogger creates a colored console logger.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    false,
	}

	lvl := parseLevel(level)
	return zerolog.New(Redact(output)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// NewJSONLogger creates a structured JSON logger.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	lvl := parseLevel(level)
	return zerolog.New(Redact(w)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// parseLevel converts a string level to zerolog.Level.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// initComponentLoggers initializes loggers for each component.
func initComponentLoggers() {
	MasterKey = Logger.With().Str("component", "masterkey").Logger()
	Search = Logger.With().Str("component", "search").Logger()
	Wordlist = Logger.With().Str("component", "wordlist").Logger()
	Keyfile = Logger.With().Str("component", "keyfile").Logger()
	RPC = Logger.With().Str("component", "rpc").Logger()
	Qt = Logger.With().Str("component", "qt").Logger()
}

// WithComponent returns a logger with a component field.
func WithComponent(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info logs an info message.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal logs a fatal message and exits.
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Benchmark helper for timing operations.
func Benchmark(name string) func() {
	start := time.Now()
	return func() {
		Logger.Debug().
			Str("operation", name).
			Dur("duration", time.Since(start)).
			Msg("benchmark")
	}
}

// Redacted replaces the value of any sensitive field.
const Redacted = "[redacted]"

// sensitiveFields are field names whose values never reach a log sink.
// Matching is on the lowercased name.
var sensitiveFields = map[string]bool{
	"mnemonic":   true,
	"passphrase": true,
	"password":   true,
	"secret":     true,
	"seed":       true,
	"wif":        true,
	"key":        true,
	"master_key": true,
}

// redactWriter rewrites zerolog JSON lines so that sensitive fields are
// replaced with Redacted before the line reaches the next writer.
type redactWriter struct {
	next io.Writer
}

// Redact wraps w so that every log line written through it has its
// sensitive fields replaced. All loggers built by this package use it.
func Redact(w io.Writer) zerolog.LevelWriter {
	return redactWriter{next: w}
}

func (r redactWriter) Write(p []byte) (int, error) {
	if _, err := r.next.Write(scrub(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (r redactWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	lw, ok := r.next.(zerolog.LevelWriter)
	if !ok {
		return r.Write(p)
	}
	if _, err := lw.WriteLevel(l, scrub(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// scrub returns line with sensitive top-level fields replaced. Lines without
// a sensitive name, or that are not JSON objects, pass through unchanged.
func scrub(line []byte) []byte {
	if !mayContainSecret(line) {
		return line
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return line
	}
	hit := false
	for name := range fields {
		if sensitiveFields[strings.ToLower(name)] {
			fields[name] = json.RawMessage(`"` + Redacted + `"`)
			hit = true
		}
	}
	if !hit {
		return line
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return line
	}
	return append(out, '\n')
}

func mayContainSecret(line []byte) bool {
	lower := bytes.ToLower(line)
	for name := range sensitiveFields {
		if bytes.Contains(lower, []byte(`"`+name+`"`)) {
			return true
		}
	}
	return false
}

// MnemonicShape describes a mnemonic by its language and length only, for
// logging derivations without any of their words.
type MnemonicShape struct {
	Language      string
	Words         int
	HasPassphrase bool
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (m MnemonicShape) MarshalZerologObject(e *zerolog.Event) {
	e.Str("language", m.Language).
		Int("words", m.Words).
		Bool("has_passphrase", m.HasPassphrase)
}
