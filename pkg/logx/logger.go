package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Format selects how log lines are rendered.
type Format string

const (
	// FormatText renders human-readable lines
	FormatText Format = "text"
	// FormatJSON renders one JSON object per line
	FormatJSON Format = "json"
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Config holds logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stdout,
	}
}

// LoadFromEnv builds a Config from FLOWX_LOG_LEVEL and FLOWX_LOG_FORMAT.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("FLOWX_LOG_LEVEL"); v != "" {
		cfg.Level = ParseLevel(v)
	}
	if v := os.Getenv("FLOWX_LOG_FORMAT"); strings.EqualFold(v, "json") {
		cfg.Format = FormatJSON
	}
	return cfg
}

// Logger is the main logger instance
type Logger struct {
	mu     sync.Mutex
	level  Level
	format Format
	writer io.Writer
}

// NewLogger creates a new logger with the given config
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	writer := config.Output
	if writer == nil {
		writer = os.Stdout
	}
	return &Logger{
		level:  config.Level,
		format: config.Format,
		writer: writer,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// log is the internal logging method
func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	enabled := l.level.Enabled(level)
	format := l.format
	l.mu.Unlock()

	if !enabled {
		return
	}

	now := time.Now()

	var line []byte
	if format == FormatJSON {
		payload := map[string]interface{}{
			"time":    now.Format(time.RFC3339Nano),
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range fields {
			payload[k] = v
		}
		if err != nil {
			payload["error"] = err.Error()
		}
		encoded, encErr := json.Marshal(payload)
		if encErr != nil {
			fmt.Fprintf(os.Stderr, "logx: error formatting log: %v\n", encErr)
			return
		}
		line = append(encoded, '\n')
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s] %s", now.Format("2006-01-02 15:04:05.000"), level.String(), msg)
		if err != nil {
			fmt.Fprintf(&b, " error=%v", err)
		}
		if len(fields) > 0 {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, fields[k])
			}
		}
		b.WriteByte('\n')
		line = []byte(b.String())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, writeErr := l.writer.Write(line); writeErr != nil {
		fmt.Fprintf(os.Stderr, "logx: error writing log: %v\n", writeErr)
	}
}

// WithField creates a new entry with a field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError creates a new entry with an error
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}
