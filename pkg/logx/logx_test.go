package logx_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/flowx/pkg/logx"
)

func newBufferLogger(level logx.Level, format logx.Format) (*logx.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return logx.NewLogger(&logx.Config{Level: level, Format: format, Output: buf}), buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(logx.LevelWarn, logx.FormatText)

	logger.WithField("k", "v").Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("info line emitted below warn level: %q", buf.String())
	}

	logger.WithField("k", "v").Warn("should be emitted")
	if !strings.Contains(buf.String(), "should be emitted") {
		t.Fatalf("warn line missing: %q", buf.String())
	}
}

func TestLogger_TextFieldsAndError(t *testing.T) {
	logger, buf := newBufferLogger(logx.LevelDebug, logx.FormatText)

	logger.WithError(errors.New("boom")).WithField("attempt", 3).Debug("retrying")

	line := buf.String()
	for _, want := range []string{"[DEBUG]", "retrying", "error=boom", "attempt=3"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	logger, buf := newBufferLogger(logx.LevelInfo, logx.FormatJSON)

	logger.WithField("key", "value").Info("hello")

	var payload map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON line %q: %v", buf.String(), err)
	}
	if payload["level"] != "INFO" || payload["message"] != "hello" || payload["key"] != "value" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]logx.Level{
		"trace":   logx.LevelTrace,
		"DEBUG":   logx.LevelDebug,
		"warning": logx.LevelWarn,
		"off":     logx.LevelOff,
		"bogus":   logx.LevelInfo,
	}
	for in, want := range cases {
		if got := logx.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
