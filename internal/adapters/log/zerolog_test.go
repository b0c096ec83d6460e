package log

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/extauth/internal/ports"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(zerolog.New(&buf))

	z.Warn("backend denied request",
		ports.String("verb", "isuser"),
		ports.String("reason", "not found"),
		ports.Int("fields", 3),
		ports.Bool("success", false),
		ports.Duration("elapsed", time.Second),
		ports.Err(errors.New("boom")),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"verb":"isuser"`,
		`"reason":"not found"`,
		`"fields":3`,
		`"success":false`,
		`"error":"boom"`,
		`"message":"backend denied request"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line %s missing %s", out, want)
		}
	}
}

func TestNewZerologLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	z := NewZerologAdapterWithLogger(NewZerologLogger(&buf, false))
	z.Debug("hidden")
	z.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line logged at info level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info line missing: %s", out)
	}
	if !strings.Contains(out, fmt.Sprintf("pid=%d", os.Getpid())) {
		t.Errorf("pid missing: %s", out)
	}

	buf.Reset()
	z = NewZerologAdapterWithLogger(NewZerologLogger(&buf, true))
	z.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug line missing in debug mode: %s", buf.String())
	}
}

func TestNoopLogger(t *testing.T) {
	var l ports.Logger = NewNoopLogger()
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x", ports.Err(errors.New("y")))
}
