package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func TestSetupLevel(t *testing.T) {
	var buf bytes.Buffer
	closeFn, err := Setup(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()

	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info message should be filtered at warn level")
	}
	if !strings.Contains(out, `"k":"v"`) || !strings.Contains(out, "shown") {
		t.Errorf("Expected JSON warn line, got %q", out)
	}
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	var buf bytes.Buffer
	closeFn, err := Setup(Options{Level: "debug", Pretty: true, File: path, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug().Msg("to both")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"message":"to both"`) {
		t.Errorf("Log file missing message: %q", data)
	}
	if !strings.Contains(buf.String(), "to both") {
		t.Errorf("Console missing message: %q", buf.String())
	}
}

func TestSetupBadLevel(t *testing.T) {
	if _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
