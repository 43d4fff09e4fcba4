package logging_test

import (
	"bytes"
	"encoding/json"
	stdlog "log"
	"testing"

	"github.com/franckalain/fittrack/internal/logging"
	"github.com/pkg/errors"
)

func TestNew(t *testing.T) {
	// Given a logger at warn level
	buf := new(bytes.Buffer)
	logger := logging.Component(logging.New(buf, "WARN", false), "ledger")

	// When info and error events are logged
	logger.Info().Msg("dropped")
	logger.Error().Stack().Err(errors.New("BOOM")).Msg("kept")

	// Then only the error is written, with its component and stack
	var event struct {
		Level     string `json:"level"`
		Message   string `json:"message"`
		Component string `json:"component"`
		Error     string `json:"error"`
		Stack     []map[string]string
	}
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("expected a single JSON event: %v: %s", err, buf.String())
	}
	if event.Level != "error" || event.Message != "kept" || event.Component != "ledger" || event.Error != "BOOM" {
		t.Errorf("event %+v", event)
	}
	if len(event.Stack) == 0 {
		t.Error("stack was not marshalled")
	}
}

func TestNewUnknownLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := logging.New(buf, "chatty", false)
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	if bytes.Contains(buf.Bytes(), []byte("hidden")) || !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Errorf("unknown level should mean info: %s", buf.String())
	}
}

func TestStdlibRedirect(t *testing.T) {
	buf := new(bytes.Buffer)
	logging.New(buf, "debug", false)
	stdlog.Print("from the log package")
	if !bytes.Contains(buf.Bytes(), []byte("from the log package")) {
		t.Errorf("std log output not captured: %s", buf.String())
	}
}
