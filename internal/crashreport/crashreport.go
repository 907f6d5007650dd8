// Package crashreport persists diagnostic records for failures the CLI cannot classify.
// Records are appended to a per-day, per-user file so that an operator can attach it to
// a support request.
package crashreport

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/rust-it-cr/log-collector/internal/errors"
	"github.com/rust-it-cr/log-collector/internal/sanitize"
	"github.com/rust-it-cr/log-collector/internal/version"
	"gopkg.in/yaml.v3"
)

// Record is one structured failure description.
type Record struct {
	IncidentID string         `yaml:"incident_id"`
	Time       time.Time      `yaml:"time"`
	Kind       apperrors.Kind `yaml:"kind"`
	Message    string         `yaml:"message"`
	Cause      string         `yaml:"cause,omitempty"`
	Input      []string       `yaml:"input,omitempty"`
	Stack      string         `yaml:"stack,omitempty"`
	Build      version.Info   `yaml:"build"`
}

// NewRecord describes err. Cause is the innermost error of the wrap chain when it
// differs from the message. input is the command line that triggered the failure.
func NewRecord(err error, input []string) Record {
	r := Record{
		IncidentID: uuid.NewString(),
		Time:       time.Now().UTC(),
		Kind:       apperrors.KindOf(err),
		Input:      input,
		Build:      version.Current(),
	}
	if err == nil {
		return r
	}

	r.Message = err.Error()
	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}
	if root != err {
		r.Cause = root.Error()
	}
	return r
}

// Sink receives records and returns where they were persisted.
type Sink interface {
	Report(r Record) (string, error)
}

// NopSink drops every record. It is used when crash reports are disabled.
type NopSink struct{}

// Report implements Sink.
func (NopSink) Report(Record) (string, error) {
	return "", nil
}

// FileSink appends records to <Dir>/<YYYY-MM-DD>_<user>_logc_error.log.
type FileSink struct {
	Dir  string
	User string
}

// NewFileSink creates a FileSink for the current OS user.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir, User: currentUser()}
}

// Path returns the file a record written at t goes to.
func (s *FileSink) Path(t time.Time) string {
	name := fmt.Sprintf("%s_%s_logc_error.log", t.Format(time.DateOnly), sanitize.Name(s.User))
	return filepath.Join(s.Dir, name)
}

// Report appends r as a YAML document preceded by a human readable header comment.
func (s *FileSink) Report(r Record) (string, error) {
	if r.Time.IsZero() {
		r.Time = time.Now().UTC()
	}
	if r.IncidentID == "" {
		r.IncidentID = uuid.NewString()
	}

	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create crash report directory %s: %w", s.Dir, err)
	}

	body, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal crash record %s: %w", r.IncidentID, err)
	}

	filePath := s.Path(r.Time)
	// Write with secure permissions (0600 = owner read/write only)
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("failed to open crash report %s: %w", filePath, err)
	}

	header := fmt.Sprintf("---\n# %s | ERROR: Execution failed\n", r.Time.Format(time.RFC3339))
	if _, err := f.Write(append([]byte(header), body...)); err != nil {
		_ = f.Close() // Best effort cleanup
		return "", fmt.Errorf("failed to write crash report %s: %w", filePath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close crash report %s: %w", filePath, err)
	}

	return filePath, nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USER", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "unknown"
}
