package sink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sensorline/internal/domain"
	"sensorline/internal/ports"
)

// LogFileSink appends accepted records to a durable, append-only text
// log. Each entry is the ISO-8601 timestamp plus the original raw line,
// followed by an "ALERTS:" summary line when alerts fired. Entries are
// written with a single unbuffered write so an interrupted process never
// leaves a partial trailing entry. A failed append is retried exactly
// once; the second failure is returned to the caller, who treats the
// loss as a warning rather than halting ingestion.
type LogFileSink struct {
	path string

	mu        sync.Mutex
	file      *os.File
	out       io.Writer
	sessionID string
	entries   int64
	sizeBytes int64
	retries   int64

	now func() time.Time
}

// LogStats exposes log store metadata for observability.
type LogStats struct {
	Entries   int64
	SizeBytes int64
	Retries   int64
}

func NewLogFileSink(path string) *LogFileSink {
	return &LogFileSink{
		path: path,
		now:  time.Now,
	}
}

func (s *LogFileSink) Name() string { return "logfile" }

// SessionID returns the id written in this run's session marker. Empty
// until Start succeeds.
func (s *LogFileSink) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Start opens the log handle and writes the once-per-run session marker.
func (s *LogFileSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return fmt.Errorf("log store already open")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log store %s: %w", s.path, err)
	}

	s.file = f
	s.out = f
	s.sessionID = uuid.NewString()

	marker := fmt.Sprintf("--- session %s started %s ---\n",
		s.sessionID, s.now().UTC().Format(time.RFC3339))
	if err := s.write(marker); err != nil {
		f.Close()
		s.file = nil
		s.out = nil
		return fmt.Errorf("write session marker: %w", err)
	}
	return nil
}

func (s *LogFileSink) Emit(r *domain.Record, magnitude float64, alerts []domain.Alert) error {
	entry := s.formatEntry(r, alerts)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return fmt.Errorf("log store not open")
	}

	if err := s.write(entry); err != nil {
		s.retries++
		if err2 := s.write(entry); err2 != nil {
			return fmt.Errorf("append telemetry log after retry: %w", err2)
		}
	}
	s.entries++
	s.sizeBytes += int64(len(entry))
	return nil
}

func (s *LogFileSink) formatEntry(r *domain.Record, alerts []domain.Alert) string {
	var b strings.Builder
	b.WriteString(s.now().UTC().Format(time.RFC3339))
	b.WriteString(" - ")
	b.WriteString(r.Raw)
	b.WriteByte('\n')
	if kinds := domain.AlertKinds(alerts); len(kinds) > 0 {
		b.WriteString("ALERTS: ")
		b.WriteString(strings.Join(kinds, ", "))
		b.WriteByte('\n')
	}
	return b.String()
}

func (s *LogFileSink) write(entry string) error {
	_, err := io.WriteString(s.out, entry)
	return err
}

func (s *LogFileSink) Stats() LogStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LogStats{
		Entries:   s.entries,
		SizeBytes: s.sizeBytes,
		Retries:   s.retries,
	}
}

func (s *LogFileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.out = nil
	return err
}

var _ ports.Sink = (*LogFileSink)(nil)
