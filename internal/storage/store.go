package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/noznum/tracklab/internal/models"
	"github.com/noznum/tracklab/internal/table"
)

// StatsFile is the name of the shared statistics log inside the output directory
const StatsFile = "stats.csv"

// Store writes segment tables and the statistics log into one directory.
// Every write goes to a temporary file in the same directory which is synced
// and renamed over the target, so an interrupted call leaves the previous
// content intact.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates the output directory if needed and returns a store over it
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("output directory must be set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the output directory
func (s *Store) Dir() string {
	return s.dir
}

// StatsPath returns the path of the statistics log
func (s *Store) StatsPath() string {
	return filepath.Join(s.dir, StatsFile)
}

// SegmentPath returns the path a segment with this label is written to
func (s *Store) SegmentPath(label string) string {
	return filepath.Join(s.dir, label+".csv")
}

// ValidateLabel checks that label can name a segment file. Surrounding
// whitespace is ignored.
func ValidateLabel(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.ErrEmptyLabel
	}
	if label == "." || label == ".." || strings.ContainsAny(label, `/\:*?"<>|`+"\x00") {
		return fmt.Errorf("%q: %w", label, models.ErrInvalidLabel)
	}
	if strings.EqualFold(label+".csv", StatsFile) {
		return fmt.Errorf("%q is reserved: %w", label, models.ErrInvalidLabel)
	}
	return nil
}

// AppendSegment writes rows to <label>.csv and returns its path. Segments are
// never overwritten: an existing file for the label is an error.
func (s *Store) AppendSegment(rows []models.Sample, label string) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}
	label = strings.TrimSpace(label)

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.SegmentPath(label)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s: %w", path, models.ErrSegmentExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := table.WriteSegment(&buf, rows); err != nil {
		return "", fmt.Errorf("failed to encode segment %s: %w", label, err)
	}
	if err := s.replace(path, &buf); err != nil {
		return "", err
	}

	log.Printf("[Store] Wrote segment %s (%d rows)", path, len(rows))
	return path, nil
}

// AppendStats appends one record to the statistics log. The header is written
// only when the log does not exist yet or is empty.
func (s *Store) AppendStats(rec models.StatsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.StatsPath()
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	if err := table.WriteStats(&buf, []models.StatsRecord{rec}, len(existing) == 0); err != nil {
		return fmt.Errorf("failed to encode stats for %s: %w", rec.Label, err)
	}
	if err := s.replace(path, &buf); err != nil {
		return err
	}

	log.Printf("[Store] Appended stats for %s to %s", rec.Label, path)
	return nil
}

// replace atomically swaps the content of path for r
func (s *Store) replace(path string, r io.Reader) (err error) {
	tmp, err := os.CreateTemp(s.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename into %s: %w", path, err)
	}
	return nil
}

// RemoveSegment deletes the table written for label. Used to roll back a save
// whose statistics could not be appended.
func (s *Store) RemoveSegment(label string) error {
	if err := ValidateLabel(label); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.SegmentPath(strings.TrimSpace(label))
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}

// HasSegment reports whether a table exists for label
func (s *Store) HasSegment(label string) bool {
	_, err := os.Stat(s.SegmentPath(strings.TrimSpace(label)))
	return err == nil
}
