// Package reportdir reads plain-text inspection reports from a directory.
package reportdir

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/fire-inspection-etl/internal/domain"
	"github.com/fsnotify/fsnotify"
)

// ReportExt is the extension of report files.
const ReportExt = ".txt"

// Scan returns every report file in dir, sorted by file name. The file name
// is used as the source id.
func Scan(dir string) ([]domain.RawReport, error) {
	names, err := listReports(dir)
	if err != nil {
		return nil, err
	}
	reports := make([]domain.RawReport, 0, len(names))
	for _, name := range names {
		raw, err := readReport(dir, name)
		if err != nil {
			return nil, err
		}
		reports = append(reports, raw)
	}
	return reports, nil
}

func listReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read report dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && isReport(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isReport(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ReportExt) && !strings.HasPrefix(name, ".")
}

func readReport(dir, name string) (domain.RawReport, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RawReport{}, fmt.Errorf("read report %s: %w", name, err)
	}
	raw := domain.RawReport{
		Key:     []byte(name),
		Value:   data,
		Headers: map[string]string{"source_id": name},
		Topic:   dir,
	}
	if info, err := os.Stat(path); err == nil {
		raw.Timestamp = info.ModTime()
	}
	return raw, nil
}

// Source is a pipeline.BatchExtractor over a report directory. It first
// yields the files present at start-up; when watching, it then yields files
// as they are created or rewritten.
type Source struct {
	dir     string
	pending []string
	watcher *fsnotify.Watcher
	settle  time.Duration
	logger  *slog.Logger
}

// SourceOption customizes a Source.
type SourceOption func(*Source)

// WithWatch enables fsnotify watching. settle is how long to keep collecting
// file events after the first one before emitting a batch.
func WithWatch(settle time.Duration) SourceOption {
	return func(s *Source) {
		s.settle = settle
	}
}

// NewSource scans dir and, when WithWatch is given, starts watching it.
func NewSource(dir string, logger *slog.Logger, opts ...SourceOption) (*Source, error) {
	s := &Source{dir: dir, logger: logger}
	for _, opt := range opts {
		opt(s)
	}

	names, err := listReports(dir)
	if err != nil {
		return nil, err
	}
	s.pending = names

	if s.settle > 0 {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		s.watcher = w
	}

	logger.Info("report directory opened", "dir", dir, "reports", len(names), "watch", s.watcher != nil)
	return s, nil
}

// ExtractBatch returns up to batchSize reports. Once the initial scan is
// drained it blocks until new files appear or ctx is done.
func (s *Source) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawReport, error) {
	if len(s.pending) == 0 {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
	}

	n := min(batchSize, len(s.pending))
	names := s.pending[:n]
	s.pending = s.pending[n:]

	batch := make([]domain.RawReport, 0, n)
	for _, name := range names {
		raw, err := readReport(s.dir, name)
		if err != nil {
			// The file may have been removed between the event and the read.
			s.logger.Warn("skipping unreadable report", "source_id", name, "error", err)
			continue
		}
		batch = append(batch, raw)
	}
	return batch, nil
}

// wait blocks until at least one report file changes, then collects further
// changes for the settle period.
func (s *Source) wait(ctx context.Context) error {
	if s.watcher == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	seen := make(map[string]bool)
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer:
			return nil
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			s.logger.Warn("report watcher error", "error", err)
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isReport(name) || seen[name] {
				continue
			}
			seen[name] = true
			s.pending = append(s.pending, name)
			if timer == nil {
				timer = time.After(s.settle)
			}
		}
	}
}

// Close stops watching. It is safe to call on a non-watching Source.
func (s *Source) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}
