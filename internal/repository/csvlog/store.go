// Package csvlog keeps the connectivity log as a CSV file with the newest
// record directly after the header.
package csvlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/NordCoder/Netprobe/internal/domain/record"
)

const FileName = "connectivity_summary.csv"

// ErrNotFound wraps os.ErrNotExist so callers can test for either.
var ErrNotFound = fmt.Errorf("log file not found: %w", os.ErrNotExist)

var (
	_ record.Store  = (*Store)(nil)
	_ record.Reader = (*Store)(nil)
)

// Store is not safe for concurrent use across processes; callers schedule
// at most one monitor run per log directory.
type Store struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
	log  *zap.Logger
}

func New(fs afero.Fs, dir string, log *zap.Logger) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure log directory: %w", err)
	}
	return &Store{
		fs:   fs,
		path: filepath.Join(dir, FileName),
		log:  log.With(zap.String("component", "csvlog")),
	}, nil
}

func (s *Store) Path() string { return s.path }

// Prepend rewrites the log as header, r, then every existing row in its
// previous order. If the rewrite fails it falls back to appending r.
func (s *Store) Prepend(_ context.Context, r record.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readRows()
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Error("read existing log, starting fresh", zap.String("path", s.path), zap.Error(err))
		existing = nil
	}

	rows := make([][]string, 0, len(existing)+2)
	rows = append(rows, record.Columns, r.Row())
	rows = append(rows, existing...)

	if err := s.rewrite(rows); err != nil {
		s.log.Error("rewrite log, falling back to append", zap.String("path", s.path), zap.Error(err))
		if ferr := s.appendRow(r.Row(), len(existing) == 0); ferr != nil {
			return fmt.Errorf("fallback append: %w", ferr)
		}
	}
	return nil
}

// Load returns every record in stored order, newest first.
func (s *Store) Load(_ context.Context) ([]record.LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	out := make([]record.LogRecord, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]string, len(record.Columns))
		for i, col := range record.Columns {
			fields[col] = row[i]
		}
		out = append(out, record.FromFields(fields))
	}
	return out, nil
}

// readRows returns data rows re-keyed into record.Columns order, so logs
// with reordered or missing columns still load.
func (s *Store) readRows() ([][]string, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse log header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[h] = i
	}

	var rows [][]string
	for {
		raw, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse log: %w", err)
		}
		row := make([]string, len(record.Columns))
		for i, col := range record.Columns {
			if j, ok := index[col]; ok && j < len(raw) {
				row[i] = raw[j]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) rewrite(rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode log: %w", err)
	}

	tmp := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := afero.WriteFile(s.fs, tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp log: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replace log file: %w", err)
	}
	return nil
}

func (s *Store) appendRow(row []string, mayNeedHeader bool) error {
	f, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.UseCRLF = true
	if mayNeedHeader {
		if st, err := f.Stat(); err == nil && st.Size() == 0 {
			if err := w.Write(record.Columns); err != nil {
				return err
			}
		}
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
