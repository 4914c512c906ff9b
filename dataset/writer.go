// Package dataset appends per-phoneme feature tables to persistent CSV files,
// one file per label, writing each file's header once per run.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/logging"
	"github.com/RyanBlaney/sonido-phonon/table"
)

// Mode controls what happens to a dataset file that exists before the run.
type Mode string

const (
	// ModeAppend keeps existing content and appends after it.
	ModeAppend Mode = "append"
	// ModeTruncate removes an existing file before the run's first write to it.
	ModeTruncate Mode = "truncate"
)

// ParseMode validates a configured mode. Empty means ModeAppend.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAppend:
		return ModeAppend, nil
	case ModeTruncate:
		return ModeTruncate, nil
	default:
		return "", errs.Configurationf("unknown dataset mode %q", s)
	}
}

// Options configures a Writer.
type Options struct {
	Mode  Mode
	Width int // features per row; 0 accepts any width
}

// FileStats describes what a run wrote to one dataset file.
type FileStats struct {
	Label  string
	Path   string
	Rows   int
	Header bool
}

// fileState is the per-destination write token: it serializes appends to one
// file and remembers whether this run already wrote its header.
type fileState struct {
	mu            sync.Mutex
	path          string
	prepared      bool
	headerWritten bool
	rows          int
}

// Writer owns the write state of every dataset file in an output directory.
// It is safe for concurrent use.
type Writer struct {
	dir    string
	opts   Options
	logger logging.Logger

	mu    sync.Mutex
	files map[string]*fileState
}

// NewWriter creates dir if needed and returns a Writer for it.
func NewWriter(dir string, opts Options) (*Writer, error) {
	if opts.Mode == "" {
		opts.Mode = ModeAppend
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Writef("create output dir %s: %w", dir, err)
	}
	return &Writer{
		dir:  dir,
		opts: opts,
		logger: logging.WithFields(logging.Fields{
			"component": "dataset_writer",
			"dir":       dir,
		}),
		files: make(map[string]*fileState),
	}, nil
}

// Path is the dataset file for label.
func (w *Writer) Path(label string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, label)
	return filepath.Join(w.dir, name+".csv")
}

func (w *Writer) state(label string) *fileState {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.files[label]
	if !ok {
		st = &fileState{path: w.Path(label)}
		w.files[label] = st
	}
	return st
}

// Append writes t's rows to its label's file in a single write, preceded by
// the header if this is the run's first write to that file. An empty table
// writes nothing and leaves the header pending. On failure the file is cut
// back to its size before the call.
func (w *Writer) Append(t *table.Table) error {
	if t == nil || t.Len() == 0 {
		return nil
	}
	if w.opts.Width > 0 && t.Width != w.opts.Width {
		return errs.Configurationf("table %s has width %d, dataset expects %d", t.Label, t.Width, w.opts.Width)
	}

	st := w.state(t.Label)
	st.mu.Lock()
	defer st.mu.Unlock()

	// serializes against other processes appending to the same dataset
	lock := flock.New(st.path + ".lock")
	if err := lock.Lock(); err != nil {
		return errs.Writef("lock %s: %w", st.path, err)
	}
	defer lock.Unlock()

	if !st.prepared {
		if w.opts.Mode == ModeTruncate {
			if err := os.Remove(st.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return errs.Writef("truncate %s: %w", st.path, err)
			}
		}
		st.prepared = true
	}

	payload, err := render(t, !st.headerWritten)
	if err != nil {
		return errs.Writef("encode %s rows: %w", t.Label, err)
	}

	if err := appendFile(st.path, payload); err != nil {
		return err
	}

	wroteHeader := !st.headerWritten
	st.headerWritten = true
	st.rows += t.Len()

	w.logger.Debug("Appended table", logging.Fields{
		"label":  t.Label,
		"rows":   t.Len(),
		"header": wroteHeader,
	})
	return nil
}

// appendFile writes payload at the end of path and syncs it. Any failure
// truncates the file back to where the write began.
func appendFile(path string, payload []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return errs.Writef("open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errs.Writef("stat %s: %w", path, err)
	}
	offset := info.Size()

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = errs.Writef("close %s: %w", path, closeErr)
		}
		if err != nil {
			// a failed truncate is not reported over the write error
			_ = os.Truncate(path, offset)
		}
	}()

	if _, err := f.Write(payload); err != nil {
		return errs.Writef("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return errs.Writef("sync %s: %w", path, err)
	}
	return nil
}

func render(t *table.Table, header bool) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if header {
		if err := cw.Write(table.Header(t.Width)); err != nil {
			return nil, err
		}
	}

	record := make([]string, t.Width+4)
	for _, row := range t.Rows {
		if len(row.Features) != t.Width {
			return nil, errs.Configurationf("row %s has %d features, want %d", row.Tag, len(row.Features), t.Width)
		}
		record[0] = strconv.Itoa(row.Index)
		record[1] = row.Subject
		for i, v := range row.Features {
			record[2+i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		record[2+t.Width] = row.Tag
		record[3+t.Width] = row.Status
		if err := cw.Write(record); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stats reports per-file totals for this run, sorted by label.
func (w *Writer) Stats() []FileStats {
	w.mu.Lock()
	labels := make([]string, 0, len(w.files))
	for label := range w.files {
		labels = append(labels, label)
	}
	w.mu.Unlock()
	sort.Strings(labels)

	out := make([]FileStats, 0, len(labels))
	for _, label := range labels {
		st := w.state(label)
		st.mu.Lock()
		if st.rows > 0 {
			out = append(out, FileStats{
				Label:  label,
				Path:   st.path,
				Rows:   st.rows,
				Header: st.headerWritten,
			})
		}
		st.mu.Unlock()
	}
	return out
}
