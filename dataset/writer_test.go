package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/table"
)

func makeTable(label, subject string, rows, width int) *table.Table {
	t := &table.Table{Label: label, Width: width}
	for i := range rows {
		feats := make([]float64, width)
		for j := range feats {
			feats[j] = float64(i) + float64(j)/10
		}
		t.Rows = append(t.Rows, table.Row{
			Index:    i,
			Subject:  subject,
			Features: feats,
			Tag:      table.Tag(label, 0),
			Status:   "asthma",
		})
	}
	return t
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return records
}

func countHeaders(records [][]string) int {
	n := 0
	for _, r := range records {
		if r[0] == table.ColumnIndex {
			n++
		}
	}
	return n
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Options{Width: 12})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	if err := w.Append(makeTable("aa", "MB01", 5, 12)); err != nil {
		t.Fatalf("Append first: %v", err)
	}
	if err := w.Append(makeTable("aa", "MB02", 3, 12)); err != nil {
		t.Fatalf("Append second: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "aa.csv"))
	if len(records) != 1+5+3 {
		t.Fatalf("records = %d, want 9", len(records))
	}
	if countHeaders(records) != 1 {
		t.Fatalf("headers = %d, want 1", countHeaders(records))
	}
	if strings.Join(records[0], ",") != strings.Join(table.Header(12), ",") {
		t.Fatalf("header = %v", records[0])
	}

	first := records[1]
	if len(first) != 16 {
		t.Fatalf("row width = %d, want 16", len(first))
	}
	if first[0] != "0" || first[1] != "MB01" || first[2] != "0" || first[3] != "0.1" || first[14] != "aa_0" || first[15] != "asthma" {
		t.Fatalf("unexpected first row %v", first)
	}
	if records[6][1] != "MB02" {
		t.Fatalf("row 6 subject = %q, want MB02", records[6][1])
	}
}

func TestEmptyTableDoesNotTakeHeaderSlot(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, Options{})

	if err := w.Append(makeTable("ee", "MB01", 0, 12)); err != nil {
		t.Fatalf("Append empty: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "ee.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty table created file: %v", err)
	}

	if err := w.Append(makeTable("ee", "MB02", 2, 12)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	records := readCSV(t, filepath.Join(dir, "ee.csv"))
	if countHeaders(records) != 1 || len(records) != 3 {
		t.Fatalf("records = %v", records)
	}
	if records[1][1] != "MB02" {
		t.Fatalf("first data row subject = %q, want MB02", records[1][1])
	}
}

func TestHeaderStatePerFile(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, Options{})

	for _, label := range []string{"aa", "ii", "aa", "ii", "yy"} {
		if err := w.Append(makeTable(label, "s", 1, 12)); err != nil {
			t.Fatalf("Append %s: %v", label, err)
		}
	}
	for label, want := range map[string]int{"aa": 3, "ii": 3, "yy": 2} {
		records := readCSV(t, filepath.Join(dir, label+".csv"))
		if len(records) != want || countHeaders(records) != 1 {
			t.Errorf("%s: records = %d headers = %d", label, len(records), countHeaders(records))
		}
	}

	stats := w.Stats()
	if len(stats) != 3 || stats[0].Label != "aa" || stats[0].Rows != 2 || !stats[0].Header {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestAppendModeKeepsExistingRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oo.csv")

	for run := range 2 {
		w, _ := NewWriter(dir, Options{Mode: ModeAppend})
		if err := w.Append(makeTable("oo", fmt.Sprintf("run%d", run), 2, 12)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	// each run writes its own header on its first write
	records := readCSV(t, path)
	if len(records) != 6 || countHeaders(records) != 2 {
		t.Fatalf("records = %d headers = %d", len(records), countHeaders(records))
	}
}

func TestTruncateModeReplacesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uu.csv")
	if err := os.WriteFile(path, []byte("stale\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, _ := NewWriter(dir, Options{Mode: ModeTruncate})
	for range 2 {
		if err := w.Append(makeTable("uu", "MB01", 2, 12)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records := readCSV(t, path)
	if len(records) != 5 || countHeaders(records) != 1 {
		t.Fatalf("records = %v", records)
	}
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, Options{Width: 12})

	const writers, rows = 16, 25
	var wg sync.WaitGroup
	errCh := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- w.Append(makeTable("xx", fmt.Sprintf("MB%02d", i), rows, 12))
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records := readCSV(t, filepath.Join(dir, "xx.csv"))
	if len(records) != 1+writers*rows {
		t.Fatalf("records = %d, want %d", len(records), 1+writers*rows)
	}
	if countHeaders(records) != 1 || records[0][0] != table.ColumnIndex {
		t.Fatal("header must be written exactly once, first")
	}

	// rows of one subject stay contiguous since each Append is one write
	seen := map[string]bool{}
	prev := ""
	for _, r := range records[1:] {
		if r[1] != prev {
			if seen[r[1]] {
				t.Fatalf("rows of %s interleaved with another subject", r[1])
			}
			seen[r[1]] = true
			prev = r[1]
		}
	}
}

func TestAppendFailureIsWriteError(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, Options{})

	// a directory where the dataset file should be makes the open fail
	if err := os.Mkdir(filepath.Join(dir, "aa.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	err := w.Append(makeTable("aa", "MB01", 1, 12))
	if !errors.Is(err, errs.ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
	if len(w.Stats()) != 0 {
		t.Fatalf("failed append recorded stats: %+v", w.Stats())
	}
}

func TestAppendWidthMismatch(t *testing.T) {
	w, _ := NewWriter(t.TempDir(), Options{Width: 12})
	if err := w.Append(makeTable("aa", "MB01", 1, 4)); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestNewWriterUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	file := filepath.Join(parent, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWriter(filepath.Join(file, "out"), Options{}); !errors.Is(err, errs.ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
}

func TestPathSanitizesLabels(t *testing.T) {
	w, _ := NewWriter(t.TempDir(), Options{})
	if got := filepath.Base(w.Path("a/b")); got != "a_b.csv" {
		t.Fatalf("Path = %q, want a_b.csv", got)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeAppend {
		t.Fatalf("ParseMode(\"\") = %q, %v", m, err)
	}
	if m, err := ParseMode("Truncate"); err != nil || m != ModeTruncate {
		t.Fatalf("ParseMode(Truncate) = %q, %v", m, err)
	}
	if _, err := ParseMode("overwrite"); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestRaggedRowIsWriteKind(t *testing.T) {
	w, _ := NewWriter(t.TempDir(), Options{Width: 12})
	tbl := makeTable("aa", "MB01", 2, 12)
	tbl.Rows[1].Features = tbl.Rows[1].Features[:4]

	err := w.Append(tbl)
	if !errors.Is(err, errs.ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
	if got := errs.Kind(err); got != "write" {
		t.Fatalf("Kind = %q, want write", got)
	}
	if _, statErr := os.Stat(w.Path("aa")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("ragged table created file: %v", statErr)
	}
}
