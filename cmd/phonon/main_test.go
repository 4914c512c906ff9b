package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-phonon/errs"
	"github.com/RyanBlaney/sonido-phonon/internal/testsupport"
	"github.com/RyanBlaney/sonido-phonon/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("output missing %q:\n%s", want, out)
	}
}

func TestConfigShowDefaults(t *testing.T) {
	out, err := runCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "# defaults")
	requireContains(t, out, "[features]")
	requireContains(t, out, "num_coefficients = 13")
}

func TestConfigValidateExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phonon.toml")
	testsupport.WriteFile(t, path, "[pipeline]\nworkers = 2\n")

	out, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, path)
}

func TestConfigInvalidLevel(t *testing.T) {
	_, err := runCLI(t, "--log-level", "loud", "config", "show")
	if err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.anote.txt")
	testsupport.WriteFile(t, path, testsupport.Annotation(
		testsupport.AnnotationRow{Start: 0.5, End: 1, Label: "aa"},
		testsupport.AnnotationRow{Start: 1.5, End: 2, Label: "aa"},
		testsupport.AnnotationRow{Start: 2.5, End: 3, Label: "qq"},
	))

	out, err := runCLI(t, "inspect", path, "--sample-rate", "1000")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, out, "3 spans")
	requireContains(t, out, "unrecognized")
	requireContains(t, out, "2000")
}

func TestRunCommand(t *testing.T) {
	data := t.TempDir()
	out := filepath.Join(t.TempDir(), "datasets")
	testsupport.WriteSubject(t, testsupport.Subject{
		Dir:        filepath.Join(data, "MB01"),
		Name:       "MB01",
		Status:     "healthy",
		SampleRate: 16000,
		Samples:    16000,
		Rows:       []testsupport.AnnotationRow{{Start: 0, End: 0.0625, Label: "oo"}},
	})
	testsupport.WriteSubject(t, testsupport.Subject{
		Dir:          filepath.Join(data, "MB02"),
		SampleRate:   16000,
		Samples:      16000,
		SkipMetadata: true,
	})

	stdout, err := runCLI(t, "run", "--data", data, "--out", out, "--workers", "2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, stdout, "processed")
	requireContains(t, stdout, "no metadata file")
	requireContains(t, stdout, "oo.csv")

	if _, err := os.Stat(filepath.Join(out, "oo.csv")); err != nil {
		t.Fatalf("oo.csv: %v", err)
	}
}

func TestRunCommandRejectsZeroWorkers(t *testing.T) {
	_, err := runCLI(t, "run", "--data", t.TempDir(), "--out", t.TempDir(), "--workers", "0")
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}
