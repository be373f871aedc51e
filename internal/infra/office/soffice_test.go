package office

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields ...interface{})             {}
func (nopLogger) Error(msg string, err error, fields ...interface{}) {}
func (nopLogger) Debug(msg string, fields ...interface{})            {}
func (nopLogger) Warn(msg string, fields ...interface{})             {}

// fakeSoffice writes an executable shell script standing in for soffice
func fakeSoffice(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake soffice scripts need a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "soffice")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake soffice: %v", err)
	}
	return path
}

const convertingScript = `outdir=""
input=""
while [ $# -gt 0 ]; do
  case "$1" in
    --outdir) outdir="$2"; shift 2 ;;
    -*) shift ;;
    *) input="$1"; shift ;;
  esac
done
base=$(basename "$input")
name="${base%.*}"
echo '%PDF-1.4 fake output' > "$outdir/$name.pdf"`

func TestEngine_ConvertToPDF(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, convertingScript), 10*time.Second, nopLogger{})

	pdf, err := engine.ConvertToPDF(context.Background(), []byte("PK docx bytes"), ".DOCX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF-1.4 fake output") {
		t.Fatalf("unexpected output %q", string(pdf))
	}
}

func TestEngine_ConvertFindsRenamedOutput(t *testing.T) {
	script := `while [ $# -gt 0 ]; do
  case "$1" in
    --outdir) outdir="$2"; shift 2 ;;
    *) shift ;;
  esac
done
echo '%PDF-1.4 renamed' > "$outdir/Document1.pdf"`
	engine := NewEngine(fakeSoffice(t, script), 10*time.Second, nopLogger{})

	pdf, err := engine.ConvertToPDF(context.Background(), []byte("x"), "pptx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(pdf), "renamed") {
		t.Fatalf("unexpected output %q", string(pdf))
	}
}

func TestEngine_ConvertReportsEngineOutput(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, `echo "Error: source file could not be loaded" >&2; exit 1`), 10*time.Second, nopLogger{})

	_, err := engine.ConvertToPDF(context.Background(), []byte("x"), "docx")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "source file could not be loaded") {
		t.Fatalf("expected engine message in error, got %v", err)
	}
}

func TestEngine_ConvertWithoutOutputFails(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, `exit 0`), 10*time.Second, nopLogger{})

	if _, err := engine.ConvertToPDF(context.Background(), []byte("x"), "doc"); err == nil {
		t.Fatalf("expected error when no pdf is produced")
	}
}

func TestEngine_ConvertIgnoresCallerCancellation(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, convertingScript), 10*time.Second, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := engine.ConvertToPDF(ctx, []byte("x"), "docx"); err != nil {
		t.Fatalf("expected conversion to ignore a cancelled caller context, got %v", err)
	}
}

func TestEngine_ConvertTimesOut(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, `exec sleep 5`), 200*time.Millisecond, nopLogger{})

	started := time.Now()
	if _, err := engine.ConvertToPDF(context.Background(), []byte("x"), "docx"); err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(started) > 4*time.Second {
		t.Fatalf("conversion did not respect its timeout")
	}
}

func TestEngine_AvailableWhenJobFails(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, `exit 1`), time.Second, nopLogger{})

	if !engine.Available(context.Background()) {
		t.Fatalf("a binary that runs and rejects the input must count as available")
	}
}

func TestEngine_AvailableWhenJobSucceeds(t *testing.T) {
	engine := NewEngine(fakeSoffice(t, convertingScript), time.Second, nopLogger{})

	if !engine.Available(context.Background()) {
		t.Fatalf("expected available")
	}
}

func TestEngine_UnavailableWhenBinaryMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-soffice")
	if NewEngine(missing, time.Second, nopLogger{}).Available(context.Background()) {
		t.Fatalf("expected unavailable for a missing absolute path")
	}
	if NewEngine("soffice-definitely-not-on-path-4d1c", time.Second, nopLogger{}).Available(context.Background()) {
		t.Fatalf("expected unavailable for a binary not on PATH")
	}
}

func TestEngine_UnavailableWhenNotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if NewEngine(path, time.Second, nopLogger{}).Available(context.Background()) {
		t.Fatalf("expected unavailable when the binary cannot be spawned")
	}
}

func TestEngine_ProbeIsNotCached(t *testing.T) {
	dir := t.TempDir()
	counter := filepath.Join(dir, "count")
	engine := NewEngine(fakeSoffice(t, `echo run >> "`+counter+`"; exit 1`), time.Second, nopLogger{})

	engine.Available(context.Background())
	engine.Available(context.Background())

	data, err := os.ReadFile(counter)
	if err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if runs := strings.Count(string(data), "run"); runs != 2 {
		t.Fatalf("expected two probe executions, got %d", runs)
	}
}
