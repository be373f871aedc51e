package office

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"study-set-server/internal/domain"
)

const (
	defaultConversionTimeout = 120 * time.Second
	probeTimeout             = 30 * time.Second
	maxOutputInError         = 2048
)

// Engine drives a headless LibreOffice (soffice) binary
type Engine struct {
	binary  string
	timeout time.Duration
	logger  domain.Logger
}

// NewEngine creates a new LibreOffice engine
func NewEngine(binary string, timeout time.Duration, logger domain.Logger) *Engine {
	if strings.TrimSpace(binary) == "" {
		binary = "soffice"
	}
	if timeout <= 0 {
		timeout = defaultConversionTimeout
	}
	return &Engine{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// ConvertToPDF runs one conversion job. Caller cancellation is ignored; the job
// runs until it finishes or the engine timeout expires.
func (e *Engine) ConvertToPDF(ctx context.Context, data []byte, sourceExt string) ([]byte, error) {
	ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(sourceExt)), ".")
	if ext == "" {
		return nil, fmt.Errorf("source extension required")
	}

	workDir, err := os.MkdirTemp("", "soffice-convert-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "input."+ext)
	if err := os.WriteFile(inputPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("write input file: %w", err)
	}
	outDir := filepath.Join(workDir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir outDir: %w", err)
	}

	started := time.Now()
	out, err := e.run(ctx, e.timeout, workDir, inputPath, outDir)
	if err != nil {
		return nil, fmt.Errorf("soffice convert failed: %w; out=%s", err, trimOutput(out))
	}

	pdfPath := filepath.Join(outDir, "input.pdf")
	if _, statErr := os.Stat(pdfPath); statErr != nil {
		pdfPath2, err2 := newestFileWithExt(outDir, ".pdf")
		if err2 != nil {
			return nil, fmt.Errorf("pdf output not found at %s and scan failed: %v; soffice out=%s", pdfPath, err2, trimOutput(out))
		}
		pdfPath = pdfPath2
	}

	pdf, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read pdf output: %w", err)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("soffice produced an empty pdf; out=%s", trimOutput(out))
	}

	e.logger.Debug("soffice conversion finished", "source_ext", ext, "pdf_bytes", len(pdf), "elapsed_ms", time.Since(started).Milliseconds())
	return pdf, nil
}

// Available runs a throwaway conversion of a malformed document.
// A job that ran and failed still proves the binary exists; only a failure to
// start the process counts as unavailable. Nothing is cached.
func (e *Engine) Available(ctx context.Context) bool {
	workDir, err := os.MkdirTemp("", "soffice-probe-*")
	if err != nil {
		e.logger.Warn("soffice probe could not create work dir", "error", err)
		return false
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "probe.docx")
	if err := os.WriteFile(inputPath, []byte("probe"), 0o600); err != nil {
		e.logger.Warn("soffice probe could not write input", "error", err)
		return false
	}

	_, err = e.run(ctx, probeTimeout, workDir, inputPath, workDir)
	if err == nil {
		return true
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.logger.Debug("soffice probe job failed but binary is present", "exit_code", exitErr.ExitCode())
		return true
	}

	e.logger.Warn("soffice is not available", "binary", e.binary, "error", err)
	return false
}

func (e *Engine) run(ctx context.Context, timeout time.Duration, workDir, inputPath, outDir string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	// a private profile lets concurrent jobs run without fighting over the user lock
	profile := "file://" + filepath.ToSlash(filepath.Join(workDir, "profile"))

	cmd := exec.CommandContext(ctx, e.binary,
		"-env:UserInstallation="+profile,
		"--headless",
		"--nologo",
		"--nolockcheck",
		"--nodefault",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	)
	cmd.Dir = workDir
	// soffice forks soffice.bin; do not wait forever on pipes a killed child left open
	cmd.WaitDelay = 5 * time.Second

	return cmd.CombinedOutput()
}

func newestFileWithExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var newest string
	var newestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != ext {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = filepath.Join(dir, entry.Name())
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no %s files in %s", ext, dir)
	}
	return newest, nil
}

func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutputInError {
		return s[:maxOutputInError] + "..."
	}
	return s
}
