package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrUnsupportedFormat is returned for any suffix outside the supported set.
// This is a hard rejection: downstream chunking assumes coherent text, so
// unknown formats are never decoded as raw bytes.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// CommandRunner executes an external command and returns its stdout. PDF
// extraction shells out to pdftotext; tests substitute a fake runner.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Loader produces normalized text from a stored file, dispatching on the
// declared suffix.
type Loader struct {
	runner CommandRunner
}

func New() *Loader {
	return &Loader{runner: execRunner{}}
}

func NewWithRunner(r CommandRunner) *Loader {
	return &Loader{runner: r}
}

// Supported reports whether a suffix belongs to the supported set.
func (l *Loader) Supported(suffix string) bool {
	switch strings.ToLower(suffix) {
	case ".pdf", ".md", ".txt", ".docx", ".doc":
		return true
	}
	return false
}

// Load reads the file at path and returns its normalized text.
func (l *Loader) Load(ctx context.Context, path, suffix string) (string, error) {
	switch strings.ToLower(suffix) {
	case ".txt":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(raw), nil

	case ".md":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read markdown file: %w", err)
		}
		return flattenMarkdown(string(raw)), nil

	case ".pdf":
		out, err := l.runner.Run(ctx, "pdftotext", path, "-")
		if err != nil {
			return "", fmt.Errorf("pdftotext: %w", err)
		}
		return string(out), nil

	case ".docx", ".doc":
		text, err := extractWordText(path)
		if err != nil {
			return "", fmt.Errorf("extract word document: %w", err)
		}
		return text, nil
	}
	return "", ErrUnsupportedFormat
}
