package loader

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	output []byte
	err    error
	calls  int
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	f.calls++
	return f.output, f.err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSupported(t *testing.T) {
	l := New()
	for _, suffix := range []string{".pdf", ".md", ".txt", ".docx", ".doc", ".TXT"} {
		assert.True(t, l.Supported(suffix), suffix)
	}
	for _, suffix := range []string{".png", ".exe", "", ".html"} {
		assert.False(t, l.Supported(suffix), suffix)
	}
}

func TestLoadPlainText(t *testing.T) {
	path := writeTempFile(t, "doc.txt", "plain text content")
	text, err := New().Load(context.Background(), path, ".txt")
	require.NoError(t, err)
	assert.Equal(t, "plain text content", text)
}

func TestLoadMarkdownFlattened(t *testing.T) {
	md := "# Title\n\nSome **bold** text with a [link](https://example.com).\n\n- item one\n- item two\n"
	path := writeTempFile(t, "doc.md", md)

	text, err := New().Load(context.Background(), path, ".md")
	require.NoError(t, err)
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "**")
	assert.NotContains(t, text, "](")
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "bold")
	assert.Contains(t, text, "link")
	assert.Contains(t, text, "item one")
}

func TestLoadPDFUsesRunner(t *testing.T) {
	runner := &fakeRunner{output: []byte("extracted pdf text")}
	l := NewWithRunner(runner)

	text, err := l.Load(context.Background(), "/tmp/whatever.pdf", ".pdf")
	require.NoError(t, err)
	assert.Equal(t, "extracted pdf text", text)
	assert.Equal(t, 1, runner.calls)
}

func TestLoadPDFRunnerFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("pdftotext not installed")}
	_, err := NewWithRunner(runner).Load(context.Background(), "/tmp/x.pdf", ".pdf")
	assert.Error(t, err)
}

func TestLoadWordDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>First paragraph.</t></r></p>
    <p><r><t>Second </t></r><r><t>paragraph.</t></r></p>
  </body>
</document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	text, err := New().Load(context.Background(), path, ".docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := New().Load(context.Background(), "/tmp/file.png", ".png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
