package loader

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// wordDocument maps the subset of word/document.xml needed for text
// extraction: paragraphs of runs of text elements.
type wordDocument struct {
	Body struct {
		Paragraphs []wordParagraph `xml:"p"`
	} `xml:"body"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Text []wordText `xml:"t"`
}

type wordText struct {
	Content string `xml:",chardata"`
}

// extractWordText pulls paragraph text out of an OOXML word document. The
// file is a zip archive; the body lives in word/document.xml.
func extractWordText(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}
		return parseWordXML(raw), nil
	}
	return "", nil
}

func parseWordXML(raw []byte) string {
	var doc wordDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return ""
	}

	var sb strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, run := range para.Runs {
			for _, t := range run.Text {
				sb.WriteString(t.Content)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
