package ingest

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNamespace         = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	markupCompatNamespace = "http://schemas.openxmlformats.org/markup-compatibility/2006"
	textBoxElement        = "txbxContent"
	compatFallbackElement = "mc:Fallback"
)

// readDocx returns the text of every top-level body paragraph, one per line.
func readDocx(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var document *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", errors.New("open docx: word/document.xml not found")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open document part: %w", err)
	}
	defer rc.Close()

	paragraphs, err := bodyParagraphs(rc)
	if err != nil {
		return "", fmt.Errorf("parse document part: %w", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// elementName maps a tag to the name bodyParagraphs tracks, or "" for tags it ignores.
func elementName(n xml.Name) string {
	switch {
	case n.Space == wordNamespace:
		return n.Local
	case n.Space == markupCompatNamespace && n.Local == "Fallback":
		return compatFallbackElement
	}
	return ""
}

// bodyParagraphs walks document.xml and collects paragraphs that are direct children of
// w:body. Paragraphs nested in tables are skipped, and text inside text boxes or
// compatibility fallbacks is left out of the paragraph that anchors it.
func bodyParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []string
		paragraphs []string
		current    *strings.Builder
		inText     bool
		hidden     int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := elementName(t.Name)
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			stack = append(stack, name)

			if name == textBoxElement || name == compatFallbackElement {
				hidden++
				continue
			}
			if hidden > 0 {
				continue
			}
			if current == nil {
				if name == "p" && parent == "body" {
					current = &strings.Builder{}
				}
				continue
			}
			switch name {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch {
			case name == textBoxElement || name == compatFallbackElement:
				hidden--
			case name == "t":
				inText = false
			case name == "p" && current != nil && len(stack) > 0 && stack[len(stack)-1] == "body":
				paragraphs = append(paragraphs, current.String())
				current = nil
			}

		case xml.CharData:
			if current != nil && inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
