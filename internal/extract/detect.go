package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DocumentKind is a supported input format.
type DocumentKind string

const (
	KindPDF     DocumentKind = "pdf"
	KindDOCX    DocumentKind = "docx"
	KindUnknown DocumentKind = ""
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
	// Legacy .doc files use the OLE compound-document container.
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// DetectKind sniffs the document format from magic bytes, falling back to
// the file extension for ambiguous containers (a DOCX is just a zip).
func DetectKind(data []byte, filename string) DocumentKind {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF
	case bytes.HasPrefix(data, zipMagic):
		if strings.EqualFold(filepath.Ext(filename), ".docx") {
			return KindDOCX
		}
		return KindUnknown
	case bytes.HasPrefix(data, oleMagic):
		// Legacy binary .doc. The extraction service only takes PDF or
		// modern Word documents; resubmitting these re-saved as .docx
		// is the documented workaround.
		return KindUnknown
	default:
		return KindUnknown
	}
}

// docxText pulls the visible text out of a DOCX container: unzip
// word/document.xml and collect the character data inside w:t runs,
// breaking lines at paragraph ends.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx container: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decoding document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
