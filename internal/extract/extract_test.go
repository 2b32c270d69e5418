package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/reconcile/internal/types"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDetectKind(t *testing.T) {
	docx := buildDocx(t, `<w:document/>`)

	tests := []struct {
		name     string
		data     []byte
		filename string
		want     DocumentKind
	}{
		{"pdf magic", []byte("%PDF-1.7 rest"), "resume.pdf", KindPDF},
		{"pdf magic wrong extension", []byte("%PDF-1.7"), "resume.bin", KindPDF},
		{"docx zip", docx, "resume.docx", KindDOCX},
		{"zip without docx extension", docx, "resume.zip", KindUnknown},
		{"legacy doc", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1}, "resume.doc", KindUnknown},
		{"plain text", []byte("hello"), "resume.pdf", KindUnknown},
		{"empty", nil, "resume.pdf", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.data, tt.filename))
		})
	}
}

func TestDocxText(t *testing.T) {
	docx := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
		<w:body>
			<w:p><w:r><w:t>John Smith</w:t></w:r></w:p>
			<w:p><w:r><w:t>Senior </w:t></w:r><w:r><w:t>Engineer</w:t></w:r></w:p>
		</w:body>
	</w:document>`)

	text, err := docxText(docx)
	require.NoError(t, err)
	assert.Equal(t, "John Smith\nSenior Engineer", text)
}

func TestDocxTextMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	f.Write([]byte("<x/>"))
	require.NoError(t, w.Close())

	_, err = docxText(buf.Bytes())
	assert.ErrorContains(t, err, "no word/document.xml")
}

func TestParseRecordDirect(t *testing.T) {
	record, err := ParseRecord(`{"name": "John Smith", "role_in_contract": "Project Engineer"}`)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", record.Name)
	assert.Equal(t, "Project Engineer", record.RoleInContract)
}

func TestParseRecordCodeFenced(t *testing.T) {
	record, err := ParseRecord("```json\n{\"name\": \"John Smith\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", record.Name)
}

func TestParseRecordMixedProse(t *testing.T) {
	record, err := ParseRecord(`Here is the extracted record:
{"name": "John Smith", "relevant_projects": [{"title_and_location": "I-10 Bridge, LA"},]}`)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", record.Name)
	require.Len(t, record.Projects, 1)
	assert.Equal(t, "I-10 Bridge, LA", record.Projects[0].TitleAndLocation)
}

func TestParseRecordGarbage(t *testing.T) {
	_, err := ParseRecord("I could not read the document, sorry.")
	assert.Error(t, err)

	_, err = ParseRecord("")
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	err := &Error{Kind: UnsupportedFormat, Filename: "x.zip", Err: errors.New("not a PDF")}
	assert.True(t, err.Permanent())
	assert.Equal(t, UnsupportedFormat, KindOf(err))
	assert.ErrorContains(t, err, "x.zip")

	transient := &Error{Kind: ServiceError, Filename: "a.pdf"}
	assert.False(t, transient.Permanent())
	assert.True(t, errors.Is(transient, types.ErrExternalService))

	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.MaxDocumentBytes = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.CallsPerMinute = -1
	assert.Error(t, bad.Validate())
}

func TestDocumentBlockRejectsUnknown(t *testing.T) {
	_, err := documentBlock([]byte("plain text resume"), "resume.txt")
	assert.ErrorContains(t, err, "not a PDF or Word document")
}
