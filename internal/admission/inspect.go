package admission

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Accepted document MIME types
const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

// Inspection describes an uploaded document.
type Inspection struct {
	MIME      string
	Extension string
	Pages     int // PDFs only
}

// Inspect sniffs the document's type from its content and checks it opens: a PDF must have at
// least one page and a DOCX must parse. JPEG and PNG scans are accepted as is.
func Inspect(field string, data []byte) (Inspection, error) {
	if len(data) == 0 {
		return Inspection{}, &ValidationError{Field: field, Message: "file is empty"}
	}

	mt := mimetype.Detect(data)
	in := Inspection{MIME: mt.String(), Extension: mt.Extension()}

	switch {
	case mt.Is(MIMEPDF):
		in.MIME = MIMEPDF
		pages, err := pdfPages(data)
		if err != nil {
			return in, &ValidationError{Field: field, Message: fmt.Sprintf("unreadable PDF: %v", err)}
		}
		if pages < 1 {
			return in, &ValidationError{Field: field, Message: "PDF has no pages"}
		}
		in.Pages = pages
	case mt.Is(MIMEDOCX):
		in.MIME = MIMEDOCX
		doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return in, &ValidationError{Field: field, Message: fmt.Sprintf("unreadable DOCX: %v", err)}
		}
		doc.Close()
	case mt.Is(MIMEJPEG), mt.Is(MIMEPNG):
	default:
		return in, &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("unsupported file type %s; upload a PDF, DOCX, JPEG or PNG", mt.String()),
		}
	}
	return in, nil
}

func pdfPages(data []byte) (pages int, err error) {
	// The pdf reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	return reader.NumPage(), nil
}
