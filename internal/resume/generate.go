package resume

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Format is a downloadable artifact type.
type Format string

// Formats
const (
	FormatHTML  Format = "html"
	FormatLaTeX Format = "tex"
	FormatPDF   Format = "pdf"
)

// ParseFormat validates a format name. An empty name means PDF.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatHTML, FormatLaTeX, FormatPDF:
		return f, nil
	}
	return "", &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q", s)}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatLaTeX:
		return "application/x-tex"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Artifact is a generated file.
type Artifact struct {
	Format      Format
	ContentType string
	Filename    string
	Data        []byte
}

// PDFExporter turns an HTML page into a PDF.
type PDFExporter interface {
	PDF(ctx context.Context, html string) ([]byte, error)
}

// Generate renders doc in its selected template and packages it as format. The exporter is
// only needed for PDF.
func Generate(ctx context.Context, doc Document, format Format, exporter PDFExporter) (*Artifact, error) {
	view, err := Render(doc, doc.Template)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch format {
	case FormatHTML:
		html, err := HTML(view)
		if err != nil {
			return nil, err
		}
		data = []byte(html)
	case FormatLaTeX:
		tex, err := LaTeX(view)
		if err != nil {
			return nil, err
		}
		data = []byte(tex)
	case FormatPDF:
		if exporter == nil {
			return nil, &ExportError{Format: format, Message: "pdf export is not configured"}
		}
		html, err := HTML(view)
		if err != nil {
			return nil, err
		}
		data, err = exporter.PDF(ctx, html)
		if err != nil {
			return nil, &ExportError{Format: format, Message: "failed to print pdf", Cause: err}
		}
	default:
		return nil, &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q", format)}
	}

	return &Artifact{
		Format:      format,
		ContentType: format.ContentType(),
		Filename:    filename(doc, format),
		Data:        data,
	}, nil
}

func filename(doc Document, format Format) string {
	base := strings.Join(strings.Fields(strings.ToLower(doc.Personal.Name)), "-")
	base = strings.Map(func(r rune) rune {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base)
	if base == "" {
		base = "resume"
	} else {
		base += "-resume"
	}
	return base + "." + string(format)
}

// ChromeExporter prints PDFs with a headless Chrome. Chrome or Chromium must be installed.
type ChromeExporter struct {
	Timeout time.Duration
}

// PDF loads html into a blank page and prints it on A4 with backgrounds.
func (c ChromeExporter) PDF(ctx context.Context, html string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("headless chrome failed: %w", err)
	}
	return pdf, nil
}
