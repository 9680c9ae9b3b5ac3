package resume

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplate  = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/resume.html.tmpl"))
	latexTemplate = template.Must(template.New("resume.tex.tmpl").
			Delims("<<", ">>").
			Funcs(template.FuncMap{"escape": EscapeLaTeX}).
			ParseFS(templateFS, "templates/resume.tex.tmpl"))
)

var densitySpacing = map[string]struct{ gap, margin string }{
	"compact": {gap: "4px", margin: "1.5cm"},
	"regular": {gap: "10px", margin: "2cm"},
	"airy":    {gap: "18px", margin: "2.5cm"},
}

func spacing(density string) (gap, margin string) {
	s, ok := densitySpacing[density]
	if !ok {
		s = densitySpacing["regular"]
	}
	return s.gap, s.margin
}

// stylesheet turns a template's style tokens into CSS.
func stylesheet(s Style) htmltemplate.CSS {
	gap, _ := spacing(s.Density)
	var b strings.Builder
	fmt.Fprintf(&b, "body{font-family:%s;color:#111827;margin:0 auto;max-width:820px;padding:32px;line-height:1.4}", s.FontFamily)
	fmt.Fprintf(&b, ".resume-header{border-bottom:3px solid %s;padding-bottom:%s;margin-bottom:%s}", s.AccentColor, gap, gap)
	fmt.Fprintf(&b, ".name{color:%s;margin:0}.contact{margin-right:16px}", s.AccentColor)
	fmt.Fprintf(&b, ".section{margin-bottom:%s}.entry{margin-bottom:%s}", gap, gap)
	fmt.Fprintf(&b, "h2{color:%s;font-size:1.05em;letter-spacing:.04em}", s.AccentColor)
	if s.HeadingCase == HeadingSmall {
		b.WriteString("h2{font-variant:small-caps}")
	}
	if s.Rules {
		fmt.Fprintf(&b, "h2{border-bottom:1px solid %s;padding-bottom:2px}", s.AccentColor)
	}
	b.WriteString(".entry-head{display:flex;justify-content:space-between}.entry-head h3{margin:0;font-size:1em}")
	b.WriteString(".meta,.subtitle{color:#4b5563}.skills{display:flex;flex-wrap:wrap;gap:6px;list-style:none;padding:0}")
	b.WriteString(".two-column{display:grid;grid-template-columns:2fr 1fr;gap:24px}")
	fmt.Fprintf(&b, ".two-column aside{background:%s14;padding:12px;border-radius:6px}", s.AccentColor)
	return htmltemplate.CSS(b.String())
}

// HTML renders the view as a standalone HTML page.
func HTML(v View) (string, error) {
	data := struct {
		View View
		CSS  htmltemplate.CSS
	}{View: v, CSS: stylesheet(v.Style)}

	var buf bytes.Buffer
	if err := htmlTemplate.ExecuteTemplate(&buf, "resume.html.tmpl", data); err != nil {
		return "", &TemplateError{Message: "failed to execute html template", Cause: err}
	}
	return buf.String(), nil
}

// LaTeX renders the view as LaTeX source. Sidebar sections are folded into the single
// column in layout order.
func LaTeX(v View) (string, error) {
	_, margin := spacing(v.Style.Density)
	data := struct {
		View      View
		Font      string
		Margin    string
		Accent    string
		Rules     bool
		SmallCaps bool
	}{
		View:      v,
		Font:      v.Style.LaTeXFont,
		Margin:    margin,
		Accent:    strings.ToUpper(strings.TrimPrefix(v.Style.AccentColor, "#")),
		Rules:     v.Style.Rules,
		SmallCaps: v.Style.HeadingCase == HeadingSmall,
	}

	var buf bytes.Buffer
	if err := latexTemplate.Execute(&buf, data); err != nil {
		return "", &TemplateError{Message: "failed to execute latex template", Cause: err}
	}
	return buf.String(), nil
}
