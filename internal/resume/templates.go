package resume

import (
	"fmt"
	"slices"
	"strings"
)

// TemplateID selects a visual template.
type TemplateID string

// Template identifiers
const (
	TemplateClassic   TemplateID = "classic"
	TemplateModern    TemplateID = "modern"
	TemplateMinimal   TemplateID = "minimal"
	TemplateExecutive TemplateID = "executive"
	TemplateCreative  TemplateID = "creative"
	TemplateCompact   TemplateID = "compact"
)

// DefaultTemplate is used when a document has none selected.
const DefaultTemplate = TemplateClassic

// Valid reports whether id is one of the six templates.
func (id TemplateID) Valid() bool {
	_, ok := layouts[id]
	return ok
}

// ParseTemplate validates a template id.
func ParseTemplate(s string) (TemplateID, error) {
	id := TemplateID(strings.ToLower(strings.TrimSpace(s)))
	if !id.Valid() {
		return "", &ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", s)}
	}
	return id, nil
}

// HeadingCase controls how section headings are written.
type HeadingCase string

// Heading cases
const (
	HeadingUpper HeadingCase = "upper"
	HeadingTitle HeadingCase = "title"
	HeadingSmall HeadingCase = "small-caps"
)

// Style holds a template's typography and layout tokens.
type Style struct {
	FontFamily  string      `json:"font_family"`
	LaTeXFont   string      `json:"latex_font"`
	AccentColor string      `json:"accent_color"`
	HeadingCase HeadingCase `json:"heading_case"`
	Density     string      `json:"density"`
	Rules       bool        `json:"rules"`
	// Sidebar sections are placed in a narrow side column in two-column layouts.
	Sidebar []Section `json:"sidebar,omitempty"`
}

// Layout describes one template: the order sections appear in and how they look.
type Layout struct {
	ID          TemplateID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Order       []Section  `json:"order"`
	Style       Style      `json:"style"`
}

// TwoColumn reports whether the layout uses a sidebar.
func (l Layout) TwoColumn() bool {
	return len(l.Style.Sidebar) > 0
}

// InSidebar reports whether s is placed in the sidebar.
func (l Layout) InSidebar(s Section) bool {
	return slices.Contains(l.Style.Sidebar, s)
}

var templateOrder = []TemplateID{
	TemplateClassic, TemplateModern, TemplateMinimal, TemplateExecutive, TemplateCreative, TemplateCompact,
}

var layouts = map[TemplateID]Layout{
	TemplateClassic: {
		ID:          TemplateClassic,
		Name:        "Classic",
		Description: "Single column with serif type and ruled section headings.",
		Order: []Section{
			SectionPersonal, SectionProfiles, SectionSummary, SectionExperience, SectionEducation,
			SectionSkills, SectionAwards, SectionCertifications, SectionVolunteering,
		},
		Style: Style{
			FontFamily: "Georgia, 'Times New Roman', serif", LaTeXFont: "lmodern",
			AccentColor: "#1f2937", HeadingCase: HeadingUpper, Density: "regular", Rules: true,
		},
	},
	TemplateModern: {
		ID:          TemplateModern,
		Name:        "Modern",
		Description: "Two columns with skills and links in a tinted sidebar.",
		Order: []Section{
			SectionPersonal, SectionSummary, SectionExperience, SectionEducation, SectionProfiles,
			SectionSkills, SectionCertifications, SectionAwards, SectionVolunteering,
		},
		Style: Style{
			FontFamily: "'Inter', 'Helvetica Neue', Arial, sans-serif", LaTeXFont: "helvet",
			AccentColor: "#2563eb", HeadingCase: HeadingTitle, Density: "regular",
			Sidebar: []Section{SectionProfiles, SectionSkills, SectionCertifications},
		},
	},
	TemplateMinimal: {
		ID:          TemplateMinimal,
		Name:        "Minimal",
		Description: "Generous whitespace and no decoration.",
		Order: []Section{
			SectionPersonal, SectionSummary, SectionExperience, SectionEducation, SectionSkills,
			SectionCertifications, SectionAwards, SectionVolunteering, SectionProfiles,
		},
		Style: Style{
			FontFamily: "'Helvetica Neue', Arial, sans-serif", LaTeXFont: "helvet",
			AccentColor: "#111827", HeadingCase: HeadingSmall, Density: "airy",
		},
	},
	TemplateExecutive: {
		ID:          TemplateExecutive,
		Name:        "Executive",
		Description: "Leads with experience and achievements for senior profiles.",
		Order: []Section{
			SectionPersonal, SectionSummary, SectionExperience, SectionAwards, SectionEducation,
			SectionCertifications, SectionSkills, SectionVolunteering, SectionProfiles,
		},
		Style: Style{
			FontFamily: "Garamond, Georgia, serif", LaTeXFont: "ebgaramond",
			AccentColor: "#7c2d12", HeadingCase: HeadingSmall, Density: "regular", Rules: true,
		},
	},
	TemplateCreative: {
		ID:          TemplateCreative,
		Name:        "Creative",
		Description: "Bold accent colour with a sidebar for skills, links and volunteering.",
		Order: []Section{
			SectionPersonal, SectionSummary, SectionSkills, SectionExperience, SectionVolunteering,
			SectionEducation, SectionAwards, SectionCertifications, SectionProfiles,
		},
		Style: Style{
			FontFamily: "'Poppins', 'Segoe UI', sans-serif", LaTeXFont: "helvet",
			AccentColor: "#db2777", HeadingCase: HeadingUpper, Density: "regular",
			Sidebar: []Section{SectionSkills, SectionProfiles, SectionVolunteering},
		},
	},
	TemplateCompact: {
		ID:          TemplateCompact,
		Name:        "Compact",
		Description: "Tight spacing to fit a full history on one page.",
		Order: []Section{
			SectionPersonal, SectionProfiles, SectionExperience, SectionEducation, SectionSkills,
			SectionCertifications, SectionAwards, SectionVolunteering, SectionSummary,
		},
		Style: Style{
			FontFamily: "'Source Sans Pro', Arial, sans-serif", LaTeXFont: "lmodern",
			AccentColor: "#374151", HeadingCase: HeadingUpper, Density: "compact", Rules: true,
		},
	},
}

// Templates returns the six layouts in presentation order.
func Templates() []Layout {
	out := make([]Layout, 0, len(templateOrder))
	for _, id := range templateOrder {
		out = append(out, layouts[id])
	}
	return out
}

// LayoutFor returns the layout for id, falling back to the default template for an empty
// id.
func LayoutFor(id TemplateID) (Layout, error) {
	if id == "" {
		id = DefaultTemplate
	}
	l, ok := layouts[id]
	if !ok {
		return Layout{}, &ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", id)}
	}
	return l, nil
}

// SelectTemplate returns doc with the template changed to id.
func SelectTemplate(doc Document, id TemplateID) (Document, error) {
	if !id.Valid() {
		return doc, &ValidationError{Field: "template", Message: fmt.Sprintf("unknown template %q", id)}
	}
	doc.Template = id
	return doc, nil
}
