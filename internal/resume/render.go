package resume

import "strings"

var headings = map[Section]string{
	SectionPersonal:       "Personal details",
	SectionProfiles:       "Profiles",
	SectionSummary:        "Summary",
	SectionExperience:     "Experience",
	SectionEducation:      "Education",
	SectionSkills:         "Skills",
	SectionAwards:         "Awards",
	SectionVolunteering:   "Volunteering",
	SectionCertifications: "Certifications",
}

// Entry is one rendered record of a section.
type Entry struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Meta     string   `json:"meta,omitempty"`
	Link     string   `json:"link,omitempty"`
	Lines    []string `json:"lines,omitempty"`
}

// ViewSection is one section as it appears in the preview.
type ViewSection struct {
	Key     Section  `json:"key"`
	Heading string   `json:"heading"`
	Sidebar bool     `json:"sidebar"`
	Text    string   `json:"text,omitempty"`
	Items   []string `json:"items,omitempty"`
	Entries []Entry  `json:"entries,omitempty"`
}

// View is the displayable structure of a document in a template. The personal section is
// carried separately as the header.
type View struct {
	Template TemplateID    `json:"template"`
	Name     string        `json:"name"`
	Style    Style         `json:"style"`
	Header   *Entry        `json:"header,omitempty"`
	Sections []ViewSection `json:"sections"`
}

// Main returns the sections of the main column.
func (v View) Main() []ViewSection {
	return v.filter(false)
}

// Side returns the sidebar sections.
func (v View) Side() []ViewSection {
	return v.filter(true)
}

// TwoColumn reports whether anything landed in the sidebar.
func (v View) TwoColumn() bool {
	return len(v.Side()) > 0
}

func (v View) filter(sidebar bool) []ViewSection {
	var out []ViewSection
	for _, s := range v.Sections {
		if s.Sidebar == sidebar {
			out = append(out, s)
		}
	}
	return out
}

// Has reports whether section key is rendered.
func (v View) Has(key Section) bool {
	if key == SectionPersonal {
		return v.Header != nil
	}
	for _, s := range v.Sections {
		if s.Key == key {
			return true
		}
	}
	return false
}

// Render lays doc out in template id. Sections without content are left out; entries whose
// primary field is blank are skipped. Render has no side effects.
func Render(doc Document, id TemplateID) (View, error) {
	layout, err := LayoutFor(id)
	if err != nil {
		return View{}, err
	}

	view := View{Template: layout.ID, Name: layout.Name, Style: layout.Style, Sections: []ViewSection{}}
	for _, sec := range layout.Order {
		if !HasContent(doc, sec) {
			continue
		}
		if sec == SectionPersonal {
			header := personalEntry(doc.Personal)
			view.Header = &header
			continue
		}
		vs := ViewSection{
			Key:     sec,
			Heading: heading(sec, layout.Style.HeadingCase),
			Sidebar: layout.InSidebar(sec),
		}
		switch sec {
		case SectionSummary:
			vs.Text = strings.TrimSpace(doc.Summary)
		case SectionSkills:
			vs.Items = SkillItems(doc.Skills)
		default:
			vs.Entries = entries(doc, sec)
		}
		view.Sections = append(view.Sections, vs)
	}
	return view, nil
}

func heading(s Section, c HeadingCase) string {
	h := headings[s]
	if c == HeadingUpper {
		return strings.ToUpper(h)
	}
	return h
}

func personalEntry(p Personal) Entry {
	e := Entry{Title: strings.TrimSpace(p.Name)}
	for _, v := range []string{p.Email, p.Phone} {
		if filled(v) {
			e.Lines = append(e.Lines, strings.TrimSpace(v))
		}
	}
	return e
}

func entries(doc Document, s Section) []Entry {
	var out []Entry
	add := func(primary string, e Entry) {
		if filled(primary) {
			out = append(out, e)
		}
	}
	switch s {
	case SectionProfiles:
		for _, p := range doc.Personal.Profiles {
			title := strings.TrimSpace(p.Network)
			if title == "" {
				title = strings.TrimSpace(p.URL)
			}
			add(p.URL, Entry{Title: title, Link: strings.TrimSpace(p.URL)})
		}
	case SectionExperience:
		for _, x := range doc.Experience {
			add(x.Title, Entry{
				Title:    strings.TrimSpace(x.Title),
				Subtitle: strings.TrimSpace(x.Organization),
				Meta:     strings.TrimSpace(x.DateRange),
				Lines:    lines(x.Achievements),
			})
		}
	case SectionEducation:
		for _, ed := range doc.Education {
			add(ed.School, Entry{
				Title:    strings.TrimSpace(ed.School),
				Subtitle: strings.TrimSpace(ed.Degree),
				Meta:     strings.TrimSpace(ed.Date),
				Lines:    scoreLine(ed),
			})
		}
	case SectionAwards:
		for _, a := range doc.Awards {
			add(a.Title, Entry{
				Title:    strings.TrimSpace(a.Title),
				Subtitle: strings.TrimSpace(a.Issuer),
				Meta:     strings.TrimSpace(a.Date),
				Lines:    lines(a.Description),
			})
		}
	case SectionVolunteering:
		for _, v := range doc.Volunteering {
			add(v.Role, Entry{
				Title:    strings.TrimSpace(v.Role),
				Subtitle: strings.TrimSpace(v.Organization),
				Meta:     strings.TrimSpace(v.DateRange),
				Lines:    lines(v.Description),
			})
		}
	case SectionCertifications:
		for _, c := range doc.Certifications {
			add(c.Name, Entry{
				Title:    strings.TrimSpace(c.Name),
				Subtitle: strings.TrimSpace(c.Issuer),
				Meta:     strings.TrimSpace(c.Date),
				Link:     strings.TrimSpace(c.URL),
			})
		}
	}
	return out
}

// lines splits newline-delimited text into trimmed, non-empty lines.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(l), "-•*"))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func scoreLine(ed Education) []string {
	if !filled(ed.ScoreValue) {
		return nil
	}
	label := string(ed.ScoreType)
	if label == "" {
		label = "Score"
	}
	value := strings.TrimSpace(ed.ScoreValue)
	if ed.ScoreType == ScorePercentage && !strings.HasSuffix(value, "%") {
		value += "%"
	}
	return []string{label + ": " + value}
}
