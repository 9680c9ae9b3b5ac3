package resume

import (
	"fmt"
	"slices"
	"strings"
)

// Section names a part of the document.
type Section string

// Sections
const (
	SectionPersonal       Section = "personal"
	SectionProfiles       Section = "profiles"
	SectionSummary        Section = "summary"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSkills         Section = "skills"
	SectionAwards         Section = "awards"
	SectionVolunteering   Section = "volunteering"
	SectionCertifications Section = "certifications"
)

// AllSections lists every section in document order.
var AllSections = []Section{
	SectionPersonal,
	SectionProfiles,
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionAwards,
	SectionVolunteering,
	SectionCertifications,
}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	sec := Section(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllSections, sec) {
		return sec, nil
	}
	return "", &ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", s)}
}

// Repeatable reports whether entries can be appended to and removed from the section.
func (s Section) Repeatable() bool {
	switch s {
	case SectionPersonal, SectionSummary:
		return false
	}
	return slices.Contains(AllSections, s)
}

func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}

// anyFilled reports whether key returns a non-blank value for at least one entry.
func anyFilled[T any](entries []T, key func(T) string) bool {
	for _, e := range entries {
		if filled(key(e)) {
			return true
		}
	}
	return false
}

// HasContent reports whether the section's primary field is filled in: on at least one entry
// for repeatable sections, or the trimmed text itself for scalar ones. The same predicate
// drives progress display and rendering.
func HasContent(doc Document, s Section) bool {
	switch s {
	case SectionPersonal:
		return filled(doc.Personal.Name)
	case SectionProfiles:
		return anyFilled(doc.Personal.Profiles, func(p Profile) string { return p.URL })
	case SectionSummary:
		return filled(doc.Summary)
	case SectionExperience:
		return anyFilled(doc.Experience, func(e Experience) string { return e.Title })
	case SectionEducation:
		return anyFilled(doc.Education, func(e Education) string { return e.School })
	case SectionSkills:
		return len(SkillItems(doc.Skills)) > 0
	case SectionAwards:
		return anyFilled(doc.Awards, func(a Award) string { return a.Title })
	case SectionVolunteering:
		return anyFilled(doc.Volunteering, func(v Volunteering) string { return v.Role })
	case SectionCertifications:
		return anyFilled(doc.Certifications, func(c Certification) string { return c.Name })
	}
	return false
}

// IsSectionComplete is the progress indicator predicate. It never gates navigation.
func IsSectionComplete(doc Document, s Section) bool {
	return HasContent(doc, s)
}

// SkillItems splits the comma-delimited skills text into trimmed, non-empty items.
func SkillItems(skills string) []string {
	var items []string
	for _, part := range strings.Split(skills, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// EntryCount returns the number of entries in a repeatable section. Skills count every
// comma-separated slot, blank ones included.
func EntryCount(doc Document, s Section) int {
	switch s {
	case SectionProfiles:
		return len(doc.Personal.Profiles)
	case SectionExperience:
		return len(doc.Experience)
	case SectionEducation:
		return len(doc.Education)
	case SectionSkills:
		if doc.Skills == "" {
			return 0
		}
		return len(strings.Split(doc.Skills, ","))
	case SectionAwards:
		return len(doc.Awards)
	case SectionVolunteering:
		return len(doc.Volunteering)
	case SectionCertifications:
		return len(doc.Certifications)
	}
	return 0
}

// AppendEntry returns doc with one blank entry added to the end of section s.
func AppendEntry(doc Document, s Section) (Document, error) {
	if !s.Repeatable() {
		return doc, notRepeatable(s)
	}
	switch s {
	case SectionProfiles:
		doc.Personal.Profiles = append(slices.Clone(doc.Personal.Profiles), Profile{})
	case SectionExperience:
		doc.Experience = append(slices.Clone(doc.Experience), Experience{})
	case SectionEducation:
		doc.Education = append(slices.Clone(doc.Education), Education{})
	case SectionSkills:
		if doc.Skills == "" {
			doc.Skills = " "
		} else {
			doc.Skills += ", "
		}
	case SectionAwards:
		doc.Awards = append(slices.Clone(doc.Awards), Award{})
	case SectionVolunteering:
		doc.Volunteering = append(slices.Clone(doc.Volunteering), Volunteering{})
	case SectionCertifications:
		doc.Certifications = append(slices.Clone(doc.Certifications), Certification{})
	}
	return doc, nil
}

// RemoveEntry returns doc with entry index removed from section s. Later entries shift down
// one place and keep their relative order.
func RemoveEntry(doc Document, s Section, index int) (Document, error) {
	if !s.Repeatable() {
		return doc, notRepeatable(s)
	}
	if n := EntryCount(doc, s); index < 0 || index >= n {
		return doc, &ValidationError{
			Field:   "index",
			Message: fmt.Sprintf("index %d out of range for %s with %d entries", index, s, n),
		}
	}
	switch s {
	case SectionProfiles:
		doc.Personal.Profiles = slices.Delete(slices.Clone(doc.Personal.Profiles), index, index+1)
	case SectionExperience:
		doc.Experience = slices.Delete(slices.Clone(doc.Experience), index, index+1)
	case SectionEducation:
		doc.Education = slices.Delete(slices.Clone(doc.Education), index, index+1)
	case SectionSkills:
		parts := strings.Split(doc.Skills, ",")
		parts = slices.Delete(parts, index, index+1)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		doc.Skills = joinSkillSlots(parts)
	case SectionAwards:
		doc.Awards = slices.Delete(slices.Clone(doc.Awards), index, index+1)
	case SectionVolunteering:
		doc.Volunteering = slices.Delete(slices.Clone(doc.Volunteering), index, index+1)
	case SectionCertifications:
		doc.Certifications = slices.Delete(slices.Clone(doc.Certifications), index, index+1)
	}
	return doc, nil
}

// joinSkillSlots encodes slots so that EntryCount reads back len(parts). A lone blank slot
// is stored as a single space because the empty string means no slots.
func joinSkillSlots(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	if joined := strings.Join(parts, ", "); joined != "" {
		return joined
	}
	return " "
}

func notRepeatable(s Section) error {
	return &ValidationError{Field: "section", Message: fmt.Sprintf("%s has no repeatable entries", s)}
}
