package resume

import "fmt"

// Step is one page of the composer form.
type Step struct {
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections,omitempty"`
}

// Steps are the composer pages in their default order. The template picker is the last step
// and has no sections of its own.
var Steps = []Step{
	{Key: "personal", Title: "Personal details", Sections: []Section{SectionPersonal, SectionProfiles}},
	{Key: "summary", Title: "Summary", Sections: []Section{SectionSummary}},
	{Key: "experience", Title: "Experience", Sections: []Section{SectionExperience}},
	{Key: "education", Title: "Education", Sections: []Section{SectionEducation}},
	{Key: "skills", Title: "Skills", Sections: []Section{SectionSkills}},
	{Key: "awards", Title: "Awards", Sections: []Section{SectionAwards}},
	{Key: "volunteering", Title: "Volunteering", Sections: []Section{SectionVolunteering}},
	{Key: "certifications", Title: "Certifications", Sections: []Section{SectionCertifications}},
	{Key: "template", Title: "Choose a template"},
}

// Draft is a document together with the step the visitor is looking at.
type Draft struct {
	Document Document `json:"document"`
	Step     int      `json:"step"`
}

// NewDraft returns an empty document on the first step with the default template.
func NewDraft() Draft {
	return Draft{Document: Document{Template: DefaultTemplate}}
}

// AdvanceStep moves to any step. Navigation is never gated on completeness.
func AdvanceStep(d Draft, target int) (Draft, error) {
	if target < 0 || target >= len(Steps) {
		return d, &ValidationError{
			Field:   "step",
			Message: fmt.Sprintf("step %d out of range [0, %d)", target, len(Steps)),
		}
	}
	d.Step = target
	return d, nil
}

// StepStatus is one row of the progress indicator.
type StepStatus struct {
	Index    int    `json:"index"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Complete bool   `json:"complete"`
	Current  bool   `json:"current"`
}

// Progress reports completion for every step. A step with sections is complete when its
// first section is; the template step is complete once a template is chosen.
func Progress(d Draft) []StepStatus {
	out := make([]StepStatus, len(Steps))
	for i, step := range Steps {
		complete := d.Document.Template.Valid()
		if len(step.Sections) > 0 {
			complete = IsSectionComplete(d.Document, step.Sections[0])
		}
		out[i] = StepStatus{
			Index:    i,
			Key:      step.Key,
			Title:    step.Title,
			Complete: complete,
			Current:  i == d.Step,
		}
	}
	return out
}
