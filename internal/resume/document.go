// Package resume implements the résumé composer: the document model, per-section editing,
// step navigation and progress, and rendering into one of six templates.
package resume

// ScoreType qualifies an education score.
type ScoreType string

// Score types
const (
	ScoreCGPA       ScoreType = "CGPA"
	ScorePercentage ScoreType = "Percentage"
)

// Profile is a link to the candidate elsewhere on the web.
type Profile struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// Personal holds contact details.
type Personal struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Profiles []Profile `json:"profiles"`
}

// Experience is one job or internship. Achievements are newline-delimited.
type Experience struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	DateRange    string `json:"date_range"`
	Achievements string `json:"achievements"`
}

// Education is one degree or school.
type Education struct {
	School     string    `json:"school"`
	Degree     string    `json:"degree"`
	Date       string    `json:"date"`
	ScoreType  ScoreType `json:"score_type"`
	ScoreValue string    `json:"score_value"`
}

// Award is an honour or prize.
type Award struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Volunteering is unpaid work.
type Volunteering struct {
	Role         string `json:"role"`
	Organization string `json:"organization"`
	DateRange    string `json:"date_range"`
	Description  string `json:"description"`
}

// Certification is a credential from a course or exam.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	URL    string `json:"url"`
}

// Document is the résumé being composed. Skills are comma-delimited.
type Document struct {
	Personal       Personal        `json:"personal"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         string          `json:"skills"`
	Awards         []Award         `json:"awards"`
	Volunteering   []Volunteering  `json:"volunteering"`
	Certifications []Certification `json:"certifications"`
	Template       TemplateID      `json:"template"`
}
