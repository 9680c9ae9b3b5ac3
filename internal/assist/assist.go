// Package assist drafts résumé text with a generative model. It is optional: without an API key
// every call fails with *DisabledError.
package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/institute-portal/internal/resume"
)

// DisabledError is returned when no generator is configured.
type DisabledError struct{}

func (e *DisabledError) Error() string {
	return "writing assist is not configured"
}

// UpstreamError wraps a failure from the model provider.
type UpstreamError struct {
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Service drafts résumé sections.
type Service struct {
	gen    Generator
	logger logrus.FieldLogger
}

// NewService creates a Service. A nil generator disables it.
func NewService(gen Generator, logger logrus.FieldLogger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.gen != nil
}

// DraftSummary asks the model for a short professional summary grounded in the document's
// experience, education and skills.
func (s *Service) DraftSummary(ctx context.Context, doc resume.Document) (string, error) {
	if !s.Enabled() {
		return "", &DisabledError{}
	}
	if !resume.HasContent(doc, resume.SectionExperience) &&
		!resume.HasContent(doc, resume.SectionEducation) &&
		!resume.HasContent(doc, resume.SectionSkills) {
		return "", &resume.ValidationError{
			Field:   "document",
			Message: "add experience, education or skills before drafting a summary",
		}
	}

	p, err := SummaryPrompt(doc)
	if err != nil {
		return "", err
	}

	text, err := s.gen.GenerateContent(ctx, p)
	if err != nil {
		return "", &UpstreamError{Message: "summary generation failed", Cause: err}
	}

	summary := cleanSummary(text)
	if summary == "" {
		return "", &UpstreamError{Message: "model returned an empty summary"}
	}

	s.logger.WithField("chars", len(summary)).Info("summary drafted")
	return summary, nil
}

// SummaryPrompt builds the summary prompt for doc.
func SummaryPrompt(doc resume.Document) (string, error) {
	template, err := prompt("summary")
	if err != nil {
		return "", err
	}

	var experience []string
	for _, e := range doc.Experience {
		if strings.TrimSpace(e.Title) == "" {
			continue
		}
		line := "- " + e.Title
		if e.Organization != "" {
			line += " at " + e.Organization
		}
		if e.DateRange != "" {
			line += " (" + e.DateRange + ")"
		}
		for _, a := range strings.Split(e.Achievements, "\n") {
			if a = strings.TrimSpace(a); a != "" {
				line += "\n  * " + a
			}
		}
		experience = append(experience, line)
	}

	var education []string
	for _, e := range doc.Education {
		if strings.TrimSpace(e.School) == "" {
			continue
		}
		line := "- " + e.School
		if e.Degree != "" {
			line += ", " + e.Degree
		}
		education = append(education, line)
	}

	return format(template, map[string]string{
		"Name":       orNone(doc.Personal.Name),
		"Experience": orNone(strings.Join(experience, "\n")),
		"Education":  orNone(strings.Join(education, "\n")),
		"Skills":     orNone(strings.Join(resume.SkillItems(doc.Skills), ", ")),
		"Summary":    strings.TrimSpace(doc.Summary),
	}), nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

// cleanSummary strips markdown fences, wrapping quotes and a leading heading, and collapses
// whitespace to single spaces.
func cleanSummary(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	lower := strings.ToLower(text)
	for _, heading := range []string{"summary:", "professional summary:"} {
		if strings.HasPrefix(lower, heading) {
			text = text[len(heading):]
			break
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, `"`)
}
