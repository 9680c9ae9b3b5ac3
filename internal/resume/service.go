package resume

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/institute-portal/internal/session"
)

// Service keeps one draft per composer session.
type Service struct {
	store    *session.Store[Draft]
	exporter PDFExporter
	logger   logrus.FieldLogger
}

// NewService creates a résumé service. exporter may be nil, in which case PDF generation
// fails with an *ExportError.
func NewService(store *session.Store[Draft], exporter PDFExporter, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Service{store: store, exporter: exporter, logger: logger}
}

// Create starts an empty draft.
func (s *Service) Create() (uuid.UUID, Draft) {
	d := NewDraft()
	return s.store.Create(d), d
}

// Get returns the draft for id.
func (s *Service) Get(id uuid.UUID) (Draft, error) {
	return s.store.Get(id)
}

// ReplaceDocument swaps in a whole document after schema validation. An empty template keeps
// the current one.
func (s *Service) ReplaceDocument(id uuid.UUID, doc Document) (Draft, error) {
	if err := Validate(doc); err != nil {
		return Draft{}, err
	}
	return s.store.Update(id, func(d Draft) (Draft, error) {
		if doc.Template == "" {
			doc.Template = d.Document.Template
		}
		d.Document = doc
		return d, nil
	})
}

// AppendEntry adds a blank entry to a repeatable section.
func (s *Service) AppendEntry(id uuid.UUID, section Section) (Draft, error) {
	return s.updateDocument(id, func(doc Document) (Document, error) {
		return AppendEntry(doc, section)
	})
}

// RemoveEntry removes one entry from a repeatable section.
func (s *Service) RemoveEntry(id uuid.UUID, section Section, index int) (Draft, error) {
	return s.updateDocument(id, func(doc Document) (Document, error) {
		return RemoveEntry(doc, section, index)
	})
}

// SetSummary replaces the summary text.
func (s *Service) SetSummary(id uuid.UUID, summary string) (Draft, error) {
	return s.updateDocument(id, func(doc Document) (Document, error) {
		doc.Summary = summary
		return doc, nil
	})
}

// SelectTemplate changes the draft's template.
func (s *Service) SelectTemplate(id uuid.UUID, tmpl TemplateID) (Draft, error) {
	return s.updateDocument(id, func(doc Document) (Document, error) {
		return SelectTemplate(doc, tmpl)
	})
}

// SetStep jumps to a composer step.
func (s *Service) SetStep(id uuid.UUID, step int) (Draft, error) {
	return s.store.Update(id, func(d Draft) (Draft, error) {
		return AdvanceStep(d, step)
	})
}

// Progress returns the step completion indicator for the draft.
func (s *Service) Progress(id uuid.UUID) ([]StepStatus, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return Progress(d), nil
}

// View renders the draft in its selected template.
func (s *Service) View(id uuid.UUID) (View, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return Render(d.Document, d.Document.Template)
}

// Preview renders the draft as an HTML page.
func (s *Service) Preview(id uuid.UUID) (string, error) {
	v, err := s.View(id)
	if err != nil {
		return "", err
	}
	return HTML(v)
}

// Generate produces a downloadable artifact of the draft.
func (s *Service) Generate(ctx context.Context, id uuid.UUID, format Format) (*Artifact, error) {
	d, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"draft_id": id,
		"format":   format,
		"template": d.Document.Template,
	})
	artifact, err := Generate(ctx, d.Document, format, s.exporter)
	if err != nil {
		log.WithError(err).Error("résumé generation failed")
		return nil, err
	}
	log.WithField("bytes", len(artifact.Data)).Info("résumé generated")
	return artifact, nil
}

func (s *Service) updateDocument(id uuid.UUID, fn func(Document) (Document, error)) (Draft, error) {
	return s.store.Update(id, func(d Draft) (Draft, error) {
		doc, err := fn(d.Document)
		if err != nil {
			return d, err
		}
		d.Document = doc
		return d, nil
	})
}
