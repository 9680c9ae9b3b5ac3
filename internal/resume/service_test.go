package resume

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/institute-portal/internal/schemas"
	"github.com/jonathan/institute-portal/internal/session"
)

func newTestService(t *testing.T, exporter PDFExporter) *Service {
	t.Helper()
	store := session.NewStore[Draft](session.Options{TTL: time.Hour})
	t.Cleanup(store.Stop)
	return NewService(store, exporter, nil)
}

func TestService_EditFlow(t *testing.T) {
	svc := newTestService(t, &fakeExporter{})
	id, d := svc.Create()
	assert.Equal(t, DefaultTemplate, d.Document.Template)

	doc := fullDocument()
	_, err := svc.ReplaceDocument(id, doc)
	require.NoError(t, err)

	d, err = svc.AppendEntry(id, SectionExperience)
	require.NoError(t, err)
	assert.Len(t, d.Document.Experience, 2)

	d, err = svc.RemoveEntry(id, SectionExperience, 0)
	require.NoError(t, err)
	require.Len(t, d.Document.Experience, 1)
	assert.Empty(t, d.Document.Experience[0].Title)

	d, err = svc.SelectTemplate(id, TemplateCompact)
	require.NoError(t, err)
	assert.Equal(t, TemplateCompact, d.Document.Template)

	d, err = svc.SetStep(id, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Step)

	progress, err := svc.Progress(id)
	require.NoError(t, err)
	assert.False(t, progress[2].Complete, "experience title was removed")

	v, err := svc.View(id)
	require.NoError(t, err)
	assert.Equal(t, TemplateCompact, v.Template)
	assert.False(t, v.Has(SectionExperience))

	html, err := svc.Preview(id)
	require.NoError(t, err)
	assert.Contains(t, html, "template-compact")

	a, err := svc.Generate(context.Background(), id, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, a.Format)
}

func TestService_ReplaceDocumentKeepsTemplate(t *testing.T) {
	svc := newTestService(t, nil)
	id, _ := svc.Create()
	_, err := svc.SelectTemplate(id, TemplateModern)
	require.NoError(t, err)

	d, err := svc.ReplaceDocument(id, Document{Summary: "hi"})
	require.NoError(t, err)
	assert.Equal(t, TemplateModern, d.Document.Template)
}

func TestService_RejectsInvalidInput(t *testing.T) {
	svc := newTestService(t, nil)
	id, before := svc.Create()

	_, err := svc.ReplaceDocument(id, Document{Education: []Education{{School: "x", ScoreType: "GPA"}}})
	var se *schemas.ValidationError
	require.ErrorAs(t, err, &se)

	_, err = svc.SelectTemplate(id, "fancy")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.RemoveEntry(id, SectionAwards, 0)
	require.ErrorAs(t, err, &ve)

	after, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestService_SetSummary(t *testing.T) {
	svc := newTestService(t, nil)
	id, _ := svc.Create()

	d, err := svc.SetSummary(id, "Analyst with SQL experience.")
	require.NoError(t, err)
	assert.Equal(t, "Analyst with SQL experience.", d.Document.Summary)
	assert.Equal(t, DefaultTemplate, d.Document.Template)
}

func TestService_UnknownDraft(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.View(uuid.New())
	var nf *session.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"personal":{"name":"Asha"},"skills":"SQL","template":"modern"}`))
	require.NoError(t, err)
	assert.Equal(t, TemplateModern, doc.Template)

	_, err = ParseDocument([]byte(`{"template":"fancy"}`))
	var se *schemas.ValidationError
	assert.ErrorAs(t, err, &se)

	_, err = ParseDocument([]byte(`{`))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
