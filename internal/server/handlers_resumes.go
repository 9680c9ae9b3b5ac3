package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jonathan/institute-portal/internal/resume"
)

// DraftResponse is a résumé draft together with its session ID.
type DraftResponse struct {
	ID    uuid.UUID    `json:"id"`
	Draft resume.Draft `json:"draft"`
}

// SetStepRequest moves the composer to a step.
type SetStepRequest struct {
	Step int `json:"step"`
}

// SelectTemplateRequest changes the template.
type SelectTemplateRequest struct {
	Template string `json:"template"`
}

// SummaryResponse carries a drafted summary.
type SummaryResponse struct {
	Summary string        `json:"summary"`
	Draft   *resume.Draft `json:"draft,omitempty"`
}

func pathSection(r *http.Request) (resume.Section, error) {
	return resume.ParseSection(mux.Vars(r)["section"])
}

// handleListTemplates lists the résumé templates
//
//	@Summary	List résumé templates
//	@Tags		resumes
//	@Produce	json
//	@Success	200	{array}	resume.Layout
//	@Router		/resume-templates [get]
func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, resume.Templates())
}

// handleCreateResume starts an empty draft
//
//	@Summary	Create a résumé draft
//	@Tags		resumes
//	@Produce	json
//	@Success	201	{object}	DraftResponse
//	@Router		/resumes [post]
func (s *Server) handleCreateResume(w http.ResponseWriter, _ *http.Request) {
	id, d := s.resumes.Create()
	s.jsonResponse(w, http.StatusCreated, DraftResponse{ID: id, Draft: d})
}

// handleGetResume returns a draft
//
//	@Summary	Get a résumé draft
//	@Tags		resumes
//	@Produce	json
//	@Param		id	path		string	true	"Draft ID"
//	@Success	200	{object}	DraftResponse
//	@Failure	404	{object}	ErrorBody
//	@Router		/resumes/{id} [get]
func (s *Server) handleGetResume(w http.ResponseWriter, r *http.Request) {
	s.draftOp(w, r, func(id uuid.UUID) (resume.Draft, error) {
		return s.resumes.Get(id)
	})
}

// handleReplaceDocument saves the whole document
//
//	@Summary	Replace the résumé document
//	@Tags		resumes
//	@Accept		json
//	@Produce	json
//	@Param		id			path		string			true	"Draft ID"
//	@Param		document	body		resume.Document	true	"Document"
//	@Success	200			{object}	DraftResponse
//	@Failure	400			{object}	ErrorBody
//	@Failure	404			{object}	ErrorBody
//	@Router		/resumes/{id}/document [put]
func (s *Server) handleReplaceDocument(w http.ResponseWriter, r *http.Request) {
	var doc resume.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.draftOp(w, r, func(id uuid.UUID) (resume.Draft, error) {
		return s.resumes.ReplaceDocument(id, doc)
	})
}

// handleAppendEntry adds a blank entry to a repeatable section
//
//	@Summary	Add an entry
//	@Tags		resumes
//	@Produce	json
//	@Param		id		path		string	true	"Draft ID"
//	@Param		section	path		string	true	"Section"
//	@Success	200		{object}	DraftResponse
//	@Failure	400		{object}	ErrorBody
//	@Failure	404		{object}	ErrorBody
//	@Router		/resumes/{id}/sections/{section}/entries [post]
func (s *Server) handleAppendEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.draftOp(w, r, func(id uuid.UUID) (resume.Draft, error) {
		return s.resumes.AppendEntry(id, section)
	})
}

// handleRemoveEntry removes one entry from a repeatable section
//
//	@Summary	Remove an entry
//	@Tags		resumes
//	@Produce	json
//	@Param		id		path		string	true	"Draft ID"
//	@Param		section	path		string	true	"Section"
//	@Param		index	path		int		true	"Entry index"
//	@Success	200		{object}	DraftResponse
//	@Failure	400		{object}	ErrorBody
//	@Failure	404		{object}	ErrorBody
//	@Router		/resumes/{id}/sections/{section}/entries/{index} [delete]
func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	section, err := pathSection(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		s.handleError(w, r, &ErrValidation{Field: "index", Message: "must be an integer"})
		return
	}
	s.draftOp(w, r, func(id uuid.UUID) (resume.Draft, error) {
		return s.resumes.RemoveEntry(id, section, index)
	})
}

// handleSetStep moves to a composer step
//
//	@Summary	Go to a step
//	@Tags		resumes
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Draft ID"
//	@Param		request	body		SetStepRequest	true	"Step"
//	@Success	200		{object}	DraftResponse
//	@Failure	400		{object}	ErrorBody
//	@Router		/resumes/{id}/step [put]
func (s *Server) handleSetStep(w http.ResponseWriter, r *http.Request) {
	var req SetStepRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.draftOp(w, r, func(id uuid.UUID) (resume.Draft, error) {
		return s.resumes.SetStep(id, req.Step)
	})
}

// handleSelectTemplate changes the template
//
//	@Summary	Select a template
//	@Tags		resumes
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Draft ID"
//	@Param		request	body		SelectTemplateRequest	true	"Template"
//	@Success	200		{object}	DraftResponse
//	@Failure	400		{object}	ErrorBody
//	@Router		/resumes/{id}/template [put]
func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req SelectTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.draftOp(w, r, func(id uuid.UUID) (resume.Draft, error) {
		return s.resumes.SelectTemplate(id, resume.TemplateID(req.Template))
	})
}

// handleProgress returns step completion
//
//	@Summary	Step progress
//	@Tags		resumes
//	@Produce	json
//	@Param		id	path	string	true	"Draft ID"
//	@Success	200	{array}	resume.StepStatus
//	@Router		/resumes/{id}/progress [get]
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	progress, err := s.resumes.Progress(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, progress)
}

// handleResumeView returns the rendered view model
//
//	@Summary	Rendered view
//	@Tags		resumes
//	@Produce	json
//	@Param		id	path		string	true	"Draft ID"
//	@Success	200	{object}	resume.View
//	@Router		/resumes/{id}/view [get]
func (s *Server) handleResumeView(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	v, err := s.resumes.View(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, v)
}

// handleResumePreview returns the HTML preview
//
//	@Summary	HTML preview
//	@Tags		resumes
//	@Produce	html
//	@Param		id	path		string	true	"Draft ID"
//	@Success	200	{string}	string
//	@Router		/resumes/{id}/preview [get]
func (s *Server) handleResumePreview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	page, err := s.resumes.Preview(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", resume.FormatHTML.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// handleGenerate downloads the résumé as html, tex or pdf
//
//	@Summary	Generate a downloadable résumé
//	@Tags		resumes
//	@Produce	application/pdf
//	@Param		id		path		string	true	"Draft ID"
//	@Param		format	query		string	false	"html, tex or pdf"	default(pdf)
//	@Success	200		{file}		file
//	@Failure	400		{object}	ErrorBody
//	@Router		/resumes/{id}/generate [post]
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	format, err := resume.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	artifact, err := s.resumes.Generate(r.Context(), id, format)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

// handleDraftSummary asks the writing assistant for a summary
//
//	@Summary	Draft a professional summary
//	@Tags		resumes
//	@Produce	json
//	@Param		id		path		string	true	"Draft ID"
//	@Param		apply	query		bool	false	"Save the summary into the draft"
//	@Success	200		{object}	SummaryResponse
//	@Failure	503		{object}	ErrorBody
//	@Router		/resumes/{id}/assist/summary [post]
func (s *Server) handleDraftSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	d, err := s.resumes.Get(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	summary, err := s.assist.DraftSummary(r.Context(), d.Document)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	resp := SummaryResponse{Summary: summary}
	if apply, _ := strconv.ParseBool(r.URL.Query().Get("apply")); apply {
		updated, err := s.resumes.SetSummary(id, summary)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		resp.Draft = &updated
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) draftOp(w http.ResponseWriter, r *http.Request, op func(uuid.UUID) (resume.Draft, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	d, err := op(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, DraftResponse{ID: id, Draft: d})
}
