package server

import (
	"net/http"

	"github.com/jonathan/institute-portal/internal/admission"
)

// handleSubmitAdmission accepts an admission form with two documents
//
//	@Summary	Submit an admission application
//	@Tags		admissions
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		name			formData	string	true	"Full name"
//	@Param		email			formData	string	true	"Email"
//	@Param		phone			formData	string	true	"Phone, 10 to 15 digits"
//	@Param		college			formData	string	true	"College"
//	@Param		bonafideFile	formData	file	true	"Bonafide certificate (PDF, DOCX, JPEG or PNG)"
//	@Param		aadhaarFile		formData	file	true	"Aadhaar card (PDF, DOCX, JPEG or PNG)"
//	@Success	201				{object}	admission.Result
//	@Failure	400				{object}	admission.Result
//	@Failure	502				{object}	admission.Result
//	@Router		/admissions [post]
func (s *Server) handleSubmitAdmission(w http.ResponseWriter, r *http.Request) {
	sub, err := admission.ParseRequest(w, r)
	if err == nil {
		_, err = s.admissions.Submit(r.Context(), sub)
	}
	if err != nil {
		status := HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.WithError(err).Error("admission submission failed")
		}
		s.jsonResponse(w, status, admission.Result{OK: false, Message: errorBody(err, status).Error})
		return
	}

	s.jsonResponse(w, http.StatusCreated, admission.Result{OK: true, Message: "Application received"})
}
