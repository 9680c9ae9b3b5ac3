package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/jonathan/institute-portal/internal/catalog"
	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/server/middleware"
)

// SessionResponse describes the signed-in visitor. User is null for anonymous visitors.
type SessionResponse struct {
	User      *middleware.User `json:"user"`
	IsLoading bool             `json:"isLoading"`
}

// EnrollResponse confirms an enrollment.
type EnrollResponse struct {
	Enrolled bool           `json:"enrolled"`
	Course   catalog.Course `json:"course"`
}

// handleListCourses lists the course catalog, optionally filtered by category
//
//	@Summary	List courses
//	@Tags		courses
//	@Produce	json
//	@Param		category	query	string	false	"Category"
//	@Success	200			{array}	catalog.Course
//	@Router		/courses [get]
func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		courses := s.courses.ByCategory(category)
		if courses == nil {
			courses = []catalog.Course{}
		}
		s.jsonResponse(w, http.StatusOK, courses)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.courses.List())
}

// handleGetCourse returns one course
//
//	@Summary	Get a course
//	@Tags		courses
//	@Produce	json
//	@Param		id	path		string	true	"Course ID"
//	@Success	200	{object}	catalog.Course
//	@Failure	404	{object}	ErrorBody
//	@Router		/courses/{id} [get]
func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	course, ok := s.courses.Get(id)
	if !ok {
		s.handleError(w, r, &enrollment.NotFoundError{CourseID: id})
		return
	}
	s.jsonResponse(w, http.StatusOK, course)
}

// handleSession reports the signed-in user
//
//	@Summary	Current session
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	SessionResponse
//	@Router		/session [get]
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{}
	if user, err := middleware.GetUser(r); err == nil {
		resp.User = &user
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleEnroll enrolls the signed-in user in a course
//
//	@Summary	Enroll in a course
//	@Tags		courses
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Course ID"
//	@Success	200	{object}	EnrollResponse
//	@Failure	401	{object}	ErrorBody
//	@Failure	403	{object}	ErrorBody
//	@Failure	404	{object}	ErrorBody
//	@Router		/courses/{id}/enroll [post]
func (s *Server) handleEnroll(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	course, err := s.enrollment.Enroll(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, EnrollResponse{Enrolled: true, Course: course})
}
