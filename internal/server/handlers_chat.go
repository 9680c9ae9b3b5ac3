package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jonathan/institute-portal/internal/chat"
)

// ChatResponse is a conversation together with its session ID.
type ChatResponse struct {
	ID           uuid.UUID `json:"id"`
	Conversation chat.View `json:"conversation"`
	// Changed is set by back and prompt-paging requests, which may be no-ops.
	Changed *bool `json:"changed,omitempty"`
}

// SelectQuestionRequest picks a suggested question.
type SelectQuestionRequest struct {
	ID   string `json:"id"`
	Text string `json:"text,omitempty"`
}

// SubmitMessageRequest sends free text.
type SubmitMessageRequest struct {
	Text string `json:"text"`
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

func chatResponse(id uuid.UUID, c chat.Conversation) ChatResponse {
	return ChatResponse{ID: id, Conversation: c.View()}
}

// handleStartChat creates a conversation
//
//	@Summary	Start a chatbot conversation
//	@Tags		chat
//	@Produce	json
//	@Success	201	{object}	ChatResponse
//	@Router		/chat/sessions [post]
func (s *Server) handleStartChat(w http.ResponseWriter, _ *http.Request) {
	id, c := s.chat.Start()
	s.jsonResponse(w, http.StatusCreated, chatResponse(id, c))
}

// handleGetChat returns a conversation
//
//	@Summary	Get a conversation
//	@Tags		chat
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	ChatResponse
//	@Failure	404	{object}	ErrorBody
//	@Router		/chat/sessions/{id} [get]
func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	c, err := s.chat.Get(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, chatResponse(id, c))
}

// handleOpenChat marks the chat window opened, greeting on first open
//
//	@Summary	Open the chat window
//	@Tags		chat
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	ChatResponse
//	@Failure	404	{object}	ErrorBody
//	@Router		/chat/sessions/{id}/open [post]
func (s *Server) handleOpenChat(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	c, err := s.chat.Open(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, chatResponse(id, c))
}

// handleSelectQuestion answers a suggested question
//
//	@Summary	Select a suggested question
//	@Tags		chat
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Session ID"
//	@Param		request	body		SelectQuestionRequest	true	"Question"
//	@Success	200		{object}	ChatResponse
//	@Failure	400		{object}	ErrorBody
//	@Failure	404		{object}	ErrorBody
//	@Router		/chat/sessions/{id}/questions [post]
func (s *Server) handleSelectQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req SelectQuestionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	if req.ID == "" {
		s.handleError(w, r, &ErrValidation{Field: "id", Message: "question id is required"})
		return
	}

	c, err := s.chat.SelectQuestion(id, req.ID, req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, chatResponse(id, c))
}

// handleSubmitMessage processes free text from the visitor
//
//	@Summary	Send a message
//	@Tags		chat
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Session ID"
//	@Param		request	body		SubmitMessageRequest	true	"Message"
//	@Success	200		{object}	ChatResponse
//	@Failure	400		{object}	ErrorBody
//	@Failure	404		{object}	ErrorBody
//	@Router		/chat/sessions/{id}/messages [post]
func (s *Server) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	var req SubmitMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	c, err := s.chat.SubmitFreeText(r.Context(), id, req.Text)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, chatResponse(id, c))
}

// handleGoBack undoes the last exchange
//
//	@Summary	Go back one exchange
//	@Tags		chat
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	ChatResponse
//	@Failure	404	{object}	ErrorBody
//	@Router		/chat/sessions/{id}/back [post]
func (s *Server) handleGoBack(w http.ResponseWriter, r *http.Request) {
	s.chatToggle(w, r, s.chat.GoBack)
}

// handleNextPrompts shows the next page of suggested questions
//
//	@Summary	Show more suggested questions
//	@Tags		chat
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	ChatResponse
//	@Failure	404	{object}	ErrorBody
//	@Router		/chat/sessions/{id}/prompts/next [post]
func (s *Server) handleNextPrompts(w http.ResponseWriter, r *http.Request) {
	s.chatToggle(w, r, s.chat.CyclePromptPage)
}

func (s *Server) chatToggle(w http.ResponseWriter, r *http.Request, op func(uuid.UUID) (chat.Conversation, bool, error)) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	c, changed, err := op(id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	resp := chatResponse(id, c)
	resp.Changed = &changed
	s.jsonResponse(w, http.StatusOK, resp)
}
