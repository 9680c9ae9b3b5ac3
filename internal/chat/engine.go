package chat

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/institute-portal/internal/knowledge"
)

// DefaultPageSize is how many initial prompts are shown at once.
const DefaultPageSize = 3

// ValidationError is returned when the visitor's input cannot be accepted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Engine applies visitor actions to conversations. It holds only read-only data and is
// safe for concurrent use.
type Engine struct {
	kb       *knowledge.Base
	pageSize int
	now      func() time.Time
	newID    func() uuid.UUID
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets how many initial prompts make up one page.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithClock overrides the clock used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine over kb.
func NewEngine(kb *knowledge.Base, opts ...Option) *Engine {
	e := &Engine{kb: kb, pageSize: DefaultPageSize, now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Knowledge returns the knowledge base the engine answers from.
func (e *Engine) Knowledge() *knowledge.Base {
	return e.kb
}

// New returns an empty, unopened conversation in the idle state.
func (e *Engine) New() Conversation {
	return Conversation{
		State:          StateIdle,
		Messages:       []Message{},
		Displayed:      e.kb.Page(0, e.pageSize),
		ShowingInitial: true,
	}
}

// Open greets the visitor the first time the chat window is opened. Later calls return c
// unchanged.
func (e *Engine) Open(c Conversation) Conversation {
	if c.Opened {
		return c
	}
	next := c.clone()
	next.Opened = true
	next.Messages = append(next.Messages, e.message(RoleBot, e.kb.Messages().Greeting))
	e.resetPrompts(&next)
	return next
}

// SelectQuestion handles a click on a displayed prompt. When text is empty the prompt text
// is taken from the knowledge base.
func (e *Engine) SelectQuestion(c Conversation, id, text string) Conversation {
	if text == "" {
		if q, ok := e.kb.Question(id); ok {
			text = q.Text
		} else {
			text = id
		}
	}

	next := c.clone()
	next.history = append(next.history, c.checkpoint())
	next.Messages = append(next.Messages, e.message(RoleUser, text))

	if answer, ok := e.kb.Answer(id); ok {
		next.Messages = append(next.Messages, e.message(RoleBot, answer.Text))
		next.Displayed = answer.FollowUps
	} else {
		next.Messages = append(next.Messages, e.message(RoleBot, e.kb.Messages().Deflection))
		next.Displayed = nil
	}
	next.ShowingInitial = false
	next.State = Transition(c.State, InputQuestionSelected)
	return next
}

// Classify decides how typed text is treated in state s.
func (e *Engine) Classify(s State, text string) Input {
	// Any text containing a decline phrase declines, "I know Python" included.
	if s == StateConfirmingMoreQuestions && e.kb.Declines(text) {
		return InputDeclined
	}
	return InputFreeText
}

// SubmitFreeText handles typed input. The returned lead is non-nil when this step finished
// collecting contact details and the lead should be handed off.
func (e *Engine) SubmitFreeText(c Conversation, text string) (Conversation, *Lead, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return c, nil, &ValidationError{Field: "text", Message: "message must not be empty"}
	}

	next := c.clone()
	next.history = append(next.history, c.checkpoint())
	next.Messages = append(next.Messages, e.message(RoleUser, text))

	input := e.Classify(c.State, text)
	next.State = Transition(c.State, input)

	msgs := e.kb.Messages()
	var captured *Lead
	switch {
	case input == InputDeclined:
		next.Messages = append(next.Messages, e.message(RoleBot, msgs.Closing))
		e.resetPrompts(&next)
	case c.State == StateAwaitingName:
		next.Lead.Name = text
		next.Messages = append(next.Messages, e.message(RoleBot, fill(msgs.AskPhone, next.Lead)))
	case c.State == StateAwaitingPhone:
		next.Lead.Phone = text
		next.Messages = append(next.Messages, e.message(RoleBot, fill(msgs.LeadCaptured, next.Lead)))
		lead := next.Lead
		captured = &lead
	default:
		// A new query starts a new lead. Its id survives GoBack, so re-entering the phone
		// number captures the same lead again.
		next.Lead = Lead{Query: text}
		next.leadID = e.newID()
		next.Messages = append(next.Messages, e.message(RoleBot, msgs.AskName))
		next.Displayed = nil
		next.ShowingInitial = false
	}
	return next, captured, nil
}

// GoBack rewinds the most recent step: the last user/bot pair is dropped and the state,
// lead and prompts are restored. It reports false when there is nothing to rewind.
func (e *Engine) GoBack(c Conversation) (Conversation, bool) {
	if len(c.history) == 0 {
		return c, false
	}
	next := c.clone()
	last := next.history[len(next.history)-1]
	next.history = next.history[:len(next.history)-1]

	drop := min(2, len(next.Messages))
	next.Messages = next.Messages[:len(next.Messages)-drop]

	next.State = last.state
	next.Lead = last.lead
	next.leadID = last.leadID
	next.Displayed = slices.Clone(last.displayed)
	next.PromptPage = last.promptPage
	next.ShowingInitial = last.showingInitial
	return next, true
}

// CyclePromptPage shows the next page of initial prompts, wrapping at the end. It reports
// false and does nothing while follow-ups are displayed.
func (e *Engine) CyclePromptPage(c Conversation) (Conversation, bool) {
	if !c.ShowingInitial {
		return c, false
	}
	next := c.clone()
	pages := e.kb.PageCount(e.pageSize)
	if pages == 0 {
		return next, false
	}
	next.PromptPage = (c.PromptPage + 1) % pages
	next.Displayed = e.kb.Page(next.PromptPage, e.pageSize)
	return next, true
}

func (e *Engine) resetPrompts(c *Conversation) {
	c.PromptPage = 0
	c.Displayed = e.kb.Page(0, e.pageSize)
	c.ShowingInitial = true
}

func (e *Engine) message(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: e.now()}
}

// fill substitutes lead fields into a scripted line.
func fill(tmpl string, lead Lead) string {
	return strings.NewReplacer(
		"{{.Name}}", lead.Name,
		"{{.Phone}}", lead.Phone,
		"{{.Query}}", lead.Query,
	).Replace(tmpl)
}
