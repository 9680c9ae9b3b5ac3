package chat

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/institute-portal/internal/knowledge"
)

// Role identifies who sent a message.
type Role string

// Message roles
const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one line of the visible transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Lead is the contact request accumulated over several turns. Any field may be empty.
type Lead struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Query string `json:"query,omitempty"`
}

// Complete reports whether all three fields are filled in.
func (l Lead) Complete() bool {
	return l.Name != "" && l.Phone != "" && l.Query != ""
}

// checkpoint is what GoBack restores.
type checkpoint struct {
	state          State
	lead           Lead
	leadID         uuid.UUID
	displayed      []knowledge.Question
	promptPage     int
	showingInitial bool
}

// Conversation is the complete state of one chat session. Engine methods never modify a
// Conversation in place; they return an updated copy.
type Conversation struct {
	State          State
	Messages       []Message
	Displayed      []knowledge.Question
	PromptPage     int
	ShowingInitial bool
	Lead           Lead
	Opened         bool

	leadID  uuid.UUID
	history []checkpoint
}

// LeadID identifies the lead being collected. It is uuid.Nil until the visitor asks a
// question of their own.
func (c Conversation) LeadID() uuid.UUID {
	return c.leadID
}

// CanGoBack reports whether there is a step to rewind.
func (c Conversation) CanGoBack() bool {
	return len(c.history) > 0
}

// clone returns a deep-enough copy that appends and truncations on the result never alias c.
func (c Conversation) clone() Conversation {
	c.Messages = slices.Clone(c.Messages)
	c.Displayed = slices.Clone(c.Displayed)
	c.history = slices.Clone(c.history)
	return c
}

func (c Conversation) checkpoint() checkpoint {
	return checkpoint{
		state:          c.State,
		lead:           c.Lead,
		leadID:         c.leadID,
		displayed:      slices.Clone(c.Displayed),
		promptPage:     c.PromptPage,
		showingInitial: c.ShowingInitial,
	}
}

// View is the JSON shape of a conversation returned to clients.
type View struct {
	State          State                `json:"state"`
	Messages       []Message            `json:"messages"`
	Questions      []knowledge.Question `json:"questions"`
	PromptPage     int                  `json:"prompt_page"`
	ShowingInitial bool                 `json:"showing_initial"`
	CanGoBack      bool                 `json:"can_go_back"`
	Lead           Lead                 `json:"lead"`
}

// View builds the client representation.
func (c Conversation) View() View {
	messages := c.Messages
	if messages == nil {
		messages = []Message{}
	}
	questions := c.Displayed
	if questions == nil {
		questions = []knowledge.Question{}
	}
	return View{
		State:          c.State,
		Messages:       messages,
		Questions:      questions,
		PromptPage:     c.PromptPage,
		ShowingInitial: c.ShowingInitial,
		CanGoBack:      c.CanGoBack(),
		Lead:           c.Lead,
	}
}
