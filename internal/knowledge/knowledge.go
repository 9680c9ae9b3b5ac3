// Package knowledge holds the chatbot's static question/answer table.
//
// The table is loaded once (from the embedded YAML or an override file), schema-checked, and
// never mutated afterwards, so a *Base can be shared by every chat session.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/institute-portal/internal/schemas"
	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Question is a selectable prompt shown to the visitor.
type Question struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Answer is the canned reply for a question together with the prompts offered next.
type Answer struct {
	Text      string     `json:"text" yaml:"text"`
	FollowUps []Question `json:"follow_ups,omitempty" yaml:"follow_ups"`
}

// Messages are the bot's scripted lines. AskPhone and LeadCaptured may reference
// {{.Name}} and {{.Phone}}.
type Messages struct {
	Greeting     string `json:"greeting" yaml:"greeting"`
	Deflection   string `json:"deflection" yaml:"deflection"`
	AskName      string `json:"ask_name" yaml:"ask_name"`
	AskPhone     string `json:"ask_phone" yaml:"ask_phone"`
	LeadCaptured string `json:"lead_captured" yaml:"lead_captured"`
	Closing      string `json:"closing" yaml:"closing"`
}

type file struct {
	Messages       Messages          `yaml:"messages"`
	DeclinePhrases []string          `yaml:"decline_phrases"`
	InitialPrompts []Question        `yaml:"initial_prompts"`
	Answers        map[string]Answer `yaml:"answers"`
}

// Base is the immutable knowledge base.
type Base struct {
	messages       Messages
	declinePhrases []string
	initial        []Question
	answers        map[string]Answer
	questions      map[string]Question
}

// Default returns the knowledge base compiled into the binary.
func Default() (*Base, error) {
	return Parse(defaultKnowledge)
}

// LoadFile reads a knowledge base from a YAML file on disk.
func LoadFile(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge base %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes, schema-checks and indexes a YAML knowledge base.
func Parse(data []byte) (*Base, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base YAML: %w", err)
	}
	if err := schemas.Validate(schemas.KnowledgeBase, raw); err != nil {
		return nil, fmt.Errorf("invalid knowledge base: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode knowledge base: %w", err)
	}

	return build(f)
}

func build(f file) (*Base, error) {
	b := &Base{
		messages:  f.Messages,
		initial:   append([]Question(nil), f.InitialPrompts...),
		answers:   make(map[string]Answer, len(f.Answers)),
		questions: make(map[string]Question),
	}

	for _, phrase := range f.DeclinePhrases {
		b.declinePhrases = append(b.declinePhrases, strings.ToLower(phrase))
	}
	if len(b.declinePhrases) == 0 {
		b.declinePhrases = []string{"no", "that's all"}
	}

	for _, q := range f.InitialPrompts {
		if err := b.index(q); err != nil {
			return nil, err
		}
	}
	for id, answer := range f.Answers {
		b.answers[id] = Answer{
			Text:      answer.Text,
			FollowUps: append([]Question(nil), answer.FollowUps...),
		}
		for _, q := range answer.FollowUps {
			if err := b.index(q); err != nil {
				return nil, err
			}
		}
	}

	return b, nil
}

// index records a question's text; the same id must always carry the same text.
func (b *Base) index(q Question) error {
	if existing, ok := b.questions[q.ID]; ok && existing.Text != q.Text {
		return fmt.Errorf("invalid knowledge base: question %q has conflicting texts %q and %q", q.ID, existing.Text, q.Text)
	}
	b.questions[q.ID] = q
	return nil
}

// Messages returns the scripted bot lines.
func (b *Base) Messages() Messages {
	return b.messages
}

// Answer looks up the canned answer for a question id.
func (b *Base) Answer(id string) (Answer, bool) {
	answer, ok := b.answers[id]
	if !ok {
		return Answer{}, false
	}
	answer.FollowUps = append([]Question(nil), answer.FollowUps...)
	return answer, true
}

// Question returns a known question by id.
func (b *Base) Question(id string) (Question, bool) {
	q, ok := b.questions[id]
	return q, ok
}

// InitialPrompts returns a copy of the opening prompt set.
func (b *Base) InitialPrompts() []Question {
	return append([]Question(nil), b.initial...)
}

// PageCount is the number of pages of initial prompts for a given page size.
func (b *Base) PageCount(size int) int {
	if size < 1 || len(b.initial) == 0 {
		return 0
	}
	return (len(b.initial) + size - 1) / size
}

// Page returns page n (0-based) of the initial prompts. Out-of-range pages wrap around.
func (b *Base) Page(n, size int) []Question {
	pages := b.PageCount(size)
	if pages == 0 {
		return nil
	}
	n = ((n % pages) + pages) % pages
	start := n * size
	end := min(start+size, len(b.initial))
	return append([]Question(nil), b.initial[start:end]...)
}

// Declines reports whether text reads as "no more questions". Matching is a case-insensitive
// substring test against the configured phrases.
func (b *Base) Declines(text string) bool {
	lower := strings.ToLower(normalizeApostrophes(text))
	for _, phrase := range b.declinePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// FollowUpIDs lists every follow-up question id referenced by any answer.
func (b *Base) FollowUpIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, answer := range b.answers {
		for _, q := range answer.FollowUps {
			if !seen[q.ID] {
				seen[q.ID] = true
				ids = append(ids, q.ID)
			}
		}
	}
	return ids
}

func normalizeApostrophes(s string) string {
	return strings.NewReplacer("’", "'", "‘", "'").Replace(s)
}
