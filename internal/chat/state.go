// Package chat implements the FAQ chatbot's dialogue engine: a small state machine that
// answers from the knowledge base and falls back to collecting a counselor lead.
package chat

import (
	"encoding/json"
	"fmt"
)

// State is the conversation's position in the lead-collection flow.
type State int

// Conversation states
const (
	StateIdle State = iota
	StateAwaitingName
	StateAwaitingPhone
	StateConfirmingMoreQuestions
	StateCollectingQuery
)

var stateNames = map[State]string{
	StateIdle:                    "idle",
	StateAwaitingName:            "awaiting_name",
	StateAwaitingPhone:           "awaiting_phone",
	StateConfirmingMoreQuestions: "confirming_more_questions",
	StateCollectingQuery:         "collecting_query",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalJSON encodes the state by name.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state name.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for state, n := range stateNames {
		if n == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown chat state %q", name)
}

// Input classifies what the visitor did.
type Input int

// Input classes
const (
	// InputQuestionSelected is a click on a displayed prompt.
	InputQuestionSelected Input = iota
	// InputFreeText is typed text that is not a decline.
	InputFreeText
	// InputDeclined is typed text declining further questions; only produced while
	// confirming more questions.
	InputDeclined
)

func (i Input) String() string {
	switch i {
	case InputQuestionSelected:
		return "question_selected"
	case InputFreeText:
		return "free_text"
	case InputDeclined:
		return "declined"
	default:
		return fmt.Sprintf("input(%d)", int(i))
	}
}

// Transition returns the state that follows s on input in.
func Transition(s State, in Input) State {
	switch in {
	case InputQuestionSelected:
		return StateCollectingQuery
	case InputDeclined:
		if s == StateConfirmingMoreQuestions {
			return StateIdle
		}
		return Transition(s, InputFreeText)
	case InputFreeText:
		switch s {
		case StateIdle, StateCollectingQuery, StateConfirmingMoreQuestions:
			return StateAwaitingName
		case StateAwaitingName:
			return StateAwaitingPhone
		case StateAwaitingPhone:
			return StateConfirmingMoreQuestions
		}
	}
	return s
}
