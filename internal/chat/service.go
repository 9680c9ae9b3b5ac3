package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/institute-portal/internal/leads"
	"github.com/jonathan/institute-portal/internal/session"
)

// DeliveryTimeout bounds how long a captured lead may take to reach the sink.
const DeliveryTimeout = 10 * time.Second

// Service keeps one conversation per chat session and hands captured leads to a sink.
type Service struct {
	engine *Engine
	store  *session.Store[Conversation]
	sink   leads.Sink
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates a chat service. A nil sink drops captured leads.
func NewService(engine *Engine, store *session.Store[Conversation], sink leads.Sink, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Service{engine: engine, store: store, sink: sink, logger: logger, now: time.Now}
}

// Start creates a new, unopened conversation.
func (s *Service) Start() (uuid.UUID, Conversation) {
	c := s.engine.New()
	return s.store.Create(c), c
}

// Get returns the conversation for id.
func (s *Service) Get(id uuid.UUID) (Conversation, error) {
	return s.store.Get(id)
}

// Open greets the visitor if the conversation has not been opened yet.
func (s *Service) Open(id uuid.UUID) (Conversation, error) {
	return s.store.Update(id, func(c Conversation) (Conversation, error) {
		return s.engine.Open(c), nil
	})
}

// SelectQuestion applies a prompt click.
func (s *Service) SelectQuestion(id uuid.UUID, questionID, text string) (Conversation, error) {
	return s.store.Update(id, func(c Conversation) (Conversation, error) {
		return s.engine.SelectQuestion(c, questionID, text), nil
	})
}

// SubmitFreeText applies typed input and delivers a lead if one was just captured. Delivery
// is detached from ctx so a client hanging up does not lose the lead. Delivery failures are
// logged; the conversation has already moved on.
func (s *Service) SubmitFreeText(ctx context.Context, id uuid.UUID, text string) (Conversation, error) {
	var captured *Lead
	c, err := s.store.Update(id, func(c Conversation) (Conversation, error) {
		next, lead, err := s.engine.SubmitFreeText(c, text)
		if err != nil {
			return c, err
		}
		captured = lead
		return next, nil
	})
	if err != nil {
		return c, err
	}
	if captured != nil {
		s.deliver(ctx, id, c.LeadID(), *captured)
	}
	return c, nil
}

// GoBack rewinds one step. The bool is false when there was nothing to rewind.
func (s *Service) GoBack(id uuid.UUID) (Conversation, bool, error) {
	var rewound bool
	c, err := s.store.Update(id, func(c Conversation) (Conversation, error) {
		next, ok := s.engine.GoBack(c)
		rewound = ok
		return next, nil
	})
	return c, rewound, err
}

// CyclePromptPage shows the next page of initial prompts.
func (s *Service) CyclePromptPage(id uuid.UUID) (Conversation, bool, error) {
	var cycled bool
	c, err := s.store.Update(id, func(c Conversation) (Conversation, error) {
		next, ok := s.engine.CyclePromptPage(c)
		cycled = ok
		return next, nil
	})
	return c, cycled, err
}

func (s *Service) deliver(ctx context.Context, sessionID, leadID uuid.UUID, lead Lead) {
	log := s.logger.WithField("session_id", sessionID)
	if s.sink == nil {
		log.Debug("no lead sink configured, dropping lead")
		return
	}
	if leadID == uuid.Nil {
		leadID = uuid.New()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DeliveryTimeout)
	defer cancel()

	record := leads.Lead{
		ID:         leadID,
		SessionID:  sessionID,
		Name:       lead.Name,
		Phone:      lead.Phone,
		Query:      lead.Query,
		CapturedAt: s.now().UTC(),
	}
	if err := s.sink.Deliver(ctx, record); err != nil {
		log.WithError(err).WithField("lead_id", record.ID).Error("failed to deliver lead")
	}
}
