// Package leads delivers captured counselor leads to wherever the deployment wants them.
package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Lead is a completed (or partially completed) contact request from the chatbot.
type Lead struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Query      string    `json:"query"`
	CapturedAt time.Time `json:"captured_at"`
}

// Sink receives captured leads.
type Sink interface {
	Deliver(ctx context.Context, lead Lead) error
}

// DeliveryError wraps a failure from a named sink.
type DeliveryError struct {
	Sink  string
	Cause error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("lead delivery to %s failed: %v", e.Sink, e.Cause)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// LogSink writes each lead as a structured log entry.
type LogSink struct {
	logger logrus.FieldLogger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger logrus.FieldLogger) *LogSink {
	return &LogSink{logger: logger}
}

// Deliver logs the lead.
func (s *LogSink) Deliver(_ context.Context, lead Lead) error {
	entry := s.logger.WithFields(logrus.Fields{
		"lead_id":    lead.ID,
		"session_id": lead.SessionID,
		"name":       lead.Name,
		"phone":      lead.Phone,
		"query":      lead.Query,
	})
	if lead.Name == "" || lead.Phone == "" {
		entry.Warn("incomplete lead captured")
		return nil
	}
	entry.Info("lead captured")
	return nil
}

// Recorder persists leads. *db.DB implements it.
type Recorder interface {
	InsertLead(ctx context.Context, lead Lead) error
}

// PostgresSink saves leads through a Recorder, normally the Postgres store.
type PostgresSink struct {
	store Recorder
}

// NewPostgresSink creates a PostgresSink.
func NewPostgresSink(store Recorder) *PostgresSink {
	return &PostgresSink{store: store}
}

// Deliver saves the lead.
func (s *PostgresSink) Deliver(ctx context.Context, lead Lead) error {
	if err := s.store.InsertLead(ctx, lead); err != nil {
		return &DeliveryError{Sink: "postgres", Cause: err}
	}
	return nil
}

// Multi delivers to every sink in turn and joins their errors.
type Multi []Sink

// Deliver sends lead to each sink. A failing sink does not stop the others.
func (m Multi) Deliver(ctx context.Context, lead Lead) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Deliver(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
