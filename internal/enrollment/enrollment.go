// Package enrollment records which courses a user has enrolled in and their paid memberships.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/institute-portal/internal/catalog"
)

// PermissionError is returned when the document store refuses a write for the user.
type PermissionError struct {
	UserID string
	Cause  error
}

func (e *PermissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("permission denied for user %s: %v", e.UserID, e.Cause)
	}
	return fmt.Sprintf("permission denied for user %s", e.UserID)
}

func (e *PermissionError) Unwrap() error {
	return e.Cause
}

// NotFoundError is returned for an unknown course.
type NotFoundError struct {
	CourseID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("course %q not found", e.CourseID)
}

// Membership is a paid enrollment.
type Membership struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"userId"`
	CourseID  string    `json:"course_id,omitempty" bson:"courseId,omitempty"`
	OrderID   string    `json:"order_id" bson:"orderId"`
	PaymentID string    `json:"payment_id" bson:"paymentId"`
	Amount    int64     `json:"amount" bson:"amount"`
	Currency  string    `json:"currency" bson:"currency"`
	StartedAt time.Time `json:"started_at" bson:"startedAt"`
}

// Recorder writes enrollments to the document store.
type Recorder interface {
	// RecordEnrollment merges courseID into the user's enrolled courses and stamps the
	// enrollment time.
	RecordEnrollment(ctx context.Context, userID, courseID string) error
	// RecordMembership stores m and marks the user as a member, atomically.
	RecordMembership(ctx context.Context, m Membership) error
}

// Courses looks up catalog entries.
type Courses interface {
	Get(id string) (catalog.Course, bool)
}

// Service validates enrollments before handing them to the recorder.
type Service struct {
	courses  Courses
	recorder Recorder
	logger   logrus.FieldLogger
}

// NewService creates an enrollment service.
func NewService(courses Courses, recorder Recorder, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Service{courses: courses, recorder: recorder, logger: logger}
}

// Enroll records that userID enrolled in courseID.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (catalog.Course, error) {
	if strings.TrimSpace(userID) == "" {
		return catalog.Course{}, &PermissionError{UserID: userID, Cause: errors.New("no authenticated user")}
	}
	course, ok := s.courses.Get(courseID)
	if !ok {
		return catalog.Course{}, &NotFoundError{CourseID: courseID}
	}
	if err := s.recorder.RecordEnrollment(ctx, userID, courseID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "course_id": courseID}).Error("enrollment failed")
		return catalog.Course{}, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "course_id": courseID}).Info("user enrolled")
	return course, nil
}

// RecordMembership stores a paid membership.
func (s *Service) RecordMembership(ctx context.Context, m Membership) error {
	if strings.TrimSpace(m.UserID) == "" {
		return &PermissionError{UserID: m.UserID, Cause: errors.New("no authenticated user")}
	}
	if m.StartedAt.IsZero() {
		m.StartedAt = time.Now().UTC()
	}
	if err := s.recorder.RecordMembership(ctx, m); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"user_id": m.UserID, "order_id": m.OrderID}).Info("membership recorded")
	return nil
}

// MemoryRecorder keeps enrollments in memory. It stands in for the document store when none
// is configured.
type MemoryRecorder struct {
	mu          sync.Mutex
	enrolled    map[string][]string
	lastEnroll  map[string]time.Time
	memberships map[string]Membership
	members     map[string]bool
	now         func() time.Time
}

// NewMemoryRecorder creates an empty MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		enrolled:    make(map[string][]string),
		lastEnroll:  make(map[string]time.Time),
		memberships: make(map[string]Membership),
		members:     make(map[string]bool),
		now:         time.Now,
	}
}

// RecordEnrollment adds courseID to the user's set.
func (r *MemoryRecorder) RecordEnrollment(_ context.Context, userID, courseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.enrolled[userID] {
		if id == courseID {
			r.lastEnroll[userID] = r.now()
			return nil
		}
	}
	r.enrolled[userID] = append(r.enrolled[userID], courseID)
	r.lastEnroll[userID] = r.now()
	return nil
}

// RecordMembership stores the membership and flags the user.
func (r *MemoryRecorder) RecordMembership(_ context.Context, m Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberships[m.ID] = m
	r.members[m.UserID] = true
	return nil
}

// Enrolled returns the courses userID is enrolled in.
func (r *MemoryRecorder) Enrolled(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.enrolled[userID]...)
}

// IsMember reports whether userID has a recorded membership.
func (r *MemoryRecorder) IsMember(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.members[userID]
}
