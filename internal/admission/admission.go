// Package admission accepts admission applications with their supporting documents.
package admission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MaxFileSize is the largest accepted document.
const MaxFileSize = 10 << 20

// Multipart field names
const (
	FieldBonafide = "bonafideFile"
	FieldAadhaar  = "aadhaarFile"
)

// Form is the applicant's typed details.
type Form struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Phone   string `json:"phone" validate:"required,numeric,min=10,max=15"`
	College string `json:"college" validate:"required,max=200"`
}

// File is one uploaded document.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// Submission is a complete application as received.
type Submission struct {
	Form
	Bonafide File
	Aadhaar  File
}

// Application is a stored application.
type Application struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	College     string    `json:"college"`
	BonafideKey string    `json:"bonafide_key"`
	AadhaarKey  string    `json:"aadhaar_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result is the response body of a submission.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Repository persists applications. *db.DB implements it.
type Repository interface {
	InsertApplication(ctx context.Context, app Application) error
}

// Service validates, stores and records applications.
type Service struct {
	blobs    BlobStore
	repo     Repository
	validate *validator.Validate
	logger   logrus.FieldLogger
	now      func() time.Time
}

// NewService creates an admission service. repo may be nil, in which case applications are
// only logged.
func NewService(blobs BlobStore, repo Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Service{blobs: blobs, repo: repo, validate: validator.New(), logger: logger, now: time.Now}
}

// normalizePhone drops spaces, dashes, brackets and a leading plus.
func normalizePhone(p string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '+':
			return -1
		}
		return r
	}, p)
}

// Submit checks the form and both documents, uploads the documents concurrently and records
// the application. Nothing is recorded unless both uploads succeed.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Application, error) {
	sub.Name = strings.TrimSpace(sub.Name)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.College = strings.TrimSpace(sub.College)
	sub.Phone = normalizePhone(sub.Phone)
	if err := s.validate.Struct(sub.Form); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return nil, &ValidationError{Field: strings.ToLower(ve[0].Field()), Message: ve[0].Tag()}
		}
		return nil, &ValidationError{Field: "form", Message: err.Error()}
	}

	bonafide, err := Inspect(FieldBonafide, sub.Bonafide.Data)
	if err != nil {
		return nil, err
	}
	aadhaar, err := Inspect(FieldAadhaar, sub.Aadhaar.Data)
	if err != nil {
		return nil, err
	}

	app := Application{
		ID:        uuid.New(),
		Name:      sub.Name,
		Email:     sub.Email,
		Phone:     sub.Phone,
		College:   sub.College,
		CreatedAt: s.now().UTC(),
	}
	app.BonafideKey = objectKey(app.ID, "bonafide", bonafide.Extension)
	app.AadhaarKey = objectKey(app.ID, "aadhaar", aadhaar.Extension)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.put(gctx, app.BonafideKey, bonafide.MIME, sub.Bonafide.Data)
	})
	g.Go(func() error {
		return s.put(gctx, app.AadhaarKey, aadhaar.MIME, sub.Aadhaar.Data)
	})
	if err := g.Wait(); err != nil {
		s.logger.WithError(err).WithField("application_id", app.ID).Error("document upload failed")
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.InsertApplication(ctx, app); err != nil {
			return nil, err
		}
	}
	s.logger.WithFields(logrus.Fields{"application_id": app.ID, "college": app.College}).Info("admission application received")
	return &app, nil
}

func (s *Service) put(ctx context.Context, key, contentType string, data []byte) error {
	if err := s.blobs.Put(ctx, key, contentType, data); err != nil {
		return &StorageError{Key: key, Cause: err}
	}
	return nil
}

func objectKey(id uuid.UUID, name, ext string) string {
	return fmt.Sprintf("admissions/%s/%s%s", id, name, ext)
}

// ParseRequest reads a multipart admission form. Each document may be at most MaxFileSize
// bytes.
func ParseRequest(w http.ResponseWriter, r *http.Request) (Submission, error) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*MaxFileSize+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		return Submission{}, &ValidationError{Field: "form", Message: fmt.Sprintf("invalid multipart form: %v", err)}
	}

	sub := Submission{Form: Form{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Phone:   r.FormValue("phone"),
		College: r.FormValue("college"),
	}}
	var err error
	if sub.Bonafide, err = readFile(r.MultipartForm, FieldBonafide); err != nil {
		return Submission{}, err
	}
	if sub.Aadhaar, err = readFile(r.MultipartForm, FieldAadhaar); err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func readFile(form *multipart.Form, field string) (File, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return File{}, &ValidationError{Field: field, Message: "required"}
	}
	h := headers[0]
	if h.Size > MaxFileSize {
		return File{}, &ValidationError{Field: field, Message: fmt.Sprintf("file exceeds %d MB", MaxFileSize>>20)}
	}
	f, err := h.Open()
	if err != nil {
		return File{}, fmt.Errorf("failed to open upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	if len(data) > MaxFileSize {
		return File{}, &ValidationError{Field: field, Message: fmt.Sprintf("file exceeds %d MB", MaxFileSize>>20)}
	}
	return File{Field: field, Filename: h.Filename, Data: data}, nil
}
