package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/institute-portal/internal/admission"
	"github.com/jonathan/institute-portal/internal/assist"
	"github.com/jonathan/institute-portal/internal/chat"
	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/payment"
	"github.com/jonathan/institute-portal/internal/resume"
	"github.com/jonathan/institute-portal/internal/schemas"
	"github.com/jonathan/institute-portal/internal/session"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request validation", &ErrValidation{Field: "id", Message: "bad"}, http.StatusBadRequest},
		{"chat validation", &chat.ValidationError{Field: "phone", Message: "bad"}, http.StatusBadRequest},
		{"resume validation", &resume.ValidationError{Field: "step", Message: "bad"}, http.StatusBadRequest},
		{"schema validation", &schemas.ValidationError{}, http.StatusBadRequest},
		{"payment validation", &payment.ValidationError{Field: "amount", Message: "bad"}, http.StatusBadRequest},
		{"admission validation", &admission.ValidationError{Field: "email", Message: "bad"}, http.StatusBadRequest},
		{"permission", &enrollment.PermissionError{UserID: "u"}, http.StatusForbidden},
		{"session missing", &session.NotFoundError{ID: uuid.New()}, http.StatusNotFound},
		{"course missing", &enrollment.NotFoundError{CourseID: "x"}, http.StatusNotFound},
		{"order missing", &payment.NotFoundError{OrderID: "x"}, http.StatusNotFound},
		{"transition", &payment.TransitionError{OrderID: "x"}, http.StatusConflict},
		{"gateway", &payment.GatewayError{Message: "down"}, http.StatusBadGateway},
		{"assist upstream", &assist.UpstreamError{Message: "down"}, http.StatusBadGateway},
		{"storage", &admission.StorageError{Key: "k", Cause: errors.New("boom")}, http.StatusBadGateway},
		{"assist disabled", &assist.DisabledError{}, http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("outer: %w", &payment.NotFoundError{OrderID: "x"}), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorBody(t *testing.T) {
	t.Run("validation carries field", func(t *testing.T) {
		body := errorBody(&chat.ValidationError{Field: "phone", Message: "enter 10 digits"}, http.StatusBadRequest)
		assert.Equal(t, ErrorBody{Error: "enter 10 digits", Field: "phone"}, body)
	})

	t.Run("schema details", func(t *testing.T) {
		err := &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "personal.email", Message: "invalid"}}}
		body := errorBody(err, http.StatusBadRequest)
		assert.Equal(t, []string{"personal.email: invalid"}, body.Details)
	})

	t.Run("internal error hides cause", func(t *testing.T) {
		body := errorBody(errors.New("pq: password authentication failed"), http.StatusInternalServerError)
		assert.Equal(t, "internal server error", body.Error)
	})

	t.Run("upstream error hides cause", func(t *testing.T) {
		body := errorBody(&payment.GatewayError{Message: "secret key rejected"}, http.StatusBadGateway)
		assert.NotContains(t, body.Error, "secret")
	})

	t.Run("disabled is explained", func(t *testing.T) {
		body := errorBody(&assist.DisabledError{}, http.StatusServiceUnavailable)
		assert.Equal(t, "writing assist is not configured", body.Error)
	})
}
