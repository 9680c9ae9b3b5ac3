// Package server provides the HTTP REST API for the institute portal.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/institute-portal/internal/admission"
	"github.com/jonathan/institute-portal/internal/assist"
	"github.com/jonathan/institute-portal/internal/chat"
	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/payment"
	"github.com/jonathan/institute-portal/internal/resume"
	"github.com/jonathan/institute-portal/internal/schemas"
	"github.com/jonathan/institute-portal/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Field   string   `json:"field,omitempty"`
	Details []string `json:"details,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr        *ErrValidation
		chatErr       *chat.ValidationError
		resumeErr     *resume.ValidationError
		schemaErr     *schemas.ValidationError
		paymentErr    *payment.ValidationError
		admissionErr  *admission.ValidationError
		permissionErr *enrollment.PermissionError
		sessionErr    *session.NotFoundError
		courseErr     *enrollment.NotFoundError
		orderErr      *payment.NotFoundError
		transitionErr *payment.TransitionError
		gatewayErr    *payment.GatewayError
		upstreamErr   *assist.UpstreamError
		storageErr    *admission.StorageError
		disabledErr   *assist.DisabledError
	)

	switch {
	case errors.As(err, &reqErr), errors.As(err, &chatErr), errors.As(err, &resumeErr),
		errors.As(err, &schemaErr), errors.As(err, &paymentErr), errors.As(err, &admissionErr):
		return http.StatusBadRequest
	case errors.As(err, &permissionErr):
		return http.StatusForbidden
	case errors.As(err, &sessionErr), errors.As(err, &courseErr), errors.As(err, &orderErr):
		return http.StatusNotFound
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	case errors.As(err, &gatewayErr), errors.As(err, &upstreamErr), errors.As(err, &storageErr):
		return http.StatusBadGateway
	case errors.As(err, &disabledErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the response body for err. Server errors never expose their cause.
func errorBody(err error, status int) ErrorBody {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		switch status {
		case http.StatusBadGateway:
			return ErrorBody{Error: "an upstream service failed, please try again later"}
		default:
			return ErrorBody{Error: "internal server error"}
		}
	}

	body := ErrorBody{Error: err.Error()}

	var (
		reqErr       *ErrValidation
		chatErr      *chat.ValidationError
		resumeErr    *resume.ValidationError
		paymentErr   *payment.ValidationError
		admissionErr *admission.ValidationError
		schemaErr    *schemas.ValidationError
	)
	switch {
	case errors.As(err, &reqErr):
		body.Error, body.Field = reqErr.Message, reqErr.Field
	case errors.As(err, &chatErr):
		body.Error, body.Field = chatErr.Message, chatErr.Field
	case errors.As(err, &resumeErr):
		body.Error, body.Field = resumeErr.Message, resumeErr.Field
	case errors.As(err, &paymentErr):
		body.Error, body.Field = paymentErr.Message, paymentErr.Field
	case errors.As(err, &admissionErr):
		body.Error, body.Field = admissionErr.Message, admissionErr.Field
	case errors.As(err, &schemaErr):
		body.Error = "document does not match the résumé schema"
		for _, fe := range schemaErr.Errors {
			body.Details = append(body.Details, fe.Field+": "+fe.Message)
		}
	}
	return body
}
