package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jonathan/institute-portal/internal/enrollment"
	"github.com/jonathan/institute-portal/internal/payment"
	"github.com/jonathan/institute-portal/internal/server/middleware"
)

// CreateOrderRequest opens a membership order. When CourseID is set and Amount is zero the
// course fee is charged.
type CreateOrderRequest struct {
	Amount   int64  `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Receipt  string `json:"receipt,omitempty"`
	CourseID string `json:"course_id,omitempty"`
}

// PaymentSuccessRequest is the gateway's success callback.
type PaymentSuccessRequest struct {
	PaymentID string `json:"payment_id"`
}

// PaymentFailureRequest is the gateway's failure callback.
type PaymentFailureRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// handleCreateOrder opens a payment order for the signed-in user
//
//	@Summary	Create a payment order
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		CreateOrderRequest	true	"Order"
//	@Success	201		{object}	payment.Order
//	@Failure	400		{object}	ErrorBody
//	@Failure	502		{object}	ErrorBody
//	@Router		/payments/orders [post]
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	orderReq := payment.OrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		CourseID: req.CourseID,
	}
	if req.CourseID != "" {
		course, ok := s.courses.Get(req.CourseID)
		if !ok {
			s.handleError(w, r, &enrollment.NotFoundError{CourseID: req.CourseID})
			return
		}
		if orderReq.Amount == 0 {
			orderReq.Amount, orderReq.Currency = course.Fee, course.Currency
		}
	}
	if strings.TrimSpace(orderReq.Currency) == "" {
		orderReq.Currency = s.currency
	}
	if strings.TrimSpace(orderReq.Receipt) == "" {
		orderReq.Receipt = "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	}

	order, err := s.payments.CreateOrder(r.Context(), user.ID, orderReq)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, order)
}

// handleGetOrder returns one of the user's orders
//
//	@Summary	Get a payment order
//	@Tags		payments
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	payment.Order
//	@Failure	404	{object}	ErrorBody
//	@Router		/payments/orders/{id} [get]
func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	order, err := s.payments.GetOrder(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, order)
}

// handlePaymentSuccess marks an order paid and records the membership
//
//	@Summary	Payment success callback
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Order ID"
//	@Param		request	body		PaymentSuccessRequest	true	"Payment"
//	@Success	200		{object}	payment.Order
//	@Failure	409		{object}	ErrorBody
//	@Router		/payments/orders/{id}/success [post]
func (s *Server) handlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req PaymentSuccessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	order, err := s.payments.ConfirmPayment(r.Context(), user.ID, mux.Vars(r)["id"], req.PaymentID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, order)
}

// handlePaymentFailure marks an order failed
//
//	@Summary	Payment failure callback
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Order ID"
//	@Param		request	body		PaymentFailureRequest	true	"Failure"
//	@Success	200		{object}	payment.Order
//	@Failure	409		{object}	ErrorBody
//	@Router		/payments/orders/{id}/failure [post]
func (s *Server) handlePaymentFailure(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.GetUser(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req PaymentFailureRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}

	order, err := s.payments.FailPayment(r.Context(), user.ID, mux.Vars(r)["id"], req.Code, req.Description)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, order)
}
