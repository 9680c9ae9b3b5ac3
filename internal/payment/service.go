package payment

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/institute-portal/internal/enrollment"
)

// Repository persists orders. *db.DB implements it.
type Repository interface {
	InsertOrder(ctx context.Context, o Order) error
	GetOrder(ctx context.Context, id string) (*Order, error)
	UpdateOrder(ctx context.Context, o Order) error
}

// MembershipRecorder is told about every paid order.
type MembershipRecorder interface {
	RecordMembership(ctx context.Context, m enrollment.Membership) error
}

// Service drives orders from creation to paid or failed.
type Service struct {
	gateway     Gateway
	orders      Repository
	memberships MembershipRecorder
	validate    *validator.Validate
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewService creates a payment service. memberships may be nil.
func NewService(gateway Gateway, orders Repository, memberships MembershipRecorder, logger logrus.FieldLogger) *Service {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		logger = l
	}
	return &Service{
		gateway:     gateway,
		orders:      orders,
		memberships: memberships,
		validate:    validator.New(),
		logger:      logger,
		now:         time.Now,
	}
}

// CreateOrder validates req, opens an order with the gateway and stores it as created.
func (s *Service) CreateOrder(ctx context.Context, userID string, req OrderRequest) (*Order, error) {
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	req.Receipt = strings.TrimSpace(req.Receipt)
	if err := s.validate.Struct(req); err != nil {
		return nil, fromValidator(err)
	}

	created, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		return nil, &GatewayError{Message: "failed to create order", Cause: err}
	}

	now := s.now().UTC()
	order := Order{
		ID:        created.ID,
		UserID:    userID,
		CourseID:  req.CourseID,
		Amount:    created.Amount,
		Currency:  created.Currency,
		Receipt:   req.Receipt,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.InsertOrder(ctx, order); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"order_id": order.ID, "amount": order.Amount, "currency": order.Currency}).Info("order created")
	return &order, nil
}

// GetOrder returns one of the user's orders.
func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (*Order, error) {
	o, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil || o.UserID != userID {
		return nil, &NotFoundError{OrderID: orderID}
	}
	return o, nil
}

// ConfirmPayment handles the gateway's success callback: a membership is recorded and the
// order becomes paid. The order is only saved as paid once the membership is in place, so a
// failed membership write leaves the order open and the callback can be retried. Signatures
// are not verified.
func (s *Service) ConfirmPayment(ctx context.Context, userID, orderID, paymentID string) (*Order, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, &ValidationError{Field: "payment_id", Message: "required"}
	}
	mutate := func(o *Order) {
		o.PaymentID = paymentID
		o.FailureCode, o.FailureReason = "", ""
	}
	o, err := s.transition(ctx, userID, orderID, EventPay, mutate, s.recordMembership)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"order_id": o.ID, "payment_id": paymentID}).Info("payment confirmed")
	return o, nil
}

func (s *Service) recordMembership(ctx context.Context, o *Order) error {
	if s.memberships == nil {
		return nil
	}
	err := s.memberships.RecordMembership(ctx, enrollment.Membership{
		ID:        uuid.NewString(),
		UserID:    o.UserID,
		CourseID:  o.CourseID,
		OrderID:   o.ID,
		PaymentID: o.PaymentID,
		Amount:    o.Amount,
		Currency:  o.Currency,
		StartedAt: o.UpdatedAt,
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).Error("membership not recorded, order left unpaid")
	}
	return err
}

// FailPayment handles the gateway's failure callback.
func (s *Service) FailPayment(ctx context.Context, userID, orderID, code, reason string) (*Order, error) {
	o, err := s.transition(ctx, userID, orderID, EventFail, func(o *Order) {
		o.FailureCode = code
		o.FailureReason = reason
	}, nil)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"order_id": o.ID, "code": code}).Warn("payment failed")
	return o, nil
}

// transition applies event to the order, runs beforeSave (if any) on the updated order and
// persists it. Nothing is saved when beforeSave fails.
func (s *Service) transition(ctx context.Context, userID, orderID, event string, mutate func(*Order), beforeSave func(context.Context, *Order) error) (*Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	next, err := Apply(ctx, *o, event)
	if err != nil {
		return nil, err
	}
	o.Status = next
	o.UpdatedAt = s.now().UTC()
	mutate(o)
	if beforeSave != nil {
		if err := beforeSave(ctx, o); err != nil {
			return nil, err
		}
	}
	if err := s.orders.UpdateOrder(ctx, *o); err != nil {
		return nil, err
	}
	return o, nil
}

// MemoryRepository keeps orders in memory.
type MemoryRepository struct {
	mu     sync.Mutex
	orders map[string]Order
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]Order)}
}

// InsertOrder stores o.
func (r *MemoryRepository) InsertOrder(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return nil
}

// GetOrder returns nil when id is unknown.
func (r *MemoryRepository) GetOrder(_ context.Context, id string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// UpdateOrder replaces a stored order.
func (r *MemoryRepository) UpdateOrder(_ context.Context, o Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return &NotFoundError{OrderID: o.ID}
	}
	r.orders[o.ID] = o
	return nil
}
