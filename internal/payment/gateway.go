package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderRequest is what the gateway needs to open an order.
type OrderRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"required,len=3,alpha,uppercase"`
	Receipt  string `json:"receipt" validate:"required,max=40"`
	CourseID string `json:"course_id,omitempty" validate:"omitempty,max=64"`
}

// GatewayOrder is the gateway's view of a newly opened order.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Gateway opens orders with a payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (GatewayOrder, error)
}

// SimulatedGateway stands in for a real provider: it waits a fixed delay and echoes the
// request back with a generated order id.
type SimulatedGateway struct {
	Delay time.Duration
}

// CreateOrder waits for the configured delay, or until ctx is done.
func (g SimulatedGateway) CreateOrder(ctx context.Context, req OrderRequest) (GatewayOrder, error) {
	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return GatewayOrder{}, &GatewayError{Message: "order creation cancelled", Cause: ctx.Err()}
		case <-timer.C:
		}
	}
	return GatewayOrder{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   req.Amount,
		Currency: req.Currency,
	}, nil
}
