package interfaces

import (
	"context"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
)

// IPaymentOrderRepository abstracts DynamoDB persistence for PaymentOrder.
type IPaymentOrderRepository interface {
	Create(ctx context.Context, o entities.PaymentOrder) (entities.PaymentOrder, error)
	GetByID(ctx context.Context, id string) (entities.PaymentOrder, error)
}

// IPaymentCaptureRepository abstracts DynamoDB persistence for PaymentCapture.
//
// Create is conditional on the gateway payment id not existing yet: a replay
// returns a zero-value capture and nil error, which callers treat as
// "already recorded".
type IPaymentCaptureRepository interface {
	Create(ctx context.Context, c entities.PaymentCapture) (entities.PaymentCapture, error)
	GetByID(ctx context.Context, id string) (entities.PaymentCapture, error)
	ListByRequestID(ctx context.Context, requestID string) ([]entities.PaymentCapture, error)
}
