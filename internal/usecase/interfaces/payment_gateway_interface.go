package interfaces

import (
	"context"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
)

// IPaymentGateway abstracts the external payment provider (e.g. Mercado Pago).
//
// VerifySignature is the sole authority for marking payment state: a
// client-reported success is never trusted without it.
type IPaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string, metadata map[string]string) (entities.PaymentOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
