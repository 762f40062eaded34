package request

import "strings"

// CreateOrderRequest matches the dashboard's create-order call.
type CreateOrderRequest struct {
	RequestID   string `json:"requestId" binding:"required"`
	PaymentType string `json:"paymentType" binding:"required"`
}

func (r CreateOrderRequest) ResolveRequestID() string {
	return strings.TrimSpace(r.RequestID)
}

// VerifyPaymentRequest carries the gateway's checkout result back for
// server-side verification.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
