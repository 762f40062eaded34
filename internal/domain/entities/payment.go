package entities

import "time"

// PaymentOrder is a gateway order created for a request, pending capture.
//
// Storage model (DynamoDB):
//   - PK: id (gateway order id)

type PaymentOrder struct {
	ID        string        `json:"id"`
	RequestID string        `json:"request_id"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	Option    PaymentOption `json:"option"`
	CreatedAt time.Time     `json:"created_at"`
}

// PaymentCapture records a verified "payment captured" event.
//
// Storage model (DynamoDB):
//   - PK: id (gateway payment id)
//   - GSI1 (request_id-index): request_id
//
// The primary key doubles as the idempotency key: a duplicate webhook
// delivery loses the conditional write and must have no further effect.

type PaymentCapture struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"order_id"`
	RequestID string        `json:"request_id"`
	Amount    int64         `json:"amount"`
	Option    PaymentOption `json:"option"`
	CreatedAt time.Time     `json:"created_at"`
}
