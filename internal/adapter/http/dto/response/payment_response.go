package response

import (
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
)

// OrderResponse mirrors the gateway order handle the checkout UI consumes.
type OrderResponse struct {
	ID        string    `json:"id"`
	RequestID string    `json:"requestId"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromPaymentOrder(o entities.PaymentOrder) OrderResponse {
	return OrderResponse{
		ID:        o.ID,
		RequestID: o.RequestID,
		Amount:    o.Amount,
		Currency:  o.Currency,
		Option:    string(o.Option),
		CreatedAt: o.CreatedAt,
	}
}

// CaptureResponse is one recorded capture in the admin reconciliation view.
type CaptureResponse struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	RequestID string    `json:"requestId"`
	Amount    int64     `json:"amount"`
	Option    string    `json:"option"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromPaymentCaptures(captures []entities.PaymentCapture) []CaptureResponse {
	out := make([]CaptureResponse, 0, len(captures))
	for _, c := range captures {
		out = append(out, CaptureResponse{
			ID:        c.ID,
			OrderID:   c.OrderID,
			RequestID: c.RequestID,
			Amount:    c.Amount,
			Option:    string(c.Option),
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}
