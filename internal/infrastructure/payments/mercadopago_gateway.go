package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"
	"github.com/Sam2op/ProjectEase/pkg"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"go.uber.org/zap"
)

var (
	ErrMissingMercadoPagoAccessToken = errors.New("missing MERCADOPAGO_ACCESS_TOKEN")
	ErrMissingWebhookSecret          = errors.New("missing MERCADOPAGO_WEBHOOK_SECRET")
)

// MercadoPagoGateway creates checkout orders and verifies capture signatures.
//
// An order is a Mercado Pago preference carrying the request id as external
// reference. The capture signature is an HMAC-SHA256 over "orderID|paymentID"
// keyed with the account's webhook secret; VerifySignature is the engine's
// sole authority for trusting a reported capture.

type MercadoPagoGateway struct {
	client        preference.Client
	webhookSecret []byte
	logger        *zap.Logger
}

var _ interfaces.IPaymentGateway = (*MercadoPagoGateway)(nil)

func NewMercadoPagoGateway(accessToken, webhookSecret string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, ErrMissingMercadoPagoAccessToken
	}
	if webhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, err
	}

	return &MercadoPagoGateway{
		client:        preference.NewClient(cfg),
		webhookSecret: []byte(webhookSecret),
		logger:        pkg.GetLogger(),
	}, nil
}

func (g *MercadoPagoGateway) CreateOrder(ctx context.Context, amount int64, currency string, metadata map[string]string) (entities.PaymentOrder, error) {
	meta := make(map[string]any, len(metadata))
	for k, v := range metadata {
		meta[k] = v
	}

	req := preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:      "Project request payment",
				Quantity:   1,
				UnitPrice:  float64(amount) / 100,
				CurrencyID: currency,
			},
		},
		ExternalReference: metadata["request_id"],
		Metadata:          meta,
	}

	resp, err := g.client.Create(ctx, req)
	if err != nil {
		g.logger.Warn("gateway order creation failed", zap.Error(err))
		return entities.PaymentOrder{}, err
	}

	g.logger.Info("gateway order created",
		zap.String("order_id", resp.ID), zap.Int64("amount", amount), zap.String("currency", currency))

	return entities.PaymentOrder{
		ID:       resp.ID,
		Amount:   amount,
		Currency: currency,
	}, nil
}

// VerifySignature checks the hex HMAC-SHA256 of "orderID|paymentID" in
// constant time.
func (g *MercadoPagoGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, g.webhookSecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
