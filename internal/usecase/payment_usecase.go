package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"

	"go.uber.org/zap"
)

var (
	ErrOrderNotFound             = errors.New("payment order not found")
	ErrInvalidOrderID            = errors.New("invalid order id")
	ErrInvalidPaymentID          = errors.New("invalid payment id")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrRequestNotPayable         = errors.New("request is not payable in its current status")
	ErrNoPayableAmount           = errors.New("request has no payable amount")
	ErrAlreadyPaid               = errors.New("request is already fully paid")
	ErrGatewayTimeout            = errors.New("payment gateway timed out")
)

// IPaymentUseCase encapsulates the payment-initiation and capture paths.
//
//   - CreateOrder derives the due amount (70% advance or full/balance) and
//     opens a gateway order.
//   - Confirm verifies the gateway signature, records the capture at most
//     once per gateway payment id, and derives the request's payment state.
//     It never changes the fulfillment status.
//   - ListCaptures exposes the recorded captures of a request for the admin
//     reconciliation view.

type IPaymentUseCase interface {
	CreateOrder(ctx context.Context, requestID string, option entities.PaymentOption) (entities.PaymentOrder, error)
	Confirm(ctx context.Context, orderID, paymentID, signature string) (entities.Request, error)
	ListCaptures(ctx context.Context, requestID string) ([]entities.PaymentCapture, error)
}

type PaymentUseCase struct {
	requestRepo interfaces.IRequestRepository
	orderRepo   interfaces.IPaymentOrderRepository
	captureRepo interfaces.IPaymentCaptureRepository
	gateway     interfaces.IPaymentGateway
	notifier    interfaces.INotificationGateway
	currency    string
	adminEmail  string
	logger      *zap.Logger

	dispatch func(func())
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(
	requestRepo interfaces.IRequestRepository,
	orderRepo interfaces.IPaymentOrderRepository,
	captureRepo interfaces.IPaymentCaptureRepository,
	gateway interfaces.IPaymentGateway,
	notifier interfaces.INotificationGateway,
	currency, adminEmail string,
	logger *zap.Logger,
) *PaymentUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentUseCase{
		requestRepo: requestRepo,
		orderRepo:   orderRepo,
		captureRepo: captureRepo,
		gateway:     gateway,
		notifier:    notifier,
		currency:    currency,
		adminEmail:  adminEmail,
		logger:      logger,
		dispatch:    func(f func()) { go f() },
	}
}

func (u *PaymentUseCase) CreateOrder(ctx context.Context, requestID string, option entities.PaymentOption) (entities.PaymentOrder, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return entities.PaymentOrder{}, ErrInvalidRequestID
	}
	if !option.Valid() {
		return entities.PaymentOrder{}, ErrInvalidPaymentOption
	}
	if u.gateway == nil {
		return entities.PaymentOrder{}, errors.New("payment gateway not configured")
	}

	r, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return entities.PaymentOrder{}, err
	}
	if r.ID == "" {
		return entities.PaymentOrder{}, ErrRequestNotFound
	}
	switch r.Status {
	case entities.StatusApproved, entities.StatusInProgress, entities.StatusCompleted:
	default:
		return entities.PaymentOrder{}, ErrRequestNotPayable
	}
	if r.PaymentStatus == entities.PaymentStateCompleted {
		return entities.PaymentOrder{}, ErrAlreadyPaid
	}

	due := r.Due(option)
	if due <= 0 {
		return entities.PaymentOrder{}, ErrNoPayableAmount
	}

	order, err := u.gateway.CreateOrder(ctx, due, u.currency, map[string]string{
		"request_id":     r.ID,
		"payment_option": string(option),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return entities.PaymentOrder{}, ErrGatewayTimeout
		}
		return entities.PaymentOrder{}, err
	}

	order.RequestID = r.ID
	order.Option = option
	order.CreatedAt = time.Now().UTC()
	return u.orderRepo.Create(ctx, order)
}

// Confirm is idempotent by gateway payment id: a duplicate webhook or verify
// call finds the capture already recorded and returns the request unchanged,
// with no second notification.
func (u *PaymentUseCase) Confirm(ctx context.Context, orderID, paymentID, signature string) (entities.Request, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return entities.Request{}, ErrInvalidOrderID
	}
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return entities.Request{}, ErrInvalidPaymentID
	}
	if u.gateway == nil {
		return entities.Request{}, errors.New("payment gateway not configured")
	}

	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return entities.Request{}, err
	}
	if order.ID == "" {
		return entities.Request{}, ErrOrderNotFound
	}

	if !u.gateway.VerifySignature(orderID, paymentID, signature) {
		u.logger.Warn("payment signature rejected",
			zap.String("order_id", orderID), zap.String("payment_id", paymentID))
		return entities.Request{}, ErrPaymentVerificationFailed
	}

	r, err := u.requestRepo.GetByID(ctx, order.RequestID)
	if err != nil {
		return entities.Request{}, err
	}
	if r.ID == "" {
		return entities.Request{}, ErrRequestNotFound
	}

	capture, err := u.captureRepo.Create(ctx, entities.PaymentCapture{
		ID:        paymentID,
		OrderID:   order.ID,
		RequestID: order.RequestID,
		Amount:    order.Amount,
		Option:    order.Option,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return entities.Request{}, err
	}
	if capture.ID == "" {
		// Replayed delivery: the capture is already recorded.
		u.logger.Info("duplicate payment capture ignored",
			zap.String("order_id", orderID), zap.String("payment_id", paymentID))
		return r, nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		// A late capture must not complete payment on a request that left
		// the payable set (e.g. rejected after the order was opened). The
		// capture record above stays for reconciliation.
		switch r.Status {
		case entities.StatusApproved, entities.StatusInProgress, entities.StatusCompleted:
		default:
			u.logger.Warn("payment captured for a non-payable request",
				zap.String("request_id", r.ID), zap.String("payment_id", paymentID),
				zap.String("status", string(r.Status)))
			return entities.Request{}, ErrRequestNotPayable
		}

		state := derivePaymentState(r, order)
		if r.PaymentStatus == state {
			return r, nil
		}
		r.PaymentStatus = state
		r.UpdatedAt = time.Now().UTC()

		updated, err := u.requestRepo.Update(ctx, r, r.Version)
		if errors.Is(err, interfaces.ErrVersionConflict) {
			r, err = u.requestRepo.GetByID(ctx, order.RequestID)
			if err != nil {
				return entities.Request{}, err
			}
			continue
		}
		if err != nil {
			return entities.Request{}, err
		}

		u.notifyCaptured(updated, order)
		return updated, nil
	}
	return entities.Request{}, ErrConcurrentUpdate
}

// ListCaptures returns the captures recorded against a request so an admin
// can reconcile them with the gateway's report.
func (u *PaymentUseCase) ListCaptures(ctx context.Context, requestID string) ([]entities.PaymentCapture, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}

	r, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.ID == "" {
		return nil, ErrRequestNotFound
	}
	return u.captureRepo.ListByRequestID(ctx, requestID)
}

// derivePaymentState decides the request's payment state after capturing the
// given order: full payments and balance-covering captures complete the
// payment, an advance-only capture leaves it partial.
func derivePaymentState(r entities.Request, order entities.PaymentOrder) entities.PaymentState {
	if order.Option == entities.PaymentOptionFull {
		return entities.PaymentStateCompleted
	}
	if r.PaymentStatus == entities.PaymentStatePartial {
		return entities.PaymentStateCompleted
	}
	if order.Amount >= r.Price() {
		return entities.PaymentStateCompleted
	}
	return entities.PaymentStatePartial
}

func (u *PaymentUseCase) notifyCaptured(r entities.Request, order entities.PaymentOrder) {
	subject := "Payment Received"
	body := fmt.Sprintf("We received your payment of %d %s for %q. Payment status: %s.",
		order.Amount, order.Currency, r.ProjectName(), r.PaymentStatus)
	adminBody := "Request ID: " + r.ID + "\n" + body

	u.dispatch(func() {
		u.sendMail(r.NotifyEmail(), subject, body)
		u.sendMail(u.adminEmail, "ADMIN: "+subject, adminBody)
	})
}

func (u *PaymentUseCase) sendMail(to, subject, body string) {
	if u.notifier == nil || to == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := u.notifier.Send(ctx, to, subject, body); err != nil {
		u.logger.Warn("notification email failed",
			zap.String("to", to), zap.String("subject", subject), zap.Error(err))
	}
}
