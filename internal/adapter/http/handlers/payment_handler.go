package handlers

import (
	"errors"
	"net/http"

	request "github.com/Sam2op/ProjectEase/internal/adapter/http/dto/request"
	response "github.com/Sam2op/ProjectEase/internal/adapter/http/dto/response"
	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase"
	"github.com/Sam2op/ProjectEase/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", "Invalid payment payload", http.StatusBadRequest)

// PaymentHandler handles HTTP requests for payment orders and captures.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
}

func NewPaymentHandler(uc usecase.IPaymentUseCase) *PaymentHandler {
	return &PaymentHandler{usecase: uc}
}

// CreateOrder opens a gateway order for the due amount of a request.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var payload request.CreateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	order, err := h.usecase.CreateOrder(c.Request.Context(), payload.ResolveRequestID(), entities.PaymentOption(payload.PaymentType))
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": response.FromPaymentOrder(order)})
}

// Verify confirms a captured payment using the gateway signature. Safe to
// call repeatedly for the same payment.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var payload request.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}

	updated, err := h.usecase.Confirm(c.Request.Context(), payload.OrderID, payload.PaymentID, payload.Signature)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromRequest(updated))
}

// GetCaptures lists the recorded captures for a request (admin).
func (h *PaymentHandler) GetCaptures(c *gin.Context) {
	captures, err := h.usecase.ListCaptures(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromPaymentCaptures(captures))
}

func mapPaymentError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequestID),
		errors.Is(err, usecase.ErrInvalidOrderID),
		errors.Is(err, usecase.ErrInvalidPaymentID),
		errors.Is(err, usecase.ErrInvalidPaymentOption),
		errors.Is(err, usecase.ErrNoPayableAmount):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrRequestNotFound):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_FOUND", "Request not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrOrderNotFound):
		return pkg.NewDomainErrorSimple("ORDER_NOT_FOUND", "Payment order not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrRequestNotPayable):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_PAYABLE", "Request is not payable yet", http.StatusConflict)
	case errors.Is(err, usecase.ErrAlreadyPaid):
		return pkg.NewDomainErrorSimple("ALREADY_PAID", "Request is already fully paid", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentVerificationFailed):
		return pkg.NewDomainErrorSimple("PAYMENT_VERIFICATION_FAILED", "Payment verification failed", http.StatusPaymentRequired)
	case errors.Is(err, usecase.ErrGatewayTimeout):
		return pkg.NewDomainErrorSimple("GATEWAY_TIMEOUT", "Payment gateway did not respond", http.StatusGatewayTimeout)
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		return pkg.NewDomainErrorSimple("CONCURRENT_UPDATE", "Request was modified concurrently, retry", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
