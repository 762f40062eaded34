package handlers

import (
	"errors"
	"net/http"

	request "github.com/Sam2op/ProjectEase/internal/adapter/http/dto/request"
	response "github.com/Sam2op/ProjectEase/internal/adapter/http/dto/response"
	"github.com/Sam2op/ProjectEase/internal/adapter/http/middleware"
	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase"
	"github.com/Sam2op/ProjectEase/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidRequestPayload = pkg.NewDomainErrorSimple("INVALID_REQUEST_INPUT", "Invalid request payload", http.StatusBadRequest)

// RequestHandler handles HTTP requests for project requests.

type RequestHandler struct {
	usecase usecase.IRequestUseCase
}

func NewRequestHandler(uc usecase.IRequestUseCase) *RequestHandler {
	return &RequestHandler{usecase: uc}
}

// Create accepts registered and guest submissions. A registered caller is
// identified by the bearer token; anonymous callers must embed guestInfo.
func (h *RequestHandler) Create(c *gin.Context) {
	var payload request.CreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	input := usecase.CreateRequestInput{
		ProjectID:      payload.ResolveProjectID(),
		PaymentOption:  entities.PaymentOption(payload.PaymentOption),
		EstimatedPrice: payload.EstimatedPrice,
	}
	if payload.CustomProject != nil {
		input.CustomProject = &entities.CustomProject{
			Name:         payload.CustomProject.Name,
			Description:  payload.CustomProject.Description,
			Technologies: payload.CustomProject.Technologies,
		}
	}

	if userID := c.GetString(middleware.ContextUserID); userID != "" {
		input.ClientType = entities.ClientTypeRegistered
		input.Account = &entities.AccountRef{
			ID:       userID,
			Username: c.GetString(middleware.ContextUsername),
			Email:    c.GetString(middleware.ContextEmail),
		}
	} else {
		input.ClientType = entities.ClientTypeGuest
		if payload.GuestInfo != nil {
			input.Guest = &entities.GuestContact{
				Name:          payload.GuestInfo.Name,
				Email:         payload.GuestInfo.Email,
				ContactNumber: payload.GuestInfo.ContactNumber,
			}
		}
	}

	created, err := h.usecase.Create(c.Request.Context(), input)
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromRequest(created))
}

// GetMine lists the calling account's requests, newest first.
func (h *RequestHandler) GetMine(c *gin.Context) {
	requests, err := h.usecase.ListByAccountID(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromRequests(requests))
}

// GetAll lists every request (admin), newest first.
func (h *RequestHandler) GetAll(c *gin.Context) {
	requests, err := h.usecase.ListAll(c.Request.Context())
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromRequests(requests))
}

// GetByID returns one request; owners see their own, admins see any.
func (h *RequestHandler) GetByID(c *gin.Context) {
	r, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	if c.GetString(middleware.ContextRole) != "admin" {
		owner := r.Account != nil && r.Account.ID == c.GetString(middleware.ContextUserID)
		if !owner {
			c.JSON(http.StatusForbidden, pkg.NewDomainErrorSimple("FORBIDDEN", "Not your request", http.StatusForbidden).ToHTTPError())
			return
		}
	}

	c.JSON(http.StatusOK, response.FromRequest(r))
}

// Update applies admin changes (status, notes, progress, prices).
func (h *RequestHandler) Update(c *gin.Context) {
	var payload request.UpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidRequestPayload.HTTPStatus, errInvalidRequestPayload.ToHTTPError())
		return
	}

	input := usecase.UpdateRequestInput{
		AdminNotes:         payload.AdminNotes,
		GithubLink:         payload.GithubLink,
		CurrentModule:      payload.CurrentModule,
		ExpectedCompletion: payload.ExpectedCompletion,
		EstimatedPrice:     payload.EstimatedPrice,
		ActualPrice:        payload.ActualPrice,
	}
	if payload.Status != nil {
		status := entities.RequestStatus(*payload.Status)
		input.Status = &status
	}
	if payload.PaymentStatus != nil {
		state := entities.PaymentState(*payload.PaymentStatus)
		input.PaymentStatus = &state
	}

	updated, err := h.usecase.Update(c.Request.Context(), c.Param("id"), input, c.GetString(middleware.ContextUserID))
	if err != nil {
		appErr := mapRequestError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromRequest(updated))
}

func mapRequestError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequestID),
		errors.Is(err, usecase.ErrInvalidAdminID),
		errors.Is(err, usecase.ErrInvalidAccountID),
		errors.Is(err, usecase.ErrInvalidClientType),
		errors.Is(err, usecase.ErrRequesterConflict),
		errors.Is(err, usecase.ErrProjectConflict),
		errors.Is(err, usecase.ErrInvalidPaymentOption),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrInvalidPaymentState),
		errors.Is(err, usecase.ErrInvalidAmount):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrRequestNotFound):
		return pkg.NewDomainErrorSimple("REQUEST_NOT_FOUND", "Request not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", "Status transition not allowed", http.StatusConflict)
	case errors.Is(err, usecase.ErrPaymentStateConflict):
		return pkg.NewDomainErrorSimple("PAYMENT_STATE_CONFLICT", "Payment completion cannot regress status", http.StatusConflict)
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		return pkg.NewDomainErrorSimple("CONCURRENT_UPDATE", "Request was modified concurrently, retry", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
