package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRequestNotFound      = errors.New("request not found")
	ErrInvalidRequestID     = errors.New("invalid request id")
	ErrInvalidAdminID       = errors.New("invalid admin id")
	ErrInvalidAccountID     = errors.New("invalid account id")
	ErrInvalidClientType    = errors.New("invalid client type")
	ErrRequesterConflict    = errors.New("exactly one of account and guest contact must be set")
	ErrProjectConflict      = errors.New("exactly one of project reference and custom project must be set")
	ErrInvalidPaymentOption = errors.New("invalid payment option")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrInvalidPaymentState  = errors.New("invalid payment status")
	ErrPaymentStateConflict = errors.New("payment completion cannot regress status")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrConcurrentUpdate     = errors.New("request was modified concurrently")
)

// maxUpdateAttempts bounds the optimistic-concurrency retry loop.
const maxUpdateAttempts = 3

// notifyTimeout caps each best-effort notification send.
const notifyTimeout = 10 * time.Second

// CreateRequestInput carries a new request submission. Exactly one of
// Account/Guest and exactly one of ProjectID/CustomProject must be set.
type CreateRequestInput struct {
	ClientType     entities.ClientType
	Account        *entities.AccountRef
	Guest          *entities.GuestContact
	ProjectID      string
	CustomProject  *entities.CustomProject
	PaymentOption  entities.PaymentOption
	EstimatedPrice int64
}

// UpdateRequestInput carries the admin-writable fields of a request.
// Nil pointers mean "leave unchanged".
type UpdateRequestInput struct {
	Status             *entities.RequestStatus
	AdminNotes         *string
	GithubLink         *string
	CurrentModule      *string
	ExpectedCompletion *string
	EstimatedPrice     *int64
	ActualPrice        *int64
	PaymentStatus      *entities.PaymentState
}

// IRequestUseCase exposes the request lifecycle operations.
//
//   - Create validates the submission and fires the "request received" mail.
//   - Update applies admin changes through the transition whitelist and
//     appends exactly one status-history entry per call.
//   - Listings are ordered by creation time, newest first.

type IRequestUseCase interface {
	Create(ctx context.Context, input CreateRequestInput) (entities.Request, error)
	GetByID(ctx context.Context, id string) (entities.Request, error)
	ListByAccountID(ctx context.Context, accountID string) ([]entities.Request, error)
	ListAll(ctx context.Context) ([]entities.Request, error)
	Update(ctx context.Context, id string, input UpdateRequestInput, adminID string) (entities.Request, error)
}

type RequestUseCase struct {
	repo       interfaces.IRequestRepository
	notifier   interfaces.INotificationGateway
	adminEmail string
	logger     *zap.Logger

	// dispatch runs notification sends after persistence. Defaults to a
	// goroutine; tests replace it with an inline runner.
	dispatch func(func())
}

var _ IRequestUseCase = (*RequestUseCase)(nil)

func NewRequestUseCase(repo interfaces.IRequestRepository, notifier interfaces.INotificationGateway, adminEmail string, logger *zap.Logger) *RequestUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestUseCase{
		repo:       repo,
		notifier:   notifier,
		adminEmail: adminEmail,
		logger:     logger,
		dispatch:   func(f func()) { go f() },
	}
}

func (u *RequestUseCase) Create(ctx context.Context, input CreateRequestInput) (entities.Request, error) {
	if input.ClientType != entities.ClientTypeRegistered && input.ClientType != entities.ClientTypeGuest {
		return entities.Request{}, ErrInvalidClientType
	}

	switch input.ClientType {
	case entities.ClientTypeRegistered:
		if input.Account == nil || input.Guest != nil || strings.TrimSpace(input.Account.ID) == "" {
			return entities.Request{}, ErrRequesterConflict
		}
	case entities.ClientTypeGuest:
		if input.Guest == nil || input.Account != nil {
			return entities.Request{}, ErrRequesterConflict
		}
		if strings.TrimSpace(input.Guest.Name) == "" || strings.TrimSpace(input.Guest.Email) == "" {
			return entities.Request{}, ErrRequesterConflict
		}
	}

	hasProjectRef := strings.TrimSpace(input.ProjectID) != ""
	hasCustom := input.CustomProject != nil
	if hasProjectRef == hasCustom {
		return entities.Request{}, ErrProjectConflict
	}
	if hasCustom && strings.TrimSpace(input.CustomProject.Name) == "" {
		return entities.Request{}, ErrProjectConflict
	}

	if !input.PaymentOption.Valid() {
		return entities.Request{}, ErrInvalidPaymentOption
	}
	if input.EstimatedPrice < 0 {
		return entities.Request{}, ErrInvalidAmount
	}

	now := time.Now().UTC()
	r := entities.Request{
		ID:             uuid.NewString(),
		ClientType:     input.ClientType,
		Account:        input.Account,
		Guest:          input.Guest,
		ProjectID:      strings.TrimSpace(input.ProjectID),
		CustomProject:  input.CustomProject,
		Status:         entities.StatusPending,
		PaymentOption:  input.PaymentOption,
		PaymentStatus:  entities.PaymentStatePending,
		EstimatedPrice: input.EstimatedPrice,
		StatusHistory:  []entities.StatusHistoryEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := u.repo.Create(ctx, r)
	if err != nil {
		return entities.Request{}, err
	}

	u.dispatch(func() {
		u.send(created.NotifyEmail(), "New Project Request",
			"Your request is received and pending review.")
	})
	return created, nil
}

func (u *RequestUseCase) GetByID(ctx context.Context, id string) (entities.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Request{}, ErrInvalidRequestID
	}

	r, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Request{}, err
	}
	if r.ID == "" {
		return entities.Request{}, ErrRequestNotFound
	}
	return r, nil
}

func (u *RequestUseCase) ListByAccountID(ctx context.Context, accountID string) ([]entities.Request, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, ErrInvalidAccountID
	}
	return u.repo.ListByAccountID(ctx, accountID)
}

func (u *RequestUseCase) ListAll(ctx context.Context) ([]entities.Request, error) {
	return u.repo.ListAll(ctx)
}

// Update applies the admin-writable fields to the request, enforcing the
// transition whitelist and setting approvedAt/completedAt exactly once.
// Every invocation appends one status-history entry; notes-only updates are
// independently audit-worthy.
//
// The load-mutate-persist cycle is guarded by the stored version and retried
// on conflict so concurrent admin edits cannot drop a history entry.
func (u *RequestUseCase) Update(ctx context.Context, id string, input UpdateRequestInput, adminID string) (entities.Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Request{}, ErrInvalidRequestID
	}
	adminID = strings.TrimSpace(adminID)
	if adminID == "" {
		return entities.Request{}, ErrInvalidAdminID
	}
	if input.Status != nil && !input.Status.Valid() {
		return entities.Request{}, ErrInvalidStatus
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.Valid() {
		return entities.Request{}, ErrInvalidPaymentState
	}
	if (input.EstimatedPrice != nil && *input.EstimatedPrice < 0) ||
		(input.ActualPrice != nil && *input.ActualPrice < 0) {
		return entities.Request{}, ErrInvalidAmount
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		r, err := u.repo.GetByID(ctx, id)
		if err != nil {
			return entities.Request{}, err
		}
		if r.ID == "" {
			return entities.Request{}, ErrRequestNotFound
		}

		if input.Status != nil && !r.Status.CanTransitionTo(*input.Status) {
			return entities.Request{}, ErrInvalidTransition
		}

		now := time.Now().UTC()
		applyUpdate(&r, input, now)

		if r.PaymentStatus == entities.PaymentStateCompleted {
			switch r.Status {
			case entities.StatusApproved, entities.StatusInProgress, entities.StatusCompleted:
			default:
				return entities.Request{}, ErrPaymentStateConflict
			}
		}

		r.StatusHistory = append(r.StatusHistory, entities.StatusHistoryEntry{
			Status:    r.Status,
			Notes:     r.AdminNotes,
			UpdatedBy: adminID,
			UpdatedAt: now,
		})
		r.UpdatedAt = now

		updated, err := u.repo.Update(ctx, r, r.Version)
		if errors.Is(err, interfaces.ErrVersionConflict) {
			u.logger.Warn("request update conflict, retrying",
				zap.String("request_id", id), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return entities.Request{}, err
		}

		u.notifyUpdated(updated)
		return updated, nil
	}
	return entities.Request{}, ErrConcurrentUpdate
}

// applyUpdate copies the supplied fields onto the entity and computes the
// once-only lifecycle timestamps.
func applyUpdate(r *entities.Request, input UpdateRequestInput, now time.Time) {
	if input.Status != nil {
		if *input.Status == entities.StatusApproved && r.ApprovedAt == nil {
			r.ApprovedAt = &now
		}
		if *input.Status == entities.StatusCompleted && r.CompletedAt == nil {
			r.CompletedAt = &now
		}
		r.Status = *input.Status
	}
	if input.AdminNotes != nil {
		r.AdminNotes = *input.AdminNotes
	}
	if input.GithubLink != nil {
		r.GithubLink = *input.GithubLink
	}
	if input.CurrentModule != nil {
		r.CurrentModule = *input.CurrentModule
	}
	if input.ExpectedCompletion != nil {
		r.ExpectedCompletion = *input.ExpectedCompletion
	}
	if input.EstimatedPrice != nil {
		r.EstimatedPrice = *input.EstimatedPrice
	}
	if input.ActualPrice != nil {
		r.ActualPrice = *input.ActualPrice
	}
	if input.PaymentStatus != nil {
		r.PaymentStatus = *input.PaymentStatus
	}
}

// notifyUpdated fires the requester and admin mails for a persisted update.
// Runs after the caller's success is already determined.
func (u *RequestUseCase) notifyUpdated(r entities.Request) {
	subject := "Request " + strings.ToUpper(string(r.Status))
	body := "Your request is now " + string(r.Status) + "."
	if r.AdminNotes != "" {
		body += " " + r.AdminNotes
	}
	adminBody := "Request ID: " + r.ID + "\n" + body

	u.dispatch(func() {
		u.send(r.NotifyEmail(), subject, body)
		u.send(u.adminEmail, "ADMIN: "+subject, adminBody)
	})
}

// send delivers one mail best-effort on a detached context. Failures are
// logged and swallowed.
func (u *RequestUseCase) send(to, subject, body string) {
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
