package entities

import "time"

// ClientType discriminates who filed the request.
type ClientType string

const (
	ClientTypeRegistered ClientType = "registered"
	ClientTypeGuest      ClientType = "guest"
)

// RequestStatus represents the fulfillment lifecycle of a project request.
//
// Domain notes:
//   - pending is the initial state; rejected and completed are terminal.
//   - Transitions are admin-driven and validated against allowedTransitions.

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusApproved   RequestStatus = "approved"
	StatusInProgress RequestStatus = "in-progress"
	StatusCompleted  RequestStatus = "completed"
	StatusRejected   RequestStatus = "rejected"
)

// allowedTransitions is the status whitelist. A status may always be
// re-applied to itself (notes-only updates are still audit-worthy).
var allowedTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:    {StatusApproved, StatusRejected},
	StatusApproved:   {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusCompleted, StatusRejected},
	StatusCompleted:  {},
	StatusRejected:   {},
}

func (s RequestStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	if s == target {
		return true
	}
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PaymentOption fixes how the client pays: a 70% advance with the balance on
// completion, or the full amount up front.
type PaymentOption string

const (
	PaymentOptionAdvance PaymentOption = "advance"
	PaymentOptionFull    PaymentOption = "full"
)

func (o PaymentOption) Valid() bool {
	return o == PaymentOptionAdvance || o == PaymentOptionFull
}

// PaymentState tracks how much of the due amount has been captured.
// partial is only reachable on the advance option.
type PaymentState string

const (
	PaymentStatePending   PaymentState = "pending"
	PaymentStatePartial   PaymentState = "partial"
	PaymentStateCompleted PaymentState = "completed"
)

func (s PaymentState) Valid() bool {
	switch s {
	case PaymentStatePending, PaymentStatePartial, PaymentStateCompleted:
		return true
	}
	return false
}

// AccountRef is a snapshot of the registered account that filed the request.
// Identity is owned by the auth provider; we keep the contact fields needed
// for notifications.
type AccountRef struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
}

// GuestContact is the embedded contact record for guest requests.
type GuestContact struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

// CustomProject describes a free-form project request that does not point at
// a catalog entry.
type CustomProject struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
}

// StatusHistoryEntry is one append-only audit record. Entries are never
// mutated or reordered after insertion; order equals insertion order.
type StatusHistoryEntry struct {
	Status    RequestStatus `json:"status"`
	Notes     string        `json:"notes,omitempty"`
	UpdatedBy string        `json:"updatedBy"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Request is the central entity: a client's ask for a catalog or custom
// project, tracked through the fulfillment lifecycle.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (account_id-index): account_id
//   - version attribute guards concurrent read-modify-write cycles.
//
// Requester and project are tagged unions: exactly one of Account/Guest is
// populated (per ClientType) and exactly one of ProjectID/CustomProject.

type Request struct {
	ID         string     `json:"id"`
	ClientType ClientType `json:"clientType"`

	Account *AccountRef   `json:"account,omitempty"`
	Guest   *GuestContact `json:"guestInfo,omitempty"`

	ProjectID     string         `json:"projectId,omitempty"`
	CustomProject *CustomProject `json:"customProject,omitempty"`

	Status        RequestStatus `json:"status"`
	PaymentOption PaymentOption `json:"paymentOption"`
	PaymentStatus PaymentState  `json:"paymentStatus"`

	// Prices are integer minor currency units (paise). ActualPrice, once
	// set by an admin, takes precedence over EstimatedPrice.
	EstimatedPrice int64 `json:"estimatedPrice,omitempty"`
	ActualPrice    int64 `json:"actualPrice,omitempty"`

	CurrentModule      string `json:"currentModule,omitempty"`
	AdminNotes         string `json:"adminNotes,omitempty"`
	GithubLink         string `json:"githubLink,omitempty"`
	ExpectedCompletion string `json:"expectedCompletion,omitempty"`

	StatusHistory []StatusHistoryEntry `json:"statusHistory"`

	ApprovedAt  *time.Time `json:"approvedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Version int64 `json:"-"`
}

// NotifyEmail resolves the requester-facing notification address: the
// account email for registered clients, the guest contact otherwise.
func (r Request) NotifyEmail() string {
	if r.ClientType == ClientTypeRegistered && r.Account != nil {
		return r.Account.Email
	}
	if r.Guest != nil {
		return r.Guest.Email
	}
	return ""
}

// ProjectName resolves the display name from whichever project side is set.
func (r Request) ProjectName() string {
	if r.CustomProject != nil {
		return r.CustomProject.Name
	}
	return r.ProjectID
}
