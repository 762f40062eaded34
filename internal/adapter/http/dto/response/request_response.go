package response

import (
	"time"

	"github.com/Sam2op/ProjectEase/internal/domain/entities"
)

type StatusHistoryEntryResponse struct {
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RequestResponse struct {
	ID             string                       `json:"id"`
	ClientType     string                       `json:"clientType"`
	Account        *entities.AccountRef         `json:"account,omitempty"`
	GuestInfo      *entities.GuestContact       `json:"guestInfo,omitempty"`
	ProjectID      string                       `json:"projectId,omitempty"`
	CustomProject  *entities.CustomProject      `json:"customProject,omitempty"`
	Status         string                       `json:"status"`
	PaymentOption  string                       `json:"paymentOption"`
	PaymentStatus  string                       `json:"paymentStatus"`
	EstimatedPrice int64                        `json:"estimatedPrice,omitempty"`
	ActualPrice    int64                        `json:"actualPrice,omitempty"`
	AmountDue      int64                        `json:"amountDue"`
	RemainingDue   int64                        `json:"remainingDue"`
	CurrentModule  string                       `json:"currentModule,omitempty"`
	AdminNotes     string                       `json:"adminNotes,omitempty"`
	GithubLink     string                       `json:"githubLink,omitempty"`
	StatusHistory  []StatusHistoryEntryResponse `json:"statusHistory"`

	ExpectedCompletion string     `json:"expectedCompletion,omitempty"`
	ApprovedAt         *time.Time `json:"approvedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func FromRequest(r entities.Request) RequestResponse {
	history := make([]StatusHistoryEntryResponse, 0, len(r.StatusHistory))
	for _, h := range r.StatusHistory {
		history = append(history, StatusHistoryEntryResponse{
			Status:    string(h.Status),
			Notes:     h.Notes,
			UpdatedBy: h.UpdatedBy,
			UpdatedAt: h.UpdatedAt,
		})
	}

	due := r.Due(r.PaymentOption)
	remaining := r.RemainingAmount()
	if r.PaymentStatus == entities.PaymentStateCompleted {
		due, remaining = 0, 0
	} else if r.PaymentStatus == entities.PaymentStatePartial {
		due = remaining
	}

	return RequestResponse{
		ID:                 r.ID,
		ClientType:         string(r.ClientType),
		Account:            r.Account,
		GuestInfo:          r.Guest,
		ProjectID:          r.ProjectID,
		CustomProject:      r.CustomProject,
		Status:             string(r.Status),
		PaymentOption:      string(r.PaymentOption),
		PaymentStatus:      string(r.PaymentStatus),
		EstimatedPrice:     r.EstimatedPrice,
		ActualPrice:        r.ActualPrice,
		AmountDue:          due,
		RemainingDue:       remaining,
		CurrentModule:      r.CurrentModule,
		AdminNotes:         r.AdminNotes,
		GithubLink:         r.GithubLink,
		ExpectedCompletion: r.ExpectedCompletion,
		StatusHistory:      history,
		ApprovedAt:         r.ApprovedAt,
		CompletedAt:        r.CompletedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func FromRequests(reqs []entities.Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, FromRequest(r))
	}
	return out
}
