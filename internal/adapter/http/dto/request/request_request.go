package request

import "strings"

// GuestInfo is the embedded contact record for guest submissions.
type GuestInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
}

// CustomProjectInput describes a free-form project ask.
type CustomProjectInput struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// CreateRequest is the request-submission payload. A registered caller is
// identified by the auth middleware; guests supply guestInfo. Exactly one of
// projectId/customProject must be set.
type CreateRequest struct {
	ProjectID      string              `json:"projectId"`
	CustomProject  *CustomProjectInput `json:"customProject"`
	GuestInfo      *GuestInfo          `json:"guestInfo"`
	PaymentOption  string              `json:"paymentOption" binding:"required"`
	EstimatedPrice int64               `json:"estimatedPrice"`
}

func (r CreateRequest) ResolveProjectID() string {
	return strings.TrimSpace(r.ProjectID)
}

// UpdateRequest is the admin update payload. Absent fields stay unchanged.
type UpdateRequest struct {
	Status             *string `json:"status"`
	AdminNotes         *string `json:"adminNotes"`
	GithubLink         *string `json:"githubLink"`
	CurrentModule      *string `json:"currentModule"`
	ExpectedCompletion *string `json:"expectedCompletion"`
	EstimatedPrice     *int64  `json:"estimatedPrice"`
	ActualPrice        *int64  `json:"actualPrice"`
	PaymentStatus      *string `json:"paymentStatus"`
}
