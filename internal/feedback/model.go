package feedback

import (
	"fmt"
	"time"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/platform/httpx"
)

// Categories a submission may carry.
const (
	CategoryComplaint  = "complaint"
	CategorySuggestion = "suggestion"
	CategoryBug        = "bug"
	CategoryOther      = "other"
)

// Statuses an administrator moves a submission through.
const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

// ErrNotFound indicates the feedback entry does not exist.
var ErrNotFound = fmt.Errorf("feedback: %w", httpx.ErrNotFound)

// Feedback is a user submission about the application or a procurement.
type Feedback struct {
	ID                   int64     `json:"id"`
	UserID               *int64    `json:"user_id,omitempty"`
	Username             string    `json:"username,omitempty"`
	RelatedProcurementID *int64    `json:"related_procurement_id,omitempty"`
	Category             string    `json:"category"`
	Subject              string    `json:"subject"`
	Message              string    `json:"message"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

// SubmitInput is the form every signed-in user may post.
type SubmitInput struct {
	Category             string `json:"category" validate:"required,oneof=complaint suggestion bug other"`
	Subject              string `json:"subject" validate:"required,max=255"`
	Message              string `json:"message" validate:"required"`
	RelatedProcurementID *int64 `json:"related_procurement_id" validate:"omitempty,gt=0"`
}

// StatusInput changes the status of an entry.
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=new in_progress resolved closed"`
}

// Filter narrows the admin listing.
type Filter struct {
	Status   string
	Category string
	UserID   *int64
	Page     int
	Limit    int
}

func validCategory(c string) bool {
	switch c {
	case CategoryComplaint, CategorySuggestion, CategoryBug, CategoryOther:
		return true
	}
	return false
}

func validStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}
