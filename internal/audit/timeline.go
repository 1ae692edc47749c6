package audit

import (
	"time"

	"github.com/XristosAndreopo/invoice-procurement-management/internal/shared"
)

// TimelineFilters narrows the audit listing.
type TimelineFilters struct {
	From       time.Time
	To         time.Time
	Actor      string
	EntityType string
	EntityID   *int64
	Action     string
	Page       int
	PageSize   int
}

// PagingInfo holds simple pagination metadata.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	PrevPage int  `json:"prev_page,omitempty"`
	NextPage int  `json:"next_page,omitempty"`
}

// Result is one page of audit entries.
type Result struct {
	Rows   []shared.AuditLog `json:"rows"`
	Paging PagingInfo        `json:"paging"`
}
