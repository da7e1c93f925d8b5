package model

import "time"

// Request is a user's claim on a found item.
type Request struct {
	ID             int64      `json:"id"`
	ItemID         int64      `json:"item_id"`
	RequesterID    int64      `json:"requester_id"`
	Status         string     `json:"status"`
	Message        string     `json:"message,omitempty"`
	RequestDate    time.Time  `json:"request_date"`
	ResolutionDate *time.Time `json:"resolution_date,omitempty"`
	ResolvedBy     *int64     `json:"resolved_by,omitempty"`
	AdminNotes     string     `json:"admin_notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName          string `json:"item_name,omitempty"`
	RequesterUsername string `json:"requester_username,omitempty"`
}

// Request statuses. Pending is the only non-terminal status.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// AutoRejectNote is recorded on pending requests rejected because another
// request for the same item was approved.
const AutoRejectNote = "Item claimed by another user."

// IsValidRequestStatus reports whether status is a known request status.
func IsValidRequestStatus(status string) bool {
	switch status {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// RequestFilter narrows ListRequests. Zero fields match everything.
type RequestFilter struct {
	ItemID      int64
	RequesterID int64
	Status      string
}

// Approval is the outcome of approving a request: the approved request, the
// claimed item, and the IDs of sibling requests rejected in the same commit.
type Approval struct {
	Request      *Request `json:"request"`
	Item         *Item    `json:"item"`
	AutoRejected []int64  `json:"auto_rejected"`
}
