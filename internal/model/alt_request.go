package model

import (
	"time"

	"github.com/google/uuid"
)

// AltRequest is a request to temporarily reassign credit for one snapshot
// to someone other than its normal assignee.
type AltRequest struct {
	ID           int64      `json:"id"`
	LivestreamID int64      `json:"livestream_id"`
	SnapshotID   uuid.UUID  `json:"snapshot_id"`
	Creator      string     `json:"creator"`
	AltNote      string     `json:"alt_note"`
	Status       string     `json:"status"` // 'pending', 'accepted', 'rejected'
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

// Request status constants. Pending is the only non-terminal state.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

// IsPending checks if request is pending
func (r *AltRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
