package model

import (
	"fmt"
	"time"
)

// Item is a lost or found object.
type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	Location     string    `json:"location,omitempty"`
	DateReported string    `json:"date_reported,omitempty"`
	Status       string    `json:"status"`
	ReportedBy   int64     `json:"reported_by"`
	HeldBy       *int64    `json:"held_by"`
	ClaimedBy    *int64    `json:"claimed_by"`
	ImageMime    string    `json:"image_mime,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Item statuses.
const (
	ItemStatusLost    = "lost"
	ItemStatusFound   = "found"
	ItemStatusClaimed = "claimed"
)

// IsValidItemStatus reports whether status is a known item status.
func IsValidItemStatus(status string) bool {
	switch status {
	case ItemStatusLost, ItemStatusFound, ItemStatusClaimed:
		return true
	}
	return false
}

// ItemInput is the caller-editable part of an item.
type ItemInput struct {
	Name         string
	Description  string
	Category     string
	Location     string
	DateReported string
	Status       string
}

// ItemFilter narrows ListItems. Zero fields match everything.
type ItemFilter struct {
	Status     string
	Category   string
	ReportedBy int64
}

// CheckInvariants reports the first violated holder/claimant invariant:
// claimed_by is set exactly when the item is claimed, and held_by only while found.
func (i *Item) CheckInvariants() error {
	claimed := i.Status == ItemStatusClaimed
	if claimed != (i.ClaimedBy != nil) {
		return fmt.Errorf("item %d: status %q with claimed_by=%v", i.ID, i.Status, i.ClaimedBy != nil)
	}
	if i.HeldBy != nil && i.Status != ItemStatusFound {
		return fmt.Errorf("item %d: held while %q", i.ID, i.Status)
	}
	return nil
}
