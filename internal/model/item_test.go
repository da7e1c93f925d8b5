package model

import "testing"

func ptr(v int64) *int64 { return &v }

func TestItemCheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"lost", Item{Status: ItemStatusLost}, false},
		{"found held", Item{Status: ItemStatusFound, HeldBy: ptr(1)}, false},
		{"found unheld", Item{Status: ItemStatusFound}, false},
		{"claimed", Item{Status: ItemStatusClaimed, ClaimedBy: ptr(2)}, false},
		{"claimed without claimant", Item{Status: ItemStatusClaimed}, true},
		{"found with claimant", Item{Status: ItemStatusFound, ClaimedBy: ptr(2)}, true},
		{"claimed and held", Item{Status: ItemStatusClaimed, ClaimedBy: ptr(2), HeldBy: ptr(1)}, true},
		{"lost and held", Item{Status: ItemStatusLost, HeldBy: ptr(1)}, true},
	}

	for _, tt := range tests {
		err := tt.item.CheckInvariants()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: CheckInvariants() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
