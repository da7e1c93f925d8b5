package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/najdeno/internal/model"
)

func mustCreateItem(t *testing.T, s *Store, name, status string, reporter int64) *model.Item {
	t.Helper()
	item := &model.Item{
		Name:         name,
		Category:     "electronics",
		Location:     "Library",
		DateReported: "2026-10-01",
		Status:       status,
		ReportedBy:   reporter,
	}
	if status == model.ItemStatusFound {
		item.HeldBy = &reporter
	}
	created, err := s.CreateItem(context.Background(), item)
	if err != nil {
		t.Fatalf("CreateItem(%s): %v", name, err)
	}
	return created
}

func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", model.RoleUser)

	item := mustCreateItem(t, s, "Umbrella", model.ItemStatusFound, alice.ID)
	if item.Name != "Umbrella" {
		t.Errorf("expected name 'Umbrella', got %q", item.Name)
	}
	if item.Status != model.ItemStatusFound {
		t.Errorf("expected status 'found', got %q", item.Status)
	}
	if item.HeldBy == nil || *item.HeldBy != alice.ID {
		t.Errorf("expected held_by %d, got %v", alice.ID, item.HeldBy)
	}
	if item.ClaimedBy != nil {
		t.Errorf("expected no claimant, got %v", *item.ClaimedBy)
	}
	if item.DateReported != "2026-10-01" {
		t.Errorf("expected date_reported '2026-10-01', got %q", item.DateReported)
	}

	missing, err := s.GetItem(ctx, 9999)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestItemInvariantsEnforcedBySchema(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", model.RoleUser)

	_, err := s.CreateItem(ctx, &model.Item{Name: "x", Status: model.ItemStatusClaimed, ReportedBy: alice.ID})
	if err == nil {
		t.Error("expected claimed item without claimant to be rejected")
	}

	_, err = s.CreateItem(ctx, &model.Item{Name: "y", Status: model.ItemStatusLost, ReportedBy: alice.ID, HeldBy: &alice.ID})
	if err == nil {
		t.Error("expected lost item with holder to be rejected")
	}
}

func TestListItemsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", model.RoleUser)
	bob := mustCreateUser(t, s, "bob", model.RoleUser)

	mustCreateItem(t, s, "Wallet", model.ItemStatusLost, alice.ID)
	mustCreateItem(t, s, "Phone", model.ItemStatusFound, alice.ID)
	keys := &model.Item{Name: "Keys", Category: "keys", Status: model.ItemStatusFound, ReportedBy: bob.ID, HeldBy: &bob.ID}
	if _, err := s.CreateItem(ctx, keys); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	tests := []struct {
		name   string
		filter model.ItemFilter
		want   int
	}{
		{"all", model.ItemFilter{}, 3},
		{"found", model.ItemFilter{Status: model.ItemStatusFound}, 2},
		{"lost", model.ItemFilter{Status: model.ItemStatusLost}, 1},
		{"claimed", model.ItemFilter{Status: model.ItemStatusClaimed}, 0},
		{"category", model.ItemFilter{Category: "keys"}, 1},
		{"reporter", model.ItemFilter{ReportedBy: alice.ID}, 2},
		{"combined", model.ItemFilter{Status: model.ItemStatusFound, ReportedBy: alice.ID}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := s.ListItems(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListItems: %v", err)
			}
			if len(items) != tt.want {
				t.Errorf("expected %d items, got %d", tt.want, len(items))
			}
		})
	}
}

func TestUpdateItemCompareAndSwap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", model.RoleUser)

	item := mustCreateItem(t, s, "Scarf", model.ItemStatusLost, alice.ID)

	item.Description = "red wool"
	item.Status = model.ItemStatusFound
	item.HeldBy = &alice.ID
	if err := s.UpdateItem(ctx, item, model.ItemStatusLost); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	got, _ := s.GetItem(ctx, item.ID)
	if got.Status != model.ItemStatusFound || got.Description != "red wool" {
		t.Errorf("unexpected item after update: %+v", got)
	}

	// The stored status is found now, so expecting lost must fail.
	got.Name = "Blue scarf"
	if err := s.UpdateItem(ctx, got, model.ItemStatusLost); !errors.Is(err, ErrStale) {
		t.Errorf("expected ErrStale, got %v", err)
	}
}

func TestDeleteItemRemovesRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", model.RoleUser)
	bob := mustCreateUser(t, s, "bob", model.RoleUser)
	carol := mustCreateUser(t, s, "carol", model.RoleUser)

	item := mustCreateItem(t, s, "Bike", model.ItemStatusFound, alice.ID)
	mustCreateRequest(t, s, item.ID, bob.ID)
	mustCreateRequest(t, s, item.ID, carol.ID)

	removed, err := s.DeleteItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 requests removed, got %d", removed)
	}

	got, _ := s.GetItem(ctx, item.ID)
	if got != nil {
		t.Error("expected item to be gone")
	}
	requests, _ := s.ListRequests(ctx, model.RequestFilter{ItemID: item.ID})
	if len(requests) != 0 {
		t.Errorf("expected no requests, got %d", len(requests))
	}

	if _, err := s.DeleteItem(ctx, item.ID); !errors.Is(err, ErrStale) {
		t.Errorf("second delete: expected ErrStale, got %v", err)
	}
}

func TestItemImage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, s, "alice", model.RoleUser)

	item := mustCreateItem(t, s, "Photo Item", model.ItemStatusLost, alice.ID)
	if err := s.SetItemImage(ctx, item.ID, []byte("fake image data"), "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := s.GetItemImage(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}

	got, _ := s.GetItem(ctx, item.ID)
	if got.ImageMime != "image/jpeg" {
		t.Errorf("expected item image_mime 'image/jpeg', got %q", got.ImageMime)
	}
}
