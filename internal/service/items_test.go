package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
)

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user("alice", model.RoleUser)

	found := f.item(alice, "Umbrella", model.ItemStatusFound)
	if found.ReportedBy != alice.UserID {
		t.Errorf("expected reporter %d, got %d", alice.UserID, found.ReportedBy)
	}
	if found.HeldBy == nil || *found.HeldBy != alice.UserID {
		t.Errorf("expected found item held by reporter, got %v", found.HeldBy)
	}

	lost := f.item(alice, "Wallet", model.ItemStatusLost)
	if lost.HeldBy != nil || lost.ClaimedBy != nil {
		t.Errorf("expected lost item without holder or claimant, got %+v", lost)
	}

	_, err := f.engine.CreateItem(ctx, model.ItemInput{Name: "Ring", Status: model.ItemStatusClaimed}, alice)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("claimed on creation: expected ErrInvalidState, got %v", err)
	}

	_, err = f.engine.CreateItem(ctx, model.ItemInput{Name: "  ", Status: model.ItemStatusLost}, alice)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("blank name: expected ErrInvalidState, got %v", err)
	}

	_, err = f.engine.CreateItem(ctx, model.ItemInput{Name: "Hat", Status: model.ItemStatusLost}, model.Identity{})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("no identity: expected ErrUnauthenticated, got %v", err)
	}
}

func TestGetAndListItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user("alice", model.RoleUser)
	bob := f.user("bob", model.RoleUser)

	umbrella := f.item(alice, "Umbrella", model.ItemStatusFound)
	f.item(alice, "Wallet", model.ItemStatusLost)
	f.item(bob, "Keys", model.ItemStatusFound)

	got, err := f.engine.GetItem(ctx, umbrella.ID, bob)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Name != "Umbrella" {
		t.Errorf("expected Umbrella, got %q", got.Name)
	}

	if _, err := f.engine.GetItem(ctx, 9999, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	found, err := f.engine.ListItems(ctx, model.ItemFilter{Status: model.ItemStatusFound}, bob)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(found) != 2 {
		t.Errorf("expected 2 found items, got %d", len(found))
	}

	mine, _ := f.engine.ListItems(ctx, model.ItemFilter{ReportedBy: alice.UserID}, bob)
	if len(mine) != 2 {
		t.Errorf("expected 2 items reported by alice, got %d", len(mine))
	}

	if _, err := f.engine.ListItems(ctx, model.ItemFilter{Status: "stolen"}, bob); !errors.Is(err, ErrInvalidState) {
		t.Errorf("unknown status filter: expected ErrInvalidState, got %v", err)
	}
}

func TestUpdateItemByOtherUserForbidden(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	mallory := f.user("mallory", model.RoleUser)

	item := f.item(alice, "Laptop", model.ItemStatusFound)

	_, err := f.engine.UpdateItem(context.Background(), item.ID, model.ItemInput{
		Name:   "Mine now",
		Status: model.ItemStatusFound,
	}, mallory)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if got := f.reload(item.ID); got.Name != "Laptop" {
		t.Errorf("expected item unchanged, got name %q", got.Name)
	}
}

func TestUpdateItemFields(t *testing.T) {
	f := newFixture(t)
	alice := f.user("alice", model.RoleUser)
	staff := f.user("staff", model.RoleStaff)

	item := f.item(alice, "Laptop", model.ItemStatusLost)

	updated, err := f.engine.UpdateItem(context.Background(), item.ID, model.ItemInput{
		Name:         "Grey laptop",
		Description:  "sticker on lid",
		Category:     "electronics",
		Location:     "Room 101",
		DateReported: "2026-09-29",
		Status:       model.ItemStatusLost,
	}, staff)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Name != "Grey laptop" || updated.Location != "Room 101" || updated.Description != "sticker on lid" {
		t.Errorf("fields not updated: %+v", updated)
	}
	if updated.ReportedBy != alice.UserID {
		t.Errorf("reporter changed to %d", updated.ReportedBy)
	}
}

func TestUpdateItemStatusRules(t *testing.T) {
	type setup func(f *fixture, reporter, staff, claimant model.Identity) *model.Item

	lost := func(f *fixture, reporter, _, _ model.Identity) *model.Item {
		return f.item(reporter, "Bag", model.ItemStatusLost)
	}
	found := func(f *fixture, reporter, _, _ model.Identity) *model.Item {
		return f.item(reporter, "Bag", model.ItemStatusFound)
	}
	claimed := func(f *fixture, reporter, staff, claimant model.Identity) *model.Item {
		item := f.item(reporter, "Bag", model.ItemStatusFound)
		r := f.request(item.ID, claimant)
		if _, err := f.engine.UpdateRequestStatus(context.Background(), r.ID, model.RequestStatusApproved, "", staff); err != nil {
			f.t.Fatalf("approving: %v", err)
		}
		return item
	}

	tests := []struct {
		name       string
		setup      setup
		byStaff    bool
		status     string
		wantErr    error
		wantHolder string // "reporter", "staff" or ""
		wantClaim  bool
	}{
		{"lost to found holds by caller", lost, false, model.ItemStatusFound, nil, "reporter", false},
		{"lost to found by staff", lost, true, model.ItemStatusFound, nil, "staff", false},
		{"found to found keeps holder", found, true, model.ItemStatusFound, nil, "reporter", false},
		{"found to lost clears holder", found, false, model.ItemStatusLost, nil, "", false},
		{"lost to claimed refused", lost, true, model.ItemStatusClaimed, ErrInvalidState, "", false},
		{"found to claimed refused", found, true, model.ItemStatusClaimed, ErrInvalidState, "reporter", false},
		{"claimed stays claimed", claimed, false, model.ItemStatusClaimed, nil, "", true},
		{"claimed reopened by reporter refused", claimed, false, model.ItemStatusFound, ErrForbidden, "", true},
		{"claimed reopened by staff", claimed, true, model.ItemStatusFound, nil, "staff", false},
		{"claimed back to lost by staff", claimed, true, model.ItemStatusLost, nil, "", false},
		{"unknown status", found, true, "misplaced", ErrInvalidState, "reporter", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			reporter := f.user("reporter", model.RoleUser)
			staff := f.user("staff", model.RoleStaff)
			claimant := f.user("claimant", model.RoleUser)

			item := tt.setup(f, reporter, staff, claimant)
			caller := reporter
			if tt.byStaff {
				caller = staff
			}

			_, err := f.engine.UpdateItem(context.Background(), item.ID, model.ItemInput{
				Name:   item.Name,
				Status: tt.status,
			}, caller)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("UpdateItem: %v", err)
			}

			got := f.reload(item.ID)
			switch tt.wantHolder {
			case "":
				if got.HeldBy != nil {
					t.Errorf("expected no holder, got %d", *got.HeldBy)
				}
			case "reporter", "staff":
				want := reporter.UserID
				if tt.wantHolder == "staff" {
					want = staff.UserID
				}
				if got.HeldBy == nil || *got.HeldBy != want {
					t.Errorf("expected holder %d, got %v", want, got.HeldBy)
				}
			}
			if tt.wantClaim {
				if got.ClaimedBy == nil || *got.ClaimedBy != claimant.UserID {
					t.Errorf("expected claimant %d, got %v", claimant.UserID, got.ClaimedBy)
				}
			} else if got.ClaimedBy != nil {
				t.Errorf("expected no claimant, got %d", *got.ClaimedBy)
			}
		})
	}
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user("alice", model.RoleUser)
	bob := f.user("bob", model.RoleUser)
	staff := f.user("staff", model.RoleStaff)
	admin := f.user("admin", model.RoleAdmin)

	item := f.item(alice, "Laptop", model.ItemStatusFound)
	r := f.request(item.ID, bob)

	if err := f.engine.DeleteItem(ctx, item.ID, staff); !errors.Is(err, ErrForbidden) {
		t.Errorf("staff: expected ErrForbidden, got %v", err)
	}
	if err := f.engine.DeleteItem(ctx, item.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user: expected ErrForbidden, got %v", err)
	}

	if err := f.engine.DeleteItem(ctx, item.ID, alice); err != nil {
		t.Fatalf("reporter delete: %v", err)
	}
	if _, err := f.engine.GetItem(ctx, item.ID, alice); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted item to be gone, got %v", err)
	}
	if _, err := f.engine.GetRequest(ctx, r.ID, staff); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the item's request to be gone, got %v", err)
	}

	other := f.item(bob, "Phone", model.ItemStatusLost)
	if err := f.engine.DeleteItem(ctx, other.ID, admin); err != nil {
		t.Errorf("admin delete: %v", err)
	}
	if err := f.engine.DeleteItem(ctx, other.ID, admin); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func pngPhoto(t *testing.T, w, h int) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

func TestItemImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user("alice", model.RoleUser)
	bob := f.user("bob", model.RoleUser)

	item := f.item(alice, "Scarf", model.ItemStatusFound)

	if _, _, err := f.engine.GetItemImage(ctx, item.ID, false, bob); !errors.Is(err, ErrNotFound) {
		t.Errorf("no photo yet: expected ErrNotFound, got %v", err)
	}
	if err := f.engine.SetItemImage(ctx, item.ID, pngPhoto(t, 40, 20), bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("other user: expected ErrForbidden, got %v", err)
	}
	if err := f.engine.SetItemImage(ctx, item.ID, strings.NewReader("not an image"), alice); !errors.Is(err, imaging.ErrUnsupported) {
		t.Errorf("garbage upload: expected imaging.ErrUnsupported, got %v", err)
	}
	if err := f.engine.SetItemImage(ctx, item.ID, pngPhoto(t, 40, 20), alice); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := f.engine.GetItemImage(ctx, item.ID, false, bob)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if mime != imaging.MIME || len(data) == 0 {
		t.Errorf("unexpected photo: %d bytes of %q", len(data), mime)
	}

	thumb, mime, err := f.engine.GetItemImage(ctx, item.ID, true, bob)
	if err != nil {
		t.Fatalf("GetItemImage thumb: %v", err)
	}
	if mime != imaging.MIME || len(thumb) == 0 {
		t.Errorf("unexpected thumbnail: %d bytes of %q", len(thumb), mime)
	}
	if got := f.reload(item.ID); got.ImageMime != imaging.MIME {
		t.Errorf("expected item image_mime %q, got %q", imaging.MIME, got.ImageMime)
	}
}

func TestStoredRoleWinsOverToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user("alice", model.RoleUser)
	bob := f.user("bob", model.RoleAdmin)

	item := f.item(alice, "Laptop", model.ItemStatusLost)

	// bob was demoted after the token was issued.
	if err := f.store.UpdateUserRole(ctx, bob.UserID, model.RoleUser); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if err := f.engine.DeleteItem(ctx, item.ID, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden with demoted role, got %v", err)
	}
}

func TestDeletedUserCannotWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user("alice", model.RoleUser)

	item := f.item(alice, "Laptop", model.ItemStatusFound)
	if err := f.store.DeleteUser(ctx, alice.UserID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	_, err := f.engine.UpdateItem(ctx, item.ID, model.ItemInput{Name: "x", Status: model.ItemStatusLost}, alice)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := f.engine.CreateRequest(ctx, item.ID, "", alice); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}
