package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateItem records a new lost or found item reported by the caller. A found
// item starts out held by its reporter.
func (e *Engine) CreateItem(ctx context.Context, in model.ItemInput, caller model.Identity) (*model.Item, error) {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return nil, err
	}
	if !actor.AtLeast(model.RoleUser) {
		return nil, forbidden("role %q cannot report items", actor.Role)
	}
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	item := &model.Item{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Category:     in.Category,
		Location:     in.Location,
		DateReported: in.DateReported,
		ReportedBy:   actor.UserID,
	}
	switch in.Status {
	case model.ItemStatusLost, model.ItemStatusFound:
		item.Status = in.Status
	case model.ItemStatusClaimed:
		return nil, invalidState("items are claimed by approving a request")
	}
	if item.Status == model.ItemStatusFound {
		holder := actor.UserID
		item.HeldBy = &holder
	}

	created, err := e.items.CreateItem(ctx, item)
	if err != nil {
		return nil, err
	}

	metrics.ObserveItem("create")
	e.log.Info("item created", "item_id", created.ID, "user", actor.Username, "status", created.Status)
	return created, nil
}

// GetItem returns an item by ID.
func (e *Engine) GetItem(ctx context.Context, id int64, caller model.Identity) (*model.Item, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	item, err := e.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("item %d", id)
	}
	return item, nil
}

// ListItems returns items matching filter.
func (e *Engine) ListItems(ctx context.Context, filter model.ItemFilter, caller model.Identity) ([]model.Item, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	if filter.Status != "" && !model.IsValidItemStatus(filter.Status) {
		return nil, invalidState("unknown item status %q", filter.Status)
	}
	return e.items.ListItems(ctx, filter)
}

// UpdateItem overwrites an item's editable fields. Status changes keep the
// holder and claimant consistent with the new status, and an item can only
// become claimed through request approval.
func (e *Engine) UpdateItem(ctx context.Context, id int64, in model.ItemInput, caller model.Identity) (*model.Item, error) {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return nil, err
	}
	item, err := e.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("item %d", id)
	}
	if !canEditItem(actor, item) {
		e.log.Warn("item update denied", "item_id", id, "user", actor.Username, "role", actor.Role)
		return nil, forbidden("only the reporter or staff can edit item %d", id)
	}
	if err := validateItemInput(in); err != nil {
		return nil, err
	}

	next := *item
	next.Name = strings.TrimSpace(in.Name)
	next.Description = in.Description
	next.Category = in.Category
	next.Location = in.Location
	next.DateReported = in.DateReported
	if err := applyStatus(&next, item.Status, in.Status, actor); err != nil {
		e.log.Warn("item status change refused", "item_id", id, "user", actor.Username,
			"from", item.Status, "to", in.Status, "error", err)
		return nil, err
	}

	if err := e.items.UpdateItem(ctx, &next, item.Status); err != nil {
		return nil, storeError("updating item", err)
	}

	metrics.ObserveItem("update")
	if next.Status != item.Status {
		e.log.Info("item status changed", "item_id", id, "user", actor.Username,
			"from", item.Status, "to", next.Status)
	} else {
		e.log.Info("item updated", "item_id", id, "user", actor.Username)
	}

	updated, err := e.items.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, notFound("item %d", id)
	}
	return updated, nil
}

// applyStatus moves next from status prev to status, re-deriving the holder
// and claimant. Whoever marks an item found holds it; reopening a claimed
// item is reserved for staff.
func applyStatus(next *model.Item, prev, status string, actor model.Identity) error {
	switch {
	case !model.IsValidItemStatus(status):
		return invalidState("unknown item status %q", status)
	case status == model.ItemStatusClaimed && prev != model.ItemStatusClaimed:
		return invalidState("items are claimed by approving a request")
	case status == model.ItemStatusClaimed:
		return nil
	}

	if prev == model.ItemStatusClaimed {
		if !actor.AtLeast(model.RoleStaff) {
			return forbidden("only staff can reopen a claimed item")
		}
		next.ClaimedBy = nil
	}

	switch status {
	case model.ItemStatusFound:
		if prev != model.ItemStatusFound {
			holder := actor.UserID
			next.HeldBy = &holder
		}
	case model.ItemStatusLost:
		next.HeldBy = nil
	}
	next.Status = status
	return nil
}

// DeleteItem removes an item and every request made for it.
func (e *Engine) DeleteItem(ctx context.Context, id int64, caller model.Identity) error {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return err
	}
	item, err := e.items.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return notFound("item %d", id)
	}
	if !canDeleteItem(actor, item) {
		e.log.Warn("item deletion denied", "item_id", id, "user", actor.Username, "role", actor.Role)
		return forbidden("only the reporter or an admin can delete item %d", id)
	}

	removed, err := e.items.DeleteItem(ctx, id)
	if err != nil {
		return storeError("deleting item", err)
	}

	metrics.ObserveItem("delete")
	metrics.ObserveClaim(metrics.TransitionDeleted, int(removed))
	e.log.Info("item deleted", "item_id", id, "user", actor.Username, "requests_removed", removed)
	return nil
}

// SetItemImage normalizes an uploaded photo and stores it for an item. The
// same callers that may edit an item may change its photo. The upload is only
// decoded once the caller is known to be allowed.
func (e *Engine) SetItemImage(ctx context.Context, id int64, photo io.Reader, caller model.Identity) error {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return err
	}
	item, err := e.items.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return notFound("item %d", id)
	}
	if !canEditItem(actor, item) {
		e.log.Warn("item image upload denied", "item_id", id, "user", actor.Username, "role", actor.Role)
		return forbidden("only the reporter or staff can change the photo of item %d", id)
	}

	data, err := imaging.Normalize(photo)
	if err != nil {
		return fmt.Errorf("normalizing photo: %w", err)
	}
	if err := e.items.SetItemImage(ctx, id, data, imaging.MIME); err != nil {
		return storeError("setting item image", err)
	}

	metrics.ObserveItem("image")
	e.log.Info("item image uploaded", "item_id", id, "user", actor.Username, "size", len(data))
	return nil
}

// GetItemImage returns an item's photo, or its thumbnail, and the MIME type.
func (e *Engine) GetItemImage(ctx context.Context, id int64, thumb bool, caller model.Identity) ([]byte, string, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, "", err
	}
	image, mime, err := e.items.GetItemImage(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if len(image) == 0 {
		return nil, "", notFound("photo of item %d", id)
	}
	if thumb {
		small, err := imaging.Thumbnail(image)
		if err != nil {
			return nil, "", fmt.Errorf("making thumbnail: %w", err)
		}
		return small, imaging.MIME, nil
	}
	return image, mime, nil
}

func validateItemInput(in model.ItemInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalidState("item name is required")
	}
	if !model.IsValidItemStatus(in.Status) {
		return invalidState("unknown item status %q", in.Status)
	}
	return nil
}

