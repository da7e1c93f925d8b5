package service

import (
	"context"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateRequest files a claim by the caller on a found item.
func (e *Engine) CreateRequest(ctx context.Context, itemID int64, message string, caller model.Identity) (*model.Request, error) {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return nil, err
	}
	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("item %d", itemID)
	}
	if item.Status != model.ItemStatusFound {
		return nil, invalidState("item not claimable")
	}

	pending, err := e.requests.HasPendingRequest(ctx, itemID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, invalidState("duplicate pending request")
	}

	r, err := e.requests.CreateRequest(ctx, &model.Request{
		ItemID:      itemID,
		RequesterID: actor.UserID,
		Message:     message,
		RequestDate: e.now(),
	})
	if err != nil {
		return nil, storeError("creating request", err)
	}

	metrics.ObserveClaim(metrics.TransitionCreated, 1)
	e.log.Info("request created", "request_id", r.ID, "item_id", itemID, "user", actor.Username)
	return r, nil
}

// UpdateRequestStatus resolves a pending request. Approval claims the item for
// the requester and rejects every other pending request for it in the same
// commit.
func (e *Engine) UpdateRequestStatus(ctx context.Context, id int64, status, adminNotes string, caller model.Identity) (*model.Request, error) {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return nil, err
	}
	if !canResolveRequests(actor) {
		e.log.Warn("request resolution denied", "request_id", id, "user", actor.Username, "role", actor.Role)
		return nil, forbidden("only staff can resolve requests")
	}

	r, err := e.requests.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("request %d", id)
	}
	if r.Status != model.RequestStatusPending {
		return nil, invalidState("only PENDING requests can be updated")
	}

	switch status {
	case model.RequestStatusApproved:
		approval, err := e.requests.ApproveRequest(ctx, id, actor.UserID, adminNotes, e.now())
		if err != nil {
			return nil, storeError("approving request", err)
		}
		metrics.ObserveClaim(metrics.TransitionApproved, 1)
		metrics.ObserveClaim(metrics.TransitionAutoRejected, len(approval.AutoRejected))
		e.log.Info("request approved", "request_id", id, "item_id", r.ItemID, "user", actor.Username,
			"claimed_by", r.RequesterID, "auto_rejected", approval.AutoRejected)
		return approval.Request, nil

	case model.RequestStatusRejected:
		rejected, err := e.requests.RejectRequest(ctx, id, actor.UserID, adminNotes, e.now())
		if err != nil {
			return nil, storeError("rejecting request", err)
		}
		metrics.ObserveClaim(metrics.TransitionRejected, 1)
		e.log.Info("request rejected", "request_id", id, "item_id", r.ItemID, "user", actor.Username)
		return rejected, nil

	default:
		return nil, invalidState("requests can only be approved or rejected, not %q", status)
	}
}

// DeleteRequest removes a request. An approved request stays while its item is
// claimed, since it is the record of that claim. The delete only applies while
// the request still has the status the guard was checked against.
func (e *Engine) DeleteRequest(ctx context.Context, id int64, caller model.Identity) error {
	actor, err := resolveActor(ctx, e.users, caller)
	if err != nil {
		return err
	}
	r, err := e.requests.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if r == nil {
		return notFound("request %d", id)
	}
	if !canAccessRequest(actor, r) {
		e.log.Warn("request deletion denied", "request_id", id, "user", actor.Username, "role", actor.Role)
		return forbidden("only the requester or staff can delete request %d", id)
	}

	if r.Status == model.RequestStatusApproved {
		item, err := e.items.GetItem(ctx, r.ItemID)
		if err != nil {
			return err
		}
		if item != nil && item.Status == model.ItemStatusClaimed {
			return invalidState("cannot delete an approved request whose item is already claimed")
		}
	}

	if err := e.requests.DeleteRequest(ctx, id, r.Status); err != nil {
		return storeError("deleting request", err)
	}

	metrics.ObserveClaim(metrics.TransitionDeleted, 1)
	e.log.Info("request deleted", "request_id", id, "item_id", r.ItemID, "user", actor.Username, "status", r.Status)
	return nil
}

// GetRequest returns a request visible to the caller.
func (e *Engine) GetRequest(ctx context.Context, id int64, caller model.Identity) (*model.Request, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	r, err := e.requests.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, notFound("request %d", id)
	}
	if !canAccessRequest(caller, r) {
		return nil, forbidden("request %d belongs to another user", id)
	}
	return r, nil
}

// ListRequestsByUser returns the requests filed by userID.
func (e *Engine) ListRequestsByUser(ctx context.Context, userID int64, caller model.Identity) ([]model.Request, error) {
	if err := requireIdentity(caller); err != nil {
		return nil, err
	}
	if !canReadUserRequests(caller, userID) {
		return nil, forbidden("cannot list requests of user %d", userID)
	}
	u, err := e.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("user %d", userID)
	}
	return e.requests.ListRequests(ctx, model.RequestFilter{RequesterID: userID})
}

// ListRequestsByItem returns every request filed for an item.
func (e *Engine) ListRequestsByItem(ctx context.Context, itemID int64, caller model.Identity) ([]model.Request, error) {
	if err := e.requireStaff(caller); err != nil {
		return nil, err
	}
	item, err := e.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFound("item %d", itemID)
	}
	return e.requests.ListRequests(ctx, model.RequestFilter{ItemID: itemID})
}

// ListRequestsByStatus returns every request in the given status.
func (e *Engine) ListRequestsByStatus(ctx context.Context, status string, caller model.Identity) ([]model.Request, error) {
	if err := e.requireStaff(caller); err != nil {
		return nil, err
	}
	if !model.IsValidRequestStatus(status) {
		return nil, invalidState("unknown request status %q", status)
	}
	return e.requests.ListRequests(ctx, model.RequestFilter{Status: status})
}

// ListRequests returns all requests.
func (e *Engine) ListRequests(ctx context.Context, caller model.Identity) ([]model.Request, error) {
	if err := e.requireStaff(caller); err != nil {
		return nil, err
	}
	return e.requests.ListRequests(ctx, model.RequestFilter{})
}

func (e *Engine) requireStaff(caller model.Identity) error {
	if err := requireIdentity(caller); err != nil {
		return err
	}
	if !caller.AtLeast(model.RoleStaff) {
		return forbidden("staff only")
	}
	return nil
}
