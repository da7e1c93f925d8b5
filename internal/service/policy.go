package service

import (
	"context"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// resolveActor reloads the caller from the user store so that writes are
// authorized against the current role, and deleted accounts are refused even
// while their tokens are still valid.
func resolveActor(ctx context.Context, users UserStore, caller model.Identity) (model.Identity, error) {
	if caller.IsZero() {
		return model.Identity{}, ErrUnauthenticated
	}
	u, err := users.GetUser(ctx, caller.UserID)
	if err != nil {
		return model.Identity{}, fmt.Errorf("loading caller: %w", err)
	}
	if u == nil || u.DeletedAt != nil {
		return model.Identity{}, fmt.Errorf("user %d no longer exists: %w", caller.UserID, ErrUnauthenticated)
	}
	return model.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}

// requireIdentity is the read-side check: some identity must be bound.
func requireIdentity(caller model.Identity) error {
	if caller.IsZero() {
		return ErrUnauthenticated
	}
	return nil
}

func canEditItem(caller model.Identity, item *model.Item) bool {
	return caller.Is(item.ReportedBy) || caller.AtLeast(model.RoleStaff)
}

func canDeleteItem(caller model.Identity, item *model.Item) bool {
	return caller.Is(item.ReportedBy) || caller.AtLeast(model.RoleAdmin)
}

func canResolveRequests(caller model.Identity) bool {
	return caller.AtLeast(model.RoleStaff)
}

// canAccessRequest covers reading and deleting a single request.
func canAccessRequest(caller model.Identity, r *model.Request) bool {
	return caller.Is(r.RequesterID) || caller.AtLeast(model.RoleStaff)
}

func canReadUserRequests(caller model.Identity, userID int64) bool {
	return caller.Is(userID) || caller.AtLeast(model.RoleStaff)
}
