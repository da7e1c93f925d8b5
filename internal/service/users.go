package service

import (
	"context"
	"log/slog"

	"github.com/erazemk/najdeno/internal/model"
)

// UserAdmin manages accounts. Everything except Register is admin only.
type UserAdmin struct {
	users UserStore
	log   *slog.Logger
}

// NewUserAdmin returns a UserAdmin over users.
func NewUserAdmin(users UserStore, opts ...Option) *UserAdmin {
	cfg := newConfig(opts)
	return &UserAdmin{users: users, log: cfg.logger}
}

func (a *UserAdmin) requireAdmin(ctx context.Context, caller model.Identity, op string) (model.Identity, error) {
	actor, err := resolveActor(ctx, a.users, caller)
	if err != nil {
		return model.Identity{}, err
	}
	if !actor.AtLeast(model.RoleAdmin) {
		a.log.Warn("user administration denied", "op", op, "user", actor.Username, "role", actor.Role)
		return model.Identity{}, forbidden("admin only")
	}
	return actor, nil
}

// activeUser returns the non-deleted user with the given ID.
func (a *UserAdmin) activeUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := a.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.DeletedAt != nil {
		return nil, notFound("user %d", id)
	}
	return u, nil
}

// Register creates a self-service account. Such accounts always get the
// user role.
func (a *UserAdmin) Register(ctx context.Context, username, email, passwordHash string) (*model.User, error) {
	u, err := a.users.CreateUser(ctx, username, email, passwordHash, model.RoleUser)
	if err != nil {
		return nil, storeError("registering user", err)
	}
	a.log.Info("user signed up", "user", u.Username)
	return u, nil
}

// CreateUser creates an account with any role.
func (a *UserAdmin) CreateUser(ctx context.Context, username, email, passwordHash, role string, caller model.Identity) (*model.User, error) {
	actor, err := a.requireAdmin(ctx, caller, "create")
	if err != nil {
		return nil, err
	}
	if !model.IsValidRole(role) {
		return nil, invalidState("unknown role %q", role)
	}

	u, err := a.users.CreateUser(ctx, username, email, passwordHash, role)
	if err != nil {
		return nil, storeError("creating user", err)
	}
	a.log.Info("user created", "user", actor.Username, "new_user", u.Username, "role", role)
	return u, nil
}

// ListUsers returns all active users.
func (a *UserAdmin) ListUsers(ctx context.Context, caller model.Identity) ([]model.User, error) {
	if _, err := a.requireAdmin(ctx, caller, "list"); err != nil {
		return nil, err
	}
	return a.users.ListUsers(ctx)
}

// GetUser returns an active user.
func (a *UserAdmin) GetUser(ctx context.Context, id int64, caller model.Identity) (*model.User, error) {
	if _, err := a.requireAdmin(ctx, caller, "get"); err != nil {
		return nil, err
	}
	return a.activeUser(ctx, id)
}

// SetRole changes a user's role. The last admin cannot be demoted.
func (a *UserAdmin) SetRole(ctx context.Context, id int64, role string, caller model.Identity) (*model.User, error) {
	actor, err := a.requireAdmin(ctx, caller, "set role")
	if err != nil {
		return nil, err
	}
	if !model.IsValidRole(role) {
		return nil, invalidState("unknown role %q", role)
	}
	target, err := a.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role == role {
		return target, nil
	}

	if target.Role == model.RoleAdmin {
		admins, err := a.users.CountAdmins(ctx)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, invalidState("cannot demote the last admin")
		}
	}

	if err := a.users.UpdateUserRole(ctx, id, role); err != nil {
		return nil, storeError("updating user role", err)
	}
	a.log.Info("user role updated", "user", actor.Username, "target_user", target.Username,
		"old_role", target.Role, "new_role", role)
	return a.activeUser(ctx, id)
}

// ResetPassword replaces another user's password hash.
func (a *UserAdmin) ResetPassword(ctx context.Context, id int64, passwordHash string, caller model.Identity) error {
	actor, err := a.requireAdmin(ctx, caller, "reset password")
	if err != nil {
		return err
	}
	target, err := a.activeUser(ctx, id)
	if err != nil {
		return err
	}

	if err := a.users.UpdateUserPassword(ctx, id, passwordHash); err != nil {
		return storeError("resetting password", err)
	}
	a.log.Info("user password reset", "user", actor.Username, "target_user", target.Username)
	return nil
}

// DeleteUser soft-deletes a user. Admins cannot delete themselves, which also
// keeps at least one admin around.
func (a *UserAdmin) DeleteUser(ctx context.Context, id int64, caller model.Identity) error {
	actor, err := a.requireAdmin(ctx, caller, "delete")
	if err != nil {
		return err
	}
	if actor.UserID == id {
		return invalidState("cannot delete your own account")
	}
	target, err := a.activeUser(ctx, id)
	if err != nil {
		return err
	}

	if err := a.users.DeleteUser(ctx, id); err != nil {
		return storeError("deleting user", err)
	}
	a.log.Info("user deleted", "user", actor.Username, "deleted_user", target.Username)
	return nil
}
