package service

import (
	"context"
	"time"

	"github.com/erazemk/najdeno/internal/model"
)

// ItemStore persists items. Lookups return (nil, nil) for missing rows.
type ItemStore interface {
	CreateItem(ctx context.Context, item *model.Item) (*model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item, expectedStatus string) error
	DeleteItem(ctx context.Context, id int64) (int64, error)
	SetItemImage(ctx context.Context, id int64, image []byte, mime string) error
	GetItemImage(ctx context.Context, id int64) ([]byte, string, error)
}

// RequestStore persists claim requests. ApproveRequest must apply the item
// claim and the sibling rejections as one atomic unit.
type RequestStore interface {
	CreateRequest(ctx context.Context, r *model.Request) (*model.Request, error)
	GetRequest(ctx context.Context, id int64) (*model.Request, error)
	ListRequests(ctx context.Context, filter model.RequestFilter) ([]model.Request, error)
	HasPendingRequest(ctx context.Context, itemID, requesterID int64) (bool, error)
	DeleteRequest(ctx context.Context, id int64, expectedStatus string) error
	RejectRequest(ctx context.Context, id, resolvedBy int64, notes string, at time.Time) (*model.Request, error)
	ApproveRequest(ctx context.Context, id, resolvedBy int64, notes string, at time.Time) (*model.Approval, error)
}

// UserStore is the part of user persistence the services need.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash, role string) (*model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CountAdmins(ctx context.Context) (int, error)
	UpdateUserRole(ctx context.Context, id int64, role string) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}
