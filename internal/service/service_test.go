package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

var testNow = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	t      *testing.T
	store  *store.Store
	engine *Engine
	admin  *UserAdmin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(db.NewTestDB(t))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		t:      t,
		store:  s,
		engine: NewEngine(s, s, s, WithClock(func() time.Time { return testNow }), WithLogger(logger)),
		admin:  NewUserAdmin(s, WithLogger(logger)),
	}
}

// user creates an account and returns the identity a token for it would carry.
func (f *fixture) user(name, role string) model.Identity {
	f.t.Helper()
	u, err := f.store.CreateUser(context.Background(), name, name+"@example.com", "hash", role)
	if err != nil {
		f.t.Fatalf("CreateUser(%s): %v", name, err)
	}
	return model.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (f *fixture) item(reporter model.Identity, name, status string) *model.Item {
	f.t.Helper()
	item, err := f.engine.CreateItem(context.Background(), model.ItemInput{
		Name:         name,
		Category:     "misc",
		Location:     "Main hall",
		DateReported: "2026-09-30",
		Status:       status,
	}, reporter)
	if err != nil {
		f.t.Fatalf("CreateItem(%s): %v", name, err)
	}
	return item
}

func (f *fixture) request(itemID int64, requester model.Identity) *model.Request {
	f.t.Helper()
	r, err := f.engine.CreateRequest(context.Background(), itemID, "it is mine", requester)
	if err != nil {
		f.t.Fatalf("CreateRequest: %v", err)
	}
	return r
}

func (f *fixture) reload(id int64) *model.Item {
	f.t.Helper()
	item, err := f.store.GetItem(context.Background(), id)
	if err != nil || item == nil {
		f.t.Fatalf("GetItem(%d): %v, %v", id, item, err)
	}
	if err := item.CheckInvariants(); err != nil {
		f.t.Errorf("invariants broken: %v", err)
	}
	return item
}

func (f *fixture) requestStatus(id int64) *model.Request {
	f.t.Helper()
	r, err := f.store.GetRequest(context.Background(), id)
	if err != nil || r == nil {
		f.t.Fatalf("GetRequest(%d): %v, %v", id, r, err)
	}
	return r
}
