package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/mvx/internal/models"
	"github.com/desertthunder/mvx/internal/shared"
	tu "github.com/desertthunder/mvx/internal/testing"
)

// setupLocalStorage creates an in-memory SQLite database with migrations applied and returns its local scope
func setupLocalStorage(t *testing.T) *shared.SQLStorage {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return shared.NewLocalStorage(db)
}

// failingStorage returns err from every operation
type failingStorage struct{ err error }

func (f failingStorage) GetItem(string) (string, bool, error) { return "", false, f.err }
func (f failingStorage) SetItem(string, string) error         { return f.err }
func (f failingStorage) RemoveItem(string) error              { return f.err }

// readOnlyStorage fails writes but serves reads from an underlying storage
type readOnlyStorage struct{ shared.Storage }

func (readOnlyStorage) SetItem(string, string) error { return errors.New("read only") }

func TestUserRepository(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		repo := NewUserRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))

		users, err := repo.List()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("expected no users, got %d", len(users))
		}
	})

	t.Run("Add Writes Record Layout", func(t *testing.T) {
		store := setupLocalStorage(t)
		repo := NewUserRepository(store, shared.NewLogger(io.Discard))

		if err := repo.Add(models.User{ID: "a@b.com", Password: "key1"}); err != nil {
			t.Fatalf("failed to add user: %v", err)
		}
		if err := repo.Add(models.User{ID: "c@d.com", Password: "key<2>"}); err != nil {
			t.Fatalf("failed to add user: %v", err)
		}

		raw, ok, err := store.GetItem(shared.KeyUsers)
		if err != nil || !ok {
			t.Fatalf("expected users record, ok=%v err=%v", ok, err)
		}

		want := `[{"id":"a@b.com","password":"key1"},{"id":"c@d.com","password":"key<2>"}]`
		if raw != want {
			t.Errorf("unexpected record\n got: %s\nwant: %s", raw, want)
		}
	})

	t.Run("Find Exact Pair", func(t *testing.T) {
		repo := NewUserRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))
		if err := repo.Add(models.User{ID: "a@b.com", Password: "key1"}); err != nil {
			t.Fatalf("failed to add user: %v", err)
		}

		tests := []struct {
			name     string
			email    string
			password string
			found    bool
		}{
			{"match", "a@b.com", "key1", true},
			{"wrong password", "a@b.com", "key2", false},
			{"unknown email", "x@b.com", "key1", false},
			{"case sensitive", "A@b.com", "key1", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				u, found, err := repo.Find(tt.email, tt.password)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if found != tt.found {
					t.Errorf("expected found=%v, got %v", tt.found, found)
				}
				if found && u.ID != tt.email {
					t.Errorf("expected user %s, got %s", tt.email, u.ID)
				}
			})
		}
	})

	t.Run("Exists", func(t *testing.T) {
		repo := NewUserRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))
		_ = repo.Add(models.User{ID: "a@b.com", Password: "key1"})

		if ok, _ := repo.Exists("a@b.com"); !ok {
			t.Error("expected user to exist")
		}
		if ok, _ := repo.Exists("b@b.com"); ok {
			t.Error("expected user not to exist")
		}
	})

	t.Run("Corrupt Record", func(t *testing.T) {
		store := shared.NewMemoryStorage()
		_ = store.SetItem(shared.KeyUsers, "{not json")
		repo := NewUserRepository(store, shared.NewLogger(io.Discard))

		if _, err := repo.List(); !errors.Is(err, shared.ErrCorruptRecord) {
			t.Errorf("expected ErrCorruptRecord, got %v", err)
		}
		if err := repo.Add(models.User{ID: "a", Password: "b"}); err == nil {
			t.Error("expected add to fail on corrupt record")
		}
	})

	t.Run("Storage Error", func(t *testing.T) {
		repo := NewUserRepository(failingStorage{err: shared.ErrStorage}, shared.NewLogger(io.Discard))
		if _, _, err := repo.Find("a", "b"); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})
}

func TestWishlistRepository(t *testing.T) {
	movie := func(id int64) models.Movie { return models.Movie{ID: id, Title: "Movie"} }

	t.Run("Get Absent Record", func(t *testing.T) {
		repo := NewWishlistRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))

		got := repo.Get("a@b.com")
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil list, got %v", got)
		}
	})

	t.Run("Get Corrupt Record Logs", func(t *testing.T) {
		store := shared.NewMemoryStorage()
		_ = store.SetItem(shared.KeyWishlists, "[[[")
		var buf bytes.Buffer
		repo := NewWishlistRepository(store, shared.NewLogger(&buf))

		if got := repo.Get("a@b.com"); len(got) != 0 {
			t.Errorf("expected empty list, got %v", got)
		}
		if !strings.Contains(buf.String(), "error getting wishlist") {
			t.Errorf("expected error to be logged, got %q", buf.String())
		}
		if repo.IsMember("a@b.com", 1) {
			t.Error("corrupt record should not report membership")
		}
	})

	t.Run("Toggle Twice Restores State", func(t *testing.T) {
		store := setupLocalStorage(t)
		repo := NewWishlistRepository(store, shared.NewLogger(io.Discard))

		repo.Toggle("a@b.com", movie(1))
		before, _, _ := store.GetItem(shared.KeyWishlists)

		if added := repo.Toggle("a@b.com", movie(2)); !added {
			t.Error("expected first toggle to add")
		}
		if !repo.IsMember("a@b.com", 2) {
			t.Error("expected movie 2 to be a member")
		}
		if added := repo.Toggle("a@b.com", movie(2)); added {
			t.Error("expected second toggle to remove")
		}

		after, _, _ := store.GetItem(shared.KeyWishlists)
		if before != after {
			t.Errorf("expected record to be restored\nbefore: %s\n after: %s", before, after)
		}
	})

	t.Run("Toggle Keeps Users Separate", func(t *testing.T) {
		repo := NewWishlistRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))
		repo.Toggle("a@b.com", movie(1))
		repo.Toggle("c@d.com", movie(2))

		if repo.IsMember("a@b.com", 2) || repo.IsMember("c@d.com", 1) {
			t.Error("wishlists should be per user")
		}
	})

	t.Run("Toggle Preserves Order", func(t *testing.T) {
		repo := NewWishlistRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))
		for _, id := range []int64{3, 1, 2} {
			repo.Toggle("u", movie(id))
		}
		got := repo.Get("u")
		if len(got) != 3 || got[0].ID != 3 || got[1].ID != 1 || got[2].ID != 2 {
			t.Errorf("expected insertion order [3 1 2], got %v", got)
		}
	})

	t.Run("Movies Stored Verbatim", func(t *testing.T) {
		store := shared.NewMemoryStorage()
		repo := NewWishlistRepository(store, shared.NewLogger(io.Discard))

		var m models.Movie
		raw := `{"id":7,"title":"Heat","video":false,"belongs_to_collection":null}`
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("failed to decode movie: %v", err)
		}
		repo.Toggle("u", m)

		record, _, _ := store.GetItem(shared.KeyWishlists)
		if record != `{"u":[`+raw+`]}` {
			t.Errorf("unexpected record %s", record)
		}
	})

	t.Run("Empty User", func(t *testing.T) {
		store := shared.NewMemoryStorage()
		repo := NewWishlistRepository(store, shared.NewLogger(io.Discard))

		if repo.Toggle("", movie(1)) {
			t.Error("expected toggle with empty user to return false")
		}
		repo.Remove("", 1)
		if repo.IsMember("", 1) {
			t.Error("expected empty user to have no members")
		}
		if len(store.Keys()) != 0 {
			t.Errorf("expected storage untouched, got keys %v", store.Keys())
		}
	})

	t.Run("Remove", func(t *testing.T) {
		repo := NewWishlistRepository(shared.NewMemoryStorage(), shared.NewLogger(io.Discard))
		repo.Toggle("u", movie(1))
		repo.Toggle("u", movie(2))

		repo.Remove("u", 1)
		repo.Remove("u", 99)

		got := repo.Get("u")
		if len(got) != 1 || got[0].ID != 2 {
			t.Errorf("expected [2], got %v", got)
		}
	})

	t.Run("Remove Last Movie Leaves Empty Array", func(t *testing.T) {
		store := shared.NewMemoryStorage()
		repo := NewWishlistRepository(store, shared.NewLogger(io.Discard))
		repo.Toggle("u", movie(1))
		repo.Remove("u", 1)

		record, _, _ := store.GetItem(shared.KeyWishlists)
		if record != `{"u":[]}` {
			t.Errorf("unexpected record %s", record)
		}
	})

	t.Run("Write Failure Returns False", func(t *testing.T) {
		var buf bytes.Buffer
		repo := NewWishlistRepository(readOnlyStorage{shared.NewMemoryStorage()}, shared.NewLogger(&buf))

		if repo.Toggle("u", movie(1)) {
			t.Error("expected false when the write fails")
		}
		if !strings.Contains(buf.String(), "error toggling wishlist") {
			t.Errorf("expected error to be logged, got %q", buf.String())
		}
	})

	t.Run("Read Failure", func(t *testing.T) {
		repo := NewWishlistRepository(failingStorage{err: shared.ErrStorage}, shared.NewLogger(io.Discard))
		if repo.Toggle("u", movie(1)) {
			t.Error("expected false on storage failure")
		}
		if len(repo.Get("u")) != 0 {
			t.Error("expected empty wishlist on storage failure")
		}
	})

	t.Run("Sample Movies Round Trip", func(t *testing.T) {
		repo := NewWishlistRepository(setupLocalStorage(t), shared.NewLogger(io.Discard))
		for _, m := range tu.SampleMovies(5) {
			repo.Toggle("u", m)
		}
		got := repo.Get("u")
		if len(got) != 5 || got[4].Title != "Movie 5" {
			t.Errorf("unexpected wishlist %v", got)
		}
	})
}
