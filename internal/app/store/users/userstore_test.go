package users

import (
	"errors"
	"testing"

	"github.com/dalemusser/chathub/internal/app/system/indexes"
	"github.com/dalemusser/chathub/internal/testutil"
)

func TestCreateAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := New(db)

	u, err := store.Create(ctx, "alice", "alice@example.com", "sw0rdfish!")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PasswordHash == "sw0rdfish!" {
		t.Fatal("password stored without hashing")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.Create(ctx, "alice2", "alice@example.com", "other-pass")
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("error = %v, want %v", err, ErrDuplicateEmail)
		}
	})

	t.Run("correct password", func(t *testing.T) {
		got, err := store.Authenticate(ctx, "alice@example.com", "sw0rdfish!")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if got.ID != u.ID {
			t.Errorf("ID = %v, want %v", got.ID, u.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := store.Authenticate(ctx, "alice@example.com", "wrong")
		if !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("error = %v, want %v", err, ErrBadCredentials)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := store.Authenticate(ctx, "nobody@example.com", "sw0rdfish!")
		if !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("error = %v, want %v", err, ErrBadCredentials)
		}
	})
}

func TestSetOnline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := New(db)

	u, err := store.Create(ctx, "bob", "bob@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.SetOnline(ctx, u.ID, true); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsOnline {
		t.Error("IsOnline = false after SetOnline(true)")
	}

	if err := store.SetOnline(ctx, u.ID, false); err != nil {
		t.Fatalf("SetOnline: %v", err)
	}
	got, err = store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsOnline {
		t.Error("IsOnline = true after SetOnline(false)")
	}
}
