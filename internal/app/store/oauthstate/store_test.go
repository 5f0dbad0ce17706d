package oauthstate_test

import (
	"testing"
	"time"

	"github.com/campushub/campushub/internal/app/store/oauthstate"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_Issue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state, err := store.Issue(ctx, "/clubs", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if state == "" {
		t.Fatal("expected non-empty state token")
	}

	other, err := store.Issue(ctx, "", 10*time.Minute)
	if err != nil {
		t.Fatalf("second Issue failed: %v", err)
	}
	if other == state {
		t.Error("expected unique state tokens")
	}
}

func TestStore_Validate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state, err := store.Issue(ctx, "/announcements", 10*time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	returnURL, valid, err := store.Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Fatal("expected state to be valid")
	}
	if returnURL != "/announcements" {
		t.Errorf("returnURL: got %q", returnURL)
	}

	// One-time use: the same token validates only once
	_, valid, err = store.Validate(ctx, state)
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}
	if valid {
		t.Error("expected state to be consumed after first validation")
	}
}

func TestStore_Validate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Validate(ctx, "never-issued")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected unknown state to be invalid")
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state, err := store.Issue(ctx, "", -time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, valid, err := store.Validate(ctx, state)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected expired state to be invalid")
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Issue(ctx, "", -time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := store.Issue(ctx, "", 10*time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	n, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("cleaned count: got %d, want 1", n)
	}

	remaining, err := db.Collection("oauth_states").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining states: got %d, want 1", remaining)
	}
}
