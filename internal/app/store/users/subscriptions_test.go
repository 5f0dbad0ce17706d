package userstore_test

import (
	"testing"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Subscribe_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Priya Nair", "priya@example.edu", "student")

	for i := 0; i < 3; i++ {
		if err := store.Subscribe(ctx, user.ID, "Robotics Club"); err != nil {
			t.Fatalf("Subscribe #%d failed: %v", i+1, err)
		}
	}

	subs, err := store.Subscriptions(ctx, user.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(subs) != 1 || subs[0] != "Robotics Club" {
		t.Errorf("expected exactly one subscription, got %v", subs)
	}
}

func TestStore_Unsubscribe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Priya Nair", "priya@example.edu", "student",
		"Robotics Club", "Drama Society")

	if err := store.Unsubscribe(ctx, user.ID, "Robotics Club"); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	subs, err := store.Subscriptions(ctx, user.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(subs) != 1 || subs[0] != "Drama Society" {
		t.Errorf("expected only Drama Society, got %v", subs)
	}

	// Removing a club the user never joined is a no-op
	if err := store.Unsubscribe(ctx, user.ID, "Chess Club"); err != nil {
		t.Fatalf("Unsubscribe of non-member club failed: %v", err)
	}
}

func TestStore_Subscribe_EmptyClubName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "Priya Nair", "priya@example.edu", "student")

	if err := store.Subscribe(ctx, user.ID, "   "); err != userstore.ErrEmptyClubName {
		t.Errorf("Subscribe: expected ErrEmptyClubName, got %v", err)
	}
	if err := store.Unsubscribe(ctx, user.ID, ""); err != userstore.ErrEmptyClubName {
		t.Errorf("Unsubscribe: expected ErrEmptyClubName, got %v", err)
	}

	subs, err := store.Subscriptions(ctx, user.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no writes, got %v", subs)
	}
}

func TestStore_Subscribe_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Subscribe(ctx, primitive.NewObjectID(), "Robotics Club")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Subscriptions_EmptyNotNil(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateUser(ctx, "New Student", "new@example.edu", "student")

	subs, err := store.Subscriptions(ctx, user.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if subs == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscriptions, got %v", subs)
	}
}

func TestStore_FindSubscribedTo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "A", "a@example.edu", "student", "Robotics Club")
	fixtures.CreateUser(ctx, "B", "b@example.edu", "student", "Drama Society")
	c := fixtures.CreateUser(ctx, "C", "c@example.edu", "student", "Robotics Club", "Drama Society")

	subs, err := store.FindSubscribedTo(ctx, "Robotics Club")
	if err != nil {
		t.Fatalf("FindSubscribedTo failed: %v", err)
	}

	got := make(map[primitive.ObjectID]bool)
	for _, s := range subs {
		got[s.ID] = true
	}
	if len(got) != 2 || !got[a.ID] || !got[c.ID] {
		t.Errorf("expected subscribers {A, C}, got %v", subs)
	}
}

func TestStore_FindSubscribedTo_SkipsDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	active := fixtures.CreateUser(ctx, "Active", "active@example.edu", "student", "Robotics Club")
	disabled := fixtures.CreateDisabledUser(ctx, "Disabled", "disabled@example.edu")
	if err := store.Subscribe(ctx, disabled.ID, "Robotics Club"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	subs, err := store.FindSubscribedTo(ctx, "Robotics Club")
	if err != nil {
		t.Fatalf("FindSubscribedTo failed: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != active.ID {
		t.Errorf("expected only the active subscriber, got %v", subs)
	}
}

func TestStore_FindSubscribedTo_CaseSensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "A", "a@example.edu", "student", "Robotics Club")

	// Club names are exact join keys; a differently-cased name is a different club
	subs, err := store.FindSubscribedTo(ctx, "robotics club")
	if err != nil {
		t.Fatalf("FindSubscribedTo failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscribers for differently-cased name, got %v", subs)
	}
}

func TestStore_RemoveClubFromAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "A", "a@example.edu", "student", "Robotics Club", "Drama Society")
	b := fixtures.CreateUser(ctx, "B", "b@example.edu", "student", "Robotics Club")

	n, err := store.RemoveClubFromAll(ctx, "Robotics Club")
	if err != nil {
		t.Fatalf("RemoveClubFromAll failed: %v", err)
	}
	if n != 2 {
		t.Errorf("modified count: got %d, want 2", n)
	}

	subsA, _ := store.Subscriptions(ctx, a.ID)
	if len(subsA) != 1 || subsA[0] != "Drama Society" {
		t.Errorf("A subscriptions: got %v", subsA)
	}
	subsB, _ := store.Subscriptions(ctx, b.ID)
	if len(subsB) != 0 {
		t.Errorf("B subscriptions: got %v", subsB)
	}
}
