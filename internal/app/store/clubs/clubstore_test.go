package clubstore_test

import (
	"context"
	"testing"

	clubstore "github.com/campushub/campushub/internal/app/store/clubs"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureNameIndex(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("clubs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Club{
		Name:        "  Robotics Club  ",
		Description: "Build robots",
		CreatedBy:   primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	// Name is trimmed but case is preserved: it is an exact join key
	if created.Name != "Robotics Club" {
		t.Errorf("name: got %q, want %q", created.Name, "Robotics Club")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
}

func TestStore_Create_EmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Club{Name: "   "})
	if err != clubstore.ErrEmptyClubName {
		t.Errorf("expected ErrEmptyClubName, got %v", err)
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := ensureNameIndex(ctx, db); err != nil {
		t.Fatalf("ensure name index: %v", err)
	}

	if _, err := store.Create(ctx, models.Club{Name: "Robotics Club"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Club{Name: "Robotics Club"})
	if err != clubstore.ErrDuplicateClubName {
		t.Errorf("expected ErrDuplicateClubName, got %v", err)
	}
}

func TestStore_GetByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Club{Name: "Drama Society"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	club, err := store.GetByName(ctx, "Drama Society")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if club.Name != "Drama Society" {
		t.Errorf("unexpected club: %q", club.Name)
	}

	// Exact-match lookup: different casing is a different name
	_, err = store.GetByName(ctx, "drama society")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for differently-cased name, got %v", err)
	}
}

func TestStore_Exists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Club{Name: "Chess Club"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := store.Exists(ctx, "Chess Club")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Error("expected Chess Club to exist")
	}

	ok, err = store.Exists(ctx, "Go Club")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Error("expected Go Club to not exist")
	}
}

func TestStore_UpdateDescription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Club{Name: "Chess Club", Description: "old"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.UpdateDescription(ctx, created.ID, "  Weekly blitz nights  "); err != nil {
		t.Fatalf("UpdateDescription failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "Weekly blitz nights" {
		t.Errorf("description: got %q", got.Description)
	}
	if got.Name != "Chess Club" {
		t.Errorf("name should be unchanged, got %q", got.Name)
	}

	err = store.UpdateDescription(ctx, primitive.NewObjectID(), "x")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for unknown club, got %v", err)
	}
}

func TestStore_List_SortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"Drama Society", "Astronomy Club", "Chess Club"} {
		if _, err := store.Create(ctx, models.Club{Name: name}); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}

	clubs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(clubs) != 3 {
		t.Fatalf("expected 3 clubs, got %d", len(clubs))
	}
	want := []string{"Astronomy Club", "Chess Club", "Drama Society"}
	for i, name := range want {
		if clubs[i].Name != name {
			t.Errorf("clubs[%d]: got %q, want %q", i, clubs[i].Name, name)
		}
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Club{Name: "Temp Club"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted count: got %d, want 1", n)
	}

	n, err = store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if n != 0 {
		t.Errorf("deleted count on missing club: got %d, want 0", n)
	}
}
