package userstore_test

import (
	"context"
	"testing"

	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureEmailIndex(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		FullName: "Priya Nair",
		Email:    "Priya.Nair@Example.edu",
		Role:     "student",
		Year:     2,
	}

	created, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "priya.nair@example.edu" {
		t.Errorf("expected email to be lowercased, got %q", created.Email)
	}
	if created.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if created.Status != "active" {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DefaultsToStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "No Role",
		Email:    "norole@example.edu",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Role != "student" {
		t.Errorf("expected default role 'student', got %q", created.Role)
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{
		FullName: "Bad Role",
		Email:    "badrole@example.edu",
		Role:     "superuser",
	})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Unique email index must exist for the duplicate to be rejected
	if err := ensureEmailIndex(ctx, db); err != nil {
		t.Fatalf("ensure email index: %v", err)
	}

	first := models.User{FullName: "First", Email: "same@example.edu", Role: "student"}
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second := models.User{FullName: "Second", Email: "SAME@example.edu", Role: "student"}
	_, err := store.Create(ctx, second)
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "Priya Nair", "priya@example.edu", "student")

	// Lookup is case-insensitive on the query side
	u, err := store.GetByEmail(ctx, "PRIYA@example.edu")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if u.FullName != "Priya Nair" {
		t.Errorf("unexpected user: %q", u.FullName)
	}

	_, err = store.GetByEmail(ctx, "missing@example.edu")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_UpdateProfile_FieldLevel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateStudent(ctx, "Arjun Mehta", "arjun@example.edu", 2)

	year := 3
	if err := store.UpdateProfile(ctx, user.ID, userstore.ProfileUpdate{Year: &year}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Year != 3 {
		t.Errorf("year: got %d, want 3", got.Year)
	}
	// Untouched fields survive a partial update
	if got.FullName != "Arjun Mehta" {
		t.Errorf("full name clobbered: %q", got.FullName)
	}
	if got.Email != "arjun@example.edu" {
		t.Errorf("email clobbered: %q", got.Email)
	}
}

func TestStore_UpdateProfile_BadYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateStudent(ctx, "Arjun Mehta", "arjun@example.edu", 2)

	year := 7
	err := store.UpdateProfile(ctx, user.ID, userstore.ProfileUpdate{Year: &year})
	if err == nil {
		t.Fatal("expected error for year out of range")
	}
}

func TestStore_UpdateProfile_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	name := "Ghost"
	err := store.UpdateProfile(ctx, primitive.NewObjectID(), userstore.ProfileUpdate{FullName: &name})
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_SetRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := fixtures.CreateStudent(ctx, "Neha Rao", "neha@example.edu", 2)

	if err := store.SetRole(ctx, user.ID, "rep"); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}

	got, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != "rep" {
		t.Errorf("role: got %q, want rep", got.Role)
	}

	if err := store.SetRole(ctx, user.ID, "emperor"); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestStore_EmailExistsForOther(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "A", "a@example.edu", "student")
	fixtures.CreateUser(ctx, "B", "b@example.edu", "student")

	exists, err := store.EmailExistsForOther(ctx, "b@example.edu", a.ID)
	if err != nil {
		t.Fatalf("EmailExistsForOther failed: %v", err)
	}
	if !exists {
		t.Error("expected b@example.edu to exist for another user")
	}

	exists, err = store.EmailExistsForOther(ctx, "a@example.edu", a.ID)
	if err != nil {
		t.Fatalf("EmailExistsForOther failed: %v", err)
	}
	if exists {
		t.Error("own email should not count as belonging to another user")
	}
}
