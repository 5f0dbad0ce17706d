package profile_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/campushub/campushub/internal/app/features/profile"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *profile.Handler {
	return profile.NewHandler(userstore.New(db), zap.NewNop())
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
}

func TestGet_ReturnsOwnProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := f.CreateStudent(ctx, "Priya Nair", "priya@campus.edu", 2)

	req := testutil.NewAuthenticatedRequest("GET", "/profile", asTestUser(student))
	rec := testutil.NewRecorder()

	h.Get(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Priya Nair")
	rec.AssertContains(t, "priya@campus.edu")
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("profile response leaked the password hash field")
	}
}

func TestUpdate_PartialPreservesOtherFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := f.CreateStudent(ctx, "Priya Nair", "priya@campus.edu", 2)
	store := userstore.New(db)
	if err := store.Subscribe(ctx, student.ID, "Coding Club"); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}

	req := testutil.WithUser(
		testutil.NewJSONRequest("PUT", "/profile", `{"branch":"CSE"}`),
		asTestUser(student))
	rec := testutil.NewRecorder()

	h.Update(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	updated, err := store.GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.Branch != "CSE" {
		t.Errorf("branch: got %q, want %q", updated.Branch, "CSE")
	}
	if updated.FullName != "Priya Nair" {
		t.Errorf("full name changed on a partial update: %q", updated.FullName)
	}
	if updated.Year != 2 {
		t.Errorf("year changed on a partial update: %d", updated.Year)
	}
	if len(updated.SubscribedClubs) != 1 || updated.SubscribedClubs[0] != "Coding Club" {
		t.Errorf("subscriptions touched by profile update: %v", updated.SubscribedClubs)
	}
}

func TestUpdate_BadYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	student := f.CreateStudent(ctx, "Priya Nair", "priya@campus.edu", 2)

	req := testutil.WithUser(
		testutil.NewJSONRequest("PUT", "/profile", `{"year":7}`),
		asTestUser(student))
	rec := testutil.NewRecorder()

	h.Update(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "year must be between 1 and 4")
}
