package clubs_test

import (
	"net/http"
	"testing"

	"github.com/campushub/campushub/internal/app/features/clubs"
	announcementstore "github.com/campushub/campushub/internal/app/store/announcements"
	clubstore "github.com/campushub/campushub/internal/app/store/clubs"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *clubs.Handler {
	return clubs.NewHandler(
		clubstore.New(db), userstore.New(db), announcementstore.New(db),
		nil, zap.NewNop())
}

func TestCreate_Privileged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewJSONRequest("POST", "/clubs", `{"name":"Robotics Club","description":"We build robots"}`)
	req = testutil.WithUser(req, testutil.RepUser())
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Robotics Club")
}

func TestCreate_StudentForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewJSONRequest("POST", "/clubs", `{"name":"Robotics Club"}`)
	req = testutil.WithUser(req, testutil.StudentUser())
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestCreate_EmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewJSONRequest("POST", "/clubs", `{"name":"   "}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	f.CreateClub(ctx, "Drama Society", admin.ID)
	f.CreateClub(ctx, "Robotics Club", admin.ID)

	req := testutil.NewRequest("GET", "/clubs")
	rec := testutil.NewRecorder()

	h.List(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Drama Society")
	rec.AssertContains(t, "Robotics Club")
}

func TestUpdate_DescriptionOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	club := f.CreateClub(ctx, "Robotics Club", admin.ID)

	req := testutil.NewJSONRequest("PUT", "/clubs/"+club.ID.Hex(), `{"description":"New blurb"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", club.ID.Hex())
	rec := testutil.NewRecorder()

	h.Update(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	got, err := clubstore.New(db).GetByID(ctx, club.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Description != "New blurb" {
		t.Errorf("description: got %q, want %q", got.Description, "New blurb")
	}
	if got.Name != "Robotics Club" {
		t.Errorf("name changed to %q, want it immutable", got.Name)
	}
}

func TestDelete_CleansUpReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	club := f.CreateClub(ctx, "Robotics Club", admin.ID)
	member := f.CreateUser(ctx, "Member", "member@campus.edu", "student", "Robotics Club", "Drama Society")
	f.CreateAnnouncement(ctx, "Robot demo day", "Robotics Club", admin.ID)

	req := testutil.NewRequest("DELETE", "/clubs/"+club.ID.Hex())
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", club.ID.Hex())
	rec := testutil.NewRecorder()

	h.Delete(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	subs, err := userstore.New(db).Subscriptions(ctx, member.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(subs) != 1 || subs[0] != "Drama Society" {
		t.Errorf("subscriptions after delete: got %v, want only Drama Society", subs)
	}

	anns, err := announcementstore.New(db).ListByClub(ctx, "Robotics Club", 10)
	if err != nil {
		t.Fatalf("ListByClub failed: %v", err)
	}
	if len(anns) != 0 {
		t.Errorf("expected club announcements removed, got %d", len(anns))
	}
}

func TestDelete_RepForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	club := f.CreateClub(ctx, "Robotics Club", admin.ID)

	req := testutil.NewRequest("DELETE", "/clubs/"+club.ID.Hex())
	req = testutil.WithUser(req, testutil.RepUser())
	req = testutil.WithChiURLParam(req, "id", club.ID.Hex())
	rec := testutil.NewRecorder()

	h.Delete(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestSubscribe_ByClubID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	club := f.CreateClub(ctx, "Robotics Club", admin.ID)
	student := f.CreateUser(ctx, "Student", "student@campus.edu", "student")

	user := testutil.TestUser{ID: student.ID.Hex(), Name: student.FullName, Email: student.Email, Role: "student"}
	req := testutil.NewRequest("POST", "/clubs/"+club.ID.Hex()+"/subscribe")
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "id", club.ID.Hex())
	rec := testutil.NewRecorder()

	h.Subscribe(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	subs, err := userstore.New(db).Subscriptions(ctx, student.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(subs) != 1 || subs[0] != "Robotics Club" {
		t.Errorf("subscriptions: got %v, want [Robotics Club]", subs)
	}
}

func TestSubscribe_UnknownClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	missing := "64b0c5f0a0a0a0a0a0a0a0a0"
	req := testutil.NewRequest("POST", "/clubs/"+missing+"/subscribe")
	req = testutil.WithUser(req, testutil.StudentUser())
	req = testutil.WithChiURLParam(req, "id", missing)
	rec := testutil.NewRecorder()

	h.Subscribe(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestUnsubscribe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	club := f.CreateClub(ctx, "Robotics Club", admin.ID)
	student := f.CreateUser(ctx, "Student", "student@campus.edu", "student", "Robotics Club")

	user := testutil.TestUser{ID: student.ID.Hex(), Name: student.FullName, Email: student.Email, Role: "student"}
	req := testutil.NewRequest("POST", "/clubs/"+club.ID.Hex()+"/unsubscribe")
	req = testutil.WithUser(req, user)
	req = testutil.WithChiURLParam(req, "id", club.ID.Hex())
	rec := testutil.NewRecorder()

	h.Unsubscribe(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	subs, err := userstore.New(db).Subscriptions(ctx, student.ID)
	if err != nil {
		t.Fatalf("Subscriptions failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("subscriptions: got %v, want empty", subs)
	}
}
