package announcements_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/campushub/campushub/internal/app/features/announcements"
	announcementstore "github.com/campushub/campushub/internal/app/store/announcements"
	clubstore "github.com/campushub/campushub/internal/app/store/clubs"
	userstore "github.com/campushub/campushub/internal/app/store/users"
	"github.com/campushub/campushub/internal/app/system/visibility"
	"github.com/campushub/campushub/internal/domain/models"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *announcements.Handler {
	return announcements.NewHandler(
		announcementstore.New(db), clubstore.New(db), userstore.New(db),
		visibility.Default(), nil, zap.NewNop())
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
}

func TestCreate_Privileged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rep := f.CreateRep(ctx, "Rep", "rep@campus.edu")
	f.CreateClub(ctx, "Robotics Club", rep.ID)

	req := testutil.NewJSONRequest("POST", "/announcements",
		`{"title":"Demo day","body":"<p>Come see our robots</p>","club":"Robotics Club"}`)
	req = testutil.WithUser(req, asTestUser(rep))
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
	rec.AssertContains(t, "Demo day")
}

func TestCreate_StudentForbidden(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewJSONRequest("POST", "/announcements",
		`{"title":"Demo day","club":"Robotics Club"}`)
	req = testutil.WithUser(req, testutil.StudentUser())
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestCreate_UnknownClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewJSONRequest("POST", "/announcements",
		`{"title":"Demo day","club":"No Such Club"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestCreate_BroadcastSourceNeedsNoClubDoc(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)

	req := testutil.NewJSONRequest("POST", "/announcements",
		`{"title":"Semester dates","club":"Admin"}`)
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)
}

func TestCreate_SanitizesBody(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	f.CreateClub(ctx, "Robotics Club", admin.ID)

	req := testutil.NewJSONRequest("POST", "/announcements",
		`{"title":"Demo day","body":"<p>hello</p><script>alert(1)</script>","club":"Robotics Club"}`)
	req = testutil.WithUser(req, asTestUser(admin))
	rec := testutil.NewRecorder()

	h.Create(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusCreated)

	var ann models.Announcement
	if err := json.Unmarshal(rec.Body.Bytes(), &ann); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if strings.Contains(ann.Body, "<script>") {
		t.Errorf("script tag survived sanitizing: %q", ann.Body)
	}
	if !strings.Contains(ann.Body, "<p>hello</p>") {
		t.Errorf("benign markup should survive: %q", ann.Body)
	}
}

func TestList_FilteredBySubscriptions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	student := f.CreateUser(ctx, "Student", "student@campus.edu", "student", "Robotics Club")

	f.CreateAnnouncement(ctx, "Robot demo", "Robotics Club", admin.ID)
	f.CreateAnnouncement(ctx, "Auditions", "Drama Society", admin.ID)
	f.CreateAnnouncement(ctx, "Campus notice", "Admin", admin.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/announcements", asTestUser(student))
	rec := testutil.NewRecorder()

	h.List(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Robot demo")
	rec.AssertContains(t, "Campus notice")
	if strings.Contains(rec.Body.String(), "Auditions") {
		t.Error("unsubscribed club's announcement leaked into the feed")
	}
}

func TestList_AdminSeesAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	f.CreateAnnouncement(ctx, "Robot demo", "Robotics Club", admin.ID)
	f.CreateAnnouncement(ctx, "Auditions", "Drama Society", admin.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/announcements", asTestUser(admin))
	rec := testutil.NewRecorder()

	h.List(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Robot demo")
	rec.AssertContains(t, "Auditions")
}

func TestGet_VisibilityChecked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(db)
	f := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := f.CreateAdmin(ctx, "Admin", "admin@campus.edu")
	student := f.CreateUser(ctx, "Student", "student@campus.edu", "student", "Robotics Club")

	visible := f.CreateAnnouncement(ctx, "Robot demo", "Robotics Club", admin.ID)
	hidden := f.CreateAnnouncement(ctx, "Auditions", "Drama Society", admin.ID)

	req := testutil.NewAuthenticatedRequest("GET", "/announcements/"+visible.ID.Hex(), asTestUser(student))
	req = testutil.WithChiURLParam(req, "id", visible.ID.Hex())
	rec := testutil.NewRecorder()
	h.Get(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	// A hidden announcement reads the same as a missing one.
	req = testutil.NewAuthenticatedRequest("GET", "/announcements/"+hidden.ID.Hex(), asTestUser(student))
	req = testutil.WithChiURLParam(req, "id", hidden.ID.Hex())
	rec = testutil.NewRecorder()
	h.Get(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)
}
