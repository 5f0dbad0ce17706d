package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/campushub/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role and subscriptions.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, subscribed ...string) models.User {
	f.t.Helper()

	if subscribed == nil {
		subscribed = []string{}
	}
	now := time.Now().UTC()
	user := models.User{
		ID:              primitive.NewObjectID(),
		FullName:        fullName,
		FullNameCI:      text.Fold(fullName),
		Email:           email,
		Role:            role,
		Status:          "active",
		Year:            2,
		AuthMethod:      "password",
		SubscribedClubs: subscribed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateStudent creates a test student in the given year.
func (f *Fixtures) CreateStudent(ctx context.Context, fullName, email string, year int) models.User {
	f.t.Helper()

	user := f.CreateUser(ctx, fullName, email, "student")
	if year != user.Year {
		if _, err := f.db.Collection("users").UpdateByID(ctx, user.ID,
			bson.M{"$set": bson.M{"year": year}}); err != nil {
			f.t.Fatalf("failed to set test user year: %v", err)
		}
		user.Year = year
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin")
}

// CreateRep creates a test club representative.
func (f *Fixtures) CreateRep(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "rep")
}

// CreateDisabledUser creates a test user with disabled status.
func (f *Fixtures) CreateDisabledUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	user := f.CreateUser(ctx, fullName, email, "student")
	if _, err := f.db.Collection("users").UpdateByID(ctx, user.ID,
		bson.M{"$set": bson.M{"status": "disabled"}}); err != nil {
		f.t.Fatalf("failed to disable test user: %v", err)
	}
	user.Status = "disabled"
	return user
}

// CreateClub creates a test club with the given name.
func (f *Fixtures) CreateClub(ctx context.Context, name string, createdBy primitive.ObjectID) models.Club {
	f.t.Helper()

	now := time.Now().UTC()
	club := models.Club{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test club description",
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("clubs").InsertOne(ctx, club)
	if err != nil {
		f.t.Fatalf("failed to create test club: %v", err)
	}

	return club
}

// CreateAnnouncement creates a test announcement for the given club.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, title, clubName string, createdBy primitive.ObjectID) models.Announcement {
	f.t.Helper()

	ann := models.Announcement{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      "Test announcement body",
		Club:      clubName,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("announcements").InsertOne(ctx, ann)
	if err != nil {
		f.t.Fatalf("failed to create test announcement: %v", err)
	}

	return ann
}

// CreateEvent creates a test event with the given status and start time.
func (f *Fixtures) CreateEvent(ctx context.Context, title, status string, startTime time.Time, createdBy primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	event := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "Test event description",
		StartTime:   startTime,
		Location:    "Main Auditorium",
		Status:      status,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, event)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return event
}

// CreatePlacement creates a test placement drive.
func (f *Fixtures) CreatePlacement(ctx context.Context, company, role string, minYear int, createdBy primitive.ObjectID) models.Placement {
	f.t.Helper()

	placement := models.Placement{
		ID:          primitive.NewObjectID(),
		Company:     company,
		Role:        role,
		Eligibility: "Test eligibility criteria",
		MinYear:     minYear,
		Deadline:    time.Now().UTC().Add(14 * 24 * time.Hour),
		Link:        "https://careers.example.com/apply",
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := f.db.Collection("placements").InsertOne(ctx, placement)
	if err != nil {
		f.t.Fatalf("failed to create test placement: %v", err)
	}

	return placement
}

// CreateNotification creates a test notification for the given user and announcement.
func (f *Fixtures) CreateNotification(ctx context.Context, userID, announcementID primitive.ObjectID, title string) models.Notification {
	f.t.Helper()

	notif := models.Notification{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		AnnouncementID: announcementID,
		Title:          title,
		Body:           "Test notification body",
		Link:           "/announcements/" + announcementID.Hex(),
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := f.db.Collection("notifications").InsertOne(ctx, notif)
	if err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}

	return notif
}
