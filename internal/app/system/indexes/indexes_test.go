package indexes_test

import (
	"testing"

	"github.com/campushub/campushub/internal/app/system/indexes"
	"github.com/campushub/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	expected := map[string][]string{
		"users": {
			"uniq_users_email",
			"idx_users_role_status_fullnameci_id",
			"idx_users_subscribed_clubs",
		},
		"clubs": {
			"uniq_clubs_name",
			"idx_clubs_nameci__id",
		},
		"announcements": {
			"idx_ann_created",
			"idx_ann_club_created",
		},
		"events": {
			"idx_events_status_start",
			"idx_events_start",
		},
		"placements": {
			"idx_placements_deadline",
			"idx_placements_created",
		},
		"notifications": {
			"uniq_notif_user_announcement",
			"idx_notif_user_created",
		},
		"audit_events": {
			"idx_audit_created",
			"idx_audit_actor_created",
		},
		"oauth_states": {
			"uniq_oauth_state",
			"idx_oauth_expires_ttl",
		},
	}

	for collection, names := range expected {
		cur, err := db.Collection(collection).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("List indexes on %s failed: %v", collection, err)
		}

		got := make(map[string]bool)
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			if name, ok := idx["name"].(string); ok {
				got[name] = true
			}
		}
		cur.Close(ctx)

		for _, name := range names {
			if !got[name] {
				t.Errorf("expected index %q to exist on %s collection", name, collection)
			}
		}
	}
}

func TestEnsureAll_UniqueEmailEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err = db.Collection("users").InsertOne(ctx, bson.M{"email": "dup@test.edu", "full_name": "One"})
	if err != nil {
		t.Fatalf("Insert user failed: %v", err)
	}

	_, err = db.Collection("users").InsertOne(ctx, bson.M{"email": "dup@test.edu", "full_name": "Two"})
	if err == nil {
		t.Error("expected duplicate key error for unique index on users.email")
	}
}

func TestEnsureAll_UniqueNotificationPairEnforced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	doc := bson.M{"user_id": "u1", "announcement_id": "a1", "title": "hello"}
	if _, err := db.Collection("notifications").InsertOne(ctx, doc); err != nil {
		t.Fatalf("Insert notification failed: %v", err)
	}

	dup := bson.M{"user_id": "u1", "announcement_id": "a1", "title": "hello again"}
	if _, err := db.Collection("notifications").InsertOne(ctx, dup); err == nil {
		t.Error("expected duplicate key error for unique index on notifications (user_id, announcement_id)")
	}
}
