// internal/app/system/workers/announcementwatcher.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/campushub/campushub/internal/app/system/fanout"
	"github.com/campushub/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// AnnouncementWatcher tails the announcements collection with a change
// stream and fans out a notification batch for every insert. This catches
// announcements written by any path, not just this process's API handlers.
// Change streams need a replica set; on deployments without one the app
// runs fan-out inline in the create handler instead.
type AnnouncementWatcher struct {
	coll    *mongo.Collection
	deliver *fanout.Service
	log     *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAnnouncementWatcher creates a watcher over the announcements collection.
func NewAnnouncementWatcher(db *mongo.Database, deliver *fanout.Service, logger *zap.Logger) *AnnouncementWatcher {
	return &AnnouncementWatcher{
		coll:    db.Collection("announcements"),
		deliver: deliver,
		log:     logger,
	}
}

// Start opens the change stream and begins watching. It fails fast when
// the deployment cannot serve change streams so the caller can fall back
// to inline fan-out.
func (w *AnnouncementWatcher) Start() error {
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := w.watch(ctx, nil)
	if err != nil {
		cancel()
		return err
	}

	w.cancel = cancel
	w.wg.Add(1)
	go w.run(ctx, stream)
	w.log.Info("announcement watcher started")
	return nil
}

// Stop closes the stream and waits for the loop to finish.
func (w *AnnouncementWatcher) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("announcement watcher stopped")
}

// watch opens a change stream over announcement inserts, resuming after
// the given token when one is known.
func (w *AnnouncementWatcher) watch(ctx context.Context, resumeAfter bson.Raw) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"operationType": "insert"}}},
	}
	return w.coll.Watch(ctx, pipeline, changeStreamOpts(resumeAfter))
}

func changeStreamOpts(resumeAfter bson.Raw) *options.ChangeStreamOptions {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if resumeAfter != nil {
		opts.SetResumeAfter(resumeAfter)
	}
	return opts
}

func (w *AnnouncementWatcher) run(ctx context.Context, stream *mongo.ChangeStream) {
	defer w.wg.Done()

	var resumeToken bson.Raw
	for {
		resumeToken = w.consume(ctx, stream, resumeToken)
		if ctx.Err() != nil {
			return
		}

		// The stream died out from under us. Reopen after the last token
		// we saw so the inserts from the gap replay; the unique
		// notification index absorbs any the fan-out already delivered.
		w.log.Warn("announcement change stream interrupted, reopening")
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}

		next, err := w.watch(ctx, resumeToken)
		if err != nil && resumeToken != nil {
			// The token may have aged off the oplog. A fresh stream loses
			// the gap but keeps future inserts flowing.
			w.log.Error("resume failed, reopening fresh stream", zap.Error(err))
			resumeToken = nil
			next, err = w.watch(ctx, nil)
		}
		if err != nil {
			w.log.Error("failed to reopen announcement change stream", zap.Error(err))
			continue
		}
		stream = next
	}
}

// consume drains the stream until it errors or the context ends, and
// returns the latest resume token so the caller can reopen without a gap.
func (w *AnnouncementWatcher) consume(ctx context.Context, stream *mongo.ChangeStream, lastToken bson.Raw) bson.Raw {
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		if t := stream.ResumeToken(); t != nil {
			lastToken = t
		}

		var change struct {
			FullDocument models.Announcement `bson:"fullDocument"`
		}
		if err := stream.Decode(&change); err != nil {
			w.log.Error("failed to decode announcement change", zap.Error(err))
			continue
		}

		ann := change.FullDocument
		if ann.ID.IsZero() {
			continue
		}
		if _, err := w.deliver.Deliver(ctx, ann); err != nil {
			w.log.Error("announcement fan-out failed",
				zap.String("announcement_id", ann.ID.Hex()),
				zap.Error(err))
		}
	}
	return lastToken
}
