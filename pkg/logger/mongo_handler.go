// MongoHandler is an slog.Handler that asynchronously stores log records in
// a MongoDB collection, designed for zero impact on the hot request path:
//
//   - Records are enqueued into a buffered channel (non-blocking).
//   - A single background goroutine drains the channel and performs
//     InsertMany in batches.
//   - If the channel is full the record is silently dropped; logging must
//     never block application code.
//   - Graceful shutdown: call Close() to flush and disconnect.
package logger

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoQueueSize = 4096
	mongoBatchSize = 50
	mongoDrainTick = 2 * time.Second
)

// LogDocument is the shape written to MongoDB.
type LogDocument struct {
	Time      time.Time `bson:"time"`
	Level     string    `bson:"level"`
	Msg       string    `bson:"msg"`
	RequestID string    `bson:"request_id,omitempty"`
	Attrs     bson.M    `bson:"attrs,omitempty"`
}

// MongoHandler fans log records out to an inner handler and to MongoDB.
type MongoHandler struct {
	inner  slog.Handler
	client *mongodrv.Client
	coll   *mongodrv.Collection
	queue  chan LogDocument
	done   chan struct{}
}

// NewMongoHandler connects to MongoDB and returns a handler that wraps inner.
// Records below INFO are not persisted.
func NewMongoHandler(uri, database string, inner slog.Handler) (*MongoHandler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	h := &MongoHandler{
		inner:  inner,
		client: client,
		coll:   client.Database(database).Collection("logs"),
		queue:  make(chan LogDocument, mongoQueueSize),
		done:   make(chan struct{}),
	}
	go h.drain()
	return h, nil
}

func (h *MongoHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *MongoHandler) Handle(ctx context.Context, rec slog.Record) error {
	if rec.Level >= slog.LevelInfo {
		doc := LogDocument{
			Time:  rec.Time,
			Level: rec.Level.String(),
			Msg:   rec.Message,
			Attrs: bson.M{},
		}
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key == "request_id" {
				doc.RequestID = a.Value.String()
				return true
			}
			doc.Attrs[a.Key] = a.Value.Any()
			return true
		})

		select {
		case h.queue <- doc:
		default:
			// Queue full — drop rather than block.
		}
	}
	return h.inner.Handle(ctx, rec)
}

func (h *MongoHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MongoHandler{
		inner:  h.inner.WithAttrs(attrs),
		client: h.client,
		coll:   h.coll,
		queue:  h.queue,
		done:   h.done,
	}
}

func (h *MongoHandler) WithGroup(name string) slog.Handler {
	return &MongoHandler{
		inner:  h.inner.WithGroup(name),
		client: h.client,
		coll:   h.coll,
		queue:  h.queue,
		done:   h.done,
	}
}

// Close flushes any buffered records and disconnects from MongoDB.
func (h *MongoHandler) Close() error {
	close(h.done)
	h.flush(h.pending())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.client.Disconnect(ctx)
}

func (h *MongoHandler) drain() {
	ticker := time.NewTicker(mongoDrainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, mongoBatchSize)
	for {
		select {
		case doc := <-h.queue:
			batch = append(batch, doc)
			if len(batch) >= mongoBatchSize {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				h.flush(batch)
				batch = batch[:0]
			}
		case <-h.done:
			h.flush(batch)
			return
		}
	}
}

func (h *MongoHandler) pending() []interface{} {
	var batch []interface{}
	for {
		select {
		case doc := <-h.queue:
			batch = append(batch, doc)
		default:
			return batch
		}
	}
}

func (h *MongoHandler) flush(batch []interface{}) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _ = h.coll.InsertMany(ctx, batch)
}
