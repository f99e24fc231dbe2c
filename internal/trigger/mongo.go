package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/swiftline-carrier/driver-notify/internal/driver"
	"github.com/swiftline-carrier/driver-notify/internal/eventbus"
)

// ErrMongoUnavailable is returned when the database could not be reached.
var ErrMongoUnavailable = errors.New("mongo unavailable")

const (
	connectTimeout = 10 * time.Second
	connectRetries = 3
	retryInterval  = 2 * time.Second
)

// waitRetry blocks for d or until ctx is done.
var waitRetry = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Publisher accepts events for asynchronous handling.
type Publisher interface {
	Publish(eventType string, payload driver.CreatedEvent) bool
}

// ConnectMongo connects to uri and pings the primary, retrying a few times.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		client, err := mongo.Connect(options.Client().
			ApplyURI(uri).
			SetConnectTimeout(connectTimeout))
		if err == nil {
			if err = client.Ping(ctx, nil); err == nil {
				return client, nil
			}
			_ = client.Disconnect(context.WithoutCancel(ctx))
		}
		lastErr = err

		if attempt == connectRetries {
			break
		}
		if err := waitRetry(ctx, retryInterval); err != nil {
			return nil, err
		}
	}
	return nil, errors.Join(ErrMongoUnavailable, lastErr)
}

// changeEvent is the subset of a change stream document this watcher reads.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID any `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument bson.M `bson:"fullDocument"`
}

// MongoWatcher publishes a created event for every insert into the drivers collection.
type MongoWatcher struct {
	coll      *mongo.Collection
	publisher Publisher
	logger    *slog.Logger
}

// NewMongoWatcher creates a watcher on coll.
func NewMongoWatcher(coll *mongo.Collection, publisher Publisher, logger *slog.Logger) *MongoWatcher {
	return &MongoWatcher{coll: coll, publisher: publisher, logger: logger}
}

// Run watches the collection until ctx is canceled.
func (w *MongoWatcher) Run(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "operationType", Value: "insert"}}}},
	}
	cs, err := w.coll.Watch(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("opening change stream on %s: %w", w.coll.Name(), err)
	}
	defer func() {
		if cerr := cs.Close(context.WithoutCancel(ctx)); cerr != nil {
			w.logger.Warn("closing change stream", slog.Any("error", cerr))
		}
	}()

	w.logger.Info("watching collection for new drivers", slog.String("collection", w.coll.Name()))

	for cs.Next(ctx) {
		var ch changeEvent
		if err := cs.Decode(&ch); err != nil {
			w.logger.Error("decoding change event", slog.Any("error", err))
			continue
		}
		ev := ch.createdEvent(w.coll.Name())
		w.publisher.Publish(eventbus.TypeDriverCreated, ev)
	}

	if err := cs.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change stream on %s: %w", w.coll.Name(), err)
	}
	return nil
}

// createdEvent converts an insert change into a CreatedEvent at <collection>/<id>.
func (c changeEvent) createdEvent(collection string) driver.CreatedEvent {
	id := documentID(c.DocumentKey.ID)
	var data map[string]any
	if c.FullDocument != nil {
		data = map[string]any(c.FullDocument)
	}
	return driver.CreatedEvent{
		ID:         uuid.NewString(),
		Path:       path.Join(collection, id),
		DriverID:   id,
		Data:       data,
		ReceivedAt: time.Now().UTC(),
	}
}

func documentID(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
