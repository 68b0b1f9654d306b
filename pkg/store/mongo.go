package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/verdantlabs/verdant/pkg/errors"
	"github.com/verdantlabs/verdant/pkg/observability"
)

// Mongo config defaults.
const (
	DefaultDatabase   = "verdant"
	DefaultCollection = "runs"
	DefaultTimeout    = 10 * time.Second
)

// MongoConfig configures the MongoDB run store.
type MongoConfig struct {
	// URI is the connection string (mongodb:// or mongodb+srv://).
	URI string

	// Database and Collection name the target namespace.
	Database   string
	Collection string

	// Timeout bounds connection and ping attempts.
	Timeout time.Duration
}

// MongoStore persists runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	name   string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if err := errors.ValidateMongoURI(cfg.URI); err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "ping mongodb")
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		name:   cfg.Collection,
	}, nil
}

// Save persists a run, assigning its ID and timestamp when unset.
func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := s.coll.InsertOne(ctx, run)
	observability.Store().OnWrite(ctx, s.name, time.Since(start), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "save run")
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *MongoStore) List(ctx context.Context, limit int64) ([]Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	start := time.Now()
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		observability.Store().OnQuery(ctx, s.name, 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "list runs")
	}
	defer cur.Close(ctx)

	var runs []Run
	if err := cur.All(ctx, &runs); err != nil {
		observability.Store().OnQuery(ctx, s.name, 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "decode runs")
	}
	observability.Store().OnQuery(ctx, s.name, len(runs), time.Since(start), nil)
	return runs, nil
}

// Best returns the highest-scoring run.
func (s *MongoStore) Best(ctx context.Context) (*Run, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "score", Value: -1}})

	start := time.Now()
	var run Run
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&run)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnQuery(ctx, s.name, 0, time.Since(start), nil)
		return nil, errors.New(errors.ErrCodeNotFound, "no runs recorded")
	}
	if err != nil {
		observability.Store().OnQuery(ctx, s.name, 0, time.Since(start), err)
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "find best run")
	}
	observability.Store().OnQuery(ctx, s.name, 1, time.Since(start), nil)
	return &run, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
