package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is a MongoDB-backed job store for multi-instance API
// deployments, where any instance must be able to answer a poll for a job
// another instance accepted.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

func (c MongoConfig) withDefaults() MongoConfig {
	if c.Database == "" {
		c.Database = "bpmnlayout"
	}
	if c.Collection == "" {
		c.Collection = "jobs"
	}
	return c
}

// NewMongoStore connects to MongoDB and returns a Store backed by it.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	cfg = cfg.withDefaults()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresat", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}

	return &MongoStore{client: client, coll: coll}, nil
}

type mongoJob struct {
	ID        string    `bson:"_id"`
	Status    Status    `bson:"status"`
	Stage     Stage     `bson:"stage"`
	Result    string    `bson:"result,omitempty"`
	Error     string    `bson:"error,omitempty"`
	CreatedAt time.Time `bson:"createdat"`
	UpdatedAt time.Time `bson:"updatedat"`
	ExpiresAt time.Time `bson:"expiresat"`
}

func toMongoJob(j *Job) mongoJob {
	return mongoJob{
		ID:        j.ID,
		Status:    j.Status,
		Stage:     j.Stage,
		Result:    j.Result,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		ExpiresAt: j.ExpiresAt,
	}
}

func (m mongoJob) toJob() *Job {
	return &Job{
		ID:        m.ID,
		Status:    m.Status,
		Stage:     m.Stage,
		Result:    m.Result,
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}

func (s *MongoStore) Get(ctx context.Context, jobID string) (*Job, error) {
	var doc mongoJob
	err := s.coll.FindOne(ctx, bson.M{"_id": jobID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	job := doc.toJob()
	if job.IsExpired() {
		return nil, nil
	}
	return job, nil
}

func (s *MongoStore) Set(ctx context.Context, job *Job) error {
	job.UpdatedAt = time.Now()
	doc := toMongoJob(job)
	opts := options.Replace().SetUpsert(true)
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": job.ID}, doc, opts)
	if err != nil {
		return fmt.Errorf("upsert job: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, jobID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": jobID})
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// Cleanup is a no-op: the TTL index created in NewMongoStore expires
// documents server-side.
func (s *MongoStore) Cleanup(ctx context.Context) error {
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
