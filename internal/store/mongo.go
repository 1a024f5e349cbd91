package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoRecord is the persisted shape of one actor: its document bytes and its
// single alarm slot live in the same row so they stay consistent per key.
type mongoRecord struct {
	Key       string     `bson:"_id"`
	Doc       []byte     `bson:"doc,omitempty"`
	AlarmAt   *time.Time `bson:"alarm_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

type mongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{
		collection: db.Collection("actor_documents"),
	}
}

func (m *mongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var rec mongoRecord

	filter := bson.M{"_id": key}
	err := m.collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	if rec.Doc == nil {
		return nil, ErrNotFound
	}
	return rec.Doc, nil
}

func (m *mongoStore) Put(ctx context.Context, key string, doc []byte) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{"doc": doc, "updated_at": time.Now()}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (m *mongoStore) Delete(ctx context.Context, key string) error {
	filter := bson.M{"_id": key}

	_, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (m *mongoStore) SetAlarm(ctx context.Context, key string, at time.Time) error {
	filter := bson.M{"_id": key}
	update := bson.M{"$set": bson.M{"alarm_at": at, "updated_at": time.Now()}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to set alarm: %w", err)
	}
	return nil
}

func (m *mongoStore) Alarm(ctx context.Context, key string) (time.Time, bool, error) {
	var rec mongoRecord

	filter := bson.M{"_id": key}
	err := m.collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to read alarm: %w", err)
	}

	if rec.AlarmAt == nil {
		return time.Time{}, false, nil
	}
	return *rec.AlarmAt, true, nil
}

func (m *mongoStore) CancelAlarm(ctx context.Context, key string) error {
	filter := bson.M{"_id": key}
	update := bson.M{
		"$unset": bson.M{"alarm_at": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}

	_, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to cancel alarm: %w", err)
	}
	return nil
}

func (m *mongoStore) PendingAlarms(ctx context.Context) ([]PendingAlarm, error) {
	filter := bson.M{"alarm_at": bson.M{"$exists": true}}

	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending alarms: %w", err)
	}
	defer cursor.Close(ctx)

	var pending []PendingAlarm
	for cursor.Next(ctx) {
		var rec mongoRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode pending alarm: %w", err)
		}
		if rec.AlarmAt != nil {
			pending = append(pending, PendingAlarm{Key: rec.Key, At: *rec.AlarmAt})
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending alarms: %w", err)
	}
	return pending, nil
}

// EnsureIndexes creates the MongoDB indexes when s is Mongo-backed; other
// implementations need none.
func EnsureIndexes(ctx context.Context, s Store) error {
	if m, ok := s.(*mongoStore); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}

// CreateIndexes sets up the alarm scan index used by PendingAlarms.
func (m *mongoStore) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "alarm_at", Value: 1}},
		Options: options.Index().SetSparse(true),
	}

	_, err := m.collection.Indexes().CreateOne(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
