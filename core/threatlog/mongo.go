package threatlog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the MongoDB collection records are inserted into.
const DefaultCollection = "waf_threats"

// DocumentInserter is the subset of *mongo.Collection used by MongoSink.
type DocumentInserter interface {
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
}

// MongoSink inserts one document per record.
type MongoSink struct {
	coll DocumentInserter
}

// NewMongoSink returns a sink inserting into coll.
func NewMongoSink(coll DocumentInserter) *MongoSink {
	return &MongoSink{coll: coll}
}

// ConnectMongo opens a client for uri and checks it with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("threatlog: connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("threatlog: ping mongo: %w", err)
	}
	return client, nil
}

// Write inserts r. Keys match the JSON encoding of Record.
func (s *MongoSink) Write(ctx context.Context, r Record) error {
	doc := bson.D{
		{Key: "timestamp", Value: r.Timestamp},
		{Key: "ip", Value: r.IP},
		{Key: "user_agent", Value: r.UserAgent},
		{Key: "uri", Value: r.URI},
		{Key: "method", Value: r.Method},
		{Key: "threat", Value: r.Threat},
		{Key: "category", Value: r.Category},
		{Key: "incident_id", Value: r.IncidentID},
		{Key: "request_id", Value: r.RequestID},
		{Key: "input_sample", Value: r.InputSample},
		{Key: "input_length", Value: r.InputLength},
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("threatlog: mongo insert: %w", err)
	}
	return nil
}
