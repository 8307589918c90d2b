package db

import (
	"context"
	"fmt"

	"speech-corpus/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB client holding the crawl mirror collection.
// Every speech the crawl assembles is upserted here keyed by catalog id, so
// repeated runs never duplicate records.
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new MongoDB client for the given collection.
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveSpeech upserts a speech into the mirror collection, keyed by catalog
// id. The crawled_at field is refreshed on every save.
func (c *Client) SaveSpeech(ctx context.Context, speech *domain.Speech) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	filter := bson.M{"id": speech.ID}
	update := bson.M{
		"$set":         speech,
		"$currentDate": bson.M{"crawled_at": true},
	}
	opts := options.Update().SetUpsert(true)

	_, err := c.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetAllIDs fetches all catalog ids from the mirror and returns them as a
// map (set).
func (c *Client) GetAllIDs(ctx context.Context) (map[string]bool, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"id": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer cursor.Close(ctx)

	idSet := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.ID != "" {
			idSet[result.ID] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return idSet, nil
}
