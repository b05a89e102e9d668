package etl

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bangtanmom/contentsync/pkg/models"
	"github.com/bangtanmom/contentsync/pkg/utils"
)

// MongoGateway reads and writes posts in MongoDB. The instance is the
// database name and the collection is the Mongo collection.
type MongoGateway struct {
	Client *mongo.Client
}

// NewMongoGateway returns a gateway over client.
func NewMongoGateway(client *mongo.Client) *MongoGateway {
	return &MongoGateway{Client: client}
}

// Extract returns up to limit documents in _id order, which follows insertion
// order for generated ObjectIDs.
func (m *MongoGateway) Extract(ctx context.Context, instance, collection string, limit int) ([]models.Record, error) {
	coll := m.Client.Database(instance).Collection(collection)

	findOpts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("read %s on %s: %w", collection, instance, err)
	}
	defer cursor.Close(ctx)

	var rows []models.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("read %s on %s: decoding document: %w", collection, instance, err)
		}
		rows = append(rows, models.Record(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("read %s on %s: %w", collection, instance, err)
	}

	slog.Debug("Read documents", "database", instance, "collection", collection, "count", len(rows))
	return rows, nil
}

// Load inserts record as a new document and lets MongoDB assign its _id.
func (m *MongoGateway) Load(ctx context.Context, instance, collection string, record models.Record) (models.Receipt, error) {
	coll := m.Client.Database(instance).Collection(collection)

	res, err := coll.InsertOne(ctx, bson.M(record))
	if err != nil {
		return models.Receipt{}, fmt.Errorf("create %s on %s: %w", collection, instance, err)
	}

	id, _ := utils.ConvertToString(res.InsertedID)
	return models.Receipt{ID: id}, nil
}
