package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"margo/internal/domain/game"
)

const adjudicationsCollection = "adjudications"

// AdjudicationJournal appends every ruling to MongoDB.
type AdjudicationJournal struct {
	mongo *mongo.Database
	log   *zap.SugaredLogger
}

func NewAdjudicationJournal(mongo *mongo.Database, log *zap.SugaredLogger) *AdjudicationJournal {
	return &AdjudicationJournal{
		mongo: mongo,
		log:   log,
	}
}

func (j *AdjudicationJournal) Record(ctx context.Context, a game.Adjudication) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := j.mongo.Collection(adjudicationsCollection)

	_, err := collection.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("insert adjudication %s: %w", a.RequestID, err)
	}

	j.log.Debugf("adjudication %s recorded", a.RequestID)
	return nil
}

// ByMatch lists a match's rulings in the order they were made.
func (j *AdjudicationJournal) ByMatch(ctx context.Context, matchID string) ([]game.Adjudication, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := j.mongo.Collection(adjudicationsCollection)
	filter := bson.M{"match_id": matchID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var result []game.Adjudication
	for cursor.Next(ctx) {
		var a game.Adjudication
		if err = cursor.Decode(&a); err != nil {
			return result, err
		}
		result = append(result, a)
	}
	return result, cursor.Err()
}
