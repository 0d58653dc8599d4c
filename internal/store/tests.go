package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTests struct {
	coll *mongo.Collection
}

func (s *mongoTests) Create(ctx context.Context, doc models.Document) (models.WriteResult, error) {
	return insertDoc(ctx, s.coll, doc)
}

func (s *mongoTests) Update(ctx context.Context, hex string, fields models.Document) (models.WriteResult, error) {
	id, err := ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": fields})
}

func (s *mongoTests) Delete(ctx context.Context, id string) (models.WriteResult, error) {
	return deleteByID(ctx, s.coll, id)
}

func (s *mongoTests) List(ctx context.Context, fromDate string) ([]models.Document, error) {
	filter := bson.M{}
	if fromDate != "" {
		filter["date"] = bson.M{"$gte": fromDate}
	}
	return findAll[models.Document](ctx, s.coll, filter)
}

func (s *mongoTests) Featured(ctx context.Context, limit int) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "booked", Value: -1}}).SetLimit(int64(limit))
	return findAll[models.Document](ctx, s.coll, bson.M{}, opts)
}

func (s *mongoTests) FindByID(ctx context.Context, hex string) (models.Document, error) {
	id, err := ParseID(hex)
	if err != nil {
		return nil, err
	}
	return findDoc(ctx, s.coll, bson.M{"_id": id})
}

func (s *mongoTests) ReserveSlot(ctx context.Context, testName string) (primitive.ObjectID, bool, error) {
	filter := bson.M{"testName": testName, "slotsAvailable": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"booked": 1, "slotsAvailable": -1}}
	opts := options.FindOneAndUpdate().SetProjection(bson.M{"_id": 1})

	var reserved struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&reserved)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("reserve %s slot: %w", testName, err)
	}
	return reserved.ID, true, nil
}

func (s *mongoTests) ReleaseSlot(ctx context.Context, id primitive.ObjectID) (models.WriteResult, error) {
	update := bson.M{"$inc": bson.M{"booked": -1, "slotsAvailable": 1}}
	return updateOne(ctx, s.coll, bson.M{"_id": id}, update)
}
