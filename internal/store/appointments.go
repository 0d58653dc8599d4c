package store

import (
	"context"
	"regexp"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoAppointments struct {
	coll *mongo.Collection
}

func (s *mongoAppointments) Create(ctx context.Context, doc models.Document) (models.WriteResult, error) {
	return insertDoc(ctx, s.coll, doc)
}

func (s *mongoAppointments) List(ctx context.Context, f models.AppointmentFilter) ([]models.Document, error) {
	filter := bson.M{}
	switch {
	case f.Search != "":
		filter["email"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	case f.Email != "":
		filter["email"] = f.Email
	}
	return findAll[models.Document](ctx, s.coll, filter)
}

func (s *mongoAppointments) Delete(ctx context.Context, id string) (models.WriteResult, error) {
	return deleteByID(ctx, s.coll, id)
}

func (s *mongoAppointments) SetStatus(ctx context.Context, hex, status string) (models.WriteResult, error) {
	id, err := ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
}

type mongoReports struct {
	coll *mongo.Collection
}

func (s *mongoReports) Create(ctx context.Context, doc models.Document) (models.WriteResult, error) {
	return insertDoc(ctx, s.coll, doc)
}

func (s *mongoReports) List(ctx context.Context, email string) ([]models.Document, error) {
	filter := bson.M{}
	if email != "" {
		filter["email"] = email
	}
	return findAll[models.Document](ctx, s.coll, filter)
}
