package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUsers struct {
	coll *mongo.Collection
}

func (s *mongoUsers) CreateIfAbsent(ctx context.Context, doc models.Document) (models.WriteResult, bool, error) {
	email := models.StringField(doc, "email")
	n, err := s.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return models.WriteResult{}, false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return models.WriteResult{Acknowledged: true}, false, nil
	}

	res, err := insertDoc(ctx, s.coll, doc)
	if err != nil {
		// Lost the race against a concurrent insert of the same email.
		if mongo.IsDuplicateKeyError(err) {
			return models.WriteResult{Acknowledged: true}, false, nil
		}
		return models.WriteResult{}, false, err
	}
	return res, true, nil
}

func (s *mongoUsers) List(ctx context.Context) ([]models.Document, error) {
	return findAll[models.Document](ctx, s.coll, bson.M{})
}

func (s *mongoUsers) Profile(ctx context.Context, email string) (models.Document, error) {
	return findDoc(ctx, s.coll, bson.M{"email": email})
}

// accountProjection limits the typed lookup to server-controlled fields, so
// whatever else a client stored cannot break decoding.
var accountProjection = bson.M{"_id": 1, "email": 1, "role": 1}

func (s *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}, options.FindOne().SetProjection(accountProjection)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *mongoUsers) UpdateProfile(ctx context.Context, email string, fields models.Document) (models.WriteResult, error) {
	return updateOne(ctx, s.coll, bson.M{"email": email}, bson.M{"$set": fields})
}

func (s *mongoUsers) SetRole(ctx context.Context, hex, role string) (models.WriteResult, error) {
	id, err := ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
}

// ToggleStatus flips an active user to blocked and anything else to active.
func (s *mongoUsers) ToggleStatus(ctx context.Context, hex string) (models.WriteResult, error) {
	id, err := ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	user, err := findDoc(ctx, s.coll, bson.M{"_id": id})
	if err != nil {
		return models.WriteResult{}, err
	}
	if user == nil {
		return models.Updated(0, 0), nil
	}
	next := NextStatus(models.StringField(user, "status"))
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": next}})
}

// NextStatus returns the status a toggle moves current to.
func NextStatus(current string) string {
	if current == models.StatusActive {
		return models.StatusBlocked
	}
	return models.StatusActive
}

