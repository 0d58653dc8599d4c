package store

import (
	"context"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoBanners struct {
	coll *mongo.Collection
}

func (s *mongoBanners) Create(ctx context.Context, doc models.Document) (models.WriteResult, error) {
	return insertDoc(ctx, s.coll, doc)
}

func (s *mongoBanners) List(ctx context.Context) ([]models.Document, error) {
	return findAll[models.Document](ctx, s.coll, bson.M{})
}

func (s *mongoBanners) Active(ctx context.Context) (models.Document, error) {
	return findDoc(ctx, s.coll, bson.M{"isActive": true})
}

func (s *mongoBanners) DeactivateAll(ctx context.Context) (models.WriteResult, error) {
	res, err := s.coll.UpdateMany(ctx, bson.M{}, bson.M{"$set": bson.M{"isActive": false}})
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("deactivate banners: %w", err)
	}
	return models.Updated(res.MatchedCount, res.ModifiedCount), nil
}

func (s *mongoBanners) SetActive(ctx context.Context, hex string) (models.WriteResult, error) {
	id, err := ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	return updateOne(ctx, s.coll, bson.M{"_id": id}, bson.M{"$set": bson.M{"isActive": true}})
}

func (s *mongoBanners) Delete(ctx context.Context, id string) (models.WriteResult, error) {
	return deleteByID(ctx, s.coll, id)
}

type mongoLocations struct {
	db *mongo.Database
}

func (s *mongoLocations) Divisions(ctx context.Context) ([]models.Division, error) {
	return findAll[models.Division](ctx, s.db.Collection(DivisionsCollection), bson.M{})
}

func (s *mongoLocations) Districts(ctx context.Context) ([]models.District, error) {
	return findAll[models.District](ctx, s.db.Collection(DistrictsCollection), bson.M{})
}

func (s *mongoLocations) Upazilas(ctx context.Context) ([]models.Upazila, error) {
	return findAll[models.Upazila](ctx, s.db.Collection(UpazilasCollection), bson.M{})
}

type mongoContent struct {
	db *mongo.Database
}

func (s *mongoContent) List(ctx context.Context, kind models.ContentKind) ([]models.Document, error) {
	return findAll[models.Document](ctx, s.db.Collection(string(kind)), bson.M{})
}

func (s *mongoContent) Insert(ctx context.Context, kind models.ContentKind, docs ...models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i, d := range docs {
		batch[i] = d
	}
	if _, err := s.db.Collection(string(kind)).InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}
