package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	DivisionsCollection    = "divisions"
	DistrictsCollection    = "districts"
	UpazilasCollection     = "upazilas"
	UsersCollection        = "users"
	TestsCollection        = "tests"
	AppointmentsCollection = "appointments"
	ReportsCollection      = "reports"
	BannersCollection      = "banners"
)

// Connect opens a client against uri and verifies it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).SetStrict(true).SetDeprecationErrors(true)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the application relies on. The unique
// email index backs the idempotent user insert.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}
	_, err = db.Collection(TestsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "testName", Value: 1}}},
		{Keys: bson.D{{Key: "booked", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create tests indexes: %w", err)
	}
	return nil
}

// NewMongoStore wires every collection store against db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Users:        &mongoUsers{coll: db.Collection(UsersCollection)},
		Tests:        &mongoTests{coll: db.Collection(TestsCollection)},
		Appointments: &mongoAppointments{coll: db.Collection(AppointmentsCollection)},
		Reports:      &mongoReports{coll: db.Collection(ReportsCollection)},
		Banners:      &mongoBanners{coll: db.Collection(BannersCollection)},
		Locations:    &mongoLocations{db: db},
		Content:      &mongoContent{db: db},
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", coll.Name(), err)
	}
	return &doc, nil
}

// findDoc returns the matching document, or nil when there is none.
func findDoc(ctx context.Context, coll *mongo.Collection, filter interface{}) (models.Document, error) {
	doc, err := findOne[models.Document](ctx, coll, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	return *doc, nil
}

// insertDoc stores a copy of doc with a fresh _id. Client-supplied ids are
// discarded so every record is addressable by an ObjectID.
func insertDoc(ctx context.Context, coll *mongo.Collection, doc models.Document) (models.WriteResult, error) {
	doc = models.Clone(doc)
	if doc == nil {
		doc = models.Document{}
	}
	doc["_id"] = primitive.NewObjectID()
	return insertOne(ctx, coll, doc)
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc interface{}) (models.WriteResult, error) {
	res, err := coll.InsertOne(ctx, doc)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("insert %s: %w", coll.Name(), err)
	}
	return models.Inserted(res.InsertedID), nil
}

func updateOne(ctx context.Context, coll *mongo.Collection, filter, update interface{}) (models.WriteResult, error) {
	res, err := coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("update %s: %w", coll.Name(), err)
	}
	return models.Updated(res.MatchedCount, res.ModifiedCount), nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, hex string) (models.WriteResult, error) {
	id, err := ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return models.WriteResult{}, fmt.Errorf("delete %s: %w", coll.Name(), err)
	}
	return models.Deleted(res.DeletedCount), nil
}
