// Package store persists the lab's collections. Every read goes to the
// backing document store; nothing is cached in process.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned when an identifier cannot be parsed as a store key.
var ErrInvalidID = errors.New("invalid id")

// ParseID converts a hex identifier into an ObjectID.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}

// Lookups that find nothing return a nil document and a nil error. Submitted
// records are stored as given apart from _id, which the store assigns.

type UserStore interface {
	// CreateIfAbsent inserts doc unless a user with the same email exists.
	// created is false when the insert was skipped.
	CreateIfAbsent(ctx context.Context, doc models.Document) (res models.WriteResult, created bool, err error)
	List(ctx context.Context) ([]models.Document, error)
	// Profile returns the whole stored user document.
	Profile(ctx context.Context, email string) (models.Document, error)
	// FindByEmail returns the account view used for authorization.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile sets fields on the user whose email is email.
	UpdateProfile(ctx context.Context, email string, fields models.Document) (models.WriteResult, error)
	SetRole(ctx context.Context, id, role string) (models.WriteResult, error)
	ToggleStatus(ctx context.Context, id string) (models.WriteResult, error)
}

type TestStore interface {
	Create(ctx context.Context, doc models.Document) (models.WriteResult, error)
	// Update sets fields on the test identified by id.
	Update(ctx context.Context, id string, fields models.Document) (models.WriteResult, error)
	Delete(ctx context.Context, id string) (models.WriteResult, error)
	// List returns tests whose date is on or after fromDate; an empty fromDate returns all.
	List(ctx context.Context, fromDate string) ([]models.Document, error)
	// Featured returns up to limit tests ordered by booked, highest first.
	Featured(ctx context.Context, limit int) ([]models.Document, error)
	FindByID(ctx context.Context, id string) (models.Document, error)
	// ReserveSlot increments booked and decrements slotsAvailable on one test
	// with the given name, only while slotsAvailable is positive. It returns
	// the reserved test's id, or ok=false when no test had a free slot.
	ReserveSlot(ctx context.Context, testName string) (id primitive.ObjectID, ok bool, err error)
	// ReleaseSlot undoes ReserveSlot on the test it reserved.
	ReleaseSlot(ctx context.Context, id primitive.ObjectID) (models.WriteResult, error)
}

type AppointmentStore interface {
	Create(ctx context.Context, doc models.Document) (models.WriteResult, error)
	List(ctx context.Context, f models.AppointmentFilter) ([]models.Document, error)
	Delete(ctx context.Context, id string) (models.WriteResult, error)
	SetStatus(ctx context.Context, id, status string) (models.WriteResult, error)
}

type ReportStore interface {
	Create(ctx context.Context, doc models.Document) (models.WriteResult, error)
	List(ctx context.Context, email string) ([]models.Document, error)
}

type BannerStore interface {
	Create(ctx context.Context, doc models.Document) (models.WriteResult, error)
	List(ctx context.Context) ([]models.Document, error)
	Active(ctx context.Context) (models.Document, error)
	// DeactivateAll clears isActive on every banner.
	DeactivateAll(ctx context.Context) (models.WriteResult, error)
	SetActive(ctx context.Context, id string) (models.WriteResult, error)
	Delete(ctx context.Context, id string) (models.WriteResult, error)
}

type LocationStore interface {
	Divisions(ctx context.Context) ([]models.Division, error)
	Districts(ctx context.Context) ([]models.District, error)
	Upazilas(ctx context.Context) ([]models.Upazila, error)
}

type ContentStore interface {
	List(ctx context.Context, kind models.ContentKind) ([]models.Document, error)
	// Insert is used by the seed command; the API exposes content read-only.
	Insert(ctx context.Context, kind models.ContentKind, docs ...models.Document) error
}

// Store bundles every collection the API touches.
type Store struct {
	Users        UserStore
	Tests        TestStore
	Appointments AppointmentStore
	Reports      ReportStore
	Banners      BannerStore
	Locations    LocationStore
	Content      ContentStore

	// Ping checks connectivity to the backing store.
	Ping func(ctx context.Context) error
}
