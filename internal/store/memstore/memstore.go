// Package memstore is an in-process implementation of the store interfaces.
// It backs the handler tests and the serve --in-memory development mode and
// follows the same matching rules as the MongoDB adapter.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB holds every collection behind one mutex. Documents are copied on the
// way in and out so callers never share a map with the store.
type DB struct {
	mu           sync.Mutex
	users        []models.Document
	tests        []models.Document
	appointments []models.Document
	reports      []models.Document
	banners      []models.Document
	divisions    []models.Division
	districts    []models.District
	upazilas     []models.Upazila
	content      map[models.ContentKind][]models.Document

	// failInserts makes Create on the named collection return the error.
	failInserts map[string]error
}

func New() *DB {
	return &DB{
		content:     make(map[models.ContentKind][]models.Document),
		failInserts: make(map[string]error),
	}
}

// Store exposes db through the store interfaces.
func (db *DB) Store() *store.Store {
	return &store.Store{
		Users:        users{db},
		Tests:        tests{db},
		Appointments: appointments{db},
		Reports:      reports{db},
		Banners:      banners{db},
		Locations:    locations{db},
		Content:      content{db},
		Ping:         func(context.Context) error { return nil },
	}
}

// SeedLocations replaces the reference data.
func (db *DB) SeedLocations(divs []models.Division, dists []models.District, upas []models.Upazila) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.divisions = append([]models.Division(nil), divs...)
	db.districts = append([]models.District(nil), dists...)
	db.upazilas = append([]models.Upazila(nil), upas...)
}

// FailInserts makes every later insert into collection fail with err. A nil
// err clears it.
func (db *DB) FailInserts(collection string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.failInserts, collection)
		return
	}
	db.failInserts[collection] = err
}

// insert appends a copy of doc with a fresh _id. Callers hold db.mu.
func (db *DB) insert(collection string, coll *[]models.Document, doc models.Document) (models.WriteResult, error) {
	if err := db.failInserts[collection]; err != nil {
		return models.WriteResult{}, err
	}
	doc = models.Clone(doc)
	if doc == nil {
		doc = models.Document{}
	}
	id := primitive.NewObjectID()
	doc["_id"] = id
	*coll = append(*coll, doc)
	return models.Inserted(id), nil
}

func copyAll(docs []models.Document, keep func(models.Document) bool) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if keep == nil || keep(d) {
			out = append(out, models.Clone(d))
		}
	}
	return out
}

func indexByID(docs []models.Document, id primitive.ObjectID) int {
	for i, d := range docs {
		if d["_id"] == id {
			return i
		}
	}
	return -1
}

func indexWhere(docs []models.Document, match func(models.Document) bool) int {
	for i, d := range docs {
		if match(d) {
			return i
		}
	}
	return -1
}

// set applies a $set-style update and reports whether anything changed.
func set(d models.Document, fields models.Document) bool {
	modified := false
	for k, v := range fields {
		if old, ok := d[k]; !ok || !sameValue(old, v) {
			modified = true
		}
		d[k] = v
	}
	return modified
}

func sameValue(a, b interface{}) bool {
	defer func() { _ = recover() }() // uncomparable values count as different
	return a == b
}

func (db *DB) updateByID(coll *[]models.Document, hex string, fields models.Document) (models.WriteResult, error) {
	id, err := store.ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	i := indexByID(*coll, id)
	if i < 0 {
		return models.Updated(0, 0), nil
	}
	return models.Updated(1, changed(set((*coll)[i], fields))), nil
}

func (db *DB) deleteByID(coll *[]models.Document, hex string) (models.WriteResult, error) {
	id, err := store.ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	i := indexByID(*coll, id)
	if i < 0 {
		return models.Deleted(0), nil
	}
	*coll = append((*coll)[:i], (*coll)[i+1:]...)
	return models.Deleted(1), nil
}

func (db *DB) findByID(coll *[]models.Document, hex string) (models.Document, error) {
	id, err := store.ParseID(hex)
	if err != nil {
		return nil, err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if i := indexByID(*coll, id); i >= 0 {
		return models.Clone((*coll)[i]), nil
	}
	return nil, nil
}

func emailIs(email string) func(models.Document) bool {
	return func(d models.Document) bool { return models.StringField(d, "email") == email }
}

type users struct{ db *DB }

func (s users) CreateIfAbsent(_ context.Context, doc models.Document) (models.WriteResult, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if indexWhere(s.db.users, emailIs(models.StringField(doc, "email"))) >= 0 {
		return models.WriteResult{Acknowledged: true}, false, nil
	}
	res, err := s.db.insert(store.UsersCollection, &s.db.users, doc)
	return res, err == nil, err
}

func (s users) List(context.Context) ([]models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return copyAll(s.db.users, nil), nil
}

func (s users) Profile(_ context.Context, email string) (models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if i := indexWhere(s.db.users, emailIs(email)); i >= 0 {
		return models.Clone(s.db.users[i]), nil
	}
	return nil, nil
}

func (s users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := indexWhere(s.db.users, emailIs(email))
	if i < 0 {
		return nil, nil
	}
	d := s.db.users[i]
	id, _ := d["_id"].(primitive.ObjectID)
	return &models.User{ID: id, Email: email, Role: models.StringField(d, "role")}, nil
}

func (s users) UpdateProfile(_ context.Context, email string, fields models.Document) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := indexWhere(s.db.users, emailIs(email))
	if i < 0 {
		return models.Updated(0, 0), nil
	}
	return models.Updated(1, changed(set(s.db.users[i], fields))), nil
}

func (s users) SetRole(_ context.Context, hex, role string) (models.WriteResult, error) {
	return s.db.updateByID(&s.db.users, hex, models.Document{"role": role})
}

func (s users) ToggleStatus(_ context.Context, hex string) (models.WriteResult, error) {
	id, err := store.ParseID(hex)
	if err != nil {
		return models.WriteResult{}, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := indexByID(s.db.users, id)
	if i < 0 {
		return models.Updated(0, 0), nil
	}
	u := s.db.users[i]
	u["status"] = store.NextStatus(models.StringField(u, "status"))
	return models.Updated(1, 1), nil
}

type tests struct{ db *DB }

func (s tests) Create(_ context.Context, doc models.Document) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.insert(store.TestsCollection, &s.db.tests, doc)
}

func (s tests) Update(_ context.Context, hex string, fields models.Document) (models.WriteResult, error) {
	return s.db.updateByID(&s.db.tests, hex, fields)
}

func (s tests) Delete(_ context.Context, hex string) (models.WriteResult, error) {
	return s.db.deleteByID(&s.db.tests, hex)
}

// List compares dates as strings, like the store's $gte on string fields.
func (s tests) List(_ context.Context, fromDate string) ([]models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if fromDate == "" {
		return copyAll(s.db.tests, nil), nil
	}
	return copyAll(s.db.tests, func(d models.Document) bool {
		date, ok := d["date"].(string)
		return ok && date >= fromDate
	}), nil
}

func (s tests) Featured(_ context.Context, limit int) ([]models.Document, error) {
	s.db.mu.Lock()
	out := copyAll(s.db.tests, nil)
	s.db.mu.Unlock()

	// Tests without a numeric booked count sort last.
	booked := func(d models.Document) float64 {
		if n, ok := models.NumberField(d, "booked"); ok {
			return n
		}
		return -1 << 53
	}
	sort.SliceStable(out, func(i, j int) bool { return booked(out[i]) > booked(out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s tests) FindByID(_ context.Context, hex string) (models.Document, error) {
	return s.db.findByID(&s.db.tests, hex)
}

func (s tests) ReserveSlot(_ context.Context, testName string) (primitive.ObjectID, bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := indexWhere(s.db.tests, func(d models.Document) bool {
		n, ok := models.NumberField(d, "slotsAvailable")
		return models.StringField(d, "testName") == testName && ok && n > 0
	})
	if i < 0 {
		return primitive.NilObjectID, false, nil
	}
	t := s.db.tests[i]
	models.Increment(t, "booked", 1)
	models.Increment(t, "slotsAvailable", -1)
	id, _ := t["_id"].(primitive.ObjectID)
	return id, true, nil
}

func (s tests) ReleaseSlot(_ context.Context, id primitive.ObjectID) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	i := indexByID(s.db.tests, id)
	if i < 0 {
		return models.Updated(0, 0), nil
	}
	t := s.db.tests[i]
	models.Increment(t, "booked", -1)
	models.Increment(t, "slotsAvailable", 1)
	return models.Updated(1, 1), nil
}

type appointments struct{ db *DB }

func (s appointments) Create(_ context.Context, doc models.Document) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.insert(store.AppointmentsCollection, &s.db.appointments, doc)
}

func (s appointments) List(_ context.Context, f models.AppointmentFilter) ([]models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	switch {
	case f.Search != "":
		search := strings.ToLower(f.Search)
		return copyAll(s.db.appointments, func(d models.Document) bool {
			email, ok := d["email"].(string)
			return ok && strings.Contains(strings.ToLower(email), search)
		}), nil
	case f.Email != "":
		return copyAll(s.db.appointments, emailIs(f.Email)), nil
	}
	return copyAll(s.db.appointments, nil), nil
}

func (s appointments) Delete(_ context.Context, hex string) (models.WriteResult, error) {
	return s.db.deleteByID(&s.db.appointments, hex)
}

func (s appointments) SetStatus(_ context.Context, hex, status string) (models.WriteResult, error) {
	return s.db.updateByID(&s.db.appointments, hex, models.Document{"status": status})
}

type reports struct{ db *DB }

func (s reports) Create(_ context.Context, doc models.Document) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.insert(store.ReportsCollection, &s.db.reports, doc)
}

func (s reports) List(_ context.Context, email string) ([]models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if email == "" {
		return copyAll(s.db.reports, nil), nil
	}
	return copyAll(s.db.reports, emailIs(email)), nil
}

type banners struct{ db *DB }

func isActive(d models.Document) bool { return d["isActive"] == true }

func (s banners) Create(_ context.Context, doc models.Document) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.insert(store.BannersCollection, &s.db.banners, doc)
}

func (s banners) List(context.Context) ([]models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return copyAll(s.db.banners, nil), nil
}

func (s banners) Active(context.Context) (models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if i := indexWhere(s.db.banners, isActive); i >= 0 {
		return models.Clone(s.db.banners[i]), nil
	}
	return nil, nil
}

func (s banners) DeactivateAll(context.Context) (models.WriteResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var modified int64
	for _, b := range s.db.banners {
		if set(b, models.Document{"isActive": false}) {
			modified++
		}
	}
	return models.Updated(int64(len(s.db.banners)), modified), nil
}

func (s banners) SetActive(_ context.Context, hex string) (models.WriteResult, error) {
	return s.db.updateByID(&s.db.banners, hex, models.Document{"isActive": true})
}

func (s banners) Delete(_ context.Context, hex string) (models.WriteResult, error) {
	return s.db.deleteByID(&s.db.banners, hex)
}

type locations struct{ db *DB }

func (s locations) Divisions(context.Context) ([]models.Division, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return append(make([]models.Division, 0, len(s.db.divisions)), s.db.divisions...), nil
}

func (s locations) Districts(context.Context) ([]models.District, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return append(make([]models.District, 0, len(s.db.districts)), s.db.districts...), nil
}

func (s locations) Upazilas(context.Context) ([]models.Upazila, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return append(make([]models.Upazila, 0, len(s.db.upazilas)), s.db.upazilas...), nil
}

type content struct{ db *DB }

func (s content) List(_ context.Context, kind models.ContentKind) ([]models.Document, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return copyAll(s.db.content[kind], nil), nil
}

func (s content) Insert(_ context.Context, kind models.ContentKind, docs ...models.Document) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, d := range docs {
		d = models.Clone(d)
		if _, ok := d["_id"]; !ok {
			d["_id"] = primitive.NewObjectID()
		}
		s.db.content[kind] = append(s.db.content[kind], d)
	}
	return nil
}

func changed(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
