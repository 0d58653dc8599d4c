package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/lock"
	"github.com/harentsoaR/diagnosia-api/internal/middleware"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/services"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"github.com/harentsoaR/diagnosia-api/internal/store/memstore"
	"github.com/harentsoaR/diagnosia-api/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *store.Store
	signer *utils.SessionSigner
}

type serverOption func(*Handler)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	signer, err := utils.NewSessionSigner("handler-test-secret", time.Hour)
	require.NoError(t, err)

	st := memstore.New().Store()
	h := NewHandler(st, signer, lock.Noop{}, nil, nil, false)
	for _, opt := range opts {
		opt(h)
	}
	router := NewRouter(h, RouterOptions{Logger: zerolog.Nop(), RateLimitPerMinute: 1000})
	return &testServer{router: router, store: st, signer: signer}
}

func (s *testServer) token(t *testing.T, email string) string {
	t.Helper()
	token, err := s.signer.Issue(email, "")
	require.NoError(t, err)
	return token
}

// addUser stores a user and returns its hex id.
func (s *testServer) addUser(t *testing.T, email, role string) string {
	t.Helper()
	ctx := context.Background()
	res, _, err := s.store.Users.CreateIfAbsent(ctx, models.Document{"email": email, "status": models.StatusActive})
	require.NoError(t, err)
	id := res.InsertedID.(primitive.ObjectID).Hex()
	if role != "" {
		_, err = s.store.Users.SetRole(ctx, id, role)
		require.NoError(t, err)
	}
	return id
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// raw sends body exactly as written.
func (s *testServer) raw(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) addTest(t *testing.T, doc models.Document) string {
	t.Helper()
	res, err := s.store.Tests.Create(context.Background(), doc)
	require.NoError(t, err)
	return res.InsertedID.(primitive.ObjectID).Hex()
}

func (s *testServer) findTest(t *testing.T, id string) models.Document {
	t.Helper()
	test, err := s.store.Tests.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, test)
	return test
}

func number(t *testing.T, d models.Document, key string) float64 {
	t.Helper()
	n, ok := models.NumberField(d, key)
	require.True(t, ok, "%s is not numeric: %#v", key, d[key])
	return n
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "NexGen Diagnosia is running", w.Body.String())

	w = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","env":"development"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "diagnosia_http_requests_total")
}

func TestAdminGateMatrix(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	s.addUser(t, "user@example.com", "")

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"invalid token", "not-a-jwt", http.StatusUnauthorized},
		{"non-admin", s.token(t, "user@example.com"), http.StatusForbidden},
		{"admin", s.token(t, "admin@example.com"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/users", tt.token, nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRoleRevocationTakesEffectOnNextRequest(t *testing.T) {
	s := newTestServer(t)
	id := s.addUser(t, "admin@example.com", models.RoleAdmin)
	token := s.token(t, "admin@example.com")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/users", token, nil).Code)

	_, err := s.store.Users.SetRole(context.Background(), id, "")
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"forbidden access"}`, w.Body.String())
}

func TestCreateUserIsIdempotentAndIgnoresRole(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "Rahim", "email": "rahim@example.com", "role": "admin"}

	w := s.do(t, http.MethodPost, "/users", "", body)
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[map[string]interface{}](t, w)
	assert.Equal(t, true, first["acknowledged"])
	assert.NotEmpty(t, first["insertedId"])

	w = s.do(t, http.MethodPost, "/users", "", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true}`, w.Body.String())

	users, err := s.store.Users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0], "role")
	assert.Equal(t, models.StatusActive, users[0]["status"])

	w = s.do(t, http.MethodPost, "/users", "", map[string]string{"name": "no email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPost, "/users", "", map[string]interface{}{"email": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateUserKeepsSubmittedFields(t *testing.T) {
	s := newTestServer(t)

	w := s.raw(http.MethodPost, "/users", "", `{"email":"rahim@example.com","name":"Rahim","photoURL":"https://cdn/r.png","bloodGroup":"Bombay","age":"34","phone":{"home":"0171"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/user?email=rahim@example.com", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"rahim@example.com","name":"Rahim","photoURL":"https://cdn/r.png","bloodGroup":"Bombay","age":"34","phone":{"home":"0171"},"status":"active"}`,
		stripID(t, w.Body.Bytes()))
}

// stripID removes the server-assigned _id from a JSON object.
func stripID(t *testing.T, body []byte) string {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &doc), string(body))
	require.NotEmpty(t, doc["_id"])
	delete(doc, "_id")
	out, err := json.Marshal(doc)
	require.NoError(t, err)
	return string(out)
}

func TestGetUserReturnsNullWhenMissing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/user?email=ghost@example.com", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", w.Body.String())
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "rahim@example.com", "")
	token := s.token(t, "rahim@example.com")

	w := s.do(t, http.MethodPut, "/users", token, map[string]string{
		"email": "rahim@example.com", "name": "Rahim Uddin", "bloodGroup": "O+", "district": "Dhaka",
	})
	require.Equal(t, http.StatusOK, w.Code)

	u, err := s.store.Users.Profile(context.Background(), "rahim@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Rahim Uddin", u["name"])
	assert.Equal(t, "O+", u["bloodGroup"])
	assert.Equal(t, models.StatusActive, u["status"], "non-profile fields are untouched")

	// Values are stored as sent; fields left out are cleared.
	w = s.do(t, http.MethodPut, "/users", token, map[string]string{"email": "rahim@example.com", "bloodGroup": "Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u, err = s.store.Users.Profile(context.Background(), "rahim@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Z", u["bloodGroup"])
	assert.Nil(t, u["name"])
	assert.Nil(t, u["district"])

	w = s.do(t, http.MethodPut, "/users", token, map[string]string{"name": "no email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPromoteAndToggleStatus(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	target := s.addUser(t, "karim@example.com", "")
	token := s.token(t, "admin@example.com")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/user-role/"+target, token, nil).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/user-status/"+target, token, nil).Code)

	u, err := s.store.Users.Profile(context.Background(), "karim@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u["role"])
	assert.Equal(t, models.StatusBlocked, u["status"])

	w := s.do(t, http.MethodPatch, "/user-status/not-an-id", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid id"}`, w.Body.String())
}

func TestCheckAdminOnlyAnswersForCaller(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	s.addUser(t, "other@example.com", models.RoleAdmin)
	token := s.token(t, "admin@example.com")

	w := s.do(t, http.MethodGet, "/users/admin/admin@example.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"admin":true}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/users/admin/other@example.com", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeaturedReturnsTopSixByBooked(t *testing.T) {
	s := newTestServer(t)
	for _, booked := range []int{9, 1, 8, 2, 7, 3, 6, 4, 5, 0} {
		s.addTest(t, models.Document{"testName": "T", "booked": booked})
	}

	w := s.do(t, http.MethodGet, "/featured", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tests := decode[[]map[string]interface{}](t, w)

	var got []float64
	for _, tt := range tests {
		got = append(got, tt["booked"].(float64))
	}
	assert.Equal(t, []float64{9, 8, 7, 6, 5, 4}, got)
}

func TestTestCRUD(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	token := s.token(t, "admin@example.com")

	w := s.do(t, http.MethodPost, "/tests", token, map[string]interface{}{
		"testName": "CBC", "slots": 10, "slotsAvailable": 10, "price": 500, "date": "2024-06-20",
	})
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[map[string]interface{}](t, w)["insertedId"].(string)

	w = s.do(t, http.MethodPut, "/tests", token, map[string]interface{}{
		"_id": id, "testName": "CBC", "slots": 12, "slotsAvailable": 12, "price": 550, "date": "2024-06-21",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/details/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	test := decode[map[string]interface{}](t, w)
	assert.Equal(t, 550.0, test["price"])
	assert.Equal(t, 12.0, test["slotsAvailable"])

	w = s.do(t, http.MethodGet, "/tests?date=2024-06-22", "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
	w = s.do(t, http.MethodGet, "/tests?date=2024-06-21", "", nil)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	w = s.do(t, http.MethodDelete, "/test/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/details/"+id, "", nil)
	assert.Equal(t, "null", w.Body.String())

	w = s.do(t, http.MethodDelete, "/test/xyz", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid id"}`, w.Body.String())

	w = s.do(t, http.MethodPut, "/tests", token, map[string]interface{}{"testName": "no id"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTestAcceptsStringNumbers(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	token := s.token(t, "admin@example.com")

	w := s.raw(http.MethodPost, "/tests", token, `{"testName":"Lipid Profile","slots":"10","price":"800","slotsAvailable":10,"booked":0,"fastingHours":12}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode[map[string]interface{}](t, w)["insertedId"].(string)

	w = s.do(t, http.MethodGet, "/details/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"testName":"Lipid Profile","slots":"10","price":"800","slotsAvailable":10,"booked":0,"fastingHours":12}`,
		stripID(t, w.Body.Bytes()))

	// Integer inventory stays integral through a booking.
	w = s.do(t, http.MethodPost, "/appointments", s.token(t, "rahim@example.com"), map[string]interface{}{"testName": "Lipid Profile"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/details/"+id, "", nil)
	assert.Contains(t, w.Body.String(), `"slotsAvailable":9`)
	assert.Contains(t, w.Body.String(), `"booked":1`)
}

func TestBookingDecrementsInventory(t *testing.T) {
	s := newTestServer(t)
	testID := s.addTest(t, models.Document{"testName": "CBC", "slotsAvailable": 5, "booked": 2, "price": 500})
	token := s.token(t, "rahim@example.com")

	w := s.do(t, http.MethodPost, "/appointments", token, map[string]interface{}{
		"testName": "CBC", "price": 500, "transactionId": "pi_123", "date": "2024-06-20",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	test := s.findTest(t, testID)
	assert.Equal(t, 4.0, number(t, test, "slotsAvailable"))
	assert.Equal(t, 3.0, number(t, test, "booked"))

	w = s.do(t, http.MethodGet, "/appointments?email=rahim@example.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apts := decode[[]map[string]interface{}](t, w)
	require.Len(t, apts, 1)
	assert.Equal(t, "pi_123", apts[0]["transactionId"])
	assert.Equal(t, "rahim@example.com", apts[0]["email"])

	w = s.do(t, http.MethodGet, "/appointments?search=RAHIM", token, nil)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	w = s.do(t, http.MethodDelete, "/appointments/"+apts[0]["_id"].(string), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, w.Body.String())
}

func TestBookingRejectedWithoutSlots(t *testing.T) {
	s := newTestServer(t)
	s.addTest(t, models.Document{"testName": "CBC", "slotsAvailable": 0})
	token := s.token(t, "rahim@example.com")

	w := s.do(t, http.MethodPost, "/appointments", token, map[string]interface{}{"testName": "CBC"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/appointments", token, map[string]interface{}{"price": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/appointments", "", map[string]interface{}{"testName": "CBC"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingStoresSubmittedFieldsVerbatim(t *testing.T) {
	s := newTestServer(t)
	s.addTest(t, models.Document{"testName": "CBC", "slotsAvailable": 5, "booked": 0})
	token := s.token(t, "rahim@example.com")

	w := s.raw(http.MethodPost, "/appointments", token, `{"testName":"CBC","price":"500","discountedPrice":450,"couponCode":"EID10","date":"2024-06-20","status":"delivered","name":"Rahim"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/appointments?email=rahim@example.com", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apts := decode[[]map[string]interface{}](t, w)
	require.Len(t, apts, 1)
	delete(apts[0], "_id")
	assert.Equal(t, map[string]interface{}{
		"testName":        "CBC",
		"price":           "500",
		"discountedPrice": 450.0,
		"couponCode":      "EID10",
		"date":            "2024-06-20",
		"name":            "Rahim",
		"email":           "rahim@example.com",
	}, apts[0], "client fields kept, status dropped, email filled from the session")
}

func TestConcurrentBookingsOfOneTest(t *testing.T) {
	s := newTestServer(t)
	const slots, callers = 10, 16
	testID := s.addTest(t, models.Document{"testName": "CBC", "slotsAvailable": slots, "booked": 0})
	token := s.token(t, "rahim@example.com")

	codes := make([]int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.raw(http.MethodPost, "/appointments", token, `{"testName":"CBC"}`).Code
		}(i)
	}
	wg.Wait()

	counts := map[int]int{}
	for _, code := range codes {
		counts[code]++
	}
	assert.Equal(t, map[int]int{http.StatusOK: slots, http.StatusConflict: callers - slots}, counts)

	test := s.findTest(t, testID)
	assert.Equal(t, 0.0, number(t, test, "slotsAvailable"))
	assert.Equal(t, float64(slots), number(t, test, "booked"))
}

func TestFileReportMarksDelivered(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	token := s.token(t, "admin@example.com")

	res, err := s.store.Appointments.Create(ctx, models.Document{"testName": "CBC", "email": "rahim@example.com"})
	require.NoError(t, err)
	aptID := res.InsertedID.(primitive.ObjectID).Hex()

	w := s.do(t, http.MethodPost, "/reports", token, map[string]string{
		"id": aptID, "email": "rahim@example.com", "testName": "CBC", "reportURL": "https://cdn.example.com/r.pdf",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	apts, err := s.store.Appointments.List(ctx, models.AppointmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentDelivered, apts[0]["status"])

	w = s.do(t, http.MethodGet, "/reports?email=rahim@example.com", "", nil)
	reports := decode[[]map[string]interface{}](t, w)
	require.Len(t, reports, 1)
	assert.Equal(t, aptID, reports[0]["id"])

	w = s.do(t, http.MethodPost, "/reports", token, map[string]string{"id": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBannerActivationIsExclusive(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@example.com", models.RoleAdmin)
	token := s.token(t, "admin@example.com")

	var ids []string
	for _, name := range []string{"spring", "summer", "monsoon"} {
		w := s.do(t, http.MethodPost, "/banners", token, map[string]interface{}{"name": name, "isActive": true})
		require.Equal(t, http.StatusOK, w.Code)
		ids = append(ids, decode[map[string]interface{}](t, w)["insertedId"].(string))
	}

	w := s.do(t, http.MethodGet, "/active-banner", "", nil)
	assert.Equal(t, "null", w.Body.String(), "created banners start inactive")

	for _, id := range []string{ids[0], ids[2]} {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/banner/"+id, token, nil).Code)
	}

	w = s.do(t, http.MethodGet, "/banners", "", nil)
	var active []string
	for _, b := range decode[[]map[string]interface{}](t, w) {
		if b["isActive"] == true {
			active = append(active, b["_id"].(string))
		}
	}
	assert.Equal(t, []string{ids[2]}, active)

	w = s.do(t, http.MethodGet, "/active-banner", "", nil)
	assert.Equal(t, "monsoon", decode[map[string]interface{}](t, w)["name"])

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/banner/"+ids[0], s.token(t, "user@example.com"), nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/banner/"+ids[0], token, nil).Code)
}

func TestReferenceAndContentReads(t *testing.T) {
	db := memstore.New()
	db.SeedLocations(
		[]models.Division{{ID: "1", Name: "Dhaka"}},
		[]models.District{{ID: "1", DivisionID: "1", Name: "Gazipur"}},
		nil,
	)
	signer, err := utils.NewSessionSigner("secret", time.Hour)
	require.NoError(t, err)
	st := db.Store()
	require.NoError(t, st.Content.Insert(context.Background(), models.ContentTips, models.Document{"title": "Hydrate"}))
	router := NewRouter(NewHandler(st, signer, nil, nil, nil, false), RouterOptions{Logger: zerolog.Nop()})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Contains(t, get("/divisions").Body.String(), "Dhaka")
	assert.Contains(t, get("/districts").Body.String(), "Gazipur")
	assert.JSONEq(t, `[]`, get("/upazilas").Body.String())
	assert.Contains(t, get("/tips").Body.String(), "Hydrate")
	assert.JSONEq(t, `[]`, get("/footer").Body.String())
}

func TestSessionCookieAttributes(t *testing.T) {
	for _, production := range []bool{false, true} {
		s := newTestServer(t, func(h *Handler) { h.Production = production })

		w := s.do(t, http.MethodPost, "/jwt", "", map[string]string{"email": "rahim@example.com", "name": "Rahim"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, middleware.SessionCookie, c.Name)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, production, c.Secure)
		if production {
			assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
		} else {
			assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		}

		claims, err := s.signer.Verify(c.Value)
		require.NoError(t, err)
		assert.Equal(t, "rahim@example.com", claims.Email)

		w = s.do(t, http.MethodPost, "/logout", "", nil)
		assert.JSONEq(t, `{"status":true}`, w.Body.String())
		cleared := w.Result().Cookies()
		require.Len(t, cleared, 1)
		assert.Empty(t, cleared[0].Value)
		assert.Less(t, cleared[0].MaxAge, 0)
	}

	s := newTestServer(t)
	w := s.do(t, http.MethodPost, "/jwt", "", map[string]string{"name": "anonymous"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionCarriesSubmittedClaims(t *testing.T) {
	s := newTestServer(t)

	w := s.raw(http.MethodPost, "/jwt", "", `{"email":"rahim@example.com","name":"Rahim","photoURL":"https://cdn/r.png","uid":"firebase-123","exp":4102444800}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	claims, err := s.signer.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "Rahim", claims.Name)
	assert.Equal(t, "https://cdn/r.png", claims.Extra["photoURL"])
	assert.Equal(t, "firebase-123", claims.Extra["uid"])
	assert.WithinDuration(t, time.Now().Add(s.signer.TTL()), claims.ExpiresAt.Time, time.Minute)
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeers(t *testing.T) {
	signer, err := utils.NewSessionSigner("secret", time.Hour)
	require.NoError(t, err)
	h := NewHandler(memstore.New().Store(), signer, nil, nil, nil, false)

	send := func(r *gin.Engine, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/jwt", strings.NewReader(`{"email":"a@example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.RemoteAddr = "203.0.113.9:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	direct := NewRouter(h, RouterOptions{Logger: zerolog.Nop(), RateLimitPerMinute: 2})
	assert.Equal(t, http.StatusOK, send(direct, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, send(direct, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, send(direct, "10.0.0.3"), "rotating X-Forwarded-For must not reset the bucket")

	proxied := NewRouter(h, RouterOptions{Logger: zerolog.Nop(), RateLimitPerMinute: 2, TrustedProxies: []string{"203.0.113.0/24"}})
	for i := 1; i <= 3; i++ {
		assert.Equal(t, http.StatusOK, send(proxied, fmt.Sprintf("198.51.100.%d", i)), "a trusted proxy forwards distinct clients")
	}
	assert.Equal(t, http.StatusOK, send(proxied, "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send(proxied, "198.51.100.1"))
}

type stubProcessor struct{ amount int64 }

func (p *stubProcessor) CreateIntent(_ context.Context, amount int64, _ string) (string, error) {
	p.amount = amount
	return "pi_123_secret_456", nil
}

func TestCreatePaymentIntent(t *testing.T) {
	token := func(s *testServer) string { return s.token(t, "rahim@example.com") }

	disabled := newTestServer(t)
	w := disabled.do(t, http.MethodPost, "/create-payment-intent", token(disabled), map[string]float64{"price": 500})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	proc := &stubProcessor{}
	s := newTestServer(t, func(h *Handler) { h.Payments = services.NewPaymentService(proc, "inr") })

	w = s.do(t, http.MethodPost, "/create-payment-intent", "", map[string]float64{"price": 500})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/create-payment-intent", token(s), map[string]float64{"price": 499.5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"clientSecret":"pi_123_secret_456"}`, w.Body.String())
	assert.EqualValues(t, 49950, proc.amount)

	w = s.do(t, http.MethodPost, "/create-payment-intent", token(s), map[string]float64{"price": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubUploader struct{ got string }

func (u *stubUploader) Upload(_ context.Context, file io.Reader) (string, error) {
	b, err := io.ReadAll(file)
	u.got = string(b)
	return "https://res.cloudinary.com/demo/raw/upload/report.pdf", err
}

func TestUploadFile(t *testing.T) {
	up := &stubUploader{}
	s := newTestServer(t, func(h *Handler) { h.Uploads = services.NewUploadService(up) })

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "report.pdf")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"url":"https://res.cloudinary.com/demo/raw/upload/report.pdf","success":true}`, w.Body.String())
	assert.Equal(t, "%PDF-1.4", up.got)

	w = s.do(t, http.MethodPost, "/upload", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
