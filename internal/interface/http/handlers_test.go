package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwatch/warning-service/internal/application"
	"github.com/roadwatch/warning-service/internal/domain/entity"
	repo "github.com/roadwatch/warning-service/internal/domain/repository"
	"github.com/roadwatch/warning-service/internal/interface/middleware"
	"github.com/roadwatch/warning-service/pkg/validation"
)

// In-memory repositories backing the full handler stack.

type memUserRepo struct {
	users map[string]entity.User
}

func (m *memUserRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := m.users[u.Username]; ok {
		return repo.ErrAlreadyExists
	}
	m.users[u.Username] = *u
	return nil
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

type memWarningRepo struct {
	records []entity.WarningRecord
	nextID  int64
}

func (m *memWarningRepo) Insert(_ context.Context, w *entity.WarningRecord) (int64, error) {
	m.nextID++
	w.ID = m.nextID
	m.records = append(m.records, *w)
	return w.ID, nil
}

func (m *memWarningRepo) Update(_ context.Context, w *entity.WarningRecord) error {
	for i := range m.records {
		if m.records[i].ID == w.ID {
			sender := m.records[i].Sender
			m.records[i] = *w
			m.records[i].Sender = sender
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memWarningRepo) IsSender(_ context.Context, id int64, username string) (bool, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r.Sender == username, nil
		}
	}
	return false, nil
}

func (m *memWarningRepo) All(_ context.Context) ([]entity.WarningRecord, error) {
	return append([]entity.WarningRecord{}, m.records...), nil
}

func (m *memWarningRepo) ByNickname(_ context.Context, nickname string) ([]entity.WarningRecord, error) {
	out := []entity.WarningRecord{}
	for _, r := range m.records {
		if r.Nickname == nickname {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memWarningRepo) ByTimeRange(_ context.Context, start, end int64) ([]entity.WarningRecord, error) {
	out := []entity.WarningRecord{}
	for _, r := range m.records {
		if r.Sent >= start && r.Sent <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memWarningRepo) ByBoundingBox(_ context.Context, upLat, downLat, upLon, downLon float64) ([]entity.WarningRecord, error) {
	out := []entity.WarningRecord{}
	for _, r := range m.records {
		if r.Latitude <= upLat && r.Latitude >= downLat && r.Longitude >= upLon && r.Longitude <= downLon {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	router *gin.Engine
	users  *memUserRepo
	store  *memWarningRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	users := &memUserRepo{users: map[string]entity.User{}}
	store := &memWarningRepo{}

	userSvc := application.NewUserService(users, nil, logger, nil)
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1704110460000))
	warningSvc := application.NewWarningService(store, nil, clock, logger, nil, nil, "")

	r := gin.New()
	r.POST("/registration", NewRegistrationHandler(userSvc, logger).Register)

	wh := NewWarningHandler(warningSvc, logger)
	authed := r.Group("/", middleware.BasicAuth(userSvc, nil))
	authed.GET("/warning", wh.Get)
	authed.POST("/warning", wh.Post)

	return &testServer{router: r, users: users, store: store}
}

func (s *testServer) do(t *testing.T, method, path, body, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeArray(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

const mooseSubmission = `{"nickname":"wanderer","latitude":60.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Moose"}`

func TestRegistration(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Registered", w.Body.String())

	// Duplicate username conflicts and leaves the first registration intact.
	first := s.users.users["alice"]
	w = s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw2","email":"b@x.com"}`, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, first, s.users.users["alice"])
}

func TestRegistrationRejectsBadPayloads(t *testing.T) {
	s := newTestServer(t)
	for name, body := range map[string]string{
		"not json":      `{"username":`,
		"missing email": `{"username":"alice","password":"pw1"}`,
		"empty field":   `{"username":"","password":"pw1","email":"a@x.com"}`,
		"bad email":     `{"username":"alice","password":"pw1","email":"nope"}`,
	} {
		w := s.do(t, http.MethodPost, "/registration", body, "", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "case %q", name)
	}
}

func TestWarningRequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")

	w := s.do(t, http.MethodGet, "/warning", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/warning", "", "alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/warning", "", "ghost", "pw1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetAllEmptyStoreIsNoContent(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")

	w := s.do(t, http.MethodGet, "/warning", "", "alice", "pw1")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestSubmissionValidation(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")

	for name, body := range map[string]string{
		"malformed json":   `{"nickname"`,
		"missing nickname": `{"latitude":60.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Moose"}`,
		"latitude range":   `{"nickname":"w","latitude":91.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Moose"}`,
		"longitude range":  `{"nickname":"w","latitude":60.0,"longitude":-181.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Moose"}`,
		"bad dangertype":   `{"nickname":"w","latitude":60.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Elk"}`,
		"bad timestamp":    `{"nickname":"w","latitude":60.0,"longitude":10.0,"sent":"2024-01-01 12:00","dangertype":"Moose"}`,
	} {
		w := s.do(t, http.MethodPost, "/warning", body, "alice", "pw1")
		assert.Equal(t, http.StatusBadRequest, w.Code, "case %q", name)
	}
	assert.Empty(t, s.store.records, "validation failures must not write")
}

func TestQueryDispatch(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/warning", mooseSubmission, "alice", "pw1").Code)

	// user query hits matching nicknames
	w := s.do(t, http.MethodPost, "/warning", `{"query":"user","nickname":"wanderer"}`, "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 1)

	// no matches is 204, not an error
	w = s.do(t, http.MethodPost, "/warning", `{"query":"user","nickname":"stranger"}`, "alice", "pw1")
	assert.Equal(t, http.StatusNoContent, w.Code)

	// time query, inclusive bounds
	w = s.do(t, http.MethodPost, "/warning", `{"query":"time","timestart":"2024-01-01T12:00:00.000Z","timeend":"2024-01-01T12:00:00.000Z"}`, "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 1)

	// inverted time range: empty, not an error
	w = s.do(t, http.MethodPost, "/warning", `{"query":"time","timestart":"2024-01-02T00:00:00.000Z","timeend":"2024-01-01T00:00:00.000Z"}`, "alice", "pw1")
	assert.Equal(t, http.StatusNoContent, w.Code)

	// location query with the reversed longitude convention
	w = s.do(t, http.MethodPost, "/warning", `{"query":"location","uplatitude":60,"downlatitude":59,"uplongitude":10,"downlongitude":11}`, "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeArray(t, w), 1)

	// box excluding the record
	w = s.do(t, http.MethodPost, "/warning", `{"query":"location","uplatitude":59,"downlatitude":58,"uplongitude":10,"downlongitude":11}`, "alice", "pw1")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestQueryDispatchRejectsBadShapes(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")

	for name, body := range map[string]string{
		"unknown discriminator":  `{"query":"nearest"}`,
		"user without nickname":  `{"query":"user"}`,
		"time missing end":       `{"query":"time","timestart":"2024-01-01T12:00:00.000Z"}`,
		"time bad timestamp":     `{"query":"time","timestart":"yesterday","timeend":"2024-01-01T12:00:00.000Z"}`,
		"location missing bound": `{"query":"location","uplatitude":60,"downlatitude":59,"uplongitude":10}`,
	} {
		w := s.do(t, http.MethodPost, "/warning", body, "alice", "pw1")
		assert.Equal(t, http.StatusBadRequest, w.Code, "case %q", name)
	}
}

// TestEndToEndScenario walks the whole reporting lifecycle across both
// endpoints: registration, submission, queries, a refused foreign update and
// a successful owner update.
func TestEndToEndScenario(t *testing.T) {
	s := newTestServer(t)

	// register alice
	w := s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	// submit a Moose sighting as alice
	w = s.do(t, http.MethodPost, "/warning", mooseSubmission, "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, s.store.records, 1)
	assert.Equal(t, "alice", s.store.records[0].Sender)
	assert.Nil(t, s.store.records[0].Modified)

	// query all: one record, optional keys omitted
	w = s.do(t, http.MethodGet, "/warning", "", "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)
	arr := decodeArray(t, w)
	require.Len(t, arr, 1)
	assert.Equal(t, "Moose", arr[0]["dangertype"])
	assert.Equal(t, "2024-01-01T12:00:00.000Z", arr[0]["sent"])
	_, hasModified := arr[0]["modified"]
	assert.False(t, hasModified)
	_, hasReason := arr[0]["updatereason"]
	assert.False(t, hasReason)

	// bob cannot edit alice's record
	w = s.do(t, http.MethodPost, "/registration", `{"username":"bob","password":"pw2","email":"b@x.com"}`, "", "")
	require.Equal(t, http.StatusOK, w.Code)

	update := `{"id":1,"nickname":"wanderer","latitude":60.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Deer","updatereason":"typo"}`
	w = s.do(t, http.MethodPost, "/warning", update, "bob", "pw2")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, entity.DangerMoose, s.store.records[0].DangerType, "refused update must not touch the record")

	// updating a nonexistent id is refused identically
	missing := `{"id":999,"nickname":"wanderer","latitude":60.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Deer","updatereason":"typo"}`
	w = s.do(t, http.MethodPost, "/warning", missing, "bob", "pw2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// alice edits her own record
	w = s.do(t, http.MethodPost, "/warning", update, "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)

	// the edit is visible, with updatereason and modified present
	w = s.do(t, http.MethodGet, "/warning", "", "alice", "pw1")
	require.Equal(t, http.StatusOK, w.Code)
	arr = decodeArray(t, w)
	require.Len(t, arr, 1)
	assert.Equal(t, "Deer", arr[0]["dangertype"])
	assert.Equal(t, "typo", arr[0]["updatereason"])
	assert.Equal(t, "2024-01-01T12:01:00.000Z", arr[0]["modified"])
}

func TestUpdateRequiresReason(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/registration", `{"username":"alice","password":"pw1","email":"a@x.com"}`, "", "")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/warning", mooseSubmission, "alice", "pw1").Code)

	noReason := `{"id":1,"nickname":"wanderer","latitude":60.0,"longitude":10.0,"sent":"2024-01-01T12:00:00.000Z","dangertype":"Deer"}`
	w := s.do(t, http.MethodPost, "/warning", noReason, "alice", "pw1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, entity.DangerMoose, s.store.records[0].DangerType)
}
