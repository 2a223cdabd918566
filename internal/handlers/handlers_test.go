package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ipex/docregistro/internal/config"
	"github.com/ipex/docregistro/internal/database"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/archive"
	"github.com/ipex/docregistro/internal/services/records"
	"github.com/ipex/docregistro/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeStore keeps records in memory with the soft-delete rules of the gorm store
type fakeStore struct {
	mu      sync.Mutex
	rows    []models.DocumentRecord
	nextID  uint
	failing bool
}

func (f *fakeStore) Insert(_ context.Context, rec *models.DocumentRecord) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, &records.StoreError{Op: "insert", Err: errors.New("connection refused")}
	}
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	f.rows = append(f.rows, *rec)
	return rec.ID, nil
}

func (f *fakeStore) list(deleted bool) ([]models.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, &records.StoreError{Op: "list", Err: errors.New("connection refused")}
	}
	var out []models.DocumentRecord
	for _, rec := range f.rows {
		if rec.DeletedAt.Valid == deleted {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActive(context.Context) ([]models.DocumentRecord, error) { return f.list(false) }
func (f *fakeStore) ListDeleted(context.Context) ([]models.DocumentRecord, error) { return f.list(true) }

func (f *fakeStore) GetByID(_ context.Context, id uint) (*models.DocumentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.rows {
		if rec.ID == id {
			out := rec
			return &out, nil
		}
	}
	return nil, records.ErrNotFound
}

func (f *fakeStore) setDeleted(id uint, from, to bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.rows {
		if rec.ID == id && rec.DeletedAt.Valid == from {
			f.rows[i].DeletedAt = gorm.DeletedAt{Time: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Valid: to}
			return nil
		}
	}
	return records.ErrNotFound
}

func (f *fakeStore) SoftDelete(_ context.Context, id uint) error { return f.setDeleted(id, false, true) }
func (f *fakeStore) Restore(_ context.Context, id uint) error { return f.setDeleted(id, true, false) }

func (f *fakeStore) PermanentlyDelete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.rows {
		if rec.ID == id && rec.DeletedAt.Valid {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

// fakeUsers keeps accounts in memory
type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.UserAuth
}

func (f *fakeUsers) Create(_ context.Context, user *models.UserAuth) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.UserAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.UserAuth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, database.ErrUserNotFound
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, user *models.UserAuth, at time.Time) error {
	user.LastLogin = &at
	return nil
}

// memArchive records stored exports
type memArchive struct {
	mu   sync.Mutex
	keys []string
}

func (m *memArchive) Store(_ context.Context, key, _ string, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

type testServer struct {
	router  *Router
	store   *fakeStore
	archive *memArchive
	token   string
}

const testSecret = "handlers-test-secret"

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{JWTSecret: testSecret, NodeEnv: "test", PublicURL: "https://registro.example.com"}
	store := &fakeStore{}
	users := &fakeUsers{users: map[string]*models.UserAuth{}}
	arch := &memArchive{}

	svc := records.NewService(store, records.Options{Director: "diretoria@example.com", Logger: zap.NewNop()})
	router := NewRouter(Deps{
		Config:  cfg,
		Users:   users,
		Records: svc,
		Archive: arch,
		Logger:  zap.NewNop(),
		Now:     func() time.Time { return time.Date(2025, 6, 9, 15, 0, 0, 0, time.UTC) },
	})

	user := &models.UserAuth{Email: "ricardo@example.com", Username: "ricardo", Role: "user"}
	require.NoError(t, users.Create(context.Background(), user))
	token, _, err := utils.GenerateTokens(user, cfg)
	require.NoError(t, err)

	return &testServer{router: router, store: store, archive: arch, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"company":       "OUTRO",
		"companyOther":  "ACME",
		"subject":       "CONTRATO VENDA",
		"requestedBy":   "RAMON",
		"documentType":  "PDF",
		"signedBy":      []string{"EMANUEL", "PAULO"},
		"signatureDate": "2025-03-14",
		"responsible":   "RICARDO",
	}
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	for _, path := range []string{"/api/records", "/api/records/deleted", "/api/options", "/api/records/export.csv", "/auth/me"} {
		rr := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = s.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	status := decode(t, rr)
	assert.Equal(t, "running", status["status"])
	assert.Contains(t, status["build"], "version")
}

func TestCreateAndListRecords(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodPost, "/api/records", validPayload())
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["id"])

	rr = s.do(t, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []struct {
		ID        uint               `json:"id"`
		Company   string             `json:"company"`
		CreatedBy string             `json:"createdBy"`
		Status    string             `json:"status"`
		Display   records.DisplayRow `json:"display"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "OUTRO", list[0].Company)
	assert.Equal(t, "user-1", list[0].CreatedBy)
	assert.Equal(t, "active", list[0].Status)
	assert.Equal(t, "ACME", list[0].Display.Company)
	assert.Equal(t, "EMANUEL, PAULO", list[0].Display.SignedBy)
}

func TestCreateRecordValidation(t *testing.T) {
	s := newTestServer(t)

	payload := validPayload()
	payload["companyOther"] = "  "
	payload["documentType"] = "ONLINE"

	rr := s.do(t, http.MethodPost, "/api/records", payload)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "companyOther", body["field"])
	assert.Len(t, body["fields"], 2)

	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, s.store.rows)
}

func TestRecordLifecycleRoutes(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", validPayload()).Code)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodPost, "/api/records/1/restore", http.StatusConflict},
		{http.MethodDelete, "/api/records/1/permanent", http.StatusConflict},
		{http.MethodDelete, "/api/records/1", http.StatusOK},
		{http.MethodDelete, "/api/records/1", http.StatusConflict},
		{http.MethodPost, "/api/records/1/email", http.StatusConflict},
		{http.MethodPost, "/api/records/1/restore", http.StatusOK},
		{http.MethodPost, "/api/records/1/email", http.StatusOK},
		{http.MethodDelete, "/api/records/1", http.StatusOK},
		{http.MethodDelete, "/api/records/1/permanent", http.StatusOK},
		{http.MethodGet, "/api/records/1", http.StatusNotFound},
		{http.MethodDelete, "/api/records/99", http.StatusNotFound},
		{http.MethodGet, "/api/records/0", http.StatusBadRequest},
	}

	for _, tt := range tests {
		rr := s.do(t, tt.method, tt.path, nil)
		assert.Equal(t, tt.want, rr.Code, "%s %s: %s", tt.method, tt.path, rr.Body.String())
	}
}

func TestEmailRecordResponse(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", validPayload()).Code)

	rr := s.do(t, http.MethodPost, "/api/records/1/email", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "diretoria@example.com", body["recipient"])
}

func TestDeletedListRoute(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", validPayload()).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", validPayload()).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/records/2", nil).Code)

	rr := s.do(t, http.MethodGet, "/api/records/deleted", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0]["id"])
	assert.Equal(t, "deleted", list[0]["status"])
}

func TestExportCSVRoute(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", validPayload()).Code)

	rr := s.do(t, http.MethodGet, "/api/records/export.csv", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, contentTypeCSV, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "registros_documentos_2025-06-09.csv")

	lines := strings.Split(rr.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"1","ACME","CONTRATO VENDA","RAMON","PDF","N/A","EMANUEL, PAULO","2025-03-14"`))

	rr = s.do(t, http.MethodGet, "/api/records/export.csv?set=deleted&format=json", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	content := decode(t, rr)["content"].(string)
	assert.True(t, strings.HasSuffix(content, "Excluído em"))

	rr = s.do(t, http.MethodGet, "/api/records/export.csv?set=everything", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, []string{
		archive.Key("registros_documentos_2025-06-09.csv", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)),
		archive.Key("registros_documentos_2025-06-09.csv", time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)),
	}, s.archive.keys)
}

func TestExportPDFRoutes(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/records", validPayload()).Code)

	rr := s.do(t, http.MethodGet, "/api/records/export.pdf?set=active", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, contentTypePDF, rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = s.do(t, http.MethodGet, "/api/records/1/receipt.pdf", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "registro_1.pdf")

	rr = s.do(t, http.MethodGet, "/api/records/42/receipt.pdf", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestStoreFailureIsOpaque(t *testing.T) {
	s := newTestServer(t)
	s.store.failing = true

	rr := s.do(t, http.MethodGet, "/api/records", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Database error", decode(t, rr)["error"])
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	rr := s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "lady", "email": "Lady@Example.com", "password": "s3cret-pass", "name": "Lady",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "lady2", "email": "lady@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/auth/register", map[string]string{
		"username": "short", "email": "short@example.com", "password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "lady@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = s.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "lady@example.com", "password": "s3cret-pass"})
	require.Equal(t, http.StatusOK, rr.Code)
	var login struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
		User models.UserAuth `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Tokens.AccessToken)
	assert.Empty(t, login.User.Password)
	assert.NotContains(t, rr.Body.String(), "s3cret-pass")

	s.token = login.Tokens.AccessToken
	rr = s.do(t, http.MethodGet, "/auth/me", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "lady@example.com")

	rr = s.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestOptionsRoute(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/api/options", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, models.OtherOption, body["otherOption"])
	options := body["options"].(map[string]interface{})
	assert.Contains(t, options, "company")
}
