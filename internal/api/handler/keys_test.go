package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/acousticlabs/trainyard/internal/api/handler"
	"github.com/acousticlabs/trainyard/internal/store"
	"github.com/acousticlabs/trainyard/pkg/models"
)

// keyStore implements store.Store for the API key handlers; job methods are
// never reached.
type keyStore struct {
	CreateAPIKeyFunc func(ctx context.Context, key *models.APIKey) error
	ListAPIKeysFunc  func(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKeyFunc func(ctx context.Context, id uuid.UUID) error
}

func (s *keyStore) Ping(_ context.Context) error                          { return nil }
func (s *keyStore) CreateJob(_ context.Context, _ *models.Job) error      { return nil }
func (s *keyStore) GetJob(_ context.Context, _ string) (*models.Job, error) {
	return nil, store.ErrNotFound
}
func (s *keyStore) UpdateJob(_ context.Context, _ string, _ store.JobUpdate) error { return nil }
func (s *keyStore) DeleteJob(_ context.Context, _ string) error                    { return nil }
func (s *keyStore) ListJobs(_ context.Context) ([]*models.Job, error)              { return nil, nil }
func (s *keyStore) ListJobIDs(_ context.Context) ([]string, error)                 { return nil, nil }
func (s *keyStore) JobNameExists(_ context.Context, _ string, _ string) (bool, error) {
	return false, nil
}
func (s *keyStore) ListApprovedJobs(_ context.Context) ([]*models.ApprovedJob, error) {
	return nil, nil
}
func (s *keyStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *keyStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }

func (s *keyStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	return s.CreateAPIKeyFunc(ctx, key)
}
func (s *keyStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	return s.ListAPIKeysFunc(ctx)
}
func (s *keyStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	return s.RevokeAPIKeyFunc(ctx, id)
}

var _ store.Store = (*keyStore)(nil)

func withKeyID(r *http.Request, keyID string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("keyID", keyID)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateKeyHandler(t *testing.T) {
	var stored *models.APIKey
	s := &keyStore{
		CreateAPIKeyFunc: func(_ context.Context, key *models.APIKey) error {
			stored = key
			return nil
		},
	}

	req := jsonRequest(t, "POST", "/api/v1/admin/keys",
		`{"name":"ci-pipeline","scopes":["read","write"]}`)
	w := httptest.NewRecorder()
	handler.NewCreateKeyHandler(s)(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, stored)

	var body map[string]any
	decodeData(t, w, &body)

	rawKey := body["key"].(string)
	assert.True(t, strings.HasPrefix(rawKey, "ty_"))
	assert.Equal(t, rawKey[:8], stored.KeyPrefix)
	assert.Equal(t, []string{"read", "write"}, stored.Scopes)

	// The stored hash verifies against the raw key shown once.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.KeyHash), []byte(rawKey)))

	// The raw key and hash are never equal; the hash never leaves the store.
	assert.NotContains(t, body, "key_hash")
}

func TestCreateKeyHandlerValidation(t *testing.T) {
	s := &keyStore{
		CreateAPIKeyFunc: func(_ context.Context, _ *models.APIKey) error {
			t.Fatal("store should not be called")
			return nil
		},
	}

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"scopes":["read"]}`},
		{"missing scopes", `{"name":"ci"}`},
		{"unknown scope", `{"name":"ci","scopes":["superuser"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, "POST", "/api/v1/admin/keys", tt.body)
			w := httptest.NewRecorder()
			handler.NewCreateKeyHandler(s)(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, w))
		})
	}
}

func TestCreateKeyHandlerDuplicateName(t *testing.T) {
	s := &keyStore{
		CreateAPIKeyFunc: func(_ context.Context, _ *models.APIKey) error {
			return store.ErrDuplicateKey
		},
	}

	req := jsonRequest(t, "POST", "/api/v1/admin/keys", `{"name":"ci","scopes":["read"]}`)
	w := httptest.NewRecorder()
	handler.NewCreateKeyHandler(s)(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decodeErrorCode(t, w))
}

func TestListKeysHandlerStripsHashes(t *testing.T) {
	lastUsed := time.Now().UTC()
	s := &keyStore{
		ListAPIKeysFunc: func(_ context.Context) ([]*models.APIKey, error) {
			return []*models.APIKey{{
				ID:         uuid.New(),
				Name:       "ci-pipeline",
				KeyHash:    "$2a$10$secret",
				KeyPrefix:  "ty_abc12",
				Scopes:     []string{"read"},
				LastUsedAt: &lastUsed,
				CreatedAt:  time.Now().UTC(),
			}}, nil
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/admin/keys", nil)
	w := httptest.NewRecorder()
	handler.NewListKeysHandler(s)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$10$secret")

	var keys []map[string]any
	decodeData(t, w, &keys)
	require.Len(t, keys, 1)
	assert.Equal(t, "ty_abc12", keys[0]["key_prefix"])
	assert.NotContains(t, keys[0], "key_hash")
}

func TestRevokeKeyHandler(t *testing.T) {
	id := uuid.New()
	s := &keyStore{
		RevokeAPIKeyFunc: func(_ context.Context, got uuid.UUID) error {
			assert.Equal(t, id, got)
			return nil
		},
	}

	req := withKeyID(httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+id.String(), nil), id.String())
	w := httptest.NewRecorder()
	handler.NewRevokeKeyHandler(s)(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRevokeKeyHandlerInvalidID(t *testing.T) {
	s := &keyStore{
		RevokeAPIKeyFunc: func(_ context.Context, _ uuid.UUID) error {
			t.Fatal("store should not be called")
			return nil
		},
	}

	req := withKeyID(httptest.NewRequest("DELETE", "/api/v1/admin/keys/not-a-uuid", nil), "not-a-uuid")
	w := httptest.NewRecorder()
	handler.NewRevokeKeyHandler(s)(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevokeKeyHandlerNotFound(t *testing.T) {
	s := &keyStore{
		RevokeAPIKeyFunc: func(_ context.Context, _ uuid.UUID) error {
			return store.ErrNotFound
		},
	}

	id := uuid.New().String()
	req := withKeyID(httptest.NewRequest("DELETE", "/api/v1/admin/keys/"+id, nil), id)
	w := httptest.NewRecorder()
	handler.NewRevokeKeyHandler(s)(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, w))
}
