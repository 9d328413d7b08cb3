package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/otagate/internal/keystore"
	"github.com/iudanet/otagate/internal/models"
	"github.com/iudanet/otagate/pkg/api"
)

func formRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestKeysHandler_AddAndList(t *testing.T) {
	store := newTestStore()
	handler := NewKeysHandler(setupTestLogger(), store)

	w := httptest.NewRecorder()
	handler.AddForm(w, formRequest(http.MethodPost, "/api/keys", "value=hello+world"))
	require.Equal(t, http.StatusOK, w.Code)

	var added api.KeyResponse
	decodeBody(t, w.Result(), &added)
	assert.True(t, added.Success)
	assert.Equal(t, "k0", added.Key)

	w = httptest.NewRecorder()
	handler.Insert(w, jsonRequest("/api/insert", `{"value":"second"}`))
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w.Result(), &added)
	assert.Equal(t, "k1", added.Key)

	w = httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/print", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var list api.ListResponse
	decodeBody(t, w.Result(), &list)
	assert.True(t, list.Success)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, keystore.DefaultCapacity, list.Capacity)
	assert.Equal(t, []api.Entry{{Key: "k0", Value: "hello world"}, {Key: "k1", Value: "second"}}, list.Entries)
}

func TestKeysHandler_AddErrors(t *testing.T) {
	tests := []struct {
		name       string
		req        func() *http.Request
		fill       int
		wantStatus int
	}{
		{
			name:       "missing value",
			req:        func() *http.Request { return formRequest(http.MethodPost, "/api/keys", "other=1") },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty value",
			req:        func() *http.Request { return jsonRequest("/api/insert", `{"value":""}`) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "value too long",
			req: func() *http.Request {
				return jsonRequest("/api/insert", `{"value":"`+strings.Repeat("v", keystore.MaxValueLength+1)+`"}`)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			req:        func() *http.Request { return jsonRequest("/api/insert", `{"value":`) },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "store full",
			req:        func() *http.Request { return jsonRequest("/api/insert", `{"value":"one more"}`) },
			fill:       keystore.DefaultCapacity,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			for i := 0; i < tt.fill; i++ {
				_, err := store.Add(context.Background(), "x")
				require.NoError(t, err)
			}
			handler := NewKeysHandler(setupTestLogger(), store)

			w := httptest.NewRecorder()
			req := tt.req()
			if strings.HasPrefix(req.URL.Path, "/api/keys") {
				handler.AddForm(w, req)
			} else {
				handler.Insert(w, req)
			}

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp api.ErrorResponse
			decodeBody(t, w.Result(), &resp)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestKeysHandler_Remove(t *testing.T) {
	tests := []struct {
		name       string
		req        func() *http.Request
		json       bool
		wantStatus int
		wantKey    string
	}{
		{
			name:       "delete by key in form body",
			req:        func() *http.Request { return formRequest(http.MethodDelete, "/api/keys", "key=k1") },
			wantStatus: http.StatusOK,
			wantKey:    "k1",
		},
		{
			name:       "delete by key in query",
			req:        func() *http.Request { return httptest.NewRequest(http.MethodDelete, "/api/keys?key=k2", nil) },
			wantStatus: http.StatusOK,
			wantKey:    "k2",
		},
		{
			name:       "delete by value",
			req:        func() *http.Request { return formRequest(http.MethodDelete, "/api/keys", "value=b") },
			wantStatus: http.StatusOK,
			wantKey:    "k1",
		},
		{
			name:       "remove json value",
			req:        func() *http.Request { return jsonRequest("/api/remove", `{"value":"a"}`) },
			json:       true,
			wantStatus: http.StatusOK,
			wantKey:    "k0",
		},
		{
			name:       "remove json key",
			req:        func() *http.Request { return jsonRequest("/api/remove", `{"key":"k2"}`) },
			json:       true,
			wantStatus: http.StatusOK,
			wantKey:    "k2",
		},
		{
			name:       "unknown key",
			req:        func() *http.Request { return formRequest(http.MethodDelete, "/api/keys", "key=k50") },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown value",
			req:        func() *http.Request { return jsonRequest("/api/remove", `{"value":"zzz"}`) },
			json:       true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed key",
			req:        func() *http.Request { return formRequest(http.MethodDelete, "/api/keys", "key=slot1") },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "nothing given",
			req:        func() *http.Request { return jsonRequest("/api/remove", `{}`) },
			json:       true,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			for _, v := range []string{"a", "b", "c"} {
				_, err := store.Add(context.Background(), v)
				require.NoError(t, err)
			}
			handler := NewKeysHandler(setupTestLogger(), store)

			w := httptest.NewRecorder()
			if tt.json {
				handler.Remove(w, tt.req())
			} else {
				handler.DeleteForm(w, tt.req())
			}

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantKey == "" {
				return
			}

			var resp api.KeyResponse
			decodeBody(t, w.Result(), &resp)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantKey, resp.Key)

			entries, err := store.List(context.Background())
			require.NoError(t, err)
			assert.Len(t, entries, 2)
		})
	}
}

// failingStore возвращает ошибку бэкенда на любую операцию
type failingStore struct {
	err error
}

func (f failingStore) Add(context.Context, string) (string, error) { return "", f.err }

func (f failingStore) RemoveByKey(context.Context, string) error { return f.err }

func (f failingStore) RemoveByValue(context.Context, string) (string, error) { return "", f.err }

func (f failingStore) List(context.Context) ([]models.Entry, error) { return nil, f.err }

func (f failingStore) Capacity() int { return 0 }

func TestKeysHandler_BackendError(t *testing.T) {
	handler := NewKeysHandler(setupTestLogger(), failingStore{err: errors.New("bolt: database not open")})

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/api/keys", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "bolt")

	w = httptest.NewRecorder()
	handler.Insert(w, jsonRequest("/api/insert", `{"value":"x"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
