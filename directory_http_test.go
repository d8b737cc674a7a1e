package fideauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	fideauth "github.com/fastfide/go-fideauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminAPIStub struct {
	mu       sync.Mutex
	subjects []fideauth.Subject
	updates  map[string]map[string]any
	listCode int
}

func (s *adminAPIStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.listCode != 0 {
			w.WriteHeader(s.listCode)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"users": s.subjects})
	})

	mux.HandleFunc("PUT /admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		id := r.PathValue("id")
		found := false
		for _, subject := range s.subjects {
			if subject.ID == id {
				found = true
				break
			}
		}
		if !found {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var attrs map[string]any
		if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if s.updates == nil {
			s.updates = map[string]map[string]any{}
		}
		s.updates[id] = attrs
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func TestHTTPDirectory(t *testing.T) {
	stub := &adminAPIStub{subjects: []fideauth.Subject{
		{ID: "abcdef1234567890", Email: "a@b.com"},
		{ID: "zzzz111122223333", Email: "z@b.com"},
	}}
	server := httptest.NewServer(stub.handler())
	defer server.Close()

	dir := fideauth.NewHTTPDirectory(server.URL, "service-key").WithLogger(silentLogger{})

	t.Run("lists subjects", func(t *testing.T) {
		subjects, err := dir.ListSubjects(context.Background())
		require.NoError(t, err)
		require.Len(t, subjects, 2)
		assert.Equal(t, "a@b.com", subjects[0].Email)
	})

	t.Run("confirm email issues the privileged update", func(t *testing.T) {
		err := dir.ConfirmEmail(context.Background(), "abcdef1234567890")
		require.NoError(t, err)
		assert.Equal(t, true, stub.updates["abcdef1234567890"]["email_confirm"])
	})

	t.Run("set password issues the privileged update", func(t *testing.T) {
		err := dir.SetPassword(context.Background(), "zzzz111122223333", "n3w-secret")
		require.NoError(t, err)
		assert.Equal(t, "n3w-secret", stub.updates["zzzz111122223333"]["password"])
	})

	t.Run("unknown subject id", func(t *testing.T) {
		err := dir.ConfirmEmail(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, fideauth.IsSubjectNotFound(err))
	})

	t.Run("listing failure surfaces as directory unavailable", func(t *testing.T) {
		stub.mu.Lock()
		stub.listCode = http.StatusInternalServerError
		stub.mu.Unlock()
		defer func() {
			stub.mu.Lock()
			stub.listCode = 0
			stub.mu.Unlock()
		}()

		_, err := dir.ListSubjects(context.Background())
		require.Error(t, err)
		assert.True(t, fideauth.IsDirectoryUnavailable(err))
	})

	t.Run("unreachable host surfaces as directory unavailable", func(t *testing.T) {
		down := fideauth.NewHTTPDirectory("http://127.0.0.1:1", "service-key").WithLogger(silentLogger{})
		_, err := down.ListSubjects(context.Background())
		require.Error(t, err)
		assert.True(t, fideauth.IsDirectoryUnavailable(err))
	})
}
