package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/internal/model"
)

func TestRefreshAndRetryOn401(t *testing.T) {
	var listCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"accessToken": "fresh-token"})
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		if listCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "Invalid token", "status": 401})
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer fresh-token" {
			t.Errorf("retry auth header = %q, want refreshed token", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"categories": []model.Category{{ID: "c1"}}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.setToken("stale-token")

	categories, err := c.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 1 || categories[0].ID != "c1" {
		t.Errorf("categories = %v", categories)
	}
	if listCalls.Load() != 2 {
		t.Errorf("list called %d times, want 2", listCalls.Load())
	}
}

func TestFailedRefreshMeansLoggedOut(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "Invalid refresh token", "status": 401})
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "Invalid token", "status": 401})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.setToken("stale-token")

	_, err = c.ListCategories(context.Background())
	if !errors.Is(err, ErrLoggedOut) {
		t.Fatalf("err = %v, want ErrLoggedOut", err)
	}
	if c.LoggedIn() {
		t.Error("client must drop its token after a failed refresh")
	}
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "Cannot delete category with existing tasks",
			"status": 409,
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.setToken("token")

	err = c.DeleteCategory(context.Background(), "busy")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusConflict {
		t.Errorf("status = %d, want 409", apiErr.Status)
	}
	if apiErr.Message != "Cannot delete category with existing tasks" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestLoginStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["email"] != "u@example.com" {
			t.Errorf("email = %q", req["email"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user":        &model.User{ID: "u1", Email: req["email"]},
			"accessToken": "issued-token",
		})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	user, err := c.Login(context.Background(), "u@example.com", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user = %+v", user)
	}
	if !c.LoggedIn() {
		t.Error("client should hold the issued token")
	}
}

func TestPollerPopulatesStore(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"categories": []model.Category{{ID: "c1", Name: "Inbox"}}})
	})
	mux.HandleFunc("GET /api/tasks", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"tasks": []model.Task{{ID: "t1", CategoryID: "c1"}}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.setToken("token")
	store := NewStore()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err = NewPoller(c, store, time.Hour).Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run = %v, want deadline exceeded", err)
	}

	state := store.State()
	if len(state.Categories) != 1 || state.Categories[0].ID != "c1" {
		t.Errorf("categories = %v", state.Categories)
	}
	if got := state.TasksByCategory["c1"]; len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("tasks = %v", got)
	}
	if state.Err != "" {
		t.Errorf("err = %q, want empty", state.Err)
	}
}

func TestPollerRecordsTransientErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "Internal server error", "status": 500})
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c.setToken("token")
	store := NewStore()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := NewPoller(c, store, time.Hour).Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("run = %v, want deadline exceeded", err)
	}

	if store.State().Err == "" {
		t.Error("expected the transient failure recorded in state")
	}
}
