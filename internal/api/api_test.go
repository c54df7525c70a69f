package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := repository.NewDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	cfg := config.Config{
		Environment:      "test",
		JWTSecret:        "test-access",
		JWTRefreshSecret: "test-refresh",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	subtaskRepo := repository.NewSubtaskRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	srv := NewServer(cfg,
		service.NewAuthService(userRepo, sessionRepo, tokens),
		service.NewCategoryService(categoryRepo),
		service.NewTaskService(taskRepo, categoryRepo),
		service.NewSubtaskService(subtaskRepo, taskRepo),
		service.NewStatsService(statsRepo),
	)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

// call issues a JSON request and decodes the JSON response into a generic map.
func call(t *testing.T, ts *httptest.Server, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && err != io.EOF {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

func registerUser(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	status, body := call(t, ts, "POST", "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     "Test User",
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d, body = %v", status, body)
	}
	token, _ := body["accessToken"].(string)
	if token == "" {
		t.Fatal("register returned no access token")
	}
	return token
}

func createCategory(t *testing.T, ts *httptest.Server, token, name string) string {
	t.Helper()
	status, body := call(t, ts, "POST", "/api/categories", token, map[string]string{"name": name})
	if status != http.StatusCreated {
		t.Fatalf("create category status = %d, body = %v", status, body)
	}
	category := body["category"].(map[string]interface{})
	return category["id"].(string)
}

func createTask(t *testing.T, ts *httptest.Server, token, categoryID, title string) string {
	t.Helper()
	status, body := call(t, ts, "POST", "/api/tasks", token, map[string]string{
		"title":      title,
		"categoryId": categoryID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create task status = %d, body = %v", status, body)
	}
	task := body["task"].(map[string]interface{})
	return task["id"].(string)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	status, body := call(t, ts, "GET", "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["status"] != "OK" {
		t.Errorf("body = %v", body)
	}
}

func TestRegisterSetsRefreshCookie(t *testing.T) {
	ts := newTestServer(t)

	data, _ := json.Marshal(map[string]string{
		"email": "cookie@example.com", "password": "password123",
	})
	resp, err := http.Post(ts.URL+"/api/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	defer resp.Body.Close()

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refreshToken" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no refreshToken cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie must be httpOnly")
	}
	if cookie.Path != "/api/auth" {
		t.Errorf("cookie path = %q, want /api/auth", cookie.Path)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	status, body := call(t, ts, "POST", "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["error"] != "Validation failed" {
		t.Errorf("error = %v", body["error"])
	}
	if body["status"] != float64(http.StatusBadRequest) {
		t.Errorf("status field = %v, want 400", body["status"])
	}
	details, _ := body["details"].([]interface{})
	if len(details) == 0 {
		t.Fatal("expected per-field details")
	}
	fields := map[string]bool{}
	for _, d := range details {
		fields[d.(map[string]interface{})["field"].(string)] = true
	}
	if !fields["email"] || !fields["password"] {
		t.Errorf("details should cover email and password, got %v", fields)
	}
}

func TestRequestsWithoutTokenAreUnauthorized(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/categories", "/api/tasks", "/api/stats/summary", "/api/auth/me"} {
		status, body := call(t, ts, "GET", path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, status)
		}
		if body["error"] == "" || body["status"] != float64(http.StatusUnauthorized) {
			t.Errorf("GET %s body = %v, want error shape", path, body)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "flow@example.com")
	categoryID := createCategory(t, ts, token, "Work")
	taskID := createTask(t, ts, token, categoryID, "write report")

	status, body := call(t, ts, "PATCH", "/api/tasks/"+taskID+"/eod", token, nil)
	if status != http.StatusOK {
		t.Fatalf("toggle eod status = %d, body = %v", status, body)
	}
	task := body["task"].(map[string]interface{})
	if task["isEOD"] != true {
		t.Errorf("task = %v, want isEOD", task)
	}
	if task["priority"] != float64(999) {
		t.Errorf("priority = %v, want 999", task["priority"])
	}

	status, body = call(t, ts, "PATCH", "/api/tasks/"+taskID+"/complete", token, nil)
	if status != http.StatusOK {
		t.Fatalf("toggle complete status = %d, body = %v", status, body)
	}
	task = body["task"].(map[string]interface{})
	if task["completed"] != true || task["eodCompletedAt"] == nil {
		t.Errorf("task = %v, want completed with eodCompletedAt", task)
	}

	status, body = call(t, ts, "GET", "/api/tasks/eod/today", token, nil)
	if status != http.StatusOK {
		t.Fatalf("eod today status = %d, body = %v", status, body)
	}
	stats := body["stats"].(map[string]interface{})
	if stats["total"] != float64(1) || stats["completed"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}

	status, _ = call(t, ts, "DELETE", "/api/tasks/"+taskID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
}

func TestForeignTaskIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	owner := registerUser(t, ts, "owner@example.com")
	intruder := registerUser(t, ts, "intruder@example.com")
	categoryID := createCategory(t, ts, owner, "Private")
	taskID := createTask(t, ts, owner, categoryID, "secret")

	for _, probe := range []struct{ method, path string }{
		{"GET", "/api/tasks/" + taskID},
		{"PATCH", "/api/tasks/" + taskID + "/eod"},
		{"PATCH", "/api/tasks/" + taskID + "/complete"},
		{"DELETE", "/api/tasks/" + taskID},
	} {
		status, body := call(t, ts, probe.method, probe.path, intruder, nil)
		if status != http.StatusNotFound {
			t.Errorf("%s %s status = %d, want 404; body = %v", probe.method, probe.path, status, body)
		}
	}
}

func TestDeleteCategoryWithTasksConflicts(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "guard@example.com")
	categoryID := createCategory(t, ts, token, "Busy")
	createTask(t, ts, token, categoryID, "blocker")

	status, body := call(t, ts, "DELETE", "/api/categories/"+categoryID, token, nil)
	if status != http.StatusConflict {
		t.Fatalf("status = %d, body = %v", status, body)
	}
	if body["error"] != "Cannot delete category with existing tasks" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestReorderTasksEndpoint(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "reorder@example.com")
	categoryID := createCategory(t, ts, token, "Queue")
	a := createTask(t, ts, token, categoryID, "a")
	b := createTask(t, ts, token, categoryID, "b")

	status, body := call(t, ts, "PATCH", "/api/tasks/reorder", token, map[string]interface{}{
		"taskIds": []string{b, a},
	})
	if status != http.StatusOK {
		t.Fatalf("reorder status = %d, body = %v", status, body)
	}

	status, body = call(t, ts, "GET", "/api/tasks?categoryId="+categoryID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	tasks := body["tasks"].([]interface{})
	if len(tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(tasks))
	}
	first := tasks[0].(map[string]interface{})
	if first["id"] != b {
		t.Errorf("first task = %v, want %s", first["id"], b)
	}

	status, body = call(t, ts, "PATCH", "/api/tasks/reorder", token, map[string]interface{}{
		"taskIds": []string{a, "ghost"},
	})
	if status != http.StatusBadRequest {
		t.Fatalf("reorder with unknown id status = %d, body = %v", status, body)
	}
}

func TestSubtaskOwnership(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "sub@example.com")
	categoryID := createCategory(t, ts, token, "Work")
	taskID := createTask(t, ts, token, categoryID, "parent")

	status, body := call(t, ts, "POST", "/api/tasks/"+taskID+"/subtasks", token, map[string]string{"title": "step 1"})
	if status != http.StatusCreated {
		t.Fatalf("create subtask status = %d, body = %v", status, body)
	}
	subtask := body["subtask"].(map[string]interface{})
	subtaskID := subtask["id"].(string)

	intruder := registerUser(t, ts, "sub-intruder@example.com")
	status, _ = call(t, ts, "DELETE", "/api/subtasks/"+subtaskID, intruder, nil)
	if status != http.StatusNotFound {
		t.Errorf("foreign subtask delete status = %d, want 404", status)
	}

	status, body = call(t, ts, "PATCH", "/api/subtasks/"+subtaskID, token, map[string]bool{"completed": true})
	if status != http.StatusOK {
		t.Fatalf("update subtask status = %d, body = %v", status, body)
	}
}

func TestStatsEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := registerUser(t, ts, "stats@example.com")
	categoryID := createCategory(t, ts, token, "Work")
	taskID := createTask(t, ts, token, categoryID, "tracked")

	if status, _ := call(t, ts, "PATCH", "/api/tasks/"+taskID+"/eod", token, nil); status != http.StatusOK {
		t.Fatalf("toggle eod status = %d", status)
	}
	if status, _ := call(t, ts, "PATCH", "/api/tasks/"+taskID+"/complete", token, nil); status != http.StatusOK {
		t.Fatalf("toggle complete status = %d", status)
	}

	status, body := call(t, ts, "GET", "/api/stats/summary", token, nil)
	if status != http.StatusOK {
		t.Fatalf("summary status = %d", status)
	}
	summary := body["summary"].(map[string]interface{})
	if summary["totalTasks"] != float64(1) || summary["completionRate"] != float64(100) {
		t.Errorf("summary = %v", summary)
	}

	status, body = call(t, ts, "GET", "/api/stats/daily?days=3", token, nil)
	if status != http.StatusOK {
		t.Fatalf("daily status = %d", status)
	}
	daily := body["dailyStats"].([]interface{})
	if len(daily) != 3 {
		t.Errorf("daily buckets = %d, want 3", len(daily))
	}

	status, body = call(t, ts, "GET", "/api/stats/eod?range=day", token, nil)
	if status != http.StatusOK {
		t.Fatalf("eod stats status = %d", status)
	}
	eodStats := body["eodStats"].(map[string]interface{})
	if eodStats["streakDays"] != float64(1) {
		t.Errorf("streakDays = %v, want 1", eodStats["streakDays"])
	}
}

func TestRefreshFlow(t *testing.T) {
	ts := newTestServer(t)

	jarClient := ts.Client()
	data, _ := json.Marshal(map[string]string{"email": "refresh@example.com", "password": "password123"})
	resp, err := jarClient.Post(ts.URL+"/api/auth/register", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest("POST", ts.URL+"/api/auth/refresh", nil)
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}
	refreshResp, err := jarClient.Do(req)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	defer refreshResp.Body.Close()
	if refreshResp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", refreshResp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(refreshResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if token, _ := body["accessToken"].(string); token == "" {
		t.Error("refresh returned no access token")
	}

	// Without the cookie the refresh is rejected.
	status, _ := call(t, ts, "POST", "/api/auth/refresh", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("cookieless refresh status = %d, want 401", status)
	}
}
